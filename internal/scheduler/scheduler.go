// Package scheduler runs periodic maintenance jobs of the template engine.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// ParseCron parses a standard five-field cron expression (minute, hour,
// day of month, month, day of week) or a descriptor such as "@daily".
func ParseCron(expr string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// Task is one scheduled job
type Task struct {
	Name     string
	Schedule cron.Schedule
	// RunOnStart runs the job once when the scheduler starts
	RunOnStart bool
	Run        func(ctx context.Context)
}

// Scheduler runs tasks until its context is cancelled
type Scheduler struct {
	tasks []Task
	cron  *cron.Cron
	wg    sync.WaitGroup
}

// New creates a scheduler for the given tasks. A run that is still going
// when the next one is due is skipped.
func New(tasks ...Task) *Scheduler {
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn))
	return &Scheduler{
		tasks: tasks,
		cron:  cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger))),
	}
}

// Start registers the tasks and runs them until ctx is done
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Starting scheduler", "tasks", len(s.tasks))
	for _, task := range s.tasks {
		s.cron.Schedule(task.Schedule, cron.FuncJob(func() {
			slog.Info("Running scheduled task", "task", task.Name)
			task.Run(ctx)
		}))
		if task.RunOnStart {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				task.Run(ctx)
			}()
		}
	}
	s.cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		// Stop returns a context that is done once running jobs have finished
		<-s.cron.Stop().Done()
	}()
}

// Wait blocks until the scheduler has stopped and running tasks have returned
func (s *Scheduler) Wait() {
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}
