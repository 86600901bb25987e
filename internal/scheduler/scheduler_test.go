package scheduler

import (
	"context"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/memstore"
	"akreditasi-jurnal/internal/metrics"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
	"akreditasi-jurnal/internal/testutil"
)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseCronErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"* * * *",
		"60 2 * * *",
		"0 24 * * *",
		"0 2 32 * *",
		"0 2 * 13 *",
		"0 2 * * 8",
		"0 2 * * funday",
	} {
		_, err := ParseCron(expr)
		assert.Error(t, err, expr)
	}
}

func TestParseCronNext(t *testing.T) {
	tests := []struct {
		expr string
		from string
		want string
	}{
		{"*/15 * * * *", "2025-03-10 10:07", "2025-03-10 10:15"},
		{"*/15 3 * * *", "2026-10-18 12:00", "2026-10-19 03:00"},
		{"30 */6 * * *", "2025-03-10 07:00", "2025-03-10 12:30"},
		{"0 2 * * *", "2025-03-10 02:00", "2025-03-11 02:00"},
		{"0 3 1 * *", "2026-10-18 12:00", "2026-11-01 03:00"},
		{"0 3 * 6 *", "2026-10-18 12:00", "2027-06-01 03:00"},
		// 2025-03-15 is a Saturday
		{"0 3 * * 1-5", "2025-03-15 12:00", "2025-03-17 03:00"},
		{"45 3 * * 0", "2025-03-10 04:00", "2025-03-16 03:45"},
		{"@daily", "2025-03-10 09:00", "2025-03-11 00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			schedule, err := ParseCron(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, at(tt.want), schedule.Next(at(tt.from)))
		})
	}
}

func TestSchedulerRunOnStartAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan struct{}, 1)

	s := New(Task{
		Name:       "probe",
		Schedule:   cron.Every(time.Hour),
		RunOnStart: true,
		Run:        func(context.Context) { runs <- struct{}{} },
	})
	s.Start(ctx)

	select {
	case <-runs:
	case <-time.After(time.Second):
		t.Fatal("task did not run on start")
	}

	cancel()
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestWeightMonitorCheck(t *testing.T) {
	cfg := config.EvaluationConfig{MaxTotalWeight: 100}
	store := memstore.New()
	templates := service.NewTemplateService(store, cfg)
	fixtures := testutil.SetupFixtures(t, templates)

	monitor := NewWeightMonitor(templates, service.NewWeightAccountant(store, cfg))
	offTarget := monitor.Check(context.Background())

	require.Len(t, offTarget, 1)
	summary := offTarget[0]
	assert.Equal(t, fixtures.Template.ID, summary.TemplateID)
	assert.False(t, summary.ExceedsLimit)

	label := metrics.TemplateWeightTotal.WithLabelValues(uintLabel(fixtures.Template.ID))
	assert.InDelta(t, summary.TotalWeight, promtestutil.ToFloat64(label), 0.0001)

	_, err := templates.CreateCategory(context.Background(), fixtures.Template.ID, models.CategoryInput{
		Code: "ISI", Name: "Substansi Artikel", Weight: 80,
	}, testutil.Admin)
	require.NoError(t, err)

	offTarget = monitor.Check(context.Background())
	require.Len(t, offTarget, 1)
	assert.True(t, offTarget[0].ExceedsLimit)
	label = metrics.TemplateWeightTotal.WithLabelValues(uintLabel(fixtures.Template.ID))
	assert.InDelta(t, 110, promtestutil.ToFloat64(label), 0.0001)
}
