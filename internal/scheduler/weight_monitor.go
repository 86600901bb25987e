package scheduler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/robfig/cron/v3"

	"akreditasi-jurnal/internal/metrics"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
)

// WeightMonitor exports the category weight total of every active template
// and warns about templates that do not add up to the configured maximum.
// In lax weight mode this is how overweight templates surface.
type WeightMonitor struct {
	templates *service.TemplateService
	weights   *service.WeightAccountant
}

// NewWeightMonitor creates a weight monitor
func NewWeightMonitor(templates *service.TemplateService, weights *service.WeightAccountant) *WeightMonitor {
	return &WeightMonitor{templates: templates, weights: weights}
}

// Check inspects every active template once and returns the ones off target
func (m *WeightMonitor) Check(ctx context.Context) []models.WeightSummary {
	active := true
	templates, err := m.templates.ListTemplates(ctx, models.TemplateFilter{IsActive: &active})
	if err != nil {
		slog.Error("Weight check failed to list templates", "error", err)
		return nil
	}

	metrics.TemplateWeightTotal.Reset()
	var offTarget []models.WeightSummary
	for _, tpl := range templates {
		summary, err := m.weights.Summary(ctx, tpl.ID)
		if err != nil {
			slog.Error("Weight check failed", "template_id", tpl.ID, "error", err)
			continue
		}
		metrics.TemplateWeightTotal.WithLabelValues(uintLabel(tpl.ID)).Set(summary.TotalWeight)

		if summary.RemainingWeight != 0 {
			slog.Warn("Active template weights do not add up",
				"template_id", tpl.ID,
				"name", tpl.Name,
				"total_weight", summary.TotalWeight,
				"max_total_weight", summary.MaxTotalWeight,
				"exceeds_limit", summary.ExceedsLimit,
			)
			offTarget = append(offTarget, *summary)
		}
	}
	return offTarget
}

func uintLabel(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Task wraps the monitor for the scheduler
func (m *WeightMonitor) Task(schedule cron.Schedule) Task {
	return Task{
		Name:       "weight_check",
		Schedule:   schedule,
		RunOnStart: true,
		Run:        func(ctx context.Context) { m.Check(ctx) },
	}
}
