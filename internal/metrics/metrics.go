// Package metrics holds the Prometheus collectors of the template engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReordersTotal counts reorder batches by entity kind and result
	ReordersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluation_reorders_total",
		Help: "Reorder batches by entity kind and result",
	}, []string{"kind", "result"})

	ReorderBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evaluation_reorder_batch_size",
		Help:    "Number of siblings per reorder batch",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	// ClonesTotal counts template clones by result
	ClonesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluation_template_clones_total",
		Help: "Template clones by result",
	}, []string{"result"})

	CloneDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evaluation_template_clone_duration_seconds",
		Help:    "Template clone duration",
		Buckets: prometheus.DefBuckets,
	})

	// DeletionsBlockedTotal counts deletes refused by the deletion guard
	DeletionsBlockedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluation_deletions_blocked_total",
		Help: "Deletes refused by the deletion guard by entity kind and reason",
	}, []string{"kind", "reason"})

	// TemplateWeightTotal is the category weight total of each active template,
	// refreshed by the scheduled weight check
	TemplateWeightTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evaluation_template_weight_total",
		Help: "Category weight total of active templates",
	}, []string{"template_id"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// Result labels
const (
	ResultSuccess = "success"
	ResultError   = "error"
)
