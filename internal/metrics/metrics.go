package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"shelflife/internal/db"
)

var (
	deletionOutcomeDesc = prometheus.NewDesc(
		"shelflife_deletion_outcomes_total",
		"Total deletion attempt count by service and outcome",
		[]string{"service", "outcome"},
		nil,
	)
	syncRunDesc = prometheus.NewDesc(
		"shelflife_sync_runs_total",
		"Total sync run count by status",
		[]string{"status"},
		nil,
	)
)

// AuditCollector is a custom Prometheus collector that reads deletion and
// sync audit aggregates from the database on each scrape.
type AuditCollector struct {
	db *db.DB
}

// Describe sends the metric descriptors to the channel.
func (c *AuditCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- deletionOutcomeDesc
	ch <- syncRunDesc
}

// Collect queries the audit tables and emits their aggregates as counters.
func (c *AuditCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()

	outcomes, err := c.db.GetDeletionOutcomeCounts(ctx)
	if err != nil {
		slog.Error("failed to collect deletion outcome metrics", "error", err)
	} else {
		emit := func(count int64, service, outcome string) {
			ch <- prometheus.MustNewConstMetric(
				deletionOutcomeDesc,
				prometheus.CounterValue,
				float64(count),
				service,
				outcome,
			)
		}
		emit(outcomes.SonarrSuccess, "sonarr", "success")
		emit(outcomes.SonarrFailure, "sonarr", "failure")
		emit(outcomes.RadarrSuccess, "radarr", "success")
		emit(outcomes.RadarrFailure, "radarr", "failure")
		emit(outcomes.OverseerrSuccess, "overseerr", "success")
		emit(outcomes.OverseerrFailure, "overseerr", "failure")
	}

	runs, err := c.db.CountSyncRuns(ctx)
	if err != nil {
		slog.Error("failed to collect sync run metrics", "error", err)
		return
	}
	for status, count := range runs {
		ch <- prometheus.MustNewConstMetric(
			syncRunDesc,
			prometheus.CounterValue,
			float64(count),
			status,
		)
	}
}

var initOnce sync.Once

// Init registers the custom collector. Must be called once at startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(&AuditCollector{db: database})
	})
}
