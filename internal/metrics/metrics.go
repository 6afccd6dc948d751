// Package metrics defines the prometheus collectors for grant backups and
// restores. A nil *Collector is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector groups the backup and restore metrics registered on one registry.
type Collector struct {
	BackupsTotal           *prometheus.CounterVec
	BackupRecordsTotal     *prometheus.CounterVec
	TombstonesSkippedTotal *prometheus.CounterVec
	RestoresTotal          *prometheus.CounterVec
	RestoreStageSeconds    *prometheus.HistogramVec
	RestoreStatementsTotal prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		BackupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vgs_backups_total",
			Help: "Backups run, by table and outcome.",
		}, []string{"table", "outcome"}),
		BackupRecordsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vgs_backup_records_total",
			Help: "Records returned by backups, by table.",
		}, []string{"table"}),
		TombstonesSkippedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vgs_backup_tombstones_skipped_total",
			Help: "All-NULL rows dropped by backups, by table.",
		}, []string{"table"}),
		RestoresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vgs_restores_total",
			Help: "Restores run, by outcome.",
		}, []string{"outcome"}),
		RestoreStageSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vgs_restore_stage_seconds",
			Help:    "Time spent in each restore stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		RestoreStatementsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "vgs_restore_statements_total",
			Help: "Statements submitted by committed restores.",
		}),
	}
}

// ObserveBackup records one finished backup of table.
func (c *Collector) ObserveBackup(table string, records, skipped int, err error) {
	if c == nil {
		return
	}
	c.BackupsTotal.WithLabelValues(table, outcome(err)).Inc()
	if err != nil {
		return
	}
	c.BackupRecordsTotal.WithLabelValues(table).Add(float64(records))
	c.TombstonesSkippedTotal.WithLabelValues(table).Add(float64(skipped))
}

// ObserveStage records the duration of one restore stage.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	if c == nil {
		return
	}
	c.RestoreStageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveRestore records one finished restore and, on success, the number of
// statements it committed.
func (c *Collector) ObserveRestore(statements int, err error) {
	if c == nil {
		return
	}
	c.RestoresTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		c.RestoreStatementsTotal.Add(float64(statements))
	}
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for collection by the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
