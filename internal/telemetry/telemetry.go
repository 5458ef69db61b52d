// Package telemetry exports batch metrics for the node_exporter textfile collector.
//
// The ranking batch is a short-lived process, so metrics are not scraped from a
// live endpoint. Each run registers gauges on a private registry and writes them
// to a .prom file that node_exporter picks up on its next scrape.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/supplelab/tierank/schema"
)

const namespace = "tierank"

// Textfile names inside the collector directory.
const (
	RankTextfile  = "tierank_rank.prom"
	AuditTextfile = "tierank_audit.prom"
)

// BatchMetrics holds the gauges of one batch invocation.
type BatchMetrics struct {
	registry *prometheus.Registry

	productsRanked  prometheus.Gauge
	partitions      prometheus.Gauge
	undefinedAxes   *prometheus.GaugeVec
	overallGrades   *prometheus.GaugeVec
	batchDuration   prometheus.Gauge
	lastRunID       prometheus.Gauge
	lastSuccess     prometheus.Gauge
	auditRecords    prometheus.Gauge
	auditIssues     *prometheus.GaugeVec
	auditSFraction  *prometheus.GaugeVec
	auditPassed     prometheus.Gauge
	auditFixedTotal prometheus.Gauge
}

// NewBatchMetrics creates the batch gauges on a fresh registry.
func NewBatchMetrics() *BatchMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &BatchMetrics{
		registry: reg,
		productsRanked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rank",
			Name:      "products",
			Help:      "Products ranked by the last batch",
		}),
		partitions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rank",
			Name:      "partitions",
			Help:      "Comparison groups ranked by the last batch",
		}),
		undefinedAxes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rank",
			Name:      "undefined_axes",
			Help:      "Products whose axis could not be graded in the last batch",
		}, []string{"axis"}),
		overallGrades: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rank",
			Name:      "overall_grades",
			Help:      "Products per overall grade in the last batch",
		}, []string{"grade"}),
		batchDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rank",
			Name:      "duration_seconds",
			Help:      "Wall time of the last batch",
		}),
		lastRunID: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rank",
			Name:      "last_run_id",
			Help:      "Persisted run ID of the last batch, 0 when not persisted",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rank",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last batch finished",
		}),
		auditRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "records",
			Help:      "Rank records checked by the last audit",
		}),
		auditIssues: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "issues",
			Help:      "Issues found by the last audit",
		}, []string{"type", "severity"}),
		auditSFraction: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "s_grade_percent",
			Help:      "Share of S grades per axis in the audited run",
		}, []string{"axis"}),
		auditPassed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "passed",
			Help:      "1 when the last audit passed",
		}),
		auditFixedTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "fixed_products",
			Help:      "Products regenerated by the last audit",
		}),
	}
}

// Registry returns the private registry holding the batch gauges.
func (m *BatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRank records the outcome of a rank batch.
func (m *BatchMetrics) ObserveRank(output *schema.BatchOutput, duration time.Duration, finished time.Time) {
	m.productsRanked.Set(float64(len(output.Results)))
	m.partitions.Set(float64(output.Partitions))
	m.batchDuration.Set(duration.Seconds())
	m.lastRunID.Set(float64(output.RunID))
	m.lastSuccess.Set(float64(finished.Unix()))

	for _, axis := range schema.AllAxes {
		undefined := 0
		for _, r := range output.Results {
			if _, ok := r.Grade(axis); !ok {
				undefined++
			}
		}
		m.undefinedAxes.WithLabelValues(string(axis)).Set(float64(undefined))
	}

	for _, grade := range schema.OverallGrades {
		m.overallGrades.WithLabelValues(string(grade)).Set(0)
	}
	for _, r := range output.Results {
		m.overallGrades.WithLabelValues(string(r.OverallGrade)).Inc()
	}
}

// ObserveAudit records the outcome of an audit.
func (m *BatchMetrics) ObserveAudit(report *schema.AuditReport) {
	m.auditRecords.Set(float64(report.TotalRecords))
	for _, t := range schema.AllIssueTypes {
		m.auditIssues.WithLabelValues(string(t), string(schema.IssueSeverities[t])).Set(float64(report.Counts[t]))
	}
	for axis, share := range report.SFractions {
		m.auditSFraction.WithLabelValues(string(axis)).Set(share)
	}
	if report.Passed {
		m.auditPassed.Set(1)
	} else {
		m.auditPassed.Set(0)
	}
	m.auditFixedTotal.Set(float64(len(report.Fixed)))
}

// WriteTextfile writes the gauges to dir/name in the text exposition format.
func (m *BatchMetrics) WriteTextfile(dir, name string) error {
	if dir == "" {
		return fmt.Errorf("metrics directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
