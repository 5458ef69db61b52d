package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/schema"
)

func result(id string, overall schema.Grade, grades map[schema.Axis]schema.Grade) schema.RankResult {
	return schema.RankResult{RankRecord: schema.RankRecord{
		ProductID:    id,
		Grades:       grades,
		OverallGrade: overall,
	}}
}

func TestObserveRank(t *testing.T) {
	m := NewBatchMetrics()
	output := &schema.BatchOutput{
		RunID:      42,
		Partitions: 3,
		Results: []schema.RankResult{
			result("a", schema.GradeA, map[schema.Axis]schema.Grade{
				schema.AxisPrice: schema.GradeA, schema.AxisEvidence: schema.GradeS, schema.AxisSafety: schema.GradeB,
			}),
			result("b", schema.GradeD, map[schema.Axis]schema.Grade{}),
			result("c", schema.GradeA, map[schema.Axis]schema.Grade{
				schema.AxisPrice: schema.GradeC, schema.AxisCostEffectiveness: schema.GradeA, schema.AxisContent: schema.GradeA,
				schema.AxisEvidence: schema.GradeA, schema.AxisSafety: schema.GradeA,
			}),
		},
	}

	finished := time.Unix(1_700_000_000, 0)
	m.ObserveRank(output, 1500*time.Millisecond, finished)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.productsRanked))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.partitions))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.lastRunID))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.batchDuration))
	assert.Equal(t, 1_700_000_000.0, testutil.ToFloat64(m.lastSuccess))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.undefinedAxes.WithLabelValues("price")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.undefinedAxes.WithLabelValues("content")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.overallGrades.WithLabelValues("A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.overallGrades.WithLabelValues("D")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.overallGrades.WithLabelValues("S+")))
}

func TestObserveAudit(t *testing.T) {
	m := NewBatchMetrics()
	report := &schema.AuditReport{
		TotalRecords: 12,
		Passed:       false,
		Counts: map[schema.IssueType]int{
			schema.IssueImpossibleCombination: 2,
			schema.IssueDistributionAnomaly:   1,
		},
		SFractions: map[schema.Axis]float64{schema.AxisPrice: 25},
		Fixed:      []string{"x"},
	}

	m.ObserveAudit(report)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.auditRecords))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.auditIssues.WithLabelValues("impossible_combination", "critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditIssues.WithLabelValues("distribution_anomaly", "warning")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.auditIssues.WithLabelValues("missing_data", "critical")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.auditSFraction.WithLabelValues("price")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.auditPassed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditFixedTotal))
}

func TestWriteTextfile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "collector")
	m := NewBatchMetrics()
	m.ObserveRank(&schema.BatchOutput{Partitions: 1}, time.Second, time.Now())

	require.NoError(t, m.WriteTextfile(dir, RankTextfile))

	content, err := os.ReadFile(filepath.Join(dir, RankTextfile))
	require.NoError(t, err)
	assert.Contains(t, string(content), "tierank_rank_partitions 1")
	assert.Contains(t, string(content), "# HELP tierank_rank_products")
}

func TestWriteTextfile_EmptyDir(t *testing.T) {
	err := NewBatchMetrics().WriteTextfile("", RankTextfile)
	assert.Error(t, err)
}
