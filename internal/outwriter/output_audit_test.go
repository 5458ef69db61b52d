package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/schema"
)

func sampleReport() *schema.AuditReport {
	return &schema.AuditReport{
		RunID:         9,
		RunToken:      "tok-9",
		TotalRecords:  3,
		Passed:        false,
		CriticalCount: 1,
		WarningCount:  1,
		Counts: map[schema.IssueType]int{
			schema.IssueInvalidRank:           0,
			schema.IssueImpossibleCombination: 1,
			schema.IssueMissingData:           0,
			schema.IssueDistributionAnomaly:   1,
		},
		AffectedProducts: map[schema.IssueType][]string{
			schema.IssueImpossibleCombination: {"vc-001"},
		},
		SFractions: map[schema.Axis]float64{schema.AxisPrice: 33.3333},
		Issues: []schema.Issue{
			{
				Type:      schema.IssueImpossibleCombination,
				Severity:  schema.SeverityCritical,
				ProductID: "vc-001",
				Message:   "overall S+ without all five axes at S: safety=A",
			},
			{
				Type:     schema.IssueDistributionAnomaly,
				Severity: schema.SeverityWarning,
				Axis:     schema.AxisPrice,
				Message:  "price has 33.3% S grades (1 of 3), expected 10.0% ± 10.0",
			},
		},
	}
}

func TestWriteAuditText(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.TextOut)

	require.NoError(t, writeAuditText(&buf, sampleReport(), cfg, 20*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "Rank Audit Results:")
	assert.Contains(t, out, "Run:      9")
	assert.Contains(t, out, "critical impossible_combination [vc-001] overall S+ without all five axes at S: safety=A")
	assert.Contains(t, out, "warning distribution_anomaly [price]")
	assert.Contains(t, out, "❌ Audit failed: 1 critical, 1 warning")
	assert.Contains(t, out, "impossible_combination 1")
	assert.NotContains(t, out, "S share")
}

func TestWriteAuditText_Verbose(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.TextOut)
	cfg.Verbose = true

	require.NoError(t, writeAuditText(&buf, sampleReport(), cfg, time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "S SHARE")
	assert.Contains(t, out, "33.3%")
	assert.Contains(t, out, "impossible_combination: vc-001")
}

func TestWriteAuditText_PassedAndFixed(t *testing.T) {
	report := &schema.AuditReport{
		RunID:        2,
		TotalRecords: 4,
		Passed:       true,
		Counts:       map[schema.IssueType]int{},
		Issues:       []schema.Issue{},
		Fixed:        []string{"a", "b"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeAuditText(&buf, report, testConfig(schema.TextOut), time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "Regenerated 2 product(s) from the retained snapshot: a, b")
	assert.Contains(t, out, "report-only, fixed")
	assert.Contains(t, out, "✅ Audit passed")
}

func TestRenderAuditSummary_StrictNote(t *testing.T) {
	report := &schema.AuditReport{
		Strict:       true,
		WarningCount: 1,
		Counts:       map[schema.IssueType]int{schema.IssueDistributionAnomaly: 1},
	}
	out := renderAuditSummary(report, newAuditStyles(false))
	assert.Contains(t, out, "warnings fail the audit in strict mode")
}

func TestPrintAuditReport_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.json")
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = path

	require.NoError(t, PrintAuditReport(sampleReport(), cfg, time.Second))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, false, decoded["passed"])
	assert.Equal(t, float64(1), decoded["critical_count"])
	counts, ok := decoded["counts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), counts["impossible_combination"])
	issues, ok := decoded["issues"].([]any)
	require.True(t, ok)
	assert.Len(t, issues, 2)
}

func TestWriteAuditCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAuditCSV(&buf, sampleReport()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"9", "impossible_combination", "critical", "vc-001", "", "overall S+ without all five axes at S: safety=A"}, rows[1])
	assert.Equal(t, "price", rows[2][4])
}
