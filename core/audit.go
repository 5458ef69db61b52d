package core

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/supplelab/tierank/core/validate"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/internal/outwriter"
	"github.com/supplelab/tierank/internal/telemetry"
	"github.com/supplelab/tierank/schema"
)

// ExecuteAudit runs the consistency validator over a persisted rank run.
// The full report is always printed before the process exits non-zero on
// critical issues, or on warnings in strict mode.
func ExecuteAudit(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	report, err := BuildAuditReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)

	exportBatchMetrics(cfg, telemetry.AuditTextfile, func(m *telemetry.BatchMetrics) {
		m.ObserveAudit(report)
	})

	if err := outwriter.NewOutWriter().WriteAudit(report, cfg, duration); err != nil {
		return err
	}
	if report.Failed() {
		os.Exit(1)
	}
	return nil
}

// BuildAuditReport audits a persisted run without printing it. With fix enabled,
// the records flagged as corrupt are regenerated from the run's retained snapshot
// and the run is audited again; the returned report lists what was fixed.
func BuildAuditReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.AuditReport, error) {
	builder := NewAuditReportBuilder(ctx, cfg, mgr)

	if _, err := builder.ValidatePrerequisites(); err != nil {
		return nil, err
	}
	if _, err := builder.LoadRecords(); err != nil {
		return nil, err
	}
	report := builder.RunChecks().BuildResult().GetResult()

	if !cfg.Fix {
		return report, nil
	}

	fixed, err := fixRecords(ctx, cfg, mgr, builder.Run(), report)
	if err != nil {
		return nil, err
	}
	if len(fixed) == 0 {
		return report, nil
	}

	if _, err := builder.LoadRecords(); err != nil {
		return nil, err
	}
	report = builder.RunChecks().BuildResult().GetResult()
	report.Fixed = fixed
	return report, nil
}

// fixRecords regenerates the records of fixable products and replaces them in the run.
// It returns the IDs of the replaced products.
func fixRecords(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, run schema.RankRunRecord, report *schema.AuditReport) ([]string, error) {
	ids := validate.FixableProducts(report)
	if len(ids) == 0 {
		return nil, nil
	}

	snapshot, err := LoadSnapshot(snapshotStore(mgr), run.SnapshotID)
	if err != nil {
		return nil, fmt.Errorf("cannot fix run %d: %w", run.RunID, err)
	}
	if snapshot.Version != int(run.AlgorithmVersion) {
		contract.LogWarn("Snapshot version differs from the audited run",
			fmt.Errorf("snapshot v%d, run v%d", snapshot.Version, run.AlgorithmVersion))
	}

	results, _, err := RankCatalog(ctx, configForRun(cfg, run), snapshot.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate rank records of run %d: %w", run.RunID, err)
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var records []schema.RankRecord
	var fixed []string
	for _, r := range results {
		if _, ok := wanted[r.ProductID]; ok {
			records = append(records, r.RankRecord)
			fixed = append(fixed, r.ProductID)
		}
	}
	if len(records) == 0 {
		return nil, nil
	}

	if err := rankStore(mgr).ReplaceRanks(run.RunID, records); err != nil {
		return nil, fmt.Errorf("failed to replace rank records of run %d: %w", run.RunID, err)
	}
	return fixed, nil
}

// runParams is the subset of stored run settings that shapes rank records.
type runParams struct {
	TrimPercent      *float64           `json:"trim_percent"`
	RawScoreFallback *bool              `json:"raw_score_fallback"`
	Weights          map[string]float64 `json:"weights"`
	EvidenceScores   map[string]float64 `json:"evidence_scores"`
}

// configForRun returns cfg overlaid with the ranking settings recorded on run,
// so regenerated records match the ones the run originally produced.
func configForRun(cfg *contract.Config, run schema.RankRunRecord) *contract.Config {
	runCfg := cfg.Clone()
	if run.ConfigParams == nil || *run.ConfigParams == "" {
		return runCfg
	}

	var params runParams
	if err := json.Unmarshal([]byte(*run.ConfigParams), &params); err != nil {
		contract.LogWarn("Ignoring unreadable settings of the audited run", err)
		return runCfg
	}

	if params.TrimPercent != nil {
		runCfg.TrimPercent = *params.TrimPercent
	}
	if params.RawScoreFallback != nil {
		runCfg.RawScoreFallback = *params.RawScoreFallback
	}
	if len(params.Weights) > 0 {
		runCfg.Weights = make(map[schema.Axis]float64, len(params.Weights))
		for axis, w := range params.Weights {
			runCfg.Weights[schema.Axis(axis)] = w
		}
	}
	if len(params.EvidenceScores) > 0 {
		runCfg.EvidenceScores = make(map[schema.EvidenceLevel]float64, len(params.EvidenceScores))
		for level, score := range params.EvidenceScores {
			runCfg.EvidenceScores[schema.EvidenceLevel(level)] = score
		}
	}
	return runCfg
}

// exportBatchMetrics writes one textfile of batch metrics when a metrics directory is configured.
func exportBatchMetrics(cfg *contract.Config, name string, observe func(*telemetry.BatchMetrics)) {
	if cfg.MetricsDir == "" {
		return
	}
	m := telemetry.NewBatchMetrics()
	observe(m)
	if err := m.WriteTextfile(cfg.MetricsDir, name); err != nil {
		contract.LogWarn("Failed to export batch metrics", err)
	}
}
