package core

import (
	"context"
	"fmt"

	"github.com/supplelab/tierank/core/validate"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// AuditReportBuilder builds the audit report of one persisted rank run using a builder pattern.
type AuditReportBuilder struct {
	cfg     *contract.Config
	store   contract.RankStore
	ctx     context.Context
	runID   int64
	run     schema.RankRunRecord
	records []schema.RankRecord
	report  *schema.AuditReport
}

// NewAuditReportBuilder creates a new builder for audit reports.
func NewAuditReportBuilder(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) *AuditReportBuilder {
	return &AuditReportBuilder{
		cfg:   cfg,
		store: rankStore(mgr),
		ctx:   ctx,
	}
}

// ValidatePrerequisites resolves the run to audit.
func (b *AuditReportBuilder) ValidatePrerequisites() (*AuditReportBuilder, error) {
	if b.store == nil {
		return nil, fmt.Errorf("audit requires a rank store. Set --rank-backend to sqlite, mysql or postgresql")
	}

	if b.cfg.RunID > 0 {
		b.runID = b.cfg.RunID
		return b, nil
	}

	runID, err := b.store.LatestRunID()
	if err != nil {
		return nil, fmt.Errorf("failed to look up the latest rank run: %w", err)
	}
	if runID == 0 {
		return nil, fmt.Errorf("no completed rank run found. Run 'tierank rank <catalog>' first")
	}
	b.runID = runID
	return b, nil
}

// LoadRecords reads the run metadata and its persisted rank records.
func (b *AuditReportBuilder) LoadRecords() (*AuditReportBuilder, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}

	run, err := b.store.GetRun(b.runID)
	if err != nil {
		return nil, err
	}
	records, err := b.store.GetRanks(b.runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rank records of run %d: %w", b.runID, err)
	}

	b.run = run
	b.records = records
	return b, nil
}

// RunChecks validates every loaded record and the catalog-wide distribution.
func (b *AuditReportBuilder) RunChecks() *AuditReportBuilder {
	b.report = validate.Audit(b.records, auditOptions(b.cfg))
	return b
}

// BuildResult stamps the run identity onto the report.
func (b *AuditReportBuilder) BuildResult() *AuditReportBuilder {
	if b.report == nil {
		b.report = validate.Audit(nil, auditOptions(b.cfg))
	}
	b.report.RunID = b.run.RunID
	b.report.RunToken = b.run.RunToken
	return b
}

// GetResult returns the built AuditReport.
func (b *AuditReportBuilder) GetResult() *schema.AuditReport {
	return b.report
}

// Run returns the metadata of the audited run.
func (b *AuditReportBuilder) Run() schema.RankRunRecord {
	return b.run
}

// Records returns the audited rank records.
func (b *AuditReportBuilder) Records() []schema.RankRecord {
	return b.records
}

// auditOptions maps the audit settings of cfg onto validator options.
func auditOptions(cfg *contract.Config) validate.Options {
	return validate.Options{
		Target:      cfg.DistributionTarget,
		Tolerance:   cfg.DistributionTolerance,
		MinProducts: cfg.DistributionMinProducts,
		Strict:      cfg.Strict,
	}
}
