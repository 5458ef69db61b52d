// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"strings"
	"time"

	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRanks prints the graded catalog using the configured output format.
func (ow *OutWriter) WriteRanks(output *schema.BatchOutput, cfg *contract.Config, duration time.Duration) error {
	return PrintRankResults(output, cfg, duration)
}

// WriteAudit prints an audit report using the configured output format.
func (ow *OutWriter) WriteAudit(report *schema.AuditReport, cfg *contract.Config, duration time.Duration) error {
	return PrintAuditReport(report, cfg, duration)
}

// WriteExplain prints the breakdown of one product using the configured output format.
func (ow *OutWriter) WriteExplain(model *schema.ExplainRenderModel, cfg *contract.Config) error {
	return PrintExplain(model, cfg)
}

// WriteMetrics prints the ranking rules using the configured output format.
func (ow *OutWriter) WriteMetrics(model *schema.MetricsRenderModel, cfg *contract.Config) error {
	return PrintMetricsDefinitions(model, cfg)
}

// LogRankHeader prints a concise, 2-line header before a rank batch.
func LogRankHeader(cfg *contract.Config) {
	catalog := strings.Join(cfg.CatalogPatterns, ", ")
	if catalog == "" {
		catalog = "none"
	}
	fmt.Printf("📦 Catalog: %s\n", catalog)
	fmt.Printf("⚙️  Trim: %.0f%% | Raw fallback: %t | Workers: %d\n", cfg.TrimPercent, cfg.RawScoreFallback, cfg.Workers)
}
