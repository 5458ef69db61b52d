// Package core has core logic for ranking, auditing and explaining catalog grades.
package core

import (
	"context"
	"time"

	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/internal/outwriter"
	"github.com/supplelab/tierank/internal/telemetry"
	"github.com/supplelab/tierank/schema"
)

// ExecutorFunc defines the function signature for executing store-backed commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteRank ranks the catalog, persists the run and prints the grades.
// It serves as the main entry point for the nightly batch.
func ExecuteRank(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		outwriter.LogRankHeader(cfg)
	}

	output, err := RunRankBatch(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)

	exportBatchMetrics(cfg, telemetry.RankTextfile, func(m *telemetry.BatchMetrics) {
		m.ObserveRank(output, duration, time.Now())
	})

	return outwriter.NewOutWriter().WriteRanks(output, cfg, duration)
}

// ExecuteExplain prints the per-axis breakdown of one product.
func ExecuteExplain(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, productID string) error {
	model, err := ExplainProduct(ctx, cfg, mgr, productID)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteExplain(model, cfg)
}

// ExecuteMetrics displays the grade bands, axis definitions and weights.
// This is a static display that does not require a catalog.
func ExecuteMetrics(_ context.Context, cfg *contract.Config) error {
	return outwriter.NewOutWriter().WriteMetrics(BuildMetricsModel(cfg), cfg)
}

// RankOnly ranks the catalog without persisting anything or printing a header.
// It backs read-only callers such as the MCP server.
func RankOnly(ctx context.Context, cfg *contract.Config) (*schema.BatchOutput, error) {
	return RunRankBatch(ctx, cfg, nil)
}
