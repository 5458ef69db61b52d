package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supplelab/tierank/core/algo"
	"github.com/supplelab/tierank/internal/catalog"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
	"golang.org/x/sync/errgroup"
)

// RankCatalog grades every product of a catalog snapshot. Partitions with distinct
// primary group keys are disjoint, so they are ranked concurrently without locking.
// Results are ordered by product ID. It also returns the number of partitions.
func RankCatalog(ctx context.Context, cfg *contract.Config, products []schema.Product) ([]schema.RankResult, int, error) {
	evidenceScores, weights := rankingTables(cfg)

	byID := make(map[string]schema.Product, len(products))
	metrics := make([]schema.MetricRecord, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		metrics = append(metrics, ExtractMetrics(p, evidenceScores))
	}

	partitions := PartitionByGroup(metrics)
	ranked := make([][]schema.RankResult, len(partitions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, part := range partitions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine writes to its own index
			ranked[i] = rankPartition(part, byID, cfg.TrimPercent, cfg.RawScoreFallback, weights)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	results := slices.Concat(ranked...)
	slices.SortFunc(results, func(a, b schema.RankResult) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})
	return results, len(partitions), nil
}

// rankPartition grades all products sharing one group key.
func rankPartition(part Partition, products map[string]schema.Product, trimPercent float64, fallback bool, weights map[schema.Axis]float64) []schema.RankResult {
	results := make([]schema.RankResult, 0, len(part.Records))
	for _, m := range part.Records {
		axes := make(map[schema.Axis]schema.AxisResult, len(schema.AllAxes))
		for _, axis := range schema.AllAxes {
			v, ok := m.Value(axis)
			if !ok || !rankable(axis, part.Key) {
				continue
			}
			population := SelectPopulation(part.Records, m, axis)
			axes[axis] = algo.GradeAxis(axis, v, population, trimPercent, fallback)
		}
		results = append(results, buildRankResult(products[m.ProductID], m, axes, weights))
	}
	return results
}

// buildRankResult aggregates the axis results of one product into its rank.
func buildRankResult(p schema.Product, m schema.MetricRecord, axes map[schema.Axis]schema.AxisResult, weights map[schema.Axis]float64) schema.RankResult {
	overall, score := algo.AggregateTier(axes, weights)

	price := p.Price
	perContainer := p.ServingsPerContainer
	perDay := p.ServingsPerDay

	result := schema.RankResult{
		RankRecord: schema.RankRecord{
			ProductID:            p.ID,
			GroupKey:             m.PrimaryGroupKey,
			Grades:               make(map[schema.Axis]schema.Grade, len(axes)),
			Scores:               make(map[schema.Axis]float64, len(axes)),
			OverallGrade:         overall,
			OverallScore:         score,
			Price:                &price,
			ServingsPerContainer: &perContainer,
			ServingsPerDay:       &perDay,
		},
		Name: p.Name,
		Axes: make([]schema.AxisResult, 0, len(axes)),
	}
	for _, axis := range schema.AllAxes {
		if a, ok := axes[axis]; ok {
			result.Grades[axis] = a.Grade
			result.Scores[axis] = a.Score
			result.Axes = append(result.Axes, a)
		}
	}
	return result
}

// rankingTables returns the evidence mapping and weights, falling back to defaults.
func rankingTables(cfg *contract.Config) (map[schema.EvidenceLevel]float64, map[schema.Axis]float64) {
	evidenceScores := cfg.EvidenceScores
	if evidenceScores == nil {
		evidenceScores = schema.DefaultEvidenceScores
	}
	weights := cfg.Weights
	if weights == nil {
		weights = schema.GetDefaultWeights()
	}
	return evidenceScores, weights
}

// RunRankBatch performs one atomic "read snapshot, compute, write batch" cycle:
// it loads the catalog, retains its snapshot, ranks it, and records the run.
// Nothing is persisted when ranking is cancelled.
func RunRankBatch(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.BatchOutput, error) {
	start := time.Now()

	if len(cfg.CatalogPatterns) == 0 {
		return nil, fmt.Errorf("no catalog given. Pass catalog files or globs as arguments or set the catalog key")
	}
	products, err := catalog.Load(cfg.CatalogPatterns)
	if err != nil {
		return nil, err
	}

	snapshot, payload, err := NewSnapshot(products, start)
	if err != nil {
		return nil, err
	}

	results, partitions, err := RankCatalog(ctx, cfg, snapshot.Products)
	if err != nil {
		return nil, fmt.Errorf("rank batch aborted: %w", err)
	}

	output := &schema.BatchOutput{
		RunToken:   uuid.NewString(),
		SnapshotID: snapshot.ID,
		Partitions: partitions,
		Results:    results,
	}

	if store := snapshotStore(mgr); store != nil {
		if err := store.Set(snapshot.ID, payload, snapshot.Version, start.Unix()); err != nil {
			contract.LogWarn("Snapshot retention failed", err)
		}
	}

	if store := rankStore(mgr); store != nil {
		runID, err := store.BeginRun(start, output.RunToken, snapshot.ID, runConfigParams(cfg))
		if err != nil {
			contract.LogWarn("Rank run tracking initialization failed", err)
		} else if runID > 0 {
			if err := store.RecordRanks(runID, output.Records()); err != nil {
				return nil, fmt.Errorf("failed to persist rank records: %w", err)
			}
			// Unfinished runs are invisible to LatestRunID.
			if err := store.EndRun(runID, time.Now(), len(results)); err != nil {
				return nil, fmt.Errorf("failed to finalize rank run %d, audit it with --run-id %d: %w", runID, runID, err)
			}
			output.RunID = runID
		}
	}

	return output, nil
}

// runConfigParams captures the settings that shaped a run.
func runConfigParams(cfg *contract.Config) map[string]any {
	evidenceScores, weights := rankingTables(cfg)
	w := make(map[string]float64, len(weights))
	for axis, v := range weights {
		w[string(axis)] = v
	}
	e := make(map[string]float64, len(evidenceScores))
	for level, v := range evidenceScores {
		e[string(level)] = v
	}
	return map[string]any{
		"catalog":            cfg.CatalogPatterns,
		"trim_percent":       cfg.TrimPercent,
		"raw_score_fallback": cfg.RawScoreFallback,
		"workers":            cfg.Workers,
		"weights":            w,
		"evidence_scores":    e,
		"algorithm_version":  schema.AlgorithmVersion,
	}
}

// snapshotStore returns the snapshot store of mgr, or nil.
func snapshotStore(mgr contract.StoreManager) contract.SnapshotStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetSnapshotStore()
}

// rankStore returns the rank store of mgr, or nil.
func rankStore(mgr contract.StoreManager) contract.RankStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRankStore()
}
