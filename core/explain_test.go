package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/internal/store"
	"github.com/supplelab/tierank/schema"
)

func TestExplainProduct(t *testing.T) {
	products := append(magnesiumCatalog(10), schema.Product{
		ID:                   "misc-01",
		Name:                 "Sleep Blend",
		Price:                20,
		ServingsPerContainer: 30,
		ServingsPerDay:       1,
		Evidence:             "low",
	})
	cfg := testConfig()
	cfg.CatalogPatterns = []string{writeCatalog(t, products)}

	t.Run("grouped product", func(t *testing.T) {
		model, err := ExplainProduct(context.Background(), cfg, nil, "mg-00")
		require.NoError(t, err)

		assert.Equal(t, "mg-00", model.ProductID)
		assert.Equal(t, "magnesium", model.GroupKey)
		assert.Len(t, model.Axes, len(schema.AllAxes))
		assert.Empty(t, model.Unset)
		assert.Equal(t, schema.GetDefaultWeights(), model.Weights)

		total := 0.0
		for _, w := range model.Effective {
			total += w
		}
		assert.InDelta(t, 1.0, total, 1e-9)

		price := model.Axes[0]
		require.Equal(t, schema.AxisPrice, price.Axis)
		assert.Equal(t, 10, price.PopulationSize)
		assert.Equal(t, schema.GradeS, price.Grade)
	})

	t.Run("ungrouped product lists unset axes", func(t *testing.T) {
		model, err := ExplainProduct(context.Background(), cfg, nil, "misc-01")
		require.NoError(t, err)

		assert.Empty(t, model.GroupKey)
		assert.ElementsMatch(t, []schema.Axis{schema.AxisCostEffectiveness, schema.AxisContent}, model.Unset)
		assert.NotContains(t, model.Effective, schema.AxisContent)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := ExplainProduct(context.Background(), cfg, nil, "nope")
		assert.True(t, errors.Is(err, ErrProductNotFound))
		assert.ErrorContains(t, err, "nope")
	})
}

func TestExplainProduct_FallsBackToSnapshot(t *testing.T) {
	cfg := auditConfig()
	mgr, _, _ := rankedStores(t, cfg, 6)

	cfg.CatalogPatterns = nil
	model, err := ExplainProduct(context.Background(), cfg, mgr, "mg-03")
	require.NoError(t, err)
	assert.Equal(t, "Magnesium mg-03", model.Name)
}

func TestExplainProduct_NoCatalogNoStore(t *testing.T) {
	_, err := ExplainProduct(context.Background(), testConfig(), nil, "mg-00")
	assert.ErrorContains(t, err, "no snapshot store configured")
}

func TestExplainProduct_EmptySnapshotStore(t *testing.T) {
	snapshots, err := store.NewSnapshotStore("tierank_snapshots", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = snapshots.Close() }()

	mgr := &store.MockStoreManager{}
	mgr.On("GetSnapshotStore").Return(snapshots)

	_, err = ExplainProduct(context.Background(), testConfig(), mgr, "mg-00")
	assert.ErrorContains(t, err, "no retained snapshot")
}

func TestBuildMetricsModel(t *testing.T) {
	cfg := testConfig()
	model := BuildMetricsModel(cfg)

	require.Len(t, model.Axes, len(schema.AllAxes))
	assert.Equal(t, cfg.TrimPercent, model.TrimPercent)

	byName := make(map[string]schema.MetricsAxis, len(model.Axes))
	for _, a := range model.Axes {
		byName[a.Name] = a
		assert.NotEmpty(t, a.Purpose, a.Name)
		assert.NotEmpty(t, a.Formula, a.Name)
	}
	assert.Equal(t, "lower is better", byName["price"].Direction)
	assert.Equal(t, "higher is better", byName["content"].Direction)
	assert.Contains(t, byName["content"].Scope, "unset when ungrouped")
	assert.NotContains(t, byName["price"].Scope, "unset")
	assert.True(t, byName["evidence"].AbsoluteScale)
	assert.Equal(t, cfg.Weights[schema.AxisSafety], byName["safety"].Weight)

	assert.Equal(t, schema.GradeS, model.Bands[0].Grade)
	assert.Contains(t, model.EvidenceScores, "high")
	assert.Contains(t, model.Invariants, "s_plus")
}

func TestBuildMetricsModel_CustomWeights(t *testing.T) {
	cfg := testConfig()
	cfg.Weights = map[schema.Axis]float64{schema.AxisPrice: 1}

	model := BuildMetricsModel(cfg)
	for _, a := range model.Axes {
		if a.Name == string(schema.AxisPrice) {
			assert.Equal(t, 1.0, a.Weight)
		} else {
			assert.Zero(t, a.Weight, a.Name)
		}
	}
}
