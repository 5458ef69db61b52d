package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/schema"
)

func magnesium(id string, price float64, amountMg float64) schema.Product {
	return schema.Product{
		ID:                   id,
		Name:                 "Magnesium " + id,
		Price:                price,
		ServingsPerContainer: 60,
		ServingsPerDay:       2,
		Ingredients: []schema.Ingredient{
			{GroupKey: "magnesium", AmountMg: amountMg, Primary: true},
		},
		Evidence: "moderate",
	}
}

func TestExtractMetrics(t *testing.T) {
	p := magnesium("m1", 30, 200)
	p.SideEffects = []string{"nausea"}
	p.Interactions = []string{"antibiotics"}

	m := ExtractMetrics(p, schema.DefaultEvidenceScores)

	assert.Equal(t, "m1", m.ProductID)
	assert.Equal(t, "magnesium", m.PrimaryGroupKey)

	price, ok := m.Value(schema.AxisPrice)
	require.True(t, ok)
	assert.InDelta(t, 1.0, price, 1e-9) // 30 / (60/2)

	content, ok := m.Value(schema.AxisContent)
	require.True(t, ok)
	assert.Equal(t, 200.0, content)

	cost, ok := m.Value(schema.AxisCostEffectiveness)
	require.True(t, ok)
	assert.InDelta(t, 30.0/(200*60), cost, 1e-12)

	evidence, ok := m.Value(schema.AxisEvidence)
	require.True(t, ok)
	assert.Equal(t, 75.0, evidence)

	safety, ok := m.Value(schema.AxisSafety)
	require.True(t, ok)
	assert.Equal(t, 85.0, safety)
}

func TestExtractMetrics_ZeroServingsLeavesPriceUndefined(t *testing.T) {
	p := magnesium("broken", 25, 100)
	p.ServingsPerContainer = 0

	m := ExtractMetrics(p, schema.DefaultEvidenceScores)

	_, ok := m.Value(schema.AxisPrice)
	assert.False(t, ok)
	_, ok = m.Value(schema.AxisCostEffectiveness)
	assert.False(t, ok)

	// Unrelated axes are still computed
	_, ok = m.Value(schema.AxisSafety)
	assert.True(t, ok)
	_, ok = m.Value(schema.AxisContent)
	assert.True(t, ok)
}

func TestExtractMetrics_UndefinedInputs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *schema.Product)
		missing []schema.Axis
		present []schema.Axis
	}{
		{
			name:    "zero price",
			mutate:  func(p *schema.Product) { p.Price = 0 },
			missing: []schema.Axis{schema.AxisPrice, schema.AxisCostEffectiveness},
			present: []schema.Axis{schema.AxisContent, schema.AxisEvidence, schema.AxisSafety},
		},
		{
			name:    "negative price",
			mutate:  func(p *schema.Product) { p.Price = -4 },
			missing: []schema.Axis{schema.AxisPrice, schema.AxisCostEffectiveness},
		},
		{
			name:    "zero servings per day",
			mutate:  func(p *schema.Product) { p.ServingsPerDay = 0 },
			missing: []schema.Axis{schema.AxisPrice},
			present: []schema.Axis{schema.AxisCostEffectiveness},
		},
		{
			name:    "zero primary amount",
			mutate:  func(p *schema.Product) { p.Ingredients[0].AmountMg = 0 },
			missing: []schema.Axis{schema.AxisCostEffectiveness},
			present: []schema.Axis{schema.AxisContent, schema.AxisPrice},
		},
		{
			name:    "no ingredients",
			mutate:  func(p *schema.Product) { p.Ingredients = nil },
			missing: []schema.Axis{schema.AxisContent, schema.AxisCostEffectiveness},
			present: []schema.Axis{schema.AxisPrice},
		},
		{
			name:    "unknown evidence label",
			mutate:  func(p *schema.Product) { p.Evidence = "anecdotal" },
			missing: []schema.Axis{schema.AxisEvidence},
		},
		{
			name:    "empty evidence label",
			mutate:  func(p *schema.Product) { p.Evidence = "  " },
			missing: []schema.Axis{schema.AxisEvidence},
		},
		{
			name:    "infinite amount",
			mutate:  func(p *schema.Product) { p.Ingredients[0].AmountMg = math.Inf(1) },
			missing: []schema.Axis{schema.AxisContent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := magnesium("x", 20, 100)
			tt.mutate(&p)

			var m schema.MetricRecord
			assert.NotPanics(t, func() { m = ExtractMetrics(p, schema.DefaultEvidenceScores) })

			for _, axis := range tt.missing {
				_, ok := m.Value(axis)
				assert.False(t, ok, "axis %s should be undefined", axis)
			}
			for _, axis := range tt.present {
				_, ok := m.Value(axis)
				assert.True(t, ok, "axis %s should be defined", axis)
			}
		})
	}
}

func TestExtractMetrics_PrimaryIngredient(t *testing.T) {
	p := magnesium("x", 20, 100)
	p.Ingredients = []schema.Ingredient{
		{GroupKey: "zinc", AmountMg: 15},
		{GroupKey: "magnesium", AmountMg: 300, Primary: true},
	}
	m := ExtractMetrics(p, schema.DefaultEvidenceScores)
	assert.Equal(t, "magnesium", m.PrimaryGroupKey)

	p.Ingredients[1].Primary = false
	m = ExtractMetrics(p, schema.DefaultEvidenceScores)
	assert.Equal(t, "zinc", m.PrimaryGroupKey)
}

func TestExtractMetrics_EvidenceLabelNormalized(t *testing.T) {
	p := magnesium("x", 20, 100)
	p.Evidence = " HIGH "
	m := ExtractMetrics(p, schema.DefaultEvidenceScores)
	v, ok := m.Value(schema.AxisEvidence)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)

	custom := map[schema.EvidenceLevel]float64{schema.EvidenceHigh: 90}
	m = ExtractMetrics(p, custom)
	v, _ = m.Value(schema.AxisEvidence)
	assert.Equal(t, 90.0, v)
}

func TestSafetyScore(t *testing.T) {
	tests := []struct {
		sideEffects, interactions int
		expected                  float64
	}{
		{0, 0, 100},
		{1, 0, 95},
		{0, 1, 90},
		{2, 3, 60},
		{8, 0, 60},
		{20, 0, 60},  // side effect cap
		{0, 9, 50},   // interaction cap
		{20, 20, 10}, // both caps
		{-3, -1, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SafetyScore(tt.sideEffects, tt.interactions), "side=%d int=%d", tt.sideEffects, tt.interactions)
	}
}
