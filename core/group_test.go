package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/schema"
)

func metric(id, group string, values map[schema.Axis]float64) schema.MetricRecord {
	return schema.MetricRecord{ProductID: id, PrimaryGroupKey: group, AxisValues: values}
}

func TestPartitionByGroup(t *testing.T) {
	records := []schema.MetricRecord{
		metric("z", "zinc", nil),
		metric("b", "magnesium", nil),
		metric("u", "", nil),
		metric("a", "magnesium", nil),
	}

	partitions := PartitionByGroup(records)

	require.Len(t, partitions, 3)
	assert.Equal(t, "", partitions[0].Key)
	assert.Equal(t, "magnesium", partitions[1].Key)
	assert.Equal(t, "zinc", partitions[2].Key)

	require.Len(t, partitions[1].Records, 2)
	assert.Equal(t, "a", partitions[1].Records[0].ProductID)
	assert.Equal(t, "b", partitions[1].Records[1].ProductID)
}

func TestPartitionByGroup_Empty(t *testing.T) {
	assert.Empty(t, PartitionByGroup(nil))
}

func TestSelectPopulation(t *testing.T) {
	catalog := []schema.MetricRecord{
		metric("a", "magnesium", map[schema.Axis]float64{schema.AxisPrice: 1, schema.AxisContent: 200}),
		metric("b", "magnesium", map[schema.Axis]float64{schema.AxisPrice: 2}),
		metric("c", "magnesium", map[schema.Axis]float64{schema.AxisPrice: 3, schema.AxisContent: 400}),
		metric("z", "zinc", map[schema.Axis]float64{schema.AxisPrice: 99}),
		metric("u", "", map[schema.Axis]float64{schema.AxisPrice: 5, schema.AxisContent: 10}),
	}

	t.Run("same group only, subject included", func(t *testing.T) {
		pop := SelectPopulation(catalog, catalog[1], schema.AxisPrice)
		assert.Equal(t, schema.AxisPrice, pop.Axis)
		assert.Equal(t, "magnesium", pop.GroupKey)
		assert.Equal(t, []float64{1, 2, 3}, pop.Values)
	})

	t.Run("records without the axis are skipped", func(t *testing.T) {
		pop := SelectPopulation(catalog, catalog[0], schema.AxisContent)
		assert.Equal(t, []float64{200, 400}, pop.Values)
	})

	t.Run("unique group is a singleton", func(t *testing.T) {
		pop := SelectPopulation(catalog, catalog[3], schema.AxisPrice)
		assert.Equal(t, []float64{99}, pop.Values)
	})

	t.Run("subject missing from catalog", func(t *testing.T) {
		outsider := metric("new", "zinc", map[schema.Axis]float64{schema.AxisPrice: 7})
		pop := SelectPopulation(catalog, outsider, schema.AxisPrice)
		assert.Equal(t, []float64{99, 7}, pop.Values)
	})

	t.Run("subject without value has no population", func(t *testing.T) {
		pop := SelectPopulation(catalog, catalog[1], schema.AxisContent)
		assert.Equal(t, 0, pop.Size())
	})

	t.Run("ungrouped product skips group-only axes", func(t *testing.T) {
		pop := SelectPopulation(catalog, catalog[4], schema.AxisContent)
		assert.Equal(t, 0, pop.Size())

		pop = SelectPopulation(catalog, catalog[4], schema.AxisPrice)
		assert.Equal(t, []float64{5}, pop.Values)
	})
}

func TestRankable(t *testing.T) {
	assert.True(t, rankable(schema.AxisContent, "magnesium"))
	assert.False(t, rankable(schema.AxisContent, ""))
	assert.False(t, rankable(schema.AxisCostEffectiveness, ""))
	assert.True(t, rankable(schema.AxisPrice, ""))
	assert.True(t, rankable(schema.AxisSafety, ""))
}
