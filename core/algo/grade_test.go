package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/supplelab/tierank/schema"
)

func TestPercentileToGrade(t *testing.T) {
	tests := []struct {
		percentile float64
		expected   schema.Grade
	}{
		{100, schema.GradeS},
		{90, schema.GradeS},
		{89.999, schema.GradeA},
		{80, schema.GradeA},
		{79.5, schema.GradeB},
		{70, schema.GradeB},
		{60, schema.GradeC},
		{59.99, schema.GradeD},
		{0, schema.GradeD},
		{-10, schema.GradeD},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PercentileToGrade(tt.percentile), "percentile %v", tt.percentile)
	}
}

func TestPercentileToGrade_NeverSPlus(t *testing.T) {
	for p := -5.0; p <= 105; p += 0.25 {
		g := PercentileToGrade(p)
		assert.NotEqual(t, schema.GradeSPlus, g)
		_, ok := schema.ValidAxisGrades[g]
		assert.True(t, ok, "grade %s", g)
	}
}

func TestGradeAxis(t *testing.T) {
	population := schema.Population{
		Axis:     schema.AxisPrice,
		GroupKey: "vitamin_c",
		Values:   []float64{300, 400, 500, 600, 700},
	}

	result := GradeAxis(schema.AxisPrice, 300, population, DefaultTrimPercent, true)

	assert.Equal(t, schema.AxisPrice, result.Axis)
	assert.Equal(t, 300.0, result.Value)
	assert.Equal(t, 5, result.PopulationSize)
	assert.Equal(t, 100.0, result.Percentile)
	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, schema.GradeS, result.Grade)
	assert.False(t, result.RawFallback)
}

func TestGradeAxis_RawScoreFallback(t *testing.T) {
	tests := []struct {
		name         string
		axis         schema.Axis
		value        float64
		fallback     bool
		wantScore    float64
		wantGrade    schema.Grade
		wantFallback bool
	}{
		{"evidence uses raw score", schema.AxisEvidence, 100, true, 100, schema.GradeS, true},
		{"safety uses raw score", schema.AxisSafety, 65, true, 65, schema.GradeC, true},
		{"raw score is clamped", schema.AxisSafety, 140, true, 100, schema.GradeS, true},
		{"fallback disabled", schema.AxisEvidence, 100, false, 50, schema.GradeD, false},
		{"relative axis stays neutral", schema.AxisPrice, 10, true, 50, schema.GradeD, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			population := schema.Population{Axis: tt.axis, Values: []float64{tt.value}}
			result := GradeAxis(tt.axis, tt.value, population, DefaultTrimPercent, tt.fallback)

			assert.Equal(t, NeutralPercentile, result.Percentile)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, tt.wantGrade, result.Grade)
			assert.Equal(t, tt.wantFallback, result.RawFallback)
		})
	}
}

func TestGradeAxis_FallbackNeedsSingleton(t *testing.T) {
	population := schema.Population{Axis: schema.AxisEvidence, Values: []float64{100, 75}}

	result := GradeAxis(schema.AxisEvidence, 75, population, DefaultTrimPercent, true)

	assert.False(t, result.RawFallback)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, schema.GradeD, result.Grade)
}
