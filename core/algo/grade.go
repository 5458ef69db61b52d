package algo

import "github.com/supplelab/tierank/schema"

// GradeBands are the percentile breakpoints, best grade first.
// The bands are uneven so that roughly the top tenth of a group earns S.
var GradeBands = []schema.GradeBand{
	{Grade: schema.GradeS, MinPercentile: 90},
	{Grade: schema.GradeA, MinPercentile: 80},
	{Grade: schema.GradeB, MinPercentile: 70},
	{Grade: schema.GradeC, MinPercentile: 60},
	{Grade: schema.GradeD, MinPercentile: 0},
}

// PercentileToGrade maps a 0..100 percentile to an axis grade. It never returns S+.
func PercentileToGrade(percentile float64) schema.Grade {
	for _, band := range GradeBands {
		if percentile >= band.MinPercentile {
			return band.Grade
		}
	}
	return schema.GradeD
}

// GradeAxis ranks one raw axis value against its population.
// A singleton population yields the neutral percentile; when fallback is enabled and
// the axis already has an absolute 0..100 scale, the grade and score come from the
// raw value instead, while the recorded percentile stays neutral.
func GradeAxis(axis schema.Axis, value float64, population schema.Population, trimPercent float64, fallback bool) schema.AxisResult {
	percentile := Percentile(value, population.Values, schema.LowerIsBetter(axis), trimPercent)
	result := schema.AxisResult{
		Axis:           axis,
		Value:          value,
		PopulationSize: population.Size(),
		Percentile:     percentile,
		Score:          percentile,
	}

	if fallback && population.Size() <= 1 && schema.HasAbsoluteScale(axis) {
		result.Score = clamp100(value)
		result.RawFallback = true
	}

	result.Grade = PercentileToGrade(result.Score)
	return result
}
