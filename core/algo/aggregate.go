package algo

import "github.com/supplelab/tierank/schema"

// IsAllS reports whether every one of the five axes holds grade S.
func IsAllS(grades map[schema.Axis]schema.Grade) bool {
	for _, axis := range schema.AllAxes {
		if grades[axis] != schema.GradeS {
			return false
		}
	}
	return true
}

// EffectiveWeights renormalizes weights over the axes present in scores.
// It returns nil when no present axis carries weight.
func EffectiveWeights(scores map[schema.Axis]float64, weights map[schema.Axis]float64) map[schema.Axis]float64 {
	total := 0.0
	for _, axis := range schema.AllAxes {
		if _, ok := scores[axis]; ok {
			total += weights[axis]
		}
	}
	if total <= 0 {
		return nil
	}
	effective := make(map[schema.Axis]float64, len(scores))
	for axis := range scores {
		effective[axis] = weights[axis] / total
	}
	return effective
}

// AggregateTier combines the per-axis results of one product into its overall grade.
// Five S grades give S+, a logical AND that no average can reach. Otherwise the
// weighted mean of the computable axis scores is discretized once through the
// percentile bands. With nothing computable the product falls back to D.
func AggregateTier(axes map[schema.Axis]schema.AxisResult, weights map[schema.Axis]float64) (schema.Grade, float64) {
	grades := make(map[schema.Axis]schema.Grade, len(axes))
	scores := make(map[schema.Axis]float64, len(axes))
	for axis, r := range axes {
		grades[axis] = r.Grade
		scores[axis] = r.Score
	}

	effective := EffectiveWeights(scores, weights)
	overall := 0.0
	for _, axis := range schema.AllAxes { // fixed order keeps reruns bit-identical
		overall += effective[axis] * scores[axis]
	}
	overall = clamp100(overall)

	if IsAllS(grades) {
		return schema.GradeSPlus, overall
	}
	if effective == nil {
		return schema.GradeD, 0
	}
	return PercentileToGrade(overall), overall
}
