package core

import (
	"math"
	"strings"

	"github.com/supplelab/tierank/schema"
)

// Safety scoring constants.
const (
	SafetyBaseline        = 100.0
	SideEffectPenalty     = 5.0
	SideEffectPenaltyCap  = 40.0
	InteractionPenalty    = 10.0
	InteractionPenaltyCap = 50.0
)

// ExtractMetrics derives the raw axis values of one product. Axes that cannot be
// computed are left out of the record instead of failing the product.
func ExtractMetrics(p schema.Product, evidenceScores map[schema.EvidenceLevel]float64) schema.MetricRecord {
	record := schema.MetricRecord{
		ProductID:  p.ID,
		AxisValues: make(map[schema.Axis]float64, len(schema.AllAxes)),
	}

	set := func(axis schema.Axis, v float64) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			record.AxisValues[axis] = v
		}
	}

	if v, ok := dailyCost(p); ok {
		set(schema.AxisPrice, v)
	}

	if primary, ok := p.PrimaryIngredient(); ok {
		record.PrimaryGroupKey = primary.GroupKey
		set(schema.AxisContent, primary.AmountMg)
		if v, ok := costPerMg(p, primary.AmountMg); ok {
			set(schema.AxisCostEffectiveness, v)
		}
	}

	if v, ok := evidenceScore(p.Evidence, evidenceScores); ok {
		set(schema.AxisEvidence, v)
	}

	set(schema.AxisSafety, SafetyScore(len(p.SideEffects), len(p.Interactions)))
	return record
}

// dailyCost is the price normalized to one day of use.
func dailyCost(p schema.Product) (float64, bool) {
	if p.Price <= 0 || p.ServingsPerContainer <= 0 || p.ServingsPerDay <= 0 {
		return 0, false
	}
	days := float64(p.ServingsPerContainer) / float64(p.ServingsPerDay)
	return p.Price / days, true
}

// costPerMg is the price paid per milligram of the primary ingredient.
func costPerMg(p schema.Product, amountMg float64) (float64, bool) {
	if p.Price <= 0 || p.ServingsPerContainer <= 0 || amountMg <= 0 {
		return 0, false
	}
	return p.Price / (amountMg * float64(p.ServingsPerContainer)), true
}

// evidenceScore maps a categorical label to its ordinal score.
func evidenceScore(label string, scores map[schema.EvidenceLevel]float64) (float64, bool) {
	key := schema.EvidenceLevel(strings.ToLower(strings.TrimSpace(label)))
	if key == "" {
		return 0, false
	}
	v, ok := scores[key]
	return v, ok
}

// SafetyScore starts from the baseline and subtracts capped penalties for known
// side effects and interactions. The result is bounded to [0, 100].
func SafetyScore(sideEffects, interactions int) float64 {
	sidePenalty := math.Min(SideEffectPenalty*float64(max(sideEffects, 0)), SideEffectPenaltyCap)
	interactionPenalty := math.Min(InteractionPenalty*float64(max(interactions, 0)), InteractionPenaltyCap)
	return math.Max(0, math.Min(100, SafetyBaseline-sidePenalty-interactionPenalty))
}
