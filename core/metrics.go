package core

import (
	"github.com/supplelab/tierank/core/algo"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// axisDescriptions holds the static part of each axis definition.
var axisDescriptions = map[schema.Axis]schema.MetricsAxis{
	schema.AxisPrice: {
		Purpose: "What a day of use costs",
		Formula: "price / (servings_per_container / servings_per_day)",
	},
	schema.AxisCostEffectiveness: {
		Purpose: "What one mg of the primary ingredient costs",
		Formula: "price / (primary_amount_mg * servings_per_container)",
	},
	schema.AxisContent: {
		Purpose: "How much primary ingredient one serving holds",
		Formula: "primary_amount_mg per serving",
	},
	schema.AxisEvidence: {
		Purpose: "Strength of the clinical evidence",
		Formula: "ordinal score of the evidence label",
	},
	schema.AxisSafety: {
		Purpose: "Freedom from side effects and interactions",
		Formula: "100 - min(5*side_effects, 40) - min(10*interactions, 50)",
	},
}

// BuildMetricsModel describes the active ranking rules. It needs no catalog.
func BuildMetricsModel(cfg *contract.Config) *schema.MetricsRenderModel {
	evidenceScores, weights := rankingTables(cfg)

	axes := make([]schema.MetricsAxis, 0, len(schema.AllAxes))
	for _, axis := range schema.AllAxes {
		def := axisDescriptions[axis]
		def.Name = string(axis)
		def.Weight = weights[axis]
		def.AbsoluteScale = schema.HasAbsoluteScale(axis)
		def.Direction = "higher is better"
		if schema.LowerIsBetter(axis) {
			def.Direction = "lower is better"
		}
		def.Scope = "primary ingredient group"
		if schema.RequiresGroup(axis) {
			def.Scope = "primary ingredient group, unset when ungrouped"
		}
		axes = append(axes, def)
	}

	evidence := make(map[string]float64, len(evidenceScores))
	for level, score := range evidenceScores {
		evidence[string(level)] = score
	}

	return &schema.MetricsRenderModel{
		Title:          "Tier Ranking Rules",
		Description:    "Each axis is graded by its mid-rank percentile among comparable products, then the axes are combined into one overall tier.",
		TrimPercent:    cfg.TrimPercent,
		Axes:           axes,
		Bands:          algo.GradeBands,
		EvidenceScores: evidence,
		Invariants: map[string]string{
			"s_plus":       "S+ is awarded only when all five axes are S; no weighted average can reach it",
			"singleton":    "a comparison group of one product yields percentile 50",
			"ties":         "equal values share the mid-rank percentile",
			"distribution": "roughly one product in ten earns S on each axis",
		},
	}
}
