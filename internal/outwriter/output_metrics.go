package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// getDisplayNameForAxis returns the display name with emoji for an axis.
func getDisplayNameForAxis(axis string) string {
	switch schema.Axis(axis) {
	case schema.AxisPrice:
		return "💰 PRICE"
	case schema.AxisCostEffectiveness:
		return "⚖️  COST EFFECTIVENESS"
	case schema.AxisContent:
		return "💊 CONTENT"
	case schema.AxisEvidence:
		return "🔬 EVIDENCE"
	case schema.AxisSafety:
		return "🛡️  SAFETY"
	default:
		return strings.ToUpper(axis)
	}
}

// formatWeights formats the weights of the overall score as a formula.
func formatWeights(axes []schema.MetricsAxis) string {
	var parts []string
	for _, a := range axes {
		if a.Weight > 0 {
			parts = append(parts, fmt.Sprintf("%.2f*%s", a.Weight, a.Name))
		}
	}
	return strings.Join(parts, " + ")
}

// PrintMetricsDefinitions displays the grade bands, axis definitions and weights.
// This is a static display that does not require a catalog.
func PrintMetricsDefinitions(renderModel *schema.MetricsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONMetrics(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			writer := csv.NewWriter(w)
			if err := writeCSVMetrics(writer, renderModel); err != nil {
				return err
			}
			writer.Flush()
			return writer.Error()
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, renderModel)
		}, "Wrote text")
	}
}

// writeMetricsText displays the ranking rules in human-readable text format.
func writeMetricsText(w io.Writer, renderModel *schema.MetricsRenderModel) error {
	var b strings.Builder

	fmt.Fprintf(&b, "🏆 %s\n", renderModel.Title)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", len(renderModel.Title)+3))
	fmt.Fprintf(&b, "%s\n\n", renderModel.Description)

	for _, axis := range renderModel.Axes {
		fmt.Fprintf(&b, "%s: %s\n", getDisplayNameForAxis(axis.Name), axis.Purpose)
		fmt.Fprintf(&b, "   Value: %s\n", axis.Formula)
		fmt.Fprintf(&b, "   Direction: %s, ranked within %s\n", axis.Direction, axis.Scope)
		fmt.Fprintf(&b, "   Weight: %.2f\n\n", axis.Weight)
	}

	fmt.Fprintf(&b, "📐 Percentile\n")
	fmt.Fprintf(&b, "   rank = below + (equal + 1) / 2, percentile = (rank - 1) / (N - 1) * 100\n")
	fmt.Fprintf(&b, "   Groups of 10 or more drop %.0f%% of values from each tail first\n\n", renderModel.TrimPercent)

	fmt.Fprintf(&b, "🎖️  Grades\n")
	for _, band := range renderModel.Bands {
		fmt.Fprintf(&b, "   %-2s percentile >= %.0f\n", band.Grade, band.MinPercentile)
	}
	fmt.Fprintf(&b, "   Overall = %s, renormalized over graded axes\n\n", formatWeights(renderModel.Axes))

	fmt.Fprintf(&b, "🔬 Evidence Levels\n")
	for _, level := range sortedEvidenceLevels(renderModel.EvidenceScores) {
		fmt.Fprintf(&b, "   %-13s %.0f\n", level, renderModel.EvidenceScores[level])
	}
	fmt.Fprintf(&b, "\n🔗 Invariants\n")
	for _, key := range slices.Sorted(maps.Keys(renderModel.Invariants)) {
		fmt.Fprintf(&b, "   %s\n", renderModel.Invariants[key])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// sortedEvidenceLevels orders evidence labels from strongest to weakest.
func sortedEvidenceLevels(scores map[string]float64) []string {
	levels := make([]string, 0, len(scores))
	for level := range scores {
		levels = append(levels, level)
	}
	slices.SortFunc(levels, func(a, b string) int {
		if scores[a] != scores[b] {
			if scores[a] > scores[b] {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return levels
}
