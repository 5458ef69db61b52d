package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/supplelab/tierank/schema"
)

// writeJSONMetrics writes the ranking rules in JSON format.
func writeJSONMetrics(w io.Writer, renderModel *schema.MetricsRenderModel) error {
	return writeJSON(w, renderModel)
}

// writeCSVMetrics writes one row per axis.
func writeCSVMetrics(w *csv.Writer, renderModel *schema.MetricsRenderModel) error {
	header := []string{"axis", "purpose", "formula", "direction", "scope", "weight", "absolute_scale"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, axis := range renderModel.Axes {
		record := []string{
			axis.Name,
			axis.Purpose,
			axis.Formula,
			axis.Direction,
			axis.Scope,
			strconv.FormatFloat(axis.Weight, 'f', 2, 64),
			strconv.FormatBool(axis.AbsoluteScale),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}
