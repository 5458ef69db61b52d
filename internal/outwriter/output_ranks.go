package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/internal/parquet"
	"github.com/supplelab/tierank/schema"
)

// axisHeaders are the short table headers of the axes in display order.
var axisHeaders = map[schema.Axis]string{
	schema.AxisPrice:             "Price",
	schema.AxisCostEffectiveness: "Cost",
	schema.AxisContent:           "Content",
	schema.AxisEvidence:          "Evidence",
	schema.AxisSafety:            "Safety",
}

// PrintRankResults outputs the rank results, dispatching based on the output format configured.
func PrintRankResults(output *schema.BatchOutput, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := newFloatFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, output)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankCSV(w, output.Results, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankParquet(w, output)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankTable(w, output, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeRankTable generates and writes the human-readable table.
func writeRankTable(w io.Writer, output *schema.BatchOutput, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"#", "Product", "Name", "Group"}
	for _, axis := range schema.AllAxes {
		headers = append(headers, axisHeaders[axis])
	}
	headers = append(headers, "Overall", "Score")
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	grade := newGradeFormatter(cfg.UseColors)
	nameWidth := getMaxTableNameWidth(cfg)
	counts := make(map[schema.Grade]int, len(schema.OverallGrades))

	var data [][]string
	for i, r := range output.Results {
		row := []string{
			strconv.Itoa(i + 1),
			r.ProductID,
			contract.TruncateText(r.Name, nameWidth),
			groupLabel(r.GroupKey),
		}
		for _, axis := range schema.AllAxes {
			row = append(row, grade(axisGrade(r.RankRecord, axis)))
		}
		row = append(row, grade(r.OverallGrade), fmtFloat(r.OverallScore))
		data = append(data, row)
		counts[r.OverallGrade]++
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	var dist []string
	for _, g := range schema.OverallGrades {
		dist = append(dist, fmt.Sprintf("%s: %d", g, counts[g]))
	}
	if _, err := fmt.Fprintf(w, "Ranked %d products in %d groups (%s)\n", len(output.Results), output.Partitions, strings.Join(dist, ", ")); err != nil {
		return err
	}
	run := "not persisted"
	if output.RunID > 0 {
		run = fmt.Sprintf("run %d", output.RunID)
	}
	if _, err := fmt.Fprintf(w, "Batch completed in %v with %d workers. Snapshot %s, %s. Rank backend: %s\n",
		duration, cfg.Workers, shortHash(output.SnapshotID), run, cfg.RankBackend); err != nil {
		return err
	}
	return nil
}

// rankCSVHeader lists the CSV columns of rank results.
func rankCSVHeader() []string {
	header := []string{"product_id", "name", "group_key"}
	for _, axis := range schema.AllAxes {
		header = append(header, "grade_"+string(axis))
	}
	for _, axis := range schema.AllAxes {
		header = append(header, "percentile_"+string(axis))
	}
	return append(header, "overall_grade", "overall_score")
}

// writeRankCSV writes the rank results in CSV format. Unset axes are empty cells.
func writeRankCSV(w io.Writer, results []schema.RankResult, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, rankCSVHeader(), func(csvWriter *csv.Writer) error {
		for _, r := range results {
			rec := []string{r.ProductID, r.Name, r.GroupKey}
			for _, axis := range schema.AllAxes {
				rec = append(rec, string(axisGrade(r.RankRecord, axis)))
			}
			for _, axis := range schema.AllAxes {
				if a, ok := r.Axis(axis); ok {
					rec = append(rec, fmtFloat(a.Percentile))
				} else {
					rec = append(rec, "")
				}
			}
			rec = append(rec, string(r.OverallGrade), fmtFloat(r.OverallScore))
			if err := csvWriter.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeRankParquet writes the rank records of a batch as Parquet rows.
func writeRankParquet(w io.Writer, output *schema.BatchOutput) error {
	rows := make([]parquet.RankRow, 0, len(output.Results))
	for _, r := range output.Results {
		rows = append(rows, parquet.ConvertRankRecord(output.RunID, r.RankRecord))
	}
	return parquet.WriteRankRows(w, rows)
}

// groupLabel shows ungrouped products explicitly.
func groupLabel(key string) string {
	if key == "" {
		return contract.UnsetValue
	}
	return key
}

// shortHash abbreviates a snapshot hash for display.
func shortHash(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
