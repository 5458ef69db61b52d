package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// PrintExplain outputs the breakdown of one product, dispatching based on the output format configured.
func PrintExplain(model *schema.ExplainRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExplainText(w, model, cfg)
		}, "Wrote text")
	}
}

// writeExplainText prints one table row per axis and the overall verdict.
func writeExplainText(w io.Writer, model *schema.ExplainRenderModel, cfg *contract.Config) error {
	grade := newGradeFormatter(cfg.UseColors)
	fmtFloat := newFloatFormatter(cfg.Precision)

	title := model.ProductID
	if model.Name != "" {
		title = fmt.Sprintf("%s (%s)", model.ProductID, model.Name)
	}
	if _, err := fmt.Fprintf(w, "🔎 Product: %s\n📂 Group: %s\n\n", title, groupLabel(model.GroupKey)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Axis", "Value", "Group Size", "Percentile", "Score", "Grade", "Weight"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, a := range model.Axes {
		score := fmtFloat(a.Score)
		if a.RawFallback {
			score += " (raw)"
		}
		data = append(data, []string{
			string(a.Axis),
			strconv.FormatFloat(a.Value, 'g', 6, 64),
			strconv.Itoa(a.PopulationSize),
			fmtFloat(a.Percentile),
			score,
			grade(a.Grade),
			strconv.FormatFloat(model.Effective[a.Axis], 'f', 2, 64),
		})
	}
	for _, axis := range model.Unset {
		data = append(data, []string{
			string(axis),
			contract.UnsetValue,
			contract.UnsetValue,
			contract.UnsetValue,
			contract.UnsetValue,
			grade(""),
			"0.00",
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	verdict := fmt.Sprintf("Overall: %s (weighted score %s)", grade(model.OverallGrade), fmtFloat(model.OverallScore))
	if model.OverallGrade == schema.GradeSPlus {
		verdict += ", all five axes reached S"
	}
	_, err := fmt.Fprintln(w, verdict)
	return err
}
