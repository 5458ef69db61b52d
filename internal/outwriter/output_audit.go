package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// auditStyles holds the styles of the audit summary panel.
type auditStyles struct {
	panel  lipgloss.Style
	title  lipgloss.Style
	passed lipgloss.Style
	failed lipgloss.Style
	dim    lipgloss.Style
}

// newAuditStyles creates the panel styles. Colors are dropped when disabled.
func newAuditStyles(useColors bool) auditStyles {
	styles := auditStyles{
		panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		title:  lipgloss.NewStyle().Bold(true),
		passed: lipgloss.NewStyle().Bold(true),
		failed: lipgloss.NewStyle().Bold(true),
		dim:    lipgloss.NewStyle(),
	}
	if useColors {
		styles.panel = styles.panel.BorderForeground(lipgloss.Color("12"))
		styles.passed = styles.passed.Foreground(lipgloss.Color("10"))
		styles.failed = styles.failed.Foreground(lipgloss.Color("9"))
		styles.dim = styles.dim.Foreground(lipgloss.Color("8"))
	}
	return styles
}

// PrintAuditReport outputs the audit report, dispatching based on the output format configured.
func PrintAuditReport(report *schema.AuditReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAuditCSV(w, report)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAuditText(w, report, cfg, duration)
		}, "Wrote text")
	}
}

// writeAuditText prints one line per violation followed by the summary panel.
func writeAuditText(w io.Writer, report *schema.AuditReport, cfg *contract.Config, duration time.Duration) error {
	if err := writeAuditHeader(w, report, duration); err != nil {
		return err
	}

	if len(report.Fixed) > 0 {
		if _, err := fmt.Fprintf(w, "🔧 Regenerated %d product(s) from the retained snapshot: %s\n\n",
			len(report.Fixed), strings.Join(report.Fixed, ", ")); err != nil {
			return err
		}
	}

	severity := contract.GetPlainSeverity
	if cfg.UseColors {
		severity = contract.GetColorSeverity
	}
	for _, issue := range report.Issues {
		subject := issue.ProductID
		if subject == "" {
			subject = string(issue.Axis)
		}
		if _, err := fmt.Fprintf(w, "  %s %s [%s] %s\n", severity(issue.Severity), issue.Type, subject, issue.Message); err != nil {
			return err
		}
	}
	if len(report.Issues) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if cfg.Verbose {
		if err := writeAuditDetails(w, report, cfg); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, renderAuditSummary(report, newAuditStyles(cfg.UseColors)))
	return err
}

// writeAuditHeader prints the audited run with padded labels.
func writeAuditHeader(w io.Writer, report *schema.AuditReport, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, "Rank Audit Results:"); err != nil {
		return err
	}

	mode := "report-only"
	if report.Strict {
		mode = "strict"
	}
	if len(report.Fixed) > 0 {
		mode += ", fixed"
	}
	labels := []string{"Run:", "Token:", "Records:", "Mode:"}
	values := []any{report.RunID, report.RunToken, report.TotalRecords, mode}

	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		if _, err := fmt.Fprintf(w, "  %-*s %v\n", maxLabelLen+1, label, values[i]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nAudited %d records in %v\n\n", report.TotalRecords, duration)
	return err
}

// writeAuditDetails prints the S-grade share per axis and the affected products per type.
func writeAuditDetails(w io.Writer, report *schema.AuditReport, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Axis", "S share"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	fmtFloat := newFloatFormatter(cfg.Precision)
	var data [][]string
	for _, axis := range schema.AllAxes {
		share, ok := report.SFractions[axis]
		if !ok {
			data = append(data, []string{string(axis), contract.UnsetValue})
			continue
		}
		data = append(data, []string{string(axis), fmtFloat(share) + "%"})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, t := range schema.AllIssueTypes {
		ids := report.AffectedProducts[t]
		if len(ids) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", t, strings.Join(ids, ", ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// renderAuditSummary renders the pass or fail verdict with counts per issue type.
func renderAuditSummary(report *schema.AuditReport, styles auditStyles) string {
	var lines []string
	if report.Passed {
		lines = append(lines, styles.passed.Render("✅ Audit passed"))
	} else {
		lines = append(lines, styles.failed.Render(fmt.Sprintf("❌ Audit failed: %d critical, %d warning",
			report.CriticalCount, report.WarningCount)))
	}
	lines = append(lines, "")

	width := 0
	for _, t := range schema.AllIssueTypes {
		width = max(width, len(t))
	}
	for _, t := range schema.AllIssueTypes {
		line := fmt.Sprintf("%-*s %d", width, t, report.Counts[t])
		if report.Counts[t] == 0 {
			line = styles.dim.Render(line)
		}
		lines = append(lines, line)
	}
	if report.Strict && report.WarningCount > 0 && report.CriticalCount == 0 {
		lines = append(lines, "", "warnings fail the audit in strict mode")
	}

	return styles.panel.Render(styles.title.Render("Summary") + "\n" + strings.Join(lines, "\n"))
}

// writeAuditCSV writes one row per issue.
func writeAuditCSV(w io.Writer, report *schema.AuditReport) error {
	header := []string{"run_id", "type", "severity", "product_id", "axis", "message"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, issue := range report.Issues {
			rec := []string{
				fmt.Sprint(report.RunID),
				string(issue.Type),
				string(issue.Severity),
				issue.ProductID,
				string(issue.Axis),
				issue.Message,
			}
			if err := csvWriter.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
