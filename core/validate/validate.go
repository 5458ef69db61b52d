// Package validate audits persisted rank records. It only inspects stored grades and
// inputs and never recomputes percentiles, so it can catch records that were
// corrupted or edited by hand after ranking.
package validate

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/supplelab/tierank/schema"
)

// Options tune the catalog-wide distribution check.
type Options struct {
	Target      float64 // expected share of S grades, in percent
	Tolerance   float64 // allowed deviation, in percentage points
	MinProducts int     // smaller axes are not checked
	Strict      bool    // warnings fail the audit
}

// CheckRecord returns every per-record issue of one rank record.
func CheckRecord(r schema.RankRecord) []schema.Issue {
	var issues []schema.Issue
	issues = append(issues, checkGradeDomain(r)...)
	if issue, ok := checkCombination(r); ok {
		issues = append(issues, issue)
	}
	if issue, ok := checkInputs(r); ok {
		issues = append(issues, issue)
	}
	return issues
}

// checkGradeDomain flags grades outside the closed sets. S+ is an overall-only grade.
func checkGradeDomain(r schema.RankRecord) []schema.Issue {
	var issues []schema.Issue

	for _, axis := range sortedAxes(r.Grades) {
		grade := r.Grades[axis]
		if !slices.Contains(schema.AllAxes, axis) {
			issues = append(issues, newIssue(schema.IssueInvalidRank, r.ProductID, axis,
				fmt.Sprintf("unknown axis %q carries grade %q", axis, grade)))
			continue
		}
		if _, ok := schema.ValidAxisGrades[grade]; !ok {
			issues = append(issues, newIssue(schema.IssueInvalidRank, r.ProductID, axis,
				fmt.Sprintf("%s grade %q is not one of S, A, B, C, D", axis, grade)))
		}
	}

	if _, ok := schema.ValidOverallGrades[r.OverallGrade]; !ok {
		issues = append(issues, newIssue(schema.IssueInvalidRank, r.ProductID, "",
			fmt.Sprintf("overall grade %q is not one of S+, S, A, B, C, D", r.OverallGrade)))
	}
	return issues
}

// checkCombination enforces that S+ is held exactly when all five axes are S.
func checkCombination(r schema.RankRecord) (schema.Issue, bool) {
	var notS []string
	for _, axis := range schema.AllAxes {
		grade, ok := r.Grade(axis)
		switch {
		case !ok:
			notS = append(notS, string(axis)+"=unset")
		case grade != schema.GradeS:
			notS = append(notS, fmt.Sprintf("%s=%s", axis, grade))
		}
	}

	if r.OverallGrade == schema.GradeSPlus && len(notS) > 0 {
		return newIssue(schema.IssueImpossibleCombination, r.ProductID, "",
			"overall S+ without all five axes at S: "+strings.Join(notS, ", ")), true
	}
	if r.OverallGrade != schema.GradeSPlus && len(notS) == 0 {
		return newIssue(schema.IssueImpossibleCombination, r.ProductID, "",
			fmt.Sprintf("all five axes are S but overall is %q instead of S+", r.OverallGrade)), true
	}
	return schema.Issue{}, false
}

// checkInputs requires the price and servings inputs to be present and positive.
func checkInputs(r schema.RankRecord) (schema.Issue, bool) {
	var missing []string
	if r.Price == nil || *r.Price <= 0 || math.IsNaN(*r.Price) {
		missing = append(missing, "price")
	}
	if r.ServingsPerContainer == nil || *r.ServingsPerContainer <= 0 {
		missing = append(missing, "servings_per_container")
	}
	if r.ServingsPerDay == nil || *r.ServingsPerDay <= 0 {
		missing = append(missing, "servings_per_day")
	}
	if len(missing) == 0 {
		return schema.Issue{}, false
	}
	return newIssue(schema.IssueMissingData, r.ProductID, "",
		"missing or non-positive "+strings.Join(missing, ", ")), true
}

// CheckDistribution compares the share of S grades per axis against the expected
// band. It returns the warnings and the observed S share of every graded axis.
func CheckDistribution(records []schema.RankRecord, opts Options) ([]schema.Issue, map[schema.Axis]float64) {
	fractions := make(map[schema.Axis]float64)
	var issues []schema.Issue

	for _, axis := range schema.AllAxes {
		graded, sCount := 0, 0
		for _, r := range records {
			grade, ok := r.Grade(axis)
			if !ok {
				continue
			}
			if _, valid := schema.ValidAxisGrades[grade]; !valid {
				continue
			}
			graded++
			if grade == schema.GradeS {
				sCount++
			}
		}
		if graded == 0 {
			continue
		}

		share := float64(sCount) / float64(graded) * 100
		fractions[axis] = share
		if graded < opts.MinProducts {
			continue
		}
		if math.Abs(share-opts.Target) > opts.Tolerance {
			issues = append(issues, newIssue(schema.IssueDistributionAnomaly, "", axis,
				fmt.Sprintf("%s has %.1f%% S grades (%d of %d), expected %.1f%% ± %.1f",
					axis, share, sCount, graded, opts.Target, opts.Tolerance)))
		}
	}
	return issues, fractions
}

// Audit runs every check over the full record set and summarizes the findings.
// It never stops at the first problem and never modifies records.
func Audit(records []schema.RankRecord, opts Options) *schema.AuditReport {
	report := &schema.AuditReport{
		TotalRecords:     len(records),
		Strict:           opts.Strict,
		Counts:           make(map[schema.IssueType]int, len(schema.AllIssueTypes)),
		AffectedProducts: make(map[schema.IssueType][]string, len(schema.AllIssueTypes)),
		Issues:           []schema.Issue{},
	}
	for _, t := range schema.AllIssueTypes {
		report.Counts[t] = 0
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b schema.RankRecord) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})

	for _, r := range sorted {
		report.Issues = append(report.Issues, CheckRecord(r)...)
	}
	distribution, fractions := CheckDistribution(sorted, opts)
	report.Issues = append(report.Issues, distribution...)
	report.SFractions = fractions

	Summarize(report)
	return report
}

// Summarize recomputes the counts, affected products and pass flag of a report from its issues.
func Summarize(report *schema.AuditReport) {
	report.CriticalCount, report.WarningCount = 0, 0
	for _, t := range schema.AllIssueTypes {
		report.Counts[t] = 0
		delete(report.AffectedProducts, t)
	}

	for _, issue := range report.Issues {
		report.Counts[issue.Type]++
		if issue.Severity == schema.SeverityCritical {
			report.CriticalCount++
		} else {
			report.WarningCount++
		}
		if issue.ProductID != "" && !slices.Contains(report.AffectedProducts[issue.Type], issue.ProductID) {
			report.AffectedProducts[issue.Type] = append(report.AffectedProducts[issue.Type], issue.ProductID)
		}
	}
	report.Passed = !report.Failed()
}

// FixableProducts returns the products whose records can be regenerated from the
// snapshot. Missing inputs and distribution drift are not fixed by regeneration.
func FixableProducts(report *schema.AuditReport) []string {
	var ids []string
	for _, issue := range report.Issues {
		if issue.Type != schema.IssueInvalidRank && issue.Type != schema.IssueImpossibleCombination {
			continue
		}
		if issue.ProductID != "" && !slices.Contains(ids, issue.ProductID) {
			ids = append(ids, issue.ProductID)
		}
	}
	slices.Sort(ids)
	return ids
}

// newIssue builds an issue with the fixed severity of its type.
func newIssue(t schema.IssueType, productID string, axis schema.Axis, msg string) schema.Issue {
	return schema.Issue{
		Type:      t,
		Severity:  schema.IssueSeverities[t],
		ProductID: productID,
		Axis:      axis,
		Message:   msg,
	}
}

// sortedAxes returns the axis keys of a grade map in a stable order.
func sortedAxes(grades map[schema.Axis]schema.Grade) []schema.Axis {
	axes := make([]schema.Axis, 0, len(grades))
	for axis := range grades {
		axes = append(axes, axis)
	}
	slices.Sort(axes)
	return axes
}
