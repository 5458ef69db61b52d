package schema

// Issue is a single finding of the consistency validator.
type Issue struct {
	Type      IssueType `json:"type"`
	Severity  Severity  `json:"severity"`
	ProductID string    `json:"product_id,omitempty"`
	Axis      Axis      `json:"axis,omitempty"`
	Message   string    `json:"message"`
}

// AuditReport is the structured result of auditing one rank run.
type AuditReport struct {
	RunID            int64                  `json:"run_id"`
	RunToken         string                 `json:"run_token,omitempty"`
	TotalRecords     int                    `json:"total_records"`
	Passed           bool                   `json:"passed"`
	Strict           bool                   `json:"strict,omitempty"`
	CriticalCount    int                    `json:"critical_count"`
	WarningCount     int                    `json:"warning_count"`
	Counts           map[IssueType]int      `json:"counts"`
	AffectedProducts map[IssueType][]string `json:"affected_products"`
	SFractions       map[Axis]float64       `json:"s_fractions"`
	Issues           []Issue                `json:"issues"`
	Fixed            []string               `json:"fixed,omitempty"`
}

// HasCritical reports whether any critical issue was found.
func (r *AuditReport) HasCritical() bool {
	return r.CriticalCount > 0
}

// Failed reports whether the audit should fail the process.
// Warnings only fail in strict mode.
func (r *AuditReport) Failed() bool {
	return r.HasCritical() || (r.Strict && r.WarningCount > 0)
}
