package schema

// Custom string types for type safety.
type (
	// Grade represents a letter grade on one axis or overall.
	Grade string

	// Axis represents one of the five ranking dimensions.
	Axis string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string

	// IssueType represents the kind of problem found by an audit.
	IssueType string

	// Severity represents how serious an audit issue is.
	Severity string

	// EvidenceLevel represents the categorical evidence classification of a product.
	EvidenceLevel string
)

// AlgorithmVersion is stored with every snapshot and run. Bump it whenever
// the extraction, percentile or aggregation rules change.
const AlgorithmVersion = 1

// All grades supported.
const (
	GradeSPlus Grade = "S+" // overall only
	GradeS     Grade = "S"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
)

// All ranking axes.
const (
	AxisPrice             Axis = "price"
	AxisCostEffectiveness Axis = "costEffectiveness"
	AxisContent           Axis = "content"
	AxisEvidence          Axis = "evidence"
	AxisSafety            Axis = "safety"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All audit issue types.
const (
	IssueInvalidRank           IssueType = "invalid_rank"
	IssueImpossibleCombination IssueType = "impossible_combination"
	IssueMissingData           IssueType = "missing_data"
	IssueDistributionAnomaly   IssueType = "distribution_anomaly"
)

// All audit severities.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// All evidence levels, strongest first.
const (
	EvidenceHigh         EvidenceLevel = "high"
	EvidenceModerate     EvidenceLevel = "moderate"
	EvidenceLow          EvidenceLevel = "low"
	EvidenceVeryLow      EvidenceLevel = "very_low"
	EvidenceInsufficient EvidenceLevel = "insufficient"
)

// AllAxes lists the axes in display order.
var AllAxes = []Axis{AxisPrice, AxisCostEffectiveness, AxisContent, AxisEvidence, AxisSafety}

// AllIssueTypes lists the issue types in report order.
var AllIssueTypes = []IssueType{IssueInvalidRank, IssueImpossibleCombination, IssueMissingData, IssueDistributionAnomaly}

// AxisGrades lists the grades an axis can hold, best first.
var AxisGrades = []Grade{GradeS, GradeA, GradeB, GradeC, GradeD}

// OverallGrades lists the grades an overall rank can hold, best first.
var OverallGrades = []Grade{GradeSPlus, GradeS, GradeA, GradeB, GradeC, GradeD}

// ValidAxisGrades is the closed set of axis grades.
var ValidAxisGrades = map[Grade]struct{}{
	GradeS: {},
	GradeA: {},
	GradeB: {},
	GradeC: {},
	GradeD: {},
}

// ValidOverallGrades is the closed set of overall grades.
var ValidOverallGrades = map[Grade]struct{}{
	GradeSPlus: {},
	GradeS:     {},
	GradeA:     {},
	GradeB:     {},
	GradeC:     {},
	GradeD:     {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// IssueSeverities maps each issue type to its fixed severity.
var IssueSeverities = map[IssueType]Severity{
	IssueInvalidRank:           SeverityCritical,
	IssueImpossibleCombination: SeverityCritical,
	IssueMissingData:           SeverityCritical,
	IssueDistributionAnomaly:   SeverityWarning,
}

// DefaultEvidenceScores maps each evidence level to its ordinal score.
var DefaultEvidenceScores = map[EvidenceLevel]float64{
	EvidenceHigh:         100,
	EvidenceModerate:     75,
	EvidenceLow:          50,
	EvidenceVeryLow:      25,
	EvidenceInsufficient: 0,
}

// LowerIsBetter reports whether a smaller raw value ranks higher on the axis.
func LowerIsBetter(axis Axis) bool {
	return axis == AxisPrice || axis == AxisCostEffectiveness
}

// RequiresGroup reports whether the axis is only comparable within a primary group.
func RequiresGroup(axis Axis) bool {
	return axis == AxisContent || axis == AxisCostEffectiveness
}

// HasAbsoluteScale reports whether raw axis values already live on a 0..100 scale.
func HasAbsoluteScale(axis Axis) bool {
	return axis == AxisEvidence || axis == AxisSafety
}

// GetDefaultWeights returns the default axis weights for the overall grade.
// Evidence and safety outweigh the economic axes.
func GetDefaultWeights() map[Axis]float64 {
	return map[Axis]float64{
		AxisPrice:             0.15,
		AxisCostEffectiveness: 0.15,
		AxisContent:           0.10,
		AxisEvidence:          0.30,
		AxisSafety:            0.30,
	}
}
