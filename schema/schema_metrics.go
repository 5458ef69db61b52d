package schema

// MetricsAxis describes one ranking axis for display purposes.
type MetricsAxis struct {
	Name          string  `json:"name"`
	Purpose       string  `json:"purpose"`
	Formula       string  `json:"formula"`
	Direction     string  `json:"direction"`
	Scope         string  `json:"scope"`
	Weight        float64 `json:"weight"`
	AbsoluteScale bool    `json:"absolute_scale"`
}

// GradeBand is one breakpoint of the percentile to grade mapping.
type GradeBand struct {
	Grade         Grade   `json:"grade"`
	MinPercentile float64 `json:"min_percentile"`
}

// MetricsRenderModel contains all processed data needed for displaying the ranking rules.
type MetricsRenderModel struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	TrimPercent    float64            `json:"trim_percent"`
	Axes           []MetricsAxis      `json:"axes"`
	Bands          []GradeBand        `json:"bands"`
	EvidenceScores map[string]float64 `json:"evidence_scores"`
	Invariants     map[string]string  `json:"invariants"`
}

// ExplainRenderModel contains the breakdown of one product's rank.
type ExplainRenderModel struct {
	ProductID    string           `json:"product_id"`
	Name         string           `json:"name,omitempty"`
	GroupKey     string           `json:"group_key,omitempty"`
	OverallGrade Grade            `json:"overall_grade"`
	OverallScore float64          `json:"overall_score"`
	Axes         []AxisResult     `json:"axes"`
	Unset        []Axis           `json:"unset,omitempty"`
	Weights      map[Axis]float64 `json:"weights"`
	Effective    map[Axis]float64 `json:"effective_weights"`
}
