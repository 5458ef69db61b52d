package schema

// AxisResult is the explainable outcome of ranking one axis of one product.
type AxisResult struct {
	Axis           Axis    `json:"axis"`
	Value          float64 `json:"value"`
	PopulationSize int     `json:"population_size"`
	Percentile     float64 `json:"percentile"`
	Score          float64 `json:"score"`                  // what the aggregator weighs
	RawFallback    bool    `json:"raw_fallback,omitempty"` // graded from the raw value
	Grade          Grade   `json:"grade"`
}

// RankRecord is the persisted rank of one product. Axis grades missing from
// Grades were not computable.
type RankRecord struct {
	ProductID    string           `json:"product_id"`
	GroupKey     string           `json:"group_key,omitempty"`
	Grades       map[Axis]Grade   `json:"grades"`
	Scores       map[Axis]float64 `json:"scores,omitempty"`
	OverallGrade Grade            `json:"overall_grade"`
	OverallScore float64          `json:"overall_score"`

	// Upstream inputs retained so an audit can check them without the catalog.
	Price                *float64 `json:"price,omitempty"`
	ServingsPerContainer *int     `json:"servings_per_container,omitempty"`
	ServingsPerDay       *int     `json:"servings_per_day,omitempty"`
}

// Grade returns the grade of an axis and whether it is set.
func (r RankRecord) Grade(axis Axis) (Grade, bool) {
	g, ok := r.Grades[axis]
	return g, ok
}

// RankResult is a freshly computed rank with its per-axis breakdown.
type RankResult struct {
	RankRecord
	Name string       `json:"name,omitempty"`
	Axes []AxisResult `json:"axes"`
}

// Axis returns the breakdown of one axis if it was computable.
func (r RankResult) Axis(axis Axis) (AxisResult, bool) {
	for _, a := range r.Axes {
		if a.Axis == axis {
			return a, true
		}
	}
	return AxisResult{}, false
}

// BatchOutput is the result of ranking a full catalog snapshot.
type BatchOutput struct {
	RunID      int64        `json:"run_id"`
	RunToken   string       `json:"run_token"`
	SnapshotID string       `json:"snapshot_id"`
	Partitions int          `json:"partitions"`
	Results    []RankResult `json:"results"`
}

// Records returns the persistable records of the batch in result order.
func (b *BatchOutput) Records() []RankRecord {
	records := make([]RankRecord, len(b.Results))
	for i, r := range b.Results {
		records[i] = r.RankRecord
	}
	return records
}
