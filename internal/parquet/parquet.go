// Package parquet provides data structures and functions for exporting tierank
// rank data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/supplelab/tierank/schema"
)

// RankRun represents a single rank run with metadata.
// This struct maps to the tierank_runs database table.
type RankRun struct {
	// RunID is the unique identifier for this rank run
	RunID int64 `parquet:"run_id,snappy"`

	// RunToken is the UUID assigned when the run started
	RunToken string `parquet:"run_token,snappy"`

	// SnapshotID is the hash of the catalog snapshot the run ranked
	SnapshotID string `parquet:"snapshot_id,snappy"`

	AlgorithmVersion int32 `parquet:"algorithm_version,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalProducts int32 `parquet:"total_products,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RankRow represents the rank of one product. Axis columns are null when the
// axis was not computable. RunID is zero for a run that was not persisted.
type RankRow struct {
	RunID        int64   `parquet:"run_id,snappy"`
	ProductID    string  `parquet:"product_id,snappy"`
	GroupKey     *string `parquet:"group_key,optional,snappy"`
	OverallGrade string  `parquet:"overall_grade,dict,snappy"`
	OverallScore float64 `parquet:"overall_score,snappy"`

	GradePrice             *string  `parquet:"grade_price,optional,dict,snappy"`
	GradeCostEffectiveness *string  `parquet:"grade_cost_effectiveness,optional,dict,snappy"`
	GradeContent           *string  `parquet:"grade_content,optional,dict,snappy"`
	GradeEvidence          *string  `parquet:"grade_evidence,optional,dict,snappy"`
	GradeSafety            *string  `parquet:"grade_safety,optional,dict,snappy"`
	ScorePrice             *float64 `parquet:"score_price,optional,snappy"`
	ScoreCostEffectiveness *float64 `parquet:"score_cost_effectiveness,optional,snappy"`
	ScoreContent           *float64 `parquet:"score_content,optional,snappy"`
	ScoreEvidence          *float64 `parquet:"score_evidence,optional,snappy"`
	ScoreSafety            *float64 `parquet:"score_safety,optional,snappy"`

	Price                *float64 `parquet:"price,optional,snappy"`
	ServingsPerContainer *int32   `parquet:"servings_per_container,optional,snappy"`
	ServingsPerDay       *int32   `parquet:"servings_per_day,optional,snappy"`
}

// WriteRankRunsParquet writes rank runs to a Parquet file.
func WriteRankRunsParquet(data []RankRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRankRowsParquet writes rank rows to a Parquet file.
func WriteRankRowsParquet(data []RankRow, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRankRows writes rank rows as a Parquet stream to w.
func WriteRankRows(w io.Writer, data []RankRow) error {
	// The schema is automatically derived from the RankRow struct tags
	writer := parquet.NewGenericWriter[RankRow](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return writer.Close()
}

// writeFile creates outputPath and writes data with a schema inferred from T.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRankRunRecords converts schema.RankRunRecord to RankRun for Parquet export.
func ConvertRankRunRecords(records []schema.RankRunRecord) []RankRun {
	result := make([]RankRun, len(records))
	for i, record := range records {
		result[i] = RankRun{
			RunID:            record.RunID,
			RunToken:         record.RunToken,
			SnapshotID:       record.SnapshotID,
			AlgorithmVersion: record.AlgorithmVersion,
			StartTime:        record.StartTime,
			EndTime:          record.EndTime,
			RunDurationMs:    record.RunDurationMs,
			TotalProducts:    record.TotalProducts,
			ConfigParams:     record.ConfigParams,
		}
	}
	return result
}

// ConvertStoredRankRecords converts schema.StoredRankRecord to RankRow for Parquet export.
func ConvertStoredRankRecords(records []schema.StoredRankRecord) []RankRow {
	result := make([]RankRow, len(records))
	for i, record := range records {
		result[i] = ConvertRankRecord(record.RunID, record.RankRecord)
	}
	return result
}

// ConvertRankRecord flattens one rank record into a RankRow.
func ConvertRankRecord(runID int64, r schema.RankRecord) RankRow {
	row := RankRow{
		RunID:        runID,
		ProductID:    r.ProductID,
		OverallGrade: string(r.OverallGrade),
		OverallScore: r.OverallScore,
		Price:        r.Price,
	}
	if r.GroupKey != "" {
		row.GroupKey = &r.GroupKey
	}
	if r.ServingsPerContainer != nil {
		v := int32(*r.ServingsPerContainer)
		row.ServingsPerContainer = &v
	}
	if r.ServingsPerDay != nil {
		v := int32(*r.ServingsPerDay)
		row.ServingsPerDay = &v
	}

	row.GradePrice, row.ScorePrice = axisColumns(r, schema.AxisPrice)
	row.GradeCostEffectiveness, row.ScoreCostEffectiveness = axisColumns(r, schema.AxisCostEffectiveness)
	row.GradeContent, row.ScoreContent = axisColumns(r, schema.AxisContent)
	row.GradeEvidence, row.ScoreEvidence = axisColumns(r, schema.AxisEvidence)
	row.GradeSafety, row.ScoreSafety = axisColumns(r, schema.AxisSafety)
	return row
}

// axisColumns returns the nullable grade and score of one axis.
func axisColumns(r schema.RankRecord, axis schema.Axis) (*string, *float64) {
	var grade *string
	var score *float64
	if g, ok := r.Grades[axis]; ok {
		s := string(g)
		grade = &s
	}
	if v, ok := r.Scores[axis]; ok {
		score = &v
	}
	return grade, score
}
