package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// Table names for rank tracking.
const (
	rankRunsTable    = "tierank_runs"
	rankRecordsTable = "tierank_rank_records"
)

// insertChunkSize bounds the rows per INSERT so SQLite stays under its variable limit.
const insertChunkSize = 50

// axisColumns maps each axis to its column suffix.
var axisColumns = map[schema.Axis]string{
	schema.AxisPrice:             "price",
	schema.AxisCostEffectiveness: "cost_effectiveness",
	schema.AxisContent:           "content",
	schema.AxisEvidence:          "evidence",
	schema.AxisSafety:            "safety",
}

// runColumns are the columns of the runs table in scan order.
var runColumns = []string{
	"run_id", "run_token", "snapshot_id", "algorithm_version", "start_time",
	"end_time", "run_duration_ms", "total_products", "config_params",
}

// recordColumns are the columns of the rank records table in scan order.
var recordColumns = func() []string {
	cols := []string{
		"run_id", "product_id", "group_key", "overall_grade", "overall_score",
		"price", "servings_per_container", "servings_per_day",
	}
	for _, axis := range schema.AllAxes {
		cols = append(cols, "grade_"+axisColumns[axis])
	}
	for _, axis := range schema.AllAxes {
		cols = append(cols, "score_"+axisColumns[axis])
	}
	return cols
}()

// RankStoreImpl implements the RankStore interface.
type RankStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	builder sq.StatementBuilderType
}

var _ contract.RankStore = &RankStoreImpl{} // Compile-time check

// NewRankStore creates a new RankStore with the specified backend.
func NewRankStore(backend schema.DatabaseBackend, connStr string) (contract.RankStore, error) {
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RankStoreImpl{backend: backend}, nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if backend == schema.MySQLBackend {
		var err error
		if connStr, err = withParseTime(connStr); err != nil {
			return nil, err
		}
	}

	db, err := openDB(backend, connStr, contract.GetRankDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRankTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create rank tables: %w", err)
	}

	return &RankStoreImpl{
		db:      db,
		backend: backend,
		builder: statementBuilder(backend),
	}, nil
}

// createRankTables creates the rank tracking tables.
func createRankTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{rankRunsTable, getCreateRankRunsQuery(backend)},
		{rankRecordsTable, getCreateRankRecordsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRankRunsQuery returns the CREATE TABLE query for tierank_runs.
func getCreateRankRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(rankRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_token VARCHAR(64) NOT NULL,
				snapshot_id VARCHAR(64) NOT NULL,
				algorithm_version INT NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_products INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_token TEXT NOT NULL,
				snapshot_id TEXT NOT NULL,
				algorithm_version INT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_products INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_token TEXT NOT NULL,
				snapshot_id TEXT NOT NULL,
				algorithm_version INTEGER NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_products INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRankRecordsQuery returns the CREATE TABLE query for tierank_rank_records.
func getCreateRankRecordsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(rankRecordsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				product_id VARCHAR(128) NOT NULL,
				group_key VARCHAR(128),
				overall_grade VARCHAR(8) NOT NULL,
				overall_score DOUBLE NOT NULL,
				price DOUBLE,
				servings_per_container INT,
				servings_per_day INT,
				grade_price VARCHAR(8),
				grade_cost_effectiveness VARCHAR(8),
				grade_content VARCHAR(8),
				grade_evidence VARCHAR(8),
				grade_safety VARCHAR(8),
				score_price DOUBLE,
				score_cost_effectiveness DOUBLE,
				score_content DOUBLE,
				score_evidence DOUBLE,
				score_safety DOUBLE,
				PRIMARY KEY (run_id, product_id)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				product_id TEXT NOT NULL,
				group_key TEXT,
				overall_grade TEXT NOT NULL,
				overall_score DOUBLE PRECISION NOT NULL,
				price DOUBLE PRECISION,
				servings_per_container INT,
				servings_per_day INT,
				grade_price TEXT,
				grade_cost_effectiveness TEXT,
				grade_content TEXT,
				grade_evidence TEXT,
				grade_safety TEXT,
				score_price DOUBLE PRECISION,
				score_cost_effectiveness DOUBLE PRECISION,
				score_content DOUBLE PRECISION,
				score_evidence DOUBLE PRECISION,
				score_safety DOUBLE PRECISION,
				PRIMARY KEY (run_id, product_id)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				product_id TEXT NOT NULL,
				group_key TEXT,
				overall_grade TEXT NOT NULL,
				overall_score REAL NOT NULL,
				price REAL,
				servings_per_container INTEGER,
				servings_per_day INTEGER,
				grade_price TEXT,
				grade_cost_effectiveness TEXT,
				grade_content TEXT,
				grade_evidence TEXT,
				grade_safety TEXT,
				score_price REAL,
				score_cost_effectiveness REAL,
				score_content REAL,
				score_evidence REAL,
				score_safety REAL,
				PRIMARY KEY (run_id, product_id)
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store is a no-op.
func (rs *RankStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new rank run and returns its unique ID.
func (rs *RankStoreImpl) BeginRun(startTime time.Time, runToken, snapshotID string, configParams map[string]any) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	insert := rs.builder.
		Insert(quoteTableName(rankRunsTable, rs.backend)).
		Columns("run_token", "snapshot_id", "algorithm_version", "start_time", "config_params").
		Values(runToken, snapshotID, schema.AlgorithmVersion, formatTime(startTime, rs.backend), string(configJSON))

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query, args, buildErr := insert.Suffix("RETURNING run_id").ToSql()
		if buildErr != nil {
			return 0, buildErr
		}
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query, args, buildErr := insert.ToSql()
		if buildErr != nil {
			return 0, buildErr
		}
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert rank run: %w", err)
	}
	return runID, nil
}

// RecordRanks stores all rank records of a run in one transaction.
func (rs *RankStoreImpl) RecordRanks(runID int64, records []schema.RankRecord) error {
	if rs.disabled() {
		return nil
	}
	return rs.withTx(func(tx *sql.Tx) error {
		return rs.insertRecords(tx, runID, records)
	})
}

// ReplaceRanks overwrites the given products' records of a run in one transaction.
func (rs *RankStoreImpl) ReplaceRanks(runID int64, records []schema.RankRecord) error {
	if rs.disabled() || len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ProductID
	}

	return rs.withTx(func(tx *sql.Tx) error {
		query, args, err := rs.builder.
			Delete(quoteTableName(rankRecordsTable, rs.backend)).
			Where(sq.Eq{"run_id": runID, "product_id": ids}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to delete rank records: %w", err)
		}
		return rs.insertRecords(tx, runID, records)
	})
}

// withTx runs fn inside a transaction and commits when it succeeds.
func (rs *RankStoreImpl) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rank records: %w", err)
	}
	return nil
}

// insertRecords writes records in chunks of multi-row INSERT statements.
func (rs *RankStoreImpl) insertRecords(tx *sql.Tx, runID int64, records []schema.RankRecord) error {
	table := quoteTableName(rankRecordsTable, rs.backend)
	for start := 0; start < len(records); start += insertChunkSize {
		end := min(start+insertChunkSize, len(records))

		insert := rs.builder.Insert(table).Columns(recordColumns...)
		for _, r := range records[start:end] {
			insert = insert.Values(recordValues(runID, r)...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to insert rank records: %w", err)
		}
	}
	return nil
}

// recordValues flattens a record into recordColumns order. Absent axes become NULL.
func recordValues(runID int64, r schema.RankRecord) []any {
	values := []any{
		runID, r.ProductID, nullString(r.GroupKey), string(r.OverallGrade), r.OverallScore,
		r.Price, r.ServingsPerContainer, r.ServingsPerDay,
	}
	for _, axis := range schema.AllAxes {
		if g, ok := r.Grades[axis]; ok {
			values = append(values, string(g))
		} else {
			values = append(values, nil)
		}
	}
	for _, axis := range schema.AllAxes {
		if s, ok := r.Scores[axis]; ok {
			values = append(values, s)
		} else {
			values = append(values, nil)
		}
	}
	return values
}

// nullString maps an empty string to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// EndRun updates the run with completion data.
func (rs *RankStoreImpl) EndRun(runID int64, endTime time.Time, totalProducts int) error {
	if rs.disabled() {
		return nil
	}

	run, err := rs.GetRun(runID)
	if err != nil {
		return err
	}
	durationMs := endTime.Sub(run.StartTime).Milliseconds()

	query, args, err := rs.builder.
		Update(quoteTableName(rankRunsTable, rs.backend)).
		Set("end_time", formatTime(endTime, rs.backend)).
		Set("run_duration_ms", durationMs).
		Set("total_products", totalProducts).
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := rs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update rank run: %w", err)
	}
	return nil
}

// LatestRunID returns the most recent completed run, or 0 when there is none.
func (rs *RankStoreImpl) LatestRunID() (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	query, args, err := rs.builder.
		Select("MAX(run_id)").
		From(quoteTableName(rankRunsTable, rs.backend)).
		Where(sq.NotEq{"end_time": nil}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var runID sql.NullInt64
	if err := rs.db.QueryRow(query, args...).Scan(&runID); err != nil {
		return 0, fmt.Errorf("failed to get latest run: %w", err)
	}
	return runID.Int64, nil
}

// GetRun returns the metadata of one run.
func (rs *RankStoreImpl) GetRun(runID int64) (schema.RankRunRecord, error) {
	if rs.disabled() {
		return schema.RankRunRecord{}, sql.ErrNoRows
	}

	query, args, err := rs.builder.
		Select(runColumns...).
		From(quoteTableName(rankRunsTable, rs.backend)).
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return schema.RankRunRecord{}, err
	}

	record, err := rs.scanRun(rs.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.RankRunRecord{}, fmt.Errorf("rank run %d not found: %w", runID, err)
	}
	return record, err
}

// GetRanks returns the rank records of a run ordered by product ID.
func (rs *RankStoreImpl) GetRanks(runID int64) ([]schema.RankRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	stored, err := rs.queryRecords(sq.Eq{"run_id": runID})
	if err != nil {
		return nil, err
	}
	records := make([]schema.RankRecord, len(stored))
	for i, s := range stored {
		records[i] = s.RankRecord
	}
	return records, nil
}

// GetAllRuns retrieves all rank runs from the store.
func (rs *RankStoreImpl) GetAllRuns() ([]schema.RankRunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query, args, err := rs.builder.
		Select(runColumns...).
		From(quoteTableName(rankRunsTable, rs.backend)).
		OrderBy("run_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := rs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RankRunRecord
	for rows.Next() {
		record, err := rs.scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank runs: %w", err)
	}
	return results, nil
}

// GetAllRanks retrieves every rank record of every run.
func (rs *RankStoreImpl) GetAllRanks() ([]schema.StoredRankRecord, error) {
	if rs.disabled() {
		return nil, nil
	}
	return rs.queryRecords(nil)
}

// queryRecords selects rank records ordered by run and product.
func (rs *RankStoreImpl) queryRecords(where sq.Sqlizer) ([]schema.StoredRankRecord, error) {
	sel := rs.builder.
		Select(recordColumns...).
		From(quoteTableName(rankRecordsTable, rs.backend)).
		OrderBy("run_id", "product_id")
	if where != nil {
		sel = sel.Where(where)
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := rs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.StoredRankRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank records: %w", err)
	}
	return results, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one row in runColumns order.
func (rs *RankStoreImpl) scanRun(row rowScanner) (schema.RankRunRecord, error) {
	var record schema.RankRunRecord
	start := nullableTime{backend: rs.backend}
	end := nullableTime{backend: rs.backend}
	var duration, total sql.NullInt32

	if err := row.Scan(&record.RunID, &record.RunToken, &record.SnapshotID, &record.AlgorithmVersion,
		start.dest(), end.dest(), &duration, &total, &record.ConfigParams); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record, err
		}
		return record, fmt.Errorf("failed to scan rank run: %w", err)
	}

	startTime, err := start.value()
	if err != nil {
		return record, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if startTime != nil {
		record.StartTime = *startTime
	}
	if record.EndTime, err = end.value(); err != nil {
		return record, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if duration.Valid {
		record.RunDurationMs = &duration.Int32
	}
	record.TotalProducts = total.Int32
	return record, nil
}

// scanRecord reads one row in recordColumns order.
func scanRecord(row rowScanner) (schema.StoredRankRecord, error) {
	var (
		record       schema.StoredRankRecord
		groupKey     sql.NullString
		overallGrade string
		price        sql.NullFloat64
		perContainer sql.NullInt64
		perDay       sql.NullInt64
		grades       = make([]sql.NullString, len(schema.AllAxes))
		scores       = make([]sql.NullFloat64, len(schema.AllAxes))
	)

	dest := []any{
		&record.RunID, &record.ProductID, &groupKey, &overallGrade, &record.OverallScore,
		&price, &perContainer, &perDay,
	}
	for i := range grades {
		dest = append(dest, &grades[i])
	}
	for i := range scores {
		dest = append(dest, &scores[i])
	}
	if err := row.Scan(dest...); err != nil {
		return record, fmt.Errorf("failed to scan rank record: %w", err)
	}

	record.GroupKey = groupKey.String
	record.OverallGrade = schema.Grade(overallGrade)
	if price.Valid {
		record.Price = &price.Float64
	}
	if perContainer.Valid {
		v := int(perContainer.Int64)
		record.ServingsPerContainer = &v
	}
	if perDay.Valid {
		v := int(perDay.Int64)
		record.ServingsPerDay = &v
	}

	record.Grades = make(map[schema.Axis]schema.Grade, len(schema.AllAxes))
	record.Scores = make(map[schema.Axis]float64, len(schema.AllAxes))
	for i, axis := range schema.AllAxes {
		if grades[i].Valid {
			record.Grades[axis] = schema.Grade(grades[i].String)
		}
		if scores[i].Valid {
			record.Scores[axis] = scores[i].Float64
		}
	}
	return record, nil
}

// nullableTime scans a time column stored as text in SQLite and natively elsewhere.
type nullableTime struct {
	backend schema.DatabaseBackend
	text    sql.NullString
	native  sql.NullTime
}

func (n *nullableTime) dest() any {
	if n.backend == schema.SQLiteBackend {
		return &n.text
	}
	return &n.native
}

func (n *nullableTime) value() (*time.Time, error) {
	if n.backend == schema.SQLiteBackend {
		if !n.text.Valid {
			return nil, nil
		}
		t, err := parseTime(n.text.String)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	if !n.native.Valid {
		return nil, nil
	}
	t := n.native.Time
	return &t, nil
}

// Close closes the underlying connection.
func (rs *RankStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the rank store.
func (rs *RankStoreImpl) GetStatus() (schema.RankStoreStatus, error) {
	status := schema.RankStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.disabled() {
		return status, nil
	}

	runsTable := quoteTableName(rankRunsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last, err := rs.scanRun(rs.db.QueryRow(fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id DESC LIMIT 1", strings.Join(runColumns, ", "), runsTable)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunID = last.RunID
		status.LastRunTime = last.StartTime

		oldest, err := rs.scanRun(rs.db.QueryRow(fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id ASC LIMIT 1", strings.Join(runColumns, ", "), runsTable)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.StartTime

		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_products), 0) FROM %s", runsTable))
		if err := row.Scan(&status.TotalRanked); err != nil {
			return status, fmt.Errorf("failed to get total ranked products: %w", err)
		}
	}

	for _, table := range []string{rankRunsTable, rankRecordsTable} {
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}
