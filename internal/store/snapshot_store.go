package store

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// snapshotTable is the name of the table for catalog snapshots.
const snapshotTable = "tierank_snapshots"

// SnapshotStoreImpl retains catalog snapshots in one of the supported backends.
type SnapshotStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
	builder   sq.StatementBuilderType
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore initializes and returns a new SnapshotStore based on the backend type.
func NewSnapshotStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	case schema.NoneBackend:
		// Return a no-op store for disabled retention
		return &SnapshotStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	default:
		return nil, fmt.Errorf("unsupported snapshot backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	db, err := openDB(backend, connStr, contract.GetSnapshotDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateSnapshotTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &SnapshotStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
		builder:   statementBuilder(backend),
	}, nil
}

// getCreateSnapshotTableQuery returns the CREATE TABLE query for the given backend.
func getCreateSnapshotTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id VARCHAR(64) PRIMARY KEY,
				snapshot_value LONGBLOB NOT NULL,
				snapshot_version INT NOT NULL,
				snapshot_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id TEXT PRIMARY KEY,
				snapshot_value BYTEA NOT NULL,
				snapshot_version INTEGER NOT NULL,
				snapshot_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id TEXT PRIMARY KEY,
				snapshot_value BLOB NOT NULL,
				snapshot_version INTEGER NOT NULL,
				snapshot_timestamp INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store is a no-op.
func (ss *SnapshotStoreImpl) disabled() bool {
	return ss.backend == schema.NoneBackend || ss.db == nil
}

// Get retrieves a snapshot by ID.
func (ss *SnapshotStoreImpl) Get(id string) ([]byte, int, int64, error) {
	if ss.disabled() {
		return nil, 0, 0, sql.ErrNoRows
	}

	query, args, err := ss.builder.
		Select("snapshot_value", "snapshot_version", "snapshot_timestamp").
		From(quoteTableName(ss.tableName, ss.backend)).
		Where(sq.Eq{"snapshot_id": id}).
		ToSql()
	if err != nil {
		return nil, 0, 0, err
	}

	var value []byte
	var version int
	var ts int64
	if err := ss.db.QueryRow(query, args...).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a snapshot.
func (ss *SnapshotStoreImpl) Set(id string, value []byte, version int, timestamp int64) error {
	if ss.disabled() {
		return nil
	}

	insert := ss.builder.
		Insert(quoteTableName(ss.tableName, ss.backend)).
		Columns("snapshot_id", "snapshot_value", "snapshot_version", "snapshot_timestamp").
		Values(id, value, version, timestamp)

	// Use backend-specific UPSERT
	switch ss.backend {
	case schema.MySQLBackend:
		insert = insert.Suffix("AS new ON DUPLICATE KEY UPDATE snapshot_value = new.snapshot_value, snapshot_version = new.snapshot_version, snapshot_timestamp = new.snapshot_timestamp")
	case schema.PostgreSQLBackend:
		insert = insert.Suffix("ON CONFLICT (snapshot_id) DO UPDATE SET snapshot_value = EXCLUDED.snapshot_value, snapshot_version = EXCLUDED.snapshot_version, snapshot_timestamp = EXCLUDED.snapshot_timestamp")
	default: // SQLite
		insert = insert.Options("OR REPLACE")
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = ss.db.Exec(query, args...)
	return err
}

// Latest returns the ID of the most recently stored snapshot.
func (ss *SnapshotStoreImpl) Latest() (string, error) {
	if ss.disabled() {
		return "", sql.ErrNoRows
	}

	query, args, err := ss.builder.
		Select("snapshot_id").
		From(quoteTableName(ss.tableName, ss.backend)).
		OrderBy("snapshot_timestamp DESC", "snapshot_id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", err
	}

	var id string
	if err := ss.db.QueryRow(query, args...).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Close closes the underlying DB connection.
func (ss *SnapshotStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (ss *SnapshotStoreImpl) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:   string(ss.backend),
		Connected: ss.db != nil,
	}

	if ss.disabled() {
		return status, nil
	}

	quotedTableName := quoteTableName(ss.tableName, ss.backend)

	row := ss.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalSnapshots); err != nil {
		return status, fmt.Errorf("failed to get total snapshots: %w", err)
	}

	if status.TotalSnapshots == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	row = ss.db.QueryRow(fmt.Sprintf("SELECT MAX(snapshot_timestamp), MIN(snapshot_timestamp) FROM %s", quotedTableName))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get snapshot times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	if latest, err := ss.Latest(); err == nil {
		status.LatestID = latest
	}

	status.TableSizeBytes = ss.tableSizeBytes(int64(status.TotalSnapshots))
	return status, nil
}

// tableSizeBytes estimates the on-disk size of the snapshot table.
// It falls back to a rough per-row estimate when the backend cannot report it.
func (ss *SnapshotStoreImpl) tableSizeBytes(rows int64) int64 {
	fallback := rows * 1000
	var size int64

	switch ss.backend {
	case schema.SQLiteBackend:
		row := ss.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ss.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		row := ss.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, ss.tableName)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	case schema.PostgreSQLBackend:
		row := ss.db.QueryRow("SELECT pg_total_relation_size($1)", ss.tableName)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	default:
		return fallback
	}
}
