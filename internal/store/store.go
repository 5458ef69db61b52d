// Package store persists catalog snapshots and rank runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// StoreManager manages the snapshot and rank stores.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	snapshots    contract.SnapshotStore
	ranks        contract.RankStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetSnapshotStore returns the snapshot store.
func (mgr *StoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}

// GetRankStore returns the rank store.
func (mgr *StoreManager) GetRankStore() contract.RankStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.ranks
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with separate snapshot and rank stores.
// An empty backend leaves the corresponding store unset.
func InitStores(snapshotBackend schema.DatabaseBackend, snapshotConnStr string, rankBackend schema.DatabaseBackend, rankConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var snapshots contract.SnapshotStore
		if snapshotBackend != "" {
			snapshots, err = NewSnapshotStore(snapshotTable, snapshotBackend, snapshotConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize snapshot store: %w", err)
				return
			}
		}

		var ranks contract.RankStore
		if rankBackend != "" {
			ranks, err = NewRankStore(rankBackend, rankConnStr)
			if err != nil {
				if snapshots != nil {
					_ = snapshots.Close()
				}
				initErr = fmt.Errorf("failed to initialize rank store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.snapshots = snapshots
		Manager.ranks = ranks
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.snapshots != nil {
			_ = Manager.snapshots.Close()
		}
		if Manager.ranks != nil {
			_ = Manager.ranks.Close()
		}
	})
}

// openDB opens and pings a connection for the backend.
// An empty SQLite connection string selects defaultPath.
func openDB(backend schema.DatabaseBackend, connStr, defaultPath string) (*sql.DB, error) {
	driver := driverName(backend)
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = defaultPath
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w. %s", backend, err, connectionDetail(backend))
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connectionDetail(backend))
	}
	return db, nil
}

// ClearSnapshots removes all retained snapshots.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearSnapshots(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, []string{snapshotTable})
}

// ClearRanks removes all rank runs and their records.
func ClearRanks(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, []string{rankRecordsTable, rankRunsTable, migrationsTable})
}

// clearBackend drops the given tables, or the whole file for SQLite.
func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables []string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range tables {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}
	driver := driverName(backend)
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
