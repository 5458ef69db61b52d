// Package contract provides interfaces and shared utilities for tierank's internal architecture.
package contract

import (
	"time"

	"github.com/supplelab/tierank/schema"
)

// StoreManager defines the interface for managing the persistence stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() SnapshotStore
	GetRankStore() RankStore
}

// SnapshotStore retains catalog snapshots so rank records can be regenerated.
type SnapshotStore interface {
	// Get returns the catalog JSON, algorithm version and creation time of a snapshot.
	Get(id string) ([]byte, int, int64, error)

	// Set stores a snapshot. Storing an existing ID refreshes it.
	Set(id string, value []byte, version int, timestamp int64) error

	// Latest returns the ID of the most recently stored snapshot.
	Latest() (string, error)

	// GetStatus returns status information about the snapshot store
	GetStatus() (schema.SnapshotStatus, error)

	// Close closes the underlying connection
	Close() error
}

// RankStore defines the interface for tracking rank runs and their rank records.
type RankStore interface {
	// BeginRun creates a new rank run and returns its unique ID
	BeginRun(startTime time.Time, runToken, snapshotID string, configParams map[string]any) (int64, error)

	// RecordRanks stores all rank records of a run in one transaction
	RecordRanks(runID int64, records []schema.RankRecord) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalProducts int) error

	// LatestRunID returns the most recent completed run, or 0 when there is none
	LatestRunID() (int64, error)

	// GetRun returns the metadata of one run
	GetRun(runID int64) (schema.RankRunRecord, error)

	// GetRanks returns the rank records of a run ordered by product ID
	GetRanks(runID int64) ([]schema.RankRecord, error)

	// ReplaceRanks overwrites the given products' records of a run
	ReplaceRanks(runID int64, records []schema.RankRecord) error

	// GetStatus returns status information about the rank store
	GetStatus() (schema.RankStoreStatus, error)

	// GetAllRuns returns every run for export
	GetAllRuns() ([]schema.RankRunRecord, error)

	// GetAllRanks returns every rank record of every run for export
	GetAllRanks() ([]schema.StoredRankRecord, error)

	// Close closes the underlying connection
	Close() error
}
