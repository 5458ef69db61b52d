package schema

import "time"

// SnapshotStatus represents the status of the snapshot store.
type SnapshotStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalSnapshots  int       `json:"total_snapshots"`
	LatestID        string    `json:"latest_id,omitempty"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RankStoreStatus represents the status of the rank store.
type RankStoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRanked   int              `json:"total_ranked"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RankRunRecord represents a row from the tierank_runs table.
type RankRunRecord struct {
	RunID            int64
	RunToken         string
	SnapshotID       string
	AlgorithmVersion int32
	StartTime        time.Time
	EndTime          *time.Time
	RunDurationMs    *int32
	TotalProducts    int32
	ConfigParams     *string
}

// StoredRankRecord represents a row from the tierank_rank_records table.
type StoredRankRecord struct {
	RunID int64
	RankRecord
}

// Snapshot is a retained catalog snapshot.
type Snapshot struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Products  []Product `json:"products"`
}
