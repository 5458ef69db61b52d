package store

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/supplelab/tierank/schema"
)

func TestPrintSnapshotStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintSnapshotStatus(&buf, schema.SnapshotStatus{Backend: "none"})
	assert.Contains(t, buf.String(), "Snapshot Backend: none")
	assert.NotContains(t, buf.String(), "Total Snapshots")

	buf.Reset()
	PrintSnapshotStatus(&buf, schema.SnapshotStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalSnapshots:  2,
		LatestID:        "abc123",
		LastEntryTime:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local),
		OldestEntryTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local),
		TableSizeBytes:  4096,
	})
	assert.Contains(t, buf.String(), "Total Snapshots: 2")
	assert.Contains(t, buf.String(), "Latest Snapshot: abc123")
	assert.Contains(t, buf.String(), "Last Entry: 2026-01-02 03:04:05")
	assert.Contains(t, buf.String(), "Table Size: 4096 bytes")
}

func TestPrintRankStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintRankStatus(&buf, schema.RankStoreStatus{
		Backend:     "sqlite",
		Connected:   true,
		TotalRuns:   3,
		LastRunID:   3,
		TotalRanked: 42,
		TableSizes: map[string]int64{
			rankRunsTable:    3,
			rankRecordsTable: 42,
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Last Run ID: 3")
	assert.Contains(t, out, "Total Products Ranked: 42")
	// Tables print in name order
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(rankRecordsTable)), bytes.Index(buf.Bytes(), []byte(rankRunsTable)))
}
