package store

import (
	"fmt"
	"io"
	"slices"

	"github.com/supplelab/tierank/schema"
)

// timeLayout is used for all status timestamps.
const timeLayout = "2006-01-02 15:04:05"

// PrintSnapshotStatus prints snapshot store status information.
func PrintSnapshotStatus(w io.Writer, status schema.SnapshotStatus) {
	_, _ = fmt.Fprintf(w, "Snapshot Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Snapshots: %d\n", status.TotalSnapshots)
	if status.TotalSnapshots > 0 {
		_, _ = fmt.Fprintf(w, "Latest Snapshot: %s\n", status.LatestID)
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format(timeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format(timeLayout))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintRankStatus prints rank store status information.
func PrintRankStatus(w io.Writer, status schema.RankStoreStatus) {
	_, _ = fmt.Fprintf(w, "Rank Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(timeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format(timeLayout))
		_, _ = fmt.Fprintf(w, "Total Products Ranked: %d\n", status.TotalRanked)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
