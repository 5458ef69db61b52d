package store

import (
	"errors"
	"fmt"
	"io"

	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/internal/parquet"
)

// ExportRanks writes every run and rank record of the store to two Parquet files
// named after outputFile, and reports progress to w.
func ExportRanks(store contract.RankStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("rank store is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get rank store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no rank data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total rank runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total rank records: %d\n", status.TableSizes[rankRecordsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve rank runs: %w", err)
	}
	records, err := store.GetAllRanks()
	if err != nil {
		return fmt.Errorf("failed to retrieve rank records: %w", err)
	}

	parquetRuns := parquet.ConvertRankRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRankRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write rank runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d rank runs to: %s\n", len(parquetRuns), runsFile)

	parquetRows := parquet.ConvertStoredRankRecords(records)
	recordsFile := outputFile + ".rank_records.parquet"
	if err := parquet.WriteRankRowsParquet(parquetRows, recordsFile); err != nil {
		return fmt.Errorf("failed to write rank records: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d rank records to: %s\n", len(parquetRows), recordsFile)

	return nil
}
