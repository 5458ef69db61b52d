package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/schema"
)

func TestExportRanks_RequiresOutputFile(t *testing.T) {
	err := ExportRanks(&MockRankStore{}, "", &bytes.Buffer{})
	assert.ErrorContains(t, err, "--output-file")
}

func TestExportRanks_NoStore(t *testing.T) {
	err := ExportRanks(nil, "out", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestExportRanks_NoData(t *testing.T) {
	store := &MockRankStore{}
	store.On("GetStatus").Return(schema.RankStoreStatus{Backend: "sqlite", Connected: true}, nil)

	err := ExportRanks(store, filepath.Join(t.TempDir(), "out"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "no rank data")
	store.AssertExpectations(t)
}

func TestExportRanks_StatusError(t *testing.T) {
	store := &MockRankStore{}
	store.On("GetStatus").Return(schema.RankStoreStatus{}, errors.New("boom"))

	err := ExportRanks(store, filepath.Join(t.TempDir(), "out"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "boom")
}

func TestExportRanks_SQLite(t *testing.T) {
	store := newMemoryRankStore(t)

	runID, err := store.BeginRun(time.Now(), "tok", "snap", map[string]any{"workers": 2})
	require.NoError(t, err)
	require.NoError(t, store.RecordRanks(runID, []schema.RankRecord{
		rankRecord("a", schema.GradeB, map[schema.Axis]schema.Grade{schema.AxisPrice: schema.GradeB}),
		rankRecord("b", schema.GradeD, nil),
	}))
	require.NoError(t, store.EndRun(runID, time.Now(), 2))

	base := filepath.Join(t.TempDir(), "export")
	var out bytes.Buffer
	require.NoError(t, ExportRanks(store, base, &out))

	assert.FileExists(t, base+".runs.parquet")
	assert.FileExists(t, base+".rank_records.parquet")
	assert.Contains(t, out.String(), "Exported 1 rank runs")
	assert.Contains(t, out.String(), "Exported 2 rank records")
}
