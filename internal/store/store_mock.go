package store

import (
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSnapshotStore implements the StoreManager interface.
func (m *MockStoreManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// GetRankStore implements the StoreManager interface.
func (m *MockStoreManager) GetRankStore() contract.RankStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RankStore)
	return store
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// Get implements the SnapshotStore interface.
func (m *MockSnapshotStore) Get(id string) ([]byte, int, int64, error) {
	args := m.Called(id)
	value, _ := args.Get(0).([]byte)
	ts, _ := args.Get(2).(int64)
	return value, args.Int(1), ts, args.Error(3)
}

// Set implements the SnapshotStore interface.
func (m *MockSnapshotStore) Set(id string, value []byte, version int, timestamp int64) error {
	args := m.Called(id, value, version, timestamp)
	return args.Error(0)
}

// Latest implements the SnapshotStore interface.
func (m *MockSnapshotStore) Latest() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.SnapshotStatus, error) {
	args := m.Called()
	status, _ := args.Get(0).(schema.SnapshotStatus)
	return status, args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRankStore is a mock implementation of RankStore for testing.
type MockRankStore struct {
	mock.Mock
}

var _ contract.RankStore = &MockRankStore{} // Compile-time check

// BeginRun implements the RankStore interface.
func (m *MockRankStore) BeginRun(startTime time.Time, runToken, snapshotID string, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, runToken, snapshotID, configParams)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

// RecordRanks implements the RankStore interface.
func (m *MockRankStore) RecordRanks(runID int64, records []schema.RankRecord) error {
	args := m.Called(runID, records)
	return args.Error(0)
}

// EndRun implements the RankStore interface.
func (m *MockRankStore) EndRun(runID int64, endTime time.Time, totalProducts int) error {
	args := m.Called(runID, endTime, totalProducts)
	return args.Error(0)
}

// LatestRunID implements the RankStore interface.
func (m *MockRankStore) LatestRunID() (int64, error) {
	args := m.Called()
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

// GetRun implements the RankStore interface.
func (m *MockRankStore) GetRun(runID int64) (schema.RankRunRecord, error) {
	args := m.Called(runID)
	run, _ := args.Get(0).(schema.RankRunRecord)
	return run, args.Error(1)
}

// GetRanks implements the RankStore interface.
func (m *MockRankStore) GetRanks(runID int64) ([]schema.RankRecord, error) {
	args := m.Called(runID)
	records, _ := args.Get(0).([]schema.RankRecord)
	return records, args.Error(1)
}

// ReplaceRanks implements the RankStore interface.
func (m *MockRankStore) ReplaceRanks(runID int64, records []schema.RankRecord) error {
	args := m.Called(runID, records)
	return args.Error(0)
}

// GetStatus implements the RankStore interface.
func (m *MockRankStore) GetStatus() (schema.RankStoreStatus, error) {
	args := m.Called()
	status, _ := args.Get(0).(schema.RankStoreStatus)
	return status, args.Error(1)
}

// GetAllRuns implements the RankStore interface.
func (m *MockRankStore) GetAllRuns() ([]schema.RankRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RankRunRecord)
	return runs, args.Error(1)
}

// GetAllRanks implements the RankStore interface.
func (m *MockRankStore) GetAllRanks() ([]schema.StoredRankRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.StoredRankRecord)
	return records, args.Error(1)
}

// Close implements the RankStore interface.
func (m *MockRankStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
