package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// NewSnapshot freezes a catalog. The snapshot ID is the SHA-256 of the canonical
// JSON encoding, so identical catalogs share one snapshot.
func NewSnapshot(products []schema.Product, now time.Time) (schema.Snapshot, []byte, error) {
	sorted := slices.Clone(products)
	slices.SortFunc(sorted, func(a, b schema.Product) int {
		return strings.Compare(a.ID, b.ID)
	})

	payload, err := json.Marshal(sorted)
	if err != nil {
		return schema.Snapshot{}, nil, fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}
	sum := sha256.Sum256(payload)

	return schema.Snapshot{
		ID:        hex.EncodeToString(sum[:]),
		Version:   schema.AlgorithmVersion,
		CreatedAt: now,
		Products:  sorted,
	}, payload, nil
}

// LoadSnapshot reads a retained snapshot back from the store.
func LoadSnapshot(store contract.SnapshotStore, id string) (schema.Snapshot, error) {
	if store == nil {
		return schema.Snapshot{}, fmt.Errorf("snapshot store is not configured")
	}
	payload, version, ts, err := store.Get(id)
	if err != nil {
		return schema.Snapshot{}, fmt.Errorf("snapshot %s is not retained: %w", shortID(id), err)
	}

	var products []schema.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return schema.Snapshot{}, fmt.Errorf("snapshot %s is corrupt: %w", shortID(id), err)
	}
	return schema.Snapshot{
		ID:        id,
		Version:   version,
		CreatedAt: time.Unix(ts, 0),
		Products:  products,
	}, nil
}

// shortID abbreviates a snapshot hash for messages.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
