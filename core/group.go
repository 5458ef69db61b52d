package core

import (
	"slices"
	"strings"

	"github.com/supplelab/tierank/schema"
)

// Partition is the set of products sharing one primary group key.
// Products without a group key form the partition with an empty key.
type Partition struct {
	Key     string
	Records []schema.MetricRecord
}

// PartitionByGroup splits metric records by primary group key. Partitions are
// ordered by key and records within a partition by product ID.
func PartitionByGroup(records []schema.MetricRecord) []Partition {
	byKey := make(map[string][]schema.MetricRecord)
	for _, r := range records {
		byKey[r.PrimaryGroupKey] = append(byKey[r.PrimaryGroupKey], r)
	}

	partitions := make([]Partition, 0, len(byKey))
	for key, members := range byKey {
		slices.SortFunc(members, func(a, b schema.MetricRecord) int {
			return strings.Compare(a.ProductID, b.ProductID)
		})
		partitions = append(partitions, Partition{Key: key, Records: members})
	}
	slices.SortFunc(partitions, func(a, b Partition) int {
		return strings.Compare(a.Key, b.Key)
	})
	return partitions
}

// SelectPopulation returns the values of axis across every record sharing the
// subject's group key, the subject included. Records without a value for the
// axis are skipped. A subject missing from catalog still ranks against itself.
func SelectPopulation(catalog []schema.MetricRecord, subject schema.MetricRecord, axis schema.Axis) schema.Population {
	population := schema.Population{Axis: axis, GroupKey: subject.PrimaryGroupKey}

	subjectValue, subjectOK := subject.Value(axis)
	if !subjectOK {
		return population
	}
	if subject.PrimaryGroupKey == "" && schema.RequiresGroup(axis) {
		return population
	}

	seen := false
	for _, r := range catalog {
		if r.PrimaryGroupKey != subject.PrimaryGroupKey {
			continue
		}
		v, ok := r.Value(axis)
		if !ok {
			continue
		}
		if r.ProductID == subject.ProductID {
			seen = true
		}
		population.Values = append(population.Values, v)
	}
	if !seen {
		population.Values = append(population.Values, subjectValue)
	}
	return population
}

// rankable reports whether an axis is graded for a product in the given group.
func rankable(axis schema.Axis, groupKey string) bool {
	return groupKey != "" || !schema.RequiresGroup(axis)
}
