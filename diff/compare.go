package diff

import "sort"

// KeySet is the identity-level outcome of comparing two keyed
// collections: keys only in target (added), keys only in source
// (removed), and the intersection (common). All three are sorted so
// reports come out deterministic.
type KeySet struct {
	Added   []string
	Removed []string
	Common  []string
}

// CompareKeys computes the KeySet for two identity-keyed maps.
func CompareKeys[T any](source, target map[string]T) KeySet {
	var ks KeySet
	for k := range target {
		if _, ok := source[k]; !ok {
			ks.Added = append(ks.Added, k)
		}
	}
	for k := range source {
		if _, ok := target[k]; ok {
			ks.Common = append(ks.Common, k)
		} else {
			ks.Removed = append(ks.Removed, k)
		}
	}
	sort.Strings(ks.Added)
	sort.Strings(ks.Removed)
	sort.Strings(ks.Common)
	return ks
}

// FieldDelta records one scalar field difference between two versions
// of the same item.
type FieldDelta struct {
	Field string
	Old   string
	New   string
}

// Field is one scalar field of an item, paired across two versions.
type Field struct {
	Name string
	Old  string
	New  string
}

// CompareFields returns a delta for every field whose values differ.
func CompareFields(fields ...Field) []FieldDelta {
	var deltas []FieldDelta
	for _, f := range fields {
		if f.Old != f.New {
			deltas = append(deltas, FieldDelta{Field: f.Name, Old: f.Old, New: f.New})
		}
	}
	return deltas
}
