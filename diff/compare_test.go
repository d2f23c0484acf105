package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareKeys(t *testing.T) {
	source := map[string]int{"a": 1, "b": 2, "c": 3}
	target := map[string]int{"b": 2, "c": 4, "d": 5}

	ks := CompareKeys(source, target)

	assert.Equal(t, []string{"d"}, ks.Added)
	assert.Equal(t, []string{"a"}, ks.Removed)
	assert.Equal(t, []string{"b", "c"}, ks.Common)
}

func TestCompareKeysEqual(t *testing.T) {
	m := map[string]string{"x": "1", "y": "2"}

	ks := CompareKeys(m, m)

	assert.Empty(t, ks.Added)
	assert.Empty(t, ks.Removed)
	assert.Equal(t, []string{"x", "y"}, ks.Common)
}

func TestCompareKeysEmpty(t *testing.T) {
	ks := CompareKeys(map[string]int{}, map[string]int{})
	assert.Empty(t, ks.Added)
	assert.Empty(t, ks.Removed)
	assert.Empty(t, ks.Common)
}

func TestCompareFields(t *testing.T) {
	deltas := CompareFields(
		Field{Name: "data_type", Old: "Integer", New: "String"},
		Field{Name: "required", Old: "true", New: "true"},
		Field{Name: "unique", Old: "false", New: "true"},
	)

	assert.Equal(t, []FieldDelta{
		{Field: "data_type", Old: "Integer", New: "String"},
		{Field: "unique", Old: "false", New: "true"},
	}, deltas)
}

func TestCompareFieldsNoChanges(t *testing.T) {
	deltas := CompareFields(Field{Name: "description", Old: "same", New: "same"})
	assert.Empty(t, deltas)
}
