// Package merge reconciles two divergent edits of a common ancestor
// ontology. It runs the structural diff twice (base→ours, base→theirs),
// treats overlapping changed paths as conflicts, and assembles a merged
// ontology according to the chosen strategy.
package merge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/c360studio/semdelta/diff"
	"github.com/c360studio/semdelta/model"
)

// Strategy selects which side wins at conflicting paths.
type Strategy string

const (
	// StrategyOurs keeps our value at every conflicting path.
	StrategyOurs Strategy = "ours"
	// StrategyTheirs substitutes their element at every conflicting path.
	StrategyTheirs Strategy = "theirs"
	// StrategyUnion keeps our value for scalar conflicts but retains all
	// non-conflicting membership from both sides.
	StrategyUnion Strategy = "union"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyOurs, StrategyTheirs, StrategyUnion:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown merge strategy: %q", s)
	}
}

// Conflict records one path changed in both branches.
type Conflict struct {
	Path        string           `json:"path"`
	ElementType diff.ElementType `json:"element_type"`
	Resolution  Strategy         `json:"resolution"`
}

// Merge performs a three-way merge of ours and theirs against base.
// The merged ontology is a new value; none of the inputs are mutated.
// Non-overlapping additions from theirs are incorporated; every path
// changed in both branches is reported as a conflict and resolved per
// the strategy.
func Merge(base, ours, theirs *model.Ontology, strategy Strategy) (*model.Ontology, []Conflict, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, nil, err
	}

	ourDiff := diff.Compare(base, ours)
	theirDiff := diff.Compare(base, theirs)

	conflictPaths := make(map[string]diff.ElementType)
	ourPaths := make(map[string]bool, len(ourDiff.Changes))
	for _, c := range ourDiff.Changes {
		ourPaths[c.Path] = true
	}
	for _, c := range theirDiff.Changes {
		if ourPaths[c.Path] {
			conflictPaths[c.Path] = c.ElementType
		}
	}

	m := &merger{
		ours:          ours,
		theirs:        theirs,
		strategy:      strategy,
		conflictPaths: conflictPaths,
		entities:      newOrderedSet(ours.EntityMap(), entityNames(ours)),
		relationships: newOrderedSet(ours.RelationshipMap(), relationshipKeys(ours)),
		rules:         newOrderedSet(ours.RuleMap(), ruleNames(ours)),
	}

	m.applyTheirAdditions(theirDiff)
	if strategy == StrategyTheirs {
		m.applyTheirConflicts(theirDiff)
	}

	merged := &model.Ontology{
		Name:          ours.Name,
		Version:       incrementVersion(ours.Version),
		Source:        ours.Source,
		Entities:      m.entities.values(),
		Relationships: m.relationships.values(),
		BusinessRules: m.rules.values(),
		Metadata:      m.mergeMetadata(base),
	}

	return merged, m.conflicts(), nil
}

type merger struct {
	ours          *model.Ontology
	theirs        *model.Ontology
	strategy      Strategy
	conflictPaths map[string]diff.ElementType

	entities      *orderedSet[model.Entity]
	relationships *orderedSet[model.Relationship]
	rules         *orderedSet[model.BusinessRule]
}

// orderedSet is a keyed collection that preserves first-insertion order
// so a merge does not reshuffle ours' element ordering.
type orderedSet[T any] struct {
	items map[string]T
	order []string
}

func newOrderedSet[T any](items map[string]T, order []string) *orderedSet[T] {
	return &orderedSet[T]{items: items, order: order}
}

func (s *orderedSet[T]) put(key string, item T) {
	if _, exists := s.items[key]; !exists {
		s.order = append(s.order, key)
	}
	s.items[key] = item
}

func (s *orderedSet[T]) remove(key string) {
	delete(s.items, key)
}

func (s *orderedSet[T]) get(key string) (T, bool) {
	item, ok := s.items[key]
	return item, ok
}

func (s *orderedSet[T]) values() []T {
	values := make([]T, 0, len(s.items))
	for _, key := range s.order {
		if item, ok := s.items[key]; ok {
			values = append(values, item)
		}
	}
	return values
}

// entityNames lists entity names in declaration order, deduplicated.
func entityNames(o *model.Ontology) []string {
	seen := make(map[string]bool, len(o.Entities))
	names := make([]string, 0, len(o.Entities))
	for _, e := range o.Entities {
		if !seen[e.Name] {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}
	return names
}

func relationshipKeys(o *model.Ontology) []string {
	seen := make(map[string]bool, len(o.Relationships))
	keys := make([]string, 0, len(o.Relationships))
	for _, r := range o.Relationships {
		if key := r.Key(); !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

func ruleNames(o *model.Ontology) []string {
	seen := make(map[string]bool, len(o.BusinessRules))
	names := make([]string, 0, len(o.BusinessRules))
	for _, r := range o.BusinessRules {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}

// applyTheirAdditions incorporates every non-conflicting element theirs
// added relative to base. Property additions land inside the merged
// entity; metadata additions are covered by the metadata union.
func (m *merger) applyTheirAdditions(theirDiff *diff.Report) {
	theirEntities := m.theirs.EntityMap()
	theirRels := m.theirs.RelationshipMap()
	theirRules := m.theirs.RuleMap()

	for _, c := range theirDiff.Changes {
		if c.ChangeType != diff.Added {
			continue
		}
		if _, conflicted := m.conflictPaths[c.Path]; conflicted {
			continue
		}
		switch c.ElementType {
		case diff.ElementEntity:
			if e, ok := theirEntities[c.ElementName]; ok {
				m.entities.put(c.ElementName, e)
			}
		case diff.ElementProperty:
			m.addTheirProperty(c, theirEntities)
		case diff.ElementRelationship:
			if r, ok := theirRels[c.ElementName]; ok {
				m.relationships.put(c.ElementName, r)
			}
		case diff.ElementRule:
			if r, ok := theirRules[c.ElementName]; ok {
				m.rules.put(c.ElementName, r)
			}
		}
	}
}

// addTheirProperty appends a property theirs added to an entity both
// sides already have. The property path is "Entity.Prop".
func (m *merger) addTheirProperty(c diff.Change, theirEntities map[string]model.Entity) {
	entityName, _, ok := strings.Cut(c.Path, ".")
	if !ok {
		return
	}
	merged, inMerged := m.entities.get(entityName)
	theirEntity, inTheirs := theirEntities[entityName]
	if !inMerged || !inTheirs {
		return
	}
	if _, exists := merged.PropertyMap()[c.ElementName]; exists {
		return
	}
	if p, ok := theirEntity.PropertyMap()[c.ElementName]; ok {
		merged.Properties = append(merged.Properties, p)
		m.entities.put(entityName, merged)
	}
}

// applyTheirConflicts substitutes their element for ours at every
// conflicting path. A path whose root element theirs deleted is removed
// from the merged collections.
func (m *merger) applyTheirConflicts(theirDiff *diff.Report) {
	theirEntities := m.theirs.EntityMap()
	theirRels := m.theirs.RelationshipMap()
	theirRules := m.theirs.RuleMap()

	for _, c := range theirDiff.Changes {
		if _, conflicted := m.conflictPaths[c.Path]; !conflicted {
			continue
		}
		switch c.ElementType {
		case diff.ElementEntity, diff.ElementProperty:
			entityName, _, _ := strings.Cut(c.Path, ".")
			if e, ok := theirEntities[entityName]; ok {
				m.entities.put(entityName, e)
			} else {
				m.entities.remove(entityName)
			}
		case diff.ElementRelationship:
			if r, ok := theirRels[c.ElementName]; ok {
				m.relationships.put(c.ElementName, r)
			} else {
				m.relationships.remove(c.ElementName)
			}
		case diff.ElementRule:
			if r, ok := theirRules[c.ElementName]; ok {
				m.rules.put(c.ElementName, r)
			} else {
				m.rules.remove(c.ElementName)
			}
		}
	}
}

// mergeMetadata unions metadata as base ∪ theirs ∪ ours, later sources
// winning on key collision, and annotates the result with merged_from.
// Under the theirs strategy, conflicting metadata keys take their value.
func (m *merger) mergeMetadata(base *model.Ontology) map[string]string {
	merged := make(map[string]string)
	for k, v := range base.Metadata {
		merged[k] = v
	}
	for k, v := range m.theirs.Metadata {
		merged[k] = v
	}
	for k, v := range m.ours.Metadata {
		merged[k] = v
	}
	if m.strategy == StrategyTheirs {
		for path := range m.conflictPaths {
			key, ok := strings.CutPrefix(path, "metadata:")
			if !ok {
				continue
			}
			if v, exists := m.theirs.Metadata[key]; exists {
				merged[key] = v
			} else {
				delete(merged, key)
			}
		}
	}
	merged["merged_from"] = fmt.Sprintf("%s,%s", m.ours.Name, m.theirs.Name)
	return merged
}

// conflicts returns one record per conflicting path, sorted by path.
func (m *merger) conflicts() []Conflict {
	conflicts := make([]Conflict, 0, len(m.conflictPaths))
	for path, elementType := range m.conflictPaths {
		conflicts = append(conflicts, Conflict{
			Path:        path,
			ElementType: elementType,
			Resolution:  m.strategy,
		})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Path < conflicts[j].Path })
	return conflicts
}

// incrementVersion bumps the last dot-separated numeric component, or
// appends ".1" when the last component is not numeric.
func incrementVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) >= 2 {
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			parts[len(parts)-1] = strconv.Itoa(n + 1)
			return strings.Join(parts, ".")
		}
	}
	return version + ".1"
}
