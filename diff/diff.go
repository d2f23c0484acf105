// Package diff compares two ontology snapshots and reports added,
// removed, and modified elements. Comparison is identity-keyed: entities
// and rules match by name, properties by name within their entity, and
// relationships by their From→To pair.
package diff

import (
	"fmt"

	"github.com/c360studio/semdelta/model"
)

// ChangeType classifies a detected change.
type ChangeType string

const (
	Added    ChangeType = "added"
	Removed  ChangeType = "removed"
	Modified ChangeType = "modified"
)

// ElementType identifies the kind of ontology element a change touches.
type ElementType string

const (
	ElementEntity       ElementType = "entity"
	ElementProperty     ElementType = "property"
	ElementRelationship ElementType = "relationship"
	ElementRule         ElementType = "rule"
	ElementMetadata     ElementType = "metadata"
)

// Change is a single difference between two ontology versions.
type Change struct {
	ChangeType  ChangeType  `json:"change_type"`
	ElementType ElementType `json:"element_type"`
	ElementName string      `json:"element_name"`
	Path        string      `json:"path"`
	OldValue    string      `json:"old_value,omitempty"`
	NewValue    string      `json:"new_value,omitempty"`
	Details     string      `json:"details,omitempty"`
}

// Summary holds change counts by type and by element kind.
type Summary struct {
	TotalChanges int            `json:"total_changes"`
	Added        int            `json:"added"`
	Removed      int            `json:"removed"`
	Modified     int            `json:"modified"`
	ByElement    map[string]int `json:"by_element"`
}

// Report is the result of comparing two ontology versions.
type Report struct {
	SourceName    string   `json:"source_name"`
	TargetName    string   `json:"target_name"`
	SourceVersion string   `json:"source_version"`
	TargetVersion string   `json:"target_version"`
	Changes       []Change `json:"changes"`
	Summary       Summary  `json:"summary"`
}

// HasChanges reports whether any difference was detected.
func (r *Report) HasChanges() bool {
	return len(r.Changes) > 0
}

func (r *Report) add(c Change) {
	r.Changes = append(r.Changes, c)
}

func (r *Report) generateSummary() {
	s := Summary{
		TotalChanges: len(r.Changes),
		ByElement:    make(map[string]int),
	}
	for _, c := range r.Changes {
		switch c.ChangeType {
		case Added:
			s.Added++
		case Removed:
			s.Removed++
		case Modified:
			s.Modified++
		}
		s.ByElement[string(c.ElementType)]++
	}
	r.Summary = s
}

// Compare diffs source against target and returns the full report.
// Neither input is mutated; equal ontologies yield an empty change
// list.
func Compare(source, target *model.Ontology) *Report {
	report := &Report{
		SourceName:    source.Name,
		TargetName:    target.Name,
		SourceVersion: source.Version,
		TargetVersion: target.Version,
	}

	diffEntities(report, source, target)
	diffRelationships(report, source, target)
	diffRules(report, source, target)
	diffMetadata(report, source, target)

	report.generateSummary()
	return report
}

func diffEntities(report *Report, source, target *model.Ontology) {
	srcMap := source.EntityMap()
	tgtMap := target.EntityMap()
	keys := CompareKeys(srcMap, tgtMap)

	for _, name := range keys.Added {
		e := tgtMap[name]
		report.add(Change{
			ChangeType:  Added,
			ElementType: ElementEntity,
			ElementName: name,
			Path:        name,
			NewValue:    entitySummary(e),
			Details:     e.Description,
		})
	}
	for _, name := range keys.Removed {
		e := srcMap[name]
		report.add(Change{
			ChangeType:  Removed,
			ElementType: ElementEntity,
			ElementName: name,
			Path:        name,
			OldValue:    entitySummary(e),
			Details:     e.Description,
		})
	}
	for _, name := range keys.Common {
		diffEntity(report, srcMap[name], tgtMap[name])
	}
}

func entitySummary(e model.Entity) string {
	return fmt.Sprintf("type=%s, properties=%d", e.EntityType, len(e.Properties))
}

func diffEntity(report *Report, source, target model.Entity) {
	deltas := CompareFields(
		Field{Name: "entity_type", Old: source.EntityType, New: target.EntityType},
		Field{Name: "description", Old: source.Description, New: target.Description},
	)
	details := map[string]string{
		"entity_type": "Entity type changed",
		"description": "Description updated",
	}
	for _, d := range deltas {
		report.add(Change{
			ChangeType:  Modified,
			ElementType: ElementEntity,
			ElementName: source.Name,
			Path:        fmt.Sprintf("%s.%s", source.Name, d.Field),
			OldValue:    d.Old,
			NewValue:    d.New,
			Details:     details[d.Field],
		})
	}

	diffProperties(report, source.Name, source.PropertyMap(), target.PropertyMap())
}

func diffProperties(report *Report, entityName string, srcMap, tgtMap map[string]model.Property) {
	keys := CompareKeys(srcMap, tgtMap)

	for _, name := range keys.Added {
		p := tgtMap[name]
		report.add(Change{
			ChangeType:  Added,
			ElementType: ElementProperty,
			ElementName: name,
			Path:        fmt.Sprintf("%s.%s", entityName, name),
			NewValue:    propertySummary(p),
			Details:     p.Description,
		})
	}
	for _, name := range keys.Removed {
		p := srcMap[name]
		report.add(Change{
			ChangeType:  Removed,
			ElementType: ElementProperty,
			ElementName: name,
			Path:        fmt.Sprintf("%s.%s", entityName, name),
			OldValue:    propertySummary(p),
			Details:     p.Description,
		})
	}
	for _, name := range keys.Common {
		diffProperty(report, entityName, srcMap[name], tgtMap[name])
	}
}

func propertySummary(p model.Property) string {
	return fmt.Sprintf("type=%s, required=%t", p.DataType, p.Required)
}

func diffProperty(report *Report, entityName string, source, target model.Property) {
	path := fmt.Sprintf("%s.%s", entityName, source.Name)
	deltas := CompareFields(
		Field{Name: "data_type", Old: source.DataType, New: target.DataType},
		Field{Name: "required", Old: fmt.Sprintf("%t", source.Required), New: fmt.Sprintf("%t", target.Required)},
		Field{Name: "unique", Old: fmt.Sprintf("%t", source.Unique), New: fmt.Sprintf("%t", target.Unique)},
	)
	details := map[string]string{
		"data_type": "Data type changed",
		"required":  "Required flag changed",
		"unique":    "Unique flag changed",
	}
	for _, d := range deltas {
		report.add(Change{
			ChangeType:  Modified,
			ElementType: ElementProperty,
			ElementName: source.Name,
			Path:        fmt.Sprintf("%s.%s", path, d.Field),
			OldValue:    d.Old,
			NewValue:    d.New,
			Details:     details[d.Field],
		})
	}
}

func diffRelationships(report *Report, source, target *model.Ontology) {
	srcMap := source.RelationshipMap()
	tgtMap := target.RelationshipMap()
	keys := CompareKeys(srcMap, tgtMap)

	for _, key := range keys.Added {
		rel := tgtMap[key]
		report.add(Change{
			ChangeType:  Added,
			ElementType: ElementRelationship,
			ElementName: key,
			Path:        key,
			NewValue:    relationshipSummary(rel),
			Details:     rel.Description,
		})
	}
	for _, key := range keys.Removed {
		rel := srcMap[key]
		report.add(Change{
			ChangeType:  Removed,
			ElementType: ElementRelationship,
			ElementName: key,
			Path:        key,
			OldValue:    relationshipSummary(rel),
			Details:     rel.Description,
		})
	}
	for _, key := range keys.Common {
		diffRelationship(report, srcMap[key], tgtMap[key])
	}
}

func relationshipSummary(r model.Relationship) string {
	return fmt.Sprintf("type=%s, cardinality=%s", r.RelationshipType, r.Cardinality)
}

func diffRelationship(report *Report, source, target model.Relationship) {
	key := source.Key()
	deltas := CompareFields(
		Field{Name: "type", Old: source.RelationshipType, New: target.RelationshipType},
		Field{Name: "cardinality", Old: source.Cardinality, New: target.Cardinality},
	)
	details := map[string]string{
		"type":        "Relationship type changed",
		"cardinality": "Cardinality changed",
	}
	for _, d := range deltas {
		report.add(Change{
			ChangeType:  Modified,
			ElementType: ElementRelationship,
			ElementName: key,
			Path:        fmt.Sprintf("%s.%s", key, d.Field),
			OldValue:    d.Old,
			NewValue:    d.New,
			Details:     details[d.Field],
		})
	}
}

func diffRules(report *Report, source, target *model.Ontology) {
	srcMap := source.RuleMap()
	tgtMap := target.RuleMap()
	keys := CompareKeys(srcMap, tgtMap)

	for _, name := range keys.Added {
		rule := tgtMap[name]
		report.add(Change{
			ChangeType:  Added,
			ElementType: ElementRule,
			ElementName: name,
			Path:        fmt.Sprintf("rule:%s", name),
			NewValue:    ruleSummary(rule),
			Details:     rule.Description,
		})
	}
	for _, name := range keys.Removed {
		rule := srcMap[name]
		report.add(Change{
			ChangeType:  Removed,
			ElementType: ElementRule,
			ElementName: name,
			Path:        fmt.Sprintf("rule:%s", name),
			OldValue:    ruleSummary(rule),
			Details:     rule.Description,
		})
	}
	for _, name := range keys.Common {
		diffRule(report, srcMap[name], tgtMap[name])
	}
}

func ruleSummary(r model.BusinessRule) string {
	return fmt.Sprintf("condition=%s, action=%s", r.Condition, r.Action)
}

func diffRule(report *Report, source, target model.BusinessRule) {
	path := fmt.Sprintf("rule:%s", source.Name)
	deltas := CompareFields(
		Field{Name: "condition", Old: source.Condition, New: target.Condition},
		Field{Name: "action", Old: source.Action, New: target.Action},
		Field{Name: "classification", Old: source.Classification, New: target.Classification},
	)
	details := map[string]string{
		"condition":      "Condition changed",
		"action":         "Action changed",
		"classification": "Classification changed",
	}
	for _, d := range deltas {
		report.add(Change{
			ChangeType:  Modified,
			ElementType: ElementRule,
			ElementName: source.Name,
			Path:        fmt.Sprintf("%s.%s", path, d.Field),
			OldValue:    d.Old,
			NewValue:    d.New,
			Details:     details[d.Field],
		})
	}
}

func diffMetadata(report *Report, source, target *model.Ontology) {
	keys := CompareKeys(source.Metadata, target.Metadata)

	for _, key := range keys.Added {
		report.add(Change{
			ChangeType:  Added,
			ElementType: ElementMetadata,
			ElementName: key,
			Path:        fmt.Sprintf("metadata:%s", key),
			NewValue:    target.Metadata[key],
		})
	}
	for _, key := range keys.Removed {
		report.add(Change{
			ChangeType:  Removed,
			ElementType: ElementMetadata,
			ElementName: key,
			Path:        fmt.Sprintf("metadata:%s", key),
			OldValue:    source.Metadata[key],
		})
	}
	for _, key := range keys.Common {
		if source.Metadata[key] != target.Metadata[key] {
			report.add(Change{
				ChangeType:  Modified,
				ElementType: ElementMetadata,
				ElementName: key,
				Path:        fmt.Sprintf("metadata:%s", key),
				OldValue:    source.Metadata[key],
				NewValue:    target.Metadata[key],
			})
		}
	}
}
