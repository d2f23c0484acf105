// Package model defines the ontology data model shared by the diff,
// merge, and debt engines. An Ontology is a complete in-memory snapshot
// of the entities, properties, relationships, and business rules
// extracted from an analytics model; the engines never mutate one in
// place.
package model

import (
	"fmt"
)

// Default values applied when a decoded record omits a field.
const (
	DefaultVersion          = "1.0"
	DefaultDataType         = "String"
	DefaultEntityType       = "standard"
	DefaultRelationshipType = "related_to"
	DefaultCardinality      = "one-to-many"
	DefaultPriority         = 1
)

// Constraint restricts a property or entity value. Constraints are
// compared as part of their owner's equality, never diffed on their own.
type Constraint struct {
	Type    string `json:"type" yaml:"type"`
	Value   string `json:"value" yaml:"value"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Property is a named attribute of an Entity. Name is the identity key
// within the owning entity.
type Property struct {
	Name        string       `json:"name" yaml:"name"`
	DataType    string       `json:"data_type" yaml:"data_type"`
	Required    bool         `json:"required" yaml:"required"`
	Unique      bool         `json:"unique" yaml:"unique"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Entity is a named record type in the model. Name is the identity key
// within the owning ontology.
type Entity struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	EntityType  string       `json:"entity_type" yaml:"entity_type"`
	Properties  []Property   `json:"properties" yaml:"properties"`
	Constraints []Constraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// PropertyMap indexes the entity's properties by name. Duplicate names
// collapse last-wins.
func (e *Entity) PropertyMap() map[string]Property {
	m := make(map[string]Property, len(e.Properties))
	for _, p := range e.Properties {
		m[p.Name] = p
	}
	return m
}

// Relationship connects two entities. The identity key is the
// (from_entity, to_entity) pair; a model holding two relationships with
// the same pair keeps only the last one when indexed.
type Relationship struct {
	FromEntity       string `json:"from_entity" yaml:"from_entity"`
	ToEntity         string `json:"to_entity" yaml:"to_entity"`
	FromProperty     string `json:"from_property,omitempty" yaml:"from_property,omitempty"`
	ToProperty       string `json:"to_property,omitempty" yaml:"to_property,omitempty"`
	RelationshipType string `json:"relationship_type" yaml:"relationship_type"`
	Cardinality      string `json:"cardinality" yaml:"cardinality"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Key returns the identity key for the relationship, rendered as
// "From→To".
func (r Relationship) Key() string {
	return fmt.Sprintf("%s→%s", r.FromEntity, r.ToEntity)
}

// BusinessRule is a named business rule with a free-text condition and
// action. Name is the identity key within the owning ontology.
type BusinessRule struct {
	Name           string `json:"name" yaml:"name"`
	Entity         string `json:"entity,omitempty" yaml:"entity,omitempty"`
	Condition      string `json:"condition" yaml:"condition"`
	Action         string `json:"action" yaml:"action"`
	Classification string `json:"classification,omitempty" yaml:"classification,omitempty"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	Priority       int    `json:"priority" yaml:"priority"`
}

// Ontology is the root aggregate. It owns all nested records by value.
type Ontology struct {
	Name          string            `json:"name" yaml:"name"`
	Version       string            `json:"version" yaml:"version"`
	Source        string            `json:"source,omitempty" yaml:"source,omitempty"`
	Entities      []Entity          `json:"entities" yaml:"entities"`
	Relationships []Relationship    `json:"relationships" yaml:"relationships"`
	BusinessRules []BusinessRule    `json:"business_rules" yaml:"business_rules"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// EntityMap indexes entities by name, last-wins on duplicates.
func (o *Ontology) EntityMap() map[string]Entity {
	m := make(map[string]Entity, len(o.Entities))
	for _, e := range o.Entities {
		m[e.Name] = e
	}
	return m
}

// RelationshipMap indexes relationships by their From→To key, last-wins
// on duplicates.
func (o *Ontology) RelationshipMap() map[string]Relationship {
	m := make(map[string]Relationship, len(o.Relationships))
	for _, r := range o.Relationships {
		m[r.Key()] = r
	}
	return m
}

// RuleMap indexes business rules by name, last-wins on duplicates.
func (o *Ontology) RuleMap() map[string]BusinessRule {
	m := make(map[string]BusinessRule, len(o.BusinessRules))
	for _, r := range o.BusinessRules {
		m[r.Name] = r
	}
	return m
}

// ApplyDefaults fills zero-valued fields with the interchange-format
// defaults. Called by decoders before Validate.
func (o *Ontology) ApplyDefaults() {
	if o.Version == "" {
		o.Version = DefaultVersion
	}
	for i := range o.Entities {
		e := &o.Entities[i]
		if e.EntityType == "" {
			e.EntityType = DefaultEntityType
		}
		for j := range e.Properties {
			if e.Properties[j].DataType == "" {
				e.Properties[j].DataType = DefaultDataType
			}
		}
	}
	for i := range o.Relationships {
		r := &o.Relationships[i]
		if r.RelationshipType == "" {
			r.RelationshipType = DefaultRelationshipType
		}
		if r.Cardinality == "" {
			r.Cardinality = DefaultCardinality
		}
	}
	for i := range o.BusinessRules {
		if o.BusinessRules[i].Priority == 0 {
			o.BusinessRules[i].Priority = DefaultPriority
		}
	}
}

// Validate checks that every record carries its identity fields. It
// deliberately does not reject duplicate names within a scope: the
// index maps resolve those last-wins, matching the reference behavior
// the diff and merge engines were built against.
func (o *Ontology) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("ontology name is required")
	}
	for i, e := range o.Entities {
		if e.Name == "" {
			return fmt.Errorf("entity %d: name is required", i)
		}
		for j, p := range e.Properties {
			if p.Name == "" {
				return fmt.Errorf("entity %s: property %d: name is required", e.Name, j)
			}
		}
	}
	for i, r := range o.Relationships {
		if r.FromEntity == "" || r.ToEntity == "" {
			return fmt.Errorf("relationship %d: from_entity and to_entity are required", i)
		}
	}
	for i, r := range o.BusinessRules {
		if r.Name == "" {
			return fmt.Errorf("business rule %d: name is required", i)
		}
	}
	return nil
}
