// Package debt quantifies semantic debt across independently authored
// ontology models: elements that share a name but disagree on structure,
// type, cardinality, or business logic. Every model pair is compared
// once per shared identity key; the result is a report of classified,
// severity-scored conflicts with remediation recommendations.
package debt

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/c360studio/semdelta/model"
)

// Severity classifies the risk of a detected conflict.
type Severity string

const (
	// SeverityCritical marks completely different definitions that will
	// cause errors downstream.
	SeverityCritical Severity = "critical"
	// SeverityWarning marks partial differences that need attention.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks minor differences that can usually be ignored.
	SeverityInfo Severity = "info"
)

// Kind classifies what disagrees between sources.
type Kind string

const (
	KindEntity       Kind = "entity_conflict"
	KindType         Kind = "type_conflict"
	KindRelationship Kind = "relationship_conflict"
	KindRule         Kind = "rule_conflict"
)

// ErrInsufficientModels is returned when fewer than two models are
// supplied for analysis.
var ErrInsufficientModels = errors.New("semantic debt analysis requires at least 2 models")

// DefaultSimilarityThreshold is the rule-condition similarity below
// which a rule conflict is critical rather than a warning.
const DefaultSimilarityThreshold = 0.8

// Conflict is one detected disagreement between two or more models.
type Conflict struct {
	Kind           Kind              `json:"conflict_type"`
	Severity       Severity          `json:"severity"`
	Name           string            `json:"name"`
	Sources        []string          `json:"sources"`
	Details        map[string]string `json:"details"`
	Description    string            `json:"description"`
	Recommendation string            `json:"recommendation"`
}

// Analyzer detects semantic conflicts across a set of models.
type Analyzer struct {
	threshold float64
}

// NewAnalyzer creates an analyzer. A threshold of zero or less selects
// DefaultSimilarityThreshold.
func NewAnalyzer(threshold float64) *Analyzer {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Analyzer{threshold: threshold}
}

// Analyze compares every pair of models sharing an identity key and
// returns the semantic debt report. At least two models are required.
func (a *Analyzer) Analyze(models map[string]*model.Ontology) (*Report, error) {
	if len(models) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientModels, len(models))
	}

	sources := make([]string, 0, len(models))
	for name := range models {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	report := &Report{Analyzed: sources}

	a.analyzeEntityConflicts(report, sources, models)
	a.analyzeTypeConflicts(report, sources, models)
	a.analyzeRelationshipConflicts(report, sources, models)
	a.analyzeRuleConflicts(report, sources, models)

	report.generateRecommendations()
	report.generateSummary()
	return report, nil
}

// groupBy collects items of all models under their identity key,
// keeping track of which source contributed which variant. Source
// iteration order is the sorted order passed in, so later sources win
// within a model but grouping stays deterministic across models.
func groupBy[T any](sources []string, models map[string]*model.Ontology, index func(*model.Ontology) map[string]T) (map[string]map[string]T, []string) {
	grouped := make(map[string]map[string]T)
	for _, src := range sources {
		for key, item := range index(models[src]) {
			if grouped[key] == nil {
				grouped[key] = make(map[string]T)
			}
			grouped[key][src] = item
		}
	}
	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return grouped, keys
}

// sharedSources returns the sorted source names holding a variant,
// or nil when fewer than two sources share the key.
func sharedSources[T any](variants map[string]T) []string {
	if len(variants) < 2 {
		return nil
	}
	srcs := make([]string, 0, len(variants))
	for src := range variants {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)
	return srcs
}

// analyzeEntityConflicts flags entities whose property-name sets differ
// across sources. Severity follows the property-set overlap ratio.
func (a *Analyzer) analyzeEntityConflicts(report *Report, sources []string, models map[string]*model.Ontology) {
	grouped, keys := groupBy(sources, models, func(o *model.Ontology) map[string]model.Entity {
		return o.EntityMap()
	})

	for _, entityName := range keys {
		variants := grouped[entityName]
		srcs := sharedSources(variants)
		if srcs == nil {
			continue
		}
		for i := 0; i < len(srcs); i++ {
			for j := i + 1; j < len(srcs); j++ {
				src1, src2 := srcs[i], srcs[j]
				props1 := propertyNames(variants[src1])
				props2 := propertyNames(variants[src2])

				onlyIn1 := setDifference(props1, props2)
				onlyIn2 := setDifference(props2, props1)
				if len(onlyIn1) == 0 && len(onlyIn2) == 0 {
					continue
				}

				var missing []string
				if len(onlyIn1) > 0 {
					missing = append(missing, fmt.Sprintf("only in %s: %s", src1, strings.Join(onlyIn1, ", ")))
				}
				if len(onlyIn2) > 0 {
					missing = append(missing, fmt.Sprintf("only in %s: %s", src2, strings.Join(onlyIn2, ", ")))
				}

				report.add(Conflict{
					Kind:     KindEntity,
					Severity: entitySeverity(props1, props2),
					Name:     entityName,
					Sources:  []string{src1, src2},
					Details: map[string]string{
						src1: fmt.Sprintf("Properties: %s", strings.Join(props1, ", ")),
						src2: fmt.Sprintf("Properties: %s", strings.Join(props2, ", ")),
					},
					Description:    fmt.Sprintf("Entity '%s' has different structures: %s", entityName, strings.Join(missing, "; ")),
					Recommendation: fmt.Sprintf("Unify entity '%s' structure across models or rename to avoid confusion.", entityName),
				})
			}
		}
	}
}

// analyzeTypeConflicts flags properties declared with different data
// types across sources. Type disagreement is always critical.
func (a *Analyzer) analyzeTypeConflicts(report *Report, sources []string, models map[string]*model.Ontology) {
	grouped, keys := groupBy(sources, models, func(o *model.Ontology) map[string]model.Property {
		props := make(map[string]model.Property)
		for _, e := range o.Entities {
			for name, p := range e.PropertyMap() {
				props[fmt.Sprintf("%s.%s", e.Name, name)] = p
			}
		}
		return props
	})

	for _, key := range keys {
		variants := grouped[key]
		srcs := sharedSources(variants)
		if srcs == nil {
			continue
		}
		details := make(map[string]string, len(srcs))
		types := make(map[string]bool)
		for _, src := range srcs {
			t := variants[src].DataType
			details[src] = fmt.Sprintf("Type: %s", t)
			types[t] = true
		}
		if len(types) < 2 {
			continue
		}
		_, propName, _ := strings.Cut(key, ".")
		report.add(Conflict{
			Kind:           KindType,
			Severity:       SeverityCritical,
			Name:           key,
			Sources:        srcs,
			Details:        details,
			Description:    fmt.Sprintf("Property '%s' has different types: %s", key, strings.Join(sortedKeys(types), ", ")),
			Recommendation: fmt.Sprintf("Standardize the data type for '%s' across all models.", propName),
		})
	}
}

// analyzeRelationshipConflicts flags relationships between the same
// entity pair that declare different cardinalities.
func (a *Analyzer) analyzeRelationshipConflicts(report *Report, sources []string, models map[string]*model.Ontology) {
	grouped, keys := groupBy(sources, models, func(o *model.Ontology) map[string]model.Relationship {
		return o.RelationshipMap()
	})

	for _, key := range keys {
		variants := grouped[key]
		srcs := sharedSources(variants)
		if srcs == nil {
			continue
		}
		details := make(map[string]string, len(srcs))
		cards := make(map[string]bool)
		for _, src := range srcs {
			rel := variants[src]
			details[src] = fmt.Sprintf("Type: %s, Cardinality: %s", rel.RelationshipType, rel.Cardinality)
			cards[rel.Cardinality] = true
		}
		if len(cards) < 2 {
			continue
		}
		first := variants[srcs[0]]
		report.add(Conflict{
			Kind:           KindRelationship,
			Severity:       SeverityWarning,
			Name:           fmt.Sprintf("%s → %s", first.FromEntity, first.ToEntity),
			Sources:        srcs,
			Details:        details,
			Description:    fmt.Sprintf("Relationship '%s → %s' has different cardinalities: %s", first.FromEntity, first.ToEntity, strings.Join(sortedKeys(cards), ", ")),
			Recommendation: "Verify the correct cardinality and update the models accordingly.",
		})
	}
}

// analyzeRuleConflicts flags rules whose condition text differs across
// sources. Similarity is computed for every pair of distinct condition
// strings; the worst pair decides severity.
func (a *Analyzer) analyzeRuleConflicts(report *Report, sources []string, models map[string]*model.Ontology) {
	grouped, keys := groupBy(sources, models, func(o *model.Ontology) map[string]model.BusinessRule {
		return o.RuleMap()
	})

	for _, ruleName := range keys {
		variants := grouped[ruleName]
		srcs := sharedSources(variants)
		if srcs == nil {
			continue
		}
		details := make(map[string]string, len(srcs))
		conditions := make(map[string]bool)
		for _, src := range srcs {
			rule := variants[src]
			details[src] = fmt.Sprintf("Condition: %s, Action: %s", rule.Condition, rule.Action)
			conditions[rule.Condition] = true
		}
		if len(conditions) < 2 {
			continue
		}

		severity := SeverityWarning
		distinct := sortedKeys(conditions)
		for i := 0; i < len(distinct); i++ {
			for j := i + 1; j < len(distinct); j++ {
				if Similarity(distinct[i], distinct[j]) < a.threshold {
					severity = SeverityCritical
				}
			}
		}

		report.add(Conflict{
			Kind:           KindRule,
			Severity:       severity,
			Name:           ruleName,
			Sources:        srcs,
			Details:        details,
			Description:    fmt.Sprintf("Business rule '%s' has different conditions across models.", ruleName),
			Recommendation: fmt.Sprintf("Consolidate rule '%s' into a single source of truth.", ruleName),
		})
	}
}

// entitySeverity scores a structural conflict by the overlap ratio of
// the two property-name sets: <0.5 critical, <0.8 warning, else info.
func entitySeverity(props1, props2 []string) Severity {
	union := make(map[string]bool, len(props1)+len(props2))
	set1 := make(map[string]bool, len(props1))
	for _, p := range props1 {
		union[p] = true
		set1[p] = true
	}
	common := 0
	for _, p := range props2 {
		if set1[p] {
			common++
		}
		union[p] = true
	}
	if len(union) == 0 {
		return SeverityInfo
	}
	ratio := float64(common) / float64(len(union))
	switch {
	case ratio < 0.5:
		return SeverityCritical
	case ratio < 0.8:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Similarity returns a normalized edit-distance similarity in [0,1]
// between two strings, case-insensitive.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

func propertyNames(e model.Entity) []string {
	return sortedKeys(toSet(e.Properties))
}

func toSet(props []model.Property) map[string]bool {
	set := make(map[string]bool, len(props))
	for _, p := range props {
		set[p.Name] = true
	}
	return set
}

func setDifference(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if !inB[s] {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
