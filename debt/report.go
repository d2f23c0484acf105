package debt

import (
	"fmt"
	"strings"
)

// Summary holds conflict counts by severity and by kind.
type Summary struct {
	TotalConflicts int            `json:"total_conflicts"`
	Critical       int            `json:"critical"`
	Warning        int            `json:"warning"`
	Info           int            `json:"info"`
	ByKind         map[string]int `json:"by_type"`
}

// Report is the result of a semantic debt analysis.
type Report struct {
	Analyzed        []string   `json:"models_analyzed"`
	Conflicts       []Conflict `json:"conflicts"`
	Summary         Summary    `json:"summary"`
	Recommendations []string   `json:"recommendations"`
}

func (r *Report) add(c Conflict) {
	r.Conflicts = append(r.Conflicts, c)
}

func (r *Report) generateSummary() {
	s := Summary{
		TotalConflicts: len(r.Conflicts),
		ByKind:         make(map[string]int),
	}
	for _, c := range r.Conflicts {
		switch c.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warning++
		case SeverityInfo:
			s.Info++
		}
		s.ByKind[string(c.Kind)]++
	}
	r.Summary = s
}

// generateRecommendations derives top-level remediation advice from
// simple threshold rules over the detected conflicts.
func (r *Report) generateRecommendations() {
	if len(r.Conflicts) == 0 {
		r.Recommendations = append(r.Recommendations, "No semantic conflicts detected.")
		return
	}

	var critical, warning int
	byKind := make(map[Kind]int)
	for _, c := range r.Conflicts {
		if c.Severity == SeverityCritical {
			critical++
		}
		if c.Severity == SeverityWarning {
			warning++
		}
		byKind[c.Kind]++
	}

	if critical > 0 {
		r.Recommendations = append(r.Recommendations,
			fmt.Sprintf("Address %d critical conflict(s) immediately - they may cause data inconsistencies.", critical))
	}
	if byKind[KindType] > 0 {
		r.Recommendations = append(r.Recommendations,
			"Create a shared data dictionary to standardize property types across models.")
	}
	if byKind[KindEntity] > 0 {
		r.Recommendations = append(r.Recommendations,
			"Consider creating a master schema that all models inherit from.")
	}
	if byKind[KindRule] > 0 {
		r.Recommendations = append(r.Recommendations,
			"Centralize business rules in a single repository to ensure consistency.")
	}
	if warning > 3 {
		r.Recommendations = append(r.Recommendations,
			"Schedule a semantic alignment review with stakeholders from the different model teams.")
	}
}

// Markdown renders the report as a markdown document, critical
// conflicts first.
func (r *Report) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Semantic Debt Analysis Report\n\n")
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Models analyzed:** %d\n", len(r.Analyzed)))
	sb.WriteString(fmt.Sprintf("- **Total conflicts:** %d\n", r.Summary.TotalConflicts))
	sb.WriteString(fmt.Sprintf("  - Critical: %d\n", r.Summary.Critical))
	sb.WriteString(fmt.Sprintf("  - Warning: %d\n", r.Summary.Warning))
	sb.WriteString(fmt.Sprintf("  - Info: %d\n\n", r.Summary.Info))

	writeSection := func(title string, severity Severity) {
		var conflicts []Conflict
		for _, c := range r.Conflicts {
			if c.Severity == severity {
				conflicts = append(conflicts, c)
			}
		}
		if len(conflicts) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", title))
		for _, c := range conflicts {
			sb.WriteString(fmt.Sprintf("### %s\n\n", c.Name))
			sb.WriteString(fmt.Sprintf("**Type:** %s\n\n", c.Kind))
			sb.WriteString(fmt.Sprintf("**Description:** %s\n\n", c.Description))
			sb.WriteString("**Sources:**\n\n")
			for _, src := range c.Sources {
				sb.WriteString(fmt.Sprintf("- `%s`: %s\n", src, c.Details[src]))
			}
			sb.WriteString("\n")
			if c.Recommendation != "" {
				sb.WriteString(fmt.Sprintf("**Recommendation:** %s\n\n", c.Recommendation))
			}
		}
	}

	writeSection("Critical Conflicts", SeverityCritical)
	writeSection("Warnings", SeverityWarning)
	writeSection("Info", SeverityInfo)

	if len(r.Recommendations) > 0 {
		sb.WriteString("## Recommendations\n\n")
		for i, rec := range r.Recommendations {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
