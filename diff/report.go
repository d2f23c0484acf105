package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Changelog renders the report as a markdown changelog grouped by
// change type.
func (r *Report) Changelog() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Changelog: %s → %s\n\n", r.SourceName, r.TargetName))
	sb.WriteString(fmt.Sprintf("**From**: %s v%s\n", r.SourceName, r.SourceVersion))
	sb.WriteString(fmt.Sprintf("**To**: %s v%s\n\n", r.TargetName, r.TargetVersion))
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Total changes: %d\n", r.Summary.TotalChanges))
	sb.WriteString(fmt.Sprintf("- Added: %d\n", r.Summary.Added))
	sb.WriteString(fmt.Sprintf("- Removed: %d\n", r.Summary.Removed))
	sb.WriteString(fmt.Sprintf("- Modified: %d\n\n", r.Summary.Modified))

	writeSection := func(title string, changeType ChangeType) {
		var changes []Change
		for _, c := range r.Changes {
			if c.ChangeType == changeType {
				changes = append(changes, c)
			}
		}
		if len(changes) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", title))
		for _, c := range changes {
			sb.WriteString(fmt.Sprintf("- **%s**: `%s`\n", c.ElementType, c.Path))
			if changeType == Modified && c.OldValue != "" && c.NewValue != "" {
				sb.WriteString(fmt.Sprintf("  - Was: `%s`\n", c.OldValue))
				sb.WriteString(fmt.Sprintf("  - Now: `%s`\n", c.NewValue))
			}
			if c.Details != "" {
				sb.WriteString(fmt.Sprintf("  - %s\n", c.Details))
			}
		}
		sb.WriteString("\n")
	}

	writeSection("Added", Added)
	writeSection("Removed", Removed)
	writeSection("Modified", Modified)

	return sb.String()
}

// UnifiedDiff renders the report as a unified diff over a textual
// projection of the change set: each change contributes one synthetic
// line per side, "{element_type}: {path} = {value}". This is an
// approximation over that projection, not a diff of any original
// serialized form.
func (r *Report) UnifiedDiff() (string, error) {
	ud := difflib.UnifiedDiff{
		A:        r.projectLines(func(c Change) string { return c.OldValue }),
		B:        r.projectLines(func(c Change) string { return c.NewValue }),
		FromFile: fmt.Sprintf("%s v%s", r.SourceName, r.SourceVersion),
		ToFile:   fmt.Sprintf("%s v%s", r.TargetName, r.TargetVersion),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("render unified diff: %w", err)
	}
	return text, nil
}

func (r *Report) projectLines(value func(Change) string) []string {
	var lines []string
	for _, c := range r.Changes {
		if v := value(c); v != "" {
			lines = append(lines, fmt.Sprintf("%s: %s = %s\n", c.ElementType, c.Path, v))
		}
	}
	sort.Strings(lines)
	return lines
}
