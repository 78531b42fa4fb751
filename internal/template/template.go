// Package template validates {placeholder} usage in loop and workflow
// prompt templates before they are sent to the backend.
package template

import (
	"fmt"
	"sort"
	"strings"
)

// Known placeholders the backend substitutes at iteration time.
var known = map[string]bool{
	"task":      true,
	"item":      true,
	"project":   true,
	"iteration": true,
}

// KnownPlaceholders returns the supported placeholder names, sorted.
func KnownPlaceholders() []string {
	out := make([]string, 0, len(known))
	for k := range known {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Placeholders extracts every {name} occurrence in order of appearance,
// without de-duplication. Unbalanced braces are reported as an error.
func Placeholders(text string) ([]string, error) {
	var out []string
	depth := 0
	start := 0
	for i, r := range text {
		switch r {
		case '{':
			if depth > 0 {
				return nil, fmt.Errorf("nested '{' at offset %d", i)
			}
			depth++
			start = i + 1
		case '}':
			if depth == 0 {
				return nil, fmt.Errorf("unmatched '}' at offset %d", i)
			}
			depth--
			out = append(out, text[start:i])
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unclosed '{'")
	}
	return out, nil
}

// Validate checks a prompt template:
//   - braces must balance,
//   - every placeholder must be known,
//   - itemDriven templates must reference {item} or {task} (otherwise every
//     iteration would run the identical prompt against a queue of items).
//
// All problems are reported at once so the wizard can show them together.
func Validate(text string, itemDriven bool) []string {
	var problems []string

	names, err := Placeholders(text)
	if err != nil {
		return []string{err.Error()}
	}

	seen := map[string]bool{}
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			problems = append(problems, "empty placeholder {}")
			continue
		}
		if !known[trimmed] {
			if !seen[trimmed] {
				problems = append(problems, fmt.Sprintf("unknown placeholder {%s} (known: {%s})", trimmed, strings.Join(KnownPlaceholders(), "}, {")))
			}
		}
		seen[trimmed] = true
	}

	if itemDriven && !seen["item"] && !seen["task"] {
		problems = append(problems, "item-driven loops must reference {item} or {task} in the prompt")
	}
	return problems
}
