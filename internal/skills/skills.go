// Package skills turns free-form user input into a list of target skills.
package skills

import "strings"

const separator = ","

// Parse splits raw on commas, trims every element and drops empty ones.
// The result is never nil.
func Parse(raw string) []string {
	parts := strings.Split(raw, separator)
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		skill := strings.TrimSpace(part)
		if skill == "" {
			continue
		}
		result = append(result, skill)
	}

	return result
}

// Join renders skills back into the text form accepted by Parse.
func Join(skills []string) string {
	return strings.Join(skills, separator+" ")
}
