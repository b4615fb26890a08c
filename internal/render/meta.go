package render

import "strings"

const (
	yieldPrefix = "\U0001F37D\uFE0F " // 🍽️
	timePrefix  = "\u23F1\uFE0F "     // ⏱️
	metaSep     = " \u2022 "
)

// MetaLine composes the line under the title from yield and time. When both
// are empty it returns fallback.
func MetaLine(yield, prepTime, fallback string) string {
	parts := make([]string, 0, 2)
	if yield != "" {
		parts = append(parts, yieldPrefix+yield)
	}
	if prepTime != "" {
		parts = append(parts, timePrefix+prepTime)
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, metaSep)
}
