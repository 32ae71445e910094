package tuner

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/constraints"
)

//////
// Helper functions.
//////

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}

// sortedKeys returns the keys of m in ascending order. Registry maps are
// walked through it so reports are deterministic.
func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// joinValues formats values as "[a,b,c]".
func joinValues(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}

	return "[" + strings.Join(parts, ",") + "]"
}
