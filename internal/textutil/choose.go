package textutil

import "strings"

// Ternary returns a when cond holds and b otherwise.
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// FirstNonBlank returns the first value that is not empty after trimming
// whitespace, trimmed. It returns "" when every value is blank.
func FirstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
