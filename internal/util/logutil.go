package util

import "strings"

const ellipsis = "..."

// TruncateForLog bounds a string for log output, appending an ellipsis when
// anything was cut. A non-positive limit yields an empty string.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}
