package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ExtractPayload strips markdown code fences and surrounding prose from a
// completion response, returning the best-effort JSON fragment. Models wrap
// structured output in ```json fences more often than not.
func ExtractPayload(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	// Prose before or after the object is common on fallback models.
	if !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}

	return strings.TrimSpace(raw)
}

// DecodePayload extracts the JSON fragment from raw and unmarshals it into a
// generic map for field-by-field coercion.
func DecodePayload(raw string) (map[string]any, error) {
	cleaned := ExtractPayload(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse completion payload: %w", err)
	}

	return data, nil
}

// CoerceInt converts loosely typed JSON values to an int, returning def when
// the value is absent or unusable.
func CoerceInt(v any, def int) int {
	f := CoerceFloat(v)
	if math.IsNaN(f) {
		return def
	}
	return int(f)
}

// CoerceFloat converts loosely typed JSON values to a float64, returning NaN
// when the value is unusable.
func CoerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// CoerceString converts loosely typed JSON values to a trimmed string.
func CoerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// CoerceStringSlice converts a JSON array of loosely typed values into a
// slice of non-empty strings.
func CoerceStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := CoerceString(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}
