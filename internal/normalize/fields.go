package normalize

import (
	"hash/fnv"
	"strconv"
	"time"
)

// Str extracts a string field. Missing or non-string values yield "".
func Str(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}

	return ""
}

// Int extracts an integer field. JSON numbers arrive as float64;
// string-typed numerics are parsed. Anything else yields 0.
func Int(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}

		return n
	default:
		return 0
	}
}

// Float extracts a numeric field, defaulting to 0.
func Float(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}

		return f
	default:
		return 0
	}
}

// Bool extracts a boolean field, defaulting to false.
func Bool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)

	return b
}

// Map extracts a nested object field, or nil when absent.
func Map(m map[string]any, key string) map[string]any {
	nested, _ := m[key].(map[string]any)

	return nested
}

// Slice extracts an array-of-objects field, skipping non-object
// elements. Absent fields yield nil.
func Slice(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}

	return out
}

// timeLayouts covers the timestamp shapes the three providers emit.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700", // Jira
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
}

// TimePtr extracts a timestamp field. Missing or unparseable values
// yield nil, never a zero time.
func TimePtr(m map[string]any, key string) *time.Time {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return nil
	}

	return ParseTime(s)
}

// ParseTime parses a provider timestamp string, or returns nil.
func ParseTime(s string) *time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return nil
}

// SurrogateID derives a stable integer surrogate from a non-integer
// upstream identifier (for example a Jira account id) via an FNV-1a
// checksum. The mapping is lossy and display-only: it keeps ids
// consistent across domain types but must never be used as a
// uniqueness guarantee against the true upstream identifier.
func SurrogateID(upstream string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(upstream))

	return int64(h.Sum32() & 0x7fffffff)
}

// ID extracts an identifier field: integer values pass through,
// non-integer strings fall back to the checksum surrogate.
func ID(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		if v == "" {
			return 0
		}

		return SurrogateID(v)
	default:
		return 0
	}
}
