package mapper

import "fmt"

// Upstream payloads are heterogeneous enough that both mappers work on
// decoded JSON rather than fixed wire structs. These helpers degrade to
// zero values instead of panicking on unexpected shapes; no record is
// allowed to fail mapping.

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case float64:
			return formatNumber(s)
		}
	}
	return ""
}

func objectField(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if obj, ok := m[k].(map[string]any); ok {
			return obj
		}
	}
	return nil
}

func listField(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if list, ok := m[k].([]any); ok {
			return list
		}
	}
	return nil
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
