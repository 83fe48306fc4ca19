package config

// Options is a loosely typed option bag with forgiving accessors. Values
// typically arrive from JSON, so numeric lookups accept float64 as well.
type Options map[string]any

// Bool returns the boolean option or def when absent or mistyped.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the integer option or def when absent or mistyped.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// String returns the string option or def when absent or mistyped.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Rune returns the first rune of a string option or def when absent or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key].(string); ok {
		for _, r := range v {
			return r
		}
	}
	return def
}

// StringMap returns a map option, converting from map[string]any when needed.
func (o Options) StringMap(key string) map[string]string {
	switch v := o[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}

// Any returns the raw option value, or nil when absent.
func (o Options) Any(key string) any { return o[key] }
