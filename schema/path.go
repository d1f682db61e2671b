package schema

import "strings"

// Document is a nested data document keyed by dot-path segments.
type Document map[string]any

// Get walks path one segment at a time and returns def as soon as a segment
// is missing or an intermediate value is not a map.
func Get(doc Document, path string, def any) any {
	if doc == nil || path == "" {
		return def
	}
	var cur any = map[string]any(doc)
	for _, seg := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return def
		}
		v, ok := m[seg]
		if !ok {
			return def
		}
		cur = v
	}
	return cur
}

// GetString is Get narrowed to a string; non-string values yield def.
func GetString(doc Document, path, def string) string {
	if s, ok := Get(doc, path, def).(string); ok {
		return s
	}
	return def
}

// Set assigns value at path, creating intermediate maps as needed. A non-map
// value found at an intermediate segment is replaced by an empty map.
// The (possibly newly allocated) document is returned.
func Set(doc Document, path string, value any) Document {
	if doc == nil {
		doc = Document{}
	}
	if path == "" {
		return doc
	}
	segs := strings.Split(path, ".")
	cur := map[string]any(doc)
	for _, seg := range segs[:len(segs)-1] {
		next, ok := asMap(cur[seg])
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
	return doc
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return map[string]any(m), true
	}
	return nil, false
}

// Clone returns a deep copy of doc's map and slice structure.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	return Document(cloneMap(doc))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Document:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
