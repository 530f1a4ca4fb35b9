// Package domain defines the value types shared across the audit pipeline:
// raw attribute records, the issue taxonomy, staged patches and the
// run-scoped clock.
package domain

import "time"

// DateFormat is the wire format for date attributes.
const DateFormat = "2006-01-02"

// PrintDateFormat is the format used when dates appear in report text.
const PrintDateFormat = "02-01-2006"

// Record is one raw attribute record as decoded from the upstream API.
// Values are heterogeneous: strings, booleans encoded as "0"/"1" strings,
// date strings, numbers and nested reference lists.
type Record map[string]any

// Ref is a single {Guid: ...} entry inside a reference list attribute.
type Ref struct {
	GUID string `json:"Guid"`
}

// Str returns the named attribute as a string, or "" when absent, empty
// or not a string.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Has reports whether the named attribute is present and non-empty.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}

// Flag reports whether a "0"/"1" boolean attribute is set. The upstream
// API is inconsistent and sometimes delivers real numbers.
func (r Record) Flag(key string) bool {
	switch v := r[key].(type) {
	case string:
		return v == "1"
	case float64:
		return v == 1
	case int:
		return v == 1
	case bool:
		return v
	}
	return false
}

// Int returns a numeric attribute, tolerating the API's mix of JSON
// numbers and numeric strings. ok is false when absent or unparseable.
func (r Record) Int(key string) (int, bool) {
	switch v := r[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// Date parses a date attribute. ok is false when the attribute is absent,
// empty or malformed.
func (r Record) Date(key string) (time.Time, bool) {
	s := r.Str(key)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > len(DateFormat) {
		s = s[:len(DateFormat)]
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Refs decodes a reference-list attribute into its GUID entries. Entries
// carry extra attributes (attendance dates and the like) which callers
// read through RefRecords.
func (r Record) Refs(key string) []Ref {
	var out []Ref
	for _, rec := range r.RefRecords(key) {
		out = append(out, Ref{GUID: rec.Str("Guid")})
	}
	return out
}

// RefRecords returns the raw entries of a reference-list attribute.
func (r Record) RefRecords(key string) []Record {
	list, ok := r[key].([]any)
	if !ok {
		return nil
	}
	var out []Record
	for _, item := range list {
		if m, isMap := item.(map[string]any); isMap {
			out = append(out, Record(m))
		}
	}
	return out
}

// Clone returns a shallow copy with reference-list attributes deep-copied,
// so staged fixes can edit lists without touching the loaded record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if list, ok := v.([]any); ok {
			cp := make([]any, len(list))
			copy(cp, list)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

// WithoutRef returns a copy of a reference list minus the entry for guid.
func WithoutRef(refs []Record, guid string) []any {
	var out []any
	for _, ref := range refs {
		if ref.Str("Guid") == guid {
			continue
		}
		out = append(out, map[string]any(ref))
	}
	return out
}
