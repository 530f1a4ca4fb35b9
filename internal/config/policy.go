// Package config loads and validates the club's audit policy document.
// The document is YAML, validated once against a declarative schema; all
// later access goes through nested-key lookups where a missing path means
// "not configured, skip this check".
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Well-known configuration keys. Rules address policy values through
// these rather than literal strings.
const (
	KeyClub        = "club"
	KeyAllowUpdate = "allow_update"
	KeyDebugLevel  = "debug_level"
)

// Exception tokens recognised in member notes. A matching, unexpired
// token suppresses exactly one issue category for that member.
const (
	ExceptionEmailDiff         = "API: different email OK"
	ExceptionGeneral           = "API: Exception"
	ExceptionGroupNoSession    = "API: no sessions OK"
	ExceptionNoDBS             = "API: Coach no DBS OK"
	ExceptionNoEmail           = "API: no email OK"
	ExceptionNoGroups          = "API: no groups OK"
	ExceptionNonSwimmingMaster = "API: non swimming master"
	ExceptionNoSafeguard       = "API: Coach no Safeguard OK"
	ExceptionNoSessions        = "API: Coach no sessions"
	ExceptionPermissions       = "API: Coach permission OK"
	ExceptionTwoGroups         = "API: two groups OK"
)

// Policy is the loaded, schema-validated configuration document.
// Read-only after load.
type Policy struct {
	doc  map[string]any
	refs References
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Policy, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	refs, err := validate(doc)
	if err != nil {
		return nil, err
	}
	return &Policy{doc: doc, refs: refs}, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// References returns the entity names the document mentions.
func (p *Policy) References() References {
	return p.refs
}

// Get walks the nested document and returns the value at path, or nil at
// the first missing segment.
func (p *Policy) Get(path ...string) any {
	var cur any = p.doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// Str returns a string value, or "" when unconfigured.
func (p *Policy) Str(path ...string) string {
	s, _ := p.Get(path...).(string)
	return s
}

// Int returns an integer value. ok is false when unconfigured.
func (p *Policy) Int(path ...string) (int, bool) {
	v, ok := p.Get(path...).(int)
	return v, ok
}

// IntOr returns an integer value, or def when unconfigured.
func (p *Policy) IntOr(def int, path ...string) int {
	if v, ok := p.Int(path...); ok {
		return v
	}
	return def
}

// Bool returns a boolean value. ok is false when unconfigured, so callers
// can distinguish an explicit false from an absent key.
func (p *Policy) Bool(path ...string) (value, ok bool) {
	v, ok := p.Get(path...).(bool)
	return v, ok
}

// IsTrue reports whether the value at path is an explicit true.
func (p *Policy) IsTrue(path ...string) bool {
	v, _ := p.Bool(path...)
	return v
}

// IsFalse reports whether the value at path is an explicit false.
func (p *Policy) IsFalse(path ...string) bool {
	v, ok := p.Bool(path...)
	return ok && !v
}

// StrList returns a list-of-strings value, or nil when unconfigured.
func (p *Policy) StrList(path ...string) []string {
	list, ok := p.Get(path...).([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, isStr := item.(string); isStr {
			out = append(out, s)
		}
	}
	return out
}

// Keys returns the sorted keys of a mapping value, or nil when
// unconfigured.
func (p *Policy) Keys(path ...string) []string {
	m, ok := p.Get(path...).(map[string]any)
	if !ok {
		return nil
	}
	return sortedKeys(m)
}

// Club returns the configured club name.
func (p *Policy) Club() string {
	return p.Str(KeyClub)
}

// AllowUpdate reports whether the tool may write fixes upstream.
func (p *Policy) AllowUpdate() bool {
	return p.IsTrue(KeyAllowUpdate)
}

// DebugLevel returns the configured issue/debug threshold.
func (p *Policy) DebugLevel() int {
	return p.IntOr(0, KeyDebugLevel)
}
