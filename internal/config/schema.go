package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// refKind tags a schema node whose string values (or map keys) name an
// entity that must exist once the dataset is loaded. Captured names are
// verified after linkage.
type refKind int

const (
	refNone refKind = iota
	refGroup
	refSession
	refRole
	refConduct
	refIssue
	refType
)

// node is one element of the declarative configuration schema. The whole
// schema is a single static definition (see schema var below), validated
// once at load with named error paths.
type node struct {
	kind     valueKind
	required map[string]*node // object: fields that must be present
	optional map[string]*node // object: fields that may be present
	wildcard *node            // object: schema for arbitrary string keys
	keyRef   refKind          // object: wildcard keys captured as references
	elem     *node            // list element schema
	ref      refKind          // string values captured as references
	enum     []string         // string values restricted to this set
}

type valueKind int

const (
	kindObject valueKind = iota
	kindString
	kindInt
	kindBool
	kindList
)

func obj(required, optional map[string]*node) *node {
	return &node{kind: kindObject, required: required, optional: optional}
}

func keyed(ref refKind, value *node) *node {
	return &node{kind: kindObject, wildcard: value, keyRef: ref}
}

func str() *node               { return &node{kind: kindString} }
func integer() *node           { return &node{kind: kindInt} }
func boolean() *node           { return &node{kind: kindBool} }
func strRef(r refKind) *node   { return &node{kind: kindString, ref: r} }
func listOf(elem *node) *node  { return &node{kind: kindList, elem: elem} }
func enumOf(vals ...string) *node { return &node{kind: kindString, enum: vals} }

func memberType() *node {
	vals := make([]string, len(domain.MemberTypes))
	for i, t := range domain.MemberTypes {
		vals[i] = string(t)
	}
	return &node{kind: kindString, enum: vals, ref: refType}
}

// schema is the full configuration document definition.
var schema = obj(
	map[string]*node{
		"club":         str(),
		"allow_update": boolean(),
	},
	map[string]*node{
		"debug_level": integer(),
		"swimmers": obj(nil, map[string]*node{
			"username":                obj(map[string]*node{"min_age": integer()}, nil),
			"parent":                  obj(map[string]*node{"mandatory": boolean(), "max_age": integer()}, nil),
			"confirmation_difference": obj(map[string]*node{"verify": boolean()}, nil),
			"absence":                 obj(map[string]*node{"time": integer()}, nil),
		}),
		"parents": obj(nil, map[string]*node{
			"age":   obj(map[string]*node{"min_age": integer(), "child": integer()}, nil),
			"login": obj(map[string]*node{"mandatory": boolean()}, nil),
		}),
		"members": obj(nil, map[string]*node{
			"confirmation": obj(map[string]*node{"expiry": integer()}, map[string]*node{"align_quarter": boolean()}),
			"dbs":          obj(map[string]*node{"expiry": integer()}, nil),
			"newstarter":   obj(map[string]*node{"grace": integer()}, nil),
			"inactive":     obj(map[string]*node{"time": integer()}, nil),
		}),
		"coaches": obj(nil, map[string]*node{
			"role": obj(map[string]*node{"mandatory": boolean()}, nil),
		}),
		"roles": obj(nil, map[string]*node{
			"volunteer": obj(map[string]*node{"mandatory": boolean()}, nil),
			"login":     obj(map[string]*node{"unused": integer()}, nil),
			"role": keyed(refRole, obj(nil, map[string]*node{
				"check_permissions":  boolean(),
				"is_coach":           boolean(),
				"check_restrictions": boolean(),
			})),
		}),
		"groups": obj(nil, map[string]*node{
			"priority": listOf(strRef(refGroup)),
			"group": keyed(refGroup, obj(nil, map[string]*node{
				"check_dbs":          boolean(),
				"confirmation":       str(),
				"ignore_group":       boolean(),
				"ignore_swimmer":     boolean(),
				"ignore_unknown":     boolean(),
				"max_age":            integer(),
				"min_age":            integer(),
				"no_club_sessions":   boolean(),
				"no_session_allowed": listOf(strRef(refGroup)),
				"no_sessions":        boolean(),
				"sessions":           listOf(strRef(refSession)),
				"type":               memberType(),
				"unique":             boolean(),
			})),
		}),
		"sessions": obj(nil, map[string]*node{
			"absence":  integer(),
			"register": integer(),
			"session": keyed(refSession, obj(nil, map[string]*node{
				"groups":            listOf(strRef(refGroup)),
				"ignore_attendance": boolean(),
			})),
		}),
		"conduct": keyed(refConduct, obj(
			map[string]*node{"types": listOf(memberType())},
			map[string]*node{"ignore_group": listOf(strRef(refGroup))},
		)),
		"issues": keyed(refIssue, obj(nil, map[string]*node{
			"message":      str(),
			"ignore_error": boolean(),
		})),
		"jobtitle": obj(map[string]*node{"ignore": listOf(str())}, nil),
		"types": keyed(refType, obj(nil, map[string]*node{
			"check_se_number":  boolean(),
			"ignore_coach":     boolean(),
			"ignore_committee": boolean(),
			"name":             str(),
			"jobtitle":         boolean(),
			"groups":           listOf(strRef(refGroup)),
			"parents":          boolean(),
		})),
		"lists": obj(
			map[string]*node{
				"suffix":       str(),
				"edit":         boolean(),
				"confirmation": boolean(),
			},
			map[string]*node{
				"conduct": listOf(strRef(refConduct)),
				"list": keyed(refNone, obj(nil, map[string]*node{
					"gender":      enumOf("male", "female"),
					"group":       strRef(refGroup),
					"allow_group": strRef(refGroup),
					"unique":      boolean(),
					"max_age":     integer(),
					"max_age_eoy": integer(),
					"max_year":    integer(),
					"min_age":     integer(),
					"min_age_eoy": integer(),
					"min_year":    integer(),
					"type":        memberType(),
				})),
			},
		),
	},
)

// References collects the entity names a configuration document mentions.
// They are checked against the loaded dataset after linkage.
type References struct {
	Groups   []string
	Sessions []string
	Roles    []string
	Conducts []string
	Issues   []string
}

type validator struct {
	refs References
	errs []string
}

func (v *validator) fail(path, format string, args ...any) {
	v.errs = append(v.errs, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) capture(r refKind, name string) {
	switch r {
	case refGroup:
		v.refs.Groups = append(v.refs.Groups, name)
	case refSession:
		v.refs.Sessions = append(v.refs.Sessions, name)
	case refRole:
		v.refs.Roles = append(v.refs.Roles, name)
	case refConduct:
		v.refs.Conducts = append(v.refs.Conducts, name)
	case refIssue:
		v.refs.Issues = append(v.refs.Issues, name)
	}
}

func (v *validator) walk(n *node, value any, path string) {
	switch n.kind {
	case kindString:
		s, ok := value.(string)
		if !ok {
			v.fail(path, "expected string, got %T", value)
			return
		}
		if len(n.enum) > 0 {
			found := false
			for _, e := range n.enum {
				if e == s {
					found = true
					break
				}
			}
			if !found {
				v.fail(path, "%q not one of %s", s, strings.Join(n.enum, ", "))
				return
			}
		}
		v.capture(n.ref, s)
	case kindInt:
		if _, ok := value.(int); !ok {
			v.fail(path, "expected integer, got %T", value)
		}
	case kindBool:
		if _, ok := value.(bool); !ok {
			v.fail(path, "expected boolean, got %T", value)
		}
	case kindList:
		list, ok := value.([]any)
		if !ok {
			v.fail(path, "expected list, got %T", value)
			return
		}
		for i, item := range list {
			v.walk(n.elem, item, fmt.Sprintf("%s[%d]", path, i))
		}
	case kindObject:
		m, ok := value.(map[string]any)
		if !ok {
			v.fail(path, "expected mapping, got %T", value)
			return
		}
		if n.wildcard != nil {
			for _, key := range sortedKeys(m) {
				v.capture(n.keyRef, key)
				v.walk(n.wildcard, m[key], join(path, key))
			}
			return
		}
		for field := range n.required {
			if _, present := m[field]; !present {
				v.fail(join(path, field), "required key missing")
			}
		}
		for _, key := range sortedKeys(m) {
			child, known := n.required[key]
			if !known {
				child, known = n.optional[key]
			}
			if !known {
				v.fail(join(path, key), "unknown key")
				continue
			}
			v.walk(child, m[key], join(path, key))
		}
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// validate checks a decoded document against the schema, returning the
// captured entity references. All violations are reported in one error.
func validate(doc map[string]any) (References, error) {
	v := &validator{}
	v.walk(schema, doc, "")
	if len(v.errs) > 0 {
		sort.Strings(v.errs)
		return References{}, fmt.Errorf("config schema: %s", strings.Join(v.errs, "; "))
	}
	return v.refs, nil
}
