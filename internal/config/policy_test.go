package config

import (
	"path/filepath"
	"strings"
	"testing"
)

const testDoc = `
club: "Test SC"
allow_update: false
debug_level: 2
swimmers:
  username:
    min_age: 17
  parent:
    mandatory: true
    max_age: 17
groups:
  priority:
    - 'Masters'
    - 'Development'
  group:
    'Masters':
      min_age: 18
      unique: false
    'Development':
      max_age: 12
issues:
  'E_DOB':
    ignore_error: true
`

func TestPolicyAccessors(t *testing.T) {
	p, err := Parse([]byte(testDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := p.Club(); got != "Test SC" {
		t.Fatalf("Club = %q", got)
	}
	if p.AllowUpdate() {
		t.Fatalf("AllowUpdate = true, want false")
	}
	if got := p.DebugLevel(); got != 2 {
		t.Fatalf("DebugLevel = %d", got)
	}

	if got := p.IntOr(99, "swimmers", "username", "min_age"); got != 17 {
		t.Fatalf("IntOr = %d", got)
	}
	if got := p.IntOr(99, "swimmers", "username", "missing"); got != 99 {
		t.Fatalf("IntOr default = %d", got)
	}
	if !p.IsTrue("swimmers", "parent", "mandatory") {
		t.Fatalf("IsTrue missed an explicit true")
	}
	if !p.IsFalse("groups", "group", "Masters", "unique") {
		t.Fatalf("IsFalse missed an explicit false")
	}
	if p.IsFalse("groups", "group", "Development", "unique") {
		t.Fatalf("IsFalse treated an absent key as false")
	}

	if got := p.StrList("groups", "priority"); len(got) != 2 || got[0] != "Masters" {
		t.Fatalf("StrList = %v", got)
	}
	if got := p.Keys("groups", "group"); len(got) != 2 || got[0] != "Development" {
		t.Fatalf("Keys = %v", got)
	}
}

func TestPolicyReferences(t *testing.T) {
	p, err := Parse([]byte(testDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	refs := p.References()
	// Two group keys plus two priority entries.
	if len(refs.Groups) != 4 {
		t.Fatalf("group references = %v", refs.Groups)
	}
	if len(refs.Issues) != 1 || refs.Issues[0] != "E_DOB" {
		t.Fatalf("issue references = %v", refs.Issues)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"missing club", "allow_update: true\n"},
		{"missing allow_update", "club: 'Test SC'\n"},
		{"unknown key", "club: 'Test SC'\nallow_update: true\nnonsense: 1\n"},
		{"wrong type", "club: 'Test SC'\nallow_update: 'yes'\n"},
		{"lists without suffix", "club: 'Test SC'\nallow_update: true\nlists:\n  edit: false\n  confirmation: false\n"},
		{"not yaml", "club: [unterminated\n"},
	}
	for _, tc := range cases {
		if _, err := Parse([]byte(tc.doc)); err == nil {
			t.Fatalf("%s: expected parse to fail", tc.name)
		}
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), Dir, FileName)

	if err := WriteDefault(path, "Test SC"); err != nil {
		t.Fatalf("write default: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
	if got := p.Club(); got != "Test SC" {
		t.Fatalf("Club = %q", got)
	}
	if p.AllowUpdate() {
		t.Fatalf("default config must not allow updates")
	}

	if err := WriteDefault(path, "Test SC"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("overwrite not refused: %v", err)
	}
}
