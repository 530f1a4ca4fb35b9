package domain

import "strings"

// Patch is a staged partial-record correction awaiting confirmation.
// Successive patches against the same entity accumulate: fields merge
// last-write-wins, human-readable reasons concatenate.
type Patch struct {
	Fields   Record
	Messages []string
}

// NewPatch builds a patch over the given fields with one reason.
func NewPatch(fields Record, reason string) *Patch {
	return &Patch{Fields: fields, Messages: []string{reason}}
}

// Merge folds other into p. Later fields win per key.
func (p *Patch) Merge(other *Patch) {
	if p.Fields == nil {
		p.Fields = Record{}
	}
	for k, v := range other.Fields {
		p.Fields[k] = v
	}
	p.Messages = append(p.Messages, other.Messages...)
}

// Reason renders the accumulated fix messages.
func (p *Patch) Reason() string {
	return strings.Join(p.Messages, ", ")
}
