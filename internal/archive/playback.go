package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/ColinRobbins/scm-helper/internal/core"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// playbackPageSize mirrors the upstream API's page size.
const playbackPageSize = 100

// Playback replays a snapshot through the core.Transport interface, so
// the full audit can run against historic data. Writes are rejected.
type Playback struct {
	snap Snapshot
}

// NewPlayback wraps a snapshot for replay.
func NewPlayback(snap Snapshot) *Playback {
	return &Playback{snap: snap}
}

// Read serves one page of a collection from the snapshot. Reads of a
// single code of conduct resolve against the conduct collection.
func (p *Playback) Read(_ context.Context, resource string, page int) ([]domain.Record, error) {
	if guid, ok := strings.CutPrefix(resource, core.ResourceConduct+"/"); ok {
		for _, rec := range p.snap.Collections[core.ResourceConduct] {
			if rec.Str(domain.KeyGUID) == guid {
				return []domain.Record{rec}, nil
			}
		}
		return nil, core.ErrNotFound
	}

	recs, ok := p.snap.Collections[resource]
	if !ok {
		return nil, core.ErrNotFound
	}

	start := (page - 1) * playbackPageSize
	if start >= len(recs) {
		return nil, nil
	}
	end := start + playbackPageSize
	if end > len(recs) {
		end = len(recs)
	}
	return recs[start:end], nil
}

// Write always fails: a snapshot is read-only.
func (p *Playback) Write(context.Context, string, domain.Record, bool) error {
	return fmt.Errorf("snapshot is read-only")
}
