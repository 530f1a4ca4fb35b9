package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// AuditedEntity is the contract every stored entity satisfies.
type AuditedEntity interface {
	subject
	GUID() string
	Name() string
	IsActive() bool
	Raw() domain.Record
}

// Store holds one collection of entities, indexed by GUID and by display
// name. The name index keeps the latest entity inserted under each name;
// collisions are a data-quality matter handled by the insert hook.
type Store[E AuditedEntity] struct {
	name     string
	resource string
	factory  func(domain.Record) E

	// insertHook runs on each raw record before the entity is built,
	// while the indexes still describe previously loaded entities.
	insertHook func(domain.Record)

	entities []E
	byGUID   map[string]E
	byName   map[string]E
	active   int
	raw      []domain.Record
}

func newStore[E AuditedEntity](name, resource string, factory func(domain.Record) E) *Store[E] {
	return &Store[E]{
		name:     name,
		resource: resource,
		factory:  factory,
		byGUID:   map[string]E{},
		byName:   map[string]E{},
	}
}

// Load pages through the collection until the upstream reports no more
// data. An empty page and a not-found response both end the collection;
// any other error aborts the load.
func (s *Store[E]) Load(ctx context.Context, t Transport, notifier Notifier, metrics *Metrics) error {
	notifier.Notify(fmt.Sprintf("%s... ", s.name))
	for page := 1; ; page++ {
		recs, err := t.Read(ctx, s.resource, page)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			notifier.Notify("failed.\n")
			return fmt.Errorf("load %s page %d: %w", s.name, page, err)
		}
		if len(recs) == 0 {
			break
		}
		metrics.pageLoaded()
		s.addRecords(recs, metrics)
	}
	notifier.Notify(fmt.Sprintf("%d\n", len(s.entities)))
	return nil
}

// addRecords inserts a batch of raw records.
func (s *Store[E]) addRecords(recs []domain.Record, metrics *Metrics) {
	for _, rec := range recs {
		s.insert(rec, metrics)
	}
}

func (s *Store[E]) insert(rec domain.Record, metrics *Metrics) {
	s.raw = append(s.raw, rec)
	if s.insertHook != nil {
		s.insertHook(rec)
	}
	e := s.factory(rec)
	s.entities = append(s.entities, e)
	if guid := e.GUID(); guid != "" {
		s.byGUID[guid] = e
	}
	if name := e.Name(); name != "" {
		s.byName[name] = e
	}
	if e.IsActive() {
		s.active++
	}
	metrics.entityLoaded(s.name)
}

// Entities returns all loaded entities in load order.
func (s *Store[E]) Entities() []E {
	return s.entities
}

// ByGUID looks an entity up by GUID.
func (s *Store[E]) ByGUID(guid string) (E, bool) {
	e, ok := s.byGUID[guid]
	return e, ok
}

// ByName looks an entity up by display name.
func (s *Store[E]) ByName(name string) (E, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// ActiveCount returns the number of active entities loaded.
func (s *Store[E]) ActiveCount() int {
	return s.active
}

// Raw returns the raw records in load order, for snapshots.
func (s *Store[E]) Raw() []domain.Record {
	return s.raw
}

// Name returns the collection's display name.
func (s *Store[E]) Name() string {
	return s.name
}

// Resource returns the upstream resource the collection loads from.
func (s *Store[E]) Resource() string {
	return s.resource
}

// Summary renders the collection's one-line count.
func (s *Store[E]) Summary() string {
	return fmt.Sprintf("%s: %d\n", s.name, len(s.entities))
}

// Delete resets the store to empty, ready for a reload.
func (s *Store[E]) Delete() {
	s.entities = nil
	s.byGUID = map[string]E{}
	s.byName = map[string]E{}
	s.active = 0
	s.raw = nil
}
