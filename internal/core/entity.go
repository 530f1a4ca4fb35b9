package core

import "github.com/ColinRobbins/scm-helper/pkg/domain"

// entity is the embedded base of every audited entity: the raw record,
// the resolved member links and the staged fix, if any.
type entity struct {
	raw      domain.Record
	resource string
	name     string

	members []*Member
	patch   *domain.Patch
}

func newEntity(rec domain.Record, resource, nameKey string) entity {
	return entity{
		raw:      rec,
		resource: resource,
		name:     rec.Str(nameKey),
	}
}

// GUID returns the record's GUID. The who's-who singleton has none.
func (e *entity) GUID() string {
	return e.raw.Str(domain.KeyGUID)
}

// Name returns the entity's display name.
func (e *entity) Name() string {
	return e.name
}

// FullName returns the name used in reports. Overridden where the
// upstream display name needs qualification.
func (e *entity) FullName() string {
	return e.name
}

// Resource returns the upstream resource the entity belongs to.
func (e *entity) Resource() string {
	return e.resource
}

// Raw returns the raw record.
func (e *entity) Raw() domain.Record {
	return e.raw
}

// IsActive reports activity. True unless the concrete entity overrides;
// only members and sessions carry an activity flag upstream.
func (e *entity) IsActive() bool {
	return true
}

// Members returns the resolved member links.
func (e *entity) Members() []*Member {
	return e.members
}

func (e *entity) addMember(m *Member) {
	e.members = append(e.members, m)
}

func (e *entity) pending() *domain.Patch {
	return e.patch
}

func (e *entity) setPending(p *domain.Patch) {
	e.patch = p
}

func (e *entity) suppressed(string) bool {
	return false
}

func (e *entity) newStarter() bool {
	return false
}
