package core

import (
	"fmt"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// MemberStore extends the generic store with the extra indexes and
// counters the member collection needs: known-as names, registration
// numbers, Facebook names, and the headline counts for the summary.
type MemberStore struct {
	*Store[*Member]

	knownAs  map[string]*Member
	byASA    map[string]*Member
	facebook map[string]*Member

	coaches      int
	parentCount  int
	swimmerCount int
	waterpolo    int
	synchro      int
	volunteers   int
	inactive     int
	activeCount  int
	notConfirmed int
}

func newMemberStore(d *Dataset) *MemberStore {
	ms := &MemberStore{
		knownAs:  map[string]*Member{},
		byASA:    map[string]*Member{},
		facebook: map[string]*Member{},
	}
	ms.Store = newStore("Members", ResourceMembers, func(rec domain.Record) *Member {
		m := newMember(rec, d)
		ms.index(m)
		return m
	})
	ms.Store.insertHook = func(rec domain.Record) {
		ms.checkDuplicate(d, rec)
	}
	return ms
}

func (ms *MemberStore) index(m *Member) {
	ms.knownAs[m.KnownAs()] = m
	if asa := m.ASANumber(); asa != "" {
		ms.byASA[asa] = m
	}
	for _, face := range m.facebook {
		ms.facebook[face] = m
	}
	if m.IsActive() {
		ms.activeCount++
		if m.isCoach() {
			ms.coaches++
		}
		if m.isParent() {
			ms.parentCount++
		}
		if m.isSwimmer() {
			ms.swimmerCount++
		}
		if m.isPolo() {
			ms.waterpolo++
		}
		if m.isSynchro() {
			ms.synchro++
		}
		if m.isVolunteer() {
			ms.volunteers++
		}
	} else {
		ms.inactive++
	}
}

// checkDuplicate compares an incoming record against the members already
// loaded. Two active members under one name is the real problem; one or
// both inactive is downgraded since re-joining members get a fresh
// record upstream.
func (ms *MemberStore) checkDuplicate(d *Dataset, rec domain.Record) {
	name := fmt.Sprintf("%s %s", rec.Str(domain.KeyFirstname), rec.Str(domain.KeyLastname))
	active := rec.Str(domain.KeyActive) == "1"

	if other, ok := ms.ByName(name); ok {
		if active && other.IsActive() {
			d.ledger.Report(other, domain.Duplicate, name)
		} else if !active && !other.IsActive() {
			d.ledger.ReportLevel(other, domain.Duplicate, "BOTH inactive", domain.LevelIgnorable, "")
		} else {
			d.ledger.ReportLevel(other, domain.Duplicate, "One is inactive", domain.LevelAlways, "")
		}
		return
	}

	if other, ok := ms.knownAs[name]; ok {
		if active && other.IsActive() {
			d.ledger.ReportLevel(other, domain.Duplicate, name, domain.LevelNormal, "(Known as)")
		} else {
			d.ledger.ReportLevel(other, domain.Duplicate, "One is inactive (Known as)", domain.LevelAlways, "")
		}
	}
}

// Find looks a member up by full name, then by known-as name.
func (ms *MemberStore) Find(name string) (*Member, bool) {
	if m, ok := ms.ByName(name); ok {
		return m, true
	}
	m, ok := ms.knownAs[name]
	return m, ok
}

// ByFacebook looks a member up by a Facebook name from their notes.
func (ms *MemberStore) ByFacebook(name string) (*Member, bool) {
	m, ok := ms.facebook[name]
	return m, ok
}

// ByASANumber looks a member up by Swim England registration number.
func (ms *MemberStore) ByASANumber(asa string) (*Member, bool) {
	m, ok := ms.byASA[asa]
	return m, ok
}

// Summary renders the membership counts block.
func (ms *MemberStore) Summary(policy *config.Policy) string {
	synchroName := policy.Str("types", "synchro", "name")
	if synchroName == "" {
		synchroName = "Synchro"
	}

	opt := fmt.Sprintf("Members: %d\n", ms.activeCount)
	opt += fmt.Sprintf("   Swimmers: %d\n", ms.swimmerCount)
	opt += fmt.Sprintf("   %s: %d\n", synchroName, ms.synchro)
	opt += fmt.Sprintf("   Water Polo: %d\n", ms.waterpolo)
	opt += fmt.Sprintf("   Volunteers: %d\n", ms.volunteers)
	opt += fmt.Sprintf("   Coaches: %d\n", ms.coaches)
	opt += fmt.Sprintf("   Parents: %d\n", ms.parentCount)
	opt += fmt.Sprintf("   Inactive: %d\n", ms.inactive)
	return opt
}

// Delete resets the store and its extra indexes for a reload.
func (ms *MemberStore) Delete() {
	ms.Store.Delete()
	ms.knownAs = map[string]*Member{}
	ms.byASA = map[string]*Member{}
	ms.facebook = map[string]*Member{}
	ms.coaches = 0
	ms.parentCount = 0
	ms.swimmerCount = 0
	ms.waterpolo = 0
	ms.synchro = 0
	ms.volunteers = 0
	ms.inactive = 0
	ms.activeCount = 0
	ms.notConfirmed = 0
}
