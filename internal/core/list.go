package core

import (
	"context"
	"fmt"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// List is an email distribution list defined upstream.
type List struct {
	entity
}

func newList(rec domain.Record) *List {
	return &List{entity: newEntity(rec, ResourceLists, domain.KeyListName)}
}

func (l *List) link(d *Dataset) {
	d.linkMemberRefs(l, l.addMember)
}

func (l *List) analyse(d *Dataset) {
	if len(l.members) == 0 {
		d.ledger.Report(l, domain.NoMembers, "List")
		return
	}

	for _, m := range l.members {
		if !m.IsActive() {
			d.ledger.Report(m, domain.ListError, fmt.Sprintf("Inactive but on email list %s (fixable)", l.name))
			d.stageMemberRemoval(l, m, "Delete "+m.Name())
		}
		if m.Email() == "" {
			d.ledger.Report(m, domain.ListError, "No email, but on email list "+l.name)
		}
	}
}

// GeneratedList is a list this tool maintains upstream: either built from
// configured membership criteria, or fed one member at a time by the
// analysis pass.
type GeneratedList struct {
	name   string
	guids  []string
	create bool
}

func newGeneratedList(name string) *GeneratedList {
	return &GeneratedList{name: name, create: true}
}

func (g *GeneratedList) addMember(m *Member) {
	g.guids = append(g.guids, m.GUID())
}

// populate fills the list from its configured criteria.
func (g *GeneratedList) populate(d *Dataset) {
	cfg := func(item string) []string {
		return []string{"lists", "list", g.name, item}
	}

	minAge := d.policy.IntOr(0, cfg("min_age")...)
	maxAge := d.policy.IntOr(999, cfg("max_age")...)
	minAgeEOY := d.policy.IntOr(0, cfg("min_age_eoy")...)
	maxAgeEOY := d.policy.IntOr(999, cfg("max_age_eoy")...)
	minYear := d.policy.IntOr(1900, cfg("min_year")...)
	maxYear := d.policy.IntOr(2200, cfg("max_year")...)

	group := d.policy.Str(cfg("group")...)
	unique := d.policy.Get(cfg("unique")...) != nil
	allowGroup := d.policy.Str(cfg("allow_group")...)

	wantGender := ""
	if gender := d.policy.Str(cfg("gender")...); gender != "" {
		wantGender = "F"
		if gender == "male" {
			wantGender = "M"
		}
	}
	wantType := d.policy.Str(cfg("type")...)

	for _, m := range d.members.Entities() {
		if !m.IsActive() || m.ignoreGroup {
			continue
		}
		if age, ok := m.Age(); ok && (age < minAge || age > maxAge) {
			continue
		}
		if age, ok := m.AgeEOY(); ok && (age < minAgeEOY || age > maxAgeEOY) {
			continue
		}
		if m.hasDOB && (m.dob.Year() < minYear || m.dob.Year() > maxYear) {
			continue
		}

		if group != "" {
			if !m.findGroup(group) {
				continue
			}
			if unique && len(m.groups) > 1 {
				if allowGroup == "" || !m.findGroup(allowGroup) {
					continue
				}
			}
		}

		if wantGender != "" && m.Gender() != wantGender {
			continue
		}
		if wantType != "" && !m.isType(domain.MemberType(wantType)) {
			continue
		}

		if m.Email() == "" {
			if !m.suppressed(config.ExceptionNoEmail) {
				d.ledger.Report(m, domain.ListError, "No email, but required for email list "+g.name)
			}
			continue
		}

		g.addMember(m)
	}
}

// payload builds the upstream record for the list. An existing list with
// the suffixed name is updated in place rather than recreated.
func (g *GeneratedList) payload(d *Dataset, suffix string) domain.Record {
	refs := make([]any, 0, len(g.guids))
	for _, guid := range g.guids {
		refs = append(refs, map[string]any{domain.KeyGUID: guid})
	}
	rec := domain.Record{
		domain.KeyListName: g.name + suffix,
		domain.KeyMembers:  refs,
	}
	if existing, ok := d.lists.ByName(g.name + suffix); ok {
		rec[domain.KeyGUID] = existing.GUID()
		g.create = false
	}
	return rec
}

// feedList adds a member to the named generated list, creating it on
// first use.
func (d *Dataset) feedList(name string, m *Member) {
	for _, gl := range d.newLists {
		if gl.name == name {
			gl.addMember(m)
			return
		}
	}
	gl := newGeneratedList(name)
	d.newLists = append(d.newLists, gl)
	gl.addMember(m)
}

// UpdateLists pushes generated lists upstream: the configured criteria
// lists plus any lists fed during analysis. Policy must allow list
// edits; a single failed upload is reported and skipped.
func (d *Dataset) UpdateLists(ctx context.Context, t Transport) {
	if d.policy.Get("lists") == nil {
		return
	}
	if !d.policy.IsTrue("lists", "edit") {
		d.notifier.Notify("List update prohibited by config.\n")
		return
	}

	suffix := d.policy.Str("lists", "suffix")

	for _, name := range d.policy.Keys("lists", "list") {
		gl := newGeneratedList(name)
		d.newLists = append(d.newLists, gl)
		gl.populate(d)
	}

	// Separate loop: analysis feeds may have created lists too.
	for _, gl := range d.newLists {
		rec := gl.payload(d, suffix)
		d.notifier.Notify(fmt.Sprintf("Creating / Updating list: %s\n", gl.name))
		if err := t.Write(ctx, ResourceLists, rec, gl.create); err != nil {
			d.notifier.Notify(fmt.Sprintf("Error updating list %s: %v\n", gl.name, err))
		}
	}
}
