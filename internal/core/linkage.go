package core

import (
	"fmt"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// linkMemberRefs resolves an entity's member reference list. Active
// members are handed to add; a reference to an inactive member is an
// issue against the owning entity with a staged fix to drop the link.
// A GUID missing from the member collection is a contact-only entry and
// is skipped quietly.
func (d *Dataset) linkMemberRefs(owner fixable, add func(*Member)) {
	for _, ref := range owner.Raw().RefRecords(domain.KeyMembers) {
		guid := ref.Str(domain.KeyGUID)
		m, ok := d.members.ByGUID(guid)
		if !ok {
			d.ledger.Debugf(7, "GUID %s missing in list - email address only?", guid)
			continue
		}
		if m.IsActive() {
			add(m)
			continue
		}
		d.ledger.ReportLevel(owner, domain.Inactive, "member "+m.Name(), domain.LevelNormal, "Fixable")
		d.stageMemberRemoval(owner, m, fmt.Sprintf("Delete %s (inactive)", m.Name()))
	}
}

// stageMemberRemoval stages a fix removing one member from the owning
// entity's reference list. Repeated removals against the same entity
// accumulate in its pending patch, so each starts from the patch's list
// when there is one.
func (d *Dataset) stageMemberRemoval(owner fixable, m *Member, reason string) {
	refs := owner.Raw().RefRecords(domain.KeyMembers)
	if p := owner.pending(); p != nil {
		if v, ok := p.Fields[domain.KeyMembers]; ok {
			if cur, isList := v.([]any); isList {
				refs = refRecords(cur)
			}
		}
	}
	fields := domain.Record{domain.KeyMembers: domain.WithoutRef(refs, m.GUID())}
	d.fixes.Stage(owner, fields, reason)
}

func refRecords(list []any) []domain.Record {
	out := make([]domain.Record, 0, len(list))
	for _, item := range list {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, domain.Record(rec))
		}
	}
	return out
}
