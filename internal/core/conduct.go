package core

import (
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// Conduct is one code of conduct and the members who have signed it.
type Conduct struct {
	entity
}

func newConduct(rec domain.Record) *Conduct {
	return &Conduct{entity: newEntity(rec, ResourceConduct, domain.KeyTitle)}
}

func (c *Conduct) link(d *Dataset) {
	d.linkMemberRefs(c, c.addMember)
	for _, m := range c.members {
		m.addConduct(c)
	}
}

// analyse flags members who appear against the code without a signing
// date. Members who never confirmed their details get a separate issue
// later, so only confirmed members are reported here.
func (c *Conduct) analyse(d *Dataset) {
	for _, ref := range c.raw.RefRecords(domain.KeyMembers) {
		if ref.Str(domain.KeyDateAgreed) != "" {
			continue
		}
		m, ok := d.members.ByGUID(ref.Str(domain.KeyGUID))
		if !ok || !m.hasConfirmed {
			continue
		}
		d.ledger.Report(m, domain.NoConductDate, c.name)
		for _, code := range d.policy.StrList("lists", "conduct") {
			if code == c.name {
				d.feedList(c.name+" missing", m)
			}
		}
	}
}

// checkConduct verifies a member has signed every code of conduct that
// applies to their member types.
func checkConduct(d *Dataset, m *Member) {
	if d.policy.Get("conduct") == nil {
		return
	}

	for _, code := range d.conduct.Entities() {
		ignored := false
		for _, name := range d.policy.StrList("conduct", code.name, "ignore_group") {
			if m.findGroup(name) {
				ignored = true
				break
			}
		}
		if ignored {
			continue
		}

		types := d.policy.StrList("conduct", code.name, "types")
		if types == nil {
			return
		}
		for _, t := range types {
			if m.isType(domain.MemberType(t)) && !m.hasConduct(code) {
				d.ledger.Report(m, domain.NoConduct, code.name)
			}
		}
	}
}
