package core

import (
	"fmt"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// Role is a club role such as a committee post or register taker.
type Role struct {
	entity
}

func newRole(rec domain.Record) *Role {
	return &Role{entity: newEntity(rec, ResourceRoles, domain.KeyRoleName)}
}

func (r *Role) link(d *Dataset) {
	d.linkMemberRefs(r, r.addMember)
}

func (r *Role) analyse(d *Dataset) {
	if len(r.members) == 0 {
		d.ledger.Report(r, domain.NoMembers, "Role")
		return
	}

	unused, hasUnused := d.policy.Int("roles", "login", "unused")
	configured := d.policy.Get("roles", "role", r.name) != nil

	for _, m := range r.members {
		r.checkMember(d, m, unused, hasUnused)
		if configured {
			r.checkPermissions(d, m)
		}
	}
}

func (r *Role) checkMember(d *Dataset, m *Member, unused int, hasUnused bool) {
	if !m.IsActive() {
		d.ledger.Report(m, domain.Inactive, fmt.Sprintf("Member of role %s (fixable)", r.name))
		d.stageMemberRemoval(r, m, "Delete from role "+r.name)
	}

	if m.Username() == "" {
		d.ledger.Report(m, domain.NoLogin, fmt.Sprintf("Member of role %s, so cannot login", r.name))
	}

	if d.policy.IsTrue("roles", "role", r.name, "is_coach") && !m.isCoach() {
		d.ledger.Report(m, domain.CoachRole, "Role: "+r.name)
	}

	if d.policy.IsTrue("roles", "volunteer", "mandatory") && !m.isVolunteer() {
		d.ledger.Report(m, domain.NotVolunteer, fmt.Sprintf("Role: %s (fixable)", r.name))
		d.fixes.Stage(m, domain.Record{domain.KeyIsAVolunteer: "1"}, "Mark as volunteer")
	}

	if m.hasLastLogin {
		if hasUnused && d.clock.DaysSince(m.lastLogin) > unused {
			detail := fmt.Sprintf("Role: %s [Last login: %s]", r.name, m.lastLogin.Format(domain.PrintDateFormat))
			d.ledger.Report(m, domain.UnusedLogin, detail)
		}
	} else {
		d.ledger.Report(m, domain.UnusedLogin, fmt.Sprintf("Role: %s [Never]", r.name))
	}
}

func (r *Role) checkPermissions(d *Dataset, m *Member) {
	if d.policy.IsTrue("roles", "role", r.name, "check_permissions") {
		checkCoachPermissions(d, m, r)
	}
	if d.policy.IsTrue("roles", "role", r.name, "check_restrictions") && len(m.restricted) == 0 {
		d.ledger.Report(m, domain.NoRestrictions, "Role: "+r.name)
	}
}
