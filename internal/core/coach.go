package core

import (
	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// analyseCoach checks a member with the coach box ticked. The coach-role
// membership flag is set earlier by the role permission checks, which
// run before member analysis.
func analyseCoach(d *Dataset, m *Member) {
	if !m.inCoachRole && d.policy.IsTrue("coaches", "role", "mandatory") {
		d.ledger.Report(m, domain.NoCoachRole, "")
	}

	if len(m.coachSessions) == 0 && !m.suppressed(config.ExceptionNoSessions) {
		d.ledger.Report(m, domain.NoSessions, "")
	}

	m.checkDBS(d, "Coach")
}

// checkCoachPermissions cross-references the sessions a member coaches
// against their session restrictions, in both directions.
func checkCoachPermissions(d *Dataset, m *Member, r *Role) {
	d.ledger.Debugf(7, "Permission check: %s, %s", m.Name(), r.Name())

	if !m.isCoach() {
		d.ledger.Report(m, domain.NotACoach, "Role: "+r.Name()+" (fixable)")
		d.fixes.Stage(m, domain.Record{domain.KeyIsACoach: "1"}, "Add 'Is a coach'")
	}

	m.inCoachRole = true

	if !m.isSwimmer() && len(m.sessions) > 0 {
		d.ledger.Report(m, domain.CoachWithSessions, "Role: "+r.Name())
	}

	if m.suppressed(config.ExceptionPermissions) {
		return
	}

	for _, s := range m.coachSessions {
		match := false
		for _, p := range m.restricted {
			if s == p {
				match = true
				break
			}
		}
		if !match {
			d.ledger.Report(m, domain.PermissionMissing, s.FullName())
		}
	}

	for _, p := range m.restricted {
		match := false
		for _, s := range m.coachSessions {
			if s == p {
				match = true
				break
			}
		}
		if !match {
			d.ledger.Report(m, domain.PermissionExtra, p.FullName())
		}
	}
}
