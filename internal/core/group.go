package core

import (
	"fmt"
	"time"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// cutoffDateFormat is the format group confirmation cutoffs use in the
// configuration file.
const cutoffDateFormat = "02/01/2006"

// Group is a training squad or other member grouping.
type Group struct {
	entity
}

func newGroup(rec domain.Record) *Group {
	return &Group{entity: newEntity(rec, ResourceGroups, domain.KeyGroupName)}
}

func (g *Group) cfg(item ...string) []string {
	path := append([]string{"groups", "group", g.name}, item...)
	return path
}

func (g *Group) link(d *Dataset) {
	d.linkMemberRefs(g, g.addMember)

	noSession := d.policy.IsTrue(g.cfg("no_club_sessions")...)
	ignoreGroup := d.policy.IsTrue(g.cfg("ignore_group")...)
	ignoreSwimmer := d.policy.IsTrue(g.cfg("ignore_swimmer")...)

	for _, m := range g.members {
		m.addGroup(g)
		if noSession {
			m.noSessionOK = true
		}
		if ignoreSwimmer {
			m.ignoreSwimmer = true
		}
		if ignoreGroup {
			m.ignoreGroup = true
		}
	}
}

func (g *Group) analyse(d *Dataset) {
	if d.policy.IsTrue(g.cfg("ignore_group")...) {
		d.ledger.Debugf(7, "Ignoring group %s", g.name)
		return
	}

	if len(g.members) == 0 {
		d.ledger.Report(g, domain.NoMembers, "Group")
		return
	}

	if d.policy.IsTrue(g.cfg("no_sessions")...) {
		for _, m := range g.members {
			if len(m.sessions) > 0 {
				detail := fmt.Sprintf("Group: %s, Session: %s", g.name, m.sessions[0].name)
				d.ledger.Report(m, domain.UnexpectedSessions, detail)
			}
		}
	}

	var cutoff time.Time
	hasCutoff := false
	if s := d.policy.Str(g.cfg("confirmation")...); s != "" {
		t, err := time.Parse(cutoffDateFormat, s)
		if err != nil {
			d.notifier.Notify(fmt.Sprintf("*** Error in date format in config file for groups config: %s ***\n", s))
		} else {
			cutoff = t
			hasCutoff = true
		}
	}

	checkDBS := d.policy.IsTrue(g.cfg("check_dbs")...)
	wanted := d.policy.StrList(g.cfg("sessions")...)
	allowed := d.policy.StrList(g.cfg("no_session_allowed")...)
	wantType := domain.MemberType(d.policy.Str(g.cfg("type")...))

	for _, m := range g.members {
		g.checkAge(d, m)
		if checkDBS {
			m.checkDBS(d, g.name)
		}

		if hasCutoff {
			expired := true
			if m.hasConfirmed && days(m.confirmed, cutoff) < 0 {
				expired = false
			}
			if expired {
				d.ledger.Report(m, domain.ConfirmExpired, "Group: "+g.name)
				d.feedList("Confirmation Expired for Group: "+m.Name(), m)
			}
		}

		if m.newStarter() {
			continue
		}

		if len(wanted) > 0 && !memberInSession(m, wanted[0], allowed) {
			if !m.suppressed(config.ExceptionNonSwimmingMaster) && !m.suppressed(config.ExceptionGroupNoSession) {
				d.ledger.Report(m, domain.NotInSession, "Group: "+g.name)
			}
		}

		if wantType != "" && !m.isType(wantType) {
			// Swimmer groups tolerate coaches; other typed groups
			// report nothing for a mismatch.
			if wantType == domain.TypeSwimmer && !m.isType(domain.TypeCoach) {
				detail := fmt.Sprintf("Group: %s, Type required: %s", g.name, wantType)
				d.ledger.Report(m, domain.WrongType, detail)
			}
		}
	}
}

func (g *Group) checkAge(d *Dataset, m *Member) {
	minAge, okMin := d.policy.Int(g.cfg("min_age")...)
	maxAge, okMax := d.policy.Int(g.cfg("max_age")...)
	if !okMin && !okMax {
		return
	}
	if !okMin {
		minAge = 3
	}
	if !okMax {
		maxAge = 100
	}
	m.checkAgeRange(d, minAge, maxAge, g.name)
}

// memberInSession reports whether a group member satisfies the group's
// required-session rule. Members of an allowed alternative group, coaches
// and members of a no-sessions group all pass.
func memberInSession(m *Member, wanted string, allowed []string) bool {
	in := m.findSessionSubstr(wanted)
	if !in {
		for _, alt := range allowed {
			if m.findGroup(alt) {
				in = true
				break
			}
		}
	}
	if !in {
		return m.noSessionOK || m.isCoach()
	}
	return true
}

func days(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
