package core

import (
	"fmt"
	"time"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// absenceUnset marks an unconfigured attendance threshold, disabling the
// related checks.
const absenceUnset = 9999

// Session is a scheduled training slot with its registered swimmers and
// assigned coaches.
type Session struct {
	entity

	coaches []*Member

	ignoreAttendance bool
}

func newSession(rec domain.Record, policy *config.Policy) *Session {
	s := &Session{entity: newEntity(rec, ResourceSessions, domain.KeySessionName)}
	s.ignoreAttendance = policy.IsTrue("sessions", "session", s.name, "ignore_attendance")
	return s
}

// FullName qualifies the session name with its schedule and location.
func (s *Session) FullName() string {
	return fmt.Sprintf("%s, %s, %s, %s",
		s.name,
		s.raw.Str(domain.KeyWeekDay),
		s.raw.Str(domain.KeySessionLocation),
		s.raw.Str(domain.KeyStartTime))
}

// IsActive reports whether the session is unarchived. The upstream
// encodes this as the number zero in the Archived attribute.
func (s *Session) IsActive() bool {
	v, ok := s.raw.Int(domain.KeyArchived)
	return ok && v == 0
}

func (s *Session) maxMembers() int {
	if v, ok := s.raw.Int(domain.KeyMaxMembers); ok {
		return v
	}
	return absenceUnset
}

func (s *Session) link(d *Dataset) {
	if !s.IsActive() {
		return
	}

	d.linkMemberRefs(s, s.addMember)

	coachRefs := s.raw.RefRecords(domain.KeyCoaches)
	if len(coachRefs) == 0 {
		d.ledger.Report(s, domain.NoCoach, "")
	}
	for _, ref := range coachRefs {
		guid := ref.Str(domain.KeyGUID)
		m, ok := d.members.ByGUID(guid)
		if !ok {
			d.ledger.Debugf(7, "GUID %s missing in list - email address only?", guid)
			continue
		}
		if m.IsActive() {
			s.coaches = append(s.coaches, m)
			m.addCoachSession(s)
		} else if !s.ignoreAttendance {
			d.ledger.Report(s, domain.Inactive, "(Coach)")
		}
		if when, ok := ref.Date(domain.KeyLastAttended); ok {
			m.setLastSeen(when)
		}
	}

	for _, ref := range s.raw.RefRecords(domain.KeyMembers) {
		m, ok := d.members.ByGUID(ref.Str(domain.KeyGUID))
		if !ok {
			continue
		}
		m.addSession(s)
		if when, ok := ref.Date(domain.KeyLastAttended); ok {
			m.setLastSeen(when)
		}
	}
}

func (s *Session) analyse(d *Dataset) {
	if !s.IsActive() {
		return
	}

	if len(s.members) == 0 {
		d.ledger.Report(s, domain.NoMembers, "Session")
		return
	}

	absence := d.policy.IntOr(absenceUnset, "sessions", "absence")
	register := d.policy.IntOr(absenceUnset, "sessions", "register")
	groups := d.policy.StrList("sessions", "session", s.name, "groups")

	var seen time.Time
	haveSeen := false
	count := 0

	for _, ref := range s.raw.RefRecords(domain.KeyMembers) {
		m, ok := d.members.ByGUID(ref.Str(domain.KeyGUID))
		if !ok {
			continue
		}
		count++

		if m.newStarter() {
			continue
		}

		if len(groups) > 0 {
			found := false
			for _, name := range groups {
				if m.findGroup(name) {
					found = true
					break
				}
			}
			if !found {
				d.ledger.ReportLevel(m, domain.NotInGroup, s.FullName(), domain.LevelNormal, m.groupNames())
			}
		}

		if s.ignoreAttendance {
			continue
		}
		if when, ok := ref.Date(domain.KeyLastAttended); ok {
			if d.clock.DaysSince(when) > absence {
				extra := "Last seen: " + when.Format(domain.PrintDateFormat)
				d.ledger.ReportLevel(m, domain.NotAttended, s.FullName(), domain.LevelNormal, extra)
			}
			if !haveSeen || when.After(seen) {
				seen = when
				haveSeen = true
			}
		} else if absence != absenceUnset {
			d.ledger.Report(m, domain.NeverAttended, s.FullName())
		}
	}

	if count > s.maxMembers() {
		d.ledger.Report(s, domain.TooManyMembers, fmt.Sprintf("%d > %d", count, s.maxMembers()))
	}

	if !s.ignoreAttendance && register != absenceUnset {
		msg := "Never"
		if haveSeen {
			if d.clock.DaysSince(seen) <= register {
				return
			}
			msg = seen.Format(domain.PrintDateFormat)
		}
		d.ledger.Report(s, domain.NoRegister, fmt.Sprintf("last taken: %s (%s)", msg, s.FullName()))
	}
}
