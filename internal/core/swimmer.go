package core

import (
	"fmt"
	"strings"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// analyseSwimmer runs the swimmer-specific rules. Water polo and synchro
// members go through the same checks, with the parent checks switchable
// off per type.
func analyseSwimmer(d *Dataset, m *Member) {
	if m.ignoreGroup || m.ignoreSwimmer {
		return
	}

	if len(m.groups) == 0 && !m.suppressed(config.ExceptionNoGroups) {
		d.ledger.Report(m, domain.NoGroup, "")
	}
	if !m.hasDOB {
		d.ledger.Report(m, domain.NoDOB, "")
	}
	if m.Gender() == "" {
		d.ledger.Report(m, domain.NoGender, "")
	}
	if !m.hasJoined {
		d.ledger.Report(m, domain.NoDateJoined, "")
	}

	checkSENumber(d, m)
	checkLastSeen(d, m)
	checkTwoGroups(d, m)
	checkLogin(d, m)

	if m.isSwimmer() {
		checkParents(d, m)
		return
	}
	if m.isSynchro() && !d.policy.IsFalse("types", "synchro", "parents") {
		checkParents(d, m)
		return
	}
	if m.isPolo() && !d.policy.IsFalse("types", "waterpolo", "parents") {
		checkParents(d, m)
	}
}

// checkSENumber flags a missing Swim England registration, unless the
// member is only a polo or synchro member and the type is configured not
// to need one.
func checkSENumber(d *Dataset, m *Member) {
	if m.ASANumber() != "" {
		return
	}
	if m.isPolo() && d.policy.IsFalse("types", "waterpolo", "check_se_number") {
		return
	}
	if m.isSynchro() && d.policy.IsFalse("types", "synchro", "check_se_number") {
		return
	}
	d.ledger.Report(m, domain.NoSENumber, "")
}

func checkLastSeen(d *Dataset, m *Member) {
	if !m.hasLastSeen {
		if len(m.sessions) == 0 {
			return
		}
		for _, s := range m.sessions {
			if s.ignoreAttendance {
				return
			}
		}
		d.ledger.Report(m, domain.NeverSeen, "")
		return
	}

	absence := d.policy.IntOr(absenceUnset, "swimmers", "absence", "time")
	if d.clock.DaysSince(m.lastSeen) > absence {
		d.ledger.Report(m, domain.Absent, "Last seen: "+m.lastSeen.Format(domain.PrintDateFormat))
	}
}

func checkLogin(d *Dataset, m *Member) {
	if m.Username() == "" {
		return
	}
	minAge, ok := d.policy.Int("swimmers", "username", "min_age")
	if !ok {
		return
	}
	if age, haveAge := m.Age(); haveAge && age < minAge {
		d.ledger.Report(m, domain.LoginTooYoung, fmt.Sprintf("Age: %d", age))
	}
}

// checkTwoGroups flags a swimmer in more than one exclusive group.
// Groups marked no_club_sessions or not unique do not count.
func checkTwoGroups(d *Dataset, m *Member) {
	if d.policy.Get("groups", "group") == nil {
		return
	}

	count := 0
	var names []string
	for _, g := range m.groups {
		if d.policy.IsTrue("groups", "group", g.name, "no_club_sessions") {
			continue
		}
		unique := true
		if d.policy.Get("groups", "group", g.name, "unique") != nil {
			unique = d.policy.IsTrue("groups", "group", g.name, "unique")
		}
		if unique {
			count++
			names = append(names, g.name)
		}
	}

	if count > 1 && !m.suppressed(config.ExceptionTwoGroups) {
		d.ledger.Report(m, domain.TwoGroups, strings.Join(names, ", "))
	}
}

// checkParents cross-references a swimmer against their linked parents:
// the parents must be active, share an email address with the swimmer
// and have confirmed their details in the same quarter.
func checkParents(d *Dataset, m *Member) {
	match := false
	count := 0

	confirmVerify := d.policy.IsTrue("swimmers", "confirmation_difference", "verify")
	maxAge, hasMaxAge := d.policy.Int("swimmers", "parent", "max_age")

	var emails []string
	if m.Email() != "" {
		emails = strings.Split(m.Email(), ";")
	}

	for _, p := range m.parents {
		count++
		if !p.IsActive() {
			d.ledger.Report(p, domain.Inactive, "Swimmer "+m.Name())
		}
		if !match {
			match = sharedEmail(emails, p)
		}
		if confirmVerify && confirmationDiffers(d, m, p, maxAge) {
			d.ledger.Report(m, domain.ConfirmDiff, "Parent "+p.Name())
		}
	}

	age, haveAge := m.Age()

	if len(m.parents) > 0 && haveAge && !match && hasMaxAge && age <= maxAge {
		if !m.suppressed(config.ExceptionEmailDiff) {
			d.ledger.Report(m, domain.EmailMatch, fmt.Sprintf("%s - %s", m.Email(), m.parents[0].Email()))
		}
	}

	if count == 0 {
		if d.policy.IsTrue("swimmers", "parent", "mandatory") && hasMaxAge {
			if haveAge && age <= maxAge {
				d.ledger.Report(m, domain.NoParent, fmt.Sprintf("%s, Age: %d", m.firstGroupName(), age))
			}
		}
	}

	if count > 2 {
		d.ledger.Report(m, domain.TooManyParents, "")
	}
}

// sharedEmail reports whether the swimmer and parent have an email
// address in common. Addresses are semicolon-separated lists; a parent
// with no address cannot mismatch.
func sharedEmail(emails []string, p *Member) bool {
	if p.Email() == "" {
		return true
	}
	pemails := strings.Split(p.Email(), ";")
	for _, e := range emails {
		for _, pe := range pemails {
			if e == pe {
				return true
			}
		}
	}
	return false
}

// confirmationDiffers reports whether swimmer and parent confirmed their
// details in different quarters. When the dates differ but the contact
// attributes all match, the later date is propagated to the parent
// instead so one confirmation covers the family.
func confirmationDiffers(d *Dataset, m, p *Member, maxAge int) bool {
	childQ := 0
	parentQ := 0
	if m.hasConfirmed {
		childQ = int((int(m.confirmed.Month())-1)/3) * 3
	}
	if p.hasConfirmed {
		parentQ = int((int(p.confirmed.Month())-1)/3) * 3
	}

	if age, ok := m.Age(); ok && age > maxAge {
		return false
	}

	if childQ == parentQ {
		return false
	}

	d.ledger.Debugf(8, "Different confirmed dates %s, %s - checking other details for consistency", m.Name(), p.Name())

	if m.Email() != p.Email() {
		return true
	}
	if m.HomePhone() != p.HomePhone() {
		return true
	}
	if m.MobilePhone() != p.MobilePhone() {
		return true
	}
	if m.Address() != p.Address() {
		return true
	}

	if !p.hasConfirmed {
		p.setConfirmed(m.confirmed)
		return false
	}
	if m.hasConfirmed && m.confirmed.After(p.confirmed) {
		p.setConfirmed(m.confirmed)
	}
	return false
}
