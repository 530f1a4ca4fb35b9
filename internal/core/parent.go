package core

import (
	"fmt"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// analyseParent checks a member with the parent box ticked: they need at
// least one active child, must be of plausible parental age, and their
// children must not be past the age of needing a parent record.
func analyseParent(d *Dataset, m *Member) {
	active := false
	inactive := ""

	for _, s := range m.swimmers {
		if s.IsActive() {
			active = true
		} else {
			inactive = s.Name()
		}
	}

	if !active {
		if inactive == "" {
			d.ledger.Report(m, domain.NoChild, "(fixable)")
			d.fixes.Stage(m, domain.Record{domain.KeyIsAParent: "0"}, "Remove 'is parent'")
		} else {
			d.ledger.Report(m, domain.Inactive, "child "+inactive)
		}
	}

	if minAge, ok := d.policy.Int("parents", "age", "min_age"); ok {
		if age, haveAge := m.Age(); haveAge && age < minAge {
			d.ledger.Report(m, domain.ParentTooYoung, "")
		}
	}

	if childMax, ok := d.policy.Int("parents", "age", "child"); ok {
		for _, s := range m.swimmers {
			if age, haveAge := s.Age(); active && haveAge && age >= childMax {
				d.ledger.Report(s, domain.ChildTooOld, fmt.Sprintf("%d, %s", age, m.Name()))
			}
		}
	}

	if d.policy.IsTrue("parents", "login", "mandatory") && m.Username() == "" {
		d.ledger.Report(m, domain.NoLogin, "Parent (fixable)")
		d.fixes.Stage(m, domain.Record{domain.KeyUsername: m.Email()}, "Create login")
	}
}
