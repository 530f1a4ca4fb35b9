package core

import (
	"testing"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

const rolePolicy = `
club: "Test SC"
allow_update: true
roles:
  volunteer:
    mandatory: true
  login:
    unused: 90
  role:
    'Coaches':
      check_permissions: true
`

func roleFixture() map[string][]domain.Record {
	data := fixtureData()
	data[ResourceMembers][1][domain.KeyUsername] = "alex"
	data[ResourceMembers][1][domain.KeyIsAVolunteer] = "1"
	data[ResourceMembers][1][domain.KeyLastLoggedIn] = "2024-05-25"
	data[ResourceMembers][2][domain.KeyUsername] = "chris"
	data[ResourceMembers][2][domain.KeyIsAVolunteer] = "1"
	data[ResourceMembers][2][domain.KeyLastLoggedIn] = "2024-05-25"
	data[ResourceRoles] = []domain.Record{{
		domain.KeyGUID:     "r1",
		domain.KeyRoleName: "Coaches",
		domain.KeyMembers:  refList("m2", "c1"),
	}}
	return data
}

func TestRoleChecksMembers(t *testing.T) {
	policy := testPolicy(t, rolePolicy)
	data := roleFixture()
	// Strip the adult's login again so every login rule fires on them.
	delete(data[ResourceMembers][1], domain.KeyUsername)
	delete(data[ResourceMembers][1], domain.KeyIsAVolunteer)
	delete(data[ResourceMembers][1], domain.KeyLastLoggedIn)

	ft := &fakeTransport{data: data}
	d := loadDataset(t, policy, ft)
	d.Analyse()

	if got := issueCount(d.ledger, domain.NoLogin); got != 1 {
		t.Fatalf("NoLogin issues = %d, want 1", got)
	}
	if got := issueCount(d.ledger, domain.NotVolunteer); got != 1 {
		t.Fatalf("NotVolunteer issues = %d, want 1", got)
	}
	if got := issueCount(d.ledger, domain.UnusedLogin); got != 1 {
		t.Fatalf("UnusedLogin issues = %d, want 1", got)
	}

	m, _ := d.members.ByGUID("m2")
	patch := m.pending()
	if patch == nil || patch.Fields.Str(domain.KeyIsAVolunteer) != "1" {
		t.Fatalf("volunteer flag not staged: %v", patch)
	}
}

func TestRolePermissionCheck(t *testing.T) {
	policy := testPolicy(t, rolePolicy)
	ft := &fakeTransport{data: roleFixture()}
	d := loadDataset(t, policy, ft)
	d.Analyse()

	// The swimmer in the coach role lacks the coach box.
	if got := issueCount(d.ledger, domain.NotACoach); got != 1 {
		t.Fatalf("NotACoach issues = %d, want 1", got)
	}
	m, _ := d.members.ByGUID("m2")
	patch := m.pending()
	if patch == nil || patch.Fields.Str(domain.KeyIsACoach) != "1" {
		t.Fatalf("coach flag not staged: %v", patch)
	}

	// The real coach takes a session they have no restriction entry for.
	if got := issueCount(d.ledger, domain.PermissionMissing); got != 1 {
		t.Fatalf("PermissionMissing issues = %d, want 1", got)
	}
	c, _ := d.members.ByGUID("c1")
	if !c.inCoachRole {
		t.Fatalf("coach role membership flag not set")
	}
}

func TestRoleEmptyReported(t *testing.T) {
	policy := testPolicy(t, basePolicy)
	data := fixtureData()
	data[ResourceRoles] = []domain.Record{{
		domain.KeyGUID:     "r1",
		domain.KeyRoleName: "Register Takers",
		domain.KeyMembers:  refList(),
	}}

	ft := &fakeTransport{data: data}
	d := loadDataset(t, policy, ft)
	d.Analyse()

	if got := issueCount(d.ledger, domain.NoMembers); got != 1 {
		t.Fatalf("NoMembers issues = %d, want 1", got)
	}
}
