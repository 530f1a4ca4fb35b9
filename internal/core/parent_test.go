package core

import (
	"testing"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

const parentPolicy = `
club: "Test SC"
allow_update: true
parents:
  age:
    min_age: 17
    child: 21
  login:
    mandatory: true
`

func TestParentWithoutChildren(t *testing.T) {
	policy := testPolicy(t, parentPolicy)
	data := fixtureData()

	childless := activeMember("p2", "Lee", "Lonely", "1980-01-01")
	childless[domain.KeyIsAParent] = "1"
	childless[domain.KeyUsername] = "lee"
	data[ResourceMembers] = append(data[ResourceMembers], childless)

	ft := &fakeTransport{data: data}
	d := loadDataset(t, policy, ft)
	d.Analyse()

	if got := issueCount(d.ledger, domain.NoChild); got != 1 {
		t.Fatalf("NoChild issues = %d, want 1", got)
	}
	p, _ := d.members.ByGUID("p2")
	patch := p.pending()
	if patch == nil || patch.Fields.Str(domain.KeyIsAParent) != "0" {
		t.Fatalf("parent flag removal not staged: %v", patch)
	}
}

func TestParentWithOnlyInactiveChild(t *testing.T) {
	policy := testPolicy(t, parentPolicy)
	data := fixtureData()

	gone := activeMember("m4", "Gone", "Away", "2010-01-01")
	gone[domain.KeyActive] = "0"
	data[ResourceMembers] = append(data[ResourceMembers], gone)

	parent := activeMember("p3", "Sam", "Away", "1982-01-01")
	parent[domain.KeyIsAParent] = "1"
	parent[domain.KeyUsername] = "sam"
	parent[domain.KeySwimmers] = refList("m4")
	data[ResourceMembers] = append(data[ResourceMembers], parent)

	ft := &fakeTransport{data: data}
	d := loadDataset(t, policy, ft)
	d.Analyse()

	if got := issueCount(d.ledger, domain.Inactive); got != 1 {
		t.Fatalf("Inactive issues = %d, want 1", got)
	}
	if got := issueCount(d.ledger, domain.NoChild); got != 0 {
		t.Fatalf("NoChild issues = %d, want 0 for an inactive child", got)
	}
}

func TestParentChildTooOld(t *testing.T) {
	policy := testPolicy(t, parentPolicy)
	data := fixtureData()

	grown := activeMember("m5", "Gale", "Grown", "1998-06-15")
	grown[domain.KeyIsASwimmer] = "1"
	grown[domain.KeyParents] = refList("p1")
	data[ResourceMembers] = append(data[ResourceMembers], grown)
	data[ResourceMembers][3][domain.KeySwimmers] = refList("m1", "m5")
	data[ResourceMembers][3][domain.KeyUsername] = "pat"

	ft := &fakeTransport{data: data}
	d := loadDataset(t, policy, ft)
	d.Analyse()

	if got := issueCount(d.ledger, domain.ChildTooOld); got != 1 {
		t.Fatalf("ChildTooOld issues = %d, want 1", got)
	}
}

func TestParentLoginMandatory(t *testing.T) {
	policy := testPolicy(t, parentPolicy)
	ft := &fakeTransport{data: fixtureData()}
	d := loadDataset(t, policy, ft)
	d.Analyse()

	// The fixture parent has no username.
	if got := issueCount(d.ledger, domain.NoLogin); got != 1 {
		t.Fatalf("NoLogin issues = %d, want 1", got)
	}
	p, _ := d.members.ByGUID("p1")
	patch := p.pending()
	if patch == nil || patch.Fields.Str(domain.KeyUsername) != "jamie@example.com" {
		t.Fatalf("login creation not staged: %v", patch)
	}
}
