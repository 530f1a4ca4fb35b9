package core

import (
	"testing"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

const conductPolicy = `
club: "Test SC"
allow_update: true
conduct:
  'Swimmers Code':
    types:
      - 'swimmer'
lists:
  suffix: " (Generated)"
  edit: false
  confirmation: false
  conduct:
    - 'Swimmers Code'
`

func conductFixture() map[string][]domain.Record {
	data := fixtureData()
	data[ResourceConduct] = []domain.Record{{
		domain.KeyGUID:  "cc1",
		domain.KeyTitle: "Swimmers Code",
		domain.KeyMembers: []any{
			map[string]any{domain.KeyGUID: "m1"},
		},
	}}
	return data
}

func TestConductUnsignedMembers(t *testing.T) {
	policy := testPolicy(t, conductPolicy)
	ft := &fakeTransport{data: conductFixture()}
	d := loadDataset(t, policy, ft)
	d.Analyse()

	// The junior appears against the code without a signing date.
	if got := issueCount(d.ledger, domain.NoConductDate); got != 1 {
		t.Fatalf("NoConductDate issues = %d, want 1", got)
	}

	// The adult swimmer is not against the code at all.
	if got := issueCount(d.ledger, domain.NoConduct); got != 1 {
		t.Fatalf("NoConduct issues = %d, want 1", got)
	}

	if len(d.newLists) != 1 || d.newLists[0].name != "Swimmers Code missing" {
		t.Fatalf("missing-signature list not fed: %v", d.newLists)
	}
}

func TestConductSignedMemberClean(t *testing.T) {
	policy := testPolicy(t, conductPolicy)
	data := conductFixture()
	data[ResourceConduct][0][domain.KeyMembers] = []any{
		map[string]any{domain.KeyGUID: "m1", domain.KeyDateAgreed: "2024-01-01"},
		map[string]any{domain.KeyGUID: "m2", domain.KeyDateAgreed: "2024-01-01"},
	}

	ft := &fakeTransport{data: data}
	d := loadDataset(t, policy, ft)
	d.Analyse()

	if got := issueCount(d.ledger, domain.NoConductDate); got != 0 {
		t.Fatalf("NoConductDate issues = %d, want 0", got)
	}
	if got := issueCount(d.ledger, domain.NoConduct); got != 0 {
		t.Fatalf("NoConduct issues = %d, want 0", got)
	}
}
