package core

import (
	"context"
	"strings"
	"testing"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

const listPolicy = `
club: "Test SC"
allow_update: true
groups:
  group:
    'Masters':
      min_age: 18
lists:
  suffix: " (Generated)"
  edit: true
  confirmation: false
  list:
    'Juniors':
      group: 'Masters'
      max_age: 16
`

func TestUpdateListsPopulatesFromCriteria(t *testing.T) {
	policy := testPolicy(t, listPolicy)
	ft := &fakeTransport{data: fixtureData()}
	d := loadDataset(t, policy, ft)

	d.UpdateLists(context.Background(), ft)

	if len(ft.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(ft.writes))
	}
	w := ft.writes[0]
	if w.resource != ResourceLists {
		t.Fatalf("write resource = %q", w.resource)
	}
	if !w.create {
		t.Fatalf("new list should be created, not updated")
	}
	if got := w.rec.Str(domain.KeyListName); got != "Juniors (Generated)" {
		t.Fatalf("list name = %q", got)
	}
	refs := w.rec.RefRecords(domain.KeyMembers)
	if len(refs) != 1 || refs[0].Str(domain.KeyGUID) != "m1" {
		t.Fatalf("list members = %v", refs)
	}
}

func TestUpdateListsReusesExistingList(t *testing.T) {
	policy := testPolicy(t, listPolicy)
	data := fixtureData()
	data[ResourceLists] = []domain.Record{{
		domain.KeyGUID:     "l1",
		domain.KeyListName: "Juniors (Generated)",
		domain.KeyMembers:  refList(),
	}}
	ft := &fakeTransport{data: data}
	d := loadDataset(t, policy, ft)

	d.UpdateLists(context.Background(), ft)

	if len(ft.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(ft.writes))
	}
	w := ft.writes[0]
	if w.create {
		t.Fatalf("existing list should be updated in place")
	}
	if got := w.rec.Str(domain.KeyGUID); got != "l1" {
		t.Fatalf("reused list GUID = %q", got)
	}
}

func TestUpdateListsProhibited(t *testing.T) {
	policy := testPolicy(t, basePolicy)
	ft := &fakeTransport{data: fixtureData()}

	var out strings.Builder
	d := NewDataset(policy, testClock, WriterNotifier{W: &out})
	if err := d.Load(context.Background(), ft); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := d.Link(); err != nil {
		t.Fatalf("link: %v", err)
	}

	d.UpdateLists(context.Background(), ft)

	if len(ft.writes) != 0 {
		t.Fatalf("prohibited list update wrote upstream")
	}
	if !strings.Contains(out.String(), "List update prohibited by config.\n") {
		t.Fatalf("missing prohibition notice: %q", out.String())
	}
}

func TestFeedListAccumulates(t *testing.T) {
	policy := testPolicy(t, basePolicy)
	ft := &fakeTransport{data: fixtureData()}
	d := loadDataset(t, policy, ft)

	m1, _ := d.members.ByGUID("m1")
	m2, _ := d.members.ByGUID("m2")
	d.feedList("Not confirmed (Swimmer)", m1)
	d.feedList("Not confirmed (Swimmer)", m2)
	d.feedList("Not confirmed (Parent)", m1)

	if len(d.newLists) != 2 {
		t.Fatalf("generated lists = %d, want 2", len(d.newLists))
	}
	if got := len(d.newLists[0].guids); got != 2 {
		t.Fatalf("first list members = %d, want 2", got)
	}
}
