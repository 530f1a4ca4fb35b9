package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// fakeTransport serves fixture collections and records writes.
type fakeTransport struct {
	data   map[string][]domain.Record
	writes []fakeWrite
	fail   bool
}

type fakeWrite struct {
	resource string
	rec      domain.Record
	create   bool
}

func (f *fakeTransport) Read(_ context.Context, resource string, page int) ([]domain.Record, error) {
	if guid, ok := strings.CutPrefix(resource, ResourceConduct+"/"); ok {
		for _, rec := range f.data[ResourceConduct] {
			if rec.Str(domain.KeyGUID) == guid {
				return []domain.Record{rec}, nil
			}
		}
		return nil, ErrNotFound
	}
	recs, ok := f.data[resource]
	if !ok {
		return nil, ErrNotFound
	}
	if page > 1 {
		return nil, nil
	}
	return recs, nil
}

func (f *fakeTransport) Write(_ context.Context, resource string, rec domain.Record, create bool) error {
	if f.fail {
		return context.DeadlineExceeded
	}
	f.writes = append(f.writes, fakeWrite{resource, rec, create})
	return nil
}

func testPolicy(t *testing.T, doc string) *config.Policy {
	t.Helper()
	p, err := config.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse policy: %v", err)
	}
	return p
}

const basePolicy = `
club: "Test SC"
allow_update: true
swimmers:
  username:
    min_age: 17
  parent:
    mandatory: true
    max_age: 17
  confirmation_difference:
    verify: true
  absence:
    time: 182
members:
  confirmation:
    expiry: 365
  dbs:
    expiry: 60
  newstarter:
    grace: 90
  inactive:
    time: 365
groups:
  group:
    'Masters':
      min_age: 18
      sessions:
        - 'Masters'
sessions:
  absence: 120
  register: 60
lists:
  suffix: " (Generated)"
  edit: false
  confirmation: false
`

var testClock = domain.NewClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

func activeMember(guid, first, last, dob string) domain.Record {
	return domain.Record{
		domain.KeyGUID:          guid,
		domain.KeyFirstname:     first,
		domain.KeyLastname:      last,
		domain.KeyActive:        "1",
		domain.KeyDOB:           dob,
		domain.KeyGender:        "M",
		domain.KeyDateJoined:    "2015-01-01",
		domain.KeyConfirmedDate: "2024-05-01",
		domain.KeyEmail:         strings.ToLower(first) + "@example.com",
		domain.KeyASANumber:     "A" + guid,
	}
}

func refList(guids ...string) []any {
	out := make([]any, 0, len(guids))
	for _, g := range guids {
		out = append(out, map[string]any{domain.KeyGUID: g})
	}
	return out
}

func attendedRef(guid, lastAttended string) map[string]any {
	return map[string]any{domain.KeyGUID: guid, domain.KeyLastAttended: lastAttended}
}

// loadDataset runs the load and link passes over the fixture data.
func loadDataset(t *testing.T, policy *config.Policy, ft *fakeTransport) *Dataset {
	t.Helper()
	d := NewDataset(policy, testClock, NopNotifier{})
	if err := d.Load(context.Background(), ft); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := d.Link(); err != nil {
		t.Fatalf("link: %v", err)
	}
	return d
}

// issueCount tallies recorded issues of one kind.
func issueCount(l *Ledger, kind *domain.Kind) int {
	n := 0
	for _, inner := range l.byKind {
		for _, entries := range inner {
			for _, e := range entries {
				if e.kind == kind {
					n++
				}
			}
		}
	}
	return n
}

// fixtureData builds the standard fixture: the Masters group with a
// junior mistakenly in it, a healthy adult, a coach with valid DBS, and
// the junior's parent.
func fixtureData() map[string][]domain.Record {
	junior := activeMember("m1", "Jamie", "Young", "2009-06-15")
	junior[domain.KeyIsASwimmer] = "1"
	junior[domain.KeyUsername] = "jamie"
	junior[domain.KeyParents] = refList("p1")

	adult := activeMember("m2", "Alex", "Strong", "1994-01-01")
	adult[domain.KeyIsASwimmer] = "1"

	coach := activeMember("c1", "Chris", "Poole", "1980-01-01")
	coach[domain.KeyIsACoach] = "1"
	coach[domain.KeyDBSRenewal] = "2030-01-01"
	coach[domain.KeySafeguardRenewal] = "2030-01-01"

	parent := activeMember("p1", "Pat", "Young", "1984-01-01")
	parent[domain.KeyIsAParent] = "1"
	parent[domain.KeyEmail] = "jamie@example.com"
	parent[domain.KeySwimmers] = refList("m1")

	return map[string][]domain.Record{
		ResourceMembers: {junior, adult, coach, parent},
		ResourceGroups: {{
			domain.KeyGUID:      "g1",
			domain.KeyGroupName: "Masters",
			domain.KeyMembers:   refList("m1", "m2"),
		}},
		ResourceSessions: {{
			domain.KeyGUID:            "s1",
			domain.KeySessionName:     "Masters Monday",
			domain.KeyArchived:        0,
			domain.KeyWeekDay:         "Monday",
			domain.KeySessionLocation: "Main Pool",
			domain.KeyStartTime:       "19:00",
			domain.KeyMembers:         []any{attendedRef("m2", "2024-05-20")},
			domain.KeyCoaches:         []any{attendedRef("c1", "2024-05-20")},
		}},
		ResourceLists: {},
		ResourceRoles: {},
	}
}
