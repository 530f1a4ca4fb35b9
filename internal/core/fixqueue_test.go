package core

import (
	"context"
	"strings"
	"testing"

	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

type stubFixable struct {
	stubSubject
	guid  string
	patch *domain.Patch
}

func (s *stubFixable) GUID() string               { return s.guid }
func (s *stubFixable) Name() string               { return s.stubSubject.name }
func (s *stubFixable) Resource() string           { return ResourceMembers }
func (s *stubFixable) Raw() domain.Record         { return domain.Record{} }
func (s *stubFixable) pending() *domain.Patch     { return s.patch }
func (s *stubFixable) setPending(p *domain.Patch) { s.patch = p }

func TestFixQueueStageMerges(t *testing.T) {
	policy := testPolicy(t, basePolicy)
	q := NewFixQueue(policy, NopNotifier{}, nil)

	e := &stubFixable{stubSubject: stubSubject{name: "Pat Smith"}, guid: "m1"}
	q.Stage(e, domain.Record{"DateLeft": "2024-01-01"}, "Add dateleft")
	q.Stage(e, domain.Record{"JobTitle": "Coach"}, "Set job title")

	if q.Len() != 1 {
		t.Fatalf("queue length = %d, want 1 after merge", q.Len())
	}
	patch := e.pending()
	if patch == nil {
		t.Fatalf("no pending patch")
	}
	if patch.Fields.Str("DateLeft") != "2024-01-01" || patch.Fields.Str("JobTitle") != "Coach" {
		t.Fatalf("merged fields wrong: %v", patch.Fields)
	}
	if got := patch.Reason(); got != "Add dateleft, Set job title" {
		t.Fatalf("merged reason = %q", got)
	}
}

func TestFixQueueApply(t *testing.T) {
	policy := testPolicy(t, basePolicy)
	ft := &fakeTransport{}
	var out strings.Builder
	q := NewFixQueue(policy, WriterNotifier{W: &out}, nil)

	yes := &stubFixable{stubSubject: stubSubject{name: "Yes Member"}, guid: "m1"}
	no := &stubFixable{stubSubject: stubSubject{name: "No Member"}, guid: "m2"}
	q.Stage(yes, domain.Record{"DateLeft": "2024-01-01"}, "Add dateleft")
	q.Stage(no, domain.Record{"DateLeft": "2024-02-01"}, "Add dateleft")

	confirm := &scriptedConfirmer{replies: map[string]bool{"Yes Member": true}}
	if err := q.Apply(context.Background(), ft, confirm); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if len(ft.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(ft.writes))
	}
	w := ft.writes[0]
	if w.resource != ResourceMembers+"/m1" {
		t.Fatalf("write resource = %q", w.resource)
	}
	if w.rec.Str("Guid") != "m1" || w.rec.Str("DateLeft") != "2024-01-01" {
		t.Fatalf("write record = %v", w.rec)
	}
	if w.create {
		t.Fatalf("fix write must not create")
	}
	if yes.pending() != nil {
		t.Fatalf("applied fix still pending")
	}
	if no.pending() == nil {
		t.Fatalf("declined fix should stay pending")
	}
	if !strings.Contains(out.String(), "Success.\n") {
		t.Fatalf("missing success notification: %q", out.String())
	}
}

func TestFixQueueApplyProhibited(t *testing.T) {
	policy := testPolicy(t, strings.Replace(basePolicy, "allow_update: true", "allow_update: false", 1))
	ft := &fakeTransport{}
	var out strings.Builder
	q := NewFixQueue(policy, WriterNotifier{W: &out}, nil)

	e := &stubFixable{stubSubject: stubSubject{name: "Pat Smith"}, guid: "m1"}
	q.Stage(e, domain.Record{"DateLeft": "2024-01-01"}, "Add dateleft")

	if err := q.Apply(context.Background(), ft, StaticConfirmer{Answer: true}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(ft.writes) != 0 {
		t.Fatalf("prohibited apply wrote upstream")
	}
	if !strings.Contains(out.String(), "Update prohibited by config.\n") {
		t.Fatalf("missing prohibition notice: %q", out.String())
	}
}

func TestFixQueueApplyTransportFailure(t *testing.T) {
	policy := testPolicy(t, basePolicy)
	ft := &fakeTransport{fail: true}
	q := NewFixQueue(policy, NopNotifier{}, nil)

	e := &stubFixable{stubSubject: stubSubject{name: "Pat Smith"}, guid: "m1"}
	q.Stage(e, domain.Record{"DateLeft": "2024-01-01"}, "Add dateleft")

	if err := q.Apply(context.Background(), ft, StaticConfirmer{Answer: true}); err == nil {
		t.Fatalf("expected apply to fail with failing transport")
	}
}

// scriptedConfirmer answers yes only for prompts naming a listed entity.
type scriptedConfirmer struct {
	replies map[string]bool
}

func (s *scriptedConfirmer) YesNo(prompt string) bool {
	for name, answer := range s.replies {
		if strings.Contains(prompt, name) {
			return answer
		}
	}
	return false
}

func (s *scriptedConfirmer) Text(string) (string, bool) { return "", false }
