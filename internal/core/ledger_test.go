package core

import (
	"strings"
	"testing"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

type stubSubject struct {
	name   string
	tokens map[string]bool
	fresh  bool
}

func (s stubSubject) FullName() string             { return s.name }
func (s stubSubject) suppressed(token string) bool { return s.tokens[token] }
func (s stubSubject) newStarter() bool             { return s.fresh }

func TestLedgerGates(t *testing.T) {
	policy := testPolicy(t, basePolicy)
	l := NewLedger(policy, nil, nil)

	l.Report(stubSubject{name: "Plain Member"}, domain.NoDOB, "")
	if l.Count() != 1 {
		t.Fatalf("count after plain report = %d, want 1", l.Count())
	}

	excepted := stubSubject{name: "Excused Member", tokens: map[string]bool{config.ExceptionGeneral: true}}
	l.Report(excepted, domain.NoDOB, "")
	if l.Count() != 1 {
		t.Fatalf("general exception did not suppress the issue")
	}

	l.Report(stubSubject{name: "New Member", fresh: true}, domain.NoDOB, "")
	if l.Count() != 1 {
		t.Fatalf("new starter issue was not suppressed")
	}

	l.SetReportNewStarters(true)
	l.Report(stubSubject{name: "New Member", fresh: true}, domain.NoDOB, "")
	if l.Count() != 2 {
		t.Fatalf("new starter issue was suppressed with reporting enabled")
	}

	l.ReportLevel(stubSubject{name: "Quiet Member"}, domain.NoDOB, "", domain.LevelIgnorable, "")
	if l.Count() != 2 {
		t.Fatalf("ignorable issue recorded below its debug threshold")
	}

	l.ReportLevel(excepted, domain.NoDOB, "", domain.LevelAlways, "")
	if l.Count() != 3 {
		t.Fatalf("always-level issue did not bypass the exception gate")
	}

	l.Reset()
	if l.Count() != 0 {
		t.Fatalf("count after reset = %d, want 0", l.Count())
	}
}

func TestLedgerIssueOverrides(t *testing.T) {
	policy := testPolicy(t, basePolicy+`
issues:
  'E_DOB':
    ignore_error: true
  'E_ABSENT':
    message: "Long time no see"
`)
	l := NewLedger(policy, nil, nil)

	l.Report(stubSubject{name: "A Member"}, domain.NoDOB, "")
	if l.Count() != 0 {
		t.Fatalf("ignore_error did not drop the issue")
	}

	l.Report(stubSubject{name: "A Member"}, domain.Absent, "Last seen: 01-01-2024")
	out := l.RenderByKind()
	if !strings.Contains(out, "Long time no see") {
		t.Fatalf("message override missing from report:\n%s", out)
	}
	if strings.Contains(out, domain.Absent.Message) {
		t.Fatalf("default message still present with override:\n%s", out)
	}
}

func TestLedgerRenderByKind(t *testing.T) {
	policy := testPolicy(t, basePolicy)
	l := NewLedger(policy, nil, nil)

	l.Report(stubSubject{name: "Alice Able"}, domain.Absent, "Last seen: 01-01-2024")
	l.Report(stubSubject{name: "Bob Baker"}, domain.Absent, "Last seen: 02-01-2024")

	out := l.RenderByKind()
	if !strings.Contains(out, "========= Members Report ========\n") {
		t.Fatalf("missing category heading:\n%s", out)
	}
	if !strings.Contains(out, "Absent:\n") {
		t.Fatalf("missing kind section:\n%s", out)
	}
	if !strings.Contains(out, "    Alice Able (Last seen: 01-01-2024)\n") {
		t.Fatalf("missing single-entry line:\n%s", out)
	}
	if !strings.HasSuffix(out, "=======================\n") {
		t.Fatalf("missing trailer:\n%s", out)
	}
}

func TestLedgerRenderByName(t *testing.T) {
	policy := testPolicy(t, basePolicy)
	l := NewLedger(policy, nil, nil)

	if got := l.RenderByName(); got != "Nothing to report.\n" {
		t.Fatalf("empty render = %q", got)
	}

	l.Report(stubSubject{name: "Alice Able"}, domain.Absent, "Last seen: 01-01-2024")
	l.Report(stubSubject{name: "Alice Able"}, domain.NoDOB, "")

	out := l.RenderByName()
	if !strings.Contains(out, "Alice Able:\n") {
		t.Fatalf("missing name heading:\n%s", out)
	}
	if !strings.Contains(out, "Absent (Last seen: 01-01-2024)") {
		t.Fatalf("missing issue line:\n%s", out)
	}
	if !strings.Contains(out, "No date of birth") {
		t.Fatalf("missing second issue:\n%s", out)
	}
}
