package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// subject is anything an issue can be raised against.
type subject interface {
	FullName() string
	// suppressed reports whether the named exception token applies to
	// this subject, making the issue a no-op.
	suppressed(token string) bool
	// newStarter reports whether the subject is inside the post-join
	// grace window.
	newStarter() bool
}

type entry struct {
	val1 string
	val2 string
	kind *domain.Kind
}

// Ledger collects, groups and renders reported issues. It is
// constructor-injected into the dataset; no process-wide state.
type Ledger struct {
	policy   *config.Policy
	notifier Notifier
	metrics  *Metrics

	debugLevel        int
	reportNewStarters bool

	byName map[string]map[string][]entry
	byKind map[string]map[string][]entry
	count  int
}

// NewLedger builds an empty ledger over the given policy.
func NewLedger(policy *config.Policy, notifier Notifier, metrics *Metrics) *Ledger {
	return &Ledger{
		policy:     policy,
		notifier:   notifier,
		metrics:    metrics,
		debugLevel: policy.DebugLevel(),
		byName:     map[string]map[string][]entry{},
		byKind:     map[string]map[string][]entry{},
	}
}

// SetDebugLevel overrides the policy's debug threshold.
func (l *Ledger) SetDebugLevel(level int) {
	l.debugLevel = level
}

// SetReportNewStarters disables the new-starter suppression gate.
func (l *Ledger) SetReportNewStarters(on bool) {
	l.reportNewStarters = on
}

// Reset clears all recorded issues ready for a rerun.
func (l *Ledger) Reset() {
	l.byName = map[string]map[string][]entry{}
	l.byKind = map[string]map[string][]entry{}
	l.count = 0
}

// Count returns the number of recorded issues.
func (l *Ledger) Count() int {
	return l.count
}

// Report records an issue at normal priority.
func (l *Ledger) Report(sub subject, kind *domain.Kind, detail string) {
	l.ReportLevel(sub, kind, detail, domain.LevelNormal, "")
}

// ReportLevel records an issue. Suppression gates apply in order:
// a general exception token on the subject, the debug-level threshold,
// and the new-starter grace window. LevelAlways bypasses all three.
func (l *Ledger) ReportLevel(sub subject, kind *domain.Kind, detail string, level int, extra string) {
	l.Debugf(5, "ISSUE: %s, %s / %s", sub.FullName(), kind.Message, detail)

	if level != domain.LevelAlways {
		if sub.suppressed(config.ExceptionGeneral) {
			l.Debugf(3, "Error ignored due to exception %s", sub.FullName())
			return
		}
		if level > l.debugLevel {
			return
		}
		if sub.newStarter() && !l.reportNewStarters {
			l.Debugf(3, "Error ignored - new starter - %s, %s (%s)", sub.FullName(), kind.Message, detail)
			return
		}
	}

	l.add(sub, kind, detail, extra)
}

func (l *Ledger) add(sub subject, kind *domain.Kind, detail, extra string) {
	if l.policy.IsTrue("issues", kind.Name, "ignore_error") {
		return
	}
	message := kind.Message
	if override := l.policy.Str("issues", kind.Name, "message"); override != "" {
		message = override
	}

	name := sub.FullName()
	addEntry(l.byName, name, message, entry{detail, extra, kind})
	if kind.Reverse {
		addEntry(l.byKind, message, detail, entry{name, extra, kind})
	} else {
		addEntry(l.byKind, message, name, entry{detail, extra, kind})
	}
	l.count++
	l.metrics.issueRecorded(kind.Name)
}

func addEntry(dict map[string]map[string][]entry, key1, key2 string, e entry) {
	inner, ok := dict[key1]
	if !ok {
		inner = map[string][]entry{}
		dict[key1] = inner
	}
	inner[key2] = append(inner[key2], e)
}

// Debugf emits progress text when level is within the debug threshold.
func (l *Ledger) Debugf(level int, format string, args ...any) {
	if level > l.debugLevel || l.notifier == nil {
		return
	}
	l.notifier.Notify(fmt.Sprintf(format, args...) + "\n")
}

// RenderByKind renders all issues grouped by kind under category
// headings, in the fixed category order.
func (l *Ledger) RenderByKind() string {
	var b strings.Builder
	for _, cat := range domain.Categories {
		b.WriteString(fmt.Sprintf("========= %s ========\n", domain.CategoryTitles[cat]))
		b.WriteString(renderDict(l.byKind, cat))
	}
	b.WriteString("=======================\n")
	return b.String()
}

// RenderByName renders all issues grouped by entity display name.
func (l *Ledger) RenderByName() string {
	return renderDict(l.byName, "")
}

// renderDict renders a two-level issue dictionary. When cat is non-empty
// only entries of that category are included.
func renderDict(dict map[string]map[string][]entry, cat domain.Category) string {
	var b strings.Builder
	matched := false

	for _, key1 := range sortedMapKeys(dict) {
		var section strings.Builder
		inner := dict[key1]
		sectionMatched := false

		for _, key2 := range sortedMapKeys(inner) {
			entries := filterEntries(inner[key2], cat)
			if len(entries) == 0 {
				continue
			}
			sectionMatched = true
			sort.Slice(entries, func(i, j int) bool { return entries[i].val1 < entries[j].val1 })

			if len(entries) == 1 && !entries[0].kind.Reverse {
				only := entries[0]
				section.WriteString(fmt.Sprintf("    %s%s%s\n", key2, parens(only.val1), parens(only.val2)))
				continue
			}
			section.WriteString(fmt.Sprintf("    %s\n", key2))
			for _, e := range entries {
				section.WriteString(fmt.Sprintf("        %s%s\n", e.val1, parens(e.val2)))
			}
		}

		if sectionMatched {
			matched = true
			b.WriteString(key1 + ":\n")
			b.WriteString(section.String())
			b.WriteString("\n")
		}
	}

	if !matched {
		return "Nothing to report.\n"
	}
	return b.String()
}

func filterEntries(entries []entry, cat domain.Category) []entry {
	if cat == "" {
		return append([]entry(nil), entries...)
	}
	var out []entry
	for _, e := range entries {
		if e.kind.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

func parens(s string) string {
	if s == "" {
		return ""
	}
	return " (" + s + ")"
}

func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
