package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// Dataset holds one loaded copy of the club's records and the machinery
// that audits them: the issue ledger, the fix queue and the generated
// lists fed during analysis.
type Dataset struct {
	policy   *config.Policy
	clock    domain.Clock
	notifier Notifier
	metrics  *Metrics
	ledger   *Ledger
	fixes    *FixQueue

	sessions *Store[*Session]
	groups   *Store[*Group]
	lists    *Store[*List]
	roles    *Store[*Role]
	conduct  *Store[*Conduct]
	members  *MemberStore

	newLists []*GeneratedList
}

// NewDataset wires an empty dataset for the given policy and clock.
func NewDataset(policy *config.Policy, clock domain.Clock, notifier Notifier) *Dataset {
	d := &Dataset{
		policy:   policy,
		clock:    clock,
		notifier: notifier,
		metrics:  NewMetrics(),
	}
	d.ledger = NewLedger(policy, notifier, d.metrics)
	d.ledger.SetDebugLevel(policy.DebugLevel())
	d.fixes = NewFixQueue(policy, notifier, d.metrics)

	d.sessions = newStore("Sessions", ResourceSessions, func(rec domain.Record) *Session {
		return newSession(rec, policy)
	})
	d.groups = newStore("Groups", ResourceGroups, newGroup)
	d.lists = newStore("Lists", ResourceLists, newList)
	d.roles = newStore("Roles", ResourceRoles, newRole)
	d.conduct = newStore("Conduct", ResourceConduct, newConduct)
	d.members = newMemberStore(d)
	return d
}

// Load reads every collection from the transport.
func (d *Dataset) Load(ctx context.Context, t Transport) error {
	d.notifier.Notify("Reading Data...\n")

	if err := d.sessions.Load(ctx, t, d.notifier, d.metrics); err != nil {
		return err
	}
	if err := d.groups.Load(ctx, t, d.notifier, d.metrics); err != nil {
		return err
	}
	if err := d.lists.Load(ctx, t, d.notifier, d.metrics); err != nil {
		return err
	}
	if err := d.roles.Load(ctx, t, d.notifier, d.metrics); err != nil {
		return err
	}
	if err := d.loadConduct(ctx, t); err != nil {
		return err
	}
	return d.members.Load(ctx, t, d.notifier, d.metrics)
}

// loadConduct reads the codes of conduct. The index resource only lists
// the codes; the member signature data comes from reading each code
// individually.
func (d *Dataset) loadConduct(ctx context.Context, t Transport) error {
	d.notifier.Notify(fmt.Sprintf("%s... ", d.conduct.Name()))

	index, err := t.Read(ctx, ResourceConduct, 1)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			d.notifier.Notify("0\n")
			return nil
		}
		d.notifier.Notify("failed.\n")
		return fmt.Errorf("load %s: %w", d.conduct.Name(), err)
	}
	d.metrics.pageLoaded()

	for i, rec := range index {
		guid := rec.Str(domain.KeyGUID)
		d.notifier.Notify(fmt.Sprintf("%d ", i+1))
		full, err := t.Read(ctx, ResourceConduct+"/"+guid, 1)
		if err != nil {
			d.notifier.Notify("failed.\n")
			return fmt.Errorf("load %s %s: %w", d.conduct.Name(), guid, err)
		}
		d.conduct.addRecords(full, d.metrics)
	}

	d.notifier.Notify("\n")
	return nil
}

// Link resolves cross-references between the loaded collections and
// verifies every entity the configuration names actually exists.
func (d *Dataset) Link() error {
	d.notifier.Notify("Linking...\n")

	for _, s := range d.sessions.Entities() {
		s.link(d)
	}
	for _, g := range d.groups.Entities() {
		g.link(d)
	}
	for _, l := range d.lists.Entities() {
		l.link(d)
	}
	for _, r := range d.roles.Entities() {
		r.link(d)
	}
	for _, c := range d.conduct.Entities() {
		c.link(d)
	}
	for _, m := range d.members.Entities() {
		m.link(d)
	}
	for _, m := range d.members.Entities() {
		m.reconcileParents(d)
	}

	return d.verifyReferences()
}

// verifyReferences checks the configured group, conduct, role, session
// and issue names against the loaded data.
func (d *Dataset) verifyReferences() error {
	refs := d.policy.References()
	failed := false

	for _, name := range refs.Groups {
		if _, ok := d.groups.ByName(name); !ok {
			d.notifier.Notify(fmt.Sprintf("Error in config file: Group '%s' not found\n", name))
			failed = true
		}
	}
	for _, name := range refs.Conducts {
		if _, ok := d.conduct.ByName(name); !ok {
			d.notifier.Notify(fmt.Sprintf("Error in config file: Code of Conduct '%s' not found\n", name))
			failed = true
		}
	}
	for _, name := range refs.Roles {
		if _, ok := d.roles.ByName(name); !ok {
			d.notifier.Notify(fmt.Sprintf("Error in config file: Role '%s' not found\n", name))
			failed = true
		}
	}
	for _, name := range refs.Sessions {
		if !d.sessionSubstrExists(name) {
			d.notifier.Notify(fmt.Sprintf("Error in config file: Session '%s' not found\n", name))
			failed = true
		}
	}
	for _, name := range refs.Issues {
		if domain.KindByName(name) == nil {
			d.notifier.Notify(fmt.Sprintf("Error in config file: Issue '%s' not found\n", name))
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("configuration references entities the data does not have")
	}
	return nil
}

func (d *Dataset) sessionSubstrExists(substr string) bool {
	for _, s := range d.sessions.Entities() {
		if strings.Contains(s.name, substr) {
			return true
		}
	}
	return false
}

// Analyse runs every rule over the linked dataset.
func (d *Dataset) Analyse() {
	d.notifier.Notify("Analysing...\n")

	for _, s := range d.sessions.Entities() {
		s.analyse(d)
	}
	for _, g := range d.groups.Entities() {
		g.analyse(d)
	}
	for _, l := range d.lists.Entities() {
		l.analyse(d)
	}
	for _, r := range d.roles.Entities() {
		r.analyse(d)
	}
	if d.policy.Get("conduct") != nil {
		for _, c := range d.conduct.Entities() {
			c.analyse(d)
		}
	}
	for _, m := range d.members.Entities() {
		m.analyse(d)
	}
}

// Update pushes the generated email lists upstream.
func (d *Dataset) Update(ctx context.Context, t Transport) {
	d.notifier.Notify("Updating...\n")
	d.UpdateLists(ctx, t)
	d.notifier.Notify("Done.\n")
}

// Summary renders the per-collection counts. The fixable-error trailer
// is suppressed when fixes have already been applied, or when auditing
// a snapshot where applying them is not possible.
func (d *Dataset) Summary(suppressFixable bool) string {
	out := d.sessions.Summary()
	out += d.groups.Summary()
	out += d.lists.Summary()
	out += d.roles.Summary()
	out += d.conduct.Summary()
	out += d.members.Summary(d.policy)
	out += fmt.Sprintf("   Not confirmed: %d\n", d.members.notConfirmed)

	if suppressFixable {
		return out
	}

	if n := d.fixes.Len(); n > 0 {
		out += fmt.Sprintf("\n%d fixable errors.", n)
	}
	out += "\n"
	return out
}

// ApplyFixes applies the staged fixes through the transport.
func (d *Dataset) ApplyFixes(ctx context.Context, t Transport, confirm Confirmer) error {
	return d.fixes.Apply(ctx, t, confirm)
}

// Reset clears the analysis products, keeping the loaded data, so the
// rules can run again.
func (d *Dataset) Reset() {
	d.ledger.Reset()
	d.fixes.Reset()
	d.newLists = nil
	d.members.notConfirmed = 0
}

// Delete drops the loaded data entirely.
func (d *Dataset) Delete() {
	d.sessions.Delete()
	d.groups.Delete()
	d.lists.Delete()
	d.roles.Delete()
	d.conduct.Delete()
	d.members.Delete()
	d.Reset()
}

// Ledger exposes the issue ledger for rendering.
func (d *Dataset) Ledger() *Ledger { return d.ledger }

// Fixes exposes the staged fix queue.
func (d *Dataset) Fixes() *FixQueue { return d.fixes }

// Metrics exposes the dataset's metric registry.
func (d *Dataset) Metrics() *Metrics { return d.metrics }

// Members exposes the member collection.
func (d *Dataset) Members() *MemberStore { return d.members }

// Sessions exposes the session collection.
func (d *Dataset) Sessions() *Store[*Session] { return d.sessions }

// Groups exposes the group collection.
func (d *Dataset) Groups() *Store[*Group] { return d.groups }

// Lists exposes the email list collection.
func (d *Dataset) Lists() *Store[*List] { return d.lists }

// Roles exposes the role collection.
func (d *Dataset) Roles() *Store[*Role] { return d.roles }

// Conduct exposes the code of conduct collection.
func (d *Dataset) Conduct() *Store[*Conduct] { return d.conduct }
