package core

import (
	"context"
	"fmt"

	"github.com/ColinRobbins/scm-helper/internal/config"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// fixable is an entity that can carry a staged patch.
type fixable interface {
	subject
	GUID() string
	Name() string
	Resource() string
	Raw() domain.Record
	pending() *domain.Patch
	setPending(*domain.Patch)
}

// FixQueue accumulates proposed corrections. Each entity is queued at
// most once; successive patches against the same entity merge into its
// pending patch. Application is human-confirmed and at-most-once.
type FixQueue struct {
	policy   *config.Policy
	notifier Notifier
	metrics  *Metrics
	queue    []fixable
}

// NewFixQueue builds an empty queue.
func NewFixQueue(policy *config.Policy, notifier Notifier, metrics *Metrics) *FixQueue {
	return &FixQueue{policy: policy, notifier: notifier, metrics: metrics}
}

// Stage merges a proposed patch into the entity's pending fix and
// enqueues the entity if it is not queued already.
func (q *FixQueue) Stage(e fixable, fields domain.Record, reason string) {
	patch := domain.NewPatch(fields, reason)
	if cur := e.pending(); cur != nil {
		cur.Merge(patch)
		return
	}
	e.setPending(patch)
	q.queue = append(q.queue, e)
	q.metrics.fixStaged()
}

// Len returns the number of entities with a pending fix.
func (q *FixQueue) Len() int {
	return len(q.queue)
}

// Pending reports whether the entity has a staged fix.
func (q *FixQueue) Pending(e fixable) bool {
	return e.pending() != nil
}

// Reset drops all queued fixes and clears pending patches.
func (q *FixQueue) Reset() {
	for _, e := range q.queue {
		e.setPending(nil)
	}
	q.queue = nil
}

// Apply walks the queue, confirming each fix before writing it upstream.
// A decline skips the entry. When policy forbids updates the write is a
// clean no-op: reported, entry dropped, remaining queue still processed.
// A hard transport failure abandons the rest of the queue.
func (q *FixQueue) Apply(ctx context.Context, t Transport, confirm Confirmer) error {
	allowed := q.policy.AllowUpdate()

	for _, e := range q.queue {
		patch := e.pending()
		if patch == nil {
			continue
		}
		prompt := fmt.Sprintf("Fix '%s' with:\n    %s\nConfirm", e.Name(), patch.Reason())
		if !confirm.YesNo(prompt) {
			continue
		}
		if !allowed {
			q.notifier.Notify("Update prohibited by config.\n")
			e.setPending(nil)
			continue
		}

		rec := patch.Fields.Clone()
		rec["Guid"] = e.GUID()

		q.notifier.Notify(fmt.Sprintf("Fixing: %s...", e.Name()))
		if err := t.Write(ctx, e.Resource()+"/"+e.GUID(), rec, false); err != nil {
			q.notifier.Notify("failed.\n")
			return fmt.Errorf("apply fix for %s: %w", e.Name(), err)
		}
		q.notifier.Notify("Success.\n")
		e.setPending(nil)
		q.metrics.fixApplied()
	}
	return nil
}
