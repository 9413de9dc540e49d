package coastermap

import (
	"slices"
	"sync"

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/merger"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for record events.
type (
	// RecordAddedHook is called with every record a merge added.
	RecordAddedHook func(record coasters.Record)

	// RecordUpdatedHook is called with the before and after versions of
	// every record a merge updated.
	RecordUpdatedHook func(old, new coasters.Record)
)

// Hooks registers callbacks fired after merges. Hooks run after the catalog
// lock is released and receive copies.
type Hooks interface {
	OnRecordAdded(fn RecordAddedHook)
	OnRecordUpdated(fn RecordUpdatedHook)
}

// OnRecordAdded registers a callback for added records.
func (c *client) OnRecordAdded(fn RecordAddedHook) {
	c.hooks.onRecordAdded(fn)
}

// OnRecordUpdated registers a callback for updated records.
func (c *client) OnRecordUpdated(fn RecordUpdatedHook) {
	c.hooks.onRecordUpdated(fn)
}

type hooks struct {
	mu        sync.RWMutex
	onAdded   []RecordAddedHook
	onUpdated []RecordUpdatedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) onRecordAdded(fn RecordAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAdded = append(h.onAdded, fn)
}

func (h *hooks) onRecordUpdated(fn RecordUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpdated = append(h.onUpdated, fn)
}

// wantsUpdates reports whether update hooks need a before snapshot.
func (h *hooks) wantsUpdates() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.onUpdated) > 0
}

// event is one record change observed by a merge.
type event struct {
	old *coasters.Record
	new *coasters.Record
}

// collect builds the events of one merge report. before is the store as it
// was before the merge, or nil when no update hook is registered.
func collect(report *merger.Report, before, after *coasters.Store) []event {
	var events []event
	for _, id := range report.AddedIDs {
		if record, ok := after.Get(id); ok {
			events = append(events, event{new: record.Clone()})
		}
	}
	if before == nil {
		return events
	}
	for _, id := range report.UpdatedIDs {
		old, okOld := before.Get(id)
		record, okNew := after.Get(id)
		if okOld && okNew {
			events = append(events, event{old: old, new: record.Clone()})
		}
	}
	return events
}

// fire calls the registered hooks for events.
func (h *hooks) fire(events []event) {
	if len(events) == 0 {
		return
	}
	h.mu.RLock()
	onAdded := slices.Clone(h.onAdded)
	onUpdated := slices.Clone(h.onUpdated)
	h.mu.RUnlock()

	for _, e := range events {
		if e.old == nil {
			for _, hook := range onAdded {
				hook(*e.new.Clone())
			}
			continue
		}
		for _, hook := range onUpdated {
			hook(*e.old.Clone(), *e.new.Clone())
		}
	}
}
