// Package aggregate groups raw low-stock entries per event for one run.
package aggregate

import (
	"sync"

	"github.com/okian/stockwatch/internal/domain/model"
)

// key identifies an alert line inside one event.
type key struct {
	label    string
	quantity int
}

// group is the mutable form of model.AlertGroup.
type group struct {
	eventName string
	seen      map[key]struct{}
	entries   []model.AlertEntry
}

// Aggregator deduplicates alerts by (label, quantity) within each event and
// keeps events in the order they were first added. It lives for one run.
type Aggregator struct {
	mu        sync.Mutex
	byEvent   map[string]*group
	order     []*group
	finalized bool
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{byEvent: make(map[string]*group)}
}

// Add merges entries into the group for eventName. Calls with no entries are
// ignored so that an event without alerts never shows up in the report.
// Safe for concurrent use.
func (a *Aggregator) Add(eventName string, entries []model.RawAlertEntry) error {
	if len(entries) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return ErrFinalized
	}

	g, ok := a.byEvent[eventName]
	if !ok {
		g = &group{eventName: eventName, seen: make(map[key]struct{})}
		a.byEvent[eventName] = g
		a.order = append(a.order, g)
	}

	for _, e := range entries {
		k := key{label: e.ItemLabel, quantity: e.Quantity}
		if _, dup := g.seen[k]; dup {
			continue
		}
		g.seen[k] = struct{}{}
		g.entries = append(g.entries, model.AlertEntry{Label: e.ItemLabel, Quantity: e.Quantity})
	}
	return nil
}

// Finalize seals the aggregator and returns one group per event in insertion
// order. The returned slice is owned by the caller.
func (a *Aggregator) Finalize() []model.AlertGroup {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.finalized = true
	out := make([]model.AlertGroup, 0, len(a.order))
	for _, g := range a.order {
		entries := make([]model.AlertEntry, len(g.entries))
		copy(entries, g.entries)
		out = append(out, model.AlertGroup{EventName: g.eventName, Entries: entries})
	}
	return out
}

// Len returns the number of events holding at least one alert.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.order)
}
