// Package diff compares a freshly fetched catalog against previously
// observed state and determines which events are new.
package diff

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/TheusHen/HCNoticer/pkg/catalog"
)

// Store persists known-event state between runs.
type Store interface {
	Load(ctx context.Context) *catalog.State
	Save(ctx context.Context, state *catalog.State) error
	Exists(ctx context.Context) bool
}

// Engine loads state, diffs a catalog against it, and persists the result.
type Engine struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates a diff engine backed by the given store.
func New(store Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Compute partitions each category into new and already-known events and
// returns the per-category results together with the updated known set.
//
// The known set is name-scoped, not (name, category)-scoped: an event that
// migrates between categories keeps its identity and is never re-announced.
// The updated set is the union of the prior set and every name seen in this
// catalog, so running twice on the same catalog is idempotent. A name that
// appears more than once in a single catalog is new only the first time.
func Compute(c *catalog.Catalog, known map[string]struct{}) ([]catalog.Result, map[string]struct{}) {
	updated := make(map[string]struct{}, len(known))
	for name := range known {
		updated[name] = struct{}{}
	}

	var results []catalog.Result
	for _, cat := range c.Categories() {
		var newEvents []catalog.Event
		names := make([]string, 0, len(cat.Events))
		for _, e := range cat.Events {
			names = append(names, e.Name)
			if _, seen := updated[e.Name]; !seen {
				newEvents = append(newEvents, e)
			}
			updated[e.Name] = struct{}{}
		}
		if len(newEvents) > 0 {
			results = append(results, catalog.Result{
				Category:        cat.Label,
				NewEvents:       newEvents,
				AllCurrentNames: names,
			})
		}
	}

	return results, updated
}

// Check diffs the catalog against the stored state and persists the updated
// known set. A load that finds no usable state (missing or corrupt) starts
// from an empty set; a failed save is returned to the caller since losing
// state would re-announce every event on the next run.
func (e *Engine) Check(ctx context.Context, c *catalog.Catalog) ([]catalog.Result, error) {
	state := e.store.Load(ctx)
	results, updated := Compute(c, state.Known())

	names := make([]string, 0, len(updated))
	for name := range updated {
		names = append(names, name)
	}
	sort.Strings(names)

	next := &catalog.State{
		KnownEvents: names,
		LastCheck:   e.now().UTC().Format(time.RFC3339),
	}
	if err := e.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	e.logger.Info("Diff completed",
		"new", catalog.TotalNew(results),
		"tracked", c.Total(),
		"known", len(names))

	return results, nil
}
