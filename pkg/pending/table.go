// Package pending tracks scheduled one-shot notifications so they can be
// re-armed by another process and cancelled by id.
package pending

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/storage"
)

const storeKey = "pending_notifications"

type Entry struct {
	TaskID string    `json:"task_id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	FireAt time.Time `json:"fire_at"`
}

type document struct {
	Entries map[string]Entry `json:"entries"`
}

// Table is this process's view of the persisted pending notifications. Puts
// and removals are kept as a delta until Save merges them into whatever the
// store currently holds, so entries written by other processes survive.
type Table struct {
	entries map[string]Entry
	store   storage.Store
	mu      sync.Mutex
	puts    map[string]Entry
	removed map[string]struct{}
}

// NewTable loads the table from store. A missing blob yields an empty table.
func NewTable(ctx context.Context, store storage.Store) (*Table, error) {
	t := &Table{
		entries: make(map[string]Entry),
		store:   store,
		puts:    make(map[string]Entry),
		removed: make(map[string]struct{}),
	}
	if err := t.Load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func decode(b []byte) (map[string]Entry, error) {
	entries := make(map[string]Entry)
	if len(b) == 0 {
		return entries, nil
	}
	var loaded document
	if err := json.Unmarshal(b, &loaded); err != nil {
		return nil, err
	}
	for id, e := range loaded.Entries {
		entries[id] = e
	}
	return entries, nil
}

// Load replaces the in-memory entries with the persisted ones, keeping any
// unsaved changes on top.
func (t *Table) Load(ctx context.Context) error {
	b, err := t.store.Get(ctx, storeKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	entries, err := decode(b)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = t.apply(entries)
	return nil
}

// apply layers the unsaved delta over entries. Callers hold t.mu.
func (t *Table) apply(entries map[string]Entry) map[string]Entry {
	for id := range t.removed {
		delete(entries, id)
	}
	for id, e := range t.puts {
		entries[id] = e
	}
	return entries
}

// Save merges the unsaved delta into the stored table in one atomic update.
func (t *Table) Save(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.puts) == 0 && len(t.removed) == 0 {
		return nil
	}

	var merged map[string]Entry
	err := t.store.Update(ctx, storeKey, func(current []byte) ([]byte, error) {
		entries, err := decode(current)
		if err != nil {
			return nil, err
		}
		merged = t.apply(entries)
		return json.Marshal(document{Entries: merged})
	})
	if err != nil {
		return err
	}
	t.entries = merged
	t.puts = make(map[string]Entry)
	t.removed = make(map[string]struct{})
	return nil
}

func (t *Table) Put(id string, e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[id] = e
	t.puts[id] = e
	delete(t.removed, id)
}

func (t *Table) Get(id string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	return e, ok
}

// Remove drops id locally and from the store on the next Save, even when this
// process never loaded it.
func (t *Table) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remove(id)
}

func (t *Table) remove(id string) {
	delete(t.entries, id)
	delete(t.puts, id)
	t.removed[id] = struct{}{}
}

// Snapshot returns a copy of the entries.
func (t *Table) Snapshot() map[string]Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]Entry, len(t.entries))
	for id, e := range t.entries {
		out[id] = e
	}
	return out
}

// Sweep removes and returns entries whose fire time is not after now.
func (t *Table) Sweep(now time.Time) map[string]Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	swept := make(map[string]Entry)
	for id, e := range t.entries {
		if !e.FireAt.After(now) {
			swept[id] = e
			t.remove(id)
		}
	}
	return swept
}
