// Package index maps task ids to the calendar events created for them.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/harrisonrobin/dayplan/pkg/storage"
)

const storeKey = "calendar_event_index"

type EventIndex struct {
	Mappings map[string]string `json:"mappings"`
	store    storage.Store
	mu       sync.RWMutex
	dirty    bool
}

func NewEventIndex(ctx context.Context, store storage.Store) (*EventIndex, error) {
	idx := &EventIndex{
		Mappings: make(map[string]string),
		store:    store,
	}

	b, err := store.Get(ctx, storeKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return idx, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, &idx.Mappings); err != nil {
		return nil, err
	}
	if idx.Mappings == nil {
		idx.Mappings = make(map[string]string)
	}
	return idx, nil
}

func (idx *EventIndex) Save(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	b, err := json.Marshal(idx.Mappings)
	if err != nil {
		return err
	}
	if err := idx.store.Set(ctx, storeKey, b); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(taskID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[taskID]
}

func (idx *EventIndex) Set(taskID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[taskID] != eventID {
		idx.Mappings[taskID] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[taskID]; exists {
		delete(idx.Mappings, taskID)
		idx.dirty = true
	}
}
