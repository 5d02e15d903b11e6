// Package colors hands out display colors to projects, recycling the least
// recently used one when the palette runs out.
package colors

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/storage"
)

const storeKey = "project_colors"

// Palette is the set of colors handed out, in assignment order.
var Palette = []string{
	"#3A86FF", "#FF6B6B", "#06D6A0", "#9B5DE5",
	"#FFD166", "#F15BB5", "#4D96FF", "#FF9F1C",
}

type ProjectState struct {
	Color    string    `json:"color"`
	LastUsed time.Time `json:"last_used"`
}

type Cache struct {
	Projects map[string]*ProjectState `json:"projects"`
	store    storage.Store
	now      func() time.Time
	mu       sync.Mutex
	dirty    bool
}

func NewCache(ctx context.Context, store storage.Store) (*Cache, error) {
	c := &Cache{
		Projects: make(map[string]*ProjectState),
		store:    store,
		now:      time.Now,
	}

	b, err := store.Get(ctx, storeKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, &c.Projects); err != nil {
		return nil, err
	}
	if c.Projects == nil {
		c.Projects = make(map[string]*ProjectState)
	}
	return c, nil
}

func (c *Cache) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	b, err := json.Marshal(c.Projects)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, storeKey, b); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// ColorFor returns the color of project, assigning one on first use.
func (c *Cache) ColorFor(project string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state, exists := c.Projects[project]; exists {
		state.LastUsed = c.now()
		c.dirty = true
		return state.Color
	}
	return c.assignColor(project)
}

// Release frees the color held by project.
func (c *Cache) Release(project string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.Projects[project]; exists {
		delete(c.Projects, project)
		c.dirty = true
	}
}

func (c *Cache) assignColor(project string) string {
	used := make(map[string]bool)
	for _, s := range c.Projects {
		used[s.Color] = true
	}

	for _, color := range Palette {
		if !used[color] {
			c.Projects[project] = &ProjectState{Color: color, LastUsed: c.now()}
			c.dirty = true
			return color
		}
	}

	// palette exhausted: recycle the least recently used color
	var oldestProject string
	var oldestTime time.Time
	for p, s := range c.Projects {
		if oldestProject == "" || s.LastUsed.Before(oldestTime) {
			oldestTime = s.LastUsed
			oldestProject = p
		}
	}

	recycled := c.Projects[oldestProject].Color
	delete(c.Projects, oldestProject)
	c.Projects[project] = &ProjectState{Color: recycled, LastUsed: c.now()}
	c.dirty = true
	return recycled
}
