package index

import (
	"context"
	"testing"

	"github.com/harrisonrobin/dayplan/pkg/storage"
)

func TestEventIndex(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	idx, err := NewEventIndex(ctx, store)
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	if got := idx.Get("t1"); got != "" {
		t.Fatalf("Expected empty mapping, got %q", got)
	}

	idx.Set("t1", "evt1")
	idx.Set("t2", "evt2")
	idx.Remove("t2")
	if err := idx.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewEventIndex(ctx, store)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := reloaded.Get("t1"); got != "evt1" {
		t.Errorf("Expected evt1, got %q", got)
	}
	if got := reloaded.Get("t2"); got != "" {
		t.Errorf("Expected t2 removed, got %q", got)
	}
}
