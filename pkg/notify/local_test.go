package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/logger"
	"github.com/harrisonrobin/dayplan/pkg/pending"
	"github.com/harrisonrobin/dayplan/pkg/storage"
)

func newLocal(t *testing.T, store storage.Store, policy string) *Local {
	t.Helper()
	table, err := pending.NewTable(context.Background(), store)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return NewLocal(table, policy, logger.Discard())
}

func TestLocalFires(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	n := newLocal(t, store, PermissionGranted)

	delivered := make(chan Payload, 1)
	n.Deliver = func(p Payload) { delivered <- p }

	id, err := n.ScheduleOneShot(ctx, 10*time.Millisecond, Payload{TaskID: "t1", Title: "Upcoming Task"})
	if err != nil {
		t.Fatalf("ScheduleOneShot failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a notification id")
	}

	select {
	case p := <-delivered:
		if p.TaskID != "t1" {
			t.Errorf("Expected payload for t1, got %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification did not fire")
	}

	// fired entries leave the persisted table
	deadline := time.Now().Add(time.Second)
	for {
		table, _ := pending.NewTable(ctx, store)
		if _, ok := table.Get(id); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected fired notification to be removed from the table")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLocalCancel(t *testing.T) {
	ctx := context.Background()
	n := newLocal(t, storage.NewMemory(), PermissionGranted)
	fired := make(chan struct{}, 1)
	n.Deliver = func(Payload) { fired <- struct{}{} }

	id, err := n.ScheduleOneShot(ctx, 50*time.Millisecond, Payload{TaskID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Cancel(ctx, id); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if n.Armed() != 0 {
		t.Errorf("Expected no armed timers, got %d", n.Armed())
	}
	select {
	case <-fired:
		t.Error("cancelled notification fired")
	case <-time.After(150 * time.Millisecond):
	}

	if err := n.Cancel(ctx, "unknown"); !errors.Is(err, ErrUnknownNotification) {
		t.Errorf("Expected ErrUnknownNotification, got %v", err)
	}
}

func TestLocalSyncArmsForeignEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	// another process scheduled these
	writer := newLocal(t, store, PermissionGranted)
	if _, err := writer.ScheduleOneShot(ctx, time.Hour, Payload{TaskID: "future"}); err != nil {
		t.Fatal(err)
	}
	writer.Stop()

	table, err := pending.NewTable(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	table.Put("missed", pending.Entry{TaskID: "past", FireAt: time.Now().Add(-time.Minute)})
	if err := table.Save(ctx); err != nil {
		t.Fatal(err)
	}

	watcher := newLocal(t, store, PermissionGranted)
	defer watcher.Stop()
	if err := watcher.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if watcher.Armed() != 1 {
		t.Errorf("Expected 1 armed notification, got %d", watcher.Armed())
	}

	reloaded, err := pending.NewTable(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reloaded.Get("missed"); ok {
		t.Error("Expected missed notification to be dropped")
	}
}

func TestLocalPermissionPolicy(t *testing.T) {
	ctx := context.Background()

	denied := newLocal(t, storage.NewMemory(), PermissionDenied)
	if ok, _ := denied.RequestPermission(ctx); ok {
		t.Error("Expected denied policy to refuse")
	}

	prompt := newLocal(t, storage.NewMemory(), PermissionPrompt)
	if ok, _ := prompt.PermissionGranted(ctx); ok {
		t.Error("Expected prompt policy to start ungranted")
	}
	prompt.Prompt = func() bool { return true }
	if ok, _ := prompt.RequestPermission(ctx); !ok {
		t.Error("Expected prompt to grant permission")
	}
	if ok, _ := prompt.PermissionGranted(ctx); !ok {
		t.Error("Expected permission to stick after grant")
	}
}

func TestLocalFireKeepsForeignEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	watcher := newLocal(t, store, PermissionGranted)
	defer watcher.Stop()
	fired := make(chan Payload, 1)
	watcher.Deliver = func(p Payload) { fired <- p }

	if _, err := watcher.ScheduleOneShot(ctx, 100*time.Millisecond, Payload{TaskID: "soon"}); err != nil {
		t.Fatal(err)
	}
	if err := watcher.Sync(ctx); err != nil {
		t.Fatal(err)
	}

	// scheduled by a separate add while watch runs
	adder := newLocal(t, store, PermissionGranted)
	later, err := adder.ScheduleOneShot(ctx, time.Hour, Payload{TaskID: "later"})
	if err != nil {
		t.Fatal(err)
	}
	adder.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("notification did not fire")
	}

	deadline := time.Now().Add(time.Second)
	for {
		if err := watcher.Sync(ctx); err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if watcher.Armed() == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected 1 armed notification after sync, got %d", watcher.Armed())
		}
		time.Sleep(5 * time.Millisecond)
	}

	table, err := pending.NewTable(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := table.Get(later); !ok {
		t.Error("Expected the other process's entry to survive the fire")
	}
}

func TestLocalCancelForeignEntry(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	canceller := newLocal(t, store, PermissionGranted)
	scheduler := newLocal(t, store, PermissionGranted)
	id, err := scheduler.ScheduleOneShot(ctx, time.Hour, Payload{TaskID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	scheduler.Stop()

	if err := canceller.Cancel(ctx, id); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	table, _ := pending.NewTable(ctx, store)
	if _, ok := table.Get(id); ok {
		t.Error("Expected cancelled entry to leave the store")
	}
}
