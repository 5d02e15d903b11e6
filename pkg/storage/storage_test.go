package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "b", Title: "Second created first", Date: "2026-03-14", StartTime: "09:00", EndTime: "10:00", Category: model.CategoryWork, Priority: model.PriorityHigh},
		{ID: "a", Title: "Pay bills", Description: "electricity", Date: "2026-03-15", StartTime: "08:00", EndTime: "08:30", Category: model.CategoryPersonal, Priority: model.PriorityLow, IsCompleted: true, NotificationID: "n1"},
		{ID: "c", Title: "Run", Date: "2026-03-16", StartTime: "18:00", EndTime: "19:00", Category: model.CategorySport, Priority: model.PriorityMedium},
	}
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fs, err := OpenFile(filepath.Join(dir, "store.json"))
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	db, err := OpenSQLite(filepath.Join(dir, "dayplan.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   fs,
		"sqlite": db,
	}
}

func TestStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Expected ErrNotFound, got %v", err)
			}
			if err := s.Set(ctx, "k", []byte(`{"v":1}`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set(ctx, "k", []byte(`{"v":2}`)); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			got, err := s.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != `{"v":2}` {
				t.Errorf("Expected overwritten value, got %s", got)
			}
			if err := s.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestRepoTasksRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewRepo(s)

			empty, err := repo.GetTasks(ctx)
			if err != nil {
				t.Fatalf("GetTasks on empty store failed: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("Expected no tasks, got %d", len(empty))
			}

			want := sampleTasks()
			if err := repo.SaveTasks(ctx, want); err != nil {
				t.Fatalf("SaveTasks failed: %v", err)
			}
			got, err := repo.GetTasks(ctx)
			if err != nil {
				t.Fatalf("GetTasks failed: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", want, got)
			}
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	fs, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if err := NewRepo(fs).SaveTasks(ctx, sampleTasks()); err != nil {
		t.Fatalf("SaveTasks failed: %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := NewRepo(reopened).GetTasks(ctx)
	if err != nil {
		t.Fatalf("GetTasks failed: %v", err)
	}
	if len(got) != 3 || got[0].ID != "b" || got[2].ID != "c" {
		t.Errorf("Expected tasks in saved order, got %+v", got)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dayplan.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := db.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	db.Close()

	// second open must not fail on already-applied migrations
	db, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	got, err := db.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Expected persisted value, got %q %v", got, err)
	}
}

func TestRepoProjectsAndUser(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(NewMemory())

	user, err := repo.GetUser(ctx)
	if err != nil || user != nil {
		t.Fatalf("Expected nil user, got %+v %v", user, err)
	}
	if err := repo.SaveUser(ctx, model.User{ID: "u1", Name: "Ada"}); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}
	user, err = repo.GetUser(ctx)
	if err != nil || user == nil || user.Name != "Ada" {
		t.Errorf("Expected saved user, got %+v %v", user, err)
	}

	projects := []model.Project{{ID: "p1", Name: "Thesis", Color: "#3A86FF", Progress: 40, HoursProgress: 12.5}}
	if err := repo.SaveProjects(ctx, projects); err != nil {
		t.Fatalf("SaveProjects failed: %v", err)
	}
	got, err := repo.GetProjects(ctx)
	if err != nil || !reflect.DeepEqual(got, projects) {
		t.Errorf("Expected %+v, got %+v %v", projects, got, err)
	}
}

func TestRepoCorruptBlob(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	if err := s.Set(ctx, KeyTasks, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	tasks, err := NewRepo(s).GetTasks(ctx)
	if err == nil {
		t.Fatal("Expected decode error")
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("Expected empty slice on error, got %v", tasks)
	}
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(ctx, "counter", func(current []byte) ([]byte, error) {
				if current != nil {
					t.Errorf("Expected nil for absent key, got %q", current)
				}
				return []byte("1"), nil
			})
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			err = s.Update(ctx, "counter", func(current []byte) ([]byte, error) {
				return append(current, '2'), nil
			})
			if err != nil {
				t.Fatalf("second Update failed: %v", err)
			}
			got, err := s.Get(ctx, "counter")
			if err != nil || string(got) != "12" {
				t.Errorf("Expected \"12\", got %q %v", got, err)
			}

			boom := errors.New("boom")
			err = s.Update(ctx, "counter", func([]byte) ([]byte, error) { return nil, boom })
			if !errors.Is(err, boom) {
				t.Errorf("Expected callback error, got %v", err)
			}
			got, _ = s.Get(ctx, "counter")
			if string(got) != "12" {
				t.Errorf("Expected failed update to leave value, got %q", got)
			}
		})
	}
}

func TestFileStoreSharedBetweenHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dayplan.json")

	watch, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if err := watch.Set(ctx, "pending_notifications", []byte(`{"entries":{}}`)); err != nil {
		t.Fatal(err)
	}

	cli, err := OpenFile(path)
	if err != nil {
		t.Fatalf("second OpenFile failed: %v", err)
	}
	if err := NewRepo(cli).SaveTasks(ctx, sampleTasks()); err != nil {
		t.Fatalf("SaveTasks failed: %v", err)
	}

	// a write through the first handle must keep what the second one wrote
	if err := watch.Set(ctx, "pending_notifications", []byte(`{"entries":{"n1":{}}}`)); err != nil {
		t.Fatal(err)
	}
	tasks, err := NewRepo(watch).GetTasks(ctx)
	if err != nil || len(tasks) != 3 {
		t.Errorf("Expected first handle to see 3 tasks, got %d %v", len(tasks), err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tasks, err = NewRepo(reopened).GetTasks(ctx)
	if err != nil || len(tasks) != 3 {
		t.Errorf("Expected 3 tasks on disk, got %d %v", len(tasks), err)
	}
	if err := cli.Delete(ctx, "pending_notifications"); err != nil {
		t.Fatal(err)
	}
	if _, err := watch.Get(ctx, "pending_notifications"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected delete through one handle to be visible in the other, got %v", err)
	}
}
