package task

import (
	"context"
	"errors"
	"testing"

	"github.com/harrisonrobin/dayplan/pkg/colors"
	"github.com/harrisonrobin/dayplan/pkg/storage"
)

func TestProjects(t *testing.T) {
	ctx := context.Background()
	p := NewProjects(storage.NewRepo(storage.NewMemory()), nil)

	if _, err := p.Add(ctx, " ", ""); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Add(blank) error = %v, want ErrEmptyTitle", err)
	}

	first, err := p.Add(ctx, "Website", "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Color != defaultProjectColor {
		t.Errorf("Color = %q, want default", first.Color)
	}
	if _, err := p.Add(ctx, "Garden", "#06D6A0"); err != nil {
		t.Fatal(err)
	}

	updated, err := p.SetProgress(ctx, first.ID, 140, 12.5)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Progress != 100 || updated.HoursProgress != 12.5 {
		t.Errorf("SetProgress() = %+v", updated)
	}

	list, err := p.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "Website" || list[1].Name != "Garden" {
		t.Errorf("List() = %+v", list)
	}
	if list[0].Progress != 100 {
		t.Errorf("progress not persisted: %+v", list[0])
	}

	if _, err := p.SetProgress(ctx, "nope", 10, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetProgress(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestProjectsPaletteColors(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	palette, err := colors.NewCache(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	p := NewProjects(storage.NewRepo(store), palette)

	first, err := p.Add(ctx, "Website", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Add(ctx, "Garden", "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Color != colors.Palette[0] || second.Color != colors.Palette[1] {
		t.Errorf("colors = %q, %q", first.Color, second.Color)
	}

	custom, err := p.Add(ctx, "Custom", "#123456")
	if err != nil {
		t.Fatal(err)
	}
	if custom.Color != "#123456" {
		t.Errorf("explicit color replaced: %q", custom.Color)
	}
}

func TestProjectsRemoveFreesColor(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	palette, err := colors.NewCache(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	p := NewProjects(storage.NewRepo(store), palette)

	first, err := p.Add(ctx, "Website", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Add(ctx, "Garden", ""); err != nil {
		t.Fatal(err)
	}
	if err := p.Remove(ctx, first.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	list, _ := p.List(ctx)
	if len(list) != 1 || list[0].Name != "Garden" {
		t.Errorf("projects after remove = %+v", list)
	}

	reloaded, err := colors.NewCache(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if _, held := reloaded.Projects[first.ID]; held {
		t.Error("Expected removed project's color to be released")
	}
	third, err := p.Add(ctx, "Thesis", "")
	if err != nil {
		t.Fatal(err)
	}
	if third.Color != colors.Palette[0] {
		t.Errorf("Expected freed color %q to be reused, got %q", colors.Palette[0], third.Color)
	}

	if err := p.Remove(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(unknown) error = %v, want ErrNotFound", err)
	}
}
