package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

const (
	KeyTasks    = "@smart_planner_tasks"
	KeyProjects = "@smart_planner_projects"
	KeyUser     = "@smart_planner_user"
)

// Repo reads and writes whole collections. Each collection is one blob.
type Repo struct {
	store Store
}

func NewRepo(store Store) *Repo {
	return &Repo{store: store}
}

func (r *Repo) SaveTasks(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return r.put(ctx, KeyTasks, tasks)
}

// GetTasks returns the persisted tasks in insertion order, or an empty slice if none were saved.
func (r *Repo) GetTasks(ctx context.Context) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := r.get(ctx, KeyTasks, &tasks); err != nil {
		return []model.Task{}, err
	}
	return tasks, nil
}

func (r *Repo) SaveProjects(ctx context.Context, projects []model.Project) error {
	if projects == nil {
		projects = []model.Project{}
	}
	return r.put(ctx, KeyProjects, projects)
}

func (r *Repo) GetProjects(ctx context.Context) ([]model.Project, error) {
	projects := []model.Project{}
	if err := r.get(ctx, KeyProjects, &projects); err != nil {
		return []model.Project{}, err
	}
	return projects, nil
}

func (r *Repo) SaveUser(ctx context.Context, user model.User) error {
	return r.put(ctx, KeyUser, user)
}

// GetUser returns nil when no user was saved.
func (r *Repo) GetUser(ctx context.Context) (*model.User, error) {
	var user model.User
	b, err := r.store.Get(ctx, KeyUser)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, &user); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", KeyUser, err)
	}
	return &user, nil
}

func (r *Repo) put(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return r.store.Set(ctx, key, b)
}

// get leaves v untouched when key is absent.
func (r *Repo) get(ctx context.Context, key string, v any) error {
	b, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
