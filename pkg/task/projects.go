package task

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/harrisonrobin/dayplan/pkg/colors"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/storage"
)

const defaultProjectColor = "#3A86FF"

// Projects manages the persisted project list.
type Projects struct {
	repo    *storage.Repo
	palette *colors.Cache
}

// NewProjects creates a project manager. palette assigns colors to projects
// added without one; when nil they get defaultProjectColor.
func NewProjects(repo *storage.Repo, palette *colors.Cache) *Projects {
	return &Projects{repo: repo, palette: palette}
}

func (p *Projects) List(ctx context.Context) ([]model.Project, error) {
	return p.repo.GetProjects(ctx)
}

// Add appends a project with no progress yet.
func (p *Projects) Add(ctx context.Context, name, color string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, ErrEmptyTitle
	}
	projects, err := p.repo.GetProjects(ctx)
	if err != nil {
		return model.Project{}, err
	}

	project := model.Project{
		ID:    uuid.NewString(),
		Name:  name,
		Color: strings.TrimSpace(color),
	}
	if project.Color == "" {
		project.Color = p.assignColor(ctx, project.ID)
	}
	projects = append(projects, project)
	if err := p.repo.SaveProjects(ctx, projects); err != nil {
		return model.Project{}, err
	}
	return project, nil
}

func (p *Projects) assignColor(ctx context.Context, projectID string) string {
	if p.palette == nil {
		return defaultProjectColor
	}
	color := p.palette.ColorFor(projectID)
	if err := p.palette.Save(ctx); err != nil {
		return defaultProjectColor
	}
	return color
}

// SetProgress records completion percentage and hours worked for the project with id.
func (p *Projects) SetProgress(ctx context.Context, id string, progress int, hours float64) (model.Project, error) {
	projects, err := p.repo.GetProjects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	for i := range projects {
		if projects[i].ID != id {
			continue
		}
		projects[i].Progress = min(max(progress, 0), 100)
		projects[i].HoursProgress = hours
		if err := p.repo.SaveProjects(ctx, projects); err != nil {
			return model.Project{}, err
		}
		return projects[i], nil
	}
	return model.Project{}, ErrNotFound
}

// Remove deletes the project with id and frees its palette color.
func (p *Projects) Remove(ctx context.Context, id string) error {
	projects, err := p.repo.GetProjects(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(projects, func(pr model.Project) bool { return pr.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	if err := p.repo.SaveProjects(ctx, slices.Delete(projects, i, i+1)); err != nil {
		return err
	}
	if p.palette != nil {
		p.palette.Release(id)
		if err := p.palette.Save(ctx); err != nil {
			return err
		}
	}
	return nil
}
