// Package storage implements the save/load persistence protocol. Each
// request is handled statelessly; all state lives in the project store.
package storage

import (
	"context"
	"time"

	"github.com/4and4/milo-server/internal/application/access"
	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

// SaveProjectInput carries the workspace payload. An empty Key means the
// project has never been saved and a new one must be created.
type SaveProjectInput struct {
	Identity      string
	Key           domain.ProjectKey
	Name          string
	XML           string
	Pages         string
	MarkdownPages string
}

// SaveProjectResult returns the (possibly newly assigned) key and the
// updated project.
type SaveProjectResult struct {
	Key     domain.ProjectKey
	Project *domain.Project
}

// SaveProject persists workspace content under permission checks.
type SaveProject struct {
	projects ports.ProjectRepository
}

// NewSaveProject builds the use case.
func NewSaveProject(projects ports.ProjectRepository) *SaveProject {
	return &SaveProject{projects: projects}
}

// Execute saves the content. With a key, the caller needs at least edit
// level on the existing project; the name is only updated when the caller
// may rename. Without a key a new project owned by the caller is created.
func (uc *SaveProject) Execute(ctx context.Context, input SaveProjectInput) (*SaveProjectResult, error) {
	if input.Identity == "" {
		return nil, domerrors.ErrForbidden
	}
	if input.Key == "" {
		project := domain.NewProject(input.Identity, input.Name)
		project.XML = input.XML
		project.Pages = input.Pages
		project.MarkdownPages = input.MarkdownPages
		if err := uc.projects.Create(ctx, project); err != nil {
			return nil, err
		}
		return &SaveProjectResult{Key: project.Key, Project: project}, nil
	}

	project, err := uc.projects.GetByKey(ctx, input.Key)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	lvl := access.Resolve(project, input.Identity)
	if err := access.Authorize(lvl, access.ActionEditContent); err != nil {
		return nil, err
	}
	project.XML = input.XML
	project.Pages = input.Pages
	project.MarkdownPages = input.MarkdownPages
	if input.Name != "" && access.CanRename(lvl) {
		project.Name = input.Name
	}
	project.UpdatedAt = time.Now()
	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return &SaveProjectResult{Key: project.Key, Project: project}, nil
}
