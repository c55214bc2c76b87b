package storage

import (
	"context"

	"github.com/4and4/milo-server/internal/application/access"
	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

// LoadProjectInput identifies the project; Identity may be empty for an
// anonymous read.
type LoadProjectInput struct {
	Identity string
	Key      domain.ProjectKey
}

// LoadProjectResult returns the project together with the resolved level
// and the derived UI capabilities.
type LoadProjectResult struct {
	Project   *domain.Project
	Level     domain.Level
	CanModify bool
	CanRename bool
}

// LoadProject fetches a project for rendering.
type LoadProject struct {
	projects ports.ProjectRepository
}

// NewLoadProject builds the use case.
func NewLoadProject(projects ports.ProjectRepository) *LoadProject {
	return &LoadProject{projects: projects}
}

// Execute loads the project, denying identities that resolve to no access.
func (uc *LoadProject) Execute(ctx context.Context, input LoadProjectInput) (*LoadProjectResult, error) {
	project, err := uc.projects.GetByKey(ctx, input.Key)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	lvl := access.Resolve(project, input.Identity)
	if err := access.Authorize(lvl, access.ActionRead); err != nil {
		return nil, err
	}
	return &LoadProjectResult{
		Project:   project,
		Level:     lvl,
		CanModify: access.CanModify(lvl),
		CanRename: access.CanRename(lvl),
	}, nil
}
