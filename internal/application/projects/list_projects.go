// Package projects implements the dashboard listing and the metadata
// mutation protocol, including collaborator grants.
package projects

import (
	"context"

	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
)

// ListProjects returns every project the identity owns or collaborates on.
type ListProjects struct {
	projects ports.ProjectRepository
}

// NewListProjects builds the use case.
func NewListProjects(projects ports.ProjectRepository) *ListProjects {
	return &ListProjects{projects: projects}
}

// Execute runs the single owner-or-collaborator membership query.
func (uc *ListProjects) Execute(ctx context.Context, email string) ([]*domain.Project, error) {
	return uc.projects.ListByMember(ctx, email)
}
