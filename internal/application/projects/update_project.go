package projects

import (
	"context"
	"time"

	"github.com/4and4/milo-server/internal/application/access"
	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

// Update types accepted by /projects/update.
const (
	UpdateRename       = "rename"
	UpdateTrash        = "trash"
	UpdateDelete       = "delete"
	UpdatePublic       = "public"
	UpdateCollaborator = "collaborator"
)

// Collaborator operations within an UpdateCollaborator request.
const (
	CollabAdd    = "add"
	CollabAdmin  = "admin"
	CollabEdit   = "edit"
	CollabView   = "view"
	CollabRemove = "remove"
)

// UpdateProjectInput carries one metadata mutation. Only the fields for
// the requested Type are consulted.
type UpdateProjectInput struct {
	Identity string
	Key      domain.ProjectKey
	Type     string

	NewName string // rename
	Trashed bool   // trash
	Public  bool   // public

	CollabKey    domain.CollabKey // collaborator: target, in map-key form
	CollabAccess string           // collaborator: add|admin|edit|view|remove
}

// UpdateProjectResult echoes the request type and the updated project.
type UpdateProjectResult struct {
	Type    string
	Project *domain.Project
}

// UpdateProject applies renames, trash/public toggles, deletes and
// collaborator changes under admin-or-owner checks.
type UpdateProject struct {
	projects ports.ProjectRepository
	users    ports.UserRepository
}

// NewUpdateProject builds the use case.
func NewUpdateProject(projects ports.ProjectRepository, users ports.UserRepository) *UpdateProject {
	return &UpdateProject{projects: projects, users: users}
}

// Execute fetches the project, resolves the caller's level and applies the
// requested mutation.
func (uc *UpdateProject) Execute(ctx context.Context, input UpdateProjectInput) (*UpdateProjectResult, error) {
	project, err := uc.projects.GetByKey(ctx, input.Key)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	lvl := access.Resolve(project, input.Identity)

	switch input.Type {
	case UpdateRename:
		if err := access.Authorize(lvl, access.ActionRename); err != nil {
			return nil, err
		}
		project.Name = input.NewName
	case UpdateTrash:
		if err := access.Authorize(lvl, access.ActionTrash); err != nil {
			return nil, err
		}
		project.Trashed = input.Trashed
	case UpdatePublic:
		if err := access.Authorize(lvl, access.ActionTogglePublic); err != nil {
			return nil, err
		}
		project.Public = input.Public
	case UpdateDelete:
		if err := access.Authorize(lvl, access.ActionDelete); err != nil {
			return nil, err
		}
		if err := uc.projects.Delete(ctx, project.Key); err != nil {
			return nil, err
		}
		return &UpdateProjectResult{Type: input.Type, Project: project}, nil
	case UpdateCollaborator:
		if err := access.Authorize(lvl, access.ActionManageCollaborators); err != nil {
			return nil, err
		}
		changed, err := uc.applyCollaborator(ctx, project, input)
		if err != nil {
			return nil, err
		}
		if !changed {
			// Idempotent add: an existing grant is never overwritten by a
			// repeated add, and the unchanged project is still a success.
			return &UpdateProjectResult{Type: input.Type, Project: project}, nil
		}
	default:
		return nil, domerrors.ErrInvalidOperation
	}

	project.UpdatedAt = time.Now()
	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return &UpdateProjectResult{Type: input.Type, Project: project}, nil
}

func (uc *UpdateProject) applyCollaborator(ctx context.Context, project *domain.Project, input UpdateProjectInput) (changed bool, err error) {
	email := input.CollabKey.Email()
	switch input.CollabAccess {
	case CollabAdd:
		if _, exists := project.Collaborator(email); exists {
			return false, nil
		}
		user, err := uc.users.GetByEmail(ctx, email)
		if err != nil {
			return false, err
		}
		if user == nil {
			return false, domerrors.ErrUserNotFound
		}
		project.SetCollaborator(email, domain.LevelView)
	case CollabAdmin:
		project.SetCollaborator(email, domain.LevelAdmin)
	case CollabEdit:
		project.SetCollaborator(email, domain.LevelEdit)
	case CollabView:
		project.SetCollaborator(email, domain.LevelView)
	case CollabRemove:
		project.RemoveCollaborator(email)
	default:
		return false, domerrors.ErrInvalidOperation
	}
	// The owner never appears in the collaborator map, so a grant aimed at
	// the owner falls through as a no-op.
	if email == project.Owner && input.CollabAccess != CollabRemove {
		return false, nil
	}
	return true, nil
}
