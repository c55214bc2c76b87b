package ports

import (
	"context"

	"github.com/4and4/milo-server/internal/domain"
)

// ProjectRepository defines persistence for projects. Lookups return
// (nil, nil) when nothing matches; absence is an expected condition, not
// an error.
type ProjectRepository interface {
	// ListByMember returns every project the email owns or collaborates
	// on, as a single query.
	ListByMember(ctx context.Context, email string) ([]*domain.Project, error)
	GetByKey(ctx context.Context, key domain.ProjectKey) (*domain.Project, error)
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, key domain.ProjectKey) error
}

// UserRepository defines persistence for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
