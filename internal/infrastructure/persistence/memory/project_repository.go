// Package memory provides mutex-guarded in-memory repositories, suitable
// for tests and single-instance development without a database.
package memory

import (
	"context"
	"sync"

	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
)

type ProjectRepository struct {
	mu   sync.RWMutex
	data map[domain.ProjectKey]*domain.Project
}

// NewProjectRepository returns an empty store.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{data: make(map[domain.ProjectKey]*domain.Project)}
}

func (r *ProjectRepository) ListByMember(ctx context.Context, email string) ([]*domain.Project, error) {
	key := domain.EncodeCollabKey(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Project
	for _, p := range r.data {
		if p.Owner == email {
			out = append(out, p.Clone())
			continue
		}
		if _, ok := p.Collaborators[key]; ok {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *ProjectRepository) GetByKey(ctx context.Context, key domain.ProjectKey) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[project.Key] = project.Clone()
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[project.Key] = project.Clone()
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, key domain.ProjectKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)
