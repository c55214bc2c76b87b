package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectKey is the opaque stable identifier of a project, assigned on
// first save and never changed afterwards.
type ProjectKey string

// NewProjectKey generates a fresh project key.
func NewProjectKey() ProjectKey { return ProjectKey(uuid.NewString()) }

// String returns the canonical string form.
func (k ProjectKey) String() string { return string(k) }

// Project is the persisted unit of work: the serialized workspace plus its
// auxiliary pages, ownership and the collaborator permission map.
//
// The owner is never a member of Collaborators; ownership implies every
// right a collaborator level can grant.
type Project struct {
	Key           ProjectKey          `json:"projectKey"`
	Name          string              `json:"projectName"`
	Owner         string              `json:"owner"`
	XML           string              `json:"xml"`
	Pages         string              `json:"pages"`
	MarkdownPages string              `json:"markdownPages"`
	Collaborators map[CollabKey]Level `json:"collaborators"`
	Public        bool                `json:"public"`
	Trashed       bool                `json:"trashed"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// NewProject creates an unsaved project owned by the given email.
func NewProject(owner, name string) *Project {
	now := time.Now()
	return &Project{
		Key:           NewProjectKey(),
		Name:          name,
		Owner:         owner,
		Collaborators: make(map[CollabKey]Level),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Collaborator returns the stored level for the given email, if any.
func (p *Project) Collaborator(email string) (Level, bool) {
	lvl, ok := p.Collaborators[EncodeCollabKey(email)]
	return lvl, ok
}

// SetCollaborator stores a grant for the given email. Granting to the owner
// is a no-op; the owner is never tracked as a collaborator.
func (p *Project) SetCollaborator(email string, lvl Level) {
	if email == p.Owner {
		return
	}
	if p.Collaborators == nil {
		p.Collaborators = make(map[CollabKey]Level)
	}
	p.Collaborators[EncodeCollabKey(email)] = lvl
}

// RemoveCollaborator deletes the grant entirely rather than downgrading it.
func (p *Project) RemoveCollaborator(email string) {
	delete(p.Collaborators, EncodeCollabKey(email))
}

// Clone returns a deep copy, so stores can hand out projects without
// sharing the collaborator map.
func (p *Project) Clone() *Project {
	cp := *p
	cp.Collaborators = make(map[CollabKey]Level, len(p.Collaborators))
	for k, v := range p.Collaborators {
		cp.Collaborators[k] = v
	}
	return &cp
}
