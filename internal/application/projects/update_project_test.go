package projects

import (
	"context"
	"errors"
	"testing"

	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
	"github.com/4and4/milo-server/internal/infrastructure/persistence/memory"
)

type fixture struct {
	projects *memory.ProjectRepository
	users    *memory.UserRepository
	uc       *UpdateProject
	project  *domain.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	projects := memory.NewProjectRepository()
	users := memory.NewUserRepository()

	for _, email := range []string{"owner@school.edu", "admin@school.edu", "editor@school.edu", "bob@school.edu"} {
		if err := users.Create(ctx, &domain.User{Email: email, Username: email, Role: domain.RoleStudent}); err != nil {
			t.Fatal(err)
		}
	}
	p := domain.NewProject("owner@school.edu", "Maze")
	p.SetCollaborator("admin@school.edu", domain.LevelAdmin)
	p.SetCollaborator("editor@school.edu", domain.LevelEdit)
	if err := projects.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	return &fixture{
		projects: projects,
		users:    users,
		uc:       NewUpdateProject(projects, users),
		project:  p,
	}
}

func (f *fixture) stored(t *testing.T) *domain.Project {
	t.Helper()
	p, err := f.projects.GetByKey(context.Background(), f.project.Key)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestUpdateRename(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity: "admin@school.edu",
		Key:      f.project.Key,
		Type:     UpdateRename,
		NewName:  "Labyrinth",
	})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got := f.stored(t).Name; got != "Labyrinth" {
		t.Errorf("name = %q", got)
	}
}

func TestUpdateRenameByEditorForbidden(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity: "editor@school.edu",
		Key:      f.project.Key,
		Type:     UpdateRename,
		NewName:  "Labyrinth",
	})
	if !errors.Is(err, domerrors.ErrForbidden) {
		t.Fatalf("editor rename = %v, want ErrForbidden", err)
	}
	if got := f.stored(t).Name; got != "Maze" {
		t.Errorf("denied rename changed the name to %q", got)
	}
}

func TestUpdateTrashAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.Execute(ctx, UpdateProjectInput{
		Identity: "owner@school.edu", Key: f.project.Key, Type: UpdateTrash, Trashed: true,
	}); err != nil {
		t.Fatalf("trash: %v", err)
	}
	if !f.stored(t).Trashed {
		t.Error("project not trashed")
	}

	if _, err := f.uc.Execute(ctx, UpdateProjectInput{
		Identity: "owner@school.edu", Key: f.project.Key, Type: UpdateTrash, Trashed: false,
	}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if f.stored(t).Trashed {
		t.Error("project not restored")
	}
}

func TestUpdatePublicToggle(t *testing.T) {
	f := newFixture(t)
	if _, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity: "admin@school.edu", Key: f.project.Key, Type: UpdatePublic, Public: true,
	}); err != nil {
		t.Fatalf("public: %v", err)
	}
	if !f.stored(t).Public {
		t.Error("project not public")
	}
}

func TestUpdateDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.uc.Execute(ctx, UpdateProjectInput{
		Identity: "admin@school.edu", Key: f.project.Key, Type: UpdateDelete,
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	p, err := f.projects.GetByKey(ctx, f.project.Key)
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Error("project still present after delete")
	}
}

func TestUpdateUnknownType(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity: "owner@school.edu", Key: f.project.Key, Type: "explode",
	})
	if !errors.Is(err, domerrors.ErrInvalidOperation) {
		t.Fatalf("unknown type = %v, want ErrInvalidOperation", err)
	}
}

func TestUpdateMissingProject(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity: "owner@school.edu", Key: "missing", Type: UpdateRename, NewName: "X",
	})
	if !errors.Is(err, domerrors.ErrProjectNotFound) {
		t.Fatalf("missing project = %v, want ErrProjectNotFound", err)
	}
}

func TestCollaboratorAdd(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity:     "owner@school.edu",
		Key:          f.project.Key,
		Type:         UpdateCollaborator,
		CollabKey:    domain.EncodeCollabKey("bob@school.edu"),
		CollabAccess: CollabAdd,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	lvl, ok := f.stored(t).Collaborator("bob@school.edu")
	if !ok || lvl != domain.LevelView {
		t.Errorf("added collaborator = (%v, %v), want (view, true)", lvl, ok)
	}
}

func TestCollaboratorAddIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// editor@ already holds edit; a repeated add must not downgrade it.
	_, err := f.uc.Execute(ctx, UpdateProjectInput{
		Identity:     "owner@school.edu",
		Key:          f.project.Key,
		Type:         UpdateCollaborator,
		CollabKey:    domain.EncodeCollabKey("editor@school.edu"),
		CollabAccess: CollabAdd,
	})
	if err != nil {
		t.Fatalf("repeated add: %v", err)
	}
	lvl, _ := f.stored(t).Collaborator("editor@school.edu")
	if lvl != domain.LevelEdit {
		t.Errorf("repeated add downgraded editor to %v", lvl)
	}
}

func TestCollaboratorAddUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity:     "owner@school.edu",
		Key:          f.project.Key,
		Type:         UpdateCollaborator,
		CollabKey:    domain.EncodeCollabKey("ghost@school.edu"),
		CollabAccess: CollabAdd,
	})
	if !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Fatalf("add unknown user = %v, want ErrUserNotFound", err)
	}
}

func TestCollaboratorLevelChangeAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := domain.EncodeCollabKey("editor@school.edu")

	if _, err := f.uc.Execute(ctx, UpdateProjectInput{
		Identity: "owner@school.edu", Key: f.project.Key, Type: UpdateCollaborator,
		CollabKey: key, CollabAccess: CollabAdmin,
	}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if lvl, _ := f.stored(t).Collaborator("editor@school.edu"); lvl != domain.LevelAdmin {
		t.Errorf("level after promote = %v", lvl)
	}

	if _, err := f.uc.Execute(ctx, UpdateProjectInput{
		Identity: "owner@school.edu", Key: f.project.Key, Type: UpdateCollaborator,
		CollabKey: key, CollabAccess: CollabRemove,
	}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := f.stored(t).Collaborator("editor@school.edu"); ok {
		t.Error("collaborator still present after remove")
	}
}

func TestCollaboratorByEditorForbidden(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity:     "editor@school.edu",
		Key:          f.project.Key,
		Type:         UpdateCollaborator,
		CollabKey:    domain.EncodeCollabKey("bob@school.edu"),
		CollabAccess: CollabAdd,
	})
	if !errors.Is(err, domerrors.ErrForbidden) {
		t.Fatalf("editor managing collaborators = %v, want ErrForbidden", err)
	}
}

func TestCollaboratorInvalidAccess(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity:     "owner@school.edu",
		Key:          f.project.Key,
		Type:         UpdateCollaborator,
		CollabKey:    domain.EncodeCollabKey("bob@school.edu"),
		CollabAccess: "superuser",
	})
	if !errors.Is(err, domerrors.ErrInvalidOperation) {
		t.Fatalf("invalid access = %v, want ErrInvalidOperation", err)
	}
}

func TestCollaboratorGrantToOwnerIsNoOp(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Execute(context.Background(), UpdateProjectInput{
		Identity:     "admin@school.edu",
		Key:          f.project.Key,
		Type:         UpdateCollaborator,
		CollabKey:    domain.EncodeCollabKey("owner@school.edu"),
		CollabAccess: CollabView,
	})
	if err != nil {
		t.Fatalf("grant to owner: %v", err)
	}
	if _, ok := f.stored(t).Collaborator("owner@school.edu"); ok {
		t.Error("owner appeared in the collaborator map")
	}
}
