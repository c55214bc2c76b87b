package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
	"github.com/4and4/milo-server/internal/infrastructure/persistence/memory"
)

func TestSaveCreatesProject(t *testing.T) {
	repo := memory.NewProjectRepository()
	save := NewSaveProject(repo)

	res, err := save.Execute(context.Background(), SaveProjectInput{
		Identity: "alice@school.edu",
		Name:     "Maze",
		XML:      "<xml/>",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Key == "" {
		t.Fatal("no key assigned on first save")
	}
	if res.Project.Owner != "alice@school.edu" {
		t.Errorf("owner = %q", res.Project.Owner)
	}

	stored, err := repo.GetByKey(context.Background(), res.Key)
	if err != nil || stored == nil {
		t.Fatalf("GetByKey after save: %v, %v", stored, err)
	}
	if stored.XML != "<xml/>" {
		t.Errorf("stored XML = %q", stored.XML)
	}
}

func TestSaveKeepsKeyStable(t *testing.T) {
	repo := memory.NewProjectRepository()
	save := NewSaveProject(repo)
	ctx := context.Background()

	first, err := save.Execute(ctx, SaveProjectInput{Identity: "alice@school.edu", Name: "Maze", XML: "<a/>"})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := save.Execute(ctx, SaveProjectInput{
		Identity: "alice@school.edu",
		Key:      first.Key,
		Name:     "Maze",
		XML:      "<b/>",
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.Key != first.Key {
		t.Errorf("key changed across saves: %q -> %q", first.Key, second.Key)
	}
	if second.Project.XML != "<b/>" {
		t.Errorf("content not updated: %q", second.Project.XML)
	}
}

func TestSaveAnonymousForbidden(t *testing.T) {
	repo := memory.NewProjectRepository()
	save := NewSaveProject(repo)

	_, err := save.Execute(context.Background(), SaveProjectInput{XML: "<xml/>"})
	if !errors.Is(err, domerrors.ErrForbidden) {
		t.Fatalf("anonymous save = %v, want ErrForbidden", err)
	}
}

func TestSaveUnknownKey(t *testing.T) {
	save := NewSaveProject(memory.NewProjectRepository())
	_, err := save.Execute(context.Background(), SaveProjectInput{
		Identity: "alice@school.edu",
		Key:      "missing",
	})
	if !errors.Is(err, domerrors.ErrProjectNotFound) {
		t.Fatalf("save to missing key = %v, want ErrProjectNotFound", err)
	}
}

func TestSaveByViewerForbidden(t *testing.T) {
	repo := memory.NewProjectRepository()
	ctx := context.Background()
	p := domain.NewProject("owner@school.edu", "Maze")
	p.SetCollaborator("viewer@school.edu", domain.LevelView)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	save := NewSaveProject(repo)
	_, err := save.Execute(ctx, SaveProjectInput{
		Identity: "viewer@school.edu",
		Key:      p.Key,
		XML:      "<hacked/>",
	})
	if !errors.Is(err, domerrors.ErrForbidden) {
		t.Fatalf("viewer save = %v, want ErrForbidden", err)
	}
	stored, _ := repo.GetByKey(ctx, p.Key)
	if stored.XML != "" {
		t.Error("denied save mutated the stored project")
	}
}

func TestSaveByEditorKeepsName(t *testing.T) {
	repo := memory.NewProjectRepository()
	ctx := context.Background()
	p := domain.NewProject("owner@school.edu", "Maze")
	p.SetCollaborator("editor@school.edu", domain.LevelEdit)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	save := NewSaveProject(repo)
	res, err := save.Execute(ctx, SaveProjectInput{
		Identity: "editor@school.edu",
		Key:      p.Key,
		Name:     "Renamed",
		XML:      "<edited/>",
	})
	if err != nil {
		t.Fatalf("editor save: %v", err)
	}
	if res.Project.XML != "<edited/>" {
		t.Errorf("content not saved: %q", res.Project.XML)
	}
	if res.Project.Name != "Maze" {
		t.Errorf("edit-level save renamed the project to %q", res.Project.Name)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	repo := memory.NewProjectRepository()
	ctx := context.Background()
	save := NewSaveProject(repo)
	load := NewLoadProject(repo)

	saved, err := save.Execute(ctx, SaveProjectInput{
		Identity:      "alice@school.edu",
		Name:          "Maze",
		XML:           "<xml><block/></xml>",
		Pages:         "p",
		MarkdownPages: "m",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := load.Execute(ctx, LoadProjectInput{Identity: "alice@school.edu", Key: saved.Key})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Project.XML != "<xml><block/></xml>" || res.Project.Pages != "p" || res.Project.MarkdownPages != "m" {
		t.Errorf("loaded content differs: %+v", res.Project)
	}
	if res.Level != domain.LevelOwner || !res.CanModify || !res.CanRename {
		t.Errorf("owner load capabilities = %v/%v/%v", res.Level, res.CanModify, res.CanRename)
	}
}

func TestLoadPrivateByStranger(t *testing.T) {
	repo := memory.NewProjectRepository()
	ctx := context.Background()
	p := domain.NewProject("owner@school.edu", "Maze")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	load := NewLoadProject(repo)
	if _, err := load.Execute(ctx, LoadProjectInput{Identity: "stranger@school.edu", Key: p.Key}); !errors.Is(err, domerrors.ErrForbidden) {
		t.Errorf("stranger load = %v, want ErrForbidden", err)
	}
	if _, err := load.Execute(ctx, LoadProjectInput{Key: p.Key}); !errors.Is(err, domerrors.ErrForbidden) {
		t.Errorf("anonymous load = %v, want ErrForbidden", err)
	}
}

func TestLoadPublicByAnonymous(t *testing.T) {
	repo := memory.NewProjectRepository()
	ctx := context.Background()
	p := domain.NewProject("owner@school.edu", "Maze")
	p.Public = true
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	load := NewLoadProject(repo)
	res, err := load.Execute(ctx, LoadProjectInput{Key: p.Key})
	if err != nil {
		t.Fatalf("anonymous load of public project: %v", err)
	}
	if res.CanModify || res.CanRename {
		t.Error("anonymous reader received write capabilities")
	}
}

func TestLoadMissing(t *testing.T) {
	load := NewLoadProject(memory.NewProjectRepository())
	_, err := load.Execute(context.Background(), LoadProjectInput{Identity: "alice@school.edu", Key: "missing"})
	if !errors.Is(err, domerrors.ErrProjectNotFound) {
		t.Fatalf("load missing = %v, want ErrProjectNotFound", err)
	}
}
