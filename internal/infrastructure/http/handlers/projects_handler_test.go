package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/4and4/milo-server/internal/application/projects"
	"github.com/4and4/milo-server/internal/domain"
	"github.com/4and4/milo-server/internal/infrastructure/http/middleware"
	"github.com/4and4/milo-server/internal/infrastructure/persistence/memory"
)

func newProjectsHandler(t *testing.T) (*ProjectsHandler, *memory.ProjectRepository) {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewProjectRepository()
	users := memory.NewUserRepository()
	for _, email := range []string{"owner@school.edu", "bob@school.edu"} {
		if err := users.Create(ctx, &domain.User{Email: email, Username: email, Role: domain.RoleStudent}); err != nil {
			t.Fatal(err)
		}
	}
	return NewProjectsHandler(
		projects.NewListProjects(repo),
		projects.NewUpdateProject(repo, users),
		zerolog.Nop(),
	), repo
}

func doRequest(t *testing.T, fn http.HandlerFunc, identity, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf []byte
	if body != nil {
		var err error
		buf, err = json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req = req.WithContext(middleware.WithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func TestProjectsList(t *testing.T) {
	h, repo := newProjectsHandler(t)
	ctx := context.Background()

	mine := domain.NewProject("owner@school.edu", "Mine")
	shared := domain.NewProject("bob@school.edu", "Shared")
	shared.SetCollaborator("owner@school.edu", domain.LevelView)
	other := domain.NewProject("bob@school.edu", "Private")
	for _, p := range []*domain.Project{mine, shared, other} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	rec := doRequest(t, h.List, "owner@school.edu", "/projects/list", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("HTTP %d", rec.Code)
	}
	var resp struct {
		Status   int               `json:"status"`
		User     string            `json:"user"`
		Projects []*domain.Project `json:"projects"`
	}
	decodeBody(t, rec, &resp)
	if resp.Status != http.StatusOK || resp.User != "owner@school.edu" {
		t.Fatalf("status=%d user=%q", resp.Status, resp.User)
	}
	if len(resp.Projects) != 2 {
		t.Fatalf("listed %d projects, want 2", len(resp.Projects))
	}
	for _, p := range resp.Projects {
		if p.Name == "Private" {
			t.Error("listing leaked a non-member project")
		}
	}
}

func TestProjectsListEmpty(t *testing.T) {
	h, _ := newProjectsHandler(t)
	rec := doRequest(t, h.List, "owner@school.edu", "/projects/list", nil)
	var resp struct {
		Status   int               `json:"status"`
		Projects []*domain.Project `json:"projects"`
	}
	decodeBody(t, rec, &resp)
	if resp.Projects == nil {
		t.Fatal("projects is null, want an empty array")
	}
}

func TestProjectsUpdateRename(t *testing.T) {
	h, repo := newProjectsHandler(t)
	ctx := context.Background()
	p := domain.NewProject("owner@school.edu", "Maze")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, h.Update, "owner@school.edu", "/projects/update", map[string]string{
		"projectKey": p.Key.String(),
		"type":       "rename",
		"newName":    "Labyrinth",
	})
	var resp updateResponse
	decodeBody(t, rec, &resp)
	if resp.Status != http.StatusOK {
		t.Fatalf("rename status = %d: %s", resp.Status, resp.Message)
	}
	stored, _ := repo.GetByKey(ctx, p.Key)
	if stored.Name != "Labyrinth" {
		t.Errorf("name = %q", stored.Name)
	}
}

func TestProjectsUpdateErrorMessages(t *testing.T) {
	h, repo := newProjectsHandler(t)
	ctx := context.Background()
	p := domain.NewProject("owner@school.edu", "Maze")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name       string
		identity   string
		body       map[string]string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "missing project",
			identity:   "owner@school.edu",
			body:       map[string]string{"projectKey": "missing", "type": "rename", "newName": "X"},
			wantStatus: http.StatusNotFound,
			wantMsg:    "Failed to find project!",
		},
		{
			name:       "unauthorized",
			identity:   "bob@school.edu",
			body:       map[string]string{"projectKey": p.Key.String(), "type": "rename", "newName": "X"},
			wantStatus: http.StatusForbidden,
			wantMsg:    "You are not authorized to update this project!",
		},
		{
			name:       "invalid access type",
			identity:   "owner@school.edu",
			body:       map[string]string{"projectKey": p.Key.String(), "type": "collaborator", "collabKey": "bob@school[dot]edu", "collabAccess": "superuser"},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Invalid Access Type",
		},
		{
			name:       "unknown user",
			identity:   "owner@school.edu",
			body:       map[string]string{"projectKey": p.Key.String(), "type": "collaborator", "collabKey": "ghost@school[dot]edu", "collabAccess": "add"},
			wantStatus: http.StatusNotFound,
			wantMsg:    "Failed to find user!",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, h.Update, tc.identity, "/projects/update", tc.body)
			var resp updateResponse
			decodeBody(t, rec, &resp)
			if resp.Status != tc.wantStatus {
				t.Errorf("status = %d, want %d", resp.Status, tc.wantStatus)
			}
			if resp.Message != tc.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tc.wantMsg)
			}
		})
	}
}

func TestProjectsUpdateCollaborator(t *testing.T) {
	h, repo := newProjectsHandler(t)
	ctx := context.Background()
	p := domain.NewProject("owner@school.edu", "Maze")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, h.Update, "owner@school.edu", "/projects/update", map[string]string{
		"projectKey":   p.Key.String(),
		"type":         "collaborator",
		"collabKey":    "bob@school[dot]edu",
		"collabAccess": "add",
	})
	var resp updateResponse
	decodeBody(t, rec, &resp)
	if resp.Status != http.StatusOK {
		t.Fatalf("add status = %d: %s", resp.Status, resp.Message)
	}
	stored, _ := repo.GetByKey(ctx, p.Key)
	if lvl, ok := stored.Collaborator("bob@school.edu"); !ok || lvl != domain.LevelView {
		t.Errorf("collaborator = (%v, %v)", lvl, ok)
	}
}
