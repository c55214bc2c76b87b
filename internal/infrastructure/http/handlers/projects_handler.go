package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/4and4/milo-server/internal/application/projects"
	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
	"github.com/4and4/milo-server/internal/infrastructure/http/middleware"
)

// ProjectsHandler serves the dashboard endpoints: POST /projects/list and
// POST /projects/update. Both require an authenticated identity.
type ProjectsHandler struct {
	list     *projects.ListProjects
	update   *projects.UpdateProject
	validate *validator.Validate
	log      zerolog.Logger
}

// NewProjectsHandler builds the handler.
func NewProjectsHandler(list *projects.ListProjects, update *projects.UpdateProject, log zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{list: list, update: update, validate: validator.New(), log: log}
}

// List returns every project the caller owns or collaborates on.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	items, err := h.list.Execute(r.Context(), identity)
	if err != nil {
		h.log.Error().Err(err).Str("identity", identity).Msg("project listing failed")
		writeProtocol(w, map[string]interface{}{"status": http.StatusInternalServerError, "message": "failed to list projects"})
		return
	}
	if items == nil {
		items = []*domain.Project{}
	}
	writeProtocol(w, map[string]interface{}{
		"status":   http.StatusOK,
		"user":     identity,
		"projects": items,
	})
}

type updateRequest struct {
	ProjectKey string `json:"projectKey" validate:"required"`
	Type       string `json:"type" validate:"required"`

	NewName      string `json:"newName"`
	Trashed      bool   `json:"trashed"`
	Public       bool   `json:"public"`
	CollabKey    string `json:"collabKey"`
	CollabAccess string `json:"collabAccess"`
}

type updateResponse struct {
	Status  int             `json:"status"`
	Type    string          `json:"type,omitempty"`
	Project *domain.Project `json:"project,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Update applies one metadata mutation: rename, trash, delete, public
// toggle or a collaborator change.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	var body updateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProtocol(w, updateResponse{Status: http.StatusInternalServerError, Message: "invalid body"})
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeProtocol(w, updateResponse{Status: http.StatusInternalServerError, Message: err.Error()})
		return
	}
	result, err := h.update.Execute(r.Context(), projects.UpdateProjectInput{
		Identity:     identity,
		Key:          domain.ProjectKey(body.ProjectKey),
		Type:         body.Type,
		NewName:      TruncateProjectName(body.NewName),
		Trashed:      body.Trashed,
		Public:       body.Public,
		CollabKey:    domain.CollabKey(body.CollabKey),
		CollabAccess: body.CollabAccess,
	})
	if err != nil {
		status := protocolStatus(err)
		middleware.RecordStorageOp("update", status)
		h.log.Warn().Err(err).
			Str("identity", identity).
			Str("project_key", body.ProjectKey).
			Str("type", body.Type).
			Msg("project update rejected")
		writeProtocol(w, updateResponse{Status: status, Message: updateErrMessage(err)})
		return
	}
	middleware.RecordStorageOp("update", http.StatusOK)
	writeProtocol(w, updateResponse{Status: http.StatusOK, Type: result.Type, Project: result.Project})
}

func updateErrMessage(err error) string {
	switch {
	case errors.Is(err, domerrors.ErrProjectNotFound):
		return "Failed to find project!"
	case errors.Is(err, domerrors.ErrUserNotFound):
		return "Failed to find user!"
	case errors.Is(err, domerrors.ErrForbidden):
		return "You are not authorized to update this project!"
	case errors.Is(err, domerrors.ErrInvalidOperation):
		return "Invalid Access Type"
	default:
		return "failed to update project"
	}
}
