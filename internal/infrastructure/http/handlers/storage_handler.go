package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/4and4/milo-server/internal/application/storage"
	"github.com/4and4/milo-server/internal/domain"
	"github.com/4and4/milo-server/internal/infrastructure/http/middleware"
)

// StorageHandler serves POST /storage, the save/load protocol used by the
// editor. Responses always carry HTTP 200; the result is the body status.
type StorageHandler struct {
	save     *storage.SaveProject
	load     *storage.LoadProject
	validate *validator.Validate
	log      zerolog.Logger
}

// NewStorageHandler builds the handler.
func NewStorageHandler(save *storage.SaveProject, load *storage.LoadProject, log zerolog.Logger) *StorageHandler {
	return &StorageHandler{save: save, load: load, validate: validator.New(), log: log}
}

type storageRequest struct {
	Type          string `json:"type" validate:"required,oneof=save load"`
	ProjectName   string `json:"projectName"`
	ProjectKey    string `json:"projectKey"`
	XML           string `json:"xml"`
	Pages         string `json:"pages"`
	MarkdownPages string `json:"markdownPages"`
}

type saveResponse struct {
	Status  int             `json:"status"`
	Key     string          `json:"key,omitempty"`
	Project *domain.Project `json:"project,omitempty"`
	Message string          `json:"message,omitempty"`
}

type loadResponse struct {
	Status     int             `json:"status"`
	XML        string          `json:"xml,omitempty"`
	Project    *domain.Project `json:"project,omitempty"`
	ProjectKey string          `json:"projectKey,omitempty"`
	CanModify  bool            `json:"canModify"`
	CanRename  bool            `json:"canRename"`
	Message    string          `json:"message,omitempty"`
}

// Handle dispatches on the discriminated request type.
func (h *StorageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var body storageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProtocol(w, saveResponse{Status: http.StatusInternalServerError, Message: "invalid body"})
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeProtocol(w, saveResponse{Status: http.StatusInternalServerError, Message: err.Error()})
		return
	}
	switch body.Type {
	case "save":
		h.handleSave(w, r, body)
	case "load":
		h.handleLoad(w, r, body)
	}
}

func (h *StorageHandler) handleSave(w http.ResponseWriter, r *http.Request, body storageRequest) {
	identity := middleware.IdentityFromContext(r.Context())
	result, err := h.save.Execute(r.Context(), storage.SaveProjectInput{
		Identity:      identity,
		Key:           domain.ProjectKey(body.ProjectKey),
		Name:          TruncateProjectName(body.ProjectName),
		XML:           body.XML,
		Pages:         body.Pages,
		MarkdownPages: body.MarkdownPages,
	})
	if err != nil {
		status := protocolStatus(err)
		middleware.RecordStorageOp("save", status)
		h.log.Warn().Err(err).Str("identity", identity).Str("project_key", body.ProjectKey).Msg("save failed")
		writeProtocol(w, saveResponse{Status: status, Message: "failed to save project"})
		return
	}
	middleware.RecordStorageOp("save", http.StatusOK)
	writeProtocol(w, saveResponse{
		Status:  http.StatusOK,
		Key:     result.Key.String(),
		Project: result.Project,
	})
}

func (h *StorageHandler) handleLoad(w http.ResponseWriter, r *http.Request, body storageRequest) {
	identity := middleware.IdentityFromContext(r.Context())
	result, err := h.load.Execute(r.Context(), storage.LoadProjectInput{
		Identity: identity,
		Key:      domain.ProjectKey(body.ProjectKey),
	})
	if err != nil {
		status := protocolStatus(err)
		middleware.RecordStorageOp("load", status)
		writeProtocol(w, loadResponse{Status: status, Message: "failed to load project"})
		return
	}
	middleware.RecordStorageOp("load", http.StatusOK)
	writeProtocol(w, loadResponse{
		Status:     http.StatusOK,
		XML:        result.Project.XML,
		Project:    result.Project,
		ProjectKey: result.Project.Key.String(),
		CanModify:  result.CanModify,
		CanRename:  result.CanRename,
	})
}
