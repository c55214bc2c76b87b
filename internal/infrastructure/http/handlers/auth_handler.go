package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/4and4/milo-server/internal/application/auth"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
	"github.com/4and4/milo-server/internal/infrastructure/http/middleware"
)

// AuthHandler serves account registration, login and the session status
// probe used by the editor page.
type AuthHandler struct {
	register *auth.RegisterUser
	login    *auth.Login
	validate *validator.Validate
	log      zerolog.Logger
}

// NewAuthHandler builds the handler.
func NewAuthHandler(register *auth.RegisterUser, login *auth.Login, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{register: register, login: login, validate: validator.New(), log: log}
}

// Register creates a local account and logs the caller in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name" validate:"required,max=128"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Username string `json:"username" validate:"required,max=64"`
		Password string `json:"password" validate:"required,min=8,max=128"`
		OptRole  string `json:"optrole"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "invalid email or password length")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterUserInput{
		Email:    email,
		Username: body.Username,
		Name:     body.Name,
		Role:     body.OptRole,
		Password: password,
	})
	if err != nil {
		AuditLog(h.log, r, "user.register", email, false, err.Error())
		if errors.Is(err, domerrors.ErrUserExists) {
			writeErr(w, http.StatusConflict, err.Error())
			return
		}
		if errors.Is(err, domerrors.ErrInvalidCredentials) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("register failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	AuditLog(h.log, r, "user.register", email, true, "")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"email":    result.User.Email,
		"username": result.User.Username,
		"name":     result.User.Name,
		"role":     result.User.Role,
	})
}

// Login verifies the credential pair and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	result, err := h.login.Execute(r.Context(), auth.LoginInput{Email: email, Password: SanitizePassword(body.Password)})
	if err != nil {
		AuditLog(h.log, r, "user.login", email, false, err.Error())
		if errors.Is(err, domerrors.ErrInvalidCredentials) {
			writeErr(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	AuditLog(h.log, r, "user.login", email, true, "")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": result.AccessToken,
		"email":        result.User.Email,
		"name":         result.User.Name,
		"role":         result.User.Role,
	})
}

// Status reports whether the caller holds a valid session, mirroring the
// editor's GET /users/status probe.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"status": identity != ""})
}
