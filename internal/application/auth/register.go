// Package auth implements account registration and login. The wider auth
// surface (sessions, OAuth redirects) lives in the http layer.
package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterUserInput is the registration form.
type RegisterUserInput struct {
	Email    string
	Username string
	Name     string
	Role     string
	Password string
}

// RegisterUserResult wraps the created account.
type RegisterUserResult struct {
	User *domain.User
}

// RegisterUser creates a local account.
type RegisterUser struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

// NewRegisterUser builds the use case.
func NewRegisterUser(users ports.UserRepository, hasher ports.PasswordHasher) *RegisterUser {
	return &RegisterUser{users: users, hasher: hasher}
}

// Execute validates the email, rejects duplicates and stores the account.
func (uc *RegisterUser) Execute(ctx context.Context, input RegisterUserInput) (*RegisterUserResult, error) {
	if !emailRegex.MatchString(input.Email) {
		return nil, domerrors.ErrInvalidCredentials
	}
	existing, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrUserExists
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Email:        input.Email,
		Username:     input.Username,
		Name:         input.Name,
		Role:         domain.ParseRole(input.Role),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return &RegisterUserResult{User: user}, nil
}
