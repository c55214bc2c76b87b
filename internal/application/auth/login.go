package auth

import (
	"context"

	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

// LoginInput is the credential pair.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the account and a signed access token.
type LoginResult struct {
	User        *domain.User
	AccessToken string
}

// Login verifies a password credential and issues an access token.
type Login struct {
	users        ports.UserRepository
	hasher       ports.PasswordHasher
	issuer       ports.TokenIssuer
	accessExpiry int64
}

// NewLogin builds the use case.
func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, accessExpiry int64) *Login {
	return &Login{users: users, hasher: hasher, issuer: issuer, accessExpiry: accessExpiry}
}

// Execute checks the credential and returns a token on success. A missing
// user and a wrong password fail identically.
func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, domerrors.ErrInvalidCredentials
	}
	ok, err := uc.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domerrors.ErrInvalidCredentials
	}
	token, err := uc.issuer.IssueAccessToken(user.Email, string(user.Role), uc.accessExpiry)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}
