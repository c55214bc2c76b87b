package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

// OAuthSignInInput is the identity asserted by the external provider.
type OAuthSignInInput struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
}

// OAuthSignIn finds or creates the account for an OAuth identity and
// issues an access token. OAuth accounts carry no password credential.
type OAuthSignIn struct {
	users        ports.UserRepository
	issuer       ports.TokenIssuer
	accessExpiry int64
}

// NewOAuthSignIn builds the use case.
func NewOAuthSignIn(users ports.UserRepository, issuer ports.TokenIssuer, accessExpiry int64) *OAuthSignIn {
	return &OAuthSignIn{users: users, issuer: issuer, accessExpiry: accessExpiry}
}

// Execute resolves the provider identity to a local account, creating one
// on first sign-in.
func (uc *OAuthSignIn) Execute(ctx context.Context, input OAuthSignInInput) (*LoginResult, error) {
	if input.Email == "" {
		return nil, domerrors.ErrInvalidCredentials
	}
	user, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		now := time.Now()
		user = &domain.User{
			ID:         domain.NewUserID(uuid.New()),
			Email:      input.Email,
			Username:   usernameFromEmail(input.Email),
			Name:       input.Name,
			Role:       domain.RoleStudent,
			Provider:   input.Provider,
			ProviderID: input.ProviderID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := uc.users.Create(ctx, user); err != nil {
			return nil, err
		}
	}
	token, err := uc.issuer.IssueAccessToken(user.Email, string(user.Role), uc.accessExpiry)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
