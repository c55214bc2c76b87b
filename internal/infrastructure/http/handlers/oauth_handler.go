package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"github.com/4and4/milo-server/internal/application/auth"
)

// InitOAuthProviders registers Goth providers and session store. Call once at startup.
func InitOAuthProviders(callbackBaseURL, sessionSecret string, googleClientID, googleClientSecret string) {
	if googleClientID != "" && googleClientSecret != "" {
		callbackURL := callbackBaseURL + "/users/auth/google/callback"
		goth.UseProviders(google.New(googleClientID, googleClientSecret, callbackURL, "profile", "email"))
	}
	if sessionSecret != "" {
		gothic.Store = sessions.NewCookieStore([]byte(sessionSecret))
	}
}

// OAuthBegin redirects to the OAuth provider. Provider from URL: /users/auth/{provider}.
func OAuthBegin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		if provider == "" {
			writeErr(w, http.StatusBadRequest, "provider required")
			return
		}
		if _, err := goth.GetProvider(provider); err != nil {
			writeErr(w, http.StatusBadRequest, "unknown provider")
			return
		}
		// Gothic expects provider in query
		r2 := r.Clone(r.Context())
		q := r2.URL.Query()
		q.Set("provider", provider)
		r2.URL.RawQuery = q.Encode()
		authURL, err := gothic.GetAuthURL(w, r2)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
	}
}

// Logout clears the OAuth session cookie and redirects home. Access
// tokens are stateless; clients drop theirs on logout.
func Logout(redirectURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = gothic.Logout(w, r)
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}
}

// OAuthCallback completes the provider flow, finds or creates the account
// and redirects to the frontend with the access token in the fragment.
func OAuthCallback(signIn *auth.OAuthSignIn, redirectURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		if provider == "" {
			writeErr(w, http.StatusBadRequest, "provider required")
			return
		}
		r2 := r.Clone(r.Context())
		q := r2.URL.Query()
		q.Set("provider", provider)
		r2.URL.RawQuery = q.Encode()
		gothUser, err := gothic.CompleteUserAuth(w, r2)
		if err != nil {
			http.Redirect(w, r, redirectURL+"?status=403", http.StatusTemporaryRedirect)
			return
		}
		result, err := signIn.Execute(r.Context(), auth.OAuthSignInInput{
			Provider:   provider,
			ProviderID: gothUser.UserID,
			Email:      SanitizeEmail(gothUser.Email),
			Name:       gothUser.Name,
		})
		if err != nil {
			http.Redirect(w, r, redirectURL+"?status=500", http.StatusTemporaryRedirect)
			return
		}
		http.Redirect(w, r, redirectURL+"#token="+url.QueryEscape(result.AccessToken), http.StatusTemporaryRedirect)
	}
}
