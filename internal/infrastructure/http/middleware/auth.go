package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/4and4/milo-server/internal/application/ports"
)

// Identity resolves the Bearer token into the caller's email. Requests
// without a valid token proceed as anonymous; read paths stay reachable
// and the handlers decide what anonymity may do.
type Identity struct {
	issuer ports.TokenIssuer
}

func NewIdentity(issuer ports.TokenIssuer) *Identity {
	return &Identity{issuer: issuer}
}

func (m *Identity) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			if email, _, err := m.issuer.ValidateAccessToken(tokenString); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), email))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects anonymous requests. Use after Identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
