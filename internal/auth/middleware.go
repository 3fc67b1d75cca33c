package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aurumpos/aurumpos/internal/platform/httpx"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// Middleware wires authentication and authorization helpers for HTTP handlers.
type Middleware struct {
	Tokens *TokenStore
	Logger *slog.Logger
}

// Authenticate resolves the bearer token into a Principal on the request
// context. Requests without a valid token are rejected.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		principal, err := m.Tokens.Resolve(r.Context(), token)
		if err != nil {
			if m.Logger != nil && !errors.Is(err, shared.ErrInvalidCredentials) {
				m.Logger.Error("resolve token", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission ensures the principal holds the permission.
func (m Middleware) RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if !principal.HasPermission(string(perm)) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission "+string(perm))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole ensures the principal has exactly the given role.
func (m Middleware) RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil || principal.Role != string(role) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "requires role "+string(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
