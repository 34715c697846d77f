package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/terra-clan/intern-engine/internal/auth"
	"github.com/terra-clan/intern-engine/internal/storage"
)

// AuthMiddleware verifies bearer tokens and loads the account behind them
type AuthMiddleware struct {
	manager *auth.Manager
	repo    storage.Repository
}

// NewAuthMiddleware creates new auth middleware
func NewAuthMiddleware(manager *auth.Manager, repo storage.Repository) *AuthMiddleware {
	return &AuthMiddleware{manager: manager, repo: repo}
}

// Authenticate verifies the Authorization bearer token, resolves the
// user record and stores it in the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing_token", "provide Authorization header with Bearer token")
			return
		}

		userID, err := m.manager.VerifyToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid_token", "the provided token is not valid")
			return
		}

		user, err := m.repo.GetUserByID(r.Context(), userID)
		if err != nil {
			slog.Error("failed to look up authenticated user", "error", err, "user_id", userID)
			respondError(w, http.StatusInternalServerError, "internal_error", "authentication error")
			return
		}

		if user == nil {
			// Valid signature but the account is gone
			slog.Warn("token for deleted account", "user_id", userID, "remote_addr", r.RemoteAddr)
			respondError(w, http.StatusUnauthorized, "invalid_token", "the provided token is not valid")
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken pulls the token from the Authorization header.
// Websocket clients cannot set headers from browsers, so the mentor
// stream also accepts a token query parameter.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return r.URL.Query().Get("token")
}
