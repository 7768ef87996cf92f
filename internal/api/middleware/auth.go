package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/lanova-arcade/internal/api/apierr"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/services/auth"
)

type contextKey string

const playerContextKey contextKey = "player"

// Auth creates authentication middleware. The caller's identity comes from a
// bearer token issued by the loyalty backend.
func Auth(verifier auth.ServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			player, err := verifier.ValidateToken(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), player)))
		})
	}
}

// extractToken reads the bearer token. EventSource clients cannot set
// headers, so the access_token query parameter is accepted too.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("access_token")
}

// WithPlayer returns a context carrying the authenticated player
func WithPlayer(ctx context.Context, player *model.Player) context.Context {
	return context.WithValue(ctx, playerContextKey, player)
}

// GetPlayer returns the authenticated player from the request context
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// MustGetPlayer returns the authenticated player or panics
func MustGetPlayer(ctx context.Context) *model.Player {
	player := GetPlayer(ctx)
	if player == nil {
		panic("no player in context - auth middleware not applied?")
	}
	return player
}
