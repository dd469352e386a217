package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"rescueconnect/internal/domain"
	"rescueconnect/pkg/auth"

	"github.com/google/uuid"
)

type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type actorKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// Authenticate resolves the bearer token into a domain.Actor; requests
// without a valid token stop here with 401.
func Authenticate(tokens TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(raw))
			if err != nil {
				logger.Warn("token rejected", slog.String("remote", r.RemoteAddr), slog.String("error", err.Error()))
				unauthorized(w, "invalid token")
				return
			}

			agencyID, err := uuid.Parse(claims.AgencyID)
			if err != nil {
				logger.Warn("token carries bad agency id", slog.String("agency_id", claims.AgencyID))
				unauthorized(w, "invalid token")
				return
			}

			role := domain.Role(claims.Role)
			if role != domain.RoleAdmin {
				role = domain.RoleMember
			}

			ctx := WithActor(r.Context(), domain.Actor{AgencyID: agencyID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer realm="rescueconnect"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
