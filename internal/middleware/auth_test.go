package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescueconnect/internal/domain"
	"rescueconnect/internal/middleware"
	"rescueconnect/pkg/auth"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func actorEcho(t *testing.T, got *domain.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFrom(r.Context())
		require.True(t, ok, "actor must be in context")
		*got = actor
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate_ValidToken_PutsActorInContext(t *testing.T) {
	jwtm := auth.NewJWTManager("secret", time.Hour)
	agencyID := uuid.New()
	token, err := jwtm.GenerateToken(agencyID.String(), string(domain.RoleAdmin))
	require.NoError(t, err)

	var got domain.Actor
	h := middleware.Authenticate(jwtm, newTestLogger())(actorEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, domain.Actor{AgencyID: agencyID, Role: domain.RoleAdmin}, got)
}

func TestAuthenticate_UnknownRole_DowngradedToMember(t *testing.T) {
	jwtm := auth.NewJWTManager("secret", time.Hour)
	agencyID := uuid.New()
	token, err := jwtm.GenerateToken(agencyID.String(), "superuser")
	require.NoError(t, err)

	var got domain.Actor
	h := middleware.Authenticate(jwtm, newTestLogger())(actorEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, domain.RoleMember, got.Role)
}

func TestAuthenticate_Rejects(t *testing.T) {
	jwtm := auth.NewJWTManager("secret", time.Hour)
	other := auth.NewJWTManager("other-secret", time.Hour)
	expired := auth.NewJWTManager("secret", -time.Minute)

	foreign, err := other.GenerateToken(uuid.NewString(), "member")
	require.NoError(t, err)
	stale, err := expired.GenerateToken(uuid.NewString(), "member")
	require.NoError(t, err)
	badAgency, err := jwtm.GenerateToken("not-a-uuid", "member")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer abc.def.ghi"},
		{"wrong key", "Bearer " + foreign},
		{"expired", "Bearer " + stale},
		{"agency not uuid", "Bearer " + badAgency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("next must not be called")
			})
			h := middleware.Authenticate(jwtm, newTestLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}
