package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := ZapRequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/journals", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "request completed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, "/api/journals", fields["path"])
	assert.Equal(t, "unmatched", fields["route"])
	assert.Equal(t, "POST", fields["method"])
	assert.NotContains(t, fields, "user_id")
}

func TestZapRequestLogger_RouteAndUser(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := chi.NewRouter()
	r.Use(ZapRequestLogger(zap.New(core)))
	r.With(NewAuthMiddleware(secret).RequireAuth).Get("/journals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tok := signed(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
		"sub": 7,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/journals/31", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(httptest.NewRecorder(), req)

	// Rejected before auth: no user on the line.
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/journals/31", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "request completed", entries[0].Message, "one message in every mode")

	authed := entries[0].ContextMap()
	assert.Equal(t, "/journals/{id}", authed["route"])
	assert.Equal(t, "/journals/31", authed["path"])
	assert.Equal(t, int64(7), authed["user_id"])
	assert.Equal(t, int64(http.StatusNoContent), authed["status"])

	anon := entries[1].ContextMap()
	assert.Equal(t, int64(http.StatusUnauthorized), anon["status"])
	assert.NotContains(t, anon, "user_id")
}
