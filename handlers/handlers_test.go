package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"keep-notes/auth"
	"keep-notes/config"
	"keep-notes/middleware"
	"keep-notes/models"
	"keep-notes/store/memstore"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// env wires handlers over an in-memory store. Requests carry the caller in
// an X-Test-User header, which stands in for the auth gateway.
type env struct {
	mem      *memstore.Store
	tokens   *auth.TokenService
	revoker  *auth.MemoryRevoker
	notes    *NotesHandler
	accounts *AuthHandler
	router   chi.Router
	clock    time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tokens, err := auth.NewTokenService(&config.Config{SecretKey: "test-secret", Algorithm: "HS256"})
	require.NoError(t, err)

	e := &env{
		mem:     memstore.New(),
		tokens:  tokens,
		revoker: auth.NewMemoryRevoker(),
		clock:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	accounts := auth.NewAccounts(e.mem.Users(), tokens, auth.NewPasswordHasher(bcrypt.MinCost), 30*time.Minute)
	e.accounts = NewAuthHandler(accounts, e.revoker, discard)
	e.notes = NewNotesHandler(e.mem.Notes(), discard)
	e.notes.now = func() time.Time { return e.clock }

	for _, u := range []models.User{
		{ID: "ann", Name: "Ann", Email: "ann@x.com"},
		{ID: "bob", Name: "Bob", Email: "bob@x.com"},
	} {
		require.NoError(t, e.mem.Users().Create(context.Background(), u))
	}

	r := chi.NewRouter()
	r.Post("/auth/signup", e.accounts.Signup)
	r.Post("/auth/signin", e.accounts.Signin)
	r.Group(func(r chi.Router) {
		r.Use(e.asUser)
		r.Get("/auth/me", e.accounts.Me)
		r.Post("/auth/logout", e.accounts.Logout)
		r.Get("/notes", e.notes.List)
		r.Post("/notes", e.notes.Create)
		r.Get("/notes/{id}", e.notes.Get)
		r.Put("/notes/{id}", e.notes.Update)
		r.Delete("/notes/{id}", e.notes.Delete)
	})
	e.router = r
	return e
}

func (e *env) asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-Test-User")
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := e.mem.Users().GetByID(r.Context(), userID)
		if err != nil {
			http.Error(w, "unknown test user", http.StatusInternalServerError)
			return
		}
		claims := &auth.Claims{}
		claims.ID = "jti-" + userID
		claims.Subject = userID
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
		ctx := middleware.WithIdentity(r.Context(), middleware.Identity{User: user, Claims: claims})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (e *env) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
