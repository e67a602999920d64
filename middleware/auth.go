package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"keep-notes/auth"
	"keep-notes/models"
	"keep-notes/store"
)

var (
	ErrMissingHeader   = errors.New("missing authorization header")
	ErrMalformedHeader = errors.New("invalid authorization header")
	ErrUnauthenticated = errors.New("could not validate credentials")
)

type contextKey struct{}

// Identity is attached to the request context of every authenticated call.
type Identity struct {
	User   models.User
	Claims *auth.Claims
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// ExtractToken accepts exactly "Bearer <token>"; the scheme is matched
// case-insensitively.
func ExtractToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingHeader
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}

type Gateway struct {
	tokens  *auth.TokenService
	users   store.UserStore
	revoker auth.Revoker
	log     *slog.Logger
}

func NewGateway(tokens *auth.TokenService, users store.UserStore, revoker auth.Revoker, log *slog.Logger) *Gateway {
	return &Gateway{tokens: tokens, users: users, revoker: revoker, log: log}
}

// ResolveUser turns a raw token into its user. Every failure, whatever the
// cause, comes back as ErrUnauthenticated.
func (g *Gateway) ResolveUser(ctx context.Context, token string) (Identity, error) {
	claims, err := g.tokens.Validate(token)
	if err != nil {
		g.log.DebugContext(ctx, "token rejected", "error", err)
		return Identity{}, ErrUnauthenticated
	}

	if g.revoker != nil {
		revoked, err := g.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			g.log.ErrorContext(ctx, "revocation lookup failed", "error", err)
			return Identity{}, err
		}
		if revoked {
			g.log.DebugContext(ctx, "token revoked", "jti", claims.ID)
			return Identity{}, ErrUnauthenticated
		}
	}

	user, err := g.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		g.log.DebugContext(ctx, "token subject not found", "sub", claims.Subject)
		return Identity{}, ErrUnauthenticated
	}
	if err != nil {
		g.log.ErrorContext(ctx, "user lookup failed", "error", err)
		return Identity{}, err
	}
	return Identity{User: user, Claims: claims}, nil
}

// RequireAuth rejects requests without a valid bearer token before they
// reach the wrapped handler.
func (g *Gateway) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := ExtractToken(r.Header.Get("Authorization"))
		if err != nil {
			unauthorized(w, err)
			return
		}

		id, err := g.ResolveUser(r.Context(), token)
		if errors.Is(err, ErrUnauthenticated) {
			unauthorized(w, err)
			return
		}
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, err.Error())
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
