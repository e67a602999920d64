package handlers

import (
	"log/slog"
	"net/http"

	"keep-notes/auth"
	"keep-notes/middleware"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthHandler struct {
	accounts *auth.Accounts
	revoker  auth.Revoker
	log      *slog.Logger
}

func NewAuthHandler(accounts *auth.Accounts, revoker auth.Revoker, log *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, revoker: revoker, log: log}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	session, err := h.accounts.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.log.InfoContext(r.Context(), "user signed up", "user_id", session.User.ID)
	writeJSON(w, http.StatusCreated, session)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	session, err := h.accounts.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.log, middleware.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, id.User)
}

// Logout revokes the presented token until it would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.log, middleware.ErrUnauthenticated)
		return
	}
	if err := h.revoker.Revoke(r.Context(), id.Claims.ID, id.Claims.ExpiresAt.Time); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
