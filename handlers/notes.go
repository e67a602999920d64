package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"keep-notes/middleware"
	"keep-notes/models"
	"keep-notes/store"
)

type noteRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"maxbytes=65535"`
}

type NotesHandler struct {
	notes store.NoteStore
	log   *slog.Logger
	now   func() time.Time
}

func NewNotesHandler(notes store.NoteStore, log *slog.Logger) *NotesHandler {
	return &NotesHandler{notes: notes, log: log, now: time.Now}
}

// ownerID reads the caller from the context; RequireAuth guarantees it is
// set on every route these handlers are mounted on.
func ownerID(r *http.Request) (string, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	return id.User.ID, ok
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, r, h.log, middleware.ErrUnauthenticated)
		return
	}
	notes, err := h.notes.ListByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Note{"notes": notes})
}

func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, r, h.log, middleware.ErrUnauthenticated)
		return
	}
	note, err := h.notes.GetForOwner(r.Context(), chi.URLParam(r, "id"), owner)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, r, h.log, middleware.ErrUnauthenticated)
		return
	}
	var req noteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	now := h.now().UTC().Truncate(time.Microsecond)
	note := models.Note{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.notes.Create(r.Context(), note); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, r, h.log, middleware.ErrUnauthenticated)
		return
	}
	var req noteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	note, err := h.notes.UpdateForOwner(r.Context(), chi.URLParam(r, "id"), owner, req.Title, req.Content, h.now())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, r, h.log, middleware.ErrUnauthenticated)
		return
	}
	if err := h.notes.DeleteForOwner(r.Context(), chi.URLParam(r, "id"), owner); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
