// Package store is the persistence layer for users and their notes.
//
// Every note lookup takes the owner id as part of the query predicate, so a
// note that belongs to someone else is reported exactly like a note that
// does not exist.
package store

import (
	"context"
	"errors"
	"time"

	"keep-notes/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type NoteStore interface {
	// ListByOwner returns the owner's notes, most recently updated first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Note, error)
	GetForOwner(ctx context.Context, id, ownerID string) (models.Note, error)
	Create(ctx context.Context, note models.Note) error
	// UpdateForOwner replaces title and content. The stored updated_at
	// becomes now, or one microsecond past the previous value if now is
	// not later than it.
	UpdateForOwner(ctx context.Context, id, ownerID, title, content string, now time.Time) (models.Note, error)
	DeleteForOwner(ctx context.Context, id, ownerID string) error
}

// NextUpdatedAt returns the timestamp an update performed at now should
// record, given the previous updated_at.
func NextUpdatedAt(prev, now time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
