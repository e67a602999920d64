// Package memstore keeps users and notes in process memory. It backs the
// tests and STORE=memory local runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"keep-notes/models"
	"keep-notes/store"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]models.User
	notes map[string]models.Note
}

func New() *Store {
	return &Store{
		users: make(map[string]models.User),
		notes: make(map[string]models.Note),
	}
}

// Users and Notes expose the store through the two store interfaces.
func (s *Store) Users() store.UserStore { return userStore{s} }
func (s *Store) Notes() store.NoteStore { return noteStore{s} }

// DeleteUser removes a user and every note it owns.
func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for noteID, n := range s.notes {
		if n.OwnerID == id {
			delete(s.notes, noteID)
		}
	}
}

type userStore struct{ s *Store }

func (u userStore) Create(_ context.Context, user models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	u.s.users[user.ID] = user
	return nil
}

func (u userStore) GetByID(_ context.Context, id string) (models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return user, nil
}

func (u userStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, user := range u.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

type noteStore struct{ s *Store }

// lookup is the shared id+owner predicate. Caller holds the lock.
func (n noteStore) lookup(id, ownerID string) (models.Note, bool) {
	note, ok := n.s.notes[id]
	if !ok || note.OwnerID != ownerID {
		return models.Note{}, false
	}
	return note, true
}

func (n noteStore) ListByOwner(_ context.Context, ownerID string) ([]models.Note, error) {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	notes := []models.Note{}
	for _, note := range n.s.notes {
		if note.OwnerID == ownerID {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

func (n noteStore) GetForOwner(_ context.Context, id, ownerID string) (models.Note, error) {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	note, ok := n.lookup(id, ownerID)
	if !ok {
		return models.Note{}, store.ErrNotFound
	}
	return note, nil
}

func (n noteStore) Create(_ context.Context, note models.Note) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if _, ok := n.s.users[note.OwnerID]; !ok {
		return store.ErrNotFound
	}
	n.s.notes[note.ID] = note
	return nil
}

func (n noteStore) UpdateForOwner(_ context.Context, id, ownerID, title, content string, now time.Time) (models.Note, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	note, ok := n.lookup(id, ownerID)
	if !ok {
		return models.Note{}, store.ErrNotFound
	}
	note.Title = title
	note.Content = content
	note.UpdatedAt = store.NextUpdatedAt(note.UpdatedAt, now)
	n.s.notes[id] = note
	return note, nil
}

func (n noteStore) DeleteForOwner(_ context.Context, id, ownerID string) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if _, ok := n.lookup(id, ownerID); !ok {
		return store.ErrNotFound
	}
	delete(n.s.notes, id)
	return nil
}
