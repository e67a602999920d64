package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"keep-notes/models"
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

func isMySQLError(err error, number uint16) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == number
}

type MySQLUserStore struct {
	db *sql.DB
}

func NewMySQLUserStore(db *sql.DB) *MySQLUserStore {
	return &MySQLUserStore{db: db}
}

func (s *MySQLUserStore) Create(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isMySQLError(err, mysqlDuplicateEntry) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MySQLUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *MySQLUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email = ?", email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

type MySQLNoteStore struct {
	db *sql.DB
}

func NewMySQLNoteStore(db *sql.DB) *MySQLNoteStore {
	return &MySQLNoteStore{db: db}
}

func (s *MySQLNoteStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, content, owner_id, created_at, updated_at FROM notes WHERE owner_id = ? ORDER BY updated_at DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (s *MySQLNoteStore) GetForOwner(ctx context.Context, id, ownerID string) (models.Note, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, content, owner_id, created_at, updated_at FROM notes WHERE id = ? AND owner_id = ?", id, ownerID)
	return scanNote(row)
}

func (s *MySQLNoteStore) Create(ctx context.Context, n models.Note) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (id, title, content, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		n.ID, n.Title, n.Content, n.OwnerID, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		// owner row vanished after the request was authenticated
		if isMySQLError(err, mysqlNoReferencedRow) {
			return ErrNotFound
		}
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *MySQLNoteStore) UpdateForOwner(ctx context.Context, id, ownerID, title, content string, now time.Time) (models.Note, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Note{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT id, title, content, owner_id, created_at, updated_at FROM notes WHERE id = ? AND owner_id = ? FOR UPDATE", id, ownerID)
	note, err := scanNote(row)
	if err != nil {
		return models.Note{}, err
	}

	note.Title = title
	note.Content = content
	note.UpdatedAt = NextUpdatedAt(note.UpdatedAt, now)

	if _, err := tx.ExecContext(ctx,
		"UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ? AND owner_id = ?",
		note.Title, note.Content, note.UpdatedAt, id, ownerID); err != nil {
		return models.Note{}, fmt.Errorf("update note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Note{}, fmt.Errorf("commit: %w", err)
	}
	return note, nil
}

func (s *MySQLNoteStore) DeleteForOwner(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNote(row *sql.Row) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, ErrNotFound
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("select note: %w", err)
	}
	return n, nil
}
