// Package auth issues and checks bearer tokens and owns the signup and
// signin flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"keep-notes/models"
	"keep-notes/store"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Session is what signup and signin hand back to the client.
type Session struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        models.User `json:"user"`
}

type Accounts struct {
	users  store.UserStore
	tokens *TokenService
	hasher PasswordHasher
	ttl    time.Duration
	now    func() time.Time
}

func NewAccounts(users store.UserStore, tokens *TokenService, hasher PasswordHasher, ttl time.Duration) *Accounts {
	return &Accounts{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Signup stores a new user and signs them in straight away. Emails are
// compared exactly, without case folding.
func (a *Accounts) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC().Truncate(time.Microsecond)
	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return a.session(user)
}

// Signin never says whether the email or the password was wrong.
func (a *Accounts) Signin(ctx context.Context, email, password string) (*Session, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !a.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a.session(user)
}

func (a *Accounts) session(user models.User) (*Session, error) {
	ttl := a.ttl
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	token, err := a.tokens.Issue(user.ID, ttl)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(ttl / time.Second),
		User:        user,
	}, nil
}
