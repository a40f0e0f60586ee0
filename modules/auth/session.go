package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sid-047/reminderApp/domain/user"
)

// ErrNotLoggedIn is returned when a session operation needs a user and there is none.
var ErrNotLoggedIn = errors.New("not logged in")

// SessionStore persists the user of the local session.
type SessionStore interface {
	LoadUser(ctx context.Context) (*user.User, error)
	SaveUser(ctx context.Context, u user.User) error
	DeleteUser(ctx context.Context) error
}

// Session is the single-user login state of a local client.
type Session struct {
	provider IdentityProvider
	store    SessionStore
}

// NewSession creates a Session.
func NewSession(provider IdentityProvider, store SessionStore) *Session {
	return &Session{provider: provider, store: store}
}

// Login authenticates and records the user as the active session.
func (s *Session) Login(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.provider.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(ctx, *u); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return u, nil
}

// Register creates the user and records it as the active session.
func (s *Session) Register(ctx context.Context, email, password, name string) (*user.User, error) {
	u, err := s.provider.Register(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(ctx, *u); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return u, nil
}

// Current returns the session user or ErrNotLoggedIn.
func (s *Session) Current(ctx context.Context) (*user.User, error) {
	u, err := s.store.LoadUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// Logout forgets the session user. Logging out twice is not an error.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.DeleteUser(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
