// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitvision/internal/models"
)

// ErrNotFound is returned when a session or user does not exist.
var ErrNotFound = errors.New("not found")

// SessionRepository loads and saves receipt sessions. The orchestrator holds
// no session state of its own; every request loads, mutates and saves.
type SessionRepository interface {
	// Load retrieves a session with its items, assignments, transcript and
	// payments. Returns an error wrapping ErrNotFound if it does not exist.
	Load(ctx context.Context, sessionID string) (*models.Session, error)

	// Save inserts or replaces the whole session atomically.
	// Items or assignment entries missing from the session are deleted.
	Save(ctx context.Context, session *models.Session) error

	// List returns the owner's sessions, newest first.
	List(ctx context.Context, ownerID string) ([]models.SessionSummary, error)

	// Delete removes a session and everything that belongs to it.
	// Returns an error wrapping ErrNotFound if it does not exist.
	Delete(ctx context.Context, sessionID string) error
}

// UserStore persists registered accounts.
type UserStore interface {
	// CreateUser inserts a user. Email must be unique.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return an error wrapping ErrNotFound
	// when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines everything the service layer needs from a backend.
// This abstraction allows swapping storage backends (SQLite, bbolt)
// without changing the service layer.
type Store interface {
	SessionRepository
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
