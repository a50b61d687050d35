// Package bolt provides a bbolt-backed implementation of the storage.Store
// interface. Sessions and users are stored as JSON documents.
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/mmynk/splitvision/internal/ids"
	"github.com/mmynk/splitvision/internal/models"
	"github.com/mmynk/splitvision/internal/storage"
)

var (
	sessionsBucket     = []byte("sessions")
	usersBucket        = []byte("users")
	usersByEmailBucket = []byte("users_by_email")
)

// Ensure BoltStore implements storage.Store
var _ storage.Store = (*BoltStore)(nil)

// BoltStore implements storage.Store using bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// New opens (or creates) the database file and its buckets.
func New(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{sessionsBucket, usersBucket, usersByEmailBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (b *BoltStore) Close() error {
	return b.db.Close()
}

// Save writes the whole session document, replacing any previous version.
func (b *BoltStore) Save(_ context.Context, session *models.Session) error {
	now := time.Now().Unix()
	if session.ID == "" {
		session.ID = ids.NewSession()
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = now
	}
	if session.Title == "" {
		session.Title = storage.GenerateTitle(session)
	}
	session.UpdatedAt = now
	for i := range session.Items {
		if session.Items[i].ID == "" {
			session.Items[i].ID = ids.NewItem()
		}
	}
	for i := range session.Messages {
		if session.Messages[i].ID == "" {
			session.Messages[i].ID = ids.NewMessage()
		}
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(session.ID), data)
	})
}

// Load retrieves a session by ID.
func (b *BoltStore) Load(_ context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionsBucket).Get([]byte(sessionID))
		if data == nil {
			return fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
		}
		if err := json.Unmarshal(data, &session); err != nil {
			return fmt.Errorf("unmarshaling session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns the owner's session summaries, newest first.
func (b *BoltStore) List(_ context.Context, ownerID string) ([]models.SessionSummary, error) {
	var summaries []models.SessionSummary
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).ForEach(func(_, v []byte) error {
			var session models.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return fmt.Errorf("unmarshaling session: %w", err)
			}
			if session.OwnerID == ownerID {
				summaries = append(summaries, session.Summary())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt != summaries[j].CreatedAt {
			return summaries[i].CreatedAt > summaries[j].CreatedAt
		}
		return summaries[i].ID > summaries[j].ID
	})
	return summaries, nil
}

// Delete removes a session document.
func (b *BoltStore) Delete(_ context.Context, sessionID string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sessionsBucket)
		if bucket.Get([]byte(sessionID)) == nil {
			return fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
		}
		return bucket.Delete([]byte(sessionID))
	})
}

// CreateUser stores a user and indexes it by email.
func (b *BoltStore) CreateUser(_ context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		byEmail := tx.Bucket(usersByEmailBucket)
		if existing := byEmail.Get([]byte(user.Email)); existing != nil && !bytes.Equal(existing, []byte(user.ID)) {
			return fmt.Errorf("email %s already registered", user.Email)
		}
		if err := tx.Bucket(usersBucket).Put([]byte(user.ID), data); err != nil {
			return err
		}
		return byEmail.Put([]byte(user.Email), []byte(user.ID))
	})
}

// GetUserByEmail looks the user up through the email index.
func (b *BoltStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	var user *models.User
	err := b.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(usersByEmailBucket).Get([]byte(email))
		if id == nil {
			return fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
		}
		var err error
		user, err = getUser(tx, string(id))
		return err
	})
	return user, err
}

// GetUserByID retrieves a user by ID.
func (b *BoltStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	var user *models.User
	err := b.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = getUser(tx, id)
		return err
	})
	return user, err
}

func getUser(tx *bbolt.Tx, id string) (*models.User, error) {
	data := tx.Bucket(usersBucket).Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshaling user: %w", err)
	}
	return &user, nil
}
