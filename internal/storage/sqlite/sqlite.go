// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitvision/internal/ids"
	"github.com/mmynk/splitvision/internal/models"
	"github.com/mmynk/splitvision/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a session. Items, assignment entries, messages
// and payments are rewritten in one transaction, so an item dropped from
// the session disappears together with its assignments.
func (s *SQLiteStore) Save(ctx context.Context, session *models.Session) error {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, owner_id, title, tax, tip, total, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			tax = excluded.tax,
			tip = excluded.tip,
			total = excluded.total,
			updated_at = excluded.updated_at`,
		session.ID, session.OwnerID, session.Title, session.Tax, session.Tip, session.Total,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	if err := deleteChildren(ctx, tx, session.ID); err != nil {
		return err
	}

	for i := range session.Items {
		item := &session.Items[i]
		if item.ID == "" {
			item.ID = ids.NewItem()
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (id, session_id, position, name, price) VALUES (?, ?, ?, ?, ?)",
			item.ID, session.ID, i, item.Name, item.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for j, a := range item.AssignedTo {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, position, name, weight) VALUES (?, ?, ?, ?)",
				item.ID, j, a.Name, a.Weight,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	for i := range session.Messages {
		msg := &session.Messages[i]
		if msg.ID == "" {
			msg.ID = ids.NewMessage()
		}

		var alerts any
		if len(msg.Alerts) > 0 {
			data, err := json.Marshal(msg.Alerts)
			if err != nil {
				return fmt.Errorf("failed to marshal alerts: %w", err)
			}
			alerts = string(data)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO messages (id, session_id, position, role, content, alerts, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			msg.ID, session.ID, i, string(msg.Role), msg.Content, alerts, msg.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	for i, p := range session.Payments {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO payments (session_id, position, name, amount) VALUES (?, ?, ?, ?)",
			session.ID, i, p.Name, p.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, sessionID string) error {
	statements := []string{
		"DELETE FROM item_assignments WHERE item_id IN (SELECT id FROM items WHERE session_id = ?)",
		"DELETE FROM items WHERE session_id = ?",
		"DELETE FROM messages WHERE session_id = ?",
		"DELETE FROM payments WHERE session_id = ?",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, sessionID); err != nil {
			return fmt.Errorf("failed to clear session children: %w", err)
		}
	}
	return nil
}

// Load retrieves a session by ID, including items, assignments, messages
// and payments in their stored order.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*models.Session, error) {
	session := &models.Session{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, title, tax, tip, total, created_at, updated_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&session.ID, &session.OwnerID, &session.Title, &session.Tax, &session.Tip, &session.Total,
		&session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Items, err = s.loadItems(ctx, sessionID); err != nil {
		return nil, err
	}
	for i := range session.Items {
		if session.Items[i].AssignedTo, err = s.loadAssignments(ctx, session.Items[i].ID); err != nil {
			return nil, err
		}
	}
	if session.Messages, err = s.loadMessages(ctx, sessionID); err != nil {
		return nil, err
	}
	if session.Payments, err = s.loadPayments(ctx, sessionID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SQLiteStore) loadItems(ctx context.Context, sessionID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price FROM items WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) loadAssignments(ctx context.Context, itemID string) ([]models.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, weight FROM item_assignments WHERE item_id = ? ORDER BY position",
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.Name, &a.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

func (s *SQLiteStore) loadMessages(ctx context.Context, sessionID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, role, content, alerts, created_at FROM messages WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var (
			msg    models.Message
			role   string
			alerts sql.NullString
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &alerts, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = models.Role(role)
		if alerts.Valid {
			if err := json.Unmarshal([]byte(alerts.String), &msg.Alerts); err != nil {
				return nil, fmt.Errorf("failed to decode alerts: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

func (s *SQLiteStore) loadPayments(ctx context.Context, sessionID string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, amount FROM payments WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.Name, &p.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// List returns summaries of the owner's sessions, newest first.
func (s *SQLiteStore) List(ctx context.Context, ownerID string) ([]models.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.total, s.created_at,
			(SELECT COUNT(*) FROM items i WHERE i.session_id = s.id)
		FROM sessions s
		WHERE s.owner_id = ?
		ORDER BY s.created_at DESC, s.id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []models.SessionSummary
	for rows.Next() {
		var sum models.SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Total, &sum.CreatedAt, &sum.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return summaries, nil
}

// Delete removes a session. Child rows go with it via ON DELETE CASCADE.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	return nil
}
