package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mmynk/splitvision/internal/calculator"
	"github.com/mmynk/splitvision/internal/models"
	"github.com/mmynk/splitvision/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Save generates ID, title and timestamps", func(t *testing.T) {
		session := &models.Session{
			OwnerID: "user-1",
			Tax:     3,
			Total:   33,
			Items: []models.Item{
				{Name: "Pizza", Price: 20},
				{Name: "Beer", Price: 10},
			},
		}

		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if !strings.HasPrefix(session.ID, "rcpt_") {
			t.Errorf("Expected session ID with rcpt prefix, got %q", session.ID)
		}
		if !strings.Contains(session.Title, "(2 items)") {
			t.Errorf("Unexpected generated title: %q", session.Title)
		}
		if session.CreatedAt == 0 || session.UpdatedAt == 0 {
			t.Error("Expected timestamps to be set")
		}
		for i, item := range session.Items {
			if !strings.HasPrefix(item.ID, "item_") {
				t.Errorf("Item %d ID not generated: %q", i, item.ID)
			}
		}
	})

	t.Run("Load round-trips the whole session in order", func(t *testing.T) {
		original := &models.Session{
			OwnerID: "user-1",
			Title:   "Dinner",
			Tax:     4.5,
			Tip:     9,
			Total:   63.5,
			Items: []models.Item{
				{Name: "Steak", Price: 30, AssignedTo: []models.Assignment{{Name: "Zed", Weight: 1}, {Name: "Amy", Weight: 2}}},
				{Name: "Salad", Price: 20},
			},
			Messages: []models.Message{
				{Role: models.RoleUser, Content: "Zed and Amy split the steak", CreatedAt: 1},
				{Role: models.RoleAssistant, Content: "Calculated!", Alerts: []string{"no salad owner"}, CreatedAt: 2},
			},
			Payments: []models.Payment{{Name: "Amy", Amount: 63.5}},
		}
		if err := store.Save(ctx, original); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := store.Load(ctx, original.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if got.Title != "Dinner" || got.Tax != 4.5 || got.Tip != 9 || got.Total != 63.5 || got.OwnerID != "user-1" {
			t.Errorf("Header mismatch: %+v", got)
		}
		if !reflect.DeepEqual(got.Items, original.Items) {
			t.Errorf("Items mismatch:\n got %+v\nwant %+v", got.Items, original.Items)
		}
		if !reflect.DeepEqual(got.Messages, original.Messages) {
			t.Errorf("Messages mismatch:\n got %+v\nwant %+v", got.Messages, original.Messages)
		}
		if !reflect.DeepEqual(got.Payments, original.Payments) {
			t.Errorf("Payments mismatch: got %+v", got.Payments)
		}

		// Assignment order is what drives settlement order.
		settlement := calculator.CalculateSettlement(got.Items, got.Tax, got.Tip)
		if len(settlement) != 2 || settlement[0].Name != "Zed" || settlement[1].Name != "Amy" {
			t.Errorf("Unexpected settlement order: %+v", settlement)
		}
	})

	t.Run("Save replaces items and drops removed assignments", func(t *testing.T) {
		session := &models.Session{
			OwnerID: "user-1",
			Items: []models.Item{
				{Name: "Wings", Price: 12, AssignedTo: []models.Assignment{{Name: "A", Weight: 1}}},
				{Name: "Fries", Price: 5, AssignedTo: []models.Assignment{{Name: "B", Weight: 1}}},
			},
		}
		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		removedID := session.Items[0].ID

		session.Items = calculator.RemoveItem(session.Items, removedID)
		session.Items[0].AssignedTo = append(session.Items[0].AssignedTo, models.Assignment{Name: "C", Weight: 3})
		session.Tip = 2
		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("Second save failed: %v", err)
		}

		got, err := store.Load(ctx, session.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(got.Items) != 1 || got.Items[0].Name != "Fries" {
			t.Fatalf("Expected only Fries, got %+v", got.Items)
		}
		if len(got.Items[0].AssignedTo) != 2 {
			t.Errorf("Expected 2 assignments on Fries, got %+v", got.Items[0].AssignedTo)
		}
		if got.Tip != 2 {
			t.Errorf("Tip not updated: %v", got.Tip)
		}

		var orphans int
		if err := store.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM item_assignments WHERE item_id = ?", removedID,
		).Scan(&orphans); err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if orphans != 0 {
			t.Errorf("Expected removed item's assignments to be gone, found %d", orphans)
		}
	})

	t.Run("Load returns ErrNotFound for nonexistent session", func(t *testing.T) {
		_, err := store.Load(ctx, "rcpt_missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete removes the session", func(t *testing.T) {
		session := &models.Session{OwnerID: "user-2", Items: []models.Item{{Name: "Tea", Price: 3}}}
		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := store.Delete(ctx, session.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Load(ctx, session.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.Delete(ctx, session.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSQLiteStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := &models.Session{OwnerID: "owner", Title: "Older", Total: 10, CreatedAt: 100, Items: []models.Item{{Name: "A", Price: 10}}}
	newer := &models.Session{OwnerID: "owner", Title: "Newer", Total: 20, CreatedAt: 200}
	other := &models.Session{OwnerID: "someone-else", Title: "Other", CreatedAt: 300}
	for _, s := range []*models.Session{older, newer, other} {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := store.List(ctx, "owner")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(got))
	}
	if got[0].Title != "Newer" || got[1].Title != "Older" {
		t.Errorf("Expected newest first, got %q then %q", got[0].Title, got[1].Title)
	}
	if got[1].ItemCount != 1 || got[1].Total != 10 {
		t.Errorf("Unexpected summary: %+v", got[1])
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.DisplayName != "Alice" {
		t.Errorf("Unexpected user: %+v", byEmail)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("Unexpected user: %+v", byID)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other", "hash")); err == nil {
		t.Error("Expected duplicate email to fail")
	}
}
