package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSeed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) == 0 {
		t.Fatal("no users seeded")
	}

	// Seeding again must not duplicate.
	if err := store.Seed(ctx); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	again, _ := store.ListUsers(ctx)
	if len(again) != len(users) {
		t.Errorf("Seed is not idempotent: %d then %d users", len(users), len(again))
	}
}

func TestNewsCRUD(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateNews(ctx, News{Title: "T", Body: "B", AuthorID: 1})
	if err != nil {
		t.Fatalf("CreateNews failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateNews did not assign an id")
	}
	if string(created.Comments) != "[]" {
		t.Errorf("Comments = %s, want []", created.Comments)
	}

	got, err := store.GetNews(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetNews failed: %v", err)
	}
	if got.Title != "T" || got.Body != "B" || got.AuthorID != 1 {
		t.Errorf("GetNews = %+v", got)
	}

	// Partial update: only the title.
	title := "T2"
	updated, err := store.UpdateNews(ctx, created.ID, NewsUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateNews failed: %v", err)
	}
	if updated.Title != "T2" || updated.Body != "B" {
		t.Errorf("partial update touched other fields: %+v", updated)
	}

	// Replace the comments array.
	comments := json.RawMessage(`[{"id": 1, "text": "hi", "user_id": 2}]`)
	updated, err = store.UpdateNews(ctx, created.ID, NewsUpdate{Comments: &comments})
	if err != nil {
		t.Fatalf("UpdateNews comments failed: %v", err)
	}
	if updated.Title != "T2" {
		t.Errorf("comments update touched title: %+v", updated)
	}
	if string(updated.Comments) != string(comments) {
		t.Errorf("Comments = %s", updated.Comments)
	}

	if err := store.DeleteNews(ctx, created.ID); err != nil {
		t.Fatalf("DeleteNews failed: %v", err)
	}
	if _, err := store.GetNews(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetNews after delete = %v, want ErrNotFound", err)
	}
	if err := store.DeleteNews(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteNews = %v, want ErrNotFound", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetUser(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(99) = %v, want ErrNotFound", err)
	}
}
