package memory

import (
	"collab-editor-server/core"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	if store == nil {
		t.Fatal("NewDocumentStore() returned nil")
	}
}

func TestCreate_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc, err := store.Create(ctx, "Meeting notes")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if doc.ID == "" {
		t.Error("Create() returned empty ID")
	}

	// Verify the ID is a valid ULID format (26 characters)
	if len(doc.ID) != 26 {
		t.Errorf("Create() returned invalid ID length: got %d, want 26", len(doc.ID))
	}

	if doc.Title != "Meeting notes" {
		t.Errorf("Create() title mismatch: got %q, want %q", doc.Title, "Meeting notes")
	}

	if doc.Content != "" {
		t.Errorf("Create() should start with empty content, got %q", doc.Content)
	}

	if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestFindID_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "Draft")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	retrieved, err := store.FindID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}

	if retrieved == nil {
		t.Fatal("FindID() returned nil document")
	}

	if retrieved.Title != "Draft" {
		t.Errorf("FindID() title mismatch: got %q, want %q", retrieved.Title, "Draft")
	}
}

func TestFindID_NotFound(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	_, err := store.FindID(ctx, "nonexistent-id")
	if err == nil {
		t.Fatal("FindID() should fail for nonexistent document")
	}

	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindID() error should wrap core.ErrNotFound, got %v", err)
	}
}

func TestUpdate_Content(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "Draft")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	content := "<p>Hello</p>"
	updated, err := store.Update(ctx, created.ID, nil, &content)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if updated.Content != content {
		t.Errorf("Update() content mismatch: got %q, want %q", updated.Content, content)
	}

	if updated.Title != "Draft" {
		t.Errorf("Update() should not touch title: got %q", updated.Title)
	}

	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("Update() did not bump UpdatedAt")
	}
}

func TestUpdate_TitleOnly(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "Old title")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	content := "<p>body</p>"
	if _, err := store.Update(ctx, created.ID, nil, &content); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	title := "New title"
	updated, err := store.Update(ctx, created.ID, &title, nil)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if updated.Title != "New title" {
		t.Errorf("Update() title mismatch: got %q", updated.Title)
	}

	if updated.Content != "<p>body</p>" {
		t.Errorf("Update() should not touch content: got %q", updated.Content)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	content := "x"
	_, err := store.Update(ctx, "nonexistent-id", nil, &content)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update() error should wrap core.ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "Doomed")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := store.FindID(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindID() after Delete() should report not found, got %v", err)
	}

	if err := store.Delete(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() twice should report not found, got %v", err)
	}
}

func TestList_OrderedByUpdatedAt(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	first, err := store.Create(ctx, "first")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	second, err := store.Create(ctx, "second")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// Touch the first document so it becomes the most recently updated.
	time.Sleep(2 * time.Millisecond)
	content := "<p>touched</p>"
	if _, err := store.Update(ctx, first.ID, nil, &content); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	documents, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	if len(documents) != 2 {
		t.Fatalf("List() returned %d documents, want 2", len(documents))
	}

	if documents[0].ID != first.ID {
		t.Errorf("List() order wrong: got %q first, want %q", documents[0].ID, first.ID)
	}

	if documents[1].ID != second.ID {
		t.Errorf("List() order wrong: got %q second, want %q", documents[1].ID, second.ID)
	}
}

func TestList_Empty(t *testing.T) {
	store := NewDocumentStore()

	documents, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	if len(documents) != 0 {
		t.Errorf("List() on empty store returned %d documents", len(documents))
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			doc, err := store.Create(ctx, fmt.Sprintf("doc-%d", n))
			if err != nil {
				t.Errorf("Create() failed: %v", err)
				return
			}
			content := fmt.Sprintf("<p>%d</p>", n)
			if _, err := store.Update(ctx, doc.ID, nil, &content); err != nil {
				t.Errorf("Update() failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	documents, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	if len(documents) != 10 {
		t.Errorf("List() returned %d documents, want 10", len(documents))
	}
}
