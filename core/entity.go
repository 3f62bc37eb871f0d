package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by DocumentStore implementations when no
// document exists for the requested id.
var ErrNotFound = errors.New("document not found")

type (
	Document struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// DocumentStore is the durable document store. Content is always a
	// complete snapshot of the document markup, never a diff.
	DocumentStore interface {
		FindID(ctx context.Context, id string) (*Document, error)
		Create(ctx context.Context, title string) (*Document, error)
		// Update overwrites the given fields and bumps UpdatedAt. Nil
		// fields are left untouched.
		Update(ctx context.Context, id string, title, content *string) (*Document, error)
		Delete(ctx context.Context, id string) error
		// List returns all documents, most recently updated first.
		List(ctx context.Context) ([]Document, error)
	}
)

// Wire payloads exchanged over the socket connection. Field names match
// the browser client's event payloads.
type (
	TextChange struct {
		DocumentID string `json:"documentId"`
		Content    string `json:"content"`
		UserID     string `json:"userId"`
	}

	TextUpdate struct {
		Content   string `json:"content"`
		UserID    string `json:"userId"`
		Timestamp int64  `json:"timestamp"`
	}

	CursorMove struct {
		DocumentID string `json:"documentId"`
		Position   any    `json:"position"`
		UserID     string `json:"userId"`
	}

	CursorUpdate struct {
		UserID    string `json:"userId"`
		Position  any    `json:"position"`
		Timestamp int64  `json:"timestamp"`
	}

	TypingSignal struct {
		DocumentID string `json:"documentId"`
		IsTyping   bool   `json:"isTyping"`
		UserID     string `json:"userId"`
	}

	UserTyping struct {
		UserID   string `json:"userId"`
		IsTyping bool   `json:"isTyping"`
	}
)
