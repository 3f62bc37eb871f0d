package sqlite

import (
	"collab-editor-server/core"
	"context"
	"fmt"
	"time"

	"database/sql"
	stdlog "log"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type documentStore struct {
	db *sql.DB
}

func NewDocumentStore(dataSourceName string) core.DocumentStore {
	db, err := sql.Open("sqlite3", dataSourceName)

	if err != nil {
		stdlog.Fatal(err)
	}

	sts := `CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	_, err = db.Exec(sts)
	if err != nil {
		stdlog.Fatal(err)
	}

	return &documentStore{db}
}

func scanDocument(row interface{ Scan(...any) error }) (*core.Document, error) {
	var doc core.Document
	var createdAt, updatedAt int64
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	doc.CreatedAt = time.UnixMilli(createdAt)
	doc.UpdatedAt = time.UnixMilli(updatedAt)
	return &doc, nil
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := logrus.WithField("document_id", id)
	log.Debug("Retrieving document by ID")

	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, content, created_at, updated_at FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row)
	if err != nil {
		if err == sql.ErrNoRows {
			log.WithField("error", "document not found").Warn("Document with specified ID not found")
			return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
		}
		log.WithField("error", err).Error("Failed to retrieve document")
		return nil, err
	}

	log.Debug("Document retrieved successfully")
	return doc, nil
}

func (s *documentStore) Create(ctx context.Context, title string) (*core.Document, error) {
	now := time.Now()
	doc := core.Document{
		ID:        ulid.Make().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	log := logrus.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"title":       title,
	})

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		doc.ID, doc.Title, doc.Content, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		log.WithField("error", err).Error("Failed to create document")
		return nil, err
	}

	log.Info("Document created successfully")
	return &doc, nil
}

func (s *documentStore) Update(ctx context.Context, id string, title, content *string) (*core.Document, error) {
	log := logrus.WithField("document_id", id)

	query := "UPDATE documents SET updated_at = ?"
	args := []any{time.Now().UnixMilli()}
	if title != nil {
		query += ", title = ?"
		args = append(args, *title)
	}
	if content != nil {
		query += ", content = ?"
		args = append(args, *content)
	}
	query += " WHERE id = ?"
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.WithField("error", err).Error("Failed to update document")
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		log.WithField("error", "document not found").Warn("Document with specified ID not found")
		return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}

	return s.FindID(ctx, id)
}

func (s *documentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		logrus.WithField("document_id", id).WithField("error", err).Error("Failed to delete document")
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}

	return nil
}

func (s *documentStore) List(ctx context.Context) ([]core.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, content, created_at, updated_at FROM documents ORDER BY updated_at DESC, id ASC")
	if err != nil {
		logrus.WithField("error", err).Error("Failed to list documents")
		return nil, err
	}
	defer rows.Close()

	documents := make([]core.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, *doc)
	}

	return documents, rows.Err()
}
