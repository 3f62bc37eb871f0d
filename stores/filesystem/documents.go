package filesystem

import (
	"collab-editor-server/core"
	"context"
	"encoding/json"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type documentStore struct {
	basePath string
}

func NewDocumentStore(basePath string) core.DocumentStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		stdlog.Fatalf("failed to create base directory: %v", err)
	}
	return &documentStore{basePath: basePath}
}

func (s *documentStore) documentPath(id string) string {
	return filepath.Join(s.basePath, id+".json")
}

func (s *documentStore) read(id string) (*core.Document, error) {
	data, err := os.ReadFile(s.documentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
		}
		return nil, err
	}

	var doc core.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *documentStore) write(doc *core.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(s.documentPath(doc.ID), data, 0644)
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := logrus.WithField("document_id", id)

	doc, err := s.read(id)
	if err != nil {
		log.WithError(err).Warn("Failed to retrieve document")
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
		"file_path":   s.documentPath(doc.ID),
	})

	if err := s.write(&doc); err != nil {
		log.WithError(err).Error("Failed to create document")
		return nil, err
	}

	log.Info("Document created successfully")
	return &doc, nil
}

func (s *documentStore) Update(ctx context.Context, id string, title, content *string) (*core.Document, error) {
	doc, err := s.read(id)
	if err != nil {
		return nil, err
	}

	if title != nil {
		doc.Title = *title
	}
	if content != nil {
		doc.Content = *content
	}
	doc.UpdatedAt = time.Now()

	if err := s.write(doc); err != nil {
		logrus.WithField("document_id", id).WithError(err).Error("Failed to update document")
		return nil, err
	}

	return doc, nil
}

func (s *documentStore) Delete(ctx context.Context, id string) error {
	err := os.Remove(s.documentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *documentStore) List(ctx context.Context) ([]core.Document, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	documents := make([]core.Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		doc, err := s.read(id)
		if err != nil {
			logrus.WithField("file", entry.Name()).WithError(err).Warn("Skipping unreadable document file")
			continue
		}
		documents = append(documents, *doc)
	}

	sort.Slice(documents, func(i, j int) bool {
		if documents[i].UpdatedAt.Equal(documents[j].UpdatedAt) {
			return documents[i].ID < documents[j].ID
		}
		return documents[i].UpdatedAt.After(documents[j].UpdatedAt)
	})

	return documents, nil
}
