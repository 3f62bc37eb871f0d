package memory

import (
	"collab-editor-server/core"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type documentStore struct {
	mu        sync.RWMutex
	documents map[string]core.Document
}

func NewDocumentStore() core.DocumentStore {
	return &documentStore{
		documents: make(map[string]core.Document),
	}
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := logrus.WithField("document_id", id)

	s.mu.RLock()
	doc, ok := s.documents[id]
	s.mu.RUnlock()

	if ok {
		log.Debug("Document retrieved successfully")
		return &doc, nil
	}

	log.WithField("error", "document not found").Warn("Document with specified ID not found")
	return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
}

func (s *documentStore) Create(ctx context.Context, title string) (*core.Document, error) {
	now := time.Now()
	doc := core.Document{
		ID:        ulid.Make().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.documents[doc.ID] = doc
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"title":       title,
	}).Info("Document created successfully")

	return &doc, nil
}

func (s *documentStore) Update(ctx context.Context, id string, title, content *string) (*core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}

	if title != nil {
		doc.Title = *title
	}
	if content != nil {
		doc.Content = *content
	}
	doc.UpdatedAt = time.Now()
	s.documents[id] = doc

	return &doc, nil
}

func (s *documentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}

	delete(s.documents, id)
	return nil
}

func (s *documentStore) List(ctx context.Context) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	documents := make([]core.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		documents = append(documents, doc)
	}

	sort.Slice(documents, func(i, j int) bool {
		if documents[i].UpdatedAt.Equal(documents[j].UpdatedAt) {
			return documents[i].ID < documents[j].ID
		}
		return documents[i].UpdatedAt.After(documents[j].UpdatedAt)
	})

	return documents, nil
}
