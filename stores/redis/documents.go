package redis

import (
	"collab-editor-server/core"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const documentsByUpdatedKey = "documents:by_updated"

type documentStore struct {
	rdb *redis.Client
}

func NewDocumentStore(addr string) core.DocumentStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &documentStore{rdb: rdb}
}

// NewDocumentStoreWithClient wires an existing client, used by tests.
func NewDocumentStoreWithClient(rdb *redis.Client) core.DocumentStore {
	return &documentStore{rdb: rdb}
}

func documentKey(id string) string {
	return "document:" + id
}

func parseMilli(fields map[string]string, key string) time.Time {
	ms, err := strconv.ParseInt(fields[key], 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := logrus.WithField("document_id", id)

	fields, err := s.rdb.HGetAll(ctx, documentKey(id)).Result()
	if err != nil {
		log.WithError(err).Error("Failed to retrieve document")
		return nil, err
	}
	if len(fields) == 0 {
		log.WithField("error", "document not found").Warn("Document with specified ID not found")
		return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}

	doc := core.Document{
		ID:        id,
		Title:     fields["title"],
		Content:   fields["content"],
		CreatedAt: parseMilli(fields, "created_at"),
		UpdatedAt: parseMilli(fields, "updated_at"),
	}

	log.Debug("Document retrieved successfully")
	return &doc, nil
}

func (s *documentStore) Create(ctx context.Context, title string) (*core.Document, error) {
	now := time.Now()
	doc := core.Document{
		ID:        ulid.Make().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx := s.rdb.TxPipeline()
	tx.HSet(ctx, documentKey(doc.ID),
		"title", doc.Title,
		"content", doc.Content,
		"created_at", now.UnixMilli(),
		"updated_at", now.UnixMilli())
	tx.ZAdd(ctx, documentsByUpdatedKey, redis.Z{Score: float64(now.UnixMilli()), Member: doc.ID})
	if _, err := tx.Exec(ctx); err != nil {
		logrus.WithField("document_id", doc.ID).WithError(err).Error("Failed to create document")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"title":       title,
	}).Info("Document created successfully")

	return &doc, nil
}

func (s *documentStore) Update(ctx context.Context, id string, title, content *string) (*core.Document, error) {
	exists, err := s.rdb.Exists(ctx, documentKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}

	now := time.Now()
	values := []any{"updated_at", now.UnixMilli()}
	if title != nil {
		values = append(values, "title", *title)
	}
	if content != nil {
		values = append(values, "content", *content)
	}

	tx := s.rdb.TxPipeline()
	tx.HSet(ctx, documentKey(id), values...)
	tx.ZAdd(ctx, documentsByUpdatedKey, redis.Z{Score: float64(now.UnixMilli()), Member: id})
	if _, err := tx.Exec(ctx); err != nil {
		logrus.WithField("document_id", id).WithError(err).Error("Failed to update document")
		return nil, err
	}

	return s.FindID(ctx, id)
}

func (s *documentStore) Delete(ctx context.Context, id string) error {
	removed, err := s.rdb.Del(ctx, documentKey(id)).Result()
	if err != nil {
		logrus.WithField("document_id", id).WithError(err).Error("Failed to delete document")
		return err
	}
	if removed == 0 {
		return fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}

	return s.rdb.ZRem(ctx, documentsByUpdatedKey, id).Err()
}

func (s *documentStore) List(ctx context.Context) ([]core.Document, error) {
	ids, err := s.rdb.ZRevRange(ctx, documentsByUpdatedKey, 0, -1).Result()
	if err != nil {
		logrus.WithError(err).Error("Failed to list documents")
		return nil, err
	}

	documents := make([]core.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.FindID(ctx, id)
		if err != nil {
			// The sorted set can briefly reference a deleted document.
			logrus.WithField("document_id", id).WithError(err).Warn("Skipping unreadable document")
			continue
		}
		documents = append(documents, *doc)
	}

	return documents, nil
}
