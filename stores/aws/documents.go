package aws

import (
	"bytes"
	"collab-editor-server/core"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "documents/"

type documentStore struct {
	s3Client *s3.Client
	bucket   string
}

func NewDocumentStore(bucketName string) core.DocumentStore {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		stdlog.Fatalf("unable to load SDK config, %v", err)
	}

	return &documentStore{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucketName,
	}
}

func objectKey(id string) string {
	return keyPrefix + id + ".json"
}

func (s *documentStore) get(ctx context.Context, id string) (*core.Document, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("document with id %s: %w", id, core.ErrNotFound)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document data: %v", err)
	}

	var doc core.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %v", id, err)
	}
	return &doc, nil
}

func (s *documentStore) put(ctx context.Context, doc *core.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(doc.ID)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload document: %v", err)
	}
	return nil
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := logrus.WithField("document_id", id)

	doc, err := s.get(ctx, id)
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

	if err := s.put(ctx, &doc); err != nil {
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
	doc, err := s.get(ctx, id)
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

	if err := s.put(ctx, doc); err != nil {
		logrus.WithField("document_id", id).WithError(err).Error("Failed to update document")
		return nil, err
	}

	return doc, nil
}

func (s *documentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(id)),
	})
	if err != nil {
		logrus.WithField("document_id", id).WithError(err).Error("Failed to delete document")
		return err
	}

	return nil
}

func (s *documentStore) List(ctx context.Context) ([]core.Document, error) {
	output, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to list documents")
		return nil, err
	}

	documents := make([]core.Document, 0, len(output.Contents))
	for _, object := range output.Contents {
		if object.Key == nil {
			continue
		}

		resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    object.Key,
		})
		if err != nil {
			logrus.WithField("key", *object.Key).WithError(err).Warn("Skipping unreadable document object")
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			logrus.WithField("key", *object.Key).WithError(err).Warn("Skipping unreadable document object")
			continue
		}

		var doc core.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			logrus.WithField("key", *object.Key).WithError(err).Warn("Skipping unparseable document object")
			continue
		}
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
