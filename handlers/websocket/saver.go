package websocket

import (
	"collab-editor-server/core"
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

const defaultSaveQueueSize = 256

type saveRequest struct {
	documentID string
	content    string
}

// Saver checkpoints document content in the background. The relay
// submits writes without waiting; completion is observed only for
// logging. Failed writes are not retried, the next edit's write is the
// de facto retry.
type Saver struct {
	store     core.DocumentStore
	queue     chan saveRequest
	done      chan struct{}
	closeOnce sync.Once
}

func NewSaver(store core.DocumentStore, queueSize int) *Saver {
	if queueSize <= 0 {
		queueSize = defaultSaveQueueSize
	}
	s := &Saver{
		store: store,
		queue: make(chan saveRequest, queueSize),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Saver) run() {
	defer close(s.done)
	for req := range s.queue {
		content := req.content
		if _, err := s.store.Update(context.Background(), req.documentID, nil, &content); err != nil {
			logrus.WithField("document_id", req.documentID).WithError(err).Warn("Failed to persist document content")
			continue
		}
		logrus.WithField("document_id", req.documentID).Debug("Document content persisted")
	}
}

// Enqueue submits a write without blocking. If the queue is full the
// write is dropped with a warning rather than stalling the broadcast
// path.
func (s *Saver) Enqueue(documentID, content string) {
	select {
	case s.queue <- saveRequest{documentID: documentID, content: content}:
	default:
		logrus.WithField("document_id", documentID).Warn("Persistence queue full, dropping write")
	}
}

// Close stops accepting writes and waits for queued ones to settle.
func (s *Saver) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	<-s.done
}
