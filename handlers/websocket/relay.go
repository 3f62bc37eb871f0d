package websocket

import (
	"collab-editor-server/core"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Relay fans out edits from one connection to every other member of the
// same document room and checkpoints each edit to the document store in
// the background. Replication is last-write-wins over full content
// snapshots: every text-update carries the complete document, and
// whichever edit the relay processes last overwrites the others.
//
// One mutex serializes all membership changes and broadcasts, making the
// relay the single ordering point per room. Persistence runs behind the
// saver queue and is never awaited on the broadcast path, so the
// persisted content can briefly trail what clients display.
type Relay struct {
	mu       sync.Mutex
	registry *Registry
	store    core.DocumentStore
	saver    *Saver
	presence presenceNotifier
}

func NewRelay(registry *Registry, store core.DocumentStore, saver *Saver) *Relay {
	return &Relay{
		registry: registry,
		store:    store,
		saver:    saver,
	}
}

// HandleJoin adds the connection to the document's room, sends the
// persisted content to the joiner only, and announces the join to the
// other members. A missing document or a failed fetch is a silent
// degrade: the joiner keeps its default empty state and no error event
// is sent.
func (r *Relay) HandleJoin(ctx context.Context, c Conn, documentID string) {
	log := logrus.WithFields(logrus.Fields{
		"connection_id": c.ID(),
		"document_id":   documentID,
	})

	r.mu.Lock()
	prevRoom, moved := r.registry.Join(c, documentID)
	var prevOthers []Conn
	if moved {
		prevOthers = r.registry.Others(prevRoom, c.ID())
	}
	r.mu.Unlock()

	if moved {
		r.presence.userLeft(prevOthers, c.ID())
	}

	log.Info("User joined document")

	// The fetch happens outside the relay lock so a slow store never
	// stalls broadcasts for other rooms.
	doc, err := r.store.FindID(ctx, documentID)

	// Membership may have changed during the fetch. Recipients are
	// resolved under the lock at emit time so nothing is delivered to a
	// connection that is no longer in the room, and a joiner that left
	// or moved on in the meantime gets no stale snapshot.
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.registry.RoomOf(c.ID()); !ok || room != documentID {
		log.Debug("Connection left the room during content fetch")
		return
	}

	if err != nil {
		log.WithError(err).Debug("No persisted content for joining connection")
	} else if err := c.Emit("document-content", doc.Content); err != nil {
		log.WithError(err).Debug("Failed to send document content to joiner")
	}

	r.presence.userJoined(r.registry.Others(documentID, c.ID()), c.ID())
}

// HandleTextChange broadcasts the full content snapshot to every other
// member of the room, tagged with the sender and a server-assigned
// timestamp, then queues a fire-and-forget persistence write. The
// broadcast is never delayed by or rolled back for a persistence
// failure.
func (r *Relay) HandleTextChange(c Conn, documentID, content, userID string) {
	r.mu.Lock()
	others := r.registry.Others(documentID, c.ID())
	update := core.TextUpdate{
		Content:   content,
		UserID:    userID,
		Timestamp: time.Now().UnixMilli(),
	}
	emitEach(others, "text-update", update)
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"connection_id": c.ID(),
		"document_id":   documentID,
		"recipients":    len(others),
	}).Debug("Broadcast text update")

	r.saver.Enqueue(documentID, content)
}

// HandleCursorMove relays a cursor position to the other members of the
// room. Cursor positions are ephemeral and never persisted.
func (r *Relay) HandleCursorMove(c Conn, move core.CursorMove) {
	r.mu.Lock()
	others := r.registry.Others(move.DocumentID, c.ID())
	update := core.CursorUpdate{
		UserID:    move.UserID,
		Position:  move.Position,
		Timestamp: time.Now().UnixMilli(),
	}
	emitEach(others, "cursor-update", update)
	r.mu.Unlock()
}

// HandleTyping forwards a typing signal to the other members of the
// room unmodified.
func (r *Relay) HandleTyping(c Conn, signal core.TypingSignal) {
	r.mu.Lock()
	others := r.registry.Others(signal.DocumentID, c.ID())
	r.mu.Unlock()

	r.presence.userTyping(others, core.UserTyping{
		UserID:   signal.UserID,
		IsTyping: signal.IsTyping,
	})
}

// HandleDisconnect removes the connection from its room and notifies
// the remaining members. It runs on every session termination,
// graceful or not.
func (r *Relay) HandleDisconnect(c Conn) {
	r.mu.Lock()
	roomID, remaining, ok := r.registry.Leave(c.ID())
	r.mu.Unlock()

	if !ok {
		return
	}

	logrus.WithFields(logrus.Fields{
		"connection_id": c.ID(),
		"document_id":   roomID,
	}).Info("User left document")

	r.presence.userLeft(remaining, c.ID())
}
