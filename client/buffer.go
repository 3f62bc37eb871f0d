// Package client holds the editor-side half of the sync protocol: a
// buffer that applies local keystrokes optimistically, tags outgoing
// changes with the connection id, and reconciles incoming broadcasts
// under the same last-write-wins rules the relay uses.
package client

import (
	"collab-editor-server/core"
	"sync"
	"time"
)

// DefaultTypingIdle is how long after the last local change the typing
// indicator switches off.
const DefaultTypingIdle = time.Second

// EmitFunc sends a named event to the server.
type EmitFunc func(event string, payload any)

// EditBuffer maintains the local view of one document. Local changes
// apply immediately without waiting for acknowledgment; a remote
// snapshot from another connection unconditionally replaces the local
// state, discarding any edits still in flight.
type EditBuffer struct {
	mu         sync.Mutex
	connID     string
	documentID string
	content    string
	typing     bool
	idle       time.Duration
	timer      *time.Timer
	timerGen   uint64
	emit       EmitFunc
}

func NewEditBuffer(connID, documentID string, idle time.Duration, emit EmitFunc) *EditBuffer {
	if idle <= 0 {
		idle = DefaultTypingIdle
	}
	return &EditBuffer{
		connID:     connID,
		documentID: documentID,
		idle:       idle,
		emit:       emit,
	}
}

// LocalChange applies a keystroke's result: the local state updates
// immediately, the typing indicator turns on with a reset idle timer,
// and the full new content goes to the server tagged with this
// connection's id.
func (b *EditBuffer) LocalChange(content string) {
	b.mu.Lock()
	b.content = content
	b.typing = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timerGen++
	gen := b.timerGen
	b.timer = time.AfterFunc(b.idle, func() { b.typingIdle(gen) })
	b.mu.Unlock()

	b.emit("typing", core.TypingSignal{
		DocumentID: b.documentID,
		IsTyping:   true,
		UserID:     b.connID,
	})
	b.emit("text-change", core.TextChange{
		DocumentID: b.documentID,
		Content:    content,
		UserID:     b.connID,
	})
}

// typingIdle fires when the idle timer elapses. The generation check
// drops callbacks already in flight when LocalChange rearmed the timer
// or Stop cancelled it. The emit stays under the lock so that once Stop
// returns, no further typing event can appear.
func (b *EditBuffer) typingIdle(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.timerGen {
		return
	}
	b.typing = false

	b.emit("typing", core.TypingSignal{
		DocumentID: b.documentID,
		IsTyping:   false,
		UserID:     b.connID,
	})
}

// ApplyRemote reconciles an incoming broadcast. An update tagged with
// this connection's own id is a self-echo and is discarded. Anything
// else overwrites the local state wholesale. Reports whether the update
// was applied.
func (b *EditBuffer) ApplyRemote(update core.TextUpdate) bool {
	if update.UserID == b.connID {
		return false
	}

	b.mu.Lock()
	b.content = update.Content
	b.mu.Unlock()
	return true
}

// ApplySnapshot installs the one-time document-content snapshot
// received on join.
func (b *EditBuffer) ApplySnapshot(content string) {
	b.mu.Lock()
	b.content = content
	b.mu.Unlock()
}

func (b *EditBuffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

func (b *EditBuffer) Typing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.typing
}

// Stop cancels the pending idle timer, if any. A timer callback that
// already fired but has not yet taken the lock will see a stale
// generation and emit nothing.
func (b *EditBuffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timerGen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
