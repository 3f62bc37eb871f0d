package websocket

import (
	"collab-editor-server/core"

	"github.com/sirupsen/logrus"
)

// presenceNotifier turns registry membership changes and typing signals
// into presence events for the other members of a room. It does not
// deduplicate, rate-limit, or expire typing state; a disconnect while
// typing is cleared on the client side by the user-left event.
type presenceNotifier struct{}

func (presenceNotifier) userJoined(members []Conn, userID string) {
	emitEach(members, "user-joined", userID)
}

func (presenceNotifier) userLeft(members []Conn, userID string) {
	emitEach(members, "user-left", userID)
}

func (presenceNotifier) userTyping(members []Conn, signal core.UserTyping) {
	emitEach(members, "user-typing", signal)
}

func emitEach(members []Conn, event string, args ...any) {
	for _, c := range members {
		if err := c.Emit(event, args...); err != nil {
			logrus.WithFields(logrus.Fields{
				"connection_id": c.ID(),
				"event":         event,
			}).WithError(err).Debug("Failed to emit event")
		}
	}
}
