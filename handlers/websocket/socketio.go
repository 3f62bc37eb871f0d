package websocket

import (
	"collab-editor-server/core"
	"context"
	"regexp"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// socketConn adapts a socket.io socket to the relay's Conn interface.
type socketConn struct {
	socket *socketio.Socket
}

func (c socketConn) ID() string {
	return string(c.socket.Id())
}

func (c socketConn) Emit(event string, args ...any) error {
	return c.socket.Emit(event, args...)
}

// SetupSocketIO wires the relay to a socket.io server speaking the
// editor's event protocol: join-document, text-change, cursor-move and
// typing from clients; document-content, text-update, cursor-update,
// user-typing, user-joined and user-left back out.
func SetupSocketIO(relay *Relay) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	localhostOrigin := regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)
	opts.SetCors(&types.Cors{
		Origin: []any{
			localhostOrigin,
		},
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}

		conn := socketConn{socket}
		logrus.WithField("connection_id", conn.ID()).Info("User connected")

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("join-document", func(datas ...any) {
			if len(datas) == 0 {
				return
			}
			documentID, ok := datas[0].(string)
			if !ok || documentID == "" {
				logrus.WithField("connection_id", conn.ID()).Warn("join-document without a document id")
				return
			}
			relay.HandleJoin(context.Background(), conn, documentID)
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("text-change", func(datas ...any) {
			data, ok := firstMap(datas)
			if !ok {
				return
			}
			documentID := stringField(data, "documentId")
			if documentID == "" {
				return
			}
			relay.HandleTextChange(conn, documentID, stringField(data, "content"), stringField(data, "userId"))
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("cursor-move", func(datas ...any) {
			data, ok := firstMap(datas)
			if !ok {
				return
			}
			documentID := stringField(data, "documentId")
			if documentID == "" {
				return
			}
			relay.HandleCursorMove(conn, core.CursorMove{
				DocumentID: documentID,
				Position:   data["position"],
				UserID:     stringField(data, "userId"),
			})
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("typing", func(datas ...any) {
			data, ok := firstMap(datas)
			if !ok {
				return
			}
			documentID := stringField(data, "documentId")
			if documentID == "" {
				return
			}
			isTyping, _ := data["isTyping"].(bool)
			relay.HandleTyping(conn, core.TypingSignal{
				DocumentID: documentID,
				IsTyping:   isTyping,
				UserID:     stringField(data, "userId"),
			})
		})

		socket.On("disconnect", func(datas ...any) {
			logrus.WithField("connection_id", conn.ID()).Info("User disconnected")
			relay.HandleDisconnect(conn)
		})
	})

	return srv
}

func firstMap(datas []any) (map[string]any, bool) {
	if len(datas) == 0 {
		return nil, false
	}
	data, ok := datas[0].(map[string]any)
	return data, ok
}

func stringField(data map[string]any, key string) string {
	v, _ := data[key].(string)
	return v
}
