package websocket

import (
	"sort"
	"sync"
)

// Conn is one live client connection. The socket.io socket satisfies it
// in production; tests substitute fakes.
type Conn interface {
	ID() string
	Emit(event string, args ...any) error
}

// Registry tracks which connection is joined to which document room. A
// connection belongs to at most one room at a time. Rooms exist only
// while they have members; the entry for a room is dropped when its last
// member leaves.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]Conn
	byConn map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]map[string]Conn),
		byConn: make(map[string]string),
	}
}

// Join registers the connection under the room. Calling Join twice with
// the same pair is a no-op. If the connection was in a different room it
// is moved atomically; the previous room is returned so the caller can
// notify its remaining members.
func (r *Registry) Join(c Conn, roomID string) (prevRoom string, moved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connID := c.ID()
	current, joined := r.byConn[connID]
	if joined && current == roomID {
		return "", false
	}

	if joined {
		r.removeLocked(connID, current)
		prevRoom = current
		moved = true
	}

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]Conn)
		r.rooms[roomID] = members
	}
	members[connID] = c
	r.byConn[connID] = roomID

	return prevRoom, moved
}

// Leave removes the connection from whatever room it belongs to and
// reports the room and its remaining members. No-op if the connection
// is not joined anywhere.
func (r *Registry) Leave(connID string) (roomID string, remaining []Conn, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok = r.byConn[connID]
	if !ok {
		return "", nil, false
	}

	r.removeLocked(connID, roomID)
	return roomID, r.othersLocked(roomID, connID), true
}

func (r *Registry) removeLocked(connID, roomID string) {
	delete(r.byConn, connID)
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// RoomOf reports which room the connection currently belongs to.
func (r *Registry) RoomOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.byConn[connID]
	return roomID, ok
}

// MembersOf returns the connection ids currently in the room, sorted for
// deterministic iteration.
func (r *Registry) MembersOf(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms[roomID]))
	for id := range r.rooms[roomID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Others returns every current member of the room except the given
// connection.
func (r *Registry) Others(roomID, exceptID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.othersLocked(roomID, exceptID)
}

func (r *Registry) othersLocked(roomID, exceptID string) []Conn {
	members := r.rooms[roomID]
	others := make([]Conn, 0, len(members))
	for id, c := range members {
		if id != exceptID {
			others = append(others, c)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].ID() < others[j].ID() })
	return others
}

// Rooms returns room ids with their current member counts.
func (r *Registry) Rooms() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make(map[string]int, len(r.rooms))
	for id, members := range r.rooms {
		rooms[id] = len(members)
	}
	return rooms
}
