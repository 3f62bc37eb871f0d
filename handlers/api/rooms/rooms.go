package rooms

import (
	"net/http"
	"sort"

	"github.com/go-chi/render"
)

type RoomInfo struct {
	ID    string `json:"id"`
	Users int    `json:"users"`
}

// Lister reports the active rooms and their member counts.
type Lister interface {
	Rooms() map[string]int
}

// HandleList returns the active rooms, busiest first
func HandleList(registry Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeRooms := registry.Rooms()
		roomList := make([]RoomInfo, 0, len(activeRooms))
		for id, count := range activeRooms {
			roomList = append(roomList, RoomInfo{ID: id, Users: count})
		}

		sort.Slice(roomList, func(i, j int) bool {
			if roomList[i].Users == roomList[j].Users {
				return roomList[i].ID < roomList[j].ID
			}
			return roomList[i].Users > roomList[j].Users
		})

		render.JSON(w, r, roomList)
	}
}
