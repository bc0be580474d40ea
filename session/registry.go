package session

import (
	"chat-rooms/domain"
	"maps"
)

// Registry holds the rooms known to the session and the messages received per room.
// It is owned by the manager loop and is not safe for concurrent use.
//
// Membership and logs are deliberately independent: a message may be logged for a
// room that no room-list notification announced yet.
type Registry struct {
	knownRooms domain.RoomSet
	rooms      map[domain.RoomID]*domain.Room
}

func NewRegistry() *Registry {
	return &Registry{
		knownRooms: domain.NewRoomSet(),
		rooms:      make(map[domain.RoomID]*domain.Room),
	}
}

// ReplaceRooms swaps the whole membership, the previous set is forgotten.
func (r *Registry) ReplaceRooms(rooms []domain.RoomID) {
	r.knownRooms = domain.NewRoomSet(rooms...)
}

// Record prepends the message to its room log, creating the log on the fly.
// Membership is left untouched.
func (r *Registry) Record(message domain.Message) {
	room, ok := r.rooms[message.Room]
	if !ok {
		room = domain.NewRoom(message.Room)
		r.rooms[message.Room] = room
	}
	room.PostMessage(message)
}

func (r *Registry) IsKnown(room domain.RoomID) bool {
	return r.knownRooms.Contains(room)
}

// Fill copies membership and logs into a snapshot.
func (r *Registry) Fill(state *domain.SessionState) {
	state.KnownRooms = maps.Clone(r.knownRooms)
	state.Logs = make(map[domain.RoomID]domain.RoomLog, len(r.rooms))
	for id, room := range r.rooms {
		state.Logs[id] = room.Log()
	}
}
