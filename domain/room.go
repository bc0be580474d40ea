package domain

import (
	"slices"

	"github.com/samber/lo"
)

type RoomID string

// RoomLog is newest-first: every arriving message is prepended.
// No capacity bound and no deduplication.
type RoomLog []Message

type Room struct {
	ID RoomID
	// stored oldest-first so that appends stay cheap
	messages []Message
}

func NewRoom(id RoomID) *Room {
	return &Room{
		ID:       id,
		messages: nil,
	}
}

func (r *Room) PostMessage(message Message) {
	r.messages = append(r.messages, message)
}

func (r *Room) Len() int {
	return len(r.messages)
}

// Log returns a newest-first copy of the room messages.
func (r *Room) Log() RoomLog {
	log := make(RoomLog, len(r.messages))
	copy(log, r.messages)
	slices.Reverse(log)
	return log
}

// RoomSet is the set of rooms announced by the last room-list notification.
type RoomSet map[RoomID]struct{}

func NewRoomSet(rooms ...RoomID) RoomSet {
	set := make(RoomSet, len(rooms))
	for _, room := range rooms {
		set[room] = struct{}{}
	}
	return set
}

func (s RoomSet) Contains(room RoomID) bool {
	_, ok := s[room]
	return ok
}

// Sorted returns the rooms in lexical order.
func (s RoomSet) Sorted() []RoomID {
	rooms := lo.Keys(s)
	slices.Sort(rooms)
	return rooms
}

func (s RoomSet) Clone() RoomSet {
	return NewRoomSet(lo.Keys(s)...)
}
