package event

import (
	"chat-rooms/domain"
)

// DomainEvent is emitted by the session after a state change was applied.
type DomainEvent interface {
	Name() string
}

type ConnectionChanged struct {
	State     domain.ConnectionState
	Connected bool
}

func (ConnectionChanged) Name() string { return "connection_changed" }

type RoomsReplaced struct {
	Rooms []domain.RoomID
}

func (RoomsReplaced) Name() string { return "rooms_replaced" }

type MessageReceived struct {
	Message domain.Message
}

func (MessageReceived) Name() string { return "message_received" }

func (m MessageReceived) RoomID() domain.RoomID {
	return m.Message.Room
}
