package sink

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"context"
	"log/slog"
)

var _ contract.EventSink = (*AutoJoin)(nil)

// AutoJoin joins a fixed list of rooms every time the session becomes connected,
// so a reconnect restores the memberships the server forgot.
type AutoJoin struct {
	log     *slog.Logger
	session contract.RoomSession
	rooms   []domain.RoomID
}

func NewAutoJoin(log *slog.Logger, session contract.RoomSession, rooms ...domain.RoomID) *AutoJoin {
	return &AutoJoin{log: log, session: session, rooms: rooms}
}

func (a *AutoJoin) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.ConnectionChanged)
	if !ok || !evt.Connected {
		return nil
	}
	for _, room := range a.rooms {
		a.log.Debug("Joining room", "room", room)
		a.session.Join(room)
	}
	return nil
}
