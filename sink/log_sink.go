package sink

import (
	"chat-rooms/contract"
	"chat-rooms/domain/event"
	"context"
	"fmt"
	"log/slog"
)

var _ contract.EventSink = LogSink{}

type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (l LogSink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ConnectionChanged:
		l.log.InfoContext(ctx, "Connection changed", "state", evt.State.String(), "connected", evt.Connected)
	case event.RoomsReplaced:
		l.log.DebugContext(ctx, "Rooms replaced", "rooms", evt.Rooms)
	case event.MessageReceived:
		l.log.DebugContext(ctx, "Message received",
			"room", evt.RoomID(), "id", evt.Message.ID, "client_id", evt.Message.SenderClientID)
	default:
		l.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
	}
	return nil
}
