package workers

import (
	"chat-rooms/contract"
	"chat-rooms/domain/event"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout broadcasts session events to in-process sinks.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries. Each sink sees events in the order the session emitted them.
// It is intended for side effects (UI, logs), never for session state.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent, sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{log: log, events: events, sinks: sinks, sinkTimeout: sinkTimeout}
}

// Run returns nil once the event channel is closed, i.e. the session was disposed.
func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed, stopping event fanout")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout hands the event to every sink, each bounded by the sink timeout.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Sink failed to consume event", "event", evt.Name(), "error", err)
		}
		cancel()
	}
}
