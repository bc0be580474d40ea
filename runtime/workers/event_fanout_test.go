package workers

import (
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/mocks"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_Fanout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink1 := mocks.NewMockEventSink(ctrl)
	sink2 := mocks.NewMockEventSink(ctrl)

	evt := event.MessageReceived{Message: domain.Message{ID: "m1", Room: "general"}}

	// Given both sinks consume the event once, a failing sink does not stop the other
	sink1.EXPECT().Consume(gomock.Any(), evt).Return(errors.New("boom")).Times(1)
	sink2.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	fanout := NewEventFanout(log, nil, time.Second, sink1, sink2)

	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockEventSink(ctrl)

	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ event.DomainEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)

	fanout := NewEventFanout(slog.Default(), nil, 20*time.Millisecond, sink)

	start := time.Now()
	fanout.Fanout(context.Background(), event.RoomsReplaced{})
	req.Less(time.Since(start), time.Second)
}

func TestEventFanout_Run_InOrderUntilClosed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockEventSink(ctrl)

	events := make(chan event.DomainEvent, 3)
	first := event.ConnectionChanged{State: domain.StateConnected, Connected: true}
	second := event.RoomsReplaced{Rooms: []domain.RoomID{"general"}}
	gomock.InOrder(
		sink.EXPECT().Consume(gomock.Any(), first).Return(nil),
		sink.EXPECT().Consume(gomock.Any(), second).Return(nil),
	)
	events <- first
	events <- second
	close(events)

	// When the session closed its event channel, the worker is done
	err := NewEventFanout(slog.Default(), events, time.Second, sink).Run(context.Background())
	req.NoError(err)
}
