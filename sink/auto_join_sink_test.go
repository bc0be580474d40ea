package sink

import (
	"bytes"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/mocks"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAutoJoin_JoinsOnEveryConnect(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	session := mocks.NewMockRoomSession(ctrl)

	// Given two configured rooms, they are joined on each connect
	session.EXPECT().Join(domain.RoomID("general")).Times(2)
	session.EXPECT().Join(domain.RoomID("random")).Times(2)

	autoJoin := NewAutoJoin(slog.Default(), session, "general", "random")
	ctx := context.Background()

	// When the session connects, drops and connects again
	req.NoError(autoJoin.Consume(ctx, event.ConnectionChanged{State: domain.StateConnecting}))
	req.NoError(autoJoin.Consume(ctx, event.ConnectionChanged{State: domain.StateConnected, Connected: true}))
	req.NoError(autoJoin.Consume(ctx, event.ConnectionChanged{State: domain.StateConnecting}))
	req.NoError(autoJoin.Consume(ctx, event.ConnectionChanged{State: domain.StateConnected, Connected: true}))

	// Then other events never trigger a join
	req.NoError(autoJoin.Consume(ctx, event.RoomsReplaced{Rooms: []domain.RoomID{"general"}}))
}

func TestConsole_Consume(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	console := NewConsole(&buf, "me")
	ctx := context.Background()

	req.NoError(console.Consume(ctx, event.MessageReceived{Message: domain.Message{
		Room: "general", SenderClientID: "other", DisplayName: "alice", Contents: "hello",
	}}))
	req.NoError(console.Consume(ctx, event.MessageReceived{Message: domain.Message{
		Room: "general", SenderClientID: "anon", Contents: "no name",
	}}))
	req.NoError(console.Consume(ctx, event.ConnectionChanged{State: domain.StateConnected, Connected: true}))

	out := buf.String()
	req.Contains(out, "[general]")
	req.Contains(out, "alice")
	req.Contains(out, "hello")
	req.Contains(out, "anon")
	req.Contains(out, "connected")
}
