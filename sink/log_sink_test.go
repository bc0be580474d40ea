package sink

import (
	"bytes"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogSink_Consume(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewLogSink(log)

	req.NoError(s.Consume(context.Background(), event.ConnectionChanged{State: domain.StateConnected, Connected: true}))
	req.NoError(s.Consume(context.Background(), event.MessageReceived{Message: domain.Message{ID: "m1", Room: "general"}}))

	req.Contains(buf.String(), "state=connected")
	req.Contains(buf.String(), "room=general")
}
