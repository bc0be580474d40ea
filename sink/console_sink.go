package sink

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"
)

var _ contract.EventSink = (*Console)(nil)

// Console prints what happens in the session for a human reading a terminal.
type Console struct {
	mu   sync.Mutex
	out  io.Writer
	self domain.ClientID
}

func NewConsole(out io.Writer, self domain.ClientID) *Console {
	return &Console{out: out, self: self}
}

func (c *Console) Consume(_ context.Context, e event.DomainEvent) error {
	var line string
	switch evt := e.(type) {
	case event.ConnectionChanged:
		line = c.status(evt)
	case event.RoomsReplaced:
		rooms := make([]string, 0, len(evt.Rooms))
		for _, room := range evt.Rooms {
			rooms = append(rooms, string(room))
		}
		line = color.FgGray.Render("rooms: " + strings.Join(rooms, ", "))
	case event.MessageReceived:
		line = c.message(evt.Message)
	default:
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, line)
	return err
}

func (c *Console) status(evt event.ConnectionChanged) string {
	text := fmt.Sprintf("  ====== %s ======", evt.State)
	switch evt.State {
	case domain.StateConnected:
		return color.New(color.BgBlack, color.FgGreen).Render(text)
	case domain.StateConnecting:
		return color.New(color.BgBlack, color.FgYellow).Render(text)
	default:
		return color.New(color.BgBlack, color.FgRed).Render(text)
	}
}

func (c *Console) message(message domain.Message) string {
	author := message.DisplayName
	if author == "" {
		author = string(message.SenderClientID)
	}
	style := color.New(color.FgCyan)
	if message.SenderClientID == c.self {
		style = color.New(color.FgGreen, color.OpBold)
	}
	return fmt.Sprintf("[%s] %s: %s", message.Room, style.Render(author), message.Contents)
}
