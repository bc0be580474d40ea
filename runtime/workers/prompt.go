package workers

import (
	"bufio"
	"chat-rooms/contract"
	"chat-rooms/domain"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

var _ contract.Worker = (*PromptWorker)(nil)

const promptHelp = `commands:
  /join <room>   join a room and make it current
  /room <room>   switch the current room
  /rooms         list known rooms
  /history       show the current room timeline
  /reconnect     drop and re-open the connection
  /quit          leave
anything else is sent to the current room`

// PromptWorker turns lines typed by the user into session commands.
type PromptWorker struct {
	log     *slog.Logger
	session contract.RoomSession
	in      io.Reader
	out     io.Writer
	current domain.RoomID
	quit    func()
}

func NewPromptWorker(log *slog.Logger, session contract.RoomSession,
	in io.Reader, out io.Writer, current domain.RoomID, quit func()) *PromptWorker {
	return &PromptWorker{
		log:     log,
		session: session,
		in:      in,
		out:     out,
		current: current,
		quit:    quit,
	}
}

// Run reads the input until it ends, /quit is typed or ctx is canceled.
// The end of the input counts as /quit.
func (w *PromptWorker) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(w.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			w.log.Warn("Input failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				w.quit()
				return nil
			}
			if !w.Handle(line) {
				w.quit()
				return nil
			}
		}
	}
}

// Handle applies one input line. It returns false once the user asked to quit.
func (w *PromptWorker) Handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if !strings.HasPrefix(line, "/") {
		w.send(line)
		return true
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/join":
		if arg == "" {
			w.println("usage: /join <room>")
			return true
		}
		w.current = domain.RoomID(arg)
		w.session.Join(w.current)
	case "/room":
		if arg == "" {
			w.println("current room: " + string(w.current))
			return true
		}
		w.current = domain.RoomID(arg)
	case "/rooms":
		w.printRooms()
	case "/history":
		w.printHistory()
	case "/reconnect":
		w.session.Reconnect()
	case "/quit":
		return false
	case "/help":
		w.println(promptHelp)
	default:
		w.println("unknown command " + name + ", try /help")
	}
	return true
}

func (w *PromptWorker) send(contents string) {
	if w.current == "" {
		w.println("no current room, /join one first")
		return
	}
	w.session.SendMessage(w.current, contents)
}

func (w *PromptWorker) printRooms() {
	state := w.session.Snapshot()

	table := tablewriter.NewWriter(w.out)
	table.SetHeader([]string{"Room", "Messages", "Current"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, room := range state.KnownRooms.Sorted() {
		current := ""
		if room == w.current {
			current = "*"
		}
		table.Append([]string{string(room), strconv.Itoa(len(state.Log(room))), current})
	}
	table.Render()
}

func (w *PromptWorker) printHistory() {
	if w.current == "" {
		w.println("no current room")
		return
	}
	log := w.session.Snapshot().Log(w.current)
	// the log is newest first, history reads top to bottom
	for _, message := range slices.Backward(log) {
		author := message.DisplayName
		if author == "" {
			author = string(message.SenderClientID)
		}
		w.println(fmt.Sprintf("%s: %s", author, message.Contents))
	}
}

func (w *PromptWorker) println(s string) {
	if _, err := fmt.Fprintln(w.out, s); err != nil {
		w.log.Debug("Output failed", "error", err)
	}
}
