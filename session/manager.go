// Package session keeps one resilient connection to the chat server and exposes it
// as a set of rooms carrying ordered messages.
//
// Every command and every connection event is applied by a single goroutine (Run),
// so the live state needs no lock. Readers only ever get copies: Snapshot, or the
// channel returned by Subscribe.
package session

import (
	"chat-rooms/codec"
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	_ contract.RoomSession = (*Manager)(nil)
	_ contract.Worker      = (*Manager)(nil)
)

type Options struct {
	// Build metadata sent with the handshake.
	Version           string
	Commit            string
	CommandBufferSize int
	EventBufferSize   int
}

type Manager struct {
	log       *slog.Logger
	identity  contract.IdentityStore
	connector contract.Connector
	opts      Options

	commands chan domain.Command
	events   chan event.DomainEvent
	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once
	doneOnce sync.Once
	disposed atomic.Bool
	snapshot atomic.Pointer[domain.SessionState]

	subMu       sync.Mutex
	subscribers map[int]chan domain.SessionState
	nextSub     int
	subsClosed  bool

	// owned by the Run goroutine
	registry   *Registry
	state      domain.ConnectionState
	serverURL  string
	clientID   domain.ClientID
	conn       contract.Connection
	connEvents <-chan contract.ConnectionEvent
}

func NewManager(log *slog.Logger, identity contract.IdentityStore, connector contract.Connector, opts Options) *Manager {
	if opts.CommandBufferSize <= 0 {
		opts.CommandBufferSize = 64
	}
	if opts.EventBufferSize <= 0 {
		opts.EventBufferSize = 256
	}
	m := &Manager{
		log:         log,
		identity:    identity,
		connector:   connector,
		opts:        opts,
		commands:    make(chan domain.Command, opts.CommandBufferSize),
		events:      make(chan event.DomainEvent, opts.EventBufferSize),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		subscribers: make(map[int]chan domain.SessionState),
		registry:    NewRegistry(),
		state:       domain.StateDisconnected,
	}
	initial := domain.NewSessionState()
	m.snapshot.Store(&initial)
	return m
}

// Start opens the connection to serverURL. Starting again with the same URL is a
// no-op; with another URL the previous connection is closed first.
func (m *Manager) Start(serverURL string) {
	m.dispatch(domain.StartCommand{ServerURL: serverURL})
}

// Join asks the server for a room. The request is dropped when the session is not
// connected; callers join again once Connected turns true.
func (m *Manager) Join(room domain.RoomID) {
	m.dispatch(domain.JoinCommand{Room: room})
}

// SendMessage is fire-and-forget. The message shows up in the room log only once
// the server echoes it back.
func (m *Manager) SendMessage(room domain.RoomID, contents string) {
	m.dispatch(domain.SendMessageCommand{Room: room, Contents: contents})
}

// Reconnect asks the connection to drop and re-establish its socket.
func (m *Manager) Reconnect() {
	m.dispatch(domain.ReconnectCommand{})
}

// Dispose closes the connection and stops reacting to events. Done is closed once
// the loop has let go of the connection.
func (m *Manager) Dispose() {
	m.disposed.Store(true)
	m.quitOnce.Do(func() {
		close(m.quit)
	})
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Events exposes every applied change. Events are dropped when nobody keeps up.
func (m *Manager) Events() <-chan event.DomainEvent {
	return m.events
}

func (m *Manager) Snapshot() domain.SessionState {
	return m.snapshot.Load().Clone()
}

// Subscribe returns a channel holding the latest state. The current state is
// available right away; a slow reader skips intermediate states but always ends
// up with the newest one. The channel is closed on unsubscribe or dispose.
func (m *Manager) Subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 1)

	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.subsClosed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = ch
	ch <- m.snapshot.Load().Clone()

	return ch, func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if sub, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(sub)
		}
	}
}

// Run applies commands and connection events one at a time until Dispose is
// called or ctx is canceled. Once Run returns the manager is disposed for good:
// the connection is closed, a final Disconnected state is published and the
// subscriber and event channels are closed.
func (m *Manager) Run(ctx context.Context) error {
	if m.disposed.Load() {
		m.shutdown()
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return ctx.Err()
		case <-m.quit:
			m.shutdown()
			return nil
		case cmd := <-m.commands:
			if m.disposed.Load() {
				continue
			}
			m.execute(ctx, cmd)
		case evt, ok := <-m.connEvents:
			if !ok {
				m.connectionLost()
				continue
			}
			if m.disposed.Load() {
				continue
			}
			m.handle(evt)
		}
	}
}

func (m *Manager) dispatch(cmd domain.Command) {
	if m.disposed.Load() {
		m.log.Debug("Session disposed, dropping command", "command", cmd.CommandName())
		return
	}
	select {
	case m.commands <- cmd:
	default:
		m.log.Warn("Command channel full, dropping command", "command", cmd.CommandName())
	}
}

func (m *Manager) execute(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.StartCommand:
		m.start(ctx, c.ServerURL)
	case domain.JoinCommand:
		m.join(c.Room)
	case domain.SendMessageCommand:
		m.sendMessage(c.Room, c.Contents)
	case domain.ReconnectCommand:
		if m.conn != nil {
			m.conn.Reconnect()
		}
	default:
		m.log.Warn("Unknown command", "command", cmd.CommandName())
	}
}

func (m *Manager) start(ctx context.Context, serverURL string) {
	if m.conn != nil && m.serverURL == serverURL {
		m.log.Debug("Session already started", "url", serverURL)
		return
	}
	if m.conn != nil {
		m.log.Info("Server changed, closing previous connection", "from", m.serverURL, "to", serverURL)
		m.closeConnection()
		m.state = domain.StateDisconnected
	}

	m.clientID = m.identity.GetOrCreate(ctx)
	m.serverURL = serverURL
	query := codec.ConnectionQuery{
		ClientID: string(m.clientID),
		Version:  m.opts.Version,
		Commit:   m.opts.Commit,
	}
	conn, err := m.connector.Connect(ctx, serverURL, query.Values())
	if err != nil {
		m.log.Warn("Connection could not be opened", "url", serverURL, "error", err)
		m.setState(domain.StateDisconnected)
		return
	}
	m.conn = conn
	m.connEvents = conn.Events()
	m.log.Info("Connecting", "url", serverURL, "client_id", m.clientID)
	m.setState(domain.StateConnecting)
}

func (m *Manager) join(room domain.RoomID) {
	if m.conn == nil || m.state != domain.StateConnected {
		m.log.Debug("Not connected, dropping join", "room", room)
		return
	}
	if err := m.conn.Send(codec.Serialize(codec.NewJoinRequest(room))); err != nil {
		m.log.Debug("Join not sent", "room", room, "error", err)
	}
}

func (m *Manager) sendMessage(room domain.RoomID, contents string) {
	if m.conn == nil {
		m.log.Debug("No connection, dropping message", "room", room)
		return
	}
	message := domain.Message{
		ID:             uuid.NewString(),
		Room:           room,
		SenderClientID: m.clientID,
		Kind:           domain.KindText,
		Contents:       contents,
	}
	if err := m.conn.Send(codec.Serialize(codec.FromDomain(message))); err != nil {
		m.log.Debug("Message not sent", "room", room, "id", message.ID, "error", err)
	}
}

func (m *Manager) handle(evt contract.ConnectionEvent) {
	switch evt.Kind {
	case contract.EventOpen:
		m.setState(domain.StateConnected)
	case contract.EventClose:
		// logs stay, the connection heals by itself
		m.log.Debug("Connection lost", "error", evt.Err)
		m.setState(domain.StateConnecting)
	case contract.EventMessage:
		m.ingest(evt.Data)
	}
}

func (m *Manager) ingest(data []byte) {
	switch frame := codec.Parse(data).(type) {
	case codec.RoomsNotification:
		rooms := frame.RoomIDs()
		m.registry.ReplaceRooms(rooms)
		m.emit(event.RoomsReplaced{Rooms: rooms})
		m.publish()
	case codec.ChatMessage:
		message := frame.ToDomain()
		m.registry.Record(message)
		m.emit(event.MessageReceived{Message: message})
		m.publish()
	case codec.Unrecognized:
		m.log.Debug("Dropping unrecognized frame", "reason", frame.Reason)
	}
}

// connectionLost happens when the connection stopped on its own, i.e. its context ended.
func (m *Manager) connectionLost() {
	m.conn = nil
	m.connEvents = nil
	m.setState(domain.StateDisconnected)
}

func (m *Manager) setState(state domain.ConnectionState) {
	m.state = state
	m.emit(event.ConnectionChanged{State: state, Connected: state == domain.StateConnected})
	m.publish()
}

func (m *Manager) emit(e event.DomainEvent) {
	select {
	case m.events <- e:
	default:
		m.log.Debug("Session event lost", "event", e.Name())
	}
}

func (m *Manager) publish() {
	state := domain.SessionState{
		State:     m.state,
		Connected: m.state == domain.StateConnected,
		ServerURL: m.serverURL,
		Identity:  m.clientID,
	}
	m.registry.Fill(&state)
	m.snapshot.Store(&state)

	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subscribers {
		offer(ch, state.Clone())
	}
}

// offer replaces whatever the subscriber has not read yet.
// Every send to a subscriber channel happens under subMu.
func offer(ch chan domain.SessionState, state domain.SessionState) {
	select {
	case ch <- state:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- state:
	default:
	}
}

func (m *Manager) closeConnection() {
	if m.conn == nil {
		return
	}
	if err := m.conn.Close(); err != nil {
		m.log.Debug("Connection close failed", "error", err)
	}
	m.conn = nil
	m.connEvents = nil
}

func (m *Manager) shutdown() {
	m.disposed.Store(true)
	m.doneOnce.Do(func() {
		m.closeConnection()
		if m.state != domain.StateDisconnected {
			m.setState(domain.StateDisconnected)
		}
		m.subMu.Lock()
		for id, ch := range m.subscribers {
			delete(m.subscribers, id)
			close(ch)
		}
		m.subsClosed = true
		m.subMu.Unlock()
		close(m.events)
		m.log.Info("Session disposed")
		close(m.done)
	})
}
