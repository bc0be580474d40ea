// Package connection provides the resilient websocket transport the session rides on.
// It owns the socket, the keep-alive pings and the reconnection policy; callers only
// see open, close and message events.
package connection

import (
	"chat-rooms/contract"
	"chat-rooms/errors"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
)

var errReconnectRequested = goerrors.New("reconnect requested")

type Options struct {
	// Time allowed to write a message to the peer.
	WriteWait time.Duration
	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration
	// Send pings to peer with this period. Must be less than PongWait.
	PingPeriod time.Duration
	// Maximum message size allowed from peer.
	MaxMessageSize  int64
	SendBufferSize  int
	EventBufferSize int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	Dialer          *websocket.Dialer
}

func DefaultOptions() Options {
	pongWait := 60 * time.Second
	return Options{
		WriteWait:       10 * time.Second,
		PongWait:        pongWait,
		PingPeriod:      (pongWait * 9) / 10,
		MaxMessageSize:  64 * 1024,
		SendBufferSize:  256,
		EventBufferSize: 64,
		InitialBackoff:  500 * time.Millisecond,
		MaxBackoff:      30 * time.Second,
		Dialer:          websocket.DefaultDialer,
	}
}

// withDefaults fills every zero field from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.WriteWait <= 0 {
		o.WriteWait = d.WriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = d.PongWait
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = (o.PongWait * 9) / 10
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	if o.SendBufferSize <= 0 {
		o.SendBufferSize = d.SendBufferSize
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = d.EventBufferSize
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = d.InitialBackoff
	}
	if o.MaxBackoff < o.InitialBackoff {
		o.MaxBackoff = max(d.MaxBackoff, o.InitialBackoff)
	}
	if o.Dialer == nil {
		o.Dialer = d.Dialer
	}
	return o
}

var _ contract.Connector = (*Connector)(nil)

type Connector struct {
	log  *slog.Logger
	opts Options
}

func NewConnector(log *slog.Logger, opts Options) *Connector {
	return &Connector{log: log, opts: opts.withDefaults()}
}

// Connect returns immediately; the socket is dialed in the background and kept
// alive until Close is called or ctx is canceled.
func (c *Connector) Connect(ctx context.Context, serverURL string, query url.Values) (contract.Connection, error) {
	target, err := withQuery(serverURL, query)
	if err != nil {
		return nil, err
	}
	ws := newWebSocket(ctx, c.log, target, c.opts)
	go ws.dialLoop()
	return ws, nil
}

// withQuery merges the handshake parameters into the server URL,
// keeping any parameter already present.
func withQuery(serverURL string, query url.Values) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("invalid server url %q: scheme must be ws or wss", serverURL)
	}
	values := u.Query()
	for key, vals := range query {
		values[key] = vals
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

var _ contract.Connection = (*WebSocket)(nil)

type WebSocket struct {
	log       *slog.Logger
	url       string
	opts      Options
	ctx       context.Context
	cancel    context.CancelFunc
	events    chan contract.ConnectionEvent
	send      chan []byte
	reconnect chan struct{}
	done      chan struct{}
	connected atomic.Bool
	closeOnce sync.Once
}

func newWebSocket(parent context.Context, log *slog.Logger, target string, opts Options) *WebSocket {
	ctx, cancel := context.WithCancel(parent)
	return &WebSocket{
		log:       log,
		url:       target,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan contract.ConnectionEvent, opts.EventBufferSize),
		send:      make(chan []byte, opts.SendBufferSize),
		reconnect: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (w *WebSocket) Events() <-chan contract.ConnectionEvent {
	return w.events
}

// Send queues one frame for the current socket. Frames are never carried over
// to the next socket: best effort, at most once per socket session.
func (w *WebSocket) Send(data []byte) error {
	if w.ctx.Err() != nil {
		return errors.ErrConnectionClosed
	}
	if !w.connected.Load() {
		return errors.ErrNotConnected
	}
	select {
	case w.send <- data:
		return nil
	default:
		return errors.ErrSendBufferFull
	}
}

// Reconnect drops the current socket, the dial loop opens a new one right away.
func (w *WebSocket) Reconnect() {
	select {
	case w.reconnect <- struct{}{}:
	default:
	}
}

// Close stops the dial loop and waits for it to exit. Events is closed afterwards.
func (w *WebSocket) Close() error {
	w.closeOnce.Do(func() {
		w.cancel()
	})
	<-w.done
	return nil
}

func (w *WebSocket) dialLoop() {
	defer close(w.done)
	defer close(w.events)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.opts.InitialBackoff
	b.MaxInterval = w.opts.MaxBackoff

	for {
		if w.ctx.Err() != nil {
			return
		}
		conn, _, err := w.opts.Dialer.DialContext(w.ctx, w.url, nil)
		if err != nil {
			w.log.Debug("Dial failed", "url", w.url, "error", err)
			if !w.wait(b.NextBackOff()) {
				return
			}
			continue
		}

		b.Reset()
		// a reconnect asked for before this socket opened is already satisfied
		select {
		case <-w.reconnect:
		default:
		}
		w.connected.Store(true)
		w.log.Debug("Connection open", "url", w.url)
		w.emit(w.ctx, contract.ConnectionEvent{Kind: contract.EventOpen})

		err = w.serve(conn)

		w.connected.Store(false)
		w.drainSend()
		w.log.Debug("Connection closed", "url", w.url, "error", err)
		w.emit(w.ctx, contract.ConnectionEvent{Kind: contract.EventClose, Err: err})

		if w.ctx.Err() != nil {
			return
		}
		if goerrors.Is(err, errReconnectRequested) {
			continue
		}
		if !w.wait(b.NextBackOff()) {
			return
		}
	}
}

// wait sleeps before the next dial. A reconnect request cuts the wait short.
func (w *WebSocket) wait(d time.Duration) bool {
	if d == backoff.Stop {
		d = w.opts.MaxBackoff
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-w.ctx.Done():
		return false
	case <-w.reconnect:
		return true
	case <-timer.C:
		return true
	}
}

// serve runs the read and write pumps of one socket until one of them fails,
// a reconnect is requested or the connection is closed.
func (w *WebSocket) serve(conn *websocket.Conn) error {
	ctx, cancel := context.WithCancel(w.ctx)
	defer cancel()

	errs := make(chan error, 2)
	go func() { errs <- w.readPump(ctx, conn) }()
	go func() { errs <- w.writePump(ctx, conn) }()

	var err error
	pending := 2
	select {
	case err = <-errs:
		pending--
	case <-w.reconnect:
		err = errReconnectRequested
	case <-ctx.Done():
		err = ctx.Err()
	}

	cancel()
	_ = conn.Close()
	for ; pending > 0; pending-- {
		<-errs
	}
	return err
}

// readPump pumps frames from the socket to the events channel.
func (w *WebSocket) readPump(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(w.opts.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(w.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(w.opts.PongWait))
	})

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				w.log.Debug("Unexpected websocket close", "error", err)
			}
			return err
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		if !w.emit(ctx, contract.ConnectionEvent{Kind: contract.EventMessage, Data: data}) {
			return ctx.Err()
		}
	}
}

// writePump writes queued frames, one frame per websocket message, and pings the peer.
func (w *WebSocket) writePump(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(w.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(w.opts.WriteWait))
			return nil
		case message := <-w.send:
			_ = conn.SetWriteDeadline(time.Now().Add(w.opts.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(w.opts.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (w *WebSocket) emit(ctx context.Context, evt contract.ConnectionEvent) bool {
	select {
	case w.events <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *WebSocket) drainSend() {
	for {
		select {
		case <-w.send:
		default:
			return
		}
	}
}
