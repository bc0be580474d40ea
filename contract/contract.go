//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"context"
	"net/url"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type ConnectionEventKind int

const (
	EventOpen ConnectionEventKind = iota
	EventClose
	EventMessage
)

func (k ConnectionEventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventMessage:
		return "message"
	default:
		return "unknown"
	}
}

// ConnectionEvent is one of the three things a resilient connection reports.
// Data is only set for EventMessage, Err optionally explains an EventClose.
type ConnectionEvent struct {
	Kind ConnectionEventKind
	Data []byte
	Err  error
}

// Connector opens resilient connections.
// Connect must not block on the network: establishing, keeping alive and
// re-establishing the socket is the connection's own job.
type Connector interface {
	Connect(ctx context.Context, serverURL string, query url.Values) (Connection, error)
}

// Connection is a self-healing bidirectional frame transport.
// Events is closed once the connection has been closed.
type Connection interface {
	Send(data []byte) error
	Reconnect()
	Close() error
	Events() <-chan ConnectionEvent
}

// IdentityRepository is the per-tab key/value medium holding the client identity.
type IdentityRepository interface {
	Load(ctx context.Context) (domain.ClientID, error)
	Save(ctx context.Context, id domain.ClientID) error
}

type IdentityStore interface {
	GetOrCreate(ctx context.Context) domain.ClientID
}

// RoomSession is what presentation code gets to see of a running session.
type RoomSession interface {
	Start(serverURL string)
	Join(room domain.RoomID)
	SendMessage(room domain.RoomID, contents string)
	Reconnect()
	Snapshot() domain.SessionState
	Subscribe() (<-chan domain.SessionState, func())
}
