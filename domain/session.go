package domain

import "slices"

// ConnectionState represents where the session stands in its connection lifecycle.
type ConnectionState int

const (
	// StateDisconnected is the initial state, before any connection was requested.
	StateDisconnected ConnectionState = iota

	// StateConnecting means a connection was requested and is not open yet,
	// or was open and dropped and is being re-established.
	StateConnecting

	// StateConnected means the connection last reported an open event.
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// SessionState is a read-only snapshot of the session.
// Snapshots never share mutable memory with the live state.
type SessionState struct {
	State      ConnectionState
	Connected  bool
	ServerURL  string
	Identity   ClientID
	KnownRooms RoomSet
	Logs       map[RoomID]RoomLog
}

func NewSessionState() SessionState {
	return SessionState{
		State:      StateDisconnected,
		KnownRooms: NewRoomSet(),
		Logs:       make(map[RoomID]RoomLog),
	}
}

// Log returns the log of a room, nil when nothing was received for it.
func (s SessionState) Log(room RoomID) RoomLog {
	return s.Logs[room]
}

// Clone returns a deep copy, sharing nothing with s.
func (s SessionState) Clone() SessionState {
	clone := s
	clone.KnownRooms = s.KnownRooms.Clone()
	clone.Logs = make(map[RoomID]RoomLog, len(s.Logs))
	for room, log := range s.Logs {
		clone.Logs[room] = slices.Clone(log)
	}
	return clone
}
