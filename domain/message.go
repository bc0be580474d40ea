// Package domain contains core concepts of the chat session.
// This file defines Message events and related rules.
// Messages are immutable and only ordered relative to their room log.
package domain

type ClientID string

type MessageKind string

const KindText MessageKind = "text"

// Message represents an immutable chat message scoped to exactly one room.
type Message struct {
	ID             string // generated by the sender
	Room           RoomID
	SenderClientID ClientID
	DisplayName    string // assigned by the server
	Kind           MessageKind
	Contents       string
}
