// Package codec validates and tags the JSON frames exchanged with the chat server.
// One frame per websocket message, UTF-8 JSON text.
package codec

import (
	"bytes"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
)

const (
	TypeJoin    = "join"
	TypeMessage = "message"
)

var validate = validator.New()

// ConnectionQuery is attached to the handshake URL, never sent as a frame.
type ConnectionQuery struct {
	ClientID string
	Version  string
	Commit   string
}

func (q ConnectionQuery) Values() url.Values {
	return url.Values{
		"clientID": []string{q.ClientID},
		"version":  []string{q.Version},
		"commit":   []string{q.Commit},
	}
}

// Frame is the result of Parse: RoomsNotification, ChatMessage or Unrecognized.
type Frame interface {
	frame()
}

// Outbound is what Serialize accepts: JoinRequest or ChatMessage.
type Outbound interface {
	outbound()
}

type JoinRequest struct {
	Type   string `json:"type"`
	RoomID string `json:"roomID"`
}

func NewJoinRequest(room domain.RoomID) JoinRequest {
	return JoinRequest{Type: TypeJoin, RoomID: string(room)}
}

func (JoinRequest) outbound() {}

// RoomsNotification is the full room list; it replaces, never merges.
type RoomsNotification struct {
	Rooms []string `json:"rooms"`
}

func (RoomsNotification) frame() {}

func (n RoomsNotification) RoomIDs() []domain.RoomID {
	rooms := make([]domain.RoomID, 0, len(n.Rooms))
	for _, room := range n.Rooms {
		rooms = append(rooms, domain.RoomID(room))
	}
	return rooms
}

type ChatMessage struct {
	Type        string `json:"type" validate:"eq=message"`
	ID          string `json:"id" validate:"required"`
	DisplayName string `json:"displayName"`
	ClientID    string `json:"clientID" validate:"required"`
	Room        string `json:"room" validate:"required"`
	Kind        string `json:"messageType" validate:"required"`
	Contents    string `json:"contents"`
}

func (ChatMessage) frame()    {}
func (ChatMessage) outbound() {}

// FromDomain builds an outbound chat message. The display name is left to the server.
func FromDomain(message domain.Message) ChatMessage {
	return ChatMessage{
		Type:        TypeMessage,
		ID:          message.ID,
		DisplayName: message.DisplayName,
		ClientID:    string(message.SenderClientID),
		Room:        string(message.Room),
		Kind:        string(message.Kind),
		Contents:    message.Contents,
	}
}

func (c ChatMessage) ToDomain() domain.Message {
	return domain.Message{
		ID:             c.ID,
		Room:           domain.RoomID(c.Room),
		SenderClientID: domain.ClientID(c.ClientID),
		DisplayName:    c.DisplayName,
		Kind:           domain.MessageKind(c.Kind),
		Contents:       c.Contents,
	}
}

// Unrecognized carries why a payload was rejected. It is only meant for logs.
type Unrecognized struct {
	Reason error
}

func (Unrecognized) frame() {}

// Parse never fails: anything malformed or not matching a known schema
// comes back as Unrecognized. Keys are matched exactly as they appear on the wire.
func Parse(raw []byte) Frame {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil {
		return unrecognized(err)
	}

	// the presence of a rooms array is what tells a room list apart
	if rooms, ok := object["rooms"]; ok && !isNull(rooms) {
		if !bytes.HasPrefix(bytes.TrimSpace(rooms), []byte("[")) {
			return unrecognized(fmt.Errorf("rooms is not an array"))
		}
		var notification RoomsNotification
		if err := json.Unmarshal(rooms, &notification.Rooms); err != nil {
			return unrecognized(err)
		}
		return notification
	}

	kind, ok, err := stringField(object, "type")
	if err != nil {
		return unrecognized(err)
	}
	if !ok {
		return unrecognized(fmt.Errorf("missing type"))
	}
	switch kind {
	case TypeMessage:
		return parseChatMessage(object)
	default:
		return unrecognized(fmt.Errorf("unknown type %q", kind))
	}
}

func parseChatMessage(object map[string]json.RawMessage) Frame {
	message := ChatMessage{Type: TypeMessage}
	fields := map[string]*string{
		"id":          &message.ID,
		"displayName": &message.DisplayName,
		"clientID":    &message.ClientID,
		"room":        &message.Room,
		"messageType": &message.Kind,
		"contents":    &message.Contents,
	}
	for key, target := range fields {
		value, _, err := stringField(object, key)
		if err != nil {
			return unrecognized(err)
		}
		*target = value
	}
	if err := validate.Struct(message); err != nil {
		return unrecognized(err)
	}
	return message
}

// stringField reads an optional string under its exact key.
func stringField(object map[string]json.RawMessage, key string) (string, bool, error) {
	raw, ok := object[key]
	if !ok {
		return "", false, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Serialize encodes a frame built by the session itself.
// Both outbound schemas only hold strings, so marshaling cannot fail.
func Serialize(frame Outbound) []byte {
	data, _ := json.Marshal(frame)
	return data
}

func unrecognized(err error) Unrecognized {
	return Unrecognized{Reason: fmt.Errorf("%w: %v", errors.ErrUnrecognizedFrame, err)}
}
