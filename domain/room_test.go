package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_Log_IsNewestFirst(t *testing.T) {
	req := require.New(t)
	room := NewRoom("general")

	m1 := Message{ID: "m1", Room: "general", Contents: "first"}
	m2 := Message{ID: "m2", Room: "general", Contents: "second"}
	m3 := Message{ID: "m3", Room: "general", Contents: "third"}

	room.PostMessage(m1)
	room.PostMessage(m2)
	room.PostMessage(m3)

	req.Equal(3, room.Len())
	req.Equal(RoomLog{m3, m2, m1}, room.Log())
}

func TestRoom_Log_KeepsDuplicates(t *testing.T) {
	req := require.New(t)
	room := NewRoom("general")
	msg := Message{ID: "m1", Room: "general", Contents: "hi"}

	// When the same message is received twice
	room.PostMessage(msg)
	room.PostMessage(msg)

	// Then both copies are kept
	req.Equal(RoomLog{msg, msg}, room.Log())
}

func TestRoom_Log_ReturnsACopy(t *testing.T) {
	req := require.New(t)
	room := NewRoom("general")
	room.PostMessage(Message{ID: "m1", Contents: "hi"})

	log := room.Log()
	log[0].Contents = "tampered"

	req.Equal("hi", room.Log()[0].Contents)
}

func TestRoomSet(t *testing.T) {
	req := require.New(t)
	set := NewRoomSet("b", "a", "c")

	req.True(set.Contains("a"))
	req.False(set.Contains("z"))
	req.Equal([]RoomID{"a", "b", "c"}, set.Sorted())

	clone := set.Clone()
	delete(clone, "a")
	req.True(set.Contains("a"))
}
