package domain

// Command is an instruction submitted to the session loop.
type Command interface {
	CommandName() string
}

type StartCommand struct {
	ServerURL string
}

func (StartCommand) CommandName() string { return "start" }

type JoinCommand struct {
	Room RoomID
}

func (JoinCommand) CommandName() string { return "join" }

type SendMessageCommand struct {
	Room     RoomID
	Contents string
}

func (SendMessageCommand) CommandName() string { return "send_message" }

type ReconnectCommand struct{}

func (ReconnectCommand) CommandName() string { return "reconnect" }
