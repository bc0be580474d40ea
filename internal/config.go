package internal

import (
	"strings"
	"time"

	"chat-rooms/domain"

	"github.com/samber/lo"
)

// Build metadata, set with -ldflags "-X chat-rooms/internal.Version=... -X chat-rooms/internal.Commit=...".
var (
	Version = "dev"
	Commit  = "none"
)

type Config struct {
	ServerURL         string        `env:"CHAT_SERVER_URL,required=true"`
	Rooms             string        `env:"CHAT_ROOMS,default=general"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	IdentityPath      string        `env:"IDENTITY_PATH,default=.chat-rooms"`
	IdentityScope     string        `env:"IDENTITY_SCOPE,default=default"`
	PingPeriod        time.Duration `env:"PING_PERIOD,default=54s"`
	PongWait          time.Duration `env:"PONG_WAIT,default=60s"`
	WriteWait         time.Duration `env:"WRITE_WAIT,default=10s"`
	MaxMessageSize    int64         `env:"MAX_MESSAGE_SIZE,default=65536"`
	SendBufferSize    int           `env:"SEND_BUFFER_SIZE,default=256"`
	CommandBufferSize int           `env:"COMMAND_BUFFER_SIZE,default=64"`
	EventBufferSize   int           `env:"EVENT_BUFFER_SIZE,default=256"`
	InitialBackoff    time.Duration `env:"INITIAL_BACKOFF,default=500ms"`
	MaxBackoff        time.Duration `env:"MAX_BACKOFF,default=30s"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
}

// RoomIDs splits CHAT_ROOMS on commas, dropping blanks and duplicates.
func (c Config) RoomIDs() []domain.RoomID {
	rooms := lo.FilterMap(strings.Split(c.Rooms, ","), func(item string, _ int) (domain.RoomID, bool) {
		room := strings.TrimSpace(item)
		return domain.RoomID(room), room != ""
	})
	return lo.Uniq(rooms)
}
