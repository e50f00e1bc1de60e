// Package queue carries domain events over RabbitMQ: a publisher used by the
// API and a consumer that records them in a log file.
package queue

import (
	"os"

	"github.com/rs/zerolog"
)

// UserRegisteredQueue is the durable queue user registrations are sent to.
const UserRegisteredQueue = "user.registered"

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "queue").Logger()

// UserRegisteredEvent is published after a registration commits. It carries
// enough to log or notify without querying the database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	BusinessID   uint64 `json:"business_id"`
	RegisteredAt string `json:"registered_at"`
}
