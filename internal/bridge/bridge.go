// Package bridge is the message channel between the client core and an
// embedding native host application.
//
// Correlation is by message type only: at most one session-refresh request is
// outstanding at a time, which the refresh coordinator's single-flight
// guarantee enforces.
package bridge

// MessageType identifies a host bridge message.
type MessageType string

const (
	// TypeRequestSessionRefresh asks the host to refresh the session it owns.
	TypeRequestSessionRefresh MessageType = "REQUEST_SESSION_REFRESH"

	// TypeSessionRefreshed is the host's acknowledgment.
	TypeSessionRefreshed MessageType = "SESSION_REFRESHED"

	// TypeLogout tells the host the session is gone and it should return to
	// its login entry point.
	TypeLogout MessageType = "LOGOUT"
)

type Message struct {
	Type    MessageType `json:"type"`
	Success bool        `json:"success,omitempty"`
}

// Bridge is one end of the host message channel.
type Bridge interface {
	// Post sends a message to the host.
	Post(msg Message) error

	// Events delivers messages from the host. The channel is closed when the
	// bridge shuts down.
	Events() <-chan Message

	Close() error
}
