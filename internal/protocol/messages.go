// ABOUTME: Remote haptics message type definitions
// ABOUTME: Defines structs for all messages exchanged between senders and a receiver
package protocol

// Version is the remote haptics protocol version
const Version = 1

// Message types
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeLoad        = "haptic/load"
	TypePlay        = "haptic/play"
	TypeStop        = "haptic/stop"
	TypeResult      = "haptic/result"
	TypeState       = "haptic/state"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	ID      uint64      `json:"id,omitempty"` // command sequence number, echoed in its result
	Payload interface{} `json:"payload,omitempty"`
}

// ClientHello is sent by senders to initiate the handshake
type ClientHello struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// ServerHello is the receiver's response to client/hello
type ServerHello struct {
	ReceiverID string `json:"receiver_id"`
	Name       string `json:"name"`
	Version    int    `json:"version"`
	State      string `json:"state"`
}

// LoadCommand carries clip data (sent as haptic/load)
type LoadCommand struct {
	Name string `json:"name,omitempty"`
	Data string `json:"data"`
}

// Result answers every haptic/* command (sent as haptic/result)
type Result struct {
	ID      uint64 `json:"id,omitempty"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
	State   string `json:"state"`
}

// StateUpdate is broadcast to all senders when the receiver's state changes
type StateUpdate struct {
	State string `json:"state"`
	Clip  string `json:"clip,omitempty"`
}
