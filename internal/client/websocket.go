// ABOUTME: WebSocket client for remote haptic receivers
// ABOUTME: Handles connection, handshake and synchronous load/play/stop commands
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-haptics/internal/protocol"
	"github.com/gorilla/websocket"
)

// CommandTimeout bounds how long a command waits for its result
const CommandTimeout = 5 * time.Second

// Config holds client configuration
type Config struct {
	ServerAddr string
	ClientID   string
	Name       string

	// Timeout bounds each command (default: CommandTimeout)
	Timeout time.Duration
}

// Client sends commands to one receiver
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// one command in flight at a time
	cmdMu   sync.Mutex
	results chan protocol.Result

	// sequence number of the command awaiting its result, 0 when idle
	pendingMu sync.Mutex
	seq       uint64
	pending   uint64

	// States receives receiver state broadcasts
	States chan protocol.StateUpdate

	// Receiver identity from server/hello
	Receiver protocol.ServerHello

	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = CommandTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		results: make(chan protocol.Result, 1),
		States:  make(chan protocol.StateUpdate, 10),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect establishes WebSocket connection and performs handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: "/haptics"}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake performs the protocol handshake
func (c *Client) handshake() error {
	hello := protocol.ClientHello{
		ClientID: c.config.ClientID,
		Name:     c.config.Name,
		Version:  protocol.Version,
	}

	if err := c.sendJSON(protocol.Message{Type: protocol.TypeClientHello, Payload: hello}); err != nil {
		return fmt.Errorf("failed to send %s: %w", protocol.TypeClientHello, err)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", protocol.TypeServerHello, err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var msg struct {
		Type    string               `json:"type"`
		Payload protocol.ServerHello `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", protocol.TypeServerHello, err)
	}
	if msg.Type != protocol.TypeServerHello {
		return fmt.Errorf("expected %s, got %s", protocol.TypeServerHello, msg.Type)
	}

	c.Receiver = msg.Payload
	log.Printf("Handshake complete with receiver %s (state: %s)", c.Receiver.Name, c.Receiver.State)

	return nil
}

// Load sends clip data to the receiver
func (c *Client) Load(name, data string) (protocol.Result, error) {
	return c.command(protocol.TypeLoad, protocol.LoadCommand{Name: name, Data: data})
}

// Play starts playback on the receiver
func (c *Client) Play() (protocol.Result, error) {
	return c.command(protocol.TypePlay, nil)
}

// Stop halts playback on the receiver
func (c *Client) Stop() (protocol.Result, error) {
	return c.command(protocol.TypeStop, nil)
}

// command sends one command and waits for the result carrying its sequence number
func (c *Client) command(msgType string, payload interface{}) (protocol.Result, error) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.pendingMu.Lock()
	c.seq++
	id := c.seq
	c.pending = id
	// Discard a result that arrived just as the previous command gave up
	select {
	case <-c.results:
	default:
	}
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		c.pending = 0
		c.pendingMu.Unlock()
	}()

	if err := c.sendJSON(protocol.Message{Type: msgType, ID: id, Payload: payload}); err != nil {
		return protocol.Result{}, fmt.Errorf("failed to send %s: %w", msgType, err)
	}

	timeout := time.After(c.config.Timeout)
	for {
		select {
		case result := <-c.results:
			if result.ID != id {
				continue
			}
			return result, nil
		case <-timeout:
			return protocol.Result{}, fmt.Errorf("%s timed out", msgType)
		case <-c.ctx.Done():
			return protocol.Result{}, fmt.Errorf("connection closed")
		}
	}
}

// deliverResult hands a result to the waiting command, dropping stale ones
func (c *Client) deliverResult(result protocol.Result) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	if c.pending == 0 || c.pending != result.ID {
		log.Printf("Dropping stale %s result (id %d)", result.Command, result.ID)
		return
	}
	select {
	case c.results <- result:
	default:
		log.Printf("Result channel full, dropping %s result", result.Command)
	}
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("Read error: %v", err)
			return
		}

		c.handleJSONMessage(data)
	}
}

// handleJSONMessage routes JSON messages
func (c *Client) handleJSONMessage(data []byte) {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeResult:
		var result protocol.Result
		if err := json.Unmarshal(msg.Payload, &result); err != nil {
			log.Printf("Failed to parse result: %v", err)
			return
		}
		c.deliverResult(result)

	case protocol.TypeState:
		var update protocol.StateUpdate
		if err := json.Unmarshal(msg.Payload, &update); err != nil {
			log.Printf("Failed to parse state update: %v", err)
			return
		}
		select {
		case c.States <- update:
		default:
			log.Printf("State channel full, dropping update: %s", update.State)
		}

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
