// ABOUTME: WebSocket haptic receiver
// ABOUTME: Exposes load/play/stop of a single playback controller to remote senders
package receiver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-haptics/internal/discovery"
	"github.com/Resonate-Protocol/resonate-haptics/internal/protocol"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultPort is the receiver's default listen port
	DefaultPort = 8937

	// Path is the WebSocket endpoint
	Path = "/haptics"
)

// Config configures a receiver
type Config struct {
	// Port to listen on (default: 8937)
	Port int

	// Name of the receiver for identification
	Name string

	// Platform provides the actuator session (required)
	Platform haptic.Platform

	// Decoder validates clip data (default: haptic.JSONDecoder)
	Decoder haptic.Decoder

	// EnableMDNS enables mDNS service advertisement
	EnableMDNS bool

	// OnStateChange is called after every controller state change
	OnStateChange func(haptic.State)
}

// Receiver owns one playback controller and serves it over WebSocket
type Receiver struct {
	config     Config
	receiverID string
	ctrl       *haptic.Controller

	upgrader   websocket.Upgrader
	httpServer *http.Server
	mux        *http.ServeMux

	clients   map[string]*client
	clientsMu sync.RWMutex

	// name of the clip most recently loaded remotely
	clipName string
	clipMu   sync.Mutex

	mdnsManager *discovery.Manager

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// client represents a connected sender (internal)
type client struct {
	ID       string
	Name     string
	Conn     *websocket.Conn
	sendChan chan interface{}
}

// ClientInfo describes a connected sender
type ClientInfo struct {
	ID   string
	Name string
}

// NewReceiver creates a receiver and allocates its controller
func NewReceiver(config Config) (*Receiver, error) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Name == "" {
		config.Name = "Haptic Receiver"
	}
	if config.Platform == nil {
		return nil, fmt.Errorf("actuator platform is required")
	}

	r := &Receiver{
		config:     config,
		receiverID: uuid.New().String(),
		mux:        http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Receivers run on the local network
				return true
			},
		},
		clients:  make(map[string]*client),
		stopChan: make(chan struct{}),
	}

	ctrl, err := haptic.NewController(haptic.ControllerConfig{
		Platform:      config.Platform,
		Decoder:       config.Decoder,
		OnStateChange: r.handleStateChange,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}
	r.ctrl = ctrl

	r.mux.HandleFunc(Path, r.handleWebSocket)

	return r, nil
}

// Controller returns the receiver's playback controller
func (r *Receiver) Controller() *haptic.Controller {
	return r.ctrl
}

// Handler returns the HTTP handler serving the WebSocket endpoint
func (r *Receiver) Handler() http.Handler {
	return r.mux
}

// Start serves until Stop is called, then releases the controller
func (r *Receiver) Start() error {
	log.Printf("Receiver starting: %s (ID: %s)", r.config.Name, r.receiverID)

	if r.config.EnableMDNS {
		r.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: r.config.Name,
			Port:        r.config.Port,
		})

		if err := r.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	addr := fmt.Sprintf(":%d", r.config.Port)
	log.Printf("WebSocket receiver listening on %s%s", addr, Path)

	r.httpServer = &http.Server{
		Addr:    addr,
		Handler: r.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := r.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case <-r.stopChan:
		log.Printf("Receiver shutting down...")
	case serveErr = <-errChan:
		log.Printf("HTTP server error: %v", serveErr)
	}

	if r.mdnsManager != nil {
		r.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	r.closeClients()
	if err := r.ctrl.Release(); err != nil {
		log.Printf("Error releasing controller: %v", err)
	}

	r.wg.Wait()
	log.Printf("Receiver stopped cleanly")

	return serveErr
}

// Stop stops the receiver
func (r *Receiver) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
}

// Clients returns the connected senders
func (r *Receiver) Clients() []ClientInfo {
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()

	clients := make([]ClientInfo, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, ClientInfo{ID: c.ID, Name: c.Name})
	}
	return clients
}

// handleWebSocket handles WebSocket connections
func (r *Receiver) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New WebSocket connection from %s", req.RemoteAddr)
	r.handleConnection(conn)
}

// handleConnection manages a sender connection
func (r *Receiver) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	select {
	case <-r.stopChan:
		log.Printf("Rejecting connection during shutdown")
		return
	default:
	}

	// Wait for client/hello
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("Error reading hello: %v", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}
	if msg.Type != protocol.TypeClientHello {
		log.Printf("Expected %s, got %s", protocol.TypeClientHello, msg.Type)
		return
	}

	var hello protocol.ClientHello
	if err := decodePayload(msg.Payload, &hello); err != nil {
		log.Printf("Error unmarshaling client hello: %v", err)
		return
	}
	if hello.ClientID == "" || hello.Name == "" {
		log.Printf("Client hello missing required fields")
		return
	}

	log.Printf("Sender hello: %s (ID: %s)", hello.Name, hello.ClientID)

	c := &client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		sendChan: make(chan interface{}, 32),
	}

	r.clientsMu.Lock()
	if _, exists := r.clients[c.ID]; exists {
		r.clientsMu.Unlock()
		log.Printf("Sender ID %s already connected, rejecting duplicate", c.ID)
		return
	}
	r.clients[c.ID] = c
	r.clientsMu.Unlock()

	defer func() {
		r.removeClient(c)
		log.Printf("Sender disconnected: %s", c.Name)
	}()

	serverHello := protocol.ServerHello{
		ReceiverID: r.receiverID,
		Name:       r.config.Name,
		Version:    protocol.Version,
		State:      r.ctrl.State().String(),
	}
	if err := r.sendMessage(c, protocol.TypeServerHello, serverHello); err != nil {
		log.Printf("Error sending server hello: %v", err)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.clientWriter(c)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		r.handleClientMessage(c, data)
	}
}

// clientWriter sends queued messages to the sender
func (r *Receiver) clientWriter(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage applies a sender command and answers with haptic/result
func (r *Receiver) handleClientMessage(c *client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	var err error
	switch msg.Type {
	case protocol.TypeLoad:
		var cmd protocol.LoadCommand
		if err = decodePayload(msg.Payload, &cmd); err == nil {
			err = r.Load(cmd.Name, []byte(cmd.Data))
		}
	case protocol.TypePlay:
		err = r.ctrl.Play()
	case protocol.TypeStop:
		err = r.ctrl.Stop()
	default:
		log.Printf("Unknown message type from %s: %s", c.Name, msg.Type)
		return
	}

	result := protocol.Result{
		ID:      msg.ID,
		Command: msg.Type,
		OK:      err == nil,
		State:   r.ctrl.State().String(),
	}
	if err != nil {
		log.Printf("Command %s from %s failed: %v", msg.Type, c.Name, err)
		result.Error = err.Error()
		result.Kind = haptic.KindOf(err).String()
	}

	if err := r.sendMessage(c, protocol.TypeResult, result); err != nil {
		log.Printf("Error sending result to %s: %v", c.Name, err)
	}
}

// Load installs a named clip, remembering its name for state updates
func (r *Receiver) Load(name string, data []byte) error {
	r.clipMu.Lock()
	prev := r.clipName
	r.clipName = name
	r.clipMu.Unlock()

	if err := r.ctrl.Load(data); err != nil {
		r.clipMu.Lock()
		r.clipName = prev
		r.clipMu.Unlock()
		return err
	}
	return nil
}

// ClipName returns the name of the most recently loaded clip
func (r *Receiver) ClipName() string {
	r.clipMu.Lock()
	defer r.clipMu.Unlock()
	return r.clipName
}

// handleStateChange broadcasts controller transitions to every sender
func (r *Receiver) handleStateChange(state haptic.State) {
	r.clipMu.Lock()
	update := protocol.StateUpdate{State: state.String(), Clip: r.clipName}
	r.clipMu.Unlock()

	r.clientsMu.RLock()
	for _, c := range r.clients {
		if err := r.sendMessage(c, protocol.TypeState, update); err != nil {
			log.Printf("Dropping state update for %s: %v", c.Name, err)
		}
	}
	r.clientsMu.RUnlock()

	if r.config.OnStateChange != nil {
		r.config.OnStateChange(state)
	}
}

// removeClient removes a sender
func (r *Receiver) removeClient(c *client) {
	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()

	if r.clients[c.ID] != c {
		return
	}
	delete(r.clients, c.ID)
	close(c.sendChan)
}

// closeClients disconnects every sender during shutdown
func (r *Receiver) closeClients() {
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()

	for _, c := range r.clients {
		c.Conn.Close()
	}
}

// sendMessage queues a JSON message for a sender
func (r *Receiver) sendMessage(c *client, msgType string, payload interface{}) error {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	select {
	case c.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("sender send buffer full")
	}
}

// decodePayload converts a generic payload into a typed message
func decodePayload(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
