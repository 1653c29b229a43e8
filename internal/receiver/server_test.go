// ABOUTME: Integration tests for the WebSocket haptic receiver
// ABOUTME: Tests handshake, remote commands, state broadcasts and shutdown
package receiver

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-haptics/internal/protocol"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/actuator"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
	"github.com/gorilla/websocket"
)

const testClip = `{"version":{"major":1,"minor":0,"patch":0},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":0.5},{"time":30,"amplitude":0.5}]}}}}`

func TestNewReceiver(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		expectErr bool
	}{
		{
			name:   "valid config",
			config: Config{Port: 9001, Name: "Test Receiver", Platform: actuator.NewNull()},
		},
		{
			name:      "missing platform",
			config:    Config{Port: 9001, Name: "Test Receiver"},
			expectErr: true,
		},
		{
			name:   "defaults",
			config: Config{Platform: actuator.NewNull()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReceiver(tt.config)

			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if r.config.Port == 0 {
				t.Error("port should have been set to default")
			}
			if r.config.Name == "" {
				t.Error("name should have been set to default")
			}
			if r.Controller().State() != haptic.StateIdle {
				t.Errorf("expected idle controller, got %s", r.Controller().State())
			}
		})
	}
}

// dial connects to the receiver and completes the handshake
func dial(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + Path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect to receiver: %v", err)
	}

	hello := protocol.Message{
		Type: protocol.TypeClientHello,
		Payload: protocol.ClientHello{
			ClientID: id,
			Name:     "Test Sender " + id,
			Version:  protocol.Version,
		},
	}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("failed to send hello: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != protocol.TypeServerHello {
		t.Fatalf("expected %s, got %s", protocol.TypeServerHello, msg.Type)
	}
	return conn
}

type rawMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readMessage(t *testing.T, conn *websocket.Conn) rawMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg rawMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	return msg
}

// readResult skips state broadcasts until the next command result
func readResult(t *testing.T, conn *websocket.Conn) protocol.Result {
	t.Helper()

	for {
		msg := readMessage(t, conn)
		if msg.Type != protocol.TypeResult {
			continue
		}
		var result protocol.Result
		if err := json.Unmarshal(msg.Payload, &result); err != nil {
			t.Fatalf("failed to parse result: %v", err)
		}
		return result
	}
}

func newTestReceiver(t *testing.T) (*Receiver, *httptest.Server) {
	t.Helper()

	r, err := NewReceiver(Config{Name: "Test Receiver", Platform: actuator.NewNull()})
	if err != nil {
		t.Fatalf("failed to create receiver: %v", err)
	}
	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)
	return r, srv
}

func TestReceiverCommands(t *testing.T) {
	r, srv := newTestReceiver(t)
	conn := dial(t, srv, "sender-1")
	defer conn.Close()

	conn.WriteJSON(protocol.Message{Type: protocol.TypePlay})
	result := readResult(t, conn)
	if result.OK {
		t.Error("play without clip should fail")
	}
	if result.Kind != haptic.NoClipLoaded.String() {
		t.Errorf("expected kind %q, got %q", haptic.NoClipLoaded.String(), result.Kind)
	}

	conn.WriteJSON(protocol.Message{
		Type:    protocol.TypeLoad,
		Payload: protocol.LoadCommand{Name: "pulse", Data: testClip},
	})
	if result := readResult(t, conn); !result.OK {
		t.Fatalf("load failed: %s", result.Error)
	}

	conn.WriteJSON(protocol.Message{Type: protocol.TypePlay})
	result = readResult(t, conn)
	if !result.OK || result.State != "playing" {
		t.Errorf("expected ok/playing, got %v/%s", result.OK, result.State)
	}
	if r.Controller().State() != haptic.StatePlaying {
		t.Errorf("expected controller playing, got %s", r.Controller().State())
	}

	conn.WriteJSON(protocol.Message{Type: protocol.TypeStop, ID: 7})
	result = readResult(t, conn)
	if !result.OK || result.State != "stopped" {
		t.Errorf("expected ok/stopped, got %v/%s", result.OK, result.State)
	}
	if result.ID != 7 {
		t.Errorf("expected result to echo command id 7, got %d", result.ID)
	}
}

func TestReceiverMalformedLoad(t *testing.T) {
	_, srv := newTestReceiver(t)
	conn := dial(t, srv, "sender-1")
	defer conn.Close()

	conn.WriteJSON(protocol.Message{
		Type:    protocol.TypeLoad,
		Payload: protocol.LoadCommand{Data: ""},
	})
	result := readResult(t, conn)
	if result.OK {
		t.Error("empty clip should be rejected")
	}
	if result.Kind != haptic.MalformedClip.String() {
		t.Errorf("expected kind %q, got %q", haptic.MalformedClip.String(), result.Kind)
	}
}

func TestReceiverBroadcastsState(t *testing.T) {
	_, srv := newTestReceiver(t)
	sender := dial(t, srv, "sender-1")
	defer sender.Close()
	observer := dial(t, srv, "observer")
	defer observer.Close()

	sender.WriteJSON(protocol.Message{
		Type:    protocol.TypeLoad,
		Payload: protocol.LoadCommand{Name: "pulse", Data: testClip},
	})
	readResult(t, sender)
	sender.WriteJSON(protocol.Message{Type: protocol.TypePlay})
	readResult(t, sender)

	msg := readMessage(t, observer)
	if msg.Type != protocol.TypeState {
		t.Fatalf("expected %s, got %s", protocol.TypeState, msg.Type)
	}
	var update protocol.StateUpdate
	if err := json.Unmarshal(msg.Payload, &update); err != nil {
		t.Fatalf("failed to parse state update: %v", err)
	}
	if update.State != "playing" || update.Clip != "pulse" {
		t.Errorf("expected playing/pulse, got %s/%s", update.State, update.Clip)
	}
}

func TestReceiverDuplicateClientID(t *testing.T) {
	r, srv := newTestReceiver(t)
	first := dial(t, srv, "dup")
	defer first.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + Path
	second, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer second.Close()

	second.WriteJSON(protocol.Message{
		Type:    protocol.TypeClientHello,
		Payload: protocol.ClientHello{ClientID: "dup", Name: "Duplicate", Version: protocol.Version},
	})

	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := second.ReadMessage(); err == nil {
		t.Error("expected duplicate connection to be closed")
	}
	if len(r.Clients()) != 1 {
		t.Errorf("expected 1 connected sender, got %d", len(r.Clients()))
	}
}

func TestReceiverStartStop(t *testing.T) {
	r, err := NewReceiver(Config{Port: 9047, Platform: actuator.NewNull()})
	if err != nil {
		t.Fatalf("failed to create receiver: %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- r.Start()
	}()

	time.Sleep(100 * time.Millisecond)
	r.Stop()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("receiver error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("receiver did not stop within timeout")
	}

	if r.Controller().State() != haptic.StateReleased {
		t.Errorf("expected controller released after stop, got %s", r.Controller().State())
	}
}

func TestReceiverLoadTracksClipName(t *testing.T) {
	r, err := NewReceiver(Config{Name: "Desk", Platform: actuator.NewNull()})
	if err != nil {
		t.Fatalf("NewReceiver failed: %v", err)
	}
	defer r.Controller().Release()

	if err := r.Load("pulse", []byte(testClip)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.ClipName() != "pulse" {
		t.Errorf("expected clip pulse, got %s", r.ClipName())
	}

	err = r.Load("broken", []byte("{}"))
	if haptic.KindOf(err) != haptic.MalformedClip {
		t.Errorf("expected malformed clip, got %v", err)
	}
	if r.ClipName() != "pulse" {
		t.Errorf("failed load should keep clip pulse, got %s", r.ClipName())
	}
}
