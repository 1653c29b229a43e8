// ABOUTME: Tests for WebSocket client implementation
// ABOUTME: Exercises handshake and commands against an in-process receiver
package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-haptics/internal/protocol"
	"github.com/Resonate-Protocol/resonate-haptics/internal/receiver"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/actuator"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
	"github.com/gorilla/websocket"
)

const testClip = `{"version":{"major":1,"minor":0,"patch":0},"signals":{"continuous":{"envelopes":{"amplitude":[{"time":0,"amplitude":0.5},{"time":30,"amplitude":0.5}]}}}}`

func TestNewClient(t *testing.T) {
	config := Config{
		ServerAddr: "localhost:8937",
		ClientID:   "test-client",
		Name:       "Test Sender",
	}

	client := NewClient(config)
	if client == nil {
		t.Fatal("expected client to be created")
	}

	if client.config.ServerAddr != "localhost:8937" {
		t.Errorf("expected server addr localhost:8937, got %s", client.config.ServerAddr)
	}
	if client.IsConnected() {
		t.Error("expected client to start disconnected")
	}
}

func TestCommandWithoutConnection(t *testing.T) {
	client := NewClient(Config{ServerAddr: "localhost:1"})

	if _, err := client.Play(); err == nil {
		t.Error("expected error when not connected")
	}
}

func connectTestClient(t *testing.T) (*Client, *receiver.Receiver) {
	t.Helper()

	r, err := receiver.NewReceiver(receiver.Config{Name: "Desk", Platform: actuator.NewNull()})
	if err != nil {
		t.Fatalf("failed to create receiver: %v", err)
	}
	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		ServerAddr: strings.TrimPrefix(srv.URL, "http://"),
		ClientID:   "test-client",
		Name:       "Test Sender",
	})
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(client.Close)

	return client, r
}

func TestClientHandshake(t *testing.T) {
	client, _ := connectTestClient(t)

	if !client.IsConnected() {
		t.Error("expected client to be connected")
	}
	if client.Receiver.Name != "Desk" {
		t.Errorf("expected receiver name Desk, got %s", client.Receiver.Name)
	}
	if client.Receiver.State != "idle" {
		t.Errorf("expected receiver idle, got %s", client.Receiver.State)
	}
}

func TestClientLoadPlayStop(t *testing.T) {
	client, r := connectTestClient(t)

	result, err := client.Play()
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if result.OK {
		t.Error("play before load should be rejected")
	}

	result, err = client.Load("pulse", testClip)
	if err != nil || !result.OK {
		t.Fatalf("Load failed: %v %s", err, result.Error)
	}

	result, err = client.Play()
	if err != nil || !result.OK {
		t.Fatalf("Play failed: %v %s", err, result.Error)
	}
	if r.Controller().State() != haptic.StatePlaying {
		t.Errorf("expected receiver playing, got %s", r.Controller().State())
	}

	select {
	case update := <-client.States:
		if update.State != "playing" || update.Clip != "pulse" {
			t.Errorf("expected playing/pulse, got %s/%s", update.State, update.Clip)
		}
	case <-time.After(2 * time.Second):
		t.Error("expected a state update")
	}

	result, err = client.Stop()
	if err != nil || !result.OK {
		t.Fatalf("Stop failed: %v %s", err, result.Error)
	}
	if result.State != "stopped" {
		t.Errorf("expected stopped, got %s", result.State)
	}
}

func TestClientClose(t *testing.T) {
	client, _ := connectTestClient(t)

	client.Close()
	if client.IsConnected() {
		t.Error("expected client to be disconnected after Close")
	}
	if _, err := client.Stop(); err == nil {
		t.Error("expected error after Close")
	}
}

// scriptedReceiver completes the handshake and then hands every command to respond
func scriptedReceiver(t *testing.T, respond func(conn *websocket.Conn, msg protocol.Message)) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var hello protocol.Message
		if err := conn.ReadJSON(&hello); err != nil {
			return
		}
		conn.WriteJSON(protocol.Message{
			Type:    protocol.TypeServerHello,
			Payload: protocol.ServerHello{ReceiverID: "r1", Name: "Scripted", Version: protocol.Version, State: "idle"},
		})

		for {
			var msg protocol.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			respond(conn, msg)
		}
	}))
	t.Cleanup(srv.Close)

	return strings.TrimPrefix(srv.URL, "http://")
}

func TestLateResultNotTakenByNextCommand(t *testing.T) {
	plays := 0
	addr := scriptedReceiver(t, func(conn *websocket.Conn, msg protocol.Message) {
		plays++
		if plays == 1 {
			// Answer the first play after the client has given up on it
			time.Sleep(200 * time.Millisecond)
		}
		conn.WriteJSON(protocol.Message{
			Type:    protocol.TypeResult,
			Payload: protocol.Result{ID: msg.ID, Command: msg.Type, OK: plays > 1, State: "playing"},
		})
	})

	client := NewClient(Config{ServerAddr: addr, ClientID: "c1", Name: "Sender", Timeout: 50 * time.Millisecond})
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if _, err := client.Play(); err == nil {
		t.Fatal("expected first play to time out")
	}

	client.config.Timeout = 2 * time.Second
	result, err := client.Play()
	if err != nil {
		t.Fatalf("second Play failed: %v", err)
	}
	if !result.OK {
		t.Error("second play received the late result of the first")
	}
}

func TestUnsolicitedResultsDoNotStallStates(t *testing.T) {
	addr := scriptedReceiver(t, func(conn *websocket.Conn, msg protocol.Message) {
		// Results nobody waits for, then a state update
		for i := 0; i < 3; i++ {
			conn.WriteJSON(protocol.Message{
				Type:    protocol.TypeResult,
				Payload: protocol.Result{ID: 999, Command: protocol.TypeStop, OK: true},
			})
		}
		conn.WriteJSON(protocol.Message{
			Type:    protocol.TypeState,
			Payload: protocol.StateUpdate{State: "stopped"},
		})
	})

	client := NewClient(Config{ServerAddr: addr, ClientID: "c1", Name: "Sender", Timeout: 100 * time.Millisecond})
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	// The scripted receiver never answers with the right id
	if _, err := client.Stop(); err == nil {
		t.Error("expected stop to time out")
	}

	select {
	case update := <-client.States:
		if update.State != "stopped" {
			t.Errorf("expected stopped, got %s", update.State)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("state update stalled behind unsolicited results")
	}
}
