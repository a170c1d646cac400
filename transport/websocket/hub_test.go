package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/auto-driving-car/sim/service"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.channels == nil {
		t.Error("Hub channels map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are not initialized")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()

	client := &Client{hub: hub, channel: "demo", send: make(chan []byte, 1)}
	hub.registerClient(client)

	if !hub.channels["demo"][client] {
		t.Fatal("Client was not registered in channel")
	}

	hub.unregisterClient(client)

	if _, exists := hub.channels["demo"]; exists {
		t.Error("Empty channel should be removed")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// Second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubBroadcastOnlyToChannel(t *testing.T) {
	hub := NewHub()

	watcher := &Client{hub: hub, channel: "demo", send: make(chan []byte, 1)}
	other := &Client{hub: hub, channel: "other", send: make(chan []byte, 1)}
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{
		Channel: "demo",
		Event:   EventRun,
		Run:     &service.RunResult{Mode: service.ModeMulti, Output: "no collision"},
	})

	select {
	case data := <-watcher.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode message: %v", err)
		}
		if msg.Event != EventRun || msg.Run == nil || msg.Run.Output != "no collision" {
			t.Errorf("Unexpected message: %+v", msg)
		}
	default:
		t.Fatal("Watcher did not receive message")
	}

	select {
	case <-other.send:
		t.Error("Client on another channel should not receive the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()

	slow := &Client{hub: hub, channel: "demo", send: make(chan []byte, 1)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{Channel: "demo", Event: "a"})
	hub.broadcastMessage(&Message{Channel: "demo", Event: "b"})

	if _, exists := hub.channels["demo"]; exists {
		t.Error("Slow client should have been unregistered")
	}
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("channel"))
	}))

	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, channel string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?channel=" + channel
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, channel string, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(channel) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients on %s, got %d", want, channel, hub.ClientCount(channel))
}

func TestWebSocketRunFeed(t *testing.T) {
	hub, server := startHub(t)

	conn := dial(t, server, "demo")
	waitForClients(t, hub, "demo", 1)

	hub.BroadcastRun("demo", &service.RunResult{
		Mode:   service.ModeMulti,
		Output: "A B\n5 4\n7",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if msg.Channel != "demo" {
		t.Errorf("Expected channel 'demo', got '%s'", msg.Channel)
	}
	if msg.Run == nil || msg.Run.Output != "A B\n5 4\n7" {
		t.Errorf("Unexpected run payload: %+v", msg.Run)
	}
}

func TestWebSocketEventFeed(t *testing.T) {
	hub, server := startHub(t)

	conn := dial(t, server, "events")
	waitForClients(t, hub, "events", 1)

	hub.BroadcastEvent("events", "scenario_saved", map[string]string{"scenario_id": "crossroads"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	if msg.Event != "scenario_saved" || msg.Data["scenario_id"] != "crossroads" {
		t.Errorf("Unexpected event: %+v", msg)
	}
}

func TestWebSocketDisconnectUnregisters(t *testing.T) {
	hub, server := startHub(t)

	conn := dial(t, server, "demo")
	waitForClients(t, hub, "demo", 1)

	conn.Close()
	waitForClients(t, hub, "demo", 0)
}

func TestHubStopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "demo")
	}))
	defer server.Close()

	conn := dial(t, server, "demo")
	waitForClients(t, hub, "demo", 1)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected connection to be closed after hub stop")
	}

	// Calls after stop must not block
	hub.BroadcastRun("demo", &service.RunResult{})
	if n := hub.ClientCount("demo"); n != 0 {
		t.Errorf("Expected 0 clients after stop, got %d", n)
	}
}
