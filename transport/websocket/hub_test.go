package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/hanoi/game/engine"
	"github.com/wricardo/mcp-training/hanoi/game/service"
)

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// a second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubBroadcastTargetsSession(t *testing.T) {
	hub := NewHub()

	a := &Client{hub: hub, sessionID: "a", send: make(chan []byte, 4)}
	a2 := &Client{hub: hub, sessionID: "a", send: make(chan []byte, 4)}
	b := &Client{hub: hub, sessionID: "b", send: make(chan []byte, 4)}
	hub.registerClient(a)
	hub.registerClient(a2)
	hub.registerClient(b)

	hub.broadcastMessage(&Message{SessionID: "a", Event: EventFrame, Frame: &engine.Frame{MoveCount: 3}})

	for _, c := range []*Client{a, a2} {
		select {
		case data := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			require.Equal(t, EventFrame, msg.Event)
			require.Equal(t, 3, msg.Frame.MoveCount)
		default:
			t.Error("Expected frame for session a client")
		}
	}
	require.Len(t, b.send, 0)

	hub.broadcastMessage(&Message{SessionID: "a", Event: EventError, Message: "only you", target: a2})
	require.Len(t, a.send, 0)
	require.Len(t, a2.send, 1)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "s", send: make(chan []byte, 1)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "s", Event: EventFrame})
	hub.broadcastMessage(&Message{SessionID: "s", Event: EventFrame})

	require.Equal(t, 0, hub.ClientCount("s"))
}

func TestHubQueueFullDrops(t *testing.T) {
	hub := NewHub()

	// nothing drains the queue without Run
	for i := 0; i < engine.WebSocketBufferSize+10; i++ {
		hub.BroadcastEvent("s", service.Event{Type: service.EventMove, Timestamp: time.Now()})
	}
	require.Equal(t, int64(10), hub.Dropped())
	require.Len(t, hub.broadcast, engine.WebSocketBufferSize)
}

type inboundRecorder struct {
	mu   sync.Mutex
	msgs []Inbound
}

func (r *inboundRecorder) handle(ctx context.Context, sessionID string, msg Inbound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.Type == "bogus" {
		return errors.New("unknown message type")
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *inboundRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func startHub(t *testing.T) (*Hub, *httptest.Server, *inboundRecorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	rec := &inboundRecorder{}
	hub.OnInbound(rec.handle)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), &engine.Frame{DiskCount: 3})
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server, rec
}

func dial(t *testing.T, server *httptest.Server, session string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + session
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServeWSInitialFrameAndBroadcast(t *testing.T) {
	hub, server, _ := startHub(t)
	conn := dial(t, server, "abcd")

	initial := readMessage(t, conn)
	require.Equal(t, EventFrame, initial.Event)
	require.Equal(t, 3, initial.Frame.DiskCount)

	hub.BroadcastEvent("abcd", service.Event{Type: service.EventSolveStarted, Message: "7 moves", Timestamp: time.Now()})
	event := readMessage(t, conn)
	require.Equal(t, service.EventSolveStarted, event.Event)
	require.Equal(t, "7 moves", event.Message)

	hub.BroadcastFrame("abcd", &engine.Frame{MoveCount: 1})
	frame := readMessage(t, conn)
	require.Equal(t, 1, frame.Frame.MoveCount)
}

func TestServeWSInbound(t *testing.T) {
	hub, server, rec := startHub(t)
	conn := dial(t, server, "abcd")
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(Inbound{Type: PointerDown, X: 200, Y: 370}))
	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Inbound{Type: "bogus"}))
	reply := readMessage(t, conn)
	require.Equal(t, EventError, reply.Event)
	require.Contains(t, reply.Message, "unknown message type")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	reply = readMessage(t, conn)
	require.Equal(t, EventError, reply.Event)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount("abcd") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeWSAssignsClientIDs(t *testing.T) {
	hub, server, _ := startHub(t)
	readMessage(t, dial(t, server, "ids"))
	readMessage(t, dial(t, server, "ids"))

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	ids := map[string]bool{}
	for client := range hub.sessions["ids"] {
		_, err := uuid.Parse(client.id)
		require.NoError(t, err, "client id %q", client.id)
		ids[client.id] = true
	}
	require.Len(t, ids, 2)
}
