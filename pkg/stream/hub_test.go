package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, 4)
	e := echo.New()
	e.GET("/ws", hub.Handle)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(map[string]int{"tick": 3})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != `{"tick":3}` {
		t.Fatalf("message = %s", msg)
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub(nil, 1)
	c := &client{send: make(chan []byte, 1)}
	hub.clients[c] = struct{}{}

	hub.Broadcast(1)
	hub.Broadcast(2)
	if hub.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", hub.Dropped())
	}
	if got := string(<-c.send); got != "1" {
		t.Fatalf("first event = %s", got)
	}
}

func TestHubBroadcastWithoutSubscribers(t *testing.T) {
	NewHub(nil, 0).Broadcast("nobody listening")
}
