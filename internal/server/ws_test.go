// ABOUTME: Tests for the websocket task stream.
// ABOUTME: Dials a real connection and checks broadcast delivery.

package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fieldkit/sheetbridge/internal/importer"
)

func TestTaskStreamBroadcast(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/imports/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	// Registration happens just after the handshake; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		srv.hub.mu.Lock()
		n := len(srv.hub.clients)
		srv.hub.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered with the hub")
		}
		time.Sleep(time.Millisecond)
	}

	srv.hub.Notify(importer.Event{
		TaskID: "task-1",
		State:  importer.StateRunning,
		At:     time.Now(),
	})

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read broadcast: %v", err)
	}

	var ev importer.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if ev.TaskID != "task-1" || ev.State != importer.StateRunning {
		t.Errorf("event = %+v, want task-1 running", ev)
	}
}
