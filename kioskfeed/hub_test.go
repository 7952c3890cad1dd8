package kioskfeed

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{Send: make(chan []byte, 10)}
	hub.register <- client

	event := map[string]string{"outcome": "checked_in", "member": "u1"}
	hub.Notify(event)

	want, _ := json.Marshal(event)
	select {
	case got := <-client.Send:
		if string(got) != string(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	hub.unregister <- client
}
