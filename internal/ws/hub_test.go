package ws

import (
	"testing"
)

func fakeClient(hub *Hub, userID string) *Client {
	return &Client{
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, 1),
		done:   make(chan struct{}),
	}
}

func TestHubRegisterAndLookup(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	c := fakeClient(hub, "u1")

	if got := hub.lookup("u1"); got != nil {
		t.Errorf("Expected no connection before register, got %v", got)
	}

	hub.register(c)
	if got := hub.lookup("u1"); got != c {
		t.Errorf("Expected registered client, got %v", got)
	}
	if got := hub.lookup("u2"); got != nil {
		t.Errorf("Expected nil for other user, got %v", got)
	}
}

func TestHubRegisterReplacesPrevious(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	old := fakeClient(hub, "u1")
	hub.register(old)

	replacement := fakeClient(hub, "u1")
	hub.register(replacement)

	if got := hub.lookup("u1"); got != replacement {
		t.Errorf("Expected lookup to return the new connection")
	}
}

func TestHubUnregisterIsConditional(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	old := fakeClient(hub, "u1")
	hub.register(old)

	replacement := fakeClient(hub, "u1")
	hub.register(replacement)

	// A stale close from the superseded connection must not evict the new one.
	hub.unregister(old)
	if got := hub.lookup("u1"); got != replacement {
		t.Error("Stale unregister evicted the newer connection")
	}

	hub.unregister(replacement)
	if got := hub.lookup("u1"); got != nil {
		t.Errorf("Expected no connection after unregister, got %v", got)
	}

	// Unregistering when absent is a no-op.
	hub.unregister(replacement)
}
