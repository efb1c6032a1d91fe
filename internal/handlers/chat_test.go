package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/avelis/bazaar/internal/auth"
	"github.com/avelis/bazaar/internal/middleware"
	"github.com/avelis/bazaar/internal/models"
)

func authedRequest(t *testing.T, tokens *auth.Tokens, userID, method, url string, payload interface{}) *http.Request {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, url, body)
	token, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("Issue token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestCreateConversation_SymmetricAcrossCallers(t *testing.T) {
	store := newTestStore(t)
	tokens := newTestTokens()
	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	handler := &ChatHandler{Store: store}
	wrapped := middleware.Auth(tokens)(http.HandlerFunc(handler.CreateConversation))

	req := authedRequest(t, tokens, alice.ID, "POST", "/conversations", map[string]string{"peer_id": bob.ID})
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	var first models.Conversation
	json.NewDecoder(rr.Body).Decode(&first)

	req = authedRequest(t, tokens, bob.ID, "POST", "/conversations", map[string]string{"peer_id": alice.ID})
	rr = httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	var second models.Conversation
	json.NewDecoder(rr.Body).Decode(&second)

	if first.ID == "" || first.ID != second.ID {
		t.Errorf("Expected both sides to reach conversation %q, got %q", first.ID, second.ID)
	}
}

func TestCreateConversation_Validation(t *testing.T) {
	store := newTestStore(t)
	tokens := newTestTokens()
	alice := createTestUser(t, store, "alice")

	handler := &ChatHandler{Store: store}
	wrapped := middleware.Auth(tokens)(http.HandlerFunc(handler.CreateConversation))

	tests := []struct {
		name   string
		peerID string
		want   int
	}{
		{"missing peer", "", http.StatusBadRequest},
		{"self peer", alice.ID, http.StatusBadRequest},
		{"unknown peer", "nobody", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, tokens, alice.ID, "POST", "/conversations", map[string]string{"peer_id": tt.peerID})
			rr := httptest.NewRecorder()
			wrapped.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.want)
			}
		})
	}
}

func TestGetConversations_OrderedWithLastMessage(t *testing.T) {
	store := newTestStore(t)
	tokens := newTestTokens()
	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	conv, _ := store.GetOrCreateConversation(alice.ID, bob.ID)
	if _, err := store.SaveMessage(conv.ID, bob.ID, alice.ID, "hello alice"); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	handler := &ChatHandler{Store: store}
	wrapped := middleware.Auth(tokens)(http.HandlerFunc(handler.GetConversations))

	req := authedRequest(t, tokens, alice.ID, "GET", "/conversations", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var convs []models.Conversation
	json.NewDecoder(rr.Body).Decode(&convs)
	if len(convs) != 1 {
		t.Fatalf("Expected 1 conversation, got %d", len(convs))
	}
	if convs[0].LastMessage == nil || convs[0].LastMessage.Content != "hello alice" {
		t.Errorf("Expected last message 'hello alice', got %+v", convs[0].LastMessage)
	}
}

func TestGetConversationMessages_ParticipantsOnly(t *testing.T) {
	store := newTestStore(t)
	tokens := newTestTokens()
	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")
	mallory := createTestUser(t, store, "mallory")

	conv, _ := store.GetOrCreateConversation(alice.ID, bob.ID)
	if _, err := store.SaveMessage(conv.ID, alice.ID, bob.ID, "secret"); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	handler := &ChatHandler{Store: store}
	wrapped := middleware.Auth(tokens)(http.HandlerFunc(handler.GetConversationMessages))

	req := authedRequest(t, tokens, bob.ID, "GET", "/conversations/"+conv.ID+"/messages", nil)
	req = mux.SetURLVars(req, map[string]string{"id": conv.ID})
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	var messages []models.Message
	json.NewDecoder(rr.Body).Decode(&messages)
	if len(messages) != 1 || messages[0].Content != "secret" {
		t.Errorf("Expected the stored message, got %+v", messages)
	}

	req = authedRequest(t, tokens, mallory.ID, "GET", "/conversations/"+conv.ID+"/messages", nil)
	req = mux.SetURLVars(req, map[string]string{"id": conv.ID})
	rr = httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("handler returned wrong status code for non-participant: got %v want %v",
			rr.Code, http.StatusForbidden)
	}
}
