package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/avelis/bazaar/internal/middleware"
	"github.com/avelis/bazaar/internal/models"
	"github.com/avelis/bazaar/internal/store"
)

type ChatHandler struct {
	Store store.Store
}

type createConversationRequest struct {
	PeerID string `json:"peer_id"`
}

// CreateConversation gets or creates the conversation between the caller and
// the peer. The store canonicalizes the pair, so both sides end up with the
// same conversation no matter who starts it.
func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r)
	if req.PeerID == "" {
		http.Error(w, "peer_id is required", http.StatusBadRequest)
		return
	}
	if req.PeerID == userID {
		http.Error(w, "cannot start a conversation with yourself", http.StatusBadRequest)
		return
	}
	if _, err := h.Store.GetUserByID(req.PeerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	conv, err := h.Store.GetOrCreateConversation(userID, req.PeerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(conv)
}

// GetConversations lists the caller's conversations, most recently active
// first, each with its latest message.
func (h *ChatHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.Store.GetUserConversations(middleware.UserID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	json.NewEncoder(w).Encode(convs)
}

// GetConversationMessages returns a conversation's messages oldest first.
// Only the two participants may read them.
func (h *ChatHandler) GetConversationMessages(w http.ResponseWriter, r *http.Request) {
	conv, err := h.Store.GetConversation(mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !conv.HasParticipant(middleware.UserID(r)) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	messages, err := h.Store.GetConversationMessages(conv.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	json.NewEncoder(w).Encode(messages)
}
