package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avelis/bazaar/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Event types on the wire.
const (
	eventChatMessage = "chat_message"
	eventMessageSent = "message_sent"
	eventNewMessage  = "new_message"
	eventError       = "error"
)

type inboundEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	ReceiverID     string `json:"receiverId"`
}

// outboundEvent carries either a persisted message record (message_sent,
// new_message) or a human-readable reason (error) in the message field.
type outboundEvent struct {
	Type    string      `json:"type"`
	Message interface{} `json:"message"`
}

// Client is one authenticated live connection. Inbound events are handled
// one at a time in the read loop, so a sender's messages are persisted in
// the order they were sent.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
	}
}

// close shuts the physical connection down exactly once. Unregistering is
// the read pump's job so that the conditional check in the hub runs after
// the connection is truly finished.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error (user %s): %v", c.userID, err)
			}
			return
		}
		c.handleEvent(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEvent processes one inbound event: validate, authorize, persist,
// push to the receiver if connected, then ack the sender. Every failure is
// answered with an error event on this connection only.
func (c *Client) handleEvent(raw []byte) {
	var ev inboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.sendEvent(eventError, "malformed event")
		return
	}
	if ev.Type != eventChatMessage {
		c.sendEvent(eventError, "unknown event type")
		return
	}
	if ev.ConversationID == "" || ev.Content == "" || ev.ReceiverID == "" {
		c.sendEvent(eventError, "conversationId, content and receiverId are required")
		return
	}

	conv, err := c.hub.store.GetConversation(ev.ConversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.sendEvent(eventError, "conversation not found")
		} else {
			log.Printf("load conversation %s: %v", ev.ConversationID, err)
			c.sendEvent(eventError, "could not load conversation")
		}
		return
	}
	if !conv.HasParticipant(c.userID) {
		c.sendEvent(eventError, "not a participant of this conversation")
		return
	}
	if ev.ReceiverID == c.userID || !conv.HasParticipant(ev.ReceiverID) {
		c.sendEvent(eventError, "receiver is not the other participant")
		return
	}

	// Durability point: nothing is delivered unless the message is stored.
	msg, err := c.hub.store.SaveMessage(conv.ID, c.userID, ev.ReceiverID, ev.Content)
	if err != nil {
		log.Printf("save message (user %s, conversation %s): %v", c.userID, conv.ID, err)
		c.sendEvent(eventError, "could not save message")
		return
	}

	// Fire-and-forget push; an unreachable receiver reads the message from
	// conversation history later.
	if peer := c.hub.lookup(ev.ReceiverID); peer != nil {
		peer.sendEvent(eventNewMessage, msg)
	}

	c.sendEvent(eventMessageSent, msg)
}

func (c *Client) sendEvent(eventType string, message interface{}) {
	payload, err := json.Marshal(outboundEvent{Type: eventType, Message: message})
	if err != nil {
		log.Printf("marshal %s event: %v", eventType, err)
		return
	}
	select {
	case <-c.done:
	case c.send <- payload:
	default:
		// Slow consumer; drop the connection rather than block the relay.
		log.Printf("send buffer full, dropping connection (user %s)", c.userID)
		c.hub.unregister(c)
		c.close()
	}
}
