package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelis/bazaar/internal/models"
	"github.com/avelis/bazaar/internal/store"
)

// canonicalPair orders two user ids so that (A,B) and (B,A) address the same
// conversation row.
func canonicalPair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}

// GetOrCreateConversation returns the conversation for the unordered pair,
// creating it if absent. The UNIQUE (user_a, user_b) constraint plus
// insert-or-ignore makes this atomic under concurrent first contact: both
// callers converge on a single row.
func (s *SQLStore) GetOrCreateConversation(userA, userB string) (*models.Conversation, error) {
	if userA == userB {
		return nil, fmt.Errorf("conversation requires two distinct users")
	}
	a, b := canonicalPair(userA, userB)

	query := s.rebind(`INSERT INTO conversations (id, user_a, user_b, last_message_at)
		VALUES (?, ?, ?, ?) ON CONFLICT (user_a, user_b) DO NOTHING`)
	if _, err := s.db.Exec(query, uuid.NewString(), a, b, time.Now().UTC()); err != nil {
		return nil, err
	}

	var conv models.Conversation
	query = s.rebind("SELECT id, user_a, user_b, last_message_at FROM conversations WHERE user_a = ? AND user_b = ?")
	err := s.db.QueryRow(query, a, b).Scan(&conv.ID, &conv.UserA, &conv.UserB, &conv.LastMessageAt)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *SQLStore) GetConversation(id string) (*models.Conversation, error) {
	var conv models.Conversation
	query := s.rebind("SELECT id, user_a, user_b, last_message_at FROM conversations WHERE id = ?")
	err := s.db.QueryRow(query, id).Scan(&conv.ID, &conv.UserA, &conv.UserB, &conv.LastMessageAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetUserConversations lists the user's conversations, most recently active
// first, each carrying its latest message (if any).
func (s *SQLStore) GetUserConversations(userID string) ([]models.Conversation, error) {
	query := s.rebind(`SELECT id, user_a, user_b, last_message_at FROM conversations
		WHERE user_a = ? OR user_b = ?
		ORDER BY last_message_at DESC`)
	rows, err := s.db.Query(query, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserA, &conv.UserB, &conv.LastMessageAt); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range convs {
		msg, err := s.getLatestMessage(convs[i].ID)
		if err != nil {
			return nil, err
		}
		convs[i].LastMessage = msg
	}
	return convs, nil
}

// SaveMessage persists a message and advances the conversation's
// last-activity timestamp in a single transaction, so a failure leaves no
// partial state.
func (s *SQLStore) SaveMessage(conversationID, senderID, receiverID, content string) (*models.Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	query := s.rebind(`INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := tx.Exec(query, msg.ID, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Content, msg.CreatedAt); err != nil {
		return nil, err
	}

	query = s.rebind("UPDATE conversations SET last_message_at = ? WHERE id = ?")
	result, err := tx.Exec(query, msg.CreatedAt, conversationID)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, store.ErrNotFound
	}

	query = s.rebind("SELECT display_name, avatar_url FROM users WHERE id = ?")
	if err := tx.QueryRow(query, senderID).Scan(&msg.SenderName, &msg.SenderAvatar); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetConversationMessages returns the conversation's messages oldest first.
// Ties on created_at fall back to insertion order.
func (s *SQLStore) GetConversationMessages(conversationID string) ([]models.Message, error) {
	query := s.rebind(`
		SELECT m.id, m.conversation_id, m.sender_id, u.display_name, u.avatar_url, m.receiver_id, m.content, m.created_at
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = ?
		ORDER BY m.created_at ASC, m.seq ASC
	`)
	rows, err := s.db.Query(query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName, &m.SenderAvatar,
			&m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLStore) getLatestMessage(conversationID string) (*models.Message, error) {
	var m models.Message
	query := s.rebind(`
		SELECT m.id, m.conversation_id, m.sender_id, u.display_name, u.avatar_url, m.receiver_id, m.content, m.created_at
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = ?
		ORDER BY m.created_at DESC, m.seq DESC
		LIMIT 1
	`)
	err := s.db.QueryRow(query, conversationID).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName,
		&m.SenderAvatar, &m.ReceiverID, &m.Content, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
