package sqlstore

import (
	"errors"
	"testing"

	"github.com/avelis/bazaar/internal/store"
)

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)

	createTestUser(t, s, "testuser")

	user, err := s.GetUserByUsername("testuser")
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("Expected username 'testuser', got '%s'", user.Username)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)

	first := createTestUser(t, s, "testuser")
	dup := *first
	dup.ID = first.ID + "-other"
	if err := s.CreateUser(&dup); err == nil {
		t.Error("Expected error when creating duplicate username, got nil")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByID("missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSearchUsers(t *testing.T) {
	s := newTestStore(t)

	createTestUser(t, s, "alice")
	createTestUser(t, s, "bob")
	createTestUser(t, s, "alex")

	users, err := s.SearchUsers("al")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}
}
