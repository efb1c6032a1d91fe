package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/avelis/bazaar/internal/auth"
	"github.com/avelis/bazaar/internal/models"
	"github.com/avelis/bazaar/internal/store/sqlstore"
)

func newTestStore(t *testing.T) *sqlstore.SQLStore {
	t.Helper()
	s, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestTokens() *auth.Tokens {
	return auth.NewTokens([]byte("test-secret"), time.Hour)
}

func createTestUser(t *testing.T, s *sqlstore.SQLStore, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:          uuid.NewString(),
		Username:    username,
		DisplayName: username,
		Password:    "hashed",
	}
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}
