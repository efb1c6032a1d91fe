package store

import (
	"errors"

	"github.com/avelis/bazaar/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ListingFilter narrows and orders a listing search. A negative price bound
// means the bound is not set. Sort is one of "newest", "price_asc",
// "price_desc"; empty means "newest".
type ListingFilter struct {
	Query    string
	Category string
	MinPrice int64
	MaxPrice int64
	Sort     string
}

type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	SearchUsers(query string) ([]models.User, error)

	// Listing operations
	CreateListing(listing *models.Listing) error
	GetListing(id string) (*models.Listing, error)
	UpdateListing(listing *models.Listing) error
	DeleteListing(id string) error
	SearchListings(filter ListingFilter) ([]models.Listing, error)

	// Favorite operations
	AddFavorite(userID, listingID string) error
	RemoveFavorite(userID, listingID string) error
	GetFavoriteListings(userID string) ([]models.Listing, error)

	// Conversation operations
	GetOrCreateConversation(userA, userB string) (*models.Conversation, error)
	GetConversation(id string) (*models.Conversation, error)
	GetUserConversations(userID string) ([]models.Conversation, error)
	SaveMessage(conversationID, senderID, receiverID, content string) (*models.Message, error)
	GetConversationMessages(conversationID string) ([]models.Message, error)
}
