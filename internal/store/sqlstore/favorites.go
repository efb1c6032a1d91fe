package sqlstore

import (
	"github.com/avelis/bazaar/internal/models"
)

func (s *SQLStore) AddFavorite(userID, listingID string) error {
	query := s.rebind("INSERT INTO favorites (user_id, listing_id) VALUES (?, ?) ON CONFLICT (user_id, listing_id) DO NOTHING")
	_, err := s.db.Exec(query, userID, listingID)
	return err
}

func (s *SQLStore) RemoveFavorite(userID, listingID string) error {
	query := s.rebind("DELETE FROM favorites WHERE user_id = ? AND listing_id = ?")
	_, err := s.db.Exec(query, userID, listingID)
	return err
}

func (s *SQLStore) GetFavoriteListings(userID string) ([]models.Listing, error) {
	query := s.rebind(`
		SELECT l.id, l.seller_id, l.title, l.description, l.price_cents, l.category, l.status, l.created_at, l.updated_at
		FROM listings l
		JOIN favorites f ON l.id = f.listing_id
		WHERE f.user_id = ?
		ORDER BY l.created_at DESC
	`)
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.SellerID, &l.Title, &l.Description,
			&l.PriceCents, &l.Category, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range listings {
		if listings[i].ImageURLs, err = s.getImages(listings[i].ID); err != nil {
			return nil, err
		}
	}
	return listings, nil
}
