package sqlstore

import (
	"database/sql"
	"errors"
	"time"

	"github.com/avelis/bazaar/internal/models"
	"github.com/avelis/bazaar/internal/store"
)

func (s *SQLStore) CreateListing(listing *models.Listing) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := s.rebind(`INSERT INTO listings (id, seller_id, title, description, price_cents, category, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = tx.Exec(query, listing.ID, listing.SellerID, listing.Title, listing.Description,
		listing.PriceCents, listing.Category, listing.Status, listing.CreatedAt, listing.UpdatedAt)
	if err != nil {
		return err
	}
	if err := s.replaceImages(tx, listing.ID, listing.ImageURLs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) GetListing(id string) (*models.Listing, error) {
	var l models.Listing
	query := s.rebind(`SELECT id, seller_id, title, description, price_cents, category, status, created_at, updated_at
		FROM listings WHERE id = ?`)
	err := s.db.QueryRow(query, id).Scan(&l.ID, &l.SellerID, &l.Title, &l.Description,
		&l.PriceCents, &l.Category, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if l.ImageURLs, err = s.getImages(l.ID); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *SQLStore) UpdateListing(listing *models.Listing) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	listing.UpdatedAt = time.Now().UTC()
	query := s.rebind(`UPDATE listings SET title = ?, description = ?, price_cents = ?, category = ?, status = ?, updated_at = ?
		WHERE id = ?`)
	result, err := tx.Exec(query, listing.Title, listing.Description, listing.PriceCents,
		listing.Category, listing.Status, listing.UpdatedAt, listing.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}

	query = s.rebind("DELETE FROM listing_images WHERE listing_id = ?")
	if _, err := tx.Exec(query, listing.ID); err != nil {
		return err
	}
	if err := s.replaceImages(tx, listing.ID, listing.ImageURLs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) DeleteListing(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := s.rebind("DELETE FROM listing_images WHERE listing_id = ?")
	if _, err := tx.Exec(query, id); err != nil {
		return err
	}
	query = s.rebind("DELETE FROM favorites WHERE listing_id = ?")
	if _, err := tx.Exec(query, id); err != nil {
		return err
	}
	query = s.rebind("DELETE FROM listings WHERE id = ?")
	if _, err := tx.Exec(query, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) SearchListings(filter store.ListingFilter) ([]models.Listing, error) {
	query := `SELECT id, seller_id, title, description, price_cents, category, status, created_at, updated_at
		FROM listings WHERE status = 'active'`
	var args []interface{}

	if filter.Query != "" {
		query += " AND (title LIKE ? OR description LIKE ?)"
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.MinPrice >= 0 {
		query += " AND price_cents >= ?"
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice >= 0 {
		query += " AND price_cents <= ?"
		args = append(args, filter.MaxPrice)
	}

	switch filter.Sort {
	case "price_asc":
		query += " ORDER BY price_cents ASC"
	case "price_desc":
		query += " ORDER BY price_cents DESC"
	default:
		query += " ORDER BY created_at DESC"
	}
	query += " LIMIT 100"

	rows, err := s.db.Query(s.rebind(query), args...)
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

func (s *SQLStore) replaceImages(tx *sql.Tx, listingID string, urls []string) error {
	query := s.rebind("INSERT INTO listing_images (listing_id, position, url) VALUES (?, ?, ?)")
	for i, url := range urls {
		if _, err := tx.Exec(query, listingID, i, url); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) getImages(listingID string) ([]string, error) {
	query := s.rebind("SELECT url FROM listing_images WHERE listing_id = ? ORDER BY position ASC")
	rows, err := s.db.Query(query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}
