package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/avelis/bazaar/internal/middleware"
	"github.com/avelis/bazaar/internal/models"
	"github.com/avelis/bazaar/internal/store"
)

type ListingHandler struct {
	Store store.Store
}

type listingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	Category    string   `json:"category"`
	Status      string   `json:"status"`
	ImageURLs   []string `json:"image_urls"`
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	if req.PriceCents < 0 {
		http.Error(w, "price_cents must not be negative", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	listing := &models.Listing{
		ID:          uuid.NewString(),
		SellerID:    middleware.UserID(r),
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Status:      models.ListingActive,
		ImageURLs:   req.ImageURLs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Store.CreateListing(listing); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(listing)
}

func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Store.GetListing(mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(listing)
}

func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Store.GetListing(mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if listing.SellerID != middleware.UserID(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	if req.PriceCents < 0 {
		http.Error(w, "price_cents must not be negative", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = listing.Status
	}
	if req.Status != models.ListingActive && req.Status != models.ListingSold {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	listing.Title = req.Title
	listing.Description = req.Description
	listing.PriceCents = req.PriceCents
	listing.Category = req.Category
	listing.Status = req.Status
	listing.ImageURLs = req.ImageURLs

	if err := h.Store.UpdateListing(listing); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(listing)
}

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Store.GetListing(mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if listing.SellerID != middleware.UserID(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Store.DeleteListing(listing.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	filter := store.ListingFilter{
		Query:    params.Get("q"),
		Category: params.Get("category"),
		MinPrice: parsePrice(params.Get("min_price")),
		MaxPrice: parsePrice(params.Get("max_price")),
		Sort:     params.Get("sort"),
	}

	listings, err := h.Store.SearchListings(filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	json.NewEncoder(w).Encode(listings)
}

func parsePrice(raw string) int64 {
	if raw == "" {
		return -1
	}
	price, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || price < 0 {
		return -1
	}
	return price
}
