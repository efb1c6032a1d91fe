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

type FavoriteHandler struct {
	Store store.Store
}

func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	listingID := mux.Vars(r)["id"]
	if _, err := h.Store.GetListing(listingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if err := h.Store.AddFavorite(middleware.UserID(r), listingID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.RemoveFavorite(middleware.UserID(r), mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Store.GetFavoriteListings(middleware.UserID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	json.NewEncoder(w).Encode(listings)
}
