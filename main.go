package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/avelis/bazaar/internal/auth"
	"github.com/avelis/bazaar/internal/config"
	"github.com/avelis/bazaar/internal/handlers"
	"github.com/avelis/bazaar/internal/middleware"
	"github.com/avelis/bazaar/internal/store/sqlstore"
	"github.com/avelis/bazaar/internal/ws"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found, using environment defaults")
	}
	cfg := config.Load()

	store, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	tokens := auth.NewTokens([]byte(cfg.JWTSecret), cfg.TokenTTL)
	hub := ws.NewHub(store, tokens, cfg.AllowedOrigins)

	authHandler := &handlers.AuthHandler{Store: store, Tokens: tokens}
	listingHandler := &handlers.ListingHandler{Store: store}
	favoriteHandler := &handlers.FavoriteHandler{Store: store}
	chatHandler := &handlers.ChatHandler{Store: store}

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)

	// Public endpoints
	r.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/listings", listingHandler.SearchListings).Methods("GET")
	r.HandleFunc("/listings/{id}", listingHandler.GetListing).Methods("GET")

	// Authenticated endpoints
	api := r.NewRoute().Subrouter()
	api.Use(middleware.Auth(tokens))
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/users/search", authHandler.SearchUsers).Methods("GET")
	api.HandleFunc("/listings", listingHandler.CreateListing).Methods("POST")
	api.HandleFunc("/listings/{id}", listingHandler.UpdateListing).Methods("PUT")
	api.HandleFunc("/listings/{id}", listingHandler.DeleteListing).Methods("DELETE")
	api.HandleFunc("/listings/{id}/favorite", favoriteHandler.AddFavorite).Methods("POST")
	api.HandleFunc("/listings/{id}/favorite", favoriteHandler.RemoveFavorite).Methods("DELETE")
	api.HandleFunc("/favorites", favoriteHandler.GetFavorites).Methods("GET")
	api.HandleFunc("/conversations", chatHandler.CreateConversation).Methods("POST")
	api.HandleFunc("/conversations", chatHandler.GetConversations).Methods("GET")
	api.HandleFunc("/conversations/{id}/messages", chatHandler.GetConversationMessages).Methods("GET")

	// WebSocket endpoint; the credential rides the token query parameter and
	// is checked during the connection handshake.
	r.HandleFunc("/ws", hub.ServeWs)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	log.Println("Starting server on", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, c.Handler(r)))
}
