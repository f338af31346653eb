package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kushvardhan/CodeMate-Backend/internal/api/auth"
	apichat "github.com/kushvardhan/CodeMate-Backend/internal/api/chat"
	"github.com/kushvardhan/CodeMate-Backend/internal/api/profile"
	"github.com/kushvardhan/CodeMate-Backend/internal/api/requests"
	"github.com/kushvardhan/CodeMate-Backend/internal/chat"
	"github.com/kushvardhan/CodeMate-Backend/internal/config"
	"github.com/kushvardhan/CodeMate-Backend/internal/middleware"
	"github.com/kushvardhan/CodeMate-Backend/internal/notify"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage/memory"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage/postgres"
	"github.com/kushvardhan/CodeMate-Backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}

	var (
		chatStore       storage.ChatStore
		userStore       storage.UserStore
		connectionStore storage.ConnectionStore
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[Main] Error connecting to Postgres: %v", err)
		}
		defer db.Close()
		chatStore = postgres.NewChatStore(db)
		userStore = postgres.NewUserStore(db)
		connectionStore = postgres.NewConnectionStore(db)
		log.Println("[Main] Using Postgres storage")
	} else {
		users := memory.NewUserStore()
		chatStore = memory.NewChatStore()
		userStore = users
		connectionStore = memory.NewConnectionStore(users)
		log.Println("[Main] Using in-memory storage")
	}

	hub := ws.NewHub()
	registry := ws.NewRegistry()

	// With a Valkey address configured, events fan out across instances;
	// without one, the hub alone serves this instance's sockets.
	var bus chat.Publisher = hub
	if cfg.ValkeyAddr != "" {
		bridge, err := notify.NewBridge(cfg.ValkeyAddr, hub)
		if err != nil {
			log.Fatalf("[Main] Error connecting to Valkey: %v", err)
		}
		defer bridge.Close()
		go func() {
			if err := bridge.Run(context.Background()); err != nil {
				log.Printf("[Notify] Bridge stopped: %v", err)
			}
		}()
		bus = bridge
		log.Printf("[Main] Valkey bridge active at %s", cfg.ValkeyAddr)
	}

	service := chat.NewService(chatStore, connectionStore, userStore, bus)

	authHandler := &auth.Handler{Users: userStore, JWTSecret: cfg.JWTSecret}
	profileHandler := &profile.Handler{Users: userStore}
	requestHandler := &requests.Handler{Connections: connectionStore, Users: userStore}
	chatHandler := &apichat.Handler{Service: service}
	socketServer := apichat.NewSocketServer(service, hub, registry, userStore, cfg.JWTSecret)

	router := mux.NewRouter()
	router.Use(middleware.CORS(cfg.AllowedOrigin))
	auth.RegisterAuthRoutes(router, authHandler)

	authed := router.NewRoute().Subrouter()
	authed.Use(middleware.UserAuth(userStore, cfg.JWTSecret))
	profile.RegisterProfileRoutes(authed, profileHandler)
	requests.RegisterRequestRoutes(authed, requestHandler)
	apichat.RegisterChatRoutes(authed, chatHandler)

	router.HandleFunc("/ws", socketServer.ServeWS)

	addr := ":" + cfg.Port
	log.Printf("[Main] Server started at %s", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}
