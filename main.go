package main

import (
	"log"
	"net/http"

	"flockr-server/board"
	"flockr-server/config"
	"flockr-server/handlers"
	"flockr-server/middleware"
	"flockr-server/store"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	s, err := store.New()
	if err != nil {
		log.Fatal("Failed to initialize directory:", err)
	}
	defer s.Close()

	issuer := middleware.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize WebSocket hub
	hub := handlers.NewHub()

	b := board.New(s, issuer, board.Options{
		Notifier:  hub,
		QueueSize: cfg.Board.QueueSize,
	})
	hub.SetAuthenticator(b)

	go hub.Run()
	go b.Run()
	defer b.Stop()

	handler := corsMiddleware(newRouter(b, hub, issuer))

	log.Printf("Flockr server starting on :%s", cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, handler); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

func newRouter(b *board.Board, hub *handlers.Hub, issuer *middleware.JWTIssuer) *http.ServeMux {
	authHandler := handlers.NewAuthHandler(b)
	channelHandler := handlers.NewChannelHandler(b)
	messageHandler := handlers.NewMessageHandler(b)
	userHandler := handlers.NewUserHandler(b)
	standupHandler := handlers.NewStandupHandler(b)
	adminHandler := handlers.NewAdminHandler(b)

	withAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return issuer.Auth(next).ServeHTTP
	}

	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /auth/passwordreset/request", authHandler.PasswordResetRequest)
	mux.HandleFunc("POST /auth/passwordreset/reset", authHandler.PasswordResetReset)
	mux.HandleFunc("DELETE /clear", adminHandler.Clear)
	mux.HandleFunc("GET /api/ws", hub.HandleWebSocket)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Channels
	mux.HandleFunc("POST /channels/create", withAuth(channelHandler.Create))
	mux.HandleFunc("GET /channels/list", withAuth(channelHandler.List))
	mux.HandleFunc("GET /channels/listall", withAuth(channelHandler.ListAll))
	mux.HandleFunc("GET /channel/details", withAuth(channelHandler.Details))
	mux.HandleFunc("GET /channel/messages", withAuth(channelHandler.Messages))
	mux.HandleFunc("POST /channel/invite", withAuth(channelHandler.Invite))
	mux.HandleFunc("POST /channel/join", withAuth(channelHandler.Join))
	mux.HandleFunc("POST /channel/leave", withAuth(channelHandler.Leave))
	mux.HandleFunc("POST /channel/addowner", withAuth(channelHandler.AddOwner))
	mux.HandleFunc("POST /channel/removeowner", withAuth(channelHandler.RemoveOwner))

	// Messages
	mux.HandleFunc("POST /message/send", withAuth(messageHandler.Send))
	mux.HandleFunc("POST /message/sendlater", withAuth(messageHandler.SendLater))
	mux.HandleFunc("POST /message/react", withAuth(messageHandler.React))
	mux.HandleFunc("POST /message/unreact", withAuth(messageHandler.Unreact))
	mux.HandleFunc("POST /message/pin", withAuth(messageHandler.Pin))
	mux.HandleFunc("POST /message/unpin", withAuth(messageHandler.Unpin))
	mux.HandleFunc("PUT /message/edit", withAuth(messageHandler.Edit))
	mux.HandleFunc("DELETE /message/remove", withAuth(messageHandler.Remove))

	// Users
	mux.HandleFunc("GET /user/profile", withAuth(userHandler.Profile))
	mux.HandleFunc("PUT /user/profile/setname", withAuth(userHandler.SetName))
	mux.HandleFunc("PUT /user/profile/setemail", withAuth(userHandler.SetEmail))
	mux.HandleFunc("PUT /user/profile/sethandle", withAuth(userHandler.SetHandle))
	mux.HandleFunc("GET /users/all", withAuth(userHandler.All))
	mux.HandleFunc("GET /search", withAuth(userHandler.Search))
	mux.HandleFunc("POST /admin/userpermission/change", withAuth(adminHandler.PermissionChange))

	// Standups
	mux.HandleFunc("POST /standup/start", withAuth(standupHandler.Start))
	mux.HandleFunc("POST /standup/send", withAuth(standupHandler.Send))
	mux.HandleFunc("GET /standup/active", withAuth(standupHandler.Active))

	return mux
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
