package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"choreboard/internal/auth"
	"choreboard/internal/config"
	"choreboard/internal/handlers"
	"choreboard/internal/repository"
	"choreboard/internal/security"
	"choreboard/internal/service"
	"choreboard/internal/store"

	"github.com/rs/cors"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if cfg.ProjectID == "" {
		log.Fatal("FIRESTORE_PROJECT_ID (or GOOGLE_CLOUD_PROJECT) must be set")
	}

	ctx := context.Background()

	// Connect to Firestore
	docStore, err := store.NewFirestore(ctx, cfg.ProjectID, cfg.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	defer docStore.Close()

	log.Printf("Document store connected (project: %s)", cfg.ProjectID)

	// Connect to Firebase Auth
	identityProvider, err := auth.NewFirebase(ctx, cfg.ProjectID, cfg.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}

	log.Println("Identity provider connected")

	// Initialize email dispatch
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(docStore)
	inviteRepo := repository.NewInviteRepository(docStore)
	choreRepo := repository.NewChoreRepository(docStore)

	// Initialize services
	familyService := service.NewFamilyService(memberRepo, inviteRepo, docStore, emailService)
	choreService := service.NewChoreService(choreRepo)

	// Initialize handlers
	inviteLimiter := security.NewRateLimiter(cfg.InviteRateLimit, cfg.InviteRateWindow)
	middleware := handlers.NewMiddleware(identityProvider, inviteLimiter)
	authHandler := handlers.NewAuthHandler(identityProvider)
	familyHandler := handlers.NewFamilyHandler(familyService)
	joinHandler := handlers.NewJoinHandler(familyService)
	choreHandler := handlers.NewChoreHandler(choreService)
	streamHandler := handlers.NewStreamHandler(familyService, choreService)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("POST /api/auth/signout", middleware.RequireAuth(authHandler.SignOut))

	// Family routes
	mux.HandleFunc("GET /api/family/members", middleware.RequireAuth(familyHandler.ListMembers))
	mux.HandleFunc("DELETE /api/family/members/{id}", middleware.RequireAuth(familyHandler.RemoveMember))
	mux.HandleFunc("POST /api/family/invites", middleware.RequireAuth(middleware.RateLimit(familyHandler.SendInvite)))
	mux.HandleFunc("GET /api/family/invites", middleware.RequireAuth(familyHandler.ListPendingInvites))
	mux.HandleFunc("POST /api/family/invites/{id}/resend", middleware.RequireAuth(middleware.RateLimit(familyHandler.ResendInvite)))
	mux.HandleFunc("POST /api/family/invites/{id}/cancel", middleware.RequireAuth(familyHandler.CancelInvite))

	// Join-link routes
	mux.HandleFunc("GET /api/join-family/{token}", middleware.RequireAuth(joinHandler.Resolve))
	mux.HandleFunc("POST /api/join-family/{token}", middleware.RequireAuth(joinHandler.Accept))

	// Chore routes
	mux.HandleFunc("POST /api/chores", middleware.RequireAuth(choreHandler.Create))
	mux.HandleFunc("GET /api/chores", middleware.RequireAuth(choreHandler.List))
	mux.HandleFunc("POST /api/chores/{id}/status", middleware.RequireAuth(choreHandler.UpdateStatus))
	mux.HandleFunc("DELETE /api/chores/{id}", middleware.RequireAuth(choreHandler.Delete))

	// Live feeds
	mux.HandleFunc("GET /api/stream/chores", middleware.RequireAuth(streamHandler.Chores))
	mux.HandleFunc("GET /api/stream/family/members", middleware.RequireAuth(streamHandler.Members))
	mux.HandleFunc("GET /api/stream/family/invites", middleware.RequireAuth(streamHandler.Invites))

	// Wrap with CORS and logging middleware
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := handlers.Logging(corsMiddleware.Handler(mux))

	// Start server
	addr := ":" + cfg.ServerPort
	// No WriteTimeout: the stream endpoints hold connections open.
	server := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
