package main

import (
	"chatstats-backend/internal/api"
	"chatstats-backend/internal/config"
	"chatstats-backend/internal/events"
	"chatstats-backend/internal/handlers"
	"chatstats-backend/internal/llm"
	"chatstats-backend/internal/services"
	"chatstats-backend/internal/store/memory"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	log.Println("Starting chatstats backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize the completion client
	client := llm.NewClient(cfg.APIKey).
		WithBaseURL(cfg.BaseURL).
		WithModel(cfg.Model).
		WithInterval(cfg.RequestInterval).
		WithMaxRetries(cfg.MaxRetries).
		WithTimeout(cfg.RequestTimeout)
	log.Printf("Completion client initialized (model %s, interval %s).", client.Model(), client.Interval())

	// 3. Initialize the conversation store and session
	conversation := memory.NewMemoryStore()
	broadcaster := events.NewBroadcaster(events.DefaultBuffer)
	session, err := services.NewChatSession(context.Background(), conversation, client, broadcaster, services.ChatSessionConfig{
		SystemPrompt: cfg.SystemPrompt,
		Model:        cfg.Model,
		ReplyTimeout: cfg.ReplyTimeout,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to start chat session: %v", err)
	}
	log.Println("ChatSession initialized.")

	// --- Initialize Handlers ---
	chatHandler := handlers.NewChatHandlers(session)
	statsHandler := handlers.NewStatsHandlers(session)
	eventsHandler := handlers.NewEventsHandler(session, cfg.AllowedOrigins)
	log.Println("Handlers initialized.")

	// 4. Setup Router & Inject Dependencies
	router := api.NewRouter(api.RouterDependencies{
		ChatHandler:   chatHandler,
		StatsHandler:  statsHandler,
		EventsHandler: eventsHandler,
		Config:        cfg,
	})
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	// No WriteTimeout: sends wait for the model and /v1/events is long-lived.
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
		log.Fatal("Forcing shutdown due to error.")
	}

	log.Println("Server shutdown complete.")
}
