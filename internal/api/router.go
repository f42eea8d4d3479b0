package api

import (
	"chatstats-backend/internal/config"
	"chatstats-backend/internal/handlers"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	ChatHandler   *handlers.ChatHandlers
	StatsHandler  *handlers.StatsHandlers
	EventsHandler *handlers.EventsHandler
	Config        *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- CORS Configuration ---
	// The chat UI is usually served by a dev server on another port.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/v1", func(r chi.Router) {
		// --- Conversation Routes ---
		if deps.ChatHandler == nil {
			panic("ChatHandler dependency is nil in router setup")
		}
		r.Group(func(r chi.Router) {
			// A send waits for the model, so the deadline must cover pacing and retries.
			r.Use(middleware.Timeout(deps.Config.ReplyTimeout + deps.Config.RequestTimeout))
			r.Get("/session", deps.ChatHandler.HandleGetSession)
			r.Get("/messages", deps.ChatHandler.HandleListMessages)
			r.With(middleware.AllowContentType("application/json")).
				Post("/messages", deps.ChatHandler.HandleSendMessage)
		})

		// --- Stats Routes ---
		if deps.StatsHandler != nil {
			r.Route("/stats", func(r chi.Router) {
				r.Get("/", deps.StatsHandler.HandleGetStats)
				r.Get("/by-date", deps.StatsHandler.HandleGetByDate)
				r.Get("/by-sender", deps.StatsHandler.HandleGetBySender)
			})
		} else {
			log.Println("WARN: StatsHandler dependency is nil, skipping /v1/stats routes.")
		}

		// --- Event Stream ---
		// Long-lived connection, so it stays outside the timeout group.
		if deps.EventsHandler != nil {
			r.Get("/events", deps.EventsHandler.HandleEvents)
		} else {
			log.Println("WARN: EventsHandler dependency is nil, skipping /v1/events route.")
		}
	})

	// --- Static UI ---
	if deps.Config.StaticDir != "" {
		log.Printf("Serving static UI from %s", deps.Config.StaticDir)
		r.Handle("/*", http.FileServer(http.Dir(deps.Config.StaticDir)))
	}

	return r
}
