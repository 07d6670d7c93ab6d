package api

import (
	"encoding/json"
	"net/http"

	"github.com/fashbot/fashbot/internal/api/handlers"
	"github.com/fashbot/fashbot/internal/api/middleware"
	"github.com/fashbot/fashbot/internal/config"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers, generatedDir string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// API
	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.Ping)
		r.Post("/chat", h.Chat)
		// Historical route the first front-end shipped with.
		r.Post("/gemini/chat", h.Chat)
		r.Route("/generate", func(r chi.Router) {
			r.Post("/image", h.GenerateImage)
			r.Post("/document", h.GenerateDocument)
			r.Post("/video", h.GenerateVideo)
		})
	})

	// Previously generated image assets by filename.
	fileServer := http.StripPrefix("/generated/", http.FileServer(http.Dir(generatedDir)))
	r.Get("/generated/*", fileServer.ServeHTTP)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "fashbot-gateway",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
			"service": "fashbot-gateway",
		})
	}
}
