// Package api exposes trace decoding over a session-oriented REST API.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the chi router for the given server. The metrics
// handler is passed in so tests can scrape an isolated registry.
func NewRouter(server *Server, metrics *Metrics, config ServerConfig, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		if config.APIKey != "" {
			r.Use(apiKeyMiddleware(config.APIKey))
		}

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Post("/traces", metrics.InstrumentHandler("POST", "/api/v1/traces", server.handleOpenTrace))
		r.Get("/traces/{id}", metrics.InstrumentHandler("GET", "/api/v1/traces/{id}", server.handleTraceInfo))
		r.Delete("/traces/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/traces/{id}", server.handleCloseTrace))

		r.Get("/traces/{id}/functions/{nr}",
			metrics.InstrumentHandler("GET", "/api/v1/traces/{id}/functions/{nr}", server.handleFunction))
		r.Get("/traces/{id}/functions/{nr}/callers/{callNr}",
			metrics.InstrumentHandler("GET", "/api/v1/traces/{id}/functions/{nr}/callers/{callNr}", server.handleCalledFrom))
		r.Get("/traces/{id}/functions/{nr}/calls/{callNr}",
			metrics.InstrumentHandler("GET", "/api/v1/traces/{id}/functions/{nr}/calls/{callNr}", server.handleSubCall))

		r.Get("/traces/{id}/hotspots",
			metrics.InstrumentHandler("GET", "/api/v1/traces/{id}/hotspots", server.handleHotspots))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured. It blocks
// until the listener fails.
func StartServer(config ServerConfig) error {
	metrics := NewMetrics(prometheus.DefaultRegisterer)
	sessions := NewSessionManager()
	defer sessions.CloseAll()

	server := NewServer(sessions, config, metrics)
	router := NewRouter(server, metrics, config, promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	log.Printf("pgrind API listening on %s", addr)
	return http.ListenAndServe(addr, router)
}
