package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(s.handleCORS)
	r.Use(limitRequestBody)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Device endpoints
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)

			r.Route("/{mac}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Patch("/", s.handleUpdateDevice)
				r.Delete("/", s.handleDeleteDevice)
				r.Put("/status", s.handleUpdateDeviceStatus)
			})
		})

		// Device configuration endpoints
		r.Route("/configs/{mac}", func(r chi.Router) {
			r.Get("/", s.handleGetConfig)
			r.Post("/", s.handleCreateConfig)
			r.Patch("/", s.handleUpdateConfig)
		})

		// WebSocket for real-time registry events
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
	}

	if s.mqtt != nil {
		mqttStatus := "ok"
		if err := s.mqtt.HealthCheck(r.Context()); err != nil {
			mqttStatus = "disconnected"
		}
		status["mqtt"] = mqttStatus
	}

	writeJSON(w, http.StatusOK, status)
}
