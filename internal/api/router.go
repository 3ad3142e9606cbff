package api

import (
	"net/http"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/api/handlers"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/api/middleware"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/service"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func NewRouter(services *service.Services, hub *websocket.Hub, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	guestHandler := handlers.NewGuestHandler(services.Guest)
	leagueHandler := handlers.NewLeagueHandler(services.League, hub)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Guest, log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/guests", guestHandler.Create)

		r.Route("/leagues", func(r chi.Router) {
			r.Get("/", leagueHandler.List)
			r.Post("/", leagueHandler.Create)
			r.Get("/{id}", leagueHandler.Get)
			r.Put("/{id}", leagueHandler.Update)
			r.Delete("/{id}", leagueHandler.Delete)
		})
	})

	// WebSocket endpoint
	r.Get("/ws", wsHandler.Handle)

	return r
}
