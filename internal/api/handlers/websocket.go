package handlers

import (
	"net/http"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/service"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type WebSocketHandler struct {
	hub          *websocket.Hub
	guestService *service.GuestService
	log          zerolog.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, guestService *service.GuestService, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, guestService: guestService, log: log}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	identity, displayName, err := h.guestService.Validate(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, identity, displayName)

	go client.WritePump()
	go client.ReadPump()
}
