package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/service"
)

type GuestHandler struct {
	guestService *service.GuestService
}

func NewGuestHandler(guestService *service.GuestService) *GuestHandler {
	return &GuestHandler{guestService: guestService}
}

type CreateGuestRequest struct {
	DisplayName string `json:"displayName"`
}

type GuestResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Token       string `json:"token"`
}

// Create issues a signed guest identity. The token is presented on the
// websocket handshake and ties seats to the same person across tabs and
// reconnects.
func (h *GuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DisplayName == "" {
		http.Error(w, "Display name is required", http.StatusBadRequest)
		return
	}

	guest, err := h.guestService.Issue(req.DisplayName)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(GuestResponse{
		ID:          guest.ID.String(),
		DisplayName: guest.DisplayName,
		Token:       guest.Token,
	})
}
