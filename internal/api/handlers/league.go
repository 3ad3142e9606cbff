package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/service"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type LeagueHandler struct {
	leagueService *service.LeagueService
	hub           *websocket.Hub
}

func NewLeagueHandler(leagueService *service.LeagueService, hub *websocket.Hub) *LeagueHandler {
	return &LeagueHandler{leagueService: leagueService, hub: hub}
}

type CreateLeagueRequest struct {
	Name        string          `json:"name"`
	TeamNames   []string        `json:"teamNames"`
	RosterLimit int             `json:"rosterLimit"`
	Pool        []domain.Player `json:"pool"`
}

type UpdateLeagueRequest struct {
	Name      *string         `json:"name"`
	TeamNames []string        `json:"teamNames"`
	Teams     []domain.Roster `json:"teams"`
}

type LeagueResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	RosterLimit int             `json:"rosterLimit"`
	TeamNames   []string        `json:"teamNames"`
	Teams       []domain.Roster `json:"teams"`
	Pool        []domain.Player `json:"pool"`
}

func leagueResponse(league *domain.League) (*LeagueResponse, error) {
	names, err := league.DecodeTeamNames()
	if err != nil {
		return nil, err
	}
	teams, err := league.DecodeTeams()
	if err != nil {
		return nil, err
	}
	pool, err := league.DecodePool()
	if err != nil {
		return nil, err
	}
	return &LeagueResponse{
		ID:          league.ID.String(),
		Name:        league.Name,
		RosterLimit: league.RosterLimit,
		TeamNames:   names,
		Teams:       teams,
		Pool:        pool,
	}, nil
}

func (h *LeagueHandler) List(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.leagueService.ListLeagues(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]*LeagueResponse, 0, len(leagues))
	for _, league := range leagues {
		lr, err := leagueResponse(league)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		resp = append(resp, lr)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	league, err := h.leagueService.CreateLeague(r.Context(), service.CreateLeagueInput{
		Name:        req.Name,
		TeamNames:   req.TeamNames,
		RosterLimit: req.RosterLimit,
		Pool:        req.Pool,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := leagueResponse(league)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

func (h *LeagueHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid league id", http.StatusBadRequest)
		return
	}

	league, err := h.leagueService.GetLeague(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLeagueNotFound) {
			http.Error(w, "League not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp, err := leagueResponse(league)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *LeagueHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid league id", http.StatusBadRequest)
		return
	}

	var req UpdateLeagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	league, err := h.leagueService.UpdateLeague(r.Context(), id, service.UpdateLeagueInput{
		Name:      req.Name,
		TeamNames: req.TeamNames,
		Teams:     req.Teams,
	})
	if err != nil {
		if errors.Is(err, domain.ErrLeagueNotFound) {
			http.Error(w, "League not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp, err := leagueResponse(league)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *LeagueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid league id", http.StatusBadRequest)
		return
	}

	if err := h.leagueService.DeleteLeague(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrLeagueNotFound) {
			http.Error(w, "League not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// The live session, if any, goes with the league.
	h.hub.Remove(id)

	w.WriteHeader(http.StatusNoContent)
}
