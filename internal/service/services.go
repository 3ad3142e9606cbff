package service

import (
	"github.com/cmpeavlerjr72/fantasy-golf/internal/config"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/repository"
)

type Services struct {
	League *LeagueService
	Guest  *GuestService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	return &Services{
		League: NewLeagueService(repos.League, cfg.RosterLimit),
		Guest:  NewGuestService(cfg),
	}
}
