package repository

import (
	"context"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
	"github.com/google/uuid"
)

// LeagueRepository is the league store: team names, rosters, and the player
// pool for each league. The draft engine only ever touches it when loading a
// session and when persisting final rosters.
type LeagueRepository interface {
	Create(ctx context.Context, league *domain.League) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.League, error)
	List(ctx context.Context) ([]*domain.League, error)
	Update(ctx context.Context, league *domain.League) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	League LeagueRepository
}
