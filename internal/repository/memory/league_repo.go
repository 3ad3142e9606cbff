package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/repository"
	"github.com/google/uuid"
)

// LeagueRepository is an in-memory league store. It backs local development
// when no DATABASE_URL is configured, and every test that needs a store.
type LeagueRepository struct {
	mu      sync.RWMutex
	leagues map[uuid.UUID]domain.League
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{leagues: make(map[uuid.UUID]domain.League)}
}

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{League: NewLeagueRepository()}
}

func (r *LeagueRepository) Create(_ context.Context, league *domain.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if league.ID == uuid.Nil {
		league.ID = uuid.New()
	}
	now := time.Now()
	league.CreatedAt = now
	league.UpdatedAt = now
	r.leagues[league.ID] = *league
	return nil
}

func (r *LeagueRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	league, ok := r.leagues[id]
	if !ok {
		return nil, domain.ErrLeagueNotFound
	}
	return &league, nil
}

func (r *LeagueRepository) List(_ context.Context) ([]*domain.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	leagues := make([]*domain.League, 0, len(r.leagues))
	for id := range r.leagues {
		league := r.leagues[id]
		leagues = append(leagues, &league)
	}
	return leagues, nil
}

func (r *LeagueRepository) Update(_ context.Context, league *domain.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leagues[league.ID]; !ok {
		return domain.ErrLeagueNotFound
	}
	league.UpdatedAt = time.Now()
	r.leagues[league.ID] = *league
	return nil
}

func (r *LeagueRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leagues[id]; !ok {
		return domain.ErrLeagueNotFound
	}
	delete(r.leagues, id)
	return nil
}
