package service

import (
	"context"
	"fmt"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/repository"
	"github.com/google/uuid"
)

// LeagueService wraps the league store for both the HTTP handlers and the
// draft hub. LoadLeague/SaveRosters are the two calls the draft engine makes.
type LeagueService struct {
	leagueRepo         repository.LeagueRepository
	defaultRosterLimit int
}

func NewLeagueService(leagueRepo repository.LeagueRepository, defaultRosterLimit int) *LeagueService {
	if defaultRosterLimit <= 0 {
		defaultRosterLimit = domain.DefaultRosterLimit
	}
	return &LeagueService{leagueRepo: leagueRepo, defaultRosterLimit: defaultRosterLimit}
}

type CreateLeagueInput struct {
	Name        string
	TeamNames   []string
	RosterLimit int
	Pool        []domain.Player
}

func (s *LeagueService) CreateLeague(ctx context.Context, input CreateLeagueInput) (*domain.League, error) {
	if len(input.TeamNames) < 2 {
		return nil, fmt.Errorf("league needs at least two teams, got %d", len(input.TeamNames))
	}
	if input.RosterLimit <= 0 {
		input.RosterLimit = s.defaultRosterLimit
	}
	if len(input.Pool) < len(input.TeamNames)*input.RosterLimit {
		return nil, fmt.Errorf("pool of %d players cannot fill %d rosters of %d",
			len(input.Pool), len(input.TeamNames), input.RosterLimit)
	}

	league := &domain.League{
		ID:          uuid.New(),
		Name:        input.Name,
		RosterLimit: input.RosterLimit,
	}
	if err := league.SetTeamNames(input.TeamNames); err != nil {
		return nil, err
	}
	emptyTeams := make([]domain.Roster, len(input.TeamNames))
	for i := range emptyTeams {
		emptyTeams[i] = domain.Roster{}
	}
	if err := league.SetTeams(emptyTeams); err != nil {
		return nil, err
	}
	if err := league.SetPool(input.Pool); err != nil {
		return nil, err
	}

	if err := s.leagueRepo.Create(ctx, league); err != nil {
		return nil, err
	}
	return league, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	return s.leagueRepo.GetByID(ctx, id)
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]*domain.League, error) {
	return s.leagueRepo.List(ctx)
}

type UpdateLeagueInput struct {
	Name      *string
	TeamNames []string
	Teams     []domain.Roster
}

func (s *LeagueService) UpdateLeague(ctx context.Context, id uuid.UUID, input UpdateLeagueInput) (*domain.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		league.Name = *input.Name
	}
	if input.TeamNames != nil {
		if err := league.SetTeamNames(input.TeamNames); err != nil {
			return nil, err
		}
	}
	if input.Teams != nil {
		if err := league.SetTeams(input.Teams); err != nil {
			return nil, err
		}
	}

	if err := s.leagueRepo.Update(ctx, league); err != nil {
		return nil, err
	}
	return league, nil
}

func (s *LeagueService) DeleteLeague(ctx context.Context, id uuid.UUID) error {
	return s.leagueRepo.Delete(ctx, id)
}

// LeagueSetup is the initial state a draft session is built from.
type LeagueSetup struct {
	TeamNames   []string
	RosterLimit int
	Pool        []domain.Player
}

// LoadLeague returns the session-building view of a league.
func (s *LeagueService) LoadLeague(ctx context.Context, id uuid.UUID) (*LeagueSetup, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	names, err := league.DecodeTeamNames()
	if err != nil {
		return nil, fmt.Errorf("decode team names for league %s: %w", id, err)
	}
	pool, err := league.DecodePool()
	if err != nil {
		return nil, fmt.Errorf("decode pool for league %s: %w", id, err)
	}

	return &LeagueSetup{
		TeamNames:   names,
		RosterLimit: league.RosterLimit,
		Pool:        pool,
	}, nil
}

// SaveRosters persists drafted rosters. Called when a session is evicted and
// when a draft completes; failure here risks losing the draft result, so the
// hub retries it with backoff.
func (s *LeagueService) SaveRosters(ctx context.Context, id uuid.UUID, teams []domain.Roster) error {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := league.SetTeams(teams); err != nil {
		return err
	}
	return s.leagueRepo.Update(ctx, league)
}
