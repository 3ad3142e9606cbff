package draft

import (
	"fmt"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// State is one league's draft: fixed teams, a shrinking pool, and a snake
// turn pointer. It is a plain value with no internal locking; callers are
// responsible for serializing mutations (the live session does this).
type State struct {
	TeamNames   []string
	Teams       []domain.Roster
	Pool        []domain.Player
	RosterLimit int
	TurnIndex   int
	Direction   int
	Status      Status

	initialPool []domain.Player
}

// Pick is the record of one applied selection, carrying the post-pick turn
// state so it can be broadcast without re-reading the session.
type Pick struct {
	TeamIndex int
	Player    domain.Player
	TurnIndex int
	Direction int
	Status    Status
}

// New builds a NotStarted draft. The pool is deduplicated by player id,
// first occurrence wins, so a sloppy upstream feed cannot seed the same
// player twice.
func New(teamNames []string, rosterLimit int, pool []domain.Player) (*State, error) {
	if len(teamNames) == 0 {
		return nil, fmt.Errorf("draft needs at least one team")
	}
	if rosterLimit <= 0 {
		return nil, fmt.Errorf("roster limit must be positive, got %d", rosterLimit)
	}

	seen := make(map[string]bool, len(pool))
	unique := make([]domain.Player, 0, len(pool))
	for _, p := range pool {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		unique = append(unique, p)
	}

	teams := make([]domain.Roster, len(teamNames))
	for i := range teams {
		teams[i] = domain.Roster{}
	}

	s := &State{
		TeamNames:   append([]string(nil), teamNames...),
		Teams:       teams,
		Pool:        unique,
		RosterLimit: rosterLimit,
		TurnIndex:   0,
		Direction:   1,
		Status:      StatusNotStarted,
		initialPool: append([]domain.Player(nil), unique...),
	}
	return s, nil
}

// Start transitions NotStarted -> InProgress.
func (s *State) Start() error {
	if s.Status != StatusNotStarted {
		return domain.ErrDraftAlreadyStarted
	}
	s.Status = StatusInProgress
	return nil
}

// ApplyPick removes the player from the pool, appends it to the team's
// roster, and advances the snake turn. Validation happens before any
// mutation, so a rejected pick leaves the state untouched.
func (s *State) ApplyPick(teamIndex int, playerID string) (Pick, error) {
	if s.Status != StatusInProgress {
		return Pick{}, domain.ErrDraftNotActive
	}
	if teamIndex != s.TurnIndex {
		return Pick{}, domain.ErrNotYourTurn
	}

	poolIdx := -1
	for i, p := range s.Pool {
		if p.ID == playerID {
			poolIdx = i
			break
		}
	}
	if poolIdx < 0 {
		return Pick{}, domain.ErrPlayerUnavailable
	}

	player := s.Pool[poolIdx]
	s.Pool = append(s.Pool[:poolIdx:poolIdx], s.Pool[poolIdx+1:]...)
	s.Teams[teamIndex] = append(s.Teams[teamIndex], player)

	s.advanceTurn()
	if s.full() {
		s.Status = StatusComplete
	}

	return Pick{
		TeamIndex: teamIndex,
		Player:    player,
		TurnIndex: s.TurnIndex,
		Direction: s.Direction,
		Status:    s.Status,
	}, nil
}

// Reset returns the draft to NotStarted with the original pool and empty
// rosters.
func (s *State) Reset() {
	for i := range s.Teams {
		s.Teams[i] = domain.Roster{}
	}
	s.Pool = append([]domain.Player(nil), s.initialPool...)
	s.TurnIndex = 0
	s.Direction = 1
	s.Status = StatusNotStarted
}

func (s *State) full() bool {
	for _, team := range s.Teams {
		if len(team) < s.RosterLimit {
			return false
		}
	}
	return true
}
