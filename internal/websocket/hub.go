package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/draft"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/pubsub"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/service"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const persistAttempts = 3

type HubConfig struct {
	// SessionIdleTimeout is how long a session with no subscribers stays
	// resident before its rosters are persisted and it is evicted.
	SessionIdleTimeout time.Duration
	// SweepInterval is how often the eviction sweep runs.
	SweepInterval time.Duration
	LockTimeout   time.Duration
	SeatGrace     time.Duration
}

// Hub owns the set of live draft sessions, keyed by league id. It creates
// sessions on first join from league store data, hands existing ones back,
// and evicts idle ones after persisting their rosters.
type Hub struct {
	leagues *service.LeagueService
	relay   pubsub.Relay
	clock   clockwork.Clock
	cfg     HubConfig
	log     zerolog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	stop chan struct{}
	done chan struct{}
}

func NewHub(leagues *service.LeagueService, relay pubsub.Relay, clock clockwork.Clock, cfg HubConfig, log zerolog.Logger) *Hub {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Hub{
		leagues:  leagues,
		relay:    relay,
		clock:    clock,
		cfg:      cfg,
		log:      log.With().Str("component", "hub").Logger(),
		sessions: make(map[uuid.UUID]*Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run drives the idle-eviction sweep until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)

	ticker := h.clock.NewTicker(h.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			h.shutdown()
			return
		case <-ticker.Chan():
			h.evictIdle()
		}
	}
}

// Stop persists every resident session and shuts the hub down.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

// JoinLeague resolves (creating if absent) the league's session, moves the
// client onto it, and subscribes it. The subscriber immediately receives
// the full snapshot. If the eviction sweep dropped the session between the
// lookup and the subscribe, the join retries on a fresh session rather than
// leaving the client on an orphaned one.
func (h *Hub) JoinLeague(c *Client, leagueID uuid.UUID) error {
	for {
		s, err := h.GetOrCreate(context.Background(), leagueID)
		if err != nil {
			return err
		}

		if c.session != nil && c.session != s {
			c.session.Unsubscribe(c)
		}
		c.session = s
		s.Subscribe(c)

		if cur, ok := h.Get(leagueID); ok && cur == s {
			return nil
		}
		s.Unsubscribe(c)
		c.session = nil
	}
}

// Disconnect detaches a client from its session (grace-period seat release
// applies) and shuts down its write pump.
func (h *Hub) Disconnect(c *Client) {
	if c.session != nil {
		c.session.Unsubscribe(c)
		c.session = nil
	}
	c.Close()
}

// GetOrCreate returns the resident session for a league, or builds one from
// the league store.
func (h *Hub) GetOrCreate(ctx context.Context, leagueID uuid.UUID) (*Session, error) {
	h.mu.RLock()
	s, ok := h.sessions[leagueID]
	h.mu.RUnlock()
	if ok {
		return s, nil
	}

	setup, err := h.leagues.LoadLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	state, err := draft.New(setup.TeamNames, setup.RosterLimit, setup.Pool)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[leagueID]; ok {
		return s, nil
	}

	s = NewSession(
		leagueID,
		state,
		SessionConfig{LockTimeout: h.cfg.LockTimeout, SeatGrace: h.cfg.SeatGrace},
		h.clock,
		h.relay,
		func(teams []domain.Roster) {
			if err := h.persistRosters(leagueID, teams); err != nil {
				h.log.Error().Err(err).Str("league_id", leagueID.String()).Msg("failed to persist completed rosters")
			}
		},
		h.log,
	)
	h.sessions[leagueID] = s
	h.log.Info().Str("league_id", leagueID.String()).Msg("session created")
	return s, nil
}

// Get returns the resident session for a league, if any.
func (h *Hub) Get(leagueID uuid.UUID) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[leagueID]
	return s, ok
}

// Remove discards a league's session without persisting; used when the
// league itself is deleted.
func (h *Hub) Remove(leagueID uuid.UUID) {
	h.mu.Lock()
	s, ok := h.sessions[leagueID]
	delete(h.sessions, leagueID)
	h.mu.Unlock()
	if ok {
		s.Close()
	}
}

func (h *Hub) evictIdle() {
	h.mu.RLock()
	victims := make([]*Session, 0)
	for _, s := range h.sessions {
		if idle, empty := s.Idle(); empty && idle >= h.cfg.SessionIdleTimeout {
			victims = append(victims, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range victims {
		h.evict(s)
	}
}

// evict persists the session's rosters and drops it. Persistence failure
// keeps the session resident: losing a finished draft is worse than holding
// memory a little longer. Idleness is re-checked under the hub lock before
// the delete, since a join may have landed after the sweep's snapshot.
func (h *Hub) evict(s *Session) {
	if err := h.persistRosters(s.LeagueID(), s.Rosters()); err != nil {
		h.log.Error().Err(err).Str("league_id", s.LeagueID().String()).Msg("eviction aborted, persist failed")
		return
	}

	h.mu.Lock()
	if idle, empty := s.Idle(); !empty || idle < h.cfg.SessionIdleTimeout {
		h.mu.Unlock()
		h.log.Info().Str("league_id", s.LeagueID().String()).Msg("eviction aborted, session active again")
		return
	}
	delete(h.sessions, s.LeagueID())
	h.mu.Unlock()
	s.Close()
	h.log.Info().Str("league_id", s.LeagueID().String()).Msg("idle session evicted")
}

func (h *Hub) persistRosters(leagueID uuid.UUID, teams []domain.Roster) error {
	var err error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = h.leagues.SaveRosters(ctx, leagueID, teams)
		cancel()
		if err == nil {
			return nil
		}
		h.log.Warn().Err(err).
			Str("league_id", leagueID.String()).
			Int("attempt", attempt).
			Msg("failed to save rosters")
		if attempt < persistAttempts {
			h.clock.Sleep(time.Duration(attempt) * time.Second)
		}
	}
	return err
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[uuid.UUID]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		if err := h.persistRosters(s.LeagueID(), s.Rosters()); err != nil {
			h.log.Error().Err(err).Str("league_id", s.LeagueID().String()).Msg("failed to persist session at shutdown")
		}
		s.Close()
	}
}
