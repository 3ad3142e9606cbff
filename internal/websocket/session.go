package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/draft"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/pubsub"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

var errTeamIndexRange = errors.New("team index out of range")

type seatOwner struct {
	identity    string
	displayName string
}

// SessionConfig carries the per-session tunables the hub hands down.
type SessionConfig struct {
	// LockTimeout bounds how long a pick submission waits for its turn at
	// the serialization gate before failing with Busy.
	LockTimeout time.Duration
	// SeatGrace is how long a disconnected identity keeps its seat. A
	// reconnect inside the window cancels the release.
	SeatGrace time.Duration
}

// Session is the live, authoritative state of one league's draft. All
// mutations (picks, start, reset, seat changes) serialize through a
// capacity-1 gate; sessions for different leagues share nothing, so they
// never contend. Broadcasting enqueues to per-client buffered channels in
// serialization order; actual socket writes happen in each client's write
// pump, never under the gate.
type Session struct {
	leagueID uuid.UUID

	gate    chan struct{}
	cfg     SessionConfig
	clock   clockwork.Clock
	log     zerolog.Logger
	persist func(teams []domain.Roster)

	// guarded by gate
	draft *draft.State
	seats map[int]seatOwner

	mu              sync.Mutex
	subscribers     map[*Client]bool
	connsByIdentity map[string]int
	releaseTimers   map[string]clockwork.Timer
	seq             int
	lastActive      time.Time

	outbox chan []byte
	closed chan struct{}
	once   sync.Once
}

func NewSession(
	leagueID uuid.UUID,
	state *draft.State,
	cfg SessionConfig,
	clock clockwork.Clock,
	relay pubsub.Relay,
	persist func(teams []domain.Roster),
	log zerolog.Logger,
) *Session {
	s := &Session{
		leagueID:        leagueID,
		gate:            make(chan struct{}, 1),
		cfg:             cfg,
		clock:           clock,
		log:             log.With().Str("league_id", leagueID.String()).Logger(),
		persist:         persist,
		draft:           state,
		seats:           make(map[int]seatOwner),
		subscribers:     make(map[*Client]bool),
		connsByIdentity: make(map[string]int),
		releaseTimers:   make(map[string]clockwork.Timer),
		lastActive:      clock.Now(),
		outbox:          make(chan []byte, 256),
		closed:          make(chan struct{}),
	}
	go s.relayLoop(relay)
	return s
}

func (s *Session) LeagueID() uuid.UUID { return s.leagueID }

// acquire takes the serialization gate, waiting at most LockTimeout.
func (s *Session) acquire() error {
	select {
	case s.gate <- struct{}{}:
		return nil
	case <-s.clock.After(s.cfg.LockTimeout):
		return domain.ErrBusy
	}
}

// acquireBlocking takes the gate with no bound; used for operations that
// must not fail with Busy (subscribe, disconnect, grace release).
func (s *Session) acquireBlocking() {
	s.gate <- struct{}{}
}

func (s *Session) release() {
	<-s.gate
}

// Subscribe registers a connection and immediately sends it the full
// snapshot, so late joiners converge without replaying history. A pending
// grace-period seat release for the same identity is cancelled. Subscribing
// a connection that is already registered only resends the snapshot; the
// identity's connection count must not grow on a re-join.
func (s *Session) Subscribe(c *Client) {
	s.acquireBlocking()
	defer s.release()

	s.mu.Lock()
	if !s.subscribers[c] {
		s.subscribers[c] = true
		s.connsByIdentity[c.identity]++
		if t, ok := s.releaseTimers[c.identity]; ok {
			t.Stop()
			delete(s.releaseTimers, c.identity)
		}
	}
	s.lastActive = s.clock.Now()
	seq := s.seq
	s.mu.Unlock()

	s.sendSnapshot(c, seq)
}

// Unsubscribe removes a connection. The seat is not released immediately:
// if this was the identity's last connection, release is scheduled after the
// grace period so a brief reconnect does not lose the seat.
func (s *Session) Unsubscribe(c *Client) {
	s.acquireBlocking()
	defer s.release()

	s.mu.Lock()
	if !s.subscribers[c] {
		s.mu.Unlock()
		return
	}
	delete(s.subscribers, c)
	s.connsByIdentity[c.identity]--
	gone := s.connsByIdentity[c.identity] <= 0
	if gone {
		delete(s.connsByIdentity, c.identity)
	}
	s.lastActive = s.clock.Now()
	s.mu.Unlock()

	if gone && s.seatIndexOf(c.identity) >= 0 {
		identity := c.identity
		s.mu.Lock()
		if _, pending := s.releaseTimers[identity]; !pending {
			s.releaseTimers[identity] = s.clock.AfterFunc(s.cfg.SeatGrace, func() {
				s.releaseSeatAfterGrace(identity)
			})
		}
		s.mu.Unlock()
	}
}

func (s *Session) releaseSeatAfterGrace(identity string) {
	s.acquireBlocking()
	defer s.release()

	s.mu.Lock()
	delete(s.releaseTimers, identity)
	_, connected := s.connsByIdentity[identity]
	s.mu.Unlock()
	if connected {
		return
	}

	idx := s.seatIndexOf(identity)
	if idx < 0 {
		return
	}
	delete(s.seats, idx)
	s.log.Info().Str("identity", identity).Int("team_index", idx).Msg("seat released after grace period")
	s.broadcast(MessageTypeSeatReleased, SeatReleasedPayload{TeamIndex: idx, Identity: identity})
}

// seatIndexOf must be called under the gate.
func (s *Session) seatIndexOf(identity string) int {
	for idx, owner := range s.seats {
		if owner.identity == identity {
			return idx
		}
	}
	return -1
}

// ClaimSeat binds the client's identity to a team. Claiming a seat the
// identity already holds is idempotent; claiming a different one moves the
// identity and frees its old seat.
func (s *Session) ClaimSeat(c *Client, teamIndex int) error {
	s.acquireBlocking()
	defer s.release()
	s.touch()

	if teamIndex < 0 || teamIndex >= len(s.draft.Teams) {
		return errTeamIndexRange
	}

	if owner, ok := s.seats[teamIndex]; ok {
		if owner.identity != c.identity {
			return domain.ErrSeatTaken
		}
		return nil
	}

	if prev := s.seatIndexOf(c.identity); prev >= 0 {
		delete(s.seats, prev)
		s.broadcast(MessageTypeSeatReleased, SeatReleasedPayload{TeamIndex: prev, Identity: c.identity})
	}

	s.seats[teamIndex] = seatOwner{identity: c.identity, displayName: c.displayName}
	s.broadcast(MessageTypeSeatClaimed, SeatClaimedPayload{
		TeamIndex:   teamIndex,
		Identity:    c.identity,
		DisplayName: c.displayName,
	})
	return nil
}

// StartDraft transitions the draft to InProgress and announces it.
func (s *Session) StartDraft(c *Client) error {
	s.acquireBlocking()
	defer s.release()
	s.touch()

	if err := s.draft.Start(); err != nil {
		return err
	}

	s.log.Info().Str("identity", c.identity).Msg("draft started")
	s.broadcast(MessageTypeDraftStarted, DraftStartedPayload{
		Status:    string(s.draft.Status),
		TurnIndex: s.draft.TurnIndex,
		Direction: s.draft.Direction,
	})
	return nil
}

// SubmitPick is the arbitration path: it serializes the pick against all
// other mutations for this league, validates seat ownership and turn order,
// and applies exactly one winner per contested turn. Losers get NotYourTurn,
// PlayerUnavailable, or DraftNotActive depending on what the winner changed.
// A submission that cannot take the gate within LockTimeout fails Busy
// instead of queueing indefinitely.
func (s *Session) SubmitPick(c *Client, teamIndex int, playerID string) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()
	s.touch()

	owner, ok := s.seats[teamIndex]
	if !ok || owner.identity != c.identity {
		return domain.ErrNoSeat
	}

	pick, err := s.draft.ApplyPick(teamIndex, playerID)
	if err != nil {
		return err
	}

	s.log.Info().
		Str("identity", c.identity).
		Int("team_index", pick.TeamIndex).
		Str("player_id", pick.Player.ID).
		Int("next_turn", pick.TurnIndex).
		Msg("pick applied")

	s.broadcast(MessageTypePickApplied, PickAppliedPayload{
		TeamIndex: pick.TeamIndex,
		Player:    pick.Player,
		TurnIndex: pick.TurnIndex,
		Direction: pick.Direction,
		Status:    string(pick.Status),
	})

	if pick.Status == draft.StatusComplete && s.persist != nil {
		rosters := s.copyRosters()
		go s.persist(rosters)
	}
	return nil
}

// ResetDraft returns the session to NotStarted with the original pool,
// empty rosters, and no claimed seats, then broadcasts the resulting state.
func (s *Session) ResetDraft(c *Client) error {
	s.acquireBlocking()
	defer s.release()
	s.touch()

	s.draft.Reset()
	s.seats = make(map[int]seatOwner)

	s.mu.Lock()
	for identity, t := range s.releaseTimers {
		t.Stop()
		delete(s.releaseTimers, identity)
	}
	s.mu.Unlock()

	s.log.Info().Str("identity", c.identity).Msg("draft reset")
	s.broadcast(MessageTypeDraftReset, s.snapshotPayload())
	return nil
}

// SyncState resends the current snapshot to one connection.
func (s *Session) SyncState(c *Client) {
	s.acquireBlocking()
	defer s.release()

	s.mu.Lock()
	seq := s.seq
	s.mu.Unlock()
	s.sendSnapshot(c, seq)
}

// sendSnapshot must be called under the gate.
func (s *Session) sendSnapshot(c *Client, seq int) {
	msg, err := NewMessage(MessageTypeStateSnapshot, s.snapshotPayload())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to build snapshot")
		return
	}
	msg.Seq = seq
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal snapshot")
		return
	}
	c.enqueue(data)
}

// snapshotPayload must be called under the gate.
func (s *Session) snapshotPayload() SnapshotPayload {
	teams := make([][]domain.Player, len(s.draft.Teams))
	for i, roster := range s.draft.Teams {
		teams[i] = append([]domain.Player{}, roster...)
	}
	seats := make(map[int]SeatInfo, len(s.seats))
	for idx, owner := range s.seats {
		seats[idx] = SeatInfo{Identity: owner.identity, DisplayName: owner.displayName}
	}
	return SnapshotPayload{
		LeagueID:    s.leagueID.String(),
		Status:      string(s.draft.Status),
		TurnIndex:   s.draft.TurnIndex,
		Direction:   s.draft.Direction,
		RosterLimit: s.draft.RosterLimit,
		TeamNames:   append([]string{}, s.draft.TeamNames...),
		Teams:       teams,
		Pool:        append([]domain.Player{}, s.draft.Pool...),
		Seats:       seats,
	}
}

// copyRosters must be called under the gate.
func (s *Session) copyRosters() []domain.Roster {
	rosters := make([]domain.Roster, len(s.draft.Teams))
	for i, roster := range s.draft.Teams {
		rosters[i] = append(domain.Roster{}, roster...)
	}
	return rosters
}

// broadcast delivers one event to every subscriber, in the order events were
// applied (the caller holds the gate, so enqueue order equals serialization
// order). Subscribers whose send buffer is full are dropped; a stalled tab
// must not hold up the league.
func (s *Session) broadcast(msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		s.log.Error().Err(err).Str("type", string(msgType)).Msg("failed to build event")
		return
	}

	s.mu.Lock()
	s.seq++
	msg.Seq = s.seq
	data, err := json.Marshal(msg)
	if err != nil {
		s.mu.Unlock()
		s.log.Error().Err(err).Str("type", string(msgType)).Msg("failed to marshal event")
		return
	}
	for c := range s.subscribers {
		if !c.enqueue(data) {
			delete(s.subscribers, c)
			s.connsByIdentity[c.identity]--
			if s.connsByIdentity[c.identity] <= 0 {
				delete(s.connsByIdentity, c.identity)
				// A dropped subscriber gets the same grace-period seat
				// release as a clean disconnect.
				if s.seatIndexOf(c.identity) >= 0 {
					if _, pending := s.releaseTimers[c.identity]; !pending {
						identity := c.identity
						s.releaseTimers[identity] = s.clock.AfterFunc(s.cfg.SeatGrace, func() {
							s.releaseSeatAfterGrace(identity)
						})
					}
				}
			}
			c.Close()
			s.log.Warn().Str("identity", c.identity).Msg("dropped slow subscriber")
		}
	}
	s.mu.Unlock()

	select {
	case s.outbox <- data:
	default:
		// Relay is best-effort; never stall the draft for it.
	}
}

func (s *Session) relayLoop(relay pubsub.Relay) {
	id := s.leagueID.String()
	for {
		select {
		case <-s.closed:
			return
		case data := <-s.outbox:
			relay.Publish(id, data)
		}
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.clock.Now()
	s.mu.Unlock()
}

// Idle reports whether the session has no subscribers and how long it has
// been since the last activity. The hub uses it to pick eviction victims.
func (s *Session) Idle() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Since(s.lastActive), len(s.subscribers) == 0
}

// Rosters returns a copy of the current team rosters, for persistence.
func (s *Session) Rosters() []domain.Roster {
	s.acquireBlocking()
	defer s.release()
	return s.copyRosters()
}

// Close stops the relay loop and any pending seat-release timers. Applied
// picks live in the drafted rosters, which the hub persists before calling
// Close.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.closed)
		s.mu.Lock()
		for identity, t := range s.releaseTimers {
			t.Stop()
			delete(s.releaseTimers, identity)
		}
		s.mu.Unlock()
	})
}
