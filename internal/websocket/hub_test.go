package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/pubsub"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/repository/memory"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/service"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T, clock clockwork.Clock, cfg HubConfig) (*Hub, *service.LeagueService) {
	t.Helper()
	repos := memory.NewRepositories()
	leagues := service.NewLeagueService(repos.League, domain.DefaultRosterLimit)
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = time.Second
	}
	if cfg.SeatGrace <= 0 {
		cfg.SeatGrace = 30 * time.Second
	}
	if cfg.SessionIdleTimeout <= 0 {
		cfg.SessionIdleTimeout = 30 * time.Minute
	}
	h := NewHub(leagues, pubsub.NoopRelay{}, clock, cfg, zerolog.Nop())
	return h, leagues
}

func createTestLeague(t *testing.T, leagues *service.LeagueService) uuid.UUID {
	t.Helper()
	league, err := leagues.CreateLeague(context.Background(), service.CreateLeagueInput{
		Name:        "Sunday Major",
		TeamNames:   []string{"A", "B"},
		RosterLimit: 1,
		Pool:        testPool("p1", "p2"),
	})
	require.NoError(t, err)
	return league.ID
}

func TestHub_GetOrCreate(t *testing.T) {
	h, leagues := newTestHub(t, clockwork.NewRealClock(), HubConfig{})
	id := createTestLeague(t, leagues)

	s1, err := h.GetOrCreate(context.Background(), id)
	require.NoError(t, err)
	t.Cleanup(s1.Close)

	s2, err := h.GetOrCreate(context.Background(), id)
	require.NoError(t, err)
	assert.Same(t, s1, s2, "repeat joins must land on the same session")
}

func TestHub_GetOrCreate_UnknownLeague(t *testing.T) {
	h, _ := newTestHub(t, clockwork.NewRealClock(), HubConfig{})

	_, err := h.GetOrCreate(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrLeagueNotFound)
}

func TestHub_JoinLeagueSubscribes(t *testing.T) {
	h, leagues := newTestHub(t, clockwork.NewRealClock(), HubConfig{})
	id := createTestLeague(t, leagues)

	c := newTestClient("alice")
	require.NoError(t, h.JoinLeague(c, id))

	msg := nextMessage(t, c)
	require.Equal(t, MessageTypeStateSnapshot, msg.Type)
	var snap SnapshotPayload
	decodePayload(t, msg, &snap)
	assert.Equal(t, id.String(), snap.LeagueID)

	s, ok := h.Get(id)
	require.True(t, ok)
	t.Cleanup(s.Close)
	assert.Same(t, s, c.session)
}

func TestHub_JoinLeagueMovesClient(t *testing.T) {
	h, leagues := newTestHub(t, clockwork.NewRealClock(), HubConfig{})
	first := createTestLeague(t, leagues)
	second := createTestLeague(t, leagues)

	c := newTestClient("alice")
	require.NoError(t, h.JoinLeague(c, first))
	nextMessage(t, c)

	require.NoError(t, h.JoinLeague(c, second))
	msg := nextMessageOfType(t, c, MessageTypeStateSnapshot)
	var snap SnapshotPayload
	decodePayload(t, msg, &snap)
	assert.Equal(t, second.String(), snap.LeagueID)

	s1, ok := h.Get(first)
	require.True(t, ok)
	t.Cleanup(s1.Close)
	s1.mu.Lock()
	_, stillSubscribed := s1.subscribers[c]
	s1.mu.Unlock()
	assert.False(t, stillSubscribed, "client must leave the old session")

	s2, ok := h.Get(second)
	require.True(t, ok)
	t.Cleanup(s2.Close)
}

func TestHub_IdleSessionEvictedAndPersisted(t *testing.T) {
	fc := clockwork.NewFakeClock()
	h, leagues := newTestHub(t, fc, HubConfig{
		SessionIdleTimeout: 30 * time.Minute,
		SweepInterval:      time.Minute,
	})
	id := createTestLeague(t, leagues)

	go h.Run()
	fc.BlockUntil(1)

	s, err := h.GetOrCreate(context.Background(), id)
	require.NoError(t, err)

	alice := newTestClient("alice")
	require.NoError(t, s.ClaimSeat(alice, 0))
	require.NoError(t, s.StartDraft(alice))
	require.NoError(t, s.SubmitPick(alice, 0, "p1"))

	// No subscribers, so once idle long enough the sweep evicts it.
	fc.Advance(31 * time.Minute)

	require.Eventually(t, func() bool {
		_, ok := h.Get(id)
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "idle session was not evicted")

	league, err := leagues.GetLeague(context.Background(), id)
	require.NoError(t, err)
	teams, err := league.DecodeTeams()
	require.NoError(t, err)
	require.Len(t, teams, 2)
	require.Len(t, teams[0], 1)
	assert.Equal(t, "p1", teams[0][0].ID)

	h.Stop()
}

func TestHub_SessionWithSubscriberNotEvicted(t *testing.T) {
	fc := clockwork.NewFakeClock()
	h, leagues := newTestHub(t, fc, HubConfig{
		SessionIdleTimeout: 30 * time.Minute,
		SweepInterval:      time.Minute,
	})
	id := createTestLeague(t, leagues)

	go h.Run()
	fc.BlockUntil(1)

	c := newTestClient("alice")
	require.NoError(t, h.JoinLeague(c, id))
	nextMessage(t, c)

	fc.Advance(31 * time.Minute)

	// Give the sweep a chance to run, then confirm the session survived.
	time.Sleep(100 * time.Millisecond)
	_, ok := h.Get(id)
	assert.True(t, ok, "session with a live subscriber must stay resident")

	h.Stop()
}

func TestHub_EvictAbortsWhenSessionActiveAgain(t *testing.T) {
	fc := clockwork.NewFakeClock()
	h, leagues := newTestHub(t, fc, HubConfig{
		SessionIdleTimeout: 30 * time.Minute,
		SweepInterval:      time.Minute,
	})
	id := createTestLeague(t, leagues)

	s, err := h.GetOrCreate(context.Background(), id)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	// Long enough idle that the sweep would have picked it as a victim.
	fc.Advance(31 * time.Minute)

	// A join lands after that idleness snapshot but before the evict.
	c := newTestClient("alice")
	require.NoError(t, h.JoinLeague(c, id))
	nextMessage(t, c)

	h.evict(s)

	cur, ok := h.Get(id)
	require.True(t, ok, "session that became active again must not be evicted")
	assert.Same(t, s, cur)
	assert.Same(t, s, c.session)
}

func TestHub_RemoveDropsSessionWithoutPersisting(t *testing.T) {
	h, leagues := newTestHub(t, clockwork.NewRealClock(), HubConfig{})
	id := createTestLeague(t, leagues)

	s, err := h.GetOrCreate(context.Background(), id)
	require.NoError(t, err)

	alice := newTestClient("alice")
	require.NoError(t, s.ClaimSeat(alice, 0))
	require.NoError(t, s.StartDraft(alice))
	require.NoError(t, s.SubmitPick(alice, 0, "p1"))

	h.Remove(id)
	_, ok := h.Get(id)
	assert.False(t, ok)

	// The league row keeps whatever was last saved, not the live picks.
	league, err := leagues.GetLeague(context.Background(), id)
	require.NoError(t, err)
	teams, err := league.DecodeTeams()
	require.NoError(t, err)
	for _, roster := range teams {
		assert.Empty(t, roster)
	}
}

func TestHub_StopPersistsResidentSessions(t *testing.T) {
	h, leagues := newTestHub(t, clockwork.NewRealClock(), HubConfig{})
	id := createTestLeague(t, leagues)

	go h.Run()

	s, err := h.GetOrCreate(context.Background(), id)
	require.NoError(t, err)

	alice := newTestClient("alice")
	bob := newTestClient("bob")
	require.NoError(t, s.ClaimSeat(alice, 0))
	require.NoError(t, s.ClaimSeat(bob, 1))
	require.NoError(t, s.StartDraft(alice))
	require.NoError(t, s.SubmitPick(alice, 0, "p1"))
	require.NoError(t, s.SubmitPick(bob, 1, "p2"))

	h.Stop()

	league, err := leagues.GetLeague(context.Background(), id)
	require.NoError(t, err)
	teams, err := league.DecodeTeams()
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "p1", teams[0][0].ID)
	assert.Equal(t, "p2", teams[1][0].ID)
}
