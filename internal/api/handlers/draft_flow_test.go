package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/api/handlers"
	"github.com/cmpeavlerjr72/fantasy-golf/internal/websocket"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wsTimeout = 5 * time.Second

func issueGuest(t *testing.T, srv *httptest.Server, displayName string) handlers.GuestResponse {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/v1/guests", handlers.CreateGuestRequest{DisplayName: displayName})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var guest handlers.GuestResponse
	decodeJSON(t, resp, &guest)
	return guest
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, resp, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func wsSend(t *testing.T, conn *gws.Conn, msgType websocket.MessageType, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	msg := websocket.Message{Type: msgType, Payload: data, Timestamp: time.Now().UnixMilli()}
	require.NoError(t, conn.WriteJSON(msg))
}

// wsExpect reads messages until one of the wanted type arrives, skipping
// broadcasts meant for other assertions.
func wsExpect(t *testing.T, conn *gws.Conn, want websocket.MessageType) *websocket.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(wsTimeout))
	for i := 0; i < 20; i++ {
		var msg websocket.Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", want)
		if msg.Type == want {
			return &msg
		}
	}
	t.Fatalf("no %s message received", want)
	return nil
}

func wsPayload(t *testing.T, msg *websocket.Message, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(msg.Payload, v))
}

func TestDraftFlow_WebSocket(t *testing.T) {
	srv := newTestServer(t)
	league := createLeague(t, srv)

	alice := issueGuest(t, srv, "alice")
	bob := issueGuest(t, srv, "bob")

	aliceConn := dialWS(t, srv, alice.Token)
	bobConn := dialWS(t, srv, bob.Token)

	// Both join and receive the full snapshot.
	wsSend(t, aliceConn, websocket.MessageTypeJoinLeague, websocket.JoinLeaguePayload{LeagueID: league.ID})
	snapMsg := wsExpect(t, aliceConn, websocket.MessageTypeStateSnapshot)
	var snap websocket.SnapshotPayload
	wsPayload(t, snapMsg, &snap)
	assert.Equal(t, league.ID, snap.LeagueID)
	assert.Equal(t, "not_started", snap.Status)
	assert.Len(t, snap.Pool, 4)

	wsSend(t, bobConn, websocket.MessageTypeJoinLeague, websocket.JoinLeaguePayload{LeagueID: league.ID})
	wsExpect(t, bobConn, websocket.MessageTypeStateSnapshot)

	// Claim seats.
	wsSend(t, aliceConn, websocket.MessageTypeClaimSeat, websocket.ClaimSeatPayload{TeamIndex: 0})
	claimed := wsExpect(t, bobConn, websocket.MessageTypeSeatClaimed)
	var seat websocket.SeatClaimedPayload
	wsPayload(t, claimed, &seat)
	assert.Equal(t, 0, seat.TeamIndex)
	assert.Equal(t, "alice", seat.DisplayName)

	wsSend(t, bobConn, websocket.MessageTypeClaimSeat, websocket.ClaimSeatPayload{TeamIndex: 1})
	wsExpect(t, aliceConn, websocket.MessageTypeSeatClaimed)

	// Bob cannot take Alice's seat.
	wsSend(t, bobConn, websocket.MessageTypeClaimSeat, websocket.ClaimSeatPayload{TeamIndex: 0})
	errMsg := wsExpect(t, bobConn, websocket.MessageTypeError)
	var wsErr websocket.ErrorPayload
	wsPayload(t, errMsg, &wsErr)
	assert.Equal(t, websocket.CodeSeatTaken, wsErr.Code)

	// Start the draft.
	wsSend(t, aliceConn, websocket.MessageTypeStartDraft, nil)
	started := wsExpect(t, aliceConn, websocket.MessageTypeDraftStarted)
	var start websocket.DraftStartedPayload
	wsPayload(t, started, &start)
	assert.Equal(t, "in_progress", start.Status)
	assert.Equal(t, 0, start.TurnIndex)

	// Bob picking out of turn is rejected; only he sees the error.
	wsSend(t, bobConn, websocket.MessageTypeSubmitPick, websocket.SubmitPickPayload{TeamIndex: 1, PlayerID: "dg-1"})
	errMsg = wsExpect(t, bobConn, websocket.MessageTypeError)
	wsPayload(t, errMsg, &wsErr)
	assert.Equal(t, websocket.CodeNotYourTurn, wsErr.Code)

	// Alice picks; both sides observe it.
	wsSend(t, aliceConn, websocket.MessageTypeSubmitPick, websocket.SubmitPickPayload{TeamIndex: 0, PlayerID: "dg-1"})
	applied := wsExpect(t, bobConn, websocket.MessageTypePickApplied)
	var pick websocket.PickAppliedPayload
	wsPayload(t, applied, &pick)
	assert.Equal(t, 0, pick.TeamIndex)
	assert.Equal(t, "dg-1", pick.Player.ID)
	assert.Equal(t, 1, pick.TurnIndex)
	wsExpect(t, aliceConn, websocket.MessageTypePickApplied)

	// The drafted player is gone from the pool.
	wsSend(t, bobConn, websocket.MessageTypeSubmitPick, websocket.SubmitPickPayload{TeamIndex: 1, PlayerID: "dg-1"})
	errMsg = wsExpect(t, bobConn, websocket.MessageTypeError)
	wsPayload(t, errMsg, &wsErr)
	assert.Equal(t, websocket.CodePlayerUnavailable, wsErr.Code)
}

func TestDraftFlow_SnakeOrderOverWire(t *testing.T) {
	srv := newTestServer(t)
	league := createLeague(t, srv)

	alice := issueGuest(t, srv, "alice")
	bob := issueGuest(t, srv, "bob")
	aliceConn := dialWS(t, srv, alice.Token)
	bobConn := dialWS(t, srv, bob.Token)

	wsSend(t, aliceConn, websocket.MessageTypeJoinLeague, websocket.JoinLeaguePayload{LeagueID: league.ID})
	wsExpect(t, aliceConn, websocket.MessageTypeStateSnapshot)
	wsSend(t, bobConn, websocket.MessageTypeJoinLeague, websocket.JoinLeaguePayload{LeagueID: league.ID})
	wsExpect(t, bobConn, websocket.MessageTypeStateSnapshot)

	wsSend(t, aliceConn, websocket.MessageTypeClaimSeat, websocket.ClaimSeatPayload{TeamIndex: 0})
	wsSend(t, bobConn, websocket.MessageTypeClaimSeat, websocket.ClaimSeatPayload{TeamIndex: 1})
	wsSend(t, aliceConn, websocket.MessageTypeStartDraft, nil)
	wsExpect(t, aliceConn, websocket.MessageTypeDraftStarted)

	// Two teams, roster limit two: pick order is 0, 1, 1, 0.
	type turn struct {
		conn      *gws.Conn
		teamIndex int
		playerID  string
	}
	turns := []turn{
		{aliceConn, 0, "dg-1"},
		{bobConn, 1, "dg-2"},
		{bobConn, 1, "dg-3"},
		{aliceConn, 0, "dg-4"},
	}

	var lastPick websocket.PickAppliedPayload
	for _, tn := range turns {
		wsSend(t, tn.conn, websocket.MessageTypeSubmitPick, websocket.SubmitPickPayload{
			TeamIndex: tn.teamIndex,
			PlayerID:  tn.playerID,
		})
		applied := wsExpect(t, tn.conn, websocket.MessageTypePickApplied)
		wsPayload(t, applied, &lastPick)
		assert.Equal(t, tn.teamIndex, lastPick.TeamIndex)
		assert.Equal(t, tn.playerID, lastPick.Player.ID)
	}
	assert.Equal(t, "complete", lastPick.Status)

	// The completed rosters are visible over the REST API once persisted.
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/api/v1/leagues/" + league.ID)
		if err != nil {
			return false
		}
		var fetched handlers.LeagueResponse
		defer resp.Body.Close()
		if json.NewDecoder(resp.Body).Decode(&fetched) != nil {
			return false
		}
		return len(fetched.Teams) == 2 && len(fetched.Teams[0]) == 2 && len(fetched.Teams[1]) == 2
	}, wsTimeout, 50*time.Millisecond, "completed rosters never reached the league store")
}

func TestWebSocket_RejectsBadToken(t *testing.T) {
	srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	conn, resp, err := gws.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if conn != nil {
		conn.Close()
	}
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	url = "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err = gws.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if conn != nil {
		conn.Close()
	}
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
