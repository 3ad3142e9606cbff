package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
)

type MessageType string

const (
	// Client to Server
	MessageTypeJoinLeague MessageType = "JOIN_LEAGUE"
	MessageTypeClaimSeat  MessageType = "CLAIM_SEAT"
	MessageTypeStartDraft MessageType = "START_DRAFT"
	MessageTypeSubmitPick MessageType = "SUBMIT_PICK"
	MessageTypeResetDraft MessageType = "RESET_DRAFT"
	MessageTypeSyncState  MessageType = "SYNC_STATE"

	// Server to Client
	MessageTypeStateSnapshot MessageType = "STATE_SNAPSHOT"
	MessageTypePickApplied   MessageType = "PICK_APPLIED"
	MessageTypeDraftStarted  MessageType = "DRAFT_STARTED"
	MessageTypeDraftReset    MessageType = "DRAFT_RESET"
	MessageTypeSeatClaimed   MessageType = "SEAT_CLAIMED"
	MessageTypeSeatReleased  MessageType = "SEAT_RELEASED"
	MessageTypeError         MessageType = "ERROR"
)

// Message is the wire envelope in both directions. Seq is the per-league
// event sequence for server broadcasts; clients use it to detect gaps.
type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Seq       int             `json:"seq,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type JoinLeaguePayload struct {
	LeagueID string `json:"leagueId"`
}

type ClaimSeatPayload struct {
	TeamIndex int `json:"teamIndex"`
}

type SubmitPickPayload struct {
	TeamIndex int    `json:"teamIndex"`
	PlayerID  string `json:"playerId"`
}

// Server to Client payloads

type SeatInfo struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
}

type SnapshotPayload struct {
	LeagueID    string            `json:"leagueId"`
	Status      string            `json:"status"`
	TurnIndex   int               `json:"turnIndex"`
	Direction   int               `json:"direction"`
	RosterLimit int               `json:"rosterLimit"`
	TeamNames   []string          `json:"teamNames"`
	Teams       [][]domain.Player `json:"teams"`
	Pool        []domain.Player   `json:"pool"`
	Seats       map[int]SeatInfo  `json:"seats"`
}

type PickAppliedPayload struct {
	TeamIndex int           `json:"teamIndex"`
	Player    domain.Player `json:"player"`
	TurnIndex int           `json:"turnIndex"`
	Direction int           `json:"direction"`
	Status    string        `json:"status"`
}

type DraftStartedPayload struct {
	Status    string `json:"status"`
	TurnIndex int    `json:"turnIndex"`
	Direction int    `json:"direction"`
}

type SeatClaimedPayload struct {
	TeamIndex   int    `json:"teamIndex"`
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
}

type SeatReleasedPayload struct {
	TeamIndex int    `json:"teamIndex"`
	Identity  string `json:"identity"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Wire error codes. The UI distinguishes "not your turn" from "player gone"
// so it can refresh instead of silently failing.
const (
	CodeLeagueNotFound      = "LEAGUE_NOT_FOUND"
	CodeSeatTaken           = "SEAT_TAKEN"
	CodeSeatNotHeld         = "SEAT_NOT_HELD"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodePlayerUnavailable   = "PLAYER_UNAVAILABLE"
	CodeDraftNotActive      = "DRAFT_NOT_ACTIVE"
	CodeDraftAlreadyStarted = "DRAFT_ALREADY_STARTED"
	CodeBusy                = "BUSY"
	CodeInvalidPayload      = "INVALID_PAYLOAD"
	CodeNotInLeague         = "NOT_IN_LEAGUE"
	CodeInternal            = "INTERNAL"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrLeagueNotFound):
		return CodeLeagueNotFound
	case errors.Is(err, domain.ErrSeatTaken):
		return CodeSeatTaken
	case errors.Is(err, domain.ErrNoSeat):
		return CodeSeatNotHeld
	case errors.Is(err, domain.ErrNotYourTurn):
		return CodeNotYourTurn
	case errors.Is(err, domain.ErrPlayerUnavailable):
		return CodePlayerUnavailable
	case errors.Is(err, domain.ErrDraftNotActive):
		return CodeDraftNotActive
	case errors.Is(err, domain.ErrDraftAlreadyStarted):
		return CodeDraftAlreadyStarted
	case errors.Is(err, domain.ErrBusy):
		return CodeBusy
	case errors.Is(err, errTeamIndexRange):
		return CodeInvalidPayload
	default:
		return CodeInternal
	}
}
