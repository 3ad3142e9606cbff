package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection (one browser tab). Several connections
// may share an identity; seats belong to identities, not connections.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	done        chan struct{}
	session     *Session
	identity    string
	displayName string
	log         zerolog.Logger
	closeOnce   sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, identity uuid.UUID, displayName string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		done:        make(chan struct{}),
		identity:    identity.String(),
		displayName: displayName,
		log:         hub.log.With().Str("identity", identity.String()).Logger(),
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(CodeInvalidPayload, "malformed message")
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeJoinLeague:
		var payload JoinLeaguePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError(CodeInvalidPayload, "invalid join league payload")
			return
		}
		leagueID, err := uuid.Parse(payload.LeagueID)
		if err != nil {
			c.sendError(CodeInvalidPayload, "invalid league id")
			return
		}
		if err := c.hub.JoinLeague(c, leagueID); err != nil {
			c.sendError(errorCode(err), err.Error())
		}

	case MessageTypeClaimSeat:
		var payload ClaimSeatPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError(CodeInvalidPayload, "invalid claim seat payload")
			return
		}
		if c.session == nil {
			c.sendError(CodeNotInLeague, "join a league first")
			return
		}
		if err := c.session.ClaimSeat(c, payload.TeamIndex); err != nil {
			c.sendError(errorCode(err), err.Error())
		}

	case MessageTypeStartDraft:
		if c.session == nil {
			c.sendError(CodeNotInLeague, "join a league first")
			return
		}
		if err := c.session.StartDraft(c); err != nil {
			c.sendError(errorCode(err), err.Error())
		}

	case MessageTypeSubmitPick:
		var payload SubmitPickPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError(CodeInvalidPayload, "invalid submit pick payload")
			return
		}
		if c.session == nil {
			c.sendError(CodeNotInLeague, "join a league first")
			return
		}
		if err := c.session.SubmitPick(c, payload.TeamIndex, payload.PlayerID); err != nil {
			c.sendError(errorCode(err), err.Error())
		}

	case MessageTypeResetDraft:
		if c.session == nil {
			c.sendError(CodeNotInLeague, "join a league first")
			return
		}
		if err := c.session.ResetDraft(c); err != nil {
			c.sendError(errorCode(err), err.Error())
		}

	case MessageTypeSyncState:
		if c.session == nil {
			c.sendError(CodeNotInLeague, "join a league first")
			return
		}
		c.session.SyncState(c)

	default:
		c.sendError(CodeInvalidPayload, "unknown message type")
	}
}

// enqueue hands a marshaled message to the write pump without blocking.
// Returns false when the buffer is full, meaning the client can't keep up.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
