package domain

import "errors"

// League store errors
var (
	ErrLeagueNotFound = errors.New("league not found")
)

// Draft errors
var (
	ErrDraftNotActive      = errors.New("draft is not in progress")
	ErrDraftAlreadyStarted = errors.New("draft already started")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrPlayerUnavailable   = errors.New("player is not in the available pool")
)

// Session errors
var (
	ErrSeatTaken = errors.New("seat is already claimed")
	ErrNoSeat    = errors.New("seat for the current turn is not claimed by this identity")
	ErrBusy      = errors.New("draft is busy, retry")
)
