/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wikilinks

import "errors"

// Failure categories. Every command error wraps exactly one of these.
var (
	ErrUnauthorized  = errors.New("not permitted")
	ErrWrongPhase    = errors.New("wrong phase")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrInvalidInput  = errors.New("invalid input")
	ErrLimit         = errors.New("limit reached")
)

// gameError carries the message shown to the player. Unwrap exposes the
// category so callers can branch with errors.Is.
type gameError struct {
	kind error
	msg  string
}

func (e *gameError) Error() string {
	return e.msg
}

func (e *gameError) Unwrap() error {
	return e.kind
}

func newError(kind error, msg string) error {
	return &gameError{kind: kind, msg: msg}
}

var (
	ErrNameEmpty   = newError(ErrInvalidInput, "Name cannot be empty")
	ErrNameTooLong = newError(ErrInvalidInput, "Name must be 20 characters or less")
	ErrNameTaken   = newError(ErrInvalidInput, "Name already taken")
	ErrGameFull    = newError(ErrLimit, "Game is full")
	ErrJoined      = newError(ErrInvalidInput, "You have already joined the game")

	ErrNotJudge         = newError(ErrUnauthorized, "Only the judge can start a round")
	ErrNotEnoughPlayers = newError(ErrLimit, "Need at least 2 non-judge players to start")

	ErrNotJoined         = newError(ErrUnknownPlayer, "You must join the game first")
	ErrJudgeCannotSubmit = newError(ErrUnauthorized, "Judge cannot submit links")
	ErrNotSubmitting     = newError(ErrWrongPhase, "Not accepting submissions right now")
	ErrInvalidLink       = newError(ErrInvalidInput, "Please submit a valid Wikipedia article URL")

	ErrNotJudgeGuess = newError(ErrUnauthorized, "Only the judge can make guesses")
	ErrNotJudging    = newError(ErrWrongPhase, "Not in judging phase")
	ErrInvalidGuess  = newError(ErrUnknownPlayer, "Invalid player guess")
	ErrNoSelection   = newError(ErrWrongPhase, "No submission has been selected for judging")

	ErrNotJudgeSettings = newError(ErrUnauthorized, "Only judge can change settings")
	ErrInvalidSettings  = newError(ErrInvalidInput, "Invalid settings")
)
