package model

import "errors"

// Sentinel errors for game rule and lifecycle violations. Callers match
// these with errors.Is to map failures onto stable wire error codes.
var (
	ErrGameFull            = errors.New("game is full")
	ErrInvalidStage        = errors.New("operation not allowed in current stage")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrAlreadyPushed       = errors.New("already pushed during this turn")
	ErrMustPushFirst       = errors.New("must push before moving")
	ErrInvalidMove         = errors.New("not a valid move")
	ErrInvalidPushPosition = errors.New("not a valid push position")
	ErrIllegalReversePush  = errors.New("can't push back the piece that was just pushed out")
	ErrInvalidRotation     = errors.New("invalid rotation")
	ErrInvalidShuffleLevel = errors.New("invalid shuffle level")
	ErrNoWinners           = errors.New("game finished without winners")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrNotEnoughPlayers    = errors.New("game requires at least one player")
)
