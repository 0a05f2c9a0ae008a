package rpc

import (
	"errors"

	"github.com/shiftmaze/shiftmaze/internal/model"
)

// Error is the wire form of a failed call
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Stable error codes clients may branch on
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnknownMethod       = "UNKNOWN_METHOD"
	CodeGameFull            = "GAME_FULL"
	CodeInvalidStage        = "INVALID_STAGE"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeAlreadyPushed       = "ALREADY_PUSHED"
	CodeMustPushFirst       = "MUST_PUSH_FIRST"
	CodeInvalidMove         = "INVALID_MOVE"
	CodeInvalidPushPosition = "INVALID_PUSH_POSITION"
	CodeIllegalReversePush  = "ILLEGAL_REVERSE_PUSH"
	CodeInvalidRotation     = "INVALID_ROTATION"
	CodeInvalidShuffleLevel = "INVALID_SHUFFLE_LEVEL"
	CodeNotEnoughPlayers    = "NOT_ENOUGH_PLAYERS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// ToError maps an error onto a wire Error with a stable code. Unmapped
// errors collapse into an internal error without leaking detail.
func ToError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	switch {
	case errors.Is(err, model.ErrGameFull):
		return &Error{CodeGameFull, "Game is full"}
	case errors.Is(err, model.ErrInvalidStage):
		return &Error{CodeInvalidStage, "Operation not allowed in current stage"}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &Error{CodePlayerNotFound, "Player not found"}
	case errors.Is(err, model.ErrNotYourTurn):
		return &Error{CodeNotYourTurn, "Not your turn"}
	case errors.Is(err, model.ErrAlreadyPushed):
		return &Error{CodeAlreadyPushed, "Already pushed during this turn"}
	case errors.Is(err, model.ErrMustPushFirst):
		return &Error{CodeMustPushFirst, "Must push before moving"}
	case errors.Is(err, model.ErrInvalidMove):
		return &Error{CodeInvalidMove, "Not a valid move"}
	case errors.Is(err, model.ErrInvalidPushPosition):
		return &Error{CodeInvalidPushPosition, "Not a valid push position"}
	case errors.Is(err, model.ErrIllegalReversePush):
		return &Error{CodeIllegalReversePush, "Cannot revert the previous push"}
	case errors.Is(err, model.ErrInvalidRotation):
		return &Error{CodeInvalidRotation, "Rotation must be 0, 90, 180 or 270"}
	case errors.Is(err, model.ErrInvalidShuffleLevel):
		return &Error{CodeInvalidShuffleLevel, "Unknown shuffle level"}
	case errors.Is(err, model.ErrNotEnoughPlayers):
		return &Error{CodeNotEnoughPlayers, "Game requires at least one player"}
	case errors.Is(err, model.ErrNotAuthorized):
		return &Error{CodeUnauthorized, "Invalid admin token"}
	default:
		return &Error{CodeInternalError, "Internal server error"}
	}
}

// NewInvalidRequestError flags a malformed request
func NewInvalidRequestError(message string) error {
	return &Error{CodeInvalidRequest, message}
}

// NewUnknownMethodError flags a call to a method the server does not expose
func NewUnknownMethodError(method string) error {
	return &Error{CodeUnknownMethod, "Unknown method: " + method}
}
