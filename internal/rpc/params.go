package rpc

import "github.com/shiftmaze/shiftmaze/internal/model"

// SetExtraPieceRotationParams rotate the spare piece
type SetExtraPieceRotationParams struct {
	Rotation model.Rotation `json:"rotation"`
}

// SetPushPositionHoverParams relay the in-turn player's hover; a nil
// position clears it
type SetPushPositionHoverParams struct {
	Position *model.Position `json:"position,omitempty"`
}

// SetMyNameParams rename the calling player
type SetMyNameParams struct {
	Name string `json:"name"`
}

// MoveParams move the calling player's token; nil means stay in place
type MoveParams struct {
	MoveTo *model.Position `json:"moveTo,omitempty"`
}

// PushParams insert the spare piece at a push slot
type PushParams struct {
	PushPosition model.PushPosition `json:"pushPosition"`
}

// SendMessageParams broadcast a chat message
type SendMessageParams struct {
	Text string `json:"text"`
}

// TokenParams carry only the admin token, used by start/restart/promote
type TokenParams struct {
	Token string `json:"token"`
}

// ShuffleBoardParams regenerate the board, optionally at a new level
type ShuffleBoardParams struct {
	Token string              `json:"token"`
	Level *model.ShuffleLevel `json:"level,omitempty"`
}

// RemovePlayerParams kick a player by ID
type RemovePlayerParams struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
}

// ChangeSettingsParams apply a partial settings update
type ChangeSettingsParams struct {
	Token    string              `json:"token"`
	Settings model.SettingsPatch `json:"settings"`
}

// StateParams carry a censored state snapshot in onJoin and onStateChange
type StateParams struct {
	State *model.ClientGameState `json:"state"`
}

// MessageParams carry a chat or server notice in onMessage
type MessageParams struct {
	Text    string               `json:"text"`
	Options model.MessageOptions `json:"options"`
}

// PushPositionHoverParams forward a hover to the other players
type PushPositionHoverParams struct {
	Position *model.Position `json:"position,omitempty"`
}

// ServerRejectParams tell a client it was turned away and must not reconnect
type ServerRejectParams struct {
	Reason string `json:"reason"`
}
