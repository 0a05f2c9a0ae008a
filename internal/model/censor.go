package model

// ConnectionStatus is the transport state of a seated player as shown to
// clients. The transient to-be-kicked state is internal to the session and
// always rendered as disconnected.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// CensoredCard hides the trophy of a card until it has been found
type CensoredCard struct {
	Found  bool   `json:"found"`
	Trophy Trophy `json:"trophy,omitempty"`
}

// Censor returns the card as another player is allowed to see it
func (c *Card) Censor() CensoredCard {
	if c.Found {
		return CensoredCard{Found: true, Trophy: c.Trophy}
	}
	return CensoredCard{Found: false}
}

// CensoredPlayer is a player as seen by other viewers: the full card list
// collapses into censored cards plus the currently hunted cards
type CensoredPlayer struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	OriginalName  string           `json:"originalName"`
	Color         Color            `json:"color"`
	CurrentCards  []*Card          `json:"currentCards"`
	CensoredCards []CensoredCard   `json:"censoredCards"`
	Status        ConnectionStatus `json:"status,omitempty"`
}

// CensoredPieceOnBoard is a board tile whose occupying players are censored
type CensoredPieceOnBoard struct {
	Piece
	Position Position          `json:"position"`
	Players  []*CensoredPlayer `json:"players"`
}

// CensoredBoard is the board with every tile's player list censored
type CensoredBoard struct {
	Pieces [BoardSize][BoardSize]*CensoredPieceOnBoard `json:"pieces"`
}

// ClientGameState is the game state as transmitted to one viewer. Me is the
// viewer's own seat; for spectators it is a synthetic identity mirroring the
// player in turn.
type ClientGameState struct {
	Stage                Stage             `json:"stage"`
	Board                *CensoredBoard    `json:"board"`
	PieceBag             []*Piece          `json:"pieceBag"`
	Players              []*CensoredPlayer `json:"players"`
	PlayerTurn           int               `json:"playerTurn"`
	PlayerWhoStarted     int               `json:"playerWhoStarted"`
	PlayerHasPushed      bool              `json:"playerHasPushed"`
	TurnCounter          int               `json:"turnCounter"`
	Winners              []*CensoredPlayer `json:"winners"`
	PreviousPushPosition *PushPosition     `json:"previousPushPosition,omitempty"`
	Settings             Settings          `json:"settings"`
	Me                   *CensoredPlayer   `json:"me"`
	MyCurrentCards       []*Card           `json:"myCurrentCards"`
	MyPosition           *Position         `json:"myPosition,omitempty"`
}

// MessageOptions style a server chat notice
type MessageOptions struct {
	Bold bool `json:"bold,omitempty"`
}
