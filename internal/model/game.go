package model

// Stage is the game lifecycle phase
type Stage string

const (
	StageSetup    Stage = "setup"
	StagePlaying  Stage = "playing"
	StageFinished Stage = "finished"
)

// ShuffleLevel controls how hard the generated board is to navigate
type ShuffleLevel string

const (
	ShuffleLevelEasy    ShuffleLevel = "easy"
	ShuffleLevelMedium  ShuffleLevel = "medium"
	ShuffleLevelHard    ShuffleLevel = "hard"
	ShuffleLevelPerfect ShuffleLevel = "perfect"
)

// IsValid reports whether l is a known shuffle level
func (l ShuffleLevel) IsValid() bool {
	switch l {
	case ShuffleLevelEasy, ShuffleLevelMedium, ShuffleLevelHard, ShuffleLevelPerfect:
		return true
	}
	return false
}

// Settings are the host-adjustable game options
type Settings struct {
	TrophyCount  int          `json:"trophyCount"`
	ShuffleLevel ShuffleLevel `json:"shuffleLevel"`
}

// SettingsPatch is a partial settings update; nil fields keep their value
type SettingsPatch struct {
	TrophyCount  *int          `json:"trophyCount,omitempty"`
	ShuffleLevel *ShuffleLevel `json:"shuffleLevel,omitempty"`
}

// DefaultSettings returns the options a fresh game starts with
func DefaultSettings() Settings {
	return Settings{
		TrophyCount:  5,
		ShuffleLevel: ShuffleLevelHard,
	}
}

// Game is the full uncensored game state. Clients never see this directly;
// they receive a ClientGameState censored for their seat.
type Game struct {
	Stage                Stage         `json:"stage"`
	Board                *Board        `json:"board"`
	PieceBag             []*Piece      `json:"pieceBag"`
	Players              []*Player     `json:"players"`
	Cards                []*Card       `json:"cards"`
	ColorPool            []Color       `json:"playerColors"`
	PlayerTurn           int           `json:"playerTurn"`
	PlayerWhoStarted     int           `json:"playerWhoStarted"`
	PlayerHasPushed      bool          `json:"playerHasPushed"`
	TurnCounter          int           `json:"turnCounter"`
	Winners              []*Player     `json:"winners"`
	PreviousPushPosition *PushPosition `json:"previousPushPosition,omitempty"`
	Settings             Settings      `json:"settings"`
}

// ExtraPiece returns the spare piece waiting to be pushed in. During the
// playing stage the bag always holds exactly one piece.
func (g *Game) ExtraPiece() *Piece {
	if len(g.PieceBag) == 0 {
		return nil
	}
	return g.PieceBag[len(g.PieceBag)-1]
}

// PlayerInTurn returns the player whose turn it is
func (g *Game) PlayerInTurn() *Player {
	if len(g.Players) == 0 {
		return nil
	}
	return g.Players[g.PlayerTurn]
}
