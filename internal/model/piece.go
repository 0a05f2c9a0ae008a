package model

// PieceType is the shape of a maze tile
type PieceType string

const (
	PieceStraight PieceType = "straight"
	PieceCorner   PieceType = "corner"
	PieceTShape   PieceType = "t-shape"
)

// Rotation is one of the four cardinal rotations of a piece
type Rotation int

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// Rotations lists all legal rotation values
var Rotations = []Rotation{Rotation0, Rotation90, Rotation180, Rotation270}

// IsValid returns true if r is one of the four cardinal rotations
func (r Rotation) IsValid() bool {
	switch r {
	case Rotation0, Rotation90, Rotation180, Rotation270:
		return true
	}
	return false
}

// Trophy is a collectible symbol printed on a tile
type Trophy string

const (
	TrophyKnightHelmet Trophy = "KnightHelmet"
	TrophyCandles      Trophy = "Candles"
	TrophyMouse        Trophy = "Mouse"
	TrophyBomb         Trophy = "Bomb"
	TrophyPony         Trophy = "Pony"
	TrophyDagger       Trophy = "Dagger"
	TrophyDiamond      Trophy = "Diamond"
	TrophyBat          Trophy = "Bat"
	TrophyTreasure     Trophy = "Treasure"
	TrophyGhost        Trophy = "Ghost"
	TrophyRing         Trophy = "Ring"
	TrophyCat          Trophy = "Cat"
	TrophyMermaid      Trophy = "Mermaid"
	TrophyHolyGrail    Trophy = "HolyGrail"
	TrophyDinosaur     Trophy = "Dinosaur"
	TrophyKeys         Trophy = "Keys"
	TrophyCannon       Trophy = "Cannon"
	TrophyCrown        Trophy = "Crown"
	TrophyPotion       Trophy = "Potion"
	TrophyOwl          Trophy = "Owl"
	TrophyCoins        Trophy = "Coins"
	TrophyLizard       Trophy = "Lizard"
	TrophyBook         Trophy = "Book"
	TrophyBug          Trophy = "Bug"
)

// Trophies lists every trophy symbol; the card deck holds one card per trophy
var Trophies = []Trophy{
	TrophyKnightHelmet, TrophyCandles, TrophyDagger, TrophyDiamond,
	TrophyTreasure, TrophyRing, TrophyHolyGrail, TrophyKeys,
	TrophyCrown, TrophyPotion, TrophyCoins, TrophyBook,
	TrophyMouse, TrophyBomb, TrophyPony, TrophyBat,
	TrophyGhost, TrophyCat, TrophyMermaid, TrophyDinosaur,
	TrophyCannon, TrophyOwl, TrophyLizard, TrophyBug,
}

// Piece is a maze tile. Identity is immutable once created; rotation mutates
// in place during pushes and rotations.
type Piece struct {
	ID       string    `json:"id"`
	Type     PieceType `json:"type"`
	Rotation Rotation  `json:"rotation"`
	Trophy   Trophy    `json:"trophy,omitempty"`
}

// PieceOnBoard is a piece placed in the grid. Position is authoritative only
// while the piece is in the grid; Players are the tokens standing on the tile.
type PieceOnBoard struct {
	Piece
	Position Position  `json:"position"`
	Players  []*Player `json:"players"`
}

// RemovePlayer removes the player with the given id from the tile, if present
func (p *PieceOnBoard) RemovePlayer(id string) {
	for i, pl := range p.Players {
		if pl.ID == id {
			p.Players = append(p.Players[:i], p.Players[i+1:]...)
			return
		}
	}
}
