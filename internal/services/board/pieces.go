package board

import (
	"github.com/google/uuid"

	"github.com/shiftmaze/shiftmaze/internal/dependencies/random"
	"github.com/shiftmaze/shiftmaze/internal/model"
)

// NewInitialBoard returns a board holding only the fixed tiles: four corners
// opening into the board plus the twelve trophy tiles that never move.
// The remaining cells stay empty until the shuffler fills them.
func NewInitialBoard() *model.Board {
	type fixed struct {
		pos      model.Position
		piece    model.PieceType
		rotation model.Rotation
		trophy   model.Trophy
	}
	layout := []fixed{
		{model.Position{X: 0, Y: 0}, model.PieceCorner, 90, ""},
		{model.Position{X: 2, Y: 0}, model.PieceTShape, 90, model.TrophyKnightHelmet},
		{model.Position{X: 4, Y: 0}, model.PieceTShape, 90, model.TrophyCandles},
		{model.Position{X: 6, Y: 0}, model.PieceCorner, 180, ""},
		{model.Position{X: 0, Y: 2}, model.PieceTShape, 0, model.TrophyDagger},
		{model.Position{X: 2, Y: 2}, model.PieceTShape, 0, model.TrophyDiamond},
		{model.Position{X: 4, Y: 2}, model.PieceTShape, 90, model.TrophyTreasure},
		{model.Position{X: 6, Y: 2}, model.PieceTShape, 180, model.TrophyRing},
		{model.Position{X: 0, Y: 4}, model.PieceTShape, 0, model.TrophyHolyGrail},
		{model.Position{X: 2, Y: 4}, model.PieceTShape, 270, model.TrophyKeys},
		{model.Position{X: 4, Y: 4}, model.PieceTShape, 180, model.TrophyCrown},
		{model.Position{X: 6, Y: 4}, model.PieceTShape, 180, model.TrophyPotion},
		{model.Position{X: 0, Y: 6}, model.PieceCorner, 0, ""},
		{model.Position{X: 2, Y: 6}, model.PieceTShape, 270, model.TrophyCoins},
		{model.Position{X: 4, Y: 6}, model.PieceTShape, 270, model.TrophyBook},
		{model.Position{X: 6, Y: 6}, model.PieceCorner, 270, ""},
	}

	b := &model.Board{}
	for _, f := range layout {
		b.Set(f.pos, &model.PieceOnBoard{
			Piece: model.Piece{
				ID:       uuid.NewString(),
				Type:     f.piece,
				Rotation: f.rotation,
				Trophy:   f.trophy,
			},
			Players: []*model.Player{},
		})
	}
	return b
}

// NewPieceBag returns the 34 loose pieces in random order: enough to fill the
// 33 empty cells with one left over as the spare
func NewPieceBag(rnd random.Random) []*model.Piece {
	bag := make([]*model.Piece, 0, 34)
	for i := 0; i < 12; i++ {
		bag = append(bag, &model.Piece{Type: model.PieceStraight})
	}
	for i := 0; i < 10; i++ {
		bag = append(bag, &model.Piece{Type: model.PieceCorner})
	}
	trophies := []struct {
		pieceType model.PieceType
		trophy    model.Trophy
	}{
		{model.PieceCorner, model.TrophyMouse},
		{model.PieceCorner, model.TrophyBomb},
		{model.PieceTShape, model.TrophyPony},
		{model.PieceTShape, model.TrophyBat},
		{model.PieceTShape, model.TrophyGhost},
		{model.PieceCorner, model.TrophyCat},
		{model.PieceTShape, model.TrophyMermaid},
		{model.PieceTShape, model.TrophyDinosaur},
		{model.PieceTShape, model.TrophyCannon},
		{model.PieceCorner, model.TrophyOwl},
		{model.PieceCorner, model.TrophyLizard},
		{model.PieceCorner, model.TrophyBug},
	}
	for _, t := range trophies {
		bag = append(bag, &model.Piece{Type: t.pieceType, Trophy: t.trophy})
	}
	for _, p := range bag {
		p.ID = uuid.NewString()
	}
	rnd.Shuffle(len(bag), func(i, j int) {
		bag[i], bag[j] = bag[j], bag[i]
	})
	return bag
}

// NewDeck returns the 24 objective cards, one per trophy, in random order
func NewDeck(rnd random.Random) []*model.Card {
	deck := make([]*model.Card, 0, len(model.Trophies))
	for _, trophy := range model.Trophies {
		deck = append(deck, &model.Card{Trophy: trophy})
	}
	rnd.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
