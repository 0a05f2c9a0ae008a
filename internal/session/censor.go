package session

import (
	"github.com/shiftmaze/shiftmaze/internal/model"
	"github.com/shiftmaze/shiftmaze/internal/services/game"
)

// spectatorID is the synthetic identity spectators see in the me slot
const spectatorID = "spectator"

// censorPlayer collapses a player's cards into what other viewers may see:
// the currently hunted cards plus found/unfound flags for the rest
func censorPlayer(p *model.Player, status model.ConnectionStatus) *model.CensoredPlayer {
	censored := make([]model.CensoredCard, 0, len(p.Cards))
	for _, card := range p.Cards {
		censored = append(censored, card.Censor())
	}
	return &model.CensoredPlayer{
		ID:            p.ID,
		Name:          p.Name,
		OriginalName:  p.OriginalName,
		Color:         p.Color,
		CurrentCards:  p.CurrentCards(1),
		CensoredCards: censored,
		Status:        status,
	}
}

// stateForViewer builds the censored snapshot one viewer receives. The full
// deck never leaves the server and every tile's player list is censored.
// statusOf resolves each seated player's connection status.
func stateForViewer(c *game.Controller, viewerID string, statusOf func(playerID string) model.ConnectionStatus) *model.ClientGameState {
	g := c.Game()

	censor := func(p *model.Player) *model.CensoredPlayer {
		return censorPlayer(p, statusOf(p.ID))
	}

	board := &model.CensoredBoard{}
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			piece := g.Board.At(model.Position{X: x, Y: y})
			if piece == nil {
				continue
			}
			players := make([]*model.CensoredPlayer, 0, len(piece.Players))
			for _, p := range piece.Players {
				players = append(players, censor(p))
			}
			board.Pieces[y][x] = &model.CensoredPieceOnBoard{
				Piece:    piece.Piece,
				Position: piece.Position,
				Players:  players,
			}
		}
	}

	players := make([]*model.CensoredPlayer, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, censor(p))
	}
	winners := make([]*model.CensoredPlayer, 0, len(g.Winners))
	for _, w := range g.Winners {
		winners = append(winners, censor(w))
	}

	state := &model.ClientGameState{
		Stage:                g.Stage,
		Board:                board,
		PieceBag:             g.PieceBag,
		Players:              players,
		PlayerTurn:           g.PlayerTurn,
		PlayerWhoStarted:     g.PlayerWhoStarted,
		PlayerHasPushed:      g.PlayerHasPushed,
		TurnCounter:          g.TurnCounter,
		Winners:              winners,
		PreviousPushPosition: g.PreviousPushPosition,
		Settings:             g.Settings,
	}

	if viewerID == spectatorID {
		fillSpectatorView(c, state)
		return state
	}

	if me, err := c.PlayerByID(viewerID); err == nil {
		state.Me = censor(me)
		state.MyCurrentCards = me.CurrentCards(1)
		if g.Stage != model.StageSetup {
			if pos, ok := c.PlayerPosition(viewerID); ok {
				state.MyPosition = &pos
			}
		}
	}
	return state
}

// fillSpectatorView puts a synthetic identity in the me slot whose cards and
// position mirror whoever is in turn
func fillSpectatorView(c *game.Controller, state *model.ClientGameState) {
	me := &model.CensoredPlayer{
		ID:           spectatorID,
		Name:         "Spectator",
		OriginalName: "Spectator",
		Status:       model.StatusConnected,
	}
	state.Me = me

	inTurn := c.WhosTurn()
	if inTurn == nil {
		return
	}
	state.MyCurrentCards = inTurn.CurrentCards(1)
	me.CurrentCards = state.MyCurrentCards
	if state.Stage != model.StageSetup {
		if pos, ok := c.PlayerPosition(inTurn.ID); ok {
			state.MyPosition = &pos
		}
	}
}
