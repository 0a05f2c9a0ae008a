package game

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shiftmaze/shiftmaze/internal/dependencies/random"
	"github.com/shiftmaze/shiftmaze/internal/model"
	"github.com/shiftmaze/shiftmaze/internal/services/board"
	"github.com/shiftmaze/shiftmaze/internal/services/shuffle"
)

const defaultPlayerName = "Player"

// Controller manages the game state machine and turn flow. It is not safe
// for concurrent use; the session serializes access to it.
type Controller struct {
	boardService   *board.Service
	shuffleService *shuffle.Service
	random         random.Random
	logger         *slog.Logger

	game          *model.Game
	onStateChange func(*model.Game)
}

// NewController creates a Controller holding a fresh game in the setup
// stage. onStateChange fires once after every mutating call, with the game
// already updated.
func NewController(
	boardService *board.Service,
	shuffleService *shuffle.Service,
	rnd random.Random,
	logger *slog.Logger,
	onStateChange func(*model.Game),
) *Controller {
	if onStateChange == nil {
		onStateChange = func(*model.Game) {}
	}
	c := &Controller{
		boardService:   boardService,
		shuffleService: shuffleService,
		random:         rnd,
		logger:         logger.With("component", "game"),
		onStateChange:  onStateChange,
	}
	c.game = c.initialState()
	c.shuffleBoard(c.game.Settings.ShuffleLevel)
	return c
}

func (c *Controller) initialState() *model.Game {
	return &model.Game{
		Stage:     model.StageSetup,
		Board:     &model.Board{},
		PieceBag:  nil,
		Players:   []*model.Player{},
		Cards:     board.NewDeck(c.random),
		ColorPool: model.NewColorPool(),
		Winners:   []*model.Player{},
		Settings:  model.DefaultSettings(),
	}
}

// Game returns the full uncensored state. Callers must not mutate it.
func (c *Controller) Game() *model.Game {
	return c.game
}

func (c *Controller) emit() {
	c.onStateChange(c.game)
}

// stageGuard validates the game is in one of the allowed stages
func (c *Controller) stageGuard(allowed ...model.Stage) error {
	for _, stage := range allowed {
		if c.game.Stage == stage {
			return nil
		}
	}
	return fmt.Errorf("stage %s: %w", c.game.Stage, model.ErrInvalidStage)
}

// ShuffleBoard regenerates the starting board, only possible during setup
func (c *Controller) ShuffleBoard(level model.ShuffleLevel) error {
	if err := c.stageGuard(model.StageSetup); err != nil {
		return err
	}
	if !level.IsValid() {
		return fmt.Errorf("level %q: %w", level, model.ErrInvalidShuffleLevel)
	}
	c.shuffleBoard(level)
	c.emit()
	return nil
}

func (c *Controller) shuffleBoard(level model.ShuffleLevel) {
	b, bag := c.shuffleService.Generate(level)
	c.game.Board = b
	c.game.PieceBag = bag
	if len(bag) != 1 {
		c.logger.Error("shuffle left unexpected bag size", "size", len(bag))
	}
}

// ChangeSettings applies a partial settings update during setup. Changing
// the shuffle level regenerates the board at the new difficulty.
func (c *Controller) ChangeSettings(patch model.SettingsPatch) error {
	if err := c.stageGuard(model.StageSetup); err != nil {
		return err
	}
	if patch.ShuffleLevel != nil {
		if !patch.ShuffleLevel.IsValid() {
			return fmt.Errorf("level %q: %w", *patch.ShuffleLevel, model.ErrInvalidShuffleLevel)
		}
		if *patch.ShuffleLevel != c.game.Settings.ShuffleLevel {
			c.shuffleBoard(*patch.ShuffleLevel)
		}
		c.game.Settings.ShuffleLevel = *patch.ShuffleLevel
	}
	if patch.TrophyCount != nil {
		c.game.Settings.TrophyCount = *patch.TrophyCount
	}
	c.emit()
	return nil
}

// AddPlayer seats a new player during setup, assigning a color from the
// pool and a visible name deduplicated against earlier players
func (c *Controller) AddPlayer(id, name string) (*model.Player, error) {
	if err := c.stageGuard(model.StageSetup); err != nil {
		return nil, err
	}
	if len(c.game.Players) >= model.MaxPlayers || len(c.game.ColorPool) == 0 {
		return nil, model.ErrGameFull
	}

	if name == "" {
		name = defaultPlayerName
	}
	player := &model.Player{
		ID:           id,
		OriginalName: name,
		Cards:        []*model.Card{},
	}
	player.Color = c.game.ColorPool[len(c.game.ColorPool)-1]
	c.game.ColorPool = c.game.ColorPool[:len(c.game.ColorPool)-1]
	player.Name = c.resolvePlayerName(name, len(c.game.Players))
	c.game.Players = append(c.game.Players, player)

	c.logger.Info("player joined",
		slog.String("player_id", id),
		slog.String("name", player.Name),
	)
	c.emit()
	return player, nil
}

// RemovePlayer unseats a player during setup, returning their color to the
// pool
func (c *Controller) RemovePlayer(id string) error {
	if err := c.stageGuard(model.StageSetup); err != nil {
		return err
	}
	player, err := c.PlayerByID(id)
	if err != nil {
		return err
	}
	players := c.game.Players[:0]
	for _, p := range c.game.Players {
		if p.ID != id {
			players = append(players, p)
		}
	}
	c.game.Players = players
	c.game.ColorPool = append(c.game.ColorPool, player.Color)
	c.resetPlayerVisibleNames()

	c.logger.Info("player removed", slog.String("player_id", id))
	c.emit()
	return nil
}

// PromotePlayer moves a player to the head of the roster. The first seat
// has host rights during setup, so this fixes the case where another player
// connected before the host. Colors are re-dealt in seat order.
func (c *Controller) PromotePlayer(id string) error {
	if err := c.stageGuard(model.StageSetup); err != nil {
		return err
	}
	index := c.playerIndexByID(id)
	if index == -1 {
		return fmt.Errorf("player %q: %w", id, model.ErrPlayerNotFound)
	}

	promoted := c.game.Players[index]
	c.game.Players = append(c.game.Players[:index], c.game.Players[index+1:]...)
	c.game.Players = append([]*model.Player{promoted}, c.game.Players...)

	c.resetPlayerVisibleNames()

	c.game.ColorPool = model.NewColorPool()
	for _, p := range c.game.Players {
		p.Color = c.game.ColorPool[len(c.game.ColorPool)-1]
		c.game.ColorPool = c.game.ColorPool[:len(c.game.ColorPool)-1]
	}

	c.logger.Info("player promoted", slog.String("player_id", id))
	c.emit()
	return nil
}

// Start locks the roster and begins play: a random player starts, players
// spawn on shuffled corners and cards are dealt from the deck
func (c *Controller) Start() error {
	if err := c.stageGuard(model.StageSetup); err != nil {
		return err
	}
	if len(c.game.PieceBag) != 1 {
		return fmt.Errorf("piece bag has %d pieces at start", len(c.game.PieceBag))
	}
	if len(c.game.Players) < 1 {
		return model.ErrNotEnoughPlayers
	}

	c.game.Stage = model.StagePlaying
	c.game.PlayerTurn = c.random.Intn(len(c.game.Players))
	c.game.PlayerWhoStarted = c.game.PlayerTurn

	corners := model.CornerPositions()
	c.random.Shuffle(len(corners), func(i, j int) {
		corners[i], corners[j] = corners[j], corners[i]
	})
	for i, player := range c.game.Players {
		c.boardService.MovePlayer(c.game.Board, player, corners[i])

		player.Cards = make([]*model.Card, 0, c.game.Settings.TrophyCount)
		for len(player.Cards) < c.game.Settings.TrophyCount && len(c.game.Cards) > 0 {
			card := c.game.Cards[len(c.game.Cards)-1]
			c.game.Cards = c.game.Cards[:len(c.game.Cards)-1]
			player.Cards = append(player.Cards, card)
		}
	}

	c.logger.Info("game started",
		slog.Int("players", len(c.game.Players)),
		slog.String("starting_player", c.game.Players[c.game.PlayerTurn].Name),
	)
	c.emit()
	return nil
}

// Restart resets the game to a fresh setup state. Seated players stay but
// lose their dealt cards; settings survive the reset.
func (c *Controller) Restart() error {
	players := c.game.Players
	colorPool := c.game.ColorPool
	settings := c.game.Settings

	c.game = c.initialState()
	c.game.Players = players
	c.game.ColorPool = colorPool
	c.game.Settings = settings

	c.shuffleBoard(c.game.Settings.ShuffleLevel)

	for _, p := range c.game.Players {
		p.Cards = []*model.Card{}
	}

	c.logger.Info("game restarted")
	c.emit()
	return nil
}

// PushByPlayer inserts the spare piece at the given slot. Rejected when it
// is not the player's turn, they already pushed, or the push would revert
// the previous one.
func (c *Controller) PushByPlayer(playerID string, pushPos model.PushPosition) error {
	if err := c.stageGuard(model.StagePlaying); err != nil {
		return err
	}
	if !c.IsPlayersTurn(playerID) {
		return fmt.Errorf("player %q: %w", playerID, model.ErrNotYourTurn)
	}
	if c.game.PlayerHasPushed {
		return fmt.Errorf("player %q: %w", playerID, model.ErrAlreadyPushed)
	}
	if prev := c.game.PreviousPushPosition; prev != nil {
		opposite := board.OppositePushPosition(*prev)
		if pushPos.X == opposite.X && pushPos.Y == opposite.Y {
			return fmt.Errorf("position (%d,%d): %w", pushPos.X, pushPos.Y, model.ErrIllegalReversePush)
		}
	}

	extra := c.game.PieceBag[len(c.game.PieceBag)-1]
	c.game.PieceBag = c.game.PieceBag[:len(c.game.PieceBag)-1]
	spare, err := c.boardService.PushWithPiece(c.game.Board, pushPos, extra)
	if err != nil {
		c.game.PieceBag = append(c.game.PieceBag, extra)
		return err
	}
	c.game.PieceBag = append(c.game.PieceBag, spare)
	c.game.PreviousPushPosition = &pushPos
	c.game.PlayerHasPushed = true
	c.emit()
	return nil
}

// MoveByPlayer moves the player's token, or stays in place when moveTo is
// nil. Either way the trophy under the token is checked and the turn
// advances.
func (c *Controller) MoveByPlayer(playerID string, moveTo *model.Position) error {
	if err := c.stageGuard(model.StagePlaying); err != nil {
		return err
	}
	if !c.IsPlayersTurn(playerID) {
		return fmt.Errorf("player %q: %w", playerID, model.ErrNotYourTurn)
	}
	if !c.game.PlayerHasPushed {
		return fmt.Errorf("player %q: %w", playerID, model.ErrMustPushFirst)
	}

	player, err := c.PlayerByID(playerID)
	if err != nil {
		return err
	}

	if moveTo != nil {
		from, ok := c.boardService.PlayerPosition(c.game.Board, playerID)
		if !ok {
			return fmt.Errorf("player %q: %w", playerID, model.ErrPlayerNotFound)
		}
		if !c.boardService.IsValidPlayerMove(c.game.Board, from, *moveTo) {
			return fmt.Errorf("(%d,%d) to (%d,%d): %w", from.X, from.Y, moveTo.X, moveTo.Y, model.ErrInvalidMove)
		}
		c.boardService.MovePlayer(c.game.Board, player, *moveTo)
	}

	c.maybeUpdateCardFound(player)
	c.nextTurn()
	c.emit()
	return nil
}

// SkipTurn advances the turn without a move, used when a player runs out of
// time. A pending push stands.
func (c *Controller) SkipTurn() error {
	if err := c.stageGuard(model.StagePlaying); err != nil {
		return err
	}
	c.nextTurn()
	c.emit()
	return nil
}

// SetExtraPieceRotationByPlayer rotates the spare piece before it is pushed
// in. Only the player in turn may rotate it.
func (c *Controller) SetExtraPieceRotationByPlayer(playerID string, rotation model.Rotation) error {
	if err := c.stageGuard(model.StagePlaying); err != nil {
		return err
	}
	if !rotation.IsValid() {
		return fmt.Errorf("rotation %d: %w", rotation, model.ErrInvalidRotation)
	}
	if !c.IsPlayersTurn(playerID) {
		return fmt.Errorf("player %q: %w", playerID, model.ErrNotYourTurn)
	}
	c.game.PieceBag[len(c.game.PieceBag)-1].Rotation = rotation
	c.emit()
	return nil
}

// SetNameByPlayer renames a player, rebuilding the deduplicated visible name
func (c *Controller) SetNameByPlayer(playerID, name string) error {
	index := c.playerIndexByID(playerID)
	if index == -1 {
		return fmt.Errorf("player %q: %w", playerID, model.ErrPlayerNotFound)
	}
	c.game.Players[index].OriginalName = name
	c.game.Players[index].Name = c.resolvePlayerName(name, index)
	c.emit()
	return nil
}

func (c *Controller) maybeUpdateCardFound(player *model.Player) {
	pos, ok := c.boardService.PlayerPosition(c.game.Board, player.ID)
	if !ok {
		return
	}
	piece := c.game.Board.At(pos)
	if piece.Trophy == "" {
		return
	}
	for _, card := range player.CurrentCards(1) {
		if card.Trophy == piece.Trophy {
			card.Found = true
			c.logger.Info("trophy found",
				slog.String("player_id", player.ID),
				slog.String("trophy", string(piece.Trophy)),
			)
			return
		}
	}
}

// nextTurn advances to the following player, or finishes the game when a
// winner exists
func (c *Controller) nextTurn() {
	if len(c.winners()) > 0 {
		c.finish()
		return
	}
	c.game.PlayerTurn++
	if c.game.PlayerTurn >= len(c.game.Players) {
		c.game.PlayerTurn = 0
	}
	c.game.PlayerHasPushed = false
	c.game.TurnCounter++
}

func (c *Controller) finish() {
	c.game.Stage = model.StageFinished
	c.game.Winners = c.winners()
	names := make([]string, 0, len(c.game.Winners))
	for _, w := range c.game.Winners {
		names = append(names, w.Name)
	}
	c.logger.Info("game finished", slog.String("winners", strings.Join(names, ", ")))
}

func (c *Controller) winners() []*model.Player {
	var winners []*model.Player
	for _, p := range c.game.Players {
		if p.HasFoundAll() {
			winners = append(winners, p)
		}
	}
	return winners
}

// resolvePlayerName returns the visible name: the original name plus a
// numeric suffix counting earlier players with the same name
func (c *Controller) resolvePlayerName(name string, playerIndex int) string {
	same := 0
	for i, p := range c.game.Players {
		if i < playerIndex && strings.EqualFold(p.OriginalName, name) {
			same++
		}
	}
	return fmt.Sprintf("%s %d", name, same+1)
}

func (c *Controller) resetPlayerVisibleNames() {
	for i, p := range c.game.Players {
		p.Name = c.resolvePlayerName(p.OriginalName, i)
	}
}

func (c *Controller) playerIndexByID(id string) int {
	for i, p := range c.game.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// PlayerByID finds a seated player
func (c *Controller) PlayerByID(id string) (*model.Player, error) {
	if i := c.playerIndexByID(id); i != -1 {
		return c.game.Players[i], nil
	}
	return nil, fmt.Errorf("player %q: %w", id, model.ErrPlayerNotFound)
}

// IsPlayersTurn reports whether the given player is in turn
func (c *Controller) IsPlayersTurn(id string) bool {
	return c.playerIndexByID(id) == c.game.PlayerTurn
}

// PlayersBetween lists the players seated after from, up to and excluding
// to, following turn order with wrap-around. Clients use it to show who
// still acts before a round completes.
func (c *Controller) PlayersBetween(fromID, toID string) ([]*model.Player, error) {
	from := c.playerIndexByID(fromID)
	to := c.playerIndexByID(toID)
	if from == -1 {
		return nil, fmt.Errorf("player %q: %w", fromID, model.ErrPlayerNotFound)
	}
	if to == -1 {
		return nil, fmt.Errorf("player %q: %w", toID, model.ErrPlayerNotFound)
	}
	var between []*model.Player
	for i := (from + 1) % len(c.game.Players); i != to; i = (i + 1) % len(c.game.Players) {
		between = append(between, c.game.Players[i])
	}
	return between, nil
}

// WhosTurn returns the player in turn
func (c *Controller) WhosTurn() *model.Player {
	return c.game.PlayerInTurn()
}

// PlayerPosition returns the cell a player's token occupies
func (c *Controller) PlayerPosition(playerID string) (model.Position, bool) {
	return c.boardService.PlayerPosition(c.game.Board, playerID)
}

// PlayersCurrentCards returns the cards the player currently hunts
func (c *Controller) PlayersCurrentCards(playerID string) []*model.Card {
	player, err := c.PlayerByID(playerID)
	if err != nil {
		return nil
	}
	return player.CurrentCards(1)
}

// ExtraPieceRotation returns the spare piece's rotation
func (c *Controller) ExtraPieceRotation() model.Rotation {
	return c.game.ExtraPiece().Rotation
}
