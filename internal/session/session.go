package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shiftmaze/shiftmaze/internal/dependencies/clock"
	"github.com/shiftmaze/shiftmaze/internal/model"
	"github.com/shiftmaze/shiftmaze/internal/services/auth"
	"github.com/shiftmaze/shiftmaze/internal/services/game"
)

// seatStatus tracks a seated player's connection lifecycle. toBeKicked is a
// transient pre-removal state that suppresses the disconnect handler racing
// a kick.
type seatStatus string

const (
	statusConnected    seatStatus = "connected"
	statusDisconnected seatStatus = "disconnected"
	statusToBeKicked   seatStatus = "toBeKicked"
)

type seat struct {
	notifier ClientNotifier
	status   seatStatus
}

// Config tunes the turn watchdog. Tests shrink the durations.
type Config struct {
	TurnTimeout  time.Duration
	PollInterval time.Duration
	Warnings     []time.Duration
}

// DefaultConfig returns the production watchdog timings
func DefaultConfig() Config {
	return Config{
		TurnTimeout:  90 * time.Second,
		PollInterval: 500 * time.Millisecond,
		Warnings:     []time.Duration{60 * time.Second, 30 * time.Second, 10 * time.Second},
	}
}

// Session orchestrates one hosted game: it owns the single mutable game
// state, fans broadcasts out to connected clients and runs the turn
// watchdog. All access to the controller is serialized through its mutex.
type Session struct {
	auth   *auth.Service
	clock  clock.Clock
	config Config
	logger *slog.Logger

	mu         sync.Mutex
	game       *game.Controller
	seats      map[string]*seat
	spectators map[string]ClientNotifier
	loopGen    int
}

// New creates a Session around a controller built with NewController. The
// gameFactory receives the state-change callback the controller must fire;
// the callback broadcasts to every connected client.
func New(authService *auth.Service, clk clock.Clock, config Config, logger *slog.Logger, gameFactory func(onStateChange func(*model.Game)) *game.Controller) *Session {
	s := &Session{
		auth:       authService,
		clock:      clk,
		config:     config,
		logger:     logger.With("component", "session"),
		seats:      make(map[string]*seat),
		spectators: make(map[string]ClientNotifier),
	}
	s.game = gameFactory(func(*model.Game) {
		s.broadcastStateLocked()
	})
	return s
}

// AdminToken returns the token gating host operations
func (s *Session) AdminToken() string {
	return s.auth.Token()
}

// Connect binds a client connection to a seat. A known identity reconnects
// into its old seat with cards and position intact; a new identity joins the
// roster, or is rejected when the game is full.
func (s *Session) Connect(playerID, name string, notifier ClientNotifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.seats[playerID]; ok {
		existing.notifier = notifier
		existing.status = statusConnected
		notifier.OnJoin(s.stateForLocked(playerID))
		s.broadcastStateLocked()
		s.messageLocked(s.playerLabelLocked(playerID)+" reconnected", model.MessageOptions{})
		return nil
	}

	s.seats[playerID] = &seat{notifier: notifier, status: statusConnected}
	if _, err := s.game.AddPlayer(playerID, name); err != nil {
		delete(s.seats, playerID)
		notifier.OnServerReject(strings.ToLower(err.Error()))
		notifier.Close()
		return err
	}
	notifier.OnJoin(s.stateForLocked(playerID))
	s.messageLocked(s.playerLabelLocked(playerID)+" connected", model.MessageOptions{})
	return nil
}

// Disconnect handles a dropped connection. During setup the player is fully
// removed and their color freed; mid-game the seat survives for a later
// reconnect. A kick in flight suppresses the handler.
func (s *Session) Disconnect(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.spectators[playerID]; ok {
		delete(s.spectators, playerID)
		return
	}

	st, ok := s.seats[playerID]
	if !ok || st.status == statusToBeKicked {
		return
	}

	label := s.playerLabelLocked(playerID)
	if s.game.Game().Stage != model.StageSetup {
		st.status = statusDisconnected
		s.broadcastStateLocked()
	} else {
		delete(s.seats, playerID)
		if err := s.game.RemovePlayer(playerID); err != nil {
			s.logger.Warn("removing disconnected player", "player_id", playerID, "error", err)
		}
	}
	s.messageLocked(label+" disconnected", model.MessageOptions{})
}

// Spectate converts the caller into a spectator: they receive broadcasts
// with a synthetic identity but hold no seat. During setup any existing
// seat is given up.
func (s *Session) Spectate(playerID string, notifier ClientNotifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seats[playerID]; ok {
		if s.game.Game().Stage != model.StageSetup {
			return fmt.Errorf("cannot spectate mid-game while seated: %w", model.ErrInvalidStage)
		}
		delete(s.seats, playerID)
		if err := s.game.RemovePlayer(playerID); err != nil {
			return err
		}
	}
	s.spectators[playerID] = notifier
	notifier.OnJoin(s.stateForLocked(spectatorID))
	return nil
}

// State returns the caller's censored snapshot
func (s *Session) State(playerID string) *model.ClientGameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spectators[playerID]; ok {
		return s.stateForLocked(spectatorID)
	}
	return s.stateForLocked(playerID)
}

// MyPosition returns the caller's token position
func (s *Session) MyPosition(playerID string) (model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.game.PlayerPosition(playerID)
	if !ok {
		return model.Position{}, fmt.Errorf("player %q: %w", playerID, model.ErrPlayerNotFound)
	}
	return pos, nil
}

// MyCurrentCards returns the cards the caller currently hunts
func (s *Session) MyCurrentCards(playerID string) []*model.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.PlayersCurrentCards(playerID)
}

// SetExtraPieceRotation rotates the spare piece for the in-turn caller
func (s *Session) SetExtraPieceRotation(playerID string, rotation model.Rotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.SetExtraPieceRotationByPlayer(playerID, rotation)
}

// SetMyName renames the caller
func (s *Session) SetMyName(playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.SetNameByPlayer(playerID, name)
}

// Push inserts the spare piece for the caller
func (s *Session) Push(playerID string, pushPos model.PushPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.PushByPlayer(playerID, pushPos)
}

// Move moves the caller's token, or stays in place when moveTo is nil
func (s *Session) Move(playerID string, moveTo *model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.MoveByPlayer(playerID, moveTo)
}

// SetPushPositionHover relays the in-turn caller's hover to everyone else.
// Not persisted; purely a UX signal.
func (s *Session) SetPushPositionHover(playerID string, position *model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.game.IsPlayersTurn(playerID) {
		return fmt.Errorf("player %q: %w", playerID, model.ErrNotYourTurn)
	}
	for id, st := range s.seats {
		if id == playerID || st.status != statusConnected {
			continue
		}
		st.notifier.OnPushPositionHover(position)
	}
	for id, n := range s.spectators {
		if id != playerID {
			n.OnPushPositionHover(position)
		}
	}
	return nil
}

// SendMessage broadcasts a chat line from the caller, prefixed with their
// visible name
func (s *Session) SendMessage(playerID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageLocked(fmt.Sprintf("%s: %s", s.playerLabelLocked(playerID), text), model.MessageOptions{})
	return nil
}

// Start is admin-gated: locks the roster, begins play and arms the turn
// watchdog
func (s *Session) Start(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.auth.Verify(token); err != nil {
		return err
	}
	if err := s.game.Start(); err != nil {
		return err
	}
	s.loopGen++
	go s.runGameLoop(s.loopGen)
	return nil
}

// Restart is admin-gated: resets to a fresh setup state, retiring any
// running watchdog. Seated players stay.
func (s *Session) Restart(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.auth.Verify(token); err != nil {
		return err
	}
	s.loopGen++
	return s.game.Restart()
}

// Promote is admin-gated: moves the caller to the head of the roster
func (s *Session) Promote(token, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.auth.Verify(token); err != nil {
		return err
	}
	return s.game.PromotePlayer(playerID)
}

// ShuffleBoard is admin-gated: regenerates the board, defaulting to the
// configured level
func (s *Session) ShuffleBoard(token string, level *model.ShuffleLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.auth.Verify(token); err != nil {
		return err
	}
	l := s.game.Game().Settings.ShuffleLevel
	if level != nil {
		l = *level
	}
	return s.game.ShuffleBoard(l)
}

// ChangeSettings is admin-gated: applies a partial settings update
func (s *Session) ChangeSettings(token string, patch model.SettingsPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.auth.Verify(token); err != nil {
		return err
	}
	return s.game.ChangeSettings(patch)
}

// RemovePlayer is admin-gated: kicks a player. The client is proactively
// rejected so it will not try to reconnect, unlike a plain disconnect.
func (s *Session) RemovePlayer(token, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.auth.Verify(token); err != nil {
		return err
	}

	player, err := s.game.PlayerByID(playerID)
	if err != nil {
		return err
	}
	label := player.Name

	if st, ok := s.seats[playerID]; ok {
		st.status = statusToBeKicked
		st.notifier.OnServerReject("host kicked you out")
		st.notifier.Close()
		delete(s.seats, playerID)
	}

	if err := s.game.RemovePlayer(playerID); err != nil {
		return err
	}
	s.messageLocked(label+" disconnected (kicked)", model.MessageOptions{})
	return nil
}

// runGameLoop drives turn timeouts until the game leaves the playing stage.
// gen retires stale loops after a restart.
func (s *Session) runGameLoop(gen int) {
	for {
		s.mu.Lock()
		alive := gen == s.loopGen && s.game.Game().Stage == model.StagePlaying
		s.mu.Unlock()
		if !alive {
			return
		}

		timedOut, stale := s.watchTurn(gen)
		if stale {
			return
		}
		if timedOut {
			s.mu.Lock()
			if gen == s.loopGen && s.game.Game().Stage == model.StagePlaying {
				s.messageLocked("Skipping turn for "+s.game.WhosTurn().Name, model.MessageOptions{})
				if err := s.game.SkipTurn(); err != nil {
					s.logger.Warn("skipping turn", "error", err)
				}
			}
			s.mu.Unlock()
		}

		s.mu.Lock()
		finished := s.game.Game().Stage == model.StageFinished && gen == s.loopGen
		if finished {
			s.messageLocked("Game finished!", model.MessageOptions{})
		}
		s.mu.Unlock()
		if finished {
			return
		}
	}
}

// watchTurn polls until the current turn ends one way or another. Returns
// timedOut when the player ran out of time, and stale when the loop is
// obsolete and must exit without acting.
func (s *Session) watchTurn(gen int) (timedOut, stale bool) {
	s.mu.Lock()
	if gen != s.loopGen || s.game.Game().Stage != model.StagePlaying {
		s.mu.Unlock()
		return false, true
	}
	player := s.game.WhosTurn()
	turnCounter := s.game.Game().TurnCounter
	cardsStart := s.game.PlayersCurrentCards(player.ID)
	s.messageLocked(player.Name+" in turn", model.MessageOptions{})
	s.mu.Unlock()

	warnings := append([]time.Duration(nil), s.config.Warnings...)
	turnStart := s.clock.Now()

	for s.clock.Now().Sub(turnStart) < s.config.TurnTimeout {
		time.Sleep(s.config.PollInterval)

		s.mu.Lock()
		if gen != s.loopGen || s.game.Game().Stage == model.StageSetup {
			s.mu.Unlock()
			return false, true
		}
		if s.game.Game().Stage == model.StageFinished {
			s.mu.Unlock()
			return false, false
		}
		if s.game.Game().TurnCounter != turnCounter {
			cardsNow := s.game.PlayersCurrentCards(player.ID)
			if len(cardsStart) > 0 && (len(cardsNow) == 0 || cardsStart[0].Trophy != cardsNow[0].Trophy) {
				s.messageLocked(
					fmt.Sprintf("%s found %s! ⭐️", player.Name, cardsStart[0].Trophy),
					model.MessageOptions{Bold: true},
				)
			}
			s.mu.Unlock()
			return false, false
		}

		timeLeft := s.config.TurnTimeout - s.clock.Now().Sub(turnStart)
		if len(warnings) > 0 && timeLeft < warnings[0] {
			warning := warnings[0]
			warnings = warnings[1:]
			s.messageLocked(fmt.Sprintf("%d seconds left in turn", int(warning.Seconds())), model.MessageOptions{})
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	if gen != s.loopGen || s.game.Game().Stage != model.StagePlaying {
		s.mu.Unlock()
		return false, true
	}
	s.messageLocked(
		fmt.Sprintf("Timeout for %s after %d seconds", s.game.WhosTurn().Name, int(s.config.TurnTimeout.Seconds())),
		model.MessageOptions{},
	)
	s.mu.Unlock()
	return true, false
}

// broadcastStateLocked sends each connected viewer their own censored copy.
// Callers hold the mutex; the controller's state-change callback lands here.
func (s *Session) broadcastStateLocked() {
	for id, st := range s.seats {
		if st.status != statusConnected {
			continue
		}
		st.notifier.OnStateChange(s.stateForLocked(id))
	}
	for _, n := range s.spectators {
		n.OnStateChange(s.stateForLocked(spectatorID))
	}
}

// messageLocked broadcasts a notice to every connected client
func (s *Session) messageLocked(text string, opts model.MessageOptions) {
	s.logger.Debug("broadcast", slog.String("message", text))
	for _, st := range s.seats {
		if st.status != statusConnected {
			continue
		}
		st.notifier.OnMessage(text, opts)
	}
	for _, n := range s.spectators {
		n.OnMessage(text, opts)
	}
}

func (s *Session) stateForLocked(viewerID string) *model.ClientGameState {
	return stateForViewer(s.game, viewerID, func(playerID string) model.ConnectionStatus {
		if st, ok := s.seats[playerID]; ok && st.status == statusConnected {
			return model.StatusConnected
		}
		return model.StatusDisconnected
	})
}

func (s *Session) playerLabelLocked(playerID string) string {
	if p, err := s.game.PlayerByID(playerID); err == nil {
		return p.Name
	}
	return "Spectator"
}
