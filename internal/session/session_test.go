package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/shiftmaze/shiftmaze/internal/dependencies/clock"
	"github.com/shiftmaze/shiftmaze/internal/dependencies/mocks"
	"github.com/shiftmaze/shiftmaze/internal/dependencies/random"
	"github.com/shiftmaze/shiftmaze/internal/model"
	"github.com/shiftmaze/shiftmaze/internal/services/auth"
	"github.com/shiftmaze/shiftmaze/internal/services/board"
	"github.com/shiftmaze/shiftmaze/internal/services/game"
	"github.com/shiftmaze/shiftmaze/internal/services/shuffle"
	"github.com/shiftmaze/shiftmaze/internal/testutil"
)

const adminToken = "1234"

// fakeNotifier records every push the session makes. The watchdog broadcasts
// from its own goroutine, so access is guarded.
type fakeNotifier struct {
	mu       sync.Mutex
	joins    []*model.ClientGameState
	states   []*model.ClientGameState
	messages []string
	hovers   []*model.Position
	rejects  []string
	closed   bool
}

var _ ClientNotifier = (*fakeNotifier)(nil)

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{}
}

func (f *fakeNotifier) OnJoin(state *model.ClientGameState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, state)
}

func (f *fakeNotifier) OnStateChange(state *model.ClientGameState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, state)
}

func (f *fakeNotifier) OnMessage(text string, opts model.MessageOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

func (f *fakeNotifier) OnPushPositionHover(position *model.Position) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hovers = append(f.hovers, position)
}

func (f *fakeNotifier) OnServerReject(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejects = append(f.rejects, reason)
}

func (f *fakeNotifier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeNotifier) lastJoin() *model.ClientGameState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.joins) == 0 {
		return nil
	}
	return f.joins[len(f.joins)-1]
}

func (f *fakeNotifier) stateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.states)
}

func (f *fakeNotifier) hasMessage(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m == text {
			return true
		}
	}
	return false
}

func (f *fakeNotifier) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeNotifier) hoverCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hovers)
}

func (f *fakeNotifier) lastReject() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rejects) == 0 {
		return ""
	}
	return f.rejects[len(f.rejects)-1]
}

func (f *fakeNotifier) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type SessionSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	session *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.session = s.newSession(Config{
		TurnTimeout:  100 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
}

func (s *SessionSuite) newSession(config Config) *Session {
	rnd := random.New()
	logger := testutil.NopLogger()
	boardService := board.New(rnd)
	shuffleService := shuffle.New(boardService, rnd, logger)
	authService, err := auth.New(rnd, adminToken)
	s.Require().NoError(err)

	// The controller draws its turn order and deck from the mock so tests
	// are deterministic
	s.random = mocks.NewMockRandom()
	return New(authService, clock.New(), config, logger, func(onStateChange func(*model.Game)) *game.Controller {
		return game.NewController(boardService, shuffleService, s.random, logger, onStateChange)
	})
}

func (s *SessionSuite) connect(playerID, name string) *fakeNotifier {
	n := newFakeNotifier()
	s.Require().NoError(s.session.Connect(playerID, name, n))
	return n
}

// Connect tests

func (s *SessionSuite) TestConnectSeatsNewPlayer() {
	n := s.connect("p1", "Alice")

	join := n.lastJoin()
	s.Require().NotNil(join)
	s.Require().NotNil(join.Me)
	s.Equal("p1", join.Me.ID)
	s.Equal("Alice 1", join.Me.Name)
	s.True(n.hasMessage("Alice 1 connected"))
}

func (s *SessionSuite) TestConnectRejectsFifthPlayer() {
	for i := 0; i < model.MaxPlayers; i++ {
		s.connect(fmt.Sprintf("p%d", i), "Player")
	}

	n := newFakeNotifier()
	err := s.session.Connect("p5", "Late", n)
	s.ErrorIs(err, model.ErrGameFull)
	s.Equal("game is full", n.lastReject())
	s.True(n.isClosed())
}

func (s *SessionSuite) TestReconnectMidGameKeepsSeat() {
	s.connect("p1", "Alice")
	n2 := s.connect("p2", "Bob")
	s.Require().NoError(s.session.Start(adminToken))

	s.session.Disconnect("p1")
	s.True(n2.hasMessage("Alice 1 disconnected"))

	rejoined := newFakeNotifier()
	s.Require().NoError(s.session.Connect("p1", "Alice", rejoined))

	join := rejoined.lastJoin()
	s.Require().NotNil(join)
	s.Equal("p1", join.Me.ID)
	s.Len(join.Me.CurrentCards, 1) // cards survived the drop
	s.True(n2.hasMessage("Alice 1 reconnected"))
}

func (s *SessionSuite) TestDisconnectDuringSetupFreesSeat() {
	s.connect("p1", "Alice")
	n2 := s.connect("p2", "Bob")

	s.session.Disconnect("p1")

	s.True(n2.hasMessage("Alice 1 disconnected"))
	state := s.session.State("p2")
	s.Len(state.Players, 1)

	// The identity may now join again as a brand new player
	n := newFakeNotifier()
	s.NoError(s.session.Connect("p1", "Alice", n))
}

func (s *SessionSuite) TestDisconnectMidGameMarksSeatDisconnected() {
	s.connect("p1", "Alice")
	s.connect("p2", "Bob")
	s.Require().NoError(s.session.Start(adminToken))

	s.session.Disconnect("p1")

	state := s.session.State("p2")
	s.Require().Len(state.Players, 2)
	for _, p := range state.Players {
		if p.ID == "p1" {
			s.Equal(model.StatusDisconnected, p.Status)
		} else {
			s.Equal(model.StatusConnected, p.Status)
		}
	}
}

// Kick tests

func (s *SessionSuite) TestKickRejectsAndRemovesPlayer() {
	n1 := s.connect("p1", "Alice")
	n2 := s.connect("p2", "Bob")

	s.Require().NoError(s.session.RemovePlayer(adminToken, "p2"))

	s.Equal("host kicked you out", n2.lastReject())
	s.True(n2.isClosed())
	s.True(n1.hasMessage("Bob 1 disconnected (kicked)"))
	s.Len(s.session.State("p1").Players, 1)
}

func (s *SessionSuite) TestKickSuppressesDisconnectHandler() {
	n1 := s.connect("p1", "Alice")
	s.connect("p2", "Bob")

	s.Require().NoError(s.session.RemovePlayer(adminToken, "p2"))
	before := n1.messageCount()

	// The transport fires this when the kicked connection drops
	s.session.Disconnect("p2")

	s.Equal(before, n1.messageCount())
}

func (s *SessionSuite) TestKickRequiresToken() {
	s.connect("p1", "Alice")
	err := s.session.RemovePlayer("0000", "p1")
	s.ErrorIs(err, model.ErrNotAuthorized)
}

// Censorship tests

func (s *SessionSuite) TestStateHidesOtherPlayersUnfoundTrophies() {
	s.connect("p1", "Alice")
	s.connect("p2", "Bob")
	s.Require().NoError(s.session.Start(adminToken))

	state := s.session.State("p1")

	s.Require().NotNil(state.Me)
	s.Equal("p1", state.Me.ID)
	s.Len(state.MyCurrentCards, 1)
	s.Require().NotNil(state.MyPosition)

	for _, p := range state.Players {
		s.Len(p.CensoredCards, state.Settings.TrophyCount)
		for _, c := range p.CensoredCards {
			s.False(c.Found)
			s.Empty(c.Trophy)
		}
	}
}

func (s *SessionSuite) TestStateOmitsPositionDuringSetup() {
	s.connect("p1", "Alice")

	state := s.session.State("p1")
	s.Equal(model.StageSetup, state.Stage)
	s.Nil(state.MyPosition)
	s.Empty(state.MyCurrentCards)
}

func (s *SessionSuite) TestStateBroadcastOnMutation() {
	n1 := s.connect("p1", "Alice")
	before := n1.stateCount()

	s.connect("p2", "Bob")

	s.Greater(n1.stateCount(), before)
}

// Spectator tests

func (s *SessionSuite) TestSpectatorMirrorsPlayerInTurn() {
	s.connect("p1", "Alice")
	s.connect("p2", "Bob")
	s.Require().NoError(s.session.Start(adminToken))

	watcher := newFakeNotifier()
	s.Require().NoError(s.session.Spectate("watcher", watcher))

	join := watcher.lastJoin()
	s.Require().NotNil(join)
	s.Equal("spectator", join.Me.ID)
	s.Equal("Spectator", join.Me.Name)

	inTurnPos, err := s.session.MyPosition("p1") // mock random puts p1 in turn
	s.Require().NoError(err)
	s.Require().NotNil(join.MyPosition)
	s.Equal(inTurnPos, *join.MyPosition)
	s.Len(join.MyCurrentCards, 1)
}

func (s *SessionSuite) TestSpectatorReceivesBroadcasts() {
	s.connect("p1", "Alice")
	s.Require().NoError(s.session.Start(adminToken))

	watcher := newFakeNotifier()
	s.Require().NoError(s.session.Spectate("watcher", watcher))
	before := watcher.stateCount()

	s.Require().NoError(s.session.Push("p1", model.PushPosition{
		Position: model.Position{X: 1, Y: 0}, Direction: model.DirectionDown,
	}))

	s.Greater(watcher.stateCount(), before)
}

func (s *SessionSuite) TestSeatedPlayerCannotSpectateMidGame() {
	s.connect("p1", "Alice")
	s.connect("p2", "Bob")
	s.Require().NoError(s.session.Start(adminToken))

	err := s.session.Spectate("p1", newFakeNotifier())
	s.ErrorIs(err, model.ErrInvalidStage)
}

func (s *SessionSuite) TestSeatedPlayerMaySpectateDuringSetup() {
	s.connect("p1", "Alice")
	s.connect("p2", "Bob")

	s.Require().NoError(s.session.Spectate("p1", newFakeNotifier()))

	s.Len(s.session.State("p2").Players, 1)
}

// Hover tests

func (s *SessionSuite) TestHoverRelayedToOthersOnly() {
	n1 := s.connect("p1", "Alice")
	n2 := s.connect("p2", "Bob")
	s.Require().NoError(s.session.Start(adminToken))

	pos := &model.Position{X: 1, Y: 0}
	s.Require().NoError(s.session.SetPushPositionHover("p1", pos))

	s.Equal(1, n2.hoverCount())
	s.Equal(0, n1.hoverCount())
}

func (s *SessionSuite) TestHoverRejectedOutOfTurn() {
	s.connect("p1", "Alice")
	s.connect("p2", "Bob")
	s.Require().NoError(s.session.Start(adminToken))

	err := s.session.SetPushPositionHover("p2", &model.Position{X: 1, Y: 0})
	s.ErrorIs(err, model.ErrNotYourTurn)
}

// Chat tests

func (s *SessionSuite) TestSendMessagePrefixesPlayerName() {
	n1 := s.connect("p1", "Alice")
	n2 := s.connect("p2", "Bob")

	s.Require().NoError(s.session.SendMessage("p2", "hello there"))

	s.True(n1.hasMessage("Bob 1: hello there"))
	s.True(n2.hasMessage("Bob 1: hello there"))
}

// Admin gating tests

func (s *SessionSuite) TestAdminOperationsRequireToken() {
	s.connect("p1", "Alice")

	s.ErrorIs(s.session.Start("0000"), model.ErrNotAuthorized)
	s.ErrorIs(s.session.Restart("0000"), model.ErrNotAuthorized)
	s.ErrorIs(s.session.Promote("0000", "p1"), model.ErrNotAuthorized)
	s.ErrorIs(s.session.ShuffleBoard("0000", nil), model.ErrNotAuthorized)
	s.ErrorIs(s.session.ChangeSettings("0000", model.SettingsPatch{}), model.ErrNotAuthorized)
}

func (s *SessionSuite) TestChangeSettingsApplies() {
	s.connect("p1", "Alice")

	count := 2
	s.Require().NoError(s.session.ChangeSettings(adminToken, model.SettingsPatch{TrophyCount: &count}))
	s.Equal(2, s.session.State("p1").Settings.TrophyCount)
}

// Watchdog tests

func (s *SessionSuite) TestWatchdogSkipsTimedOutTurn() {
	n1 := s.connect("p1", "Alice")
	s.connect("p2", "Bob")
	s.Require().NoError(s.session.Start(adminToken))
	defer func() { s.Require().NoError(s.session.Restart(adminToken)) }()

	s.Eventually(func() bool {
		return n1.hasMessage("Skipping turn for Alice 1") && n1.hasMessage("Bob 1 in turn")
	}, 2*time.Second, 10*time.Millisecond)
	s.True(n1.hasMessage("Alice 1 in turn"))
}

func (s *SessionSuite) TestWatchdogAnnouncesWarnings() {
	session := s.newSession(Config{
		TurnTimeout:  150 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
		Warnings:     []time.Duration{100 * time.Millisecond},
	})
	n := newFakeNotifier()
	s.Require().NoError(session.Connect("p1", "Alice", n))
	s.Require().NoError(session.Start(adminToken))
	defer func() { s.Require().NoError(session.Restart(adminToken)) }()

	s.Eventually(func() bool {
		return n.hasMessage("0 seconds left in turn")
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *SessionSuite) TestRestartRetiresWatchdog() {
	session := s.newSession(Config{
		TurnTimeout:  300 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	n := newFakeNotifier()
	s.Require().NoError(session.Connect("p1", "Alice", n))
	s.Require().NoError(session.Start(adminToken))

	s.Require().NoError(session.Restart(adminToken))
	time.Sleep(600 * time.Millisecond)

	s.False(n.hasMessage("Skipping turn for Alice 1"))
	s.Equal(model.StageSetup, session.State("p1").Stage)
}
