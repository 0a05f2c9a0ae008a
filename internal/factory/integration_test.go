package factory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/shiftmaze/shiftmaze/internal/model"
	"github.com/shiftmaze/shiftmaze/internal/session"
)

// recordingNotifier is a minimal ClientNotifier capturing broadcasts
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

var _ session.ClientNotifier = (*recordingNotifier)(nil)

func (n *recordingNotifier) OnJoin(*model.ClientGameState)        {}
func (n *recordingNotifier) OnStateChange(*model.ClientGameState) {}
func (n *recordingNotifier) OnPushPositionHover(*model.Position)  {}
func (n *recordingNotifier) OnServerReject(string)                {}
func (n *recordingNotifier) Close()                               {}

func (n *recordingNotifier) OnMessage(text string, _ model.MessageOptions) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
}

func (n *recordingNotifier) hasMessage(text string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.messages {
		if m == text {
			return true
		}
	}
	return false
}

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
}

func (s *IntegrationSuite) TestAppWiresAdminToken() {
	s.Equal("1234", s.app.Session.AdminToken())
	s.Equal("1234", s.app.AuthService.Token())
}

func (s *IntegrationSuite) TestGeneratedTokenWhenUnset() {
	app, err := New(Config{})
	s.Require().NoError(err)
	s.Len(app.Session.AdminToken(), 4)
}

func (s *IntegrationSuite) TestFullGameLifecycle() {
	n1 := &recordingNotifier{}
	n2 := &recordingNotifier{}
	s.Require().NoError(s.app.Session.Connect("p1", "Alice", n1))
	s.Require().NoError(s.app.Session.Connect("p2", "Bob", n2))

	s.Require().NoError(s.app.Session.Start("1234"))
	state := s.app.Session.State("p1")
	s.Equal(model.StagePlaying, state.Stage)

	// The starting player is drawn at random
	inTurn := state.Players[state.PlayerTurn].ID
	s.Require().NoError(s.app.Session.Push(inTurn, model.PushPosition{
		Position: model.Position{X: 1, Y: 0}, Direction: model.DirectionDown,
	}))
	s.Require().NoError(s.app.Session.Move(inTurn, nil))
	s.Equal(1, s.app.Session.State("p1").TurnCounter)

	s.Require().NoError(s.app.Session.Restart("1234"))
	s.Equal(model.StageSetup, s.app.Session.State("p1").Stage)
	s.Len(s.app.Session.State("p1").Players, 2)
}

func (s *IntegrationSuite) TestTurnTimeoutDrivenByClock() {
	n1 := &recordingNotifier{}
	s.Require().NoError(s.app.Session.Connect("p1", "Alice", n1))
	s.Require().NoError(s.app.Session.Connect("p2", "Bob", &recordingNotifier{}))

	s.Require().NoError(s.app.Session.Start("1234"))
	defer func() { s.Require().NoError(s.app.Session.Restart("1234")) }()

	state := s.app.Session.State("p1")
	inTurn := state.Players[state.PlayerTurn].Name

	// The frozen clock keeps the turn alive until the test moves it
	time.Sleep(50 * time.Millisecond)
	s.False(n1.hasMessage("Skipping turn for " + inTurn))

	s.app.MockClock.Advance(time.Second)
	s.Eventually(func() bool {
		return n1.hasMessage("Skipping turn for " + inTurn)
	}, 2*time.Second, 10*time.Millisecond)
}
