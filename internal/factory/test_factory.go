package factory

import (
	"time"

	"github.com/shiftmaze/shiftmaze/internal/dependencies/mocks"
	"github.com/shiftmaze/shiftmaze/internal/dependencies/random"
	"github.com/shiftmaze/shiftmaze/internal/session"
	"github.com/shiftmaze/shiftmaze/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing: a fixed admin token, a
// fast-polling turn watchdog and a mocked clock. The frozen clock pins turn
// timers; advance it past the timeout to trigger a skip. The real random
// source stays because the board shuffler needs genuine entropy to
// terminate quickly.
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	cfg := Config{
		AdminToken: "1234",
		SessionConfig: session.Config{
			TurnTimeout:  200 * time.Millisecond,
			PollInterval: 10 * time.Millisecond,
			Warnings:     nil,
		},
		Logger: testutil.NopLogger(),
	}

	app, err := newWithDependencies(mockClock, random.New(), cfg, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
