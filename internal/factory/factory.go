package factory

import (
	"io"
	"log/slog"

	"github.com/shiftmaze/shiftmaze/internal/dependencies/clock"
	"github.com/shiftmaze/shiftmaze/internal/dependencies/random"
	"github.com/shiftmaze/shiftmaze/internal/model"
	"github.com/shiftmaze/shiftmaze/internal/services/auth"
	"github.com/shiftmaze/shiftmaze/internal/services/board"
	"github.com/shiftmaze/shiftmaze/internal/services/game"
	"github.com/shiftmaze/shiftmaze/internal/services/shuffle"
	"github.com/shiftmaze/shiftmaze/internal/session"
)

// App contains all wired application components
type App struct {
	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	BoardService   *board.Service
	ShuffleService *shuffle.Service
	AuthService    *auth.Service
	Session        *session.Session
}

// Config holds configuration for the application factory
type Config struct {
	// AdminToken gates host operations; empty generates a 4-digit one
	AdminToken string
	// SessionConfig tunes the turn watchdog (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return newWithDependencies(clock.New(), random.New(), cfg, logger)
}

func newWithDependencies(clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	boardService := board.New(rnd)
	shuffleService := shuffle.New(boardService, rnd, logger)

	authService, err := auth.New(rnd, cfg.AdminToken)
	if err != nil {
		return nil, err
	}

	sessionConfig := cfg.SessionConfig
	if sessionConfig.TurnTimeout == 0 {
		sessionConfig = session.DefaultConfig()
	}

	sess := session.New(authService, clk, sessionConfig, logger, func(onStateChange func(*model.Game)) *game.Controller {
		return game.NewController(boardService, shuffleService, rnd, logger, onStateChange)
	})

	return &App{
		Clock:          clk,
		Random:         rnd,
		BoardService:   boardService,
		ShuffleService: shuffleService,
		AuthService:    authService,
		Session:        sess,
	}, nil
}
