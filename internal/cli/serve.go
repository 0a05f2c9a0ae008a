package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shiftmaze/shiftmaze/internal/factory"
	"github.com/shiftmaze/shiftmaze/internal/transport"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cfg)
		},
	}

	serveCmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "Listening port (env: SHIFTMAZE_PORT)")
	serveCmd.Flags().StringVar(&cfg.AdminToken, "token", cfg.AdminToken, "Fixed admin token; generated when empty (env: SHIFTMAZE_ADMIN_TOKEN)")
	serveCmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error (env: SHIFTMAZE_LOG_LEVEL)")

	return serveCmd
}

func runServer(cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	app, err := factory.New(factory.Config{
		AdminToken: cfg.AdminToken,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}

	logger.Info("admin token issued", slog.String("token", app.Session.AdminToken()))

	handler := transport.NewHandler(app.Session, logger)

	serverConfig := transport.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := transport.NewServer(handler.Router(), serverConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
