package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var cfg *Config

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "shiftmaze",
		Short: "Headless server for the shifting maze board game",
		Long: `shiftmaze hosts a single multiplayer session of the shifting maze
board game. Clients connect over websocket; host operations are gated by an
admin token printed at startup.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
