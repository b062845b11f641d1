// Package cmd contains the hrchat command line interface.
package cmd

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/superlawyer/hrchat/internal/config"
	"github.com/superlawyer/hrchat/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "hrchat",
	Short: "HR policy assistant for the terminal",
	Long: `hrchat answers HR questions from your company's policy documents.

It retrieves the most relevant passages from a pre-built document
corpus, streams a grounded answer, and cites the documents it used.
Conversations are session-scoped with automatic summarization of
older turns.

Running hrchat without a subcommand starts the interactive chat.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is fine; exported variables still apply.
		_ = godotenv.Load()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads and validates the configuration, returning it with a
// logger configured from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	slog.SetDefault(logger)

	return cfg, logger, nil
}
