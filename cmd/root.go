// Package cmd implements the docchat command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"docchat/internal/app"
	"docchat/internal/config"
	"docchat/internal/log"
)

var (
	flagDebug    bool
	flagJSONLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "docchat - conversational question answering over your documentation",
	Long: `docchat answers questions about a documentation site, with follow-up
questions understood in the context of the conversation.

Ingest a built documentation tree once, then ask questions from the
command line or run the HTTP API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLogs, "json-logs", false, "log in JSON format")
}

func buildLogger() log.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: flagJSONLogs})
}

// buildApp loads configuration and wires the application.
func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return app.New(ctx, cfg, buildLogger())
}
