package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/postcraft/contentpipe"
	"github.com/postcraft/contentpipe/cmd/pipectl/internal/config"
)

// Global flags, resolved against the config file in loadConfig.
var (
	flagConfigPath  string
	flagContentJSON string
	flagTimezone    string
	flagLogLevel    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pipectl",
	Short: "Render and validate templated post content",
	Long: `pipectl resolves @{source.expression} placeholders in post content.

Sources are env (environment variables), builtin (CURR_DATE, CURR_TIME,
CURR_DATETIME in the configured timezone) and json (a document fetched once
per run from the CONTENT_JSON source, optionally narrowed by a path that may
select a [RANDOM] array element shared across all rendered strings).`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file (default ~/.config/pipectl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagContentJSON, "content-json", "", "JSON source: \"URL\" or \"URL | PATH\" (default $CONTENT_JSON)")
	rootCmd.PersistentFlags().StringVar(&flagTimezone, "timezone", "", "builtin clock zone, UTC or UTC±N (default $TIME_ZONE)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(varsCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the YAML config file and lets flags override it.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfigPath != "" {
		cfg, err = config.Load(flagConfigPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if flagContentJSON != "" {
		cfg.ContentJSON = flagContentJSON
	}
	if flagTimezone != "" {
		cfg.Timezone = flagTimezone
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return nil
}

// newLogger builds the slog logger for the engine, writing to stderr so
// rendered content on stdout stays clean.
func newLogger() *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newProcessor builds the engine from the merged configuration.
func newProcessor() (*contentpipe.Processor, error) {
	options := []contentpipe.Option{
		contentpipe.WithLogger(newLogger()),
	}
	if cfg.ContentJSON != "" {
		options = append(options, contentpipe.WithContentJSON(cfg.ContentJSON))
	}
	if cfg.Timezone != "" {
		options = append(options, contentpipe.WithTimezone(cfg.Timezone))
	}
	return contentpipe.NewProcessor(options...)
}
