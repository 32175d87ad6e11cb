package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	flagLogLevel = "log-level"
	flagNoTrace  = "no-trace"
	flagDSN      = "dsn"
	flagTable    = "table"
)

var rootCmd = &cobra.Command{
	Use:           "timeline-demo",
	Short:         "Record and inspect the timeline of an instrumented pub/sub run",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool(flagNoTrace, false, "do not capture call site traces")
	rootCmd.PersistentFlags().String(flagDSN, "", "export every entry into this Postgres database")
	rootCmd.PersistentFlags().String(flagTable, "timeline_entries", "table used for the Postgres export")
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString(flagLogLevel)

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(raw))); err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", flagLogLevel, raw, err)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	})), nil
}
