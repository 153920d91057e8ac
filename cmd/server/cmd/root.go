package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var verbose = false

var rootCmd = &cobra.Command{
	Use:   "crm-connector",
	Short: "OAuth token broker and webhook receiver for a CRM app",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; the environment may already be set.
		_ = godotenv.Load()
		setupLogging(config.EnvVars{}, verbose)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setupLogging uses a console writer in DEV and JSON everywhere else
func setupLogging(c config.EnvConfig, verbose bool) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}
