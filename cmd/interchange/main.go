// Command interchange converts healthcare interchange files (X12, HL7v2,
// FHIR, CDA, NCPDP and delimited text) to sheets, from the command line or
// over HTTP and MLLP.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/interchange/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "interchange",
		Short:         "Healthcare interchange normalization engine",
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file with configuration")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// loadConfig reads and validates configuration for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes human-readable lines in development and JSON otherwise.
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, _ := cfg.Level()
	if cfg.IsDev() {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
