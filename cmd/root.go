package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var (
	profileFlag string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "roriatlas",
	Short: "Look up where a city is with a search-backed model",
	Long: `RoriAtlas asks a language model about a city, lets it search the web when
it needs to, and prints the state, country and both capitals as a fixed record.`,
	SilenceUsage: true,
}

// Execute runs the CLI. Interrupts cancel the run in progress.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

// newLogger writes structured logs to stderr when --verbose is set
func newLogger(verbose bool) logr.Logger {
	if !verbose {
		return logr.Discard()
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(-1)})
	return logr.FromSlogHandler(handler)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "Profile to use instead of the active one")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log state transitions and API calls to stderr")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(profileCmd)
}
