package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
	_ "github.com/WawaAlencar/sistema-cashback-cliente/internal/core/sources" // Register export formats
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/logging"
)

// cli holds state shared by every subcommand.
type cli struct {
	logLevel  string
	logFormat string
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	app := &cli{}

	root := &cobra.Command{
		Use:           "cashback",
		Short:         "Reconcile sales exports with the customer registry and compute cashback",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			app.logger = logging.New(cmd.ErrOrStderr(), app.logLevel, app.logFormat)
			slog.SetDefault(app.logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&app.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&app.logFormat, "log-format", envOr("LOG_FORMAT", "text"), "log format: text or json")

	root.AddCommand(reconcileCommand(app))
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ue *core.UserError
		if errors.As(err, &ue) {
			fmt.Fprintf(os.Stderr, "erro: %s\n  causa: %v\n", ue, ue.Technical)
		} else {
			fmt.Fprintln(os.Stderr, "erro:", err)
		}
		os.Exit(1)
	}
}
