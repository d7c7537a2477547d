package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"content-assistant/internal/app"
	"content-assistant/internal/assistant"
	"content-assistant/internal/config"
	"content-assistant/internal/logger"
)

// cli carries what every subcommand needs. Config is loaded lazily so tests
// can preset it.
type cli struct {
	cfg        config.Config
	log        *slog.Logger
	newService func(config.Config, *slog.Logger) (*assistant.Service, error)
}

func main() {
	c := &cli{
		newService: func(cfg config.Config, log *slog.Logger) (*assistant.Service, error) {
			return app.NewAssistant(cfg, log, nil)
		},
	}
	if err := newRootCmd(c).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "assistantctl",
		Short:         "Operate the content assistant from the command line",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.log != nil {
				return nil
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = logger.NewWithWriter(cfg.LogLevel, cmd.ErrOrStderr())
			return nil
		},
	}
	root.AddCommand(
		migrateCmd(c),
		summarizeCmd(c),
		askCmd(c),
		fetchCmd(c),
		cacheCmd(c),
		eventsCmd(c),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
