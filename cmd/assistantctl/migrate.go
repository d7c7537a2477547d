package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"content-assistant/internal/store"
)

func migrateCmd(c *cli) *cobra.Command {
	var direction string
	var steps int

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if direction != "up" && direction != "down" {
				return fmt.Errorf("invalid direction %q (valid options: up, down)", direction)
			}
			if c.cfg.DBURL == "" {
				return fmt.Errorf("DB_URL is required")
			}
			db, err := store.Open(c.cfg.DBURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Migrate(db, direction, steps); err != nil {
				return err
			}
			version, dirty, err := store.SchemaVersion(db)
			if err != nil {
				return err
			}
			c.log.Info("migrations applied", "direction", direction, "steps", steps, "version", version, "dirty", dirty)
			return nil
		},
	}
	migrate.Flags().StringVar(&direction, "direction", "up", "up or down")
	migrate.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")

	migrate.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.DBURL == "" {
				return fmt.Errorf("DB_URL is required")
			}
			db, err := store.Open(c.cfg.DBURL)
			if err != nil {
				return err
			}
			defer db.Close()

			version, dirty, err := store.SchemaVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})
	return migrate
}
