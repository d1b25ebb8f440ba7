package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/festapp/telao/internal/config"
	"github.com/festapp/telao/internal/database"
	"github.com/festapp/telao/internal/migrations"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			db, err := database.Open(cmd.Context(), cfg.DBPath)
			if err != nil {
				return fmt.Errorf("connecting to sqlite: %w", err)
			}
			defer db.Close()

			if err := migrations.Run(db); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			fmt.Println("migrations applied")
			return nil
		},
	}
}
