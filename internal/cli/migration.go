package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mercadolab/workflow-engine/internal/store"
)

func newMigrationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migration",
		Short: "Run pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Migration")

			cfg := loadConfig()
			db, err := store.Open(cfg.Database)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
				return err
			}
			defer db.Close()

			if err := store.Migrate(context.Background(), db); err != nil {
				fmt.Fprintf(os.Stderr, "failed to run DB migrations: %v\n", err)
				return err
			}

			fmt.Println("DB migrations completed successfully")
			return nil
		},
	}
}
