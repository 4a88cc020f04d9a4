package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mercadolab/workflow-engine/internal/supervisor"
)

func newStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run migrations, register an Engine, and spawn its Event/Task processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Starting the Engine")

			cfg := loadConfig()
			d := openStores(cfg)
			defer d.close()

			engine, err := supervisor.Start(context.Background(), cfg, d.db, d.engines)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to start the engine: %v\n", err)
				return err
			}

			fmt.Printf("Engine started successfully, uid=%d\n", engine.UID)
			return nil
		},
	}
}
