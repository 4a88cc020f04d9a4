package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mercadolab/workflow-engine/internal/submission"
)

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file_path>",
		Short: "Submit a workflow YAML file's Events and Tasks to storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]
			fmt.Printf("Adding file: %s\n", filePath)

			cfg := loadConfig()
			d := openStores(cfg)
			defer d.close()

			if _, err := submission.Load(context.Background(), filePath, d.evs, d.tasks); err != nil {
				fmt.Fprintf(os.Stderr, "failed to add file, %v\n", err)
				return err
			}

			return nil
		},
	}
}
