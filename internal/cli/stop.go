package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Request every running Engine's processes stop at their next poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Stopping the engine")

			cfg := loadConfig()
			d := openStores(cfg)
			defer d.close()

			if err := d.engines.RequestStopAll(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "failed to stop the engine, %v\n", err)
				return err
			}

			return nil
		},
	}
}
