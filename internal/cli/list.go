package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, events, engines, or workflows",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use: "tasks",
			RunE: func(cmd *cobra.Command, args []string) error {
				d := openStores(loadConfig())
				defer d.close()
				return listTasks(d)
			},
		},
		&cobra.Command{
			Use: "events",
			RunE: func(cmd *cobra.Command, args []string) error {
				d := openStores(loadConfig())
				defer d.close()
				return listEvents(d)
			},
		},
		&cobra.Command{
			Use: "engines",
			RunE: func(cmd *cobra.Command, args []string) error {
				d := openStores(loadConfig())
				defer d.close()
				return listEngines(d)
			},
		},
		&cobra.Command{
			Use:  "workflows",
			RunE: func(cmd *cobra.Command, args []string) error { return notImplemented("list workflows") },
		},
		&cobra.Command{
			Use: "all",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Println("Listing all")
				d := openStores(loadConfig())
				defer d.close()

				if err := listTasks(d); err != nil {
					return err
				}
				if err := listEvents(d); err != nil {
					return err
				}
				return listEngines(d)
			},
		},
	)

	return cmd
}

func listTasks(d *deps) error {
	fmt.Println("Listing tasks")
	items, err := d.tasks.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list tasks: %v\n", err)
		return err
	}
	renderTable(items)
	return nil
}

func listEvents(d *deps) error {
	fmt.Println("Listing events")
	items, err := d.evs.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list events: %v\n", err)
		return err
	}
	renderTable(items)
	return nil
}

func listEngines(d *deps) error {
	fmt.Println("Listing engines")
	items, err := d.engines.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list engines: %v\n", err)
		return err
	}
	renderTable(items)
	return nil
}
