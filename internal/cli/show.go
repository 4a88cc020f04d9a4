package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mercadolab/workflow-engine/internal/model"
)

func newShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a single task, event, engine, or workflow by uid",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:  "task <uid>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error { return showTask(args[0]) },
		},
		&cobra.Command{
			Use:  "event <uid>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error { return showEvent(args[0]) },
		},
		&cobra.Command{
			Use:  "engine <uid>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error { return showEngine(args[0]) },
		},
		&cobra.Command{
			Use:  "workflow <uid>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error { return notImplemented("show workflow") },
		},
	)

	return cmd
}

func showTask(arg string) error {
	uid, err := parseUID(arg)
	if err != nil {
		return err
	}
	fmt.Printf("Showing task: %d\n", uid)

	d := openStores(loadConfig())
	defer d.close()

	item, err := d.tasks.Get(context.Background(), uid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to show, %v\n", err)
		return err
	}
	renderTable([]*model.Task{item})
	return nil
}

func showEvent(arg string) error {
	uid, err := parseUID(arg)
	if err != nil {
		return err
	}
	fmt.Printf("Showing event: %d\n", uid)

	d := openStores(loadConfig())
	defer d.close()

	item, err := d.evs.Get(context.Background(), uid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to show, %v\n", err)
		return err
	}
	renderTable([]*model.Event{item})
	return nil
}

func showEngine(arg string) error {
	uid, err := parseUID(arg)
	if err != nil {
		return err
	}
	fmt.Printf("Showing engine: %d\n", uid)

	d := openStores(loadConfig())
	defer d.close()

	item, err := d.engines.Get(context.Background(), uid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to show, %v\n", err)
		return err
	}
	renderTable([]*model.Engine{item})
	return nil
}

func parseUID(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid uid %q: %v\n", s, err)
		return 0, err
	}
	return int32(n), nil
}
