// Package cli implements the engine's operator-facing command tree: a
// single cobra-routed binary covering engine lifecycle, workflow
// submission, and read-only inspection. The CLI itself has no user
// authentication of its own.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the full command tree for cmd/workfloweng.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "workfloweng",
		Short:         "Command the workflow engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStartCommand(),
		newMigrationCommand(),
		newStartEventProcessCommand(),
		newStartTaskProcessCommand(),
		newStopCommand(),
		newAddCommand(),
		newListCommand(),
		newShowCommand(),
		newPauseCommand(),
		newContinueCommand(),
		newAbortCommand(),
	)

	return root
}

// notImplemented mirrors original_source/cli.rs's todo!() stubs for
// verbs the router doesn't yet implement: print and exit nonzero
// rather than panicking.
func notImplemented(verb string) error {
	fmt.Printf("%s: not implemented\n", verb)
	return fmt.Errorf("%s not implemented", verb)
}
