package cli

import "github.com/spf13/cobra"

// pause/continue/abort are reserved verbs the original CLI DSL/router
// stubs out entirely; no full task-control router exists yet, so
// these remain interface-only placeholders.

func newPauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:  "pause <task_name>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error { return notImplemented("pause") },
	}
}

func newContinueCommand() *cobra.Command {
	return &cobra.Command{
		Use:  "continue <task_name>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error { return notImplemented("continue") },
	}
}

func newAbortCommand() *cobra.Command {
	return &cobra.Command{
		Use:  "abort <task_name>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error { return notImplemented("abort") },
	}
}
