// Package cli implements the edgellm command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

// NewRootCmd constructs the edgellm command tree.
func NewRootCmd() *cobra.Command {
	o := &Options{}
	root := &cobra.Command{
		Use:           "edgellm",
		Short:         "On-device single-slot model scheduler and generation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := o.resolve(cmd); err != nil {
				return err
			}
			initLogging(o)
			return nil
		},
	}
	bindPersistent(root, o)
	root.AddCommand(
		newServeCmd(o),
		newModelsCmd(o),
		newLoadCmd(o),
		newGenerateCmd(o),
		newPromptCmd(o),
	)
	return root
}
