// mtags is the command-line front end: it outlines MATLAB files locally
// or through a running mtags server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	systemRoots []string
	dialectName string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd wires the cobra tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mtags",
		Short:         "Extract function outlines from MATLAB source",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringArrayVar(&systemRoots, "system-root", nil, "System root path for builtin doc-only files (repeatable)")
	root.PersistentFlags().StringVar(&dialectName, "dialect", "end", "Function body dialect: end or no-end")

	root.AddCommand(
		newParseCmd(),
		newOutlineCmd(),
	)
	return root
}
