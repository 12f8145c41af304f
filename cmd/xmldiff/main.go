// Command xmldiff compares and three-way-merges XML documents structurally,
// ignoring attribute order and namespace-prefix spelling by default (spec
// §1). It wraps pkg/xmldiff and pkg/xmlmerge the way cmd/got wraps its
// entity-level diff and merge packages.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:   "xmldiff",
		Short: "Structural XML diff and three-way merge",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newMergeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("xmldiff 0.1.0-dev")
		},
	}
}
