package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/xmldiffmerge/pkg/xmlmerge"
	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var cfgFlags configFlags
	var resolverName string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "merge <base.xml> <ours.xml> <theirs.xml>",
		Short: "Three-way merge of an XML document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := parseFile(args[0])
			if err != nil {
				return err
			}
			ours, err := parseFile(args[1])
			if err != nil {
				return err
			}
			theirs, err := parseFile(args[2])
			if err != nil {
				return err
			}

			cfg, err := cfgFlags.build()
			if err != nil {
				return err
			}

			resolver, err := parseResolver(resolverName)
			if err != nil {
				return err
			}

			result := xmlmerge.Merge(base, ours, theirs, cfg, resolver)
			log.WithFields(logrus.Fields{
				"conflicts": len(result.Conflicts),
				"resolver":  resolverName,
			}).Debug("merge complete")

			if result.IsFailed() {
				return fmt.Errorf("merge failed: %s", result.ErrorMessage())
			}

			if err := writeMerged(result.MergedDocument, outputPath); err != nil {
				return err
			}

			printMergeSummary(cmd, result)
			if result.Statistics.Unresolved() > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
	cfgFlags.register(cmd)
	cmd.Flags().StringVar(&resolverName, "resolver", "", "base|ours|theirs|automerge (default: keep base on conflict)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "merged document output path (- for stdout)")

	return cmd
}

func parseResolver(name string) (xmlmerge.ConflictResolver, error) {
	switch name {
	case "":
		return nil, nil
	case "base":
		return xmlmerge.BaseResolver, nil
	case "ours":
		return xmlmerge.OursResolver, nil
	case "theirs":
		return xmlmerge.TheirsResolver, nil
	case "automerge":
		return xmlmerge.NewAutoMergeResolver(), nil
	}
	return nil, fmt.Errorf("unknown resolver %q", name)
}

func writeMerged(doc xmlnode.Element, path string) error {
	data, err := xmlnode.Serialize(doc)
	if err != nil {
		return fmt.Errorf("serialize merged document: %w", err)
	}
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printMergeSummary(cmd *cobra.Command, result xmlmerge.MergeResult) {
	out := cmd.ErrOrStderr()
	stats := result.Statistics
	fmt.Fprintf(out, "merged: %d unchanged, %d auto-merged, %d ours-only, %d theirs-only\n",
		stats.Unchanged, stats.AutoMerged, stats.OursOnly, stats.TheirsOnly)

	if !result.HasConflicts() {
		fmt.Fprintln(out, "merge completed cleanly")
		return
	}

	fmt.Fprintf(out, "merge completed with %d conflict", stats.ConflictCount)
	if stats.ConflictCount != 1 {
		fmt.Fprint(out, "s")
	}
	fmt.Fprintf(out, " (%d resolved, %d unresolved)\n", stats.ConflictCount-stats.Unresolved(), stats.Unresolved())
	for _, c := range result.Conflicts {
		fmt.Fprintf(out, "  %s %s: %s\n", c.Type, c.Path, c.Description)
	}
}
