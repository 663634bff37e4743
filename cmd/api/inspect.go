package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pathbuilder/core/internal/parser"
)

func inspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Validate an import file and summarize the graph it describes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			batch, err := parser.ParseImport(data)
			if err != nil {
				return err
			}
			snap, skipped := parser.BuildSnapshot(batch)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			brand.Fprintf(out, "%s\n", args[0])
			fmt.Fprintf(out, "  %d locations, %d edges (%d records read)\n",
				snap.Stats.TotalLocations, snap.Stats.TotalEdges, batch.Total)
			for _, shape := range slices.Sorted(maps.Keys(snap.Stats.LocationsByShape)) {
				subtle.Fprintf(out, "  %-10s %d\n", shape, snap.Stats.LocationsByShape[shape])
			}
			if len(skipped) == 0 {
				return nil
			}
			warn.Fprintf(out, "  %d records skipped\n", len(skipped))
			for _, sk := range skipped {
				fmt.Fprintf(out, "    #%d %s\n", sk.Index, sk.Reason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the normalized snapshot as JSON")
	return cmd
}
