package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgallion1/mtags/internal/format"
	"github.com/dgallion1/mtags/internal/matlab"
	"github.com/dgallion1/mtags/internal/mtag"
	"github.com/dgallion1/mtags/internal/source"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Outline MATLAB files locally",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dialect, err := matlab.ParseDialect(dialectName)
			if err != nil {
				return err
			}
			opts := matlab.Options{
				SystemRoots: systemRoots,
				Dialect:     dialect,
			}

			out := cmd.OutOrStdout()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				units, err := source.UnitsForFile(path, data)
				if err != nil {
					return err
				}

				var tags []*mtag.FunctionTag
				for _, u := range units {
					tags = append(tags, matlab.Parse(u.Text, u.Path, opts)...)
				}

				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					if err := enc.Encode(map[string]any{"file": path, "tags": tags}); err != nil {
						return err
					}
					continue
				}
				if len(args) > 1 {
					fmt.Fprintf(out, "%s:\n", path)
				}
				fmt.Fprint(out, format.Outline(tags))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a textual outline")
	return cmd
}
