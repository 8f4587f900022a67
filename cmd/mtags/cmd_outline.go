package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/mtags/internal/client"
	"github.com/dgallion1/mtags/internal/format"
	"github.com/spf13/cobra"
)

func newOutlineCmd() *cobra.Command {
	var serverURL string
	var apiKey string

	cmd := &cobra.Command{
		Use:   "outline <file>...",
		Short: "Outline MATLAB files through a running mtags server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				apiKey = os.Getenv("MTAGS_API_KEY")
			}
			if apiKey == "" {
				return fmt.Errorf("an API key is required (--api-key or MTAGS_API_KEY)")
			}
			c := client.New(serverURL, apiKey)
			defer c.Close()

			out := cmd.OutOrStdout()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				resp, err := c.Outline(cmd.Context(), path, path, data)
				if err != nil {
					return err
				}
				if len(args) > 1 {
					fmt.Fprintf(out, "%s:\n", path)
				}
				fmt.Fprint(out, format.Outline(resp.Tags))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8091", "Base URL of the mtags server")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (defaults to MTAGS_API_KEY)")
	return cmd
}
