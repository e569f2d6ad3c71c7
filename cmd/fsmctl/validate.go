package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that descriptions are well formed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				m, err := loadValid(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s ok (%d states)\n", path, m.Name, len(m.States))
			}

			return nil
		},
	}
}
