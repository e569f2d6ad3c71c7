package main

import (
	"fmt"

	"github.com/amp-labs/amp-fsm/fsm"
	"github.com/amp-labs/amp-fsm/visualizer"
	"github.com/spf13/cobra"
)

type mermaidFlags struct {
	direction  string
	highlight  []string
	noEvents   bool
	noDescr    bool
	statesOnly bool
}

func newMermaidCmd() *cobra.Command {
	var flags mermaidFlags

	cmd := &cobra.Command{
		Use:   "mermaid FILE",
		Short: "Render a description as a Mermaid state diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadValid(args[0])
			if err != nil {
				return err
			}

			opts := visualizer.DefaultOptions().
				WithDirection(flags.direction).
				WithHighlightPath(flags.highlight).
				WithShowEvents(!flags.noEvents).
				WithShowDescriptions(!flags.noDescr)

			var out string

			if flags.statesOnly {
				def, err := m.Build(fsm.WithLogger(nil), fsm.WithMetrics(false), fsm.WithTracing(false))
				if err != nil {
					return err
				}

				out, err = visualizer.GenerateMermaidFromDefinition(def, opts)
				if err != nil {
					return err
				}
			} else {
				out, err = visualizer.GenerateMermaidWithOptions(m, opts)
				if err != nil {
					return err
				}
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err
		},
	}

	cmd.Flags().StringVar(&flags.direction, "direction", "TB", "Diagram direction (TB or LR)")
	cmd.Flags().StringSliceVar(&flags.highlight, "highlight", nil, "States to highlight")
	cmd.Flags().BoolVar(&flags.noEvents, "no-events", false, "Omit event labels")
	cmd.Flags().BoolVar(&flags.noDescr, "no-descr", false, "Omit state notes")
	cmd.Flags().BoolVar(&flags.statesOnly, "states-only", false, "Render the built definition's states only")

	return cmd
}
