package main

import (
	"github.com/amp-labs/amp-fsm/description"
	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/shutdown"
	"github.com/spf13/cobra"
)

func newRootCmd(handler *shutdown.Handler) *cobra.Command {
	root := &cobra.Command{
		Use:           "fsmctl",
		Short:         "Work with state machine descriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, err := logger.ConfigureFromEnv("fsmctl", logger.WithOutput(cmd.ErrOrStderr()))

			return err
		},
	}

	root.AddCommand(
		newValidateCmd(),
		newMermaidCmd(),
		newRunCmd(handler),
	)

	return root
}

// loadValid reads a description and rejects it unless it validates.
func loadValid(path string) (*description.Machine, error) {
	m, err := description.Load(path)
	if err != nil {
		return nil, err
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}
