package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/amp-labs/amp-fsm/bgworker"
	"github.com/amp-labs/amp-fsm/cli"
	"github.com/amp-labs/amp-fsm/description"
	"github.com/amp-labs/amp-fsm/fsm"
	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/shutdown"
	"github.com/spf13/cobra"
)

var errNoEvents = errors.New("no events given and stdin is not interactive")

type runFlags struct {
	events      []string
	deferred    bool
	interactive bool
	keepGoing   bool
}

// eventSource yields the next event; false ends the run.
type eventSource func(m *description.Machine, state string) (string, bool, error)

func newRunCmd(handler *shutdown.Handler) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Start a machine and dispatch events to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadValid(args[0])
			if err != nil {
				return err
			}

			var next eventSource

			switch {
			case len(flags.events) > 0:
				next = listSource(flags.events)
			case flags.interactive:
				next = promptSource
			default:
				return errNoEvents
			}

			return runMachine(cmd.Context(), cmd.OutOrStdout(), handler, m, flags, next)
		},
	}

	cmd.Flags().StringSliceVar(&flags.events, "events", nil, "Events to dispatch, in order")
	cmd.Flags().BoolVar(&flags.deferred, "deferred", false, "Report outcomes through futures")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "Pick events from a menu")
	cmd.Flags().BoolVar(&flags.keepGoing, "keep-going", false, "Continue after a failed event")

	return cmd
}

func runMachine(
	ctx context.Context,
	out io.Writer,
	handler *shutdown.Handler,
	m *description.Machine,
	flags runFlags,
	next eventSource,
) error {
	cfg, err := bgworker.LoadConfig()
	if err != nil {
		return err
	}

	pool := bgworker.NewPool(cfg)
	handler.BeforeShutdown(pool.StopAndWait)

	mode := fsm.ReportSync
	if flags.deferred {
		mode = fsm.ReportDeferred
	}

	def, err := m.Build(
		fsm.WithReporting(mode),
		fsm.WithDeliveryPool(pool),
		fsm.WithLogger(fsm.NewDefaultLogger()),
	)
	if err != nil {
		return err
	}

	inst, err := def.Start(ctx)
	if err != nil {
		return err
	}

	ctx = logger.With(ctx, "machine", m.Name, "instance", inst.ID().String())

	fmt.Fprintf(out, "%s started in %s\n", m.Name, inst.State())

	for {
		event, ok, err := next(m, inst.State())
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		from := inst.State()

		if _, err := inst.Send(ctx, event).Await(ctx); err != nil {
			fmt.Fprintf(out, "%s: %s failed: %v\n", event, from, err)

			if !flags.keepGoing {
				return err
			}

			continue
		}

		fmt.Fprintf(out, "%s: %s -> %s\n", event, from, inst.State())
	}
}

func listSource(events []string) eventSource {
	idx := 0

	return func(*description.Machine, string) (string, bool, error) {
		if idx >= len(events) {
			return "", false, nil
		}

		idx++

		return events[idx-1], true, nil
	}
}

// promptSource offers the events the current state reacts to, falling back to
// every declared event.
func promptSource(m *description.Machine, state string) (string, bool, error) {
	var events []string

	if st, ok := m.State(state); ok {
		for event := range st.On {
			events = append(events, event)
		}
	}

	if len(events) == 0 {
		events = m.Events
	}

	return cli.SelectEvent(fmt.Sprintf("%s [%s]", m.Name, state), events)
}
