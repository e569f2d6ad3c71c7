package description

import (
	"context"
	"fmt"

	"github.com/amp-labs/amp-fsm/fsm"
)

// Build turns the description into a definition whose states decide from
// their On tables: a listed event moves to its target, anything else stays.
// Initial, when set, becomes the default state.
func (m *Machine) Build(opts ...fsm.Option) (*fsm.Definition[string, string], error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	builder := fsm.NewBuilder[string, string](m.Name, opts...)

	for _, s := range m.States {
		builder.AddState(s.Name, fsm.StateSpec[string, string]{
			Decide:  tableDecider(s.On),
			Default: s.Name == m.Initial,
		})
	}

	def, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("machine %s: %w", m.Name, err)
	}

	return def, nil
}

func tableDecider(on map[string]string) fsm.DecideFunc[string, string] {
	if len(on) == 0 {
		return nil
	}

	table := make(map[string]string, len(on))
	for event, target := range on {
		table[event] = target
	}

	return func(_ context.Context, in fsm.Input[string, string]) (fsm.Decision[string], error) {
		if target, ok := table[in.Event]; ok {
			return fsm.Goto(target), nil
		}

		return fsm.Stay[string](), nil
	}
}
