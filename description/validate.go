package description

import (
	"fmt"
	"slices"

	"github.com/amp-labs/amp-fsm/errors"
)

// Validate reports every problem in the description at once.
func (m *Machine) Validate() error {
	var errs errors.Collection

	if m.Name == "" {
		errs.Add(ErrNameRequired)
	}

	if len(m.States) == 0 {
		errs.Add(ErrStateRequired)

		return errs.GetError()
	}

	names := make(map[string]bool, len(m.States))

	for i, s := range m.States {
		if s.Name == "" {
			errs.Add(fmt.Errorf("state #%d: %w", i+1, ErrStateNameRequired))

			continue
		}

		if names[s.Name] {
			errs.Add(fmt.Errorf("%w: %s", ErrDuplicateState, s.Name))
		}

		names[s.Name] = true
	}

	if m.Initial != "" && !names[m.Initial] {
		errs.Add(fmt.Errorf("%w: %s", ErrInitialNotFound, m.Initial))
	}

	for _, s := range m.States {
		for _, event := range sortedKeys(s.On) {
			target := s.On[event]

			if !names[target] {
				errs.Add(fmt.Errorf("state %s on %s: %w: %s", s.Name, event, ErrTargetNotFound, target))
			}

			if len(m.Events) > 0 && !slices.Contains(m.Events, event) {
				errs.Add(fmt.Errorf("state %s: %w: %s", s.Name, ErrUndeclaredEvent, event))
			}
		}
	}

	return errs.GetError()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
