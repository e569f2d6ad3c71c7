// Package cli holds the interactive prompts used by fsmctl.
package cli

import (
	"errors"
	"strings"

	"facette.io/natsort"
	"github.com/manifoldco/promptui"
)

// QuitItem is the first entry of every event menu.
const QuitItem = "[Quit]"

// EventItems returns the menu entries for a set of events: the quit entry
// followed by the distinct events in natural order.
func EventItems(events []string) []string {
	seen := make(map[string]struct{}, len(events))
	names := make([]string, 0, len(events))

	for _, e := range events {
		if _, ok := seen[e]; ok || e == "" {
			continue
		}

		seen[e] = struct{}{}
		names = append(names, e)
	}

	natsort.Sort(names)

	return append([]string{QuitItem}, names...)
}

// prefixSearcher matches items by prefix. The quit entry never matches.
func prefixSearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if index == 0 || len(input) == 0 {
			return false
		}

		return strings.HasPrefix(items[index], input)
	}
}

// SelectEvent asks the user to pick the next event. The boolean is false when
// the user chose to quit or interrupted the prompt.
func SelectEvent(label string, events []string) (string, bool, error) {
	items := EventItems(events)

	sel := &promptui.Select{
		Label:    label,
		Items:    items,
		Searcher: prefixSearcher(items),
	}

	idx, value, err := sel.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", false, nil
		}

		return "", false, err
	}

	if idx == 0 {
		return "", false, nil
	}

	return value, true, nil
}
