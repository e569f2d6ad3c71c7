// Package visualizer renders machines as Mermaid state diagrams.
package visualizer

import (
	"errors"
	"fmt"
	"strings"

	"facette.io/natsort"
	"github.com/amp-labs/amp-fsm/description"
	"github.com/amp-labs/amp-fsm/fsm"
)

// Visualizer errors.
var (
	ErrMachineNil    = errors.New("machine cannot be nil")
	ErrDefinitionNil = errors.New("definition cannot be nil")
)

// GenerateMermaid converts a description to a Mermaid state diagram.
func GenerateMermaid(m *description.Machine) (string, error) {
	return GenerateMermaidWithOptions(m, DefaultOptions())
}

// GenerateMermaidFromFile loads a description from a file and generates a Mermaid diagram.
func GenerateMermaidFromFile(path string) (string, error) {
	m, err := description.Load(path)
	if err != nil {
		return "", fmt.Errorf("failed to load description: %w", err)
	}

	return GenerateMermaid(m)
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
func GenerateMermaidWithOptions(m *description.Machine, opts Options) (string, error) {
	if m == nil {
		return "", ErrMachineNil
	}

	d := newDiagram(opts)

	if m.Initial != "" {
		d.line("[*] --> %s", nodeID(m.Initial))
	}

	for _, state := range m.States {
		d.declare(state.Name)

		if opts.ShowDescriptions && state.Descr != "" {
			d.line("note right of %s : %s", nodeID(state.Name), escape(state.Descr))
		}

		d.style(state.Name)

		events := make([]string, 0, len(state.On))
		for event := range state.On {
			events = append(events, event)
		}

		natsort.Sort(events)

		for _, event := range events {
			label := ""
			if opts.ShowEvents {
				label = " : " + escape(event)
			}

			d.line("%s --> %s%s", nodeID(state.Name), nodeID(state.On[event]), label)
		}
	}

	return d.finish(), nil
}

// GenerateMermaidFromDefinition renders the states of a definition. Decide
// functions are opaque, so only the states and the default entry are drawn.
func GenerateMermaidFromDefinition[S comparable, E any](def *fsm.Definition[S, E], opts Options) (string, error) {
	if def == nil {
		return "", ErrDefinitionNil
	}

	d := newDiagram(opts)

	if initial, ok := def.DefaultState().Get(); ok {
		d.line("[*] --> %s", nodeID(fmt.Sprint(initial)))
	}

	for _, id := range def.States() {
		name := fmt.Sprint(id)
		d.declare(name)
		d.style(name)
	}

	return d.finish(), nil
}

type diagram struct {
	sb        strings.Builder
	highlight map[string]bool
}

func newDiagram(opts Options) *diagram {
	d := &diagram{highlight: make(map[string]bool, len(opts.HighlightPath))}
	for _, state := range opts.HighlightPath {
		d.highlight[state] = true
	}

	d.sb.WriteString("```mermaid\n")
	d.sb.WriteString("stateDiagram-v2\n")

	if opts.Direction != "" {
		d.line("direction %s", opts.Direction)
	}

	return d
}

func (d *diagram) line(format string, args ...any) {
	d.sb.WriteString("    ")
	fmt.Fprintf(&d.sb, format, args...)
	d.sb.WriteString("\n")
}

// declare names a state. Ids that are not valid Mermaid identifiers keep their
// original text as the label.
func (d *diagram) declare(name string) {
	if id := nodeID(name); id != name {
		d.line("state \"%s\" as %s", escape(name), id)
	} else {
		d.line("%s", id)
	}
}

func (d *diagram) style(name string) {
	if d.highlight[name] {
		d.line("class %s highlighted", nodeID(name))
	}
}

func (d *diagram) finish() string {
	d.sb.WriteString("\n")
	d.sb.WriteString("    classDef highlighted fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")
	d.sb.WriteString("```\n")

	return d.sb.String()
}

// nodeID maps a state name to a Mermaid-safe identifier.
func nodeID(name string) string {
	if name == "" {
		return "_empty"
	}

	var sb strings.Builder

	if name[0] >= '0' && name[0] <= '9' {
		sb.WriteString("_")
	}

	for _, r := range name {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteString("_")
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("\n", " ", "\"", "'", ":", "#58;").Replace(s)
}
