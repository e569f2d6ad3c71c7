// Package description reads machine descriptions from YAML and turns them into
// table-driven fsm definitions.
package description

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Predefined error types.
var (
	ErrNameRequired      = errors.New("machine name is required")
	ErrStateRequired     = errors.New("at least one state is required")
	ErrStateNameRequired = errors.New("state name is required")
	ErrDuplicateState    = errors.New("duplicate state name")
	ErrInitialNotFound   = errors.New("initial state does not exist")
	ErrTargetNotFound    = errors.New("transition target does not exist")
	ErrUndeclaredEvent   = errors.New("event is not declared")
)

// Machine describes one machine. Decide, Enter, Leave and OnDecide hold source
// text for documentation and are never executed; transitions come from the On
// tables of the states.
type Machine struct {
	Name     string   `json:"name"               yaml:"name"`
	Descr    string   `json:"descr,omitempty"    yaml:"descr,omitempty"`
	Initial  string   `json:"initial,omitempty"  yaml:"initial,omitempty"`
	Events   []string `json:"events,omitempty"   yaml:"events,omitempty"`
	States   []State  `json:"states"             yaml:"states"`
	OnDecide string   `json:"onDecide,omitempty" yaml:"onDecide,omitempty"`
}

// State describes one state. On maps an event to the state it leads to.
type State struct {
	Name   string            `json:"name"             yaml:"name"`
	Descr  string            `json:"descr,omitempty"  yaml:"descr,omitempty"`
	Decide string            `json:"decide,omitempty" yaml:"decide,omitempty"`
	Enter  string            `json:"enter,omitempty"  yaml:"enter,omitempty"`
	Leave  string            `json:"leave,omitempty"  yaml:"leave,omitempty"`
	On     map[string]string `json:"on,omitempty"     yaml:"on,omitempty"`
}

// Parse decodes and validates a description.
func Parse(data []byte) (*Machine, error) {
	var m Machine

	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// ParseAll decodes a multi-document YAML stream, one machine per document.
func ParseAll(data []byte) ([]*Machine, error) {
	var machines []*Machine

	dec := yaml.NewDecoder(bytes.NewReader(data))

	for {
		var m Machine

		err := dec.Decode(&m)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML document %d: %w", len(machines)+1, err)
		}

		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("machine %q: %w", m.Name, err)
		}

		machines = append(machines, &m)
	}

	return machines, nil
}

// Load reads a description from a file.
func Load(path string) (*Machine, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read description %q: %w", path, err)
	}

	return Parse(data)
}

// LoadFS reads a description from a filesystem such as an embed.FS.
func LoadFS(fsys fs.FS, path string) (*Machine, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read description from FS: %w", err)
	}

	return Parse(data)
}

// Marshal encodes a description back to YAML.
func (m *Machine) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}

	return data, nil
}

// State returns the named state.
func (m *Machine) State(name string) (State, bool) {
	for _, s := range m.States {
		if s.Name == name {
			return s, true
		}
	}

	return State{}, false
}
