package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventItems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []string
		want   []string
	}{
		{name: "empty", want: []string{QuitItem}},
		{name: "dedup", events: []string{"open", "close", "open"}, want: []string{QuitItem, "close", "open"}},
		{name: "natural order", events: []string{"step10", "step2", "step1"}, want: []string{QuitItem, "step1", "step2", "step10"}},
		{name: "blank dropped", events: []string{"", "go"}, want: []string{QuitItem, "go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, EventItems(tt.events))
		})
	}
}

func TestPrefixSearcher(t *testing.T) {
	t.Parallel()

	items := EventItems([]string{"open", "close", "lock"})
	search := prefixSearcher(items)

	assert.False(t, search("[", 0))
	assert.False(t, search("", 1))
	assert.True(t, search("cl", 1))
	assert.False(t, search("op", 1))
	assert.True(t, search("op", 3))
}
