package visualizer

// Options configures the visualization output.
type Options struct {
	// ShowDescriptions adds each state's descr as a note.
	ShowDescriptions bool

	// ShowEvents labels transitions with the event that triggers them.
	ShowEvents bool

	// Direction controls diagram flow: "TB" (top-bottom) or "LR" (left-right).
	Direction string

	// HighlightPath highlights a specific state path through the diagram.
	HighlightPath []string
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		ShowDescriptions: true,
		ShowEvents:       true,
		Direction:        "TB",
	}
}

// WithShowDescriptions enables/disables state notes.
func (o Options) WithShowDescriptions(show bool) Options {
	o.ShowDescriptions = show

	return o
}

// WithShowEvents enables/disables transition labels.
func (o Options) WithShowEvents(show bool) Options {
	o.ShowEvents = show

	return o
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlightPath sets states to highlight.
func (o Options) WithHighlightPath(path []string) Options {
	o.HighlightPath = path

	return o
}
