package progrock

import (
	"github.com/vito/progrock"
)

// Span implements ports.Span wrapping *progrock.VertexRecorder.
type Span struct {
	vertex *progrock.VertexRecorder
	err    error
}

// Write forwards to the vertex's stdout stream.
func (s *Span) Write(p []byte) (n int, err error) {
	return s.vertex.Stdout().Write(p)
}

// RecordError remembers the error so End reports the vertex as failed.
func (s *Span) RecordError(err error) {
	s.err = err
}

// SetAttribute maps the cached attribute onto the vertex's cache marker.
// Other attributes are dropped, progrock has no equivalent.
func (s *Span) SetAttribute(key string, value any) {
	if key == "weft.cached" {
		if cached, ok := value.(bool); ok && cached {
			s.vertex.Cached()
		}
	}
}

// End marks the vertex as finished.
func (s *Span) End() {
	s.vertex.Done(s.err)
}
