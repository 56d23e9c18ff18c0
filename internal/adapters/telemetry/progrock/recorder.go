// Package progrock provides the Progrock implementation of the tracer.
package progrock

import (
	"context"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/weft/internal/core/ports"
)

// Recorder implements ports.Tracer on top of a progrock recording session.
// Each target becomes a vertex, with the compiler's combined output attached
// as the vertex's stdout stream.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() *Recorder {
	tape := progrock.NewTape()
	return NewRecorder(tape)
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	rec := progrock.NewRecorder(w)
	return &Recorder{
		w:   w,
		rec: rec,
	}
}

// Start begins a new vertex for the named target.
func (r *Recorder) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	d := digest.FromString(name)
	v := r.rec.Vertex(d, name)
	return ctx, &Span{vertex: v}
}

// EmitPlan records the execution order as its own vertex so the plan shows
// up in the session before any target runs.
func (r *Recorder) EmitPlan(_ context.Context, targetNames []string) {
	d := digest.FromString("plan")
	v := r.rec.Vertex(d, "plan")
	for i, name := range targetNames {
		_, _ = fmt.Fprintf(v.Stdout(), "%d. %s\n", i+1, name)
	}
	v.Done(nil)
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
