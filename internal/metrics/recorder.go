package metrics

import "time"

// Outcome labels the final status of a generate or check run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeDrift    Outcome = "drift"
	OutcomeCanceled Outcome = "canceled"
)

// Recorder defines observability hooks for tag generation. Implementations
// must be safe for concurrent use since watch mode may trigger overlapping
// runs from the file watcher and the scheduler.
type Recorder interface {
	ObserveGenerateDuration(d time.Duration)
	SetPostsScanned(n int)
	SetTagsFound(n int)
	AddPagesWritten(n int)
	AddPostsSkipped(reason string, n int)
	IncOutcome(outcome Outcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveGenerateDuration(time.Duration) {}
func (NoopRecorder) SetPostsScanned(int)                   {}
func (NoopRecorder) SetTagsFound(int)                      {}
func (NoopRecorder) AddPagesWritten(int)                   {}
func (NoopRecorder) AddPostsSkipped(string, int)           {}
func (NoopRecorder) IncOutcome(Outcome)                    {}
