package metrics

import "time"

// Outcome is the final status of a build.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailed  Outcome = "failed"
)

// Stage names as recorded by the build driver.
const (
	StageLoad     = "load"
	StagePages    = "pages"
	StageIndex    = "index"
	StageManifest = "manifest"
	StageVerify   = "verify"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome Outcome)
	IncPagesWritten(n int)
	SetRecipesLoaded(n int)
	SetBrokenLinks(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(Outcome)                    {}
func (NoopRecorder) IncPagesWritten(int)                        {}
func (NoopRecorder) SetRecipesLoaded(int)                       {}
func (NoopRecorder) SetBrokenLinks(int)                         {}
