package metrics

import "time"

// Result labels a finished call or stage.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailed  Result = "failed"
)

// Recorder receives design service call and pipeline stage observations.
type Recorder interface {
	ObserveCall(route string, d time.Duration, status int)
	ObserveStage(stage string, d time.Duration, result Result)
	SetStageConcurrency(stage string, n int)
}

// NoopRecorder is used when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveCall(string, time.Duration, int)     {}
func (NoopRecorder) ObserveStage(string, time.Duration, Result) {}
func (NoopRecorder) SetStageConcurrency(string, int)            {}
