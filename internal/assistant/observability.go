package assistant

import (
	"fmt"
	"io"
	"time"
)

// CallEvent records metadata about a single assistant invocation.
type CallEvent struct {
	Flow      string
	Model     string
	LatencyMs int64
	FieldSets int
	Success   bool
	ErrorCode string
}

// Observer receives events about assistant calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes assistant call events to an io.Writer.
type LogObserver struct {
	w io.Writer
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{w: w}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	ts := time.Now().UTC().Format(time.RFC3339)
	status := "ok"
	if !event.Success {
		status = "err:" + event.ErrorCode
	}
	fmt.Fprintf(o.w, "[%s] assistant_call flow=%s model=%s latency_ms=%d field_sets=%d status=%s\n",
		ts, event.Flow, event.Model, event.LatencyMs, event.FieldSets, status)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
