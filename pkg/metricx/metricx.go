// Package metricx holds the process-wide Prometheus collectors for chat
// streams, tool executions and uploads.
package metricx

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stream outcomes
const (
	OutcomeCompleted      = "completed"
	OutcomeFailed         = "failed"
	OutcomeClientGone     = "client_gone"
	OutcomeToolBatchEmpty = "tool_batch_empty"
)

var (
	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mosaic_chat_active_streams",
		Help: "Number of chat streams currently open",
	})

	streamsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_chat_streams_total",
		Help: "Total number of chat streams by outcome",
	}, []string{"outcome"})

	streamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mosaic_chat_stream_duration_seconds",
		Help:    "Duration of chat streams in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
	})

	phasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_chat_generation_phases_total",
		Help: "Upstream generation phases started",
	}, []string{"phase"}) // phase: "initial" or "tool_outputs"

	toolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_tool_executions_total",
		Help: "Tool executions by tool and status",
	}, []string{"tool", "status"})

	toolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mosaic_tool_latency_seconds",
		Help:    "Tool execution latency in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_knowledge_uploads_total",
		Help: "Knowledge base uploads by status",
	}, []string{"status"})
)

// Stream tracks metrics for a single chat stream
type Stream struct {
	startTime time.Time
	once      sync.Once
}

// StartStream records a new open stream
func StartStream() *Stream {
	activeStreams.Inc()
	return &Stream{startTime: time.Now()}
}

// End records the stream's outcome. Only the first call counts.
func (s *Stream) End(outcome string) {
	s.once.Do(func() {
		activeStreams.Dec()
		streamsTotal.WithLabelValues(outcome).Inc()
		streamDuration.Observe(time.Since(s.startTime).Seconds())
	})
}

// RecordPhase records the start of a generation phase
func RecordPhase(phase string) {
	phasesTotal.WithLabelValues(phase).Inc()
}

// RecordTool records one tool execution
func RecordTool(tool string, success bool, took time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	toolExecutions.WithLabelValues(tool, status).Inc()
	toolLatency.WithLabelValues(tool).Observe(took.Seconds())
}

// RecordUpload records one knowledge base upload
func RecordUpload(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	uploadsTotal.WithLabelValues(status).Inc()
}
