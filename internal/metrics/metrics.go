package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine metrics
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_conversions_total",
		Help: "Total number of timecode values decoded, by input format",
	}, []string{"format"})

	parseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_parse_errors_total",
		Help: "Total number of rejected timecode inputs",
	}, []string{"format", "field"})

	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_calculations_total",
		Help: "Total number of timecode calculations",
	}, []string{"operation"})

	clampsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_clamped_results_total",
		Help: "Total number of results clamped to zero",
	}, []string{"operation"})

	// History metrics
	historyErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "history_store_errors_total",
		Help: "Total number of failed history store operations",
	}, []string{"backend", "operation"})

	// Batch metrics
	batchFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_files_total",
		Help: "Total number of files processed by the time reference offsetter",
	}, []string{"status"})

	batchRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "batch_run_duration_seconds",
		Help:    "Duration of batch offset runs in seconds",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7 minutes
	})

	toolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bwf_tool_call_duration_seconds",
		Help:    "Duration of bwfmetaedit invocations in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
)

// RecordConversion counts a successful decode in format.
func RecordConversion(format string) {
	conversionsTotal.WithLabelValues(format).Inc()
}

// RecordParseError counts a rejected input.
func RecordParseError(format, field string) {
	parseErrorsTotal.WithLabelValues(format, field).Inc()
}

// RecordCalculation counts a calculation and whether it was clamped.
func RecordCalculation(operation string, clamped bool) {
	calculationsTotal.WithLabelValues(operation).Inc()
	if clamped {
		clampsTotal.WithLabelValues(operation).Inc()
	}
}

// RecordClamp counts a clamped result outside a calculation, such as an
// offset.
func RecordClamp(operation string) {
	clampsTotal.WithLabelValues(operation).Inc()
}

// IncrementHistoryError counts a failed history store call.
func IncrementHistoryError(backend, operation string) {
	historyErrorsTotal.WithLabelValues(backend, operation).Inc()
}

// RecordBatchFile counts a processed file by status: success, failed or
// skipped.
func RecordBatchFile(status string) {
	batchFilesTotal.WithLabelValues(status).Inc()
}

// ObserveBatchRun records the duration of a whole batch run.
func ObserveBatchRun(seconds float64) {
	batchRunDuration.Observe(seconds)
}

// ObserveToolCall records the duration of one tool invocation.
func ObserveToolCall(command string, seconds float64) {
	toolCallDuration.WithLabelValues(command).Observe(seconds)
}
