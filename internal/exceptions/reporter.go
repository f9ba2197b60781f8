// Package exceptions forwards unexpected errors to an external tracker.
package exceptions

import (
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
)

const defaultFlushTimeout = time.Second * 5

// Reporter sends exceptions to an external source
type Reporter interface {
	ReportException(err error, tags map[string]string)
	Flush()
}

// New returns a SentryReporter when a DSN is configured and a NoopReporter
// otherwise.
func New(cfg *config.SentryConfig) (Reporter, error) {
	if cfg == nil || cfg.DSN == "" {
		return &NoopReporter{}, nil
	}
	return NewSentryReporter(cfg.DSN, cfg.Environment)
}

// NoopReporter is a no-op exception reporter
type NoopReporter struct{}

// ReportException does nothing
func (r *NoopReporter) ReportException(_ error, _ map[string]string) {}

// Flush does nothing
func (r *NoopReporter) Flush() {}

// SentryReporter is a Reporter that sends error information to Sentry
type SentryReporter struct{}

// NewSentryReporter creates and returns an instance of SentryReporter
func NewSentryReporter(dsn, env string) (*SentryReporter, error) {
	err := sentry.Init(sentry.ClientOptions{Dsn: dsn, Environment: env})
	if err != nil {
		return nil, err
	}

	return &SentryReporter{}, nil
}

// ReportException queues err for Sentry with tags attached. Call Flush
// before the process exits.
func (r *SentryReporter) ReportException(err error, tags map[string]string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush waits for queued events to be delivered
func (r *SentryReporter) Flush() {
	sentry.Flush(defaultFlushTimeout)
}

// Report is one recorded exception.
type Report struct {
	Err  error
	Tags map[string]string
}

// RecordingReporter keeps reports in memory. Tests and the dry-run batch
// mode use it to inspect what would have been sent.
type RecordingReporter struct {
	mu      sync.Mutex
	reports []Report
}

// ReportException records err
func (r *RecordingReporter) ReportException(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Err: err, Tags: tags})
}

// Flush does nothing
func (r *RecordingReporter) Flush() {}

// Reports returns a copy of everything recorded so far
func (r *RecordingReporter) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}
