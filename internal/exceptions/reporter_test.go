package exceptions

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
)

func TestNew_NoDSN(t *testing.T) {
	r, err := New(&config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, &NoopReporter{}, r)

	r, err = New(nil)
	require.NoError(t, err)
	assert.IsType(t, &NoopReporter{}, r)

	// Must not panic
	r.ReportException(errors.New("ignored"), nil)
	r.Flush()
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(&config.SentryConfig{DSN: "not a dsn", Environment: "test"})
	assert.Error(t, err)
}

func TestRecordingReporter(t *testing.T) {
	r := &RecordingReporter{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.ReportException(errors.New("boom"), map[string]string{"file": "a.wav"})
		}()
	}
	wg.Wait()

	reports := r.Reports()
	require.Len(t, reports, 10)
	assert.Equal(t, "a.wav", reports[0].Tags["file"])
	assert.EqualError(t, reports[0].Err, "boom")
}
