// Package batch shifts the BWF time reference of every WAV file in a folder
// by a fixed number of frames.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/bwf"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/exceptions"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/metrics"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

// ErrNoFiles is returned when the folder holds no WAV files.
var ErrNoFiles = errors.New("no wav files found")

// Status is the outcome of one file.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Options configures a run.
type Options struct {
	OffsetFrames int64
	Rate         timecode.Rate
	DropFrame    bool
	// DefaultSampleRate is used when the tool reports none.
	DefaultSampleRate int64
	Concurrency       int
	DryRun            bool
}

// FileResult describes what happened to one file.
type FileResult struct {
	Path       string
	Status     Status
	SampleRate int64
	OldSamples int64
	NewSamples int64
	OldTC      string
	NewTC      string
	Clamped    bool
	Err        error
}

// Summary is returned by Run.
type Summary struct {
	Results   []FileResult
	Succeeded int64
	Failed    int64
	Skipped   int64
	Duration  time.Duration
}

// Offsetter runs batch offsets against a bwf.Tool.
type Offsetter struct {
	tool     bwf.Tool
	limiter  *rate.Limiter
	reporter exceptions.Reporter
	logger   *logrus.Logger
}

// NewOffsetter creates an Offsetter. A nil limiter leaves tool calls
// unlimited and a nil reporter discards exceptions.
func NewOffsetter(tool bwf.Tool, limiter *rate.Limiter, reporter exceptions.Reporter, logger *logrus.Logger) *Offsetter {
	if reporter == nil {
		reporter = &exceptions.NoopReporter{}
	}
	return &Offsetter{
		tool:     tool,
		limiter:  limiter,
		reporter: reporter,
		logger:   logger,
	}
}

// NewLimiter returns a limiter for perSecond tool calls, or nil when
// perSecond is not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// FindWAVFiles returns the .wav files directly inside dir, sorted. The
// extension match ignores case.
func FindWAVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// RunDir offsets every WAV file in dir.
func (o *Offsetter) RunDir(ctx context.Context, dir string, opts Options) (*Summary, error) {
	files, err := FindWAVFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}
	return o.Run(ctx, files, opts)
}

// Run offsets files. Per-file failures are recorded in the summary and do
// not stop the batch; only cancellation of ctx does.
func (o *Offsetter) Run(ctx context.Context, files []string, opts Options) (*Summary, error) {
	if !opts.Rate.Valid() {
		return nil, fmt.Errorf("%w: %s", timecode.ErrInvalidRate, opts.Rate)
	}
	if opts.DropFrame && !opts.Rate.DropFrameEligible() {
		return nil, &timecode.InvalidDropFrameError{Rate: opts.Rate}
	}
	if opts.DefaultSampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", timecode.ErrInvalidSampleRate, opts.DefaultSampleRate)
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	start := time.Now()
	var succeeded, failed, skipped atomic.Int64
	results := make([]FileResult, len(files))

	o.logger.WithFields(logrus.Fields{
		"files":       len(files),
		"offset":      opts.OffsetFrames,
		"rate":        opts.Rate.String(),
		"concurrency": concurrency,
		"dry_run":     opts.DryRun,
	}).Info("Starting time reference offset")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Status: StatusFailed, Err: err}
				failed.Inc()
				return err
			}
			res := o.processFile(gctx, path, opts)
			results[i] = res

			switch res.Status {
			case StatusSuccess:
				succeeded.Inc()
			case StatusSkipped:
				skipped.Inc()
			default:
				failed.Inc()
			}
			metrics.RecordBatchFile(string(res.Status))

			// Cancellation aborts the run, ordinary file errors do not
			if res.Err != nil && errors.Is(res.Err, context.Canceled) {
				return res.Err
			}
			return nil
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)
	metrics.ObserveBatchRun(elapsed.Seconds())

	summary := &Summary{
		Results:   results,
		Succeeded: succeeded.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
		Duration:  elapsed,
	}
	o.reporter.Flush()

	o.logger.WithFields(logrus.Fields{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
		"duration":  elapsed.String(),
	}).Info("Time reference offset finished")

	if err != nil {
		return summary, err
	}
	return summary, nil
}

func (o *Offsetter) processFile(ctx context.Context, path string, opts Options) FileResult {
	res := FileResult{Path: path}
	log := o.logger.WithField("file", filepath.Base(path))

	fail := func(stage string, err error) FileResult {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("%s: %w", stage, err)
		log.WithError(err).WithField("stage", stage).Error("Failed to offset file")
		if !errors.Is(err, context.Canceled) {
			o.reporter.ReportException(res.Err, map[string]string{
				"file":  filepath.Base(path),
				"stage": stage,
			})
		}
		return res
	}

	if err := o.wait(ctx); err != nil {
		return fail("read", err)
	}
	core, err := o.tool.ReadCore(ctx, path)
	if err != nil {
		return fail("read", err)
	}
	if !core.HasTimeReference {
		res.Status = StatusSkipped
		res.Err = bwf.ErrNoTimeReference
		log.Warn("TimeReference is empty, skipping")
		return res
	}
	res.OldSamples = core.TimeReference

	res.SampleRate = opts.DefaultSampleRate
	if err := o.wait(ctx); err != nil {
		return fail("read", err)
	}
	tech, err := o.tool.ReadTech(ctx, path)
	switch {
	case err != nil:
		log.WithError(err).Debug("Sample rate unavailable, using default")
	case tech.SampleRate > 0:
		res.SampleRate = tech.SampleRate
	}

	current, err := timecode.SamplesToTimecode(res.OldSamples, res.SampleRate, opts.Rate, opts.DropFrame)
	if err != nil {
		return fail("convert", err)
	}
	shifted, err := current.Offset(opts.OffsetFrames)
	if err != nil {
		return fail("offset", err)
	}
	newSamples, err := timecode.TimecodeToSamples(shifted.Timecode, res.SampleRate)
	if err != nil {
		return fail("convert", err)
	}

	res.OldTC = current.SMPTE()
	res.NewTC = shifted.Timecode.SMPTE()
	res.NewSamples = newSamples
	res.Clamped = shifted.Clamped
	if shifted.Clamped {
		metrics.RecordClamp("offset")
		log.WithField("frames", shifted.Unclamped).Warn("Offset result was negative, clamped to zero")
	}

	fields := logrus.Fields{
		"old_tc":      res.OldTC,
		"new_tc":      res.NewTC,
		"old_samples": res.OldSamples,
		"new_samples": res.NewSamples,
		"sample_rate": res.SampleRate,
	}

	if opts.DryRun {
		res.Status = StatusSuccess
		log.WithFields(fields).Info("Dry run, not writing")
		return res
	}

	if err := o.wait(ctx); err != nil {
		return fail("write", err)
	}
	if err := o.tool.WriteTimeReference(ctx, path, newSamples); err != nil {
		return fail("write", err)
	}

	res.Status = StatusSuccess
	log.WithFields(fields).Info("Time reference updated")
	return res
}

func (o *Offsetter) wait(ctx context.Context) error {
	if o.limiter == nil {
		return ctx.Err()
	}
	return o.limiter.Wait(ctx)
}
