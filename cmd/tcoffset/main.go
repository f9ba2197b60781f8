package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/batch"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/bwf"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/exceptions"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/health"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/logger"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the offsetter and returns the process exit code: 0 on
// success, 1 when the run or any file failed, 2 for usage errors.
func run(args []string, stdout, stderr io.Writer) int {
	var (
		configPath  string
		dir         string
		offset      int64
		rateFlag    string
		dropFrame   bool
		dryRun      bool
		concurrency int
		showVersion bool
	)

	flags := flag.NewFlagSet("tcoffset", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&configPath, "config", "", "Path to configuration file")
	flags.StringVar(&dir, "dir", "", "Folder containing the WAV files to offset")
	flags.Int64Var(&offset, "offset", 0, "Offset in frames, negative to move earlier")
	flags.StringVar(&rateFlag, "rate", "", "Frame rate the offset is counted in (default from config)")
	flags.BoolVar(&dropFrame, "drop", false, "Report timecodes as drop-frame")
	flags.BoolVar(&dryRun, "dry-run", false, "Compute new time references without writing them")
	flags.IntVar(&concurrency, "concurrency", 0, "Files processed in parallel (default from config)")
	flags.BoolVar(&showVersion, "version", false, "Show version information")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if showVersion {
		fmt.Fprintln(stdout, version.GetInfo().Banner("tcoffset"))
		return 0
	}
	if dir == "" {
		fmt.Fprintln(stderr, "Usage: tcoffset -dir <folder> -offset <frames> [-rate 24] [-drop] [-dry-run]")
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := logger.New(&cfg.Logging, "tcoffset")
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	rate := cfg.Engine.Rate()
	if rateFlag != "" {
		if rate, err = timecode.ParseRate(rateFlag); err == nil {
			err = timecode.ValidateCustomRate(rate)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Invalid -rate %q: %v\n", rateFlag, err)
			return 2
		}
	}
	if concurrency <= 0 {
		concurrency = cfg.Batch.Concurrency
	}

	reporter, err := exceptions.New(&cfg.Sentry)
	if err != nil {
		log.WithError(err).Error("Failed to initialize exception reporter")
		return 1
	}
	defer reporter.Flush()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tool, err := bwf.NewMetaEdit(cfg.Batch.ToolPath, cfg.Batch.ToolTimeout, log)
	if err != nil {
		log.WithError(err).Error("bwfmetaedit is required; install it or set batch.tool_path")
		return 1
	}

	// Preflight the tool once instead of failing every file
	checker := health.NewBWFChecker(tool)
	if err := checker.Check(ctx); err != nil {
		log.WithError(err).Error("bwfmetaedit preflight failed")
		return 1
	}

	offsetter := batch.NewOffsetter(tool, batch.NewLimiter(cfg.Batch.ToolRate, cfg.Batch.ToolBurst), reporter, log)

	log.WithFields(logger.Fields{
		"dir":     dir,
		"offset":  offset,
		"rate":    rate.String(),
		"dry_run": dryRun,
	}).Info("Starting time reference offset")

	summary, err := offsetter.RunDir(ctx, dir, batch.Options{
		OffsetFrames:      offset,
		Rate:              rate,
		DropFrame:         dropFrame,
		DefaultSampleRate: cfg.Batch.SampleRate,
		Concurrency:       concurrency,
		DryRun:            dryRun,
	})
	if errors.Is(err, batch.ErrNoFiles) {
		fmt.Fprintf(stdout, "No WAV files in %s\n", dir)
		return 0
	}
	if summary != nil {
		printSummary(stdout, summary, dryRun)
	}
	if err != nil {
		log.WithError(err).Error("Batch run aborted")
		return 1
	}
	if summary.Failed > 0 {
		return 1
	}
	return 0
}

func printSummary(w io.Writer, s *batch.Summary, dryRun bool) {
	for _, r := range s.Results {
		name := filepath.Base(r.Path)
		switch r.Status {
		case batch.StatusSuccess:
			note := ""
			if r.Clamped {
				note = "  (clamped to zero)"
			}
			fmt.Fprintf(w, "✓ %s  %s -> %s  [%d -> %d]%s\n", name, r.OldTC, r.NewTC, r.OldSamples, r.NewSamples, note)
		case batch.StatusSkipped:
			fmt.Fprintf(w, "- %s  skipped: no time reference\n", name)
		case batch.StatusFailed:
			fmt.Fprintf(w, "✗ %s  %v\n", name, r.Err)
		}
	}

	mode := ""
	if dryRun {
		mode = " (dry run, nothing written)"
	}
	fmt.Fprintf(w, "\n%d succeeded, %d failed, %d skipped in %s%s\n",
		s.Succeeded, s.Failed, s.Skipped, s.Duration.Round(time.Millisecond), mode)
}
