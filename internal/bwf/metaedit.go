package bwf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/metrics"
)

// MetaEdit runs the bwfmetaedit binary.
type MetaEdit struct {
	binaryPath string
	timeout    time.Duration
	logger     *logrus.Logger
}

// NewMetaEdit creates a runner for the binary at binaryPath, looked up in
// PATH when it is not absolute.
func NewMetaEdit(binaryPath string, timeout time.Duration, logger *logrus.Logger) (*MetaEdit, error) {
	if binaryPath == "" {
		binaryPath = "bwfmetaedit"
	}
	resolved, err := exec.LookPath(binaryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, binaryPath)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MetaEdit{
		binaryPath: resolved,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// Path returns the resolved binary path.
func (m *MetaEdit) Path() string {
	return m.binaryPath
}

func (m *MetaEdit) ReadCore(ctx context.Context, path string) (Core, error) {
	out, err := m.run(ctx, "--out-core", path)
	if err != nil {
		return Core{}, err
	}
	core, err := parseCore(bytes.NewReader(out))
	if err != nil {
		return Core{}, fmt.Errorf("%s: %w", path, err)
	}
	return core, nil
}

func (m *MetaEdit) ReadTech(ctx context.Context, path string) (Tech, error) {
	out, err := m.run(ctx, "--out-tech", path)
	if err != nil {
		return Tech{}, err
	}
	tech, err := parseTech(bytes.NewReader(out))
	if err != nil {
		return Tech{}, fmt.Errorf("%s: %w", path, err)
	}
	return tech, nil
}

func (m *MetaEdit) WriteTimeReference(ctx context.Context, path string, samples int64) error {
	if samples < 0 {
		return fmt.Errorf("time reference must not be negative: %d", samples)
	}
	_, err := m.run(ctx, "--Timereference="+strconv.FormatInt(samples, 10), path)
	return err
}

// Version returns the first line the tool prints for --version.
func (m *MetaEdit) Version(ctx context.Context) (string, error) {
	out, err := m.run(ctx, "--version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line == "" {
		return "", fmt.Errorf("unexpected bwfmetaedit version output")
	}
	return line, nil
}

func (m *MetaEdit) run(ctx context.Context, args ...string) ([]byte, error) {
	// Create a context with timeout for the command
	cmdCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cmdCtx, m.binaryPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	command, _, _ := strings.Cut(args[0], "=")
	metrics.ObserveToolCall(strings.TrimLeft(command, "-"), elapsed.Seconds())

	m.logger.WithFields(logrus.Fields{
		"args":     args,
		"duration": elapsed,
	}).Debug("bwfmetaedit finished")

	if err != nil {
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", m.timeout, cmdCtx.Err())
		}
		return nil, &ToolError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}
