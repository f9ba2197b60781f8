package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Pinger is anything that can report its own reachability, such as a
// history store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HistoryChecker checks the calculation history store.
type HistoryChecker struct {
	store   Pinger
	backend string
}

// NewHistoryChecker creates a checker for a history store.
func NewHistoryChecker(store Pinger, backend string) *HistoryChecker {
	return &HistoryChecker{store: store, backend: backend}
}

// Name returns the name of the checker.
func (h *HistoryChecker) Name() string {
	return "history"
}

// Check pings the store.
func (h *HistoryChecker) Check(ctx context.Context) error {
	if err := h.store.Ping(ctx); err != nil {
		return fmt.Errorf("%s history store unreachable: %w", h.backend, err)
	}
	return nil
}

// Versioner reports the version of an external tool.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// ToolChecker checks that an external binary runs.
type ToolChecker struct {
	name string
	tool Versioner
	// expect is a substring the version output must contain; empty accepts
	// any output.
	expect string
}

// NewBWFChecker creates a checker for bwfmetaedit.
func NewBWFChecker(tool Versioner) *ToolChecker {
	return &ToolChecker{name: "bwfmetaedit", tool: tool, expect: "BWF MetaEdit"}
}

// Name returns the name of the checker.
func (t *ToolChecker) Name() string {
	return t.name
}

// Check runs the tool's version command.
func (t *ToolChecker) Check(ctx context.Context) error {
	if t.tool == nil {
		return errors.New(t.name + " is not installed")
	}
	out, err := t.tool.Version(ctx)
	if err != nil {
		return fmt.Errorf("%s version check failed: %w", t.name, err)
	}
	if t.expect != "" && !strings.Contains(out, t.expect) {
		return fmt.Errorf("unexpected %s version output %q", t.name, out)
	}
	return nil
}
