// Package bwf reads and writes Broadcast Wave metadata through the external
// bwfmetaedit tool.
package bwf

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrToolNotFound is returned when the bwfmetaedit binary cannot be found.
	ErrToolNotFound = errors.New("bwfmetaedit binary not found")
	// ErrNoTimeReference is returned when a file carries an empty TimeReference.
	ErrNoTimeReference = errors.New("file has no time reference")
	// ErrNoData is returned when the tool printed a header but no file row.
	ErrNoData = errors.New("tool output has no data row")
)

// Core is the bext chunk as reported by --out-core.
type Core struct {
	Fields        map[string]string
	TimeReference int64
	// HasTimeReference is false when the field is present but empty.
	HasTimeReference bool
}

// Tech is the technical summary as reported by --out-tech.
type Tech struct {
	Fields     map[string]string
	SampleRate int64 // zero when the tool does not report one
	Channels   int
}

// Tool reads and writes BWF metadata.
type Tool interface {
	ReadCore(ctx context.Context, path string) (Core, error)
	ReadTech(ctx context.Context, path string) (Tech, error)
	WriteTimeReference(ctx context.Context, path string, samples int64) error
}

// ToolError wraps a failed tool invocation with its stderr.
type ToolError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("bwfmetaedit %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// parseCSVRow returns the first data row of CSV output keyed by header.
func parseCSVRow(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	row, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV row: %w", err)
	}

	fields := make(map[string]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if i < len(row) {
			fields[name] = strings.TrimSpace(row[i])
		} else {
			fields[name] = ""
		}
	}
	return fields, nil
}

func parseCore(r io.Reader) (Core, error) {
	fields, err := parseCSVRow(r)
	if err != nil {
		return Core{}, err
	}

	core := Core{Fields: fields}
	value, ok := fields["TimeReference"]
	if !ok {
		return Core{}, fmt.Errorf("TimeReference column missing from core output")
	}
	if value == "" {
		return core, nil
	}

	samples, err := strconv.ParseInt(value, 10, 64)
	if err != nil || samples < 0 {
		return Core{}, fmt.Errorf("TimeReference %q is not a sample count", value)
	}
	core.TimeReference = samples
	core.HasTimeReference = true
	return core, nil
}

func parseTech(r io.Reader) (Tech, error) {
	fields, err := parseCSVRow(r)
	if err != nil {
		return Tech{}, err
	}

	tech := Tech{Fields: fields}
	if v := fields["SampleRate"]; v != "" {
		rate, err := strconv.ParseInt(v, 10, 64)
		if err != nil || rate <= 0 {
			return Tech{}, fmt.Errorf("SampleRate %q is not a positive integer", v)
		}
		tech.SampleRate = rate
	}
	if v := fields["Channels"]; v != "" {
		if ch, err := strconv.Atoi(v); err == nil {
			tech.Channels = ch
		}
	}
	return tech, nil
}
