// Package tui implements the terminal calculator and converter.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/config"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/history"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/logger"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

const storeTimeout = 2 * time.Second

// Mode selects the screen.
type Mode int

const (
	ModeCalculator Mode = iota
	ModeConverter
)

func (m Mode) String() string {
	if m == ModeConverter {
		return "Converter"
	}
	return "Calculator"
}

// Options configure a Model.
type Options struct {
	Engine config.EngineConfig
	// History may be nil, in which case calculations are not recorded.
	History history.Store
	Logger  *logrus.Logger
}

// Model is the bubbletea model for the toolkit UI.
type Model struct {
	mode      Mode
	formats   []timecode.Format
	formatIdx int
	rates     []timecode.Rate
	rateIdx   int
	dropFrame bool
	strict    bool
	op        timecode.Operation

	fields [2]*field
	focus  int

	result      string
	conversions []timecode.Conversion
	warning     string
	err         error

	store   history.Store
	entries []history.Entry
	log     *logrus.Entry

	width    int
	height   int
	quitting bool
}

// Messages
type historyMsg struct {
	entries []history.Entry
	err     error
}

// New creates a model starting from the configured engine defaults.
func New(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	m := &Model{
		formats: timecode.Formats(),
		rates:   timecode.SupportedRates(),
		strict:  opts.Engine.Strict,
		op:      timecode.OpAdd,
		fields:  [2]*field{{}, {}},
		store:   opts.History,
		log:     logger.WithComponent(log, "tui"),
	}

	defaultFormat := opts.Engine.Format()
	for i, f := range m.formats {
		if f == defaultFormat {
			m.formatIdx = i
		}
	}

	defaultRate := opts.Engine.Rate()
	m.rateIdx = -1
	for i, r := range m.rates {
		if r == defaultRate {
			m.rateIdx = i
		}
	}
	if m.rateIdx < 0 {
		m.rates = append(m.rates, defaultRate)
		m.rateIdx = len(m.rates) - 1
	}
	m.dropFrame = opts.Engine.DropFrame && defaultRate.DropFrameEligible()

	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	if m.store == nil {
		return nil
	}
	return loadHistory(m.store)
}

func (m *Model) format() timecode.Format { return m.formats[m.formatIdx] }

func (m *Model) rate() timecode.Rate { return m.rates[m.rateIdx] }

func (m *Model) options() timecode.Options {
	return timecode.Options{DropFrame: m.dropFrame, Strict: m.strict}
}

func (m *Model) focused() *field { return m.fields[m.focus] }

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("History store call failed")
			m.warning = "history unavailable: " + msg.err.Error()
			return m, nil
		}
		m.entries = msg.entries
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.focused()

	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.mode == ModeCalculator {
			m.focus = 1 - m.focus
		}
	case "ctrl+n":
		m.switchMode()
	case "ctrl+f":
		m.formatIdx = (m.formatIdx + 1) % len(m.formats)
		m.resetFields()
	case "ctrl+r":
		m.rateIdx = (m.rateIdx + 1) % len(m.rates)
		if m.dropFrame && !m.rate().DropFrameEligible() {
			m.dropFrame = false
		}
		m.remaskFields()
		m.clearResult()
	case "ctrl+d":
		m.toggleDropFrame()
	case "ctrl+o":
		if m.op == timecode.OpAdd {
			m.op = timecode.OpSubtract
		} else {
			m.op = timecode.OpAdd
		}
	case "ctrl+l":
		if m.store != nil {
			m.entries = nil
			return m, clearHistory(m.store)
		}
	case "enter":
		return m, m.evaluate()
	case "left":
		f.left()
	case "right":
		f.right()
	case "home", "ctrl+a":
		f.home()
	case "end", "ctrl+e":
		f.end()
	case "backspace":
		f.backspace(m.format(), m.rate())
	case "delete":
		f.del(m.format(), m.rate())
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			f.insert(msg.Runes, m.format(), m.rate())
		}
	}

	return m, nil
}

func (m *Model) switchMode() {
	if m.mode == ModeCalculator {
		m.mode = ModeConverter
	} else {
		m.mode = ModeCalculator
	}
	m.focus = 0
	m.clearResult()
}

func (m *Model) toggleDropFrame() {
	if !m.dropFrame && !m.rate().DropFrameEligible() {
		m.err = &timecode.InvalidDropFrameError{Rate: m.rate()}
		return
	}
	m.dropFrame = !m.dropFrame
	m.err = nil
	m.clearResult()
}

func (m *Model) resetFields() {
	for _, f := range m.fields {
		f.reset()
	}
	m.clearResult()
}

func (m *Model) remaskFields() {
	for _, f := range m.fields {
		f.remask(m.format(), m.rate())
	}
}

func (m *Model) clearResult() {
	m.result = ""
	m.conversions = nil
	m.warning = ""
	m.err = nil
}

// evaluate runs the current screen's computation. A recorded calculation
// returns a command that stores it and reloads the history.
func (m *Model) evaluate() tea.Cmd {
	m.clearResult()

	a, err := timecode.Parse(m.fields[0].String(), m.format(), m.rate(), m.options())
	if err != nil {
		m.err = err
		return nil
	}

	if m.mode == ModeConverter {
		m.conversions = timecode.ConvertAll(a)
		m.result, _ = a.Encode(m.format())
		return nil
	}

	b, err := timecode.Parse(m.fields[1].String(), m.format(), m.rate(), m.options())
	if err != nil {
		m.err = err
		return nil
	}
	res, err := timecode.Calculate(a, b, m.op)
	if err != nil {
		m.err = err
		return nil
	}

	m.result, _ = res.Timecode.Encode(m.format())
	if w := res.Warning(); w != nil {
		m.warning = w.Error()
	}

	if m.store == nil {
		return nil
	}
	entry, err := history.NewEntry(a, b, m.op, res, m.format())
	if err != nil {
		m.log.WithError(err).Warn("Failed to build history entry")
		return nil
	}
	return recordHistory(m.store, entry)
}

func loadHistory(store history.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		entries, err := store.List(ctx)
		return historyMsg{entries: entries, err: err}
	}
}

func recordHistory(store history.Store, entry history.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := store.Add(ctx, entry); err != nil {
			return historyMsg{err: err}
		}
		entries, err := store.List(ctx)
		return historyMsg{entries: entries, err: err}
	}
}

func clearHistory(store history.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := store.Clear(ctx); err != nil {
			return historyMsg{err: err}
		}
		return historyMsg{}
	}
}
