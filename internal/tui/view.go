package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/mask"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/version"
)

const historyRows = 10

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderInputs(),
		m.renderResult(),
	}
	if m.mode == ModeConverter {
		sections = append(sections, m.renderConversions())
	} else {
		sections = append(sections, m.renderHistory())
	}
	sections = append(sections, m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	mode := "NDF"
	if m.dropFrame {
		mode = "DF"
	}
	status := fmt.Sprintf("%s  %s · %s fps %s", m.mode, m.format().Label(), m.rate(), mode)
	if m.strict {
		status += " · strict"
	}
	return HeaderStyle.Render(version.Product) + " " + InfoStyle.Render(status)
}

func (m *Model) renderInputs() string {
	if m.mode == ModeConverter {
		return m.renderField("Input", 0)
	}
	op := ValueStyle.Render(" " + m.op.Symbol() + " ")
	return lipgloss.JoinVertical(lipgloss.Left, m.renderField("A", 0), op, m.renderField("B", 1))
}

func (m *Model) renderField(label string, idx int) string {
	f := m.fields[idx]
	focused := idx == m.focus

	var body string
	switch {
	case len(f.text) == 0 && !focused:
		body = PlaceholderStyle.Render(mask.Placeholder(m.format()))
	case focused:
		body = renderCursor(f)
	default:
		body = ValueStyle.Render(f.String())
	}

	style := PanelStyle
	if focused {
		style = FocusedPanelStyle
	}
	return style.Render(LabelStyle.Render(label) + body)
}

func renderCursor(f *field) string {
	if f.cursor >= len(f.text) {
		return ValueStyle.Render(f.String()) + CursorStyle.Render(" ")
	}
	return ValueStyle.Render(string(f.text[:f.cursor])) +
		CursorStyle.Render(string(f.text[f.cursor])) +
		ValueStyle.Render(string(f.text[f.cursor+1:]))
}

func (m *Model) renderResult() string {
	var lines []string
	if m.err != nil {
		lines = append(lines, ErrorStyle.Render(m.err.Error()))
	}
	if m.result != "" {
		lines = append(lines, LabelStyle.Render("=")+ResultStyle.Render(m.result))
	}
	if m.warning != "" {
		lines = append(lines, WarningStyle.Render(m.warning))
	}
	if len(lines) == 0 {
		return ""
	}
	return PanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderConversions() string {
	if len(m.conversions) == 0 {
		return ""
	}
	rows := make([]string, 0, len(m.conversions))
	for _, c := range m.conversions {
		rows = append(rows, LabelStyle.Width(10).Render(c.Format.Label())+ValueStyle.Render(c.Value))
	}
	return PanelStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderHistory() string {
	if len(m.entries) == 0 {
		return MutedStyle.Render("no calculations yet")
	}
	rows := make([]string, 0, historyRows)
	for i, e := range m.entries {
		if i == historyRows {
			break
		}
		rows = append(rows, MutedStyle.Render(e.String()))
	}
	return PanelStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderHelp() string {
	keys := []string{"enter compute", "ctrl+n mode", "ctrl+f format", "ctrl+r rate"}
	if m.rate().DropFrameEligible() {
		keys = append(keys, "ctrl+d drop-frame")
	}
	if m.mode == ModeCalculator {
		keys = append(keys, "tab field", "ctrl+o "+timecode.OpAdd.Symbol()+"/"+timecode.OpSubtract.Symbol(), "ctrl+l clear history")
	}
	keys = append(keys, "esc quit")
	return MutedStyle.Render(strings.Join(keys, " · "))
}
