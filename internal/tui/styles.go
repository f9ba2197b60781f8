package tui

import "github.com/charmbracelet/lipgloss"

// Dark edit-suite palette
var (
	Primary   = lipgloss.Color("#FF6B35")
	Secondary = lipgloss.Color("#1E88E5")
	Success   = lipgloss.Color("#4CAF50")
	Warning   = lipgloss.Color("#FFB74D")
	Error     = lipgloss.Color("#F44336")

	Text       = lipgloss.Color("#E0E0E0")
	TextBright = lipgloss.Color("#FFFFFF")
	Muted      = lipgloss.Color("#90A4AE")

	HeaderBg   = lipgloss.Color("#1C2128")
	BorderDark = lipgloss.Color("#30363D")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextBright).
			Background(HeaderBg).
			Padding(0, 2).
			Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDark).
			Foreground(Text).
			Padding(0, 1)

	FocusedPanelStyle = PanelStyle.
				BorderForeground(Primary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Width(8)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextBright).
			Bold(true)

	ResultStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	CursorStyle = lipgloss.NewStyle().
			Reverse(true)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Faint(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)
)
