package console

import "github.com/charmbracelet/lipgloss"

// One Dark палитра
var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")

	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")

	ColorBorder = lipgloss.Color("#3F4451")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true).
			PaddingLeft(1)

	ProgressStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	OutputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	InterviewerStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(ColorBlue).
				Foreground(ColorFgPrimary).
				PaddingLeft(1)

	CandidateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorMagenta).
			Foreground(ColorMagenta).
			PaddingLeft(1)

	SystemStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Italic(true).
			PaddingLeft(2)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			PaddingLeft(2)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorMagenta).
				Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)
)
