package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#7D56F4") // Purple - brand color
	Secondary = lipgloss.Color("#00D4AA") // Cyan/Teal

	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")

	// HTTP status code colors
	Status2xx = lipgloss.Color("#00D26A") // Green
	Status3xx = lipgloss.Color("#4D96FF") // Blue
	Status4xx = lipgloss.Color("#FFD93D") // Yellow
	Status5xx = lipgloss.Color("#FF3838") // Red
)

// Pre-configured styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(20)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA"))

	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	BracketStyle = lipgloss.NewStyle().
			Foreground(Muted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Primary)

	URLStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	WildcardStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)
)

// StatusCodeStyle returns the style for an HTTP status code.
func StatusCodeStyle(code int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case code >= 500:
		return base.Foreground(Status5xx)
	case code >= 400:
		return base.Foreground(Status4xx)
	case code >= 300:
		return base.Foreground(Status3xx)
	case code >= 200:
		return base.Foreground(Status2xx)
	default:
		return base.Foreground(Muted)
	}
}
