package style

import "github.com/charmbracelet/lipgloss"

var (
	Primary = lipgloss.Color("#2563EB")
	Green   = lipgloss.Color("#10B981")
	Red     = lipgloss.Color("#EF4444")
	Yellow  = lipgloss.Color("#F59E0B")
	Dim     = lipgloss.Color("#6B7280")
	White   = lipgloss.Color("#F9FAFB")

	Banner = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Dim).
			Italic(true)

	Bold    = lipgloss.NewStyle().Bold(true).Foreground(White)
	Up      = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Down    = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(Yellow)
	DimText = lipgloss.NewStyle().Foreground(Dim)

	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(Dim).
			PaddingRight(2)

	SuccessBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Foreground(Green).
			Padding(0, 1)

	ErrorBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Foreground(Red).
			Padding(0, 1)

	Key = lipgloss.NewStyle().Foreground(Dim).Width(16)
	Val = lipgloss.NewStyle().Foreground(White)
)

// Dot renders a colored status marker for up, down or unknown.
func Dot(status string) string {
	switch status {
	case "up":
		return Up.Render("●")
	case "down":
		return Down.Render("●")
	default:
		return DimText.Render("●")
	}
}

// Status renders the status word in its color.
func Status(status string) string {
	switch status {
	case "up":
		return Up.Render(status)
	case "down":
		return Down.Render(status)
	default:
		return DimText.Render(status)
	}
}

// Uptime colors a percentage green, yellow or red.
func Uptime(pct float64, text string) string {
	switch {
	case pct >= 99.9:
		return Up.Render(text)
	case pct >= 99:
		return Warning.Render(text)
	default:
		return Down.Render(text)
	}
}

func KV(k, v string) string {
	return Key.Render(k) + Val.Render(v)
}
