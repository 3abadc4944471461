package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	white = lipgloss.Color("#FFFFFF")
	blue  = lipgloss.Color("#007AFF")
	green = lipgloss.Color("#34C759")
	dim   = lipgloss.Color("#6B7280")
	red   = lipgloss.Color("#EF4444")

	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	buttonStyle = lipgloss.NewStyle().Foreground(white).Padding(0, 2).MarginBottom(1)
	keyStyle    = lipgloss.NewStyle().Foreground(dim)
	statusStyle = lipgloss.NewStyle().Foreground(dim).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(red)
)

const title = "Push Notifications in Go"

// button is one tappable action of the view.
type button struct {
	key   string
	label string
	color lipgloss.Color
}

var buttons = []button{
	{key: "p", label: "Request Permission", color: blue},
	{key: "s", label: "Send Local Notification", color: green},
}

// viewState is what the shell shows under the buttons.
type viewState struct {
	status string
	err    error
	prompt string
}

// renderView draws the title, the two buttons and the current status.
func renderView(state viewState) string {
	var rows []string
	rows = append(rows, titleStyle.Render(title))
	for _, b := range buttons {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
			keyStyle.Render(fmt.Sprintf("[%s] ", b.key)),
			buttonStyle.Background(b.color).Render(b.label),
		))
	}
	rows = append(rows, keyStyle.Render("[i] Status  [q] Quit"))

	if state.status != "" {
		rows = append(rows, "", statusStyle.Render(state.status))
	}
	if state.err != nil {
		rows = append(rows, errorStyle.Render(state.err.Error()))
	}
	if state.prompt != "" {
		rows = append(rows, "", state.prompt)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

func describeGranted(granted bool) string {
	if granted {
		return "Notifications allowed."
	}
	return "Notifications not allowed."
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	return strings.TrimSpace(s)
}
