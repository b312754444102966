package shared

import (
	"github.com/charmbracelet/lipgloss"
)

// CLI style colors using lipgloss
var (
	// StatusOK styles success indicators
	StatusOK = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // green

	// StatusWarn styles warning indicators
	StatusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange

	// StatusError styles error indicators
	StatusError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red

	// Muted styles secondary/less important text
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray

	// Bold styles emphasized text
	Bold = lipgloss.NewStyle().Bold(true)

	// DiffAdd styles added diff lines
	DiffAdd = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	// DiffRemove styles removed diff lines
	DiffRemove = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// DiffHunk styles hunk headers
	DiffHunk = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// Symbols for status indicators
const (
	SymbolOK    = "✓"
	SymbolWarn  = "⚠"
	SymbolError = "✗"
)

// RenderOK renders a success message with green checkmark
func RenderOK(msg string) string {
	return StatusOK.Render(SymbolOK) + " " + msg
}

// RenderWarn renders a warning message with orange symbol
func RenderWarn(msg string) string {
	return StatusWarn.Render(SymbolWarn) + " " + msg
}

// RenderError renders an error message with red X
func RenderError(msg string) string {
	return StatusError.Render(SymbolError) + " " + msg
}

// RenderDiffLine colors one preview line by its prefix.
func RenderDiffLine(line string) string {
	if line == "" {
		return line
	}
	switch line[0] {
	case '+':
		return DiffAdd.Render(line)
	case '-':
		return DiffRemove.Render(line)
	case '@':
		return DiffHunk.Render(line)
	default:
		return line
	}
}
