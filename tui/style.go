package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("215"))

	styleMenu = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleDanger = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleBind = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleGaugeSP = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	styleGaugeHP = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleGaugeMP = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	styleGaugePT = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindHeader
	kindMenu
	kindSystem
	kindDanger
	kindBind
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "【") && strings.HasSuffix(line, "】"):
		return kindHeader
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You take"),
		strings.HasPrefix(line, "You collapse"),
		strings.HasPrefix(line, "Game over"):
		return kindDanger
	case strings.HasPrefix(line, "Pleasure rises"),
		strings.Contains(line, "climax"):
		return kindBind
	default:
		return kindNarrative
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindHeader:
		return styleHeader.Render(line)
	case kindMenu:
		return styleMenu.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindDanger:
		return styleDanger.Render(line)
	case kindBind:
		return styleBind.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}