package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const gaugeWidth = 8

// gauge renders a fixed-width meter like "HP ████░░░░ 40/80".
func gauge(label string, cur, max int, style lipgloss.Style) string {
	filled := 0
	if max > 0 {
		filled = cur * gaugeWidth / max
	}
	if filled < 0 {
		filled = 0
	}
	if filled > gaugeWidth {
		filled = gaugeWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", gaugeWidth-filled)
	return fmt.Sprintf("%s %s %d/%d", label, style.Render(bar), cur, max)
}

// renderStatusBar produces a full-width inverted status line showing
// the four combat meters, with the current enemy's HP during battle.
func (m Model) renderStatusBar() string {
	cb := m.engine.State.Player.Combat

	meters := []string{
		gauge("SP", cb.SP, cb.SPMax, styleGaugeSP),
		gauge("HP", cb.HP, cb.HPMax, styleGaugeHP),
		gauge("MP", cb.MP, cb.MPMax, styleGaugeMP),
		gauge("PT", cb.PT, cb.PTMax, styleGaugePT),
	}
	left := " " + strings.Join(meters, "  ")

	right := ""
	if enemy := m.engine.State.CurrentEnemy; enemy != nil && m.engine.State.InBattle {
		right = fmt.Sprintf("%s HP:%d ", enemy.Def.Name, enemy.HP)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
