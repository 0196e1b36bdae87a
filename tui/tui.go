package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/seika-games/modcore/engine"
	"github.com/seika-games/modcore/engine/battle"
	"github.com/seika-games/modcore/engine/save"
	"github.com/seika-games/modcore/engine/state"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // true for echoed player input
}

// pendingPick is an in-flight spell or item selection: the next number
// the player enters resolves against ids instead of the action menu.
type pendingPick struct {
	actionID string
	ids      []string
}

// Model is the Bubble Tea model for the modcore TUI.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs

	viewport viewport.Model
	input    textinput.Model
	history  *history

	rawLines []rawLine
	entries  []engine.MenuEntry
	pending  *pendingPick

	width    int
	height   int
	ready    bool
	quitting bool
	saveDir  string
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 64
	ti.PromptStyle = styleInputPrompt

	home, _ := os.UserHomeDir()
	return Model{
		engine:  eng,
		defs:    defs,
		input:   ti,
		history: newHistory(100),
		saveDir: filepath.Join(home, ".modcore", "saves"),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs) error {
	m := New(eng, defs)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro and the
// first menu.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		res := m.engine.Start()
		return gameOutputMsg{lines: res.Messages}
	})
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string
	lines    []string
	isSystem bool
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.older(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.newer(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.add(input)

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	idx, err := strconv.Atoi(input)
	if err != nil {
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{"Pick a number from the menu, or /help."}, isSystem: true})
		return m, nil
	}

	if m.pending != nil {
		return m.resolvePending(input, idx)
	}

	if idx < 1 || idx > len(m.entries) {
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{"That's not on the menu."}, isSystem: true})
		return m, nil
	}
	entry := m.entries[idx-1]

	switch entry.ID {
	case battle.ActionSpell:
		return m.beginPick(input, entry.ID, m.spellChoices())
	case battle.ActionItem:
		return m.beginPick(input, entry.ID, m.itemChoices())
	}

	return m.execute(input, entry.ID, "")
}

func (m Model) execute(input, id, arg string) (tea.Model, tea.Cmd) {
	res, err := m.engine.ExecuteAction(id, arg)
	if err != nil {
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{err.Error()}, isSystem: true})
		return m, nil
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: res.Messages})
	return m, nil
}

// beginPick shows a numbered sub-menu for spells or items.
func (m Model) beginPick(input, actionID string, ids []string) (tea.Model, tea.Cmd) {
	if len(ids) == 0 {
		msg := "You don't know any spells."
		if actionID == battle.ActionItem {
			msg = "You have nothing usable."
		}
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{msg}, isSystem: true})
		return m, nil
	}
	lines := make([]string, 0, len(ids))
	for i, id := range ids {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, m.pickLabel(actionID, id)))
	}
	m.pending = &pendingPick{actionID: actionID, ids: ids}
	m = m.appendOutput(gameOutputMsg{input: input, lines: lines})
	return m, nil
}

func (m Model) resolvePending(input string, idx int) (tea.Model, tea.Cmd) {
	pick := m.pending
	m.pending = nil
	if idx < 1 || idx > len(pick.ids) {
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{"Never mind."}, isSystem: true})
		return m, nil
	}
	return m.execute(input, pick.actionID, pick.ids[idx-1])
}

func (m Model) spellChoices() []string {
	return m.engine.State.Player.Spells
}

func (m Model) itemChoices() []string {
	var ids []string
	for id := range m.engine.State.Player.Inventory {
		if _, ok := m.defs.Items[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (m Model) pickLabel(actionID, id string) string {
	if actionID == battle.ActionSpell {
		if spell, ok := m.defs.Spells[id]; ok {
			return spell.Name
		}
		return id
	}
	if item, ok := m.defs.Items[id]; ok {
		return fmt.Sprintf("%s x%d", item.Name, m.engine.State.Player.Inventory[id])
	}
	return id
}

// appendOutput adds lines to the narrative, refreshes the menu, and
// scrolls the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, line := range msg.lines {
		rl := rawLine{text: line}
		if msg.isSystem {
			rl.kind = kindSystem
		} else {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Menu for the new mode, unless a sub-selection is pending.
	if m.pending == nil {
		m.entries = m.engine.AvailableActions()
		for i, entry := range m.entries {
			label := entry.Label
			if entry.Description != "" {
				label += " — " + entry.Description
			}
			m.rawLines = append(m.rawLines, rawLine{text: fmt.Sprintf("  %d. %s", i+1, label), kind: kindMenu})
		}
	}

	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current
// width and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		if rl.isInput {
			styled = append(styled, stylePlayerInput.Render(wrapped))
		} else {
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text at word boundaries to fit the given width.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0
	for i, word := range words {
		wLen := len([]rune(word))
		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}
		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}
	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/save":
		return m.cmdSave(arg), false
	case "/load":
		return m.cmdLoad(arg), false
	case "/status":
		return m.cmdStatus(), false
	case "/help":
		return m.cmdHelp(), false
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if m.engine.State.InBattle {
		return []string{"You can't save in the middle of a fight."}
	}
	if name == "" {
		name = "quicksave"
	}
	data, err := save.Save(m.engine.State, m.defs)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	save.ApplySave(m.engine.State, sd)
	m.engine.RestoreRNG(sd.RNGSeed, sd.RNGPosition)

	output := []string{fmt.Sprintf("Game loaded from %s.", name)}

	// A save taken mid-bind re-enters the sequence at the saved stage.
	if m.engine.State.InBind {
		return append(output, m.engine.ResumeBind().Messages...)
	}

	if node, ok := m.defs.Nodes[sd.CurrentNode]; ok {
		output = append(output, fmt.Sprintf("【%s】", node.Metadata.DisplayName))
		if st, ok := node.States[state.NodeState(m.engine.State, node)]; ok {
			output = append(output, st.Description)
		}
	}
	return output
}

func (m *Model) cmdStatus() []string {
	p := &m.engine.State.Player
	cb := p.Combat
	ab := p.Ability
	output := []string{
		fmt.Sprintf("SP %d/%d  HP %d/%d  MP %d/%d  PT %d/%d",
			cb.SP, cb.SPMax, cb.HP, cb.HPMax, cb.MP, cb.MPMax, cb.PT, cb.PTMax),
		fmt.Sprintf("Sanity %d  Strength %d  Focus %d  Intelligence %d  Knowledge %d  Dexterity %d",
			ab.Sanity, ab.Strength, ab.Focus, ab.Intelligence, ab.Knowledge, ab.Dexterity),
	}
	for _, st := range p.Statuses {
		output = append(output, fmt.Sprintf("Status: %s (%d turns)", st.Name, st.RemainingTurns))
	}
	for _, b := range p.Brands {
		output = append(output, fmt.Sprintf("Brand: %s (-%d%% attack)", b.EnemyName, int(b.DebuffRatio*100)))
	}
	return output
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]   — Save game (default: quicksave)",
		"  /load [name]   — Load game (default: quicksave)",
		"  /status        — Show player condition",
		"  /quit          — Exit game",
		"  /help          — Show this help",
		"",
		"Pick actions by number from the menu.",
		"Navigation: PgUp/PgDn to scroll, Up/Down for input history",
	}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
