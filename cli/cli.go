// Package cli provides terminal I/O, numbered-menu dispatch, and
// meta-command handling for the modcore engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/seika-games/modcore/engine"
	"github.com/seika-games/modcore/engine/battle"
	"github.com/seika-games/modcore/engine/effects"
	"github.com/seika-games/modcore/engine/save"
	"github.com/seika-games/modcore/engine/state"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	EchoInput bool // echo each input line after the prompt (for script playback)

	scanner *bufio.Scanner
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".modcore", "saves")
	return &CLI{
		Engine:  eng,
		Defs:    defs,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: saveDir,
	}
}

// Run starts the game loop: intro, then menu → input → dispatch → output.
func (c *CLI) Run() {
	c.scanner = bufio.NewScanner(c.In)

	c.printResult(c.Engine.Start())

	for {
		entries := c.Engine.AvailableActions()
		c.printMenu(entries)

		input, ok := c.readLine("> ")
		if !ok {
			return
		}
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(entries) {
			c.printSystem("Pick a number from the menu, or /help.")
			continue
		}
		entry := entries[idx-1]

		arg := ""
		switch entry.ID {
		case battle.ActionSpell:
			arg, ok = c.selectSpell()
		case battle.ActionItem:
			arg, ok = c.selectItem()
		}
		if !ok {
			continue
		}

		result, err := c.Engine.ExecuteAction(entry.ID, arg)
		if err != nil {
			c.printSystem(err.Error())
			continue
		}
		c.printResult(result)
	}
}

func (c *CLI) printMenu(entries []engine.MenuEntry) {
	if len(entries) == 0 {
		return
	}
	c.printLine("")
	for i, entry := range entries {
		if entry.Description != "" {
			c.printLine(fmt.Sprintf("  %d. %s — %s", i+1, entry.Label, entry.Description))
		} else {
			c.printLine(fmt.Sprintf("  %d. %s", i+1, entry.Label))
		}
	}
}

// selectSpell prompts for one of the player's known spells.
func (c *CLI) selectSpell() (string, bool) {
	known := c.Engine.State.Player.Spells
	if len(known) == 0 {
		c.printSystem("You don't know any spells.")
		return "", false
	}
	for i, id := range known {
		if spell, ok := c.Defs.Spells[id]; ok {
			c.printLine(fmt.Sprintf("  %d. %s (%s)", i+1, spell.Name, costString(spell.Cost)))
		} else {
			c.printLine(fmt.Sprintf("  %d. %s", i+1, id))
		}
	}
	return c.pickID(known)
}

// selectItem prompts for a usable inventory item.
func (c *CLI) selectItem() (string, bool) {
	var ids []string
	for id := range c.Engine.State.Player.Inventory {
		if _, ok := c.Defs.Items[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		c.printSystem("You have nothing usable.")
		return "", false
	}
	sort.Strings(ids)
	for i, id := range ids {
		item := c.Defs.Items[id]
		c.printLine(fmt.Sprintf("  %d. %s x%d", i+1, item.Name, c.Engine.State.Player.Inventory[id]))
	}
	return c.pickID(ids)
}

func (c *CLI) pickID(ids []string) (string, bool) {
	input, ok := c.readLine("which> ")
	if !ok || input == "" {
		return "", false
	}
	idx, err := strconv.Atoi(input)
	if err != nil || idx < 1 || idx > len(ids) {
		c.printSystem("Never mind.")
		return "", false
	}
	return ids[idx-1], true
}

func (c *CLI) readLine(prompt string) (string, bool) {
	c.print(prompt)
	if !c.scanner.Scan() {
		return "", false
	}
	input := strings.TrimSpace(c.scanner.Text())
	if c.EchoInput && input != "" {
		c.printLine(input)
	}
	return input, true
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/status":
		c.cmdStatus()

	case "/help":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if c.Engine.State.InBattle {
		c.printSystem("You can't save in the middle of a fight.")
		return
	}
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Engine.State, c.Defs)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	save.ApplySave(c.Engine.State, sd)
	c.Engine.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	c.printSystem(fmt.Sprintf("Game loaded from %s.", name))

	// A save taken mid-bind re-enters the sequence at the saved stage.
	if c.Engine.State.InBind {
		res := c.Engine.ResumeBind()
		for _, m := range res.Messages {
			c.printLine(m)
		}
		return
	}

	// Re-describe the current location.
	if node, ok := c.Defs.Nodes[sd.CurrentNode]; ok {
		c.printLine(fmt.Sprintf("【%s】", node.Metadata.DisplayName))
		if st, ok := node.States[state.NodeState(c.Engine.State, node)]; ok {
			c.printLine(st.Description)
		}
	}
}

func (c *CLI) cmdStatus() {
	p := &c.Engine.State.Player
	cb := p.Combat
	c.printSystem(fmt.Sprintf("SP %d/%d  HP %d/%d  MP %d/%d  PT %d/%d",
		cb.SP, cb.SPMax, cb.HP, cb.HPMax, cb.MP, cb.MPMax, cb.PT, cb.PTMax))
	ab := p.Ability
	c.printSystem(fmt.Sprintf("Sanity %d  Strength %d  Focus %d  Intelligence %d  Knowledge %d  Dexterity %d",
		ab.Sanity, ab.Strength, ab.Focus, ab.Intelligence, ab.Knowledge, ab.Dexterity))
	if len(p.Inventory) > 0 {
		c.printSystem(fmt.Sprintf("Inventory: %v", p.Inventory))
	}
	for _, st := range p.Statuses {
		c.printSystem(fmt.Sprintf("Status: %s (%d turns)", st.Name, st.RemainingTurns))
	}
	for _, b := range p.Brands {
		c.printSystem(fmt.Sprintf("Brand: %s (-%d%% attack)", b.EnemyName, int(b.DebuffRatio*100)))
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]   — Save game (default: quicksave)",
		"  /load [name]   — Load game (default: quicksave)",
		"  /status        — Show player condition",
		"  /quit          — Exit game",
		"  /help          — Show this help",
		"",
		"Pick actions by number from the menu.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printResult(result *effects.Result) {
	for _, line := range result.Messages {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

func costString(cost map[string]int) string {
	if len(cost) == 0 {
		return "free"
	}
	var parts []string
	keys := make([]string, 0, len(cost))
	for k := range cost {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", cost[k], strings.ToUpper(k)))
	}
	return strings.Join(parts, ", ")
}

