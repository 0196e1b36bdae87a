// Modcore is a data-driven rule interpreter for mod-defined adventure
// games: node exploration, turn-based battles, and bind sequences.
// Usage: modcore [--version] [--plain] [--seed <n>] [--script <file>] <mod_directory>
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/seika-games/modcore/cli"
	"github.com/seika-games/modcore/engine"
	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/loader"
	"github.com/seika-games/modcore/plugin"
	"github.com/seika-games/modcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	var modDir string
	var scriptFile string
	var seed int64

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("modcore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--seed requires a number\n")
				os.Exit(1)
			}
			i++
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				os.Exit(1)
			}
			seed = n
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			if modDir == "" {
				modDir = args[i]
			}
		}
	}

	if modDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: modcore [--version] [--plain] [--seed <n>] [--script <file>] <mod_directory>\n")
		os.Exit(1)
	}

	// Load and validate the mod content.
	loaded, err := loader.LoadMod(modDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading mod: %v\n", err)
		os.Exit(1)
	}
	defs := loaded.Defs

	eng := engine.New(defs, seed)
	applyStartingKit(eng, loaded)

	// Lua plugins extend the effect catalog.
	host := plugin.NewHost()
	defer host.Close()
	if err := host.LoadDir(modDir + "/plugins"); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading plugins: %v\n", err)
		os.Exit(1)
	}
	for kind, handler := range host.Handlers() {
		eng.RegisterEffectHandler(kind, handler)
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng, defs)
		c.In = f
		c.EchoInput = true
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng, defs)
		c.Run()
		return
	}

	if err := tui.Run(eng, defs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyStartingKit grants the mod's declared starting spells and items.
func applyStartingKit(eng *engine.Engine, loaded *loader.LoadedMod) {
	eng.State.Player.Spells = append(eng.State.Player.Spells, loaded.StartingSpells...)
	for id, count := range loaded.StartingItems {
		state.AddItem(eng.State, id, count)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
