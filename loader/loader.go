// Package loader reads a mod directory (mod.yaml plus per-kind data
// files) into an immutable definition set and validates every
// cross-reference before the engine sees it.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/types"
)

// manifest is the mod.yaml layout: the mod header plus optional
// starting-stat overrides.
type manifest struct {
	types.ModInfo `yaml:",inline"`
	Player        *playerOverrides `yaml:"player,omitempty"`
}

type playerOverrides struct {
	Combat  *types.CombatStats  `yaml:"combat_stats,omitempty"`
	Ability *types.AbilityStats `yaml:"ability_stats,omitempty"`
	Spells  []string            `yaml:"spells,omitempty"`
	Items   map[string]int      `yaml:"items,omitempty"`
}

// LoadedMod is the result of loading a mod directory. The starting
// spells and items come from mod.yaml and are applied by the caller
// after state creation.
type LoadedMod struct {
	Defs           *state.Defs
	StartingSpells []string
	StartingItems  map[string]int
}

// LoadMod reads and validates a mod directory.
func LoadMod(dir string) (*LoadedMod, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "mod.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loader: reading mod.yaml: %w", err)
	}
	var mf manifest
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("loader: parsing mod.yaml: %w", err)
	}
	if mf.ID == "" {
		return nil, fmt.Errorf("loader: mod.yaml: missing id")
	}
	if mf.EntryPoint == "" {
		return nil, fmt.Errorf("loader: mod.yaml: missing entry_point")
	}

	defs := &state.Defs{
		Mod:       mf.ModInfo,
		Nodes:     map[string]*types.Node{},
		Enemies:   map[string]*types.Enemy{},
		Sequences: map[string]*types.BindSequence{},
		Spells:    map[string]*types.Spell{},
		Items:     map[string]*types.Item{},
		Pools:     map[string]*types.ItemPool{},
		Statuses:  map[string]*types.StatusEffect{},
	}
	loaded := &LoadedMod{Defs: defs}
	if mf.Player != nil {
		defs.PlayerCombat = mf.Player.Combat
		defs.PlayerAbility = mf.Player.Ability
		loaded.StartingSpells = mf.Player.Spells
		loaded.StartingItems = mf.Player.Items
	}

	if err := loadKind(dir, "nodes", defs.Nodes, func(n *types.Node) string { return n.ID }); err != nil {
		return nil, err
	}
	if err := loadKind(dir, "enemies", defs.Enemies, func(e *types.Enemy) string { return e.ID }); err != nil {
		return nil, err
	}
	if err := loadKind(dir, "sequences", defs.Sequences, func(s *types.BindSequence) string { return s.ID }); err != nil {
		return nil, err
	}
	if err := loadKind(dir, "spells", defs.Spells, func(s *types.Spell) string { return s.ID }); err != nil {
		return nil, err
	}
	if err := loadKind(dir, "items", defs.Items, func(i *types.Item) string { return i.ID }); err != nil {
		return nil, err
	}
	if err := loadKind(dir, "pools", defs.Pools, func(p *types.ItemPool) string { return p.ID }); err != nil {
		return nil, err
	}
	if err := loadKind(dir, "statuses", defs.Statuses, func(s *types.StatusEffect) string { return s.ID }); err != nil {
		return nil, err
	}

	normalize(defs)
	if err := Validate(defs); err != nil {
		return nil, err
	}
	return loaded, nil
}

// loadKind reads every YAML file under data/<kind>/ into the target
// map. A file may hold a single definition or a list of them.
func loadKind[T any](dir, kind string, target map[string]*T, idOf func(*T) string) error {
	root := filepath.Join(dir, "data", kind)
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loader: reading %s: %w", root, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isYAML(name) {
			continue
		}
		path := filepath.Join(root, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("loader: reading %s: %w", path, err)
		}
		defs, err := decodeOneOrMany[T](raw)
		if err != nil {
			return fmt.Errorf("loader: parsing %s: %w", path, err)
		}
		for _, def := range defs {
			id := idOf(def)
			if id == "" {
				return fmt.Errorf("loader: %s: definition missing id", path)
			}
			if _, dup := target[id]; dup {
				return fmt.Errorf("loader: %s: duplicate %s id %q", path, strings.TrimSuffix(kind, "s"), id)
			}
			target[id] = def
		}
	}
	return nil
}

func decodeOneOrMany[T any](raw []byte) ([]*T, error) {
	var many []*T
	if err := yaml.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	var one T
	if err := yaml.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []*T{&one}, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// normalize fills defaulted fields content is allowed to omit.
func normalize(defs *state.Defs) {
	for _, node := range defs.Nodes {
		if node.InitialState == "" {
			if _, ok := node.States["default"]; ok {
				node.InitialState = "default"
			}
		}
		for _, obj := range node.Objects {
			if obj.InitialState == "" {
				if _, ok := obj.States["default"]; ok {
					obj.InitialState = "default"
				}
			}
		}
	}
}
