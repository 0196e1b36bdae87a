// Package stats resolves stat identifiers and applies clamped reads and
// writes to the player. All bilingual aliasing is handled here, at the
// boundary, so the rest of the engine only ever sees canonical names.
package stats

import "github.com/seika-games/modcore/types"

// Canonical stat identifiers.
const (
	SP    = "sp"
	SPMax = "sp_max"
	HP    = "hp"
	HPMax = "hp_max"
	MP    = "mp"
	MPMax = "mp_max"
	PT    = "pt"
	PTMax = "pt_max"

	Sanity       = "sanity"
	Strength     = "strength"
	Focus        = "focus"
	Intelligence = "intelligence"
	Knowledge    = "knowledge"
	Dexterity    = "dexterity"
)

// aliases maps every accepted stat token to its canonical identifier.
// Definitions may use Japanese ability names or upper-case combat names.
var aliases = map[string]string{
	"正気": Sanity,
	"筋力": Strength,
	"集中": Focus,
	"知性": Intelligence,
	"知識": Knowledge,
	"器用": Dexterity,
	"SP": SP,
	"HP": HP,
	"MP": MP,
	"PT": PT,
}

// Canon maps a stat token to its canonical identifier. Unknown tokens
// pass through unchanged and resolve to zero-value behavior downstream.
func Canon(stat string) string {
	if c, ok := aliases[stat]; ok {
		return c
	}
	return stat
}

// Get returns the player's value for a stat token. Unknown stats read
// as 0, a permissive default rather than an error.
func Get(p *types.Player, stat string) int {
	switch Canon(stat) {
	case SP:
		return p.Combat.SP
	case SPMax:
		return p.Combat.SPMax
	case HP:
		return p.Combat.HP
	case HPMax:
		return p.Combat.HPMax
	case MP:
		return p.Combat.MP
	case MPMax:
		return p.Combat.MPMax
	case PT:
		return p.Combat.PT
	case PTMax:
		return p.Combat.PTMax
	case Sanity:
		return p.Ability.Sanity
	case Strength:
		return p.Ability.Strength
	case Focus:
		return p.Ability.Focus
	case Intelligence:
		return p.Ability.Intelligence
	case Knowledge:
		return p.Ability.Knowledge
	case Dexterity:
		return p.Ability.Dexterity
	}
	return 0
}

// Set writes a stat value with clamping: combat stats to [0, their max],
// ability stats to [0, 100]. Unknown stats are a no-op.
func Set(p *types.Player, stat string, value int) {
	switch Canon(stat) {
	case SP:
		p.Combat.SP = clamp(value, 0, p.Combat.SPMax)
	case HP:
		p.Combat.HP = clamp(value, 0, p.Combat.HPMax)
	case MP:
		p.Combat.MP = clamp(value, 0, p.Combat.MPMax)
	case PT:
		p.Combat.PT = clamp(value, 0, p.Combat.PTMax)
	case Sanity:
		p.Ability.Sanity = clamp(value, 0, 100)
	case Strength:
		p.Ability.Strength = clamp(value, 0, 100)
	case Focus:
		p.Ability.Focus = clamp(value, 0, 100)
	case Intelligence:
		p.Ability.Intelligence = clamp(value, 0, 100)
	case Knowledge:
		p.Ability.Knowledge = clamp(value, 0, 100)
	case Dexterity:
		p.Ability.Dexterity = clamp(value, 0, 100)
	}
}

// Modify applies an arithmetic operator to a stat and writes the result
// through Set. Integer division; divide-by-zero and unknown operators
// leave the stat unchanged.
func Modify(p *types.Player, stat, operator string, value int) {
	current := Get(p, stat)
	next := current
	switch operator {
	case "+":
		next = current + value
	case "-":
		next = current - value
	case "=":
		next = value
	case "*":
		next = current * value
	case "/":
		if value != 0 {
			next = current / value
		}
	}
	Set(p, stat, next)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
