// Package rules evaluates declarative requirement predicates against the
// game state. Unknown requirement kinds and operators fail open: content
// authoring mistakes disable a gate, they never crash a run.
package rules

import (
	"github.com/seika-games/modcore/engine/stats"
	"github.com/seika-games/modcore/types"
)

// Check evaluates a single requirement against the current state.
func Check(req types.Requirement, s *types.GameState) bool {
	switch req.Type {
	case "stat_check":
		actual := stats.Get(&s.Player, req.Stat)
		return Compare(actual, req.Operator, toInt(req.Value))

	case "flag_check":
		return flagEqual(s.Player.Flags[req.Flag], req.Value)

	case "item_check":
		count := req.Count
		if count == 0 {
			count = 1
		}
		return s.Player.Inventory[req.Item] >= count

	default:
		// Unknown requirement kind: treated as satisfied.
		return true
	}
}

// CheckAll returns true if all requirements pass (AND logic).
// An empty list is vacuously true.
func CheckAll(reqs []types.Requirement, s *types.GameState) bool {
	for _, req := range reqs {
		if !Check(req, s) {
			return false
		}
	}
	return true
}

// Compare applies one of the six comparison operators. Unknown operators
// return false.
func Compare(actual int, operator string, expected int) bool {
	switch operator {
	case "==":
		return actual == expected
	case "!=":
		return actual != expected
	case ">=":
		return actual >= expected
	case "<=":
		return actual <= expected
	case ">":
		return actual > expected
	case "<":
		return actual < expected
	}
	return false
}

// flagEqual compares a stored flag against the expected literal. YAML
// hands integers to both sides but via any, so normalize numerics first.
func flagEqual(actual, expected any) bool {
	ai, aok := asInt(actual)
	ei, eok := asInt(expected)
	if aok && eok {
		return ai == ei
	}
	return actual == expected
}

func toInt(v any) int {
	n, _ := asInt(v)
	return n
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
