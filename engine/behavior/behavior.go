// Package behavior evaluates enemy AI decision trees. A tree resolves
// to a single BehaviorAction per turn; a nil result means the caller
// falls back to a plain attack.
package behavior

import (
	"github.com/seika-games/modcore/engine/rng"
	"github.com/seika-games/modcore/engine/rules"
	"github.com/seika-games/modcore/engine/stats"
	"github.com/seika-games/modcore/types"
)

// Evaluate walks the tree and returns the selected action, or nil when
// no branch applies.
func Evaluate(node *types.BehaviorNode, p *types.Player, enemy *types.EnemyInstance, r *rng.RNG) *types.BehaviorAction {
	if node == nil {
		return nil
	}
	if !conditionsMet(node.Conditions, p, enemy) {
		return nil
	}

	switch node.Type {
	case "priority_selector":
		for _, child := range node.Children {
			if act := Evaluate(child, p, enemy, r); act != nil {
				return act
			}
		}
		return nil

	case "sequence":
		if node.Action != nil {
			return node.Action
		}
		for _, child := range node.Children {
			if act := Evaluate(child, p, enemy, r); act != nil {
				return act
			}
		}
		return nil

	case "weighted_random":
		return pickWeighted(node.Options, r)

	default:
		// A leaf carries its action directly.
		return node.Action
	}
}

func pickWeighted(opts []types.BehaviorOption, r *rng.RNG) *types.BehaviorAction {
	if len(opts) == 0 {
		return nil
	}
	total := 0
	weights := make([]int, len(opts))
	for i, opt := range opts {
		weights[i] = opt.Weight
		total += opt.Weight
	}
	// All weights zero means no option is eligible this turn.
	if total <= 0 {
		return nil
	}
	return opts[r.WeightedIndex(weights)].Action
}

func conditionsMet(conds []types.BehaviorCondition, p *types.Player, enemy *types.EnemyInstance) bool {
	for _, cond := range conds {
		if !checkCondition(cond, p, enemy) {
			return false
		}
	}
	return true
}

func checkCondition(cond types.BehaviorCondition, p *types.Player, enemy *types.EnemyInstance) bool {
	switch cond.Type {
	case "check_player_stat":
		return rules.Compare(stats.Get(p, cond.Stat), cond.Operator, cond.Value)
	case "check_self_stat":
		return rules.Compare(selfStat(enemy, cond.Stat), cond.Operator, cond.Value)
	case "cooldown_ready":
		return enemy.Cooldowns[cond.Skill] <= 0
	}
	// Unknown condition kinds fail open.
	return true
}

func selfStat(enemy *types.EnemyInstance, stat string) int {
	switch stat {
	case "hp":
		return enemy.HP
	case "atk":
		return enemy.Def.Stats.Atk
	case "defense":
		return enemy.Def.Stats.Defense
	case "matk":
		return enemy.Def.Stats.Matk
	case "initiative":
		return enemy.Def.Stats.Initiative
	}
	return 0
}
