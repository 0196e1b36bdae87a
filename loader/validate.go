package loader

import (
	"errors"
	"fmt"

	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/types"
)

// Validate checks every cross-reference in the definition set. All
// problems are reported together rather than one at a time.
func Validate(defs *state.Defs) error {
	v := &validator{defs: defs}

	if _, ok := defs.Nodes[defs.Mod.EntryPoint]; !ok {
		v.errorf("mod.entry_point: unknown node %q", defs.Mod.EntryPoint)
	}

	for id, node := range defs.Nodes {
		v.checkNode(id, node)
	}
	for id, enemy := range defs.Enemies {
		v.checkEnemy(id, enemy)
	}
	for id, seq := range defs.Sequences {
		v.checkSequence(id, seq)
	}
	for id, spell := range defs.Spells {
		for i, eff := range spell.Effects {
			if eff.Type == "inflict_status" {
				v.requireStatus(eff.Status, fmt.Sprintf("spells.%s.effects[%d]", id, i))
			}
		}
	}
	for id, item := range defs.Items {
		v.checkEffects(item.Effects, fmt.Sprintf("items.%s.effects", id))
	}

	return errors.Join(v.errs...)
}

type validator struct {
	defs *state.Defs
	errs []error
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) checkNode(id string, node *types.Node) {
	if len(node.States) == 0 {
		v.errorf("nodes.%s: no states defined", id)
		return
	}
	if _, ok := node.States[node.InitialState]; !ok {
		v.errorf("nodes.%s: initial_state %q not among states", id, node.InitialState)
	}
	for stateName, st := range node.States {
		path := fmt.Sprintf("nodes.%s.states.%s", id, stateName)
		for _, act := range st.Actions {
			v.checkAction(act, path)
		}
	}
	for objID, obj := range node.Objects {
		if _, ok := obj.States[obj.InitialState]; !ok {
			v.errorf("nodes.%s.objects.%s: initial_state %q not among states", id, objID, obj.InitialState)
		}
		for stateName, st := range obj.States {
			path := fmt.Sprintf("nodes.%s.objects.%s.states.%s", id, objID, stateName)
			for _, act := range st.Actions {
				v.checkAction(act, path)
			}
		}
	}
}

func (v *validator) checkAction(act types.Action, path string) {
	path = fmt.Sprintf("%s.actions.%s", path, act.ID)
	if act.Type == "navigation" && act.Target != "" {
		v.requireNode(act.Target, path+".target")
	}
	v.checkEffects(act.Effects, path+".effects")
}

func (v *validator) checkEnemy(id string, enemy *types.Enemy) {
	for i, spellID := range enemy.Spells {
		v.requireSpell(spellID, fmt.Sprintf("enemies.%s.spells[%d]", id, i))
	}
	v.checkBehavior(enemy.BehaviorTree, fmt.Sprintf("enemies.%s.behavior_tree", id))
	for event, target := range enemy.Events {
		v.requireNode(target, fmt.Sprintf("enemies.%s.events.%s", id, event))
	}
	for i, drop := range enemy.Rewards.Drops {
		if itemID, ok := drop.Value.(string); ok {
			v.requireItem(itemID, fmt.Sprintf("enemies.%s.rewards.drops[%d]", id, i))
		}
	}
}

func (v *validator) checkBehavior(node *types.BehaviorNode, path string) {
	if node == nil {
		return
	}
	if node.Action != nil {
		v.checkBehaviorAction(node.Action, path)
	}
	for i, opt := range node.Options {
		if opt.Action != nil {
			v.checkBehaviorAction(opt.Action, fmt.Sprintf("%s.options[%d]", path, i))
		}
	}
	for i, child := range node.Children {
		v.checkBehavior(child, fmt.Sprintf("%s.children[%d]", path, i))
	}
}

func (v *validator) checkBehaviorAction(act *types.BehaviorAction, path string) {
	if act.Spell != "" {
		v.requireSpell(act.Spell, path+".spell")
	}
	if act.SpellPool != "" {
		v.requirePool(act.SpellPool, path+".spell_pool")
	}
	if act.Sequence != "" {
		v.requireSequence(act.Sequence, path+".sequence")
	}
}

func (v *validator) checkSequence(id string, seq *types.BindSequence) {
	if target := seq.Config.EscapeTarget; target != "" {
		v.requireNode(target, fmt.Sprintf("sequences.%s.config.escape_target", id))
	}
	for _, stage := range seq.Stages {
		path := fmt.Sprintf("sequences.%s.stages[%d]", id, stage.Stage)
		v.checkEffects(stage.LoopEffects, path+".loop_effects")
		for _, ca := range stage.CustomActions {
			caPath := fmt.Sprintf("%s.custom_actions.%s", path, ca.ID)
			for itemID := range ca.Cost {
				v.requireItem(itemID, caPath+".cost")
			}
			if ca.OnSuccess != nil {
				v.checkEffects(ca.OnSuccess.Effects, caPath+".on_success")
			}
			if ca.OnFailure != nil {
				v.checkEffects(ca.OnFailure.Effects, caPath+".on_failure")
			}
		}
	}
}

func (v *validator) checkEffects(effs []types.Effect, path string) {
	for i, eff := range effs {
		p := fmt.Sprintf("%s[%d]", path, i)
		switch eff.Type {
		case "navigation":
			v.requireNode(eff.Target, p+".target")
		case "get_item":
			v.requireItem(eff.Item, p+".item")
		case "item_roll":
			v.requirePool(eff.Pool, p+".pool")
		case "battle":
			if eff.Enemy != "" {
				v.requireEnemy(eff.Enemy, p+".enemy")
			}
			if eff.EnemyPool != "" {
				v.requirePool(eff.EnemyPool, p+".enemy_pool")
			}
		case "run_bind_sequence":
			v.requireSequence(eff.Sequence, p+".sequence")
		case "switch_bind_sequence":
			v.requireSequence(eff.Target, p+".target")
		}
	}
}

func (v *validator) requireNode(id, path string) {
	if _, ok := v.defs.Nodes[id]; !ok {
		v.errorf("%s: unknown node %q", path, id)
	}
}

func (v *validator) requireEnemy(id, path string) {
	if _, ok := v.defs.Enemies[id]; !ok {
		v.errorf("%s: unknown enemy %q", path, id)
	}
}

func (v *validator) requireSequence(id, path string) {
	if _, ok := v.defs.Sequences[id]; !ok {
		v.errorf("%s: unknown sequence %q", path, id)
	}
}

func (v *validator) requireSpell(id, path string) {
	if _, ok := v.defs.Spells[id]; !ok {
		v.errorf("%s: unknown spell %q", path, id)
	}
}

func (v *validator) requireItem(id, path string) {
	if _, ok := v.defs.Items[id]; !ok {
		v.errorf("%s: unknown item %q", path, id)
	}
}

func (v *validator) requirePool(id, path string) {
	if _, ok := v.defs.Pools[id]; !ok {
		v.errorf("%s: unknown pool %q", path, id)
	}
}

func (v *validator) requireStatus(id, path string) {
	if _, ok := v.defs.Statuses[id]; !ok {
		v.errorf("%s: unknown status %q", path, id)
	}
}
