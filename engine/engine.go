// Package engine wires the node graph, effect interpreter, battle
// system, and bind system into a single menu-driven game loop. The
// front ends only ever call AvailableActions and ExecuteAction.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/seika-games/modcore/engine/battle"
	"github.com/seika-games/modcore/engine/bind"
	"github.com/seika-games/modcore/engine/effects"
	"github.com/seika-games/modcore/engine/rng"
	"github.com/seika-games/modcore/engine/rules"
	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/types"
)

// Mode identifies which subsystem currently owns the player's input.
type Mode string

const (
	ModeExploration Mode = "exploration"
	ModeBattle      Mode = "battle"
	ModeBind        Mode = "bind"
	ModeOver        Mode = "over"
)

// MenuEntry is one selectable option presented to the player.
type MenuEntry struct {
	ID          string
	Label       string
	Description string
}

// Engine holds the game definitions, mutable state, and subsystems.
type Engine struct {
	Defs   *state.Defs
	State  *types.GameState
	RNG    *rng.RNG
	Interp *effects.Interpreter
	Battle *battle.System
	Bind   *bind.System
}

// New creates an engine from definitions. A zero seed picks one from
// the clock.
func New(defs *state.Defs, seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := state.NewState(defs)
	s.RNGSeed = seed
	r := rng.New(seed)
	interp := effects.New(s, defs, r)
	return &Engine{
		Defs:   defs,
		State:  s,
		RNG:    r,
		Interp: interp,
		Battle: battle.NewSystem(s, defs, r, interp),
		Bind:   bind.NewSystem(s, defs, r, interp),
	}
}

// RestoreRNG re-creates the RNG from seed and advances to the saved
// position, then rebinds every subsystem to it.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = rng.Restore(seed, position)
	e.Interp = effects.New(e.State, e.Defs, e.RNG)
	e.Battle = battle.NewSystem(e.State, e.Defs, e.RNG, e.Interp)
	e.Bind = bind.NewSystem(e.State, e.Defs, e.RNG, e.Interp)
}

// ResumeBind re-enters the bind sequence recorded in a loaded save, so
// the bind system owns input again at the saved stage. Flags pointing
// at a sequence the current mod no longer defines are cleared.
func (e *Engine) ResumeBind() *effects.Result {
	res := effects.NewResult()
	if !e.State.InBind || e.State.BindSequence == "" {
		e.State.InBind = false
		return res
	}
	sub, err := e.Bind.StartSequence(e.State.BindSequence, e.State.BindStage)
	if err != nil {
		e.State.InBind = false
		e.State.BindSequence = ""
		e.State.BindStage = 0
		res.AddMessage(err.Error())
		return res
	}
	res.Messages = append(res.Messages, sub.Messages...)
	return res
}

// RegisterEffectHandler binds an externally provided effect handler.
func (e *Engine) RegisterEffectHandler(kind string, h effects.Handler) {
	e.Interp.RegisterHandler(kind, h)
}

// Mode reports which subsystem currently owns input. A bind sequence
// takes priority over the battle it may have interrupted.
func (e *Engine) Mode() Mode {
	switch {
	case e.State.GameOver || e.State.GameClear:
		return ModeOver
	case e.Bind.IsActive():
		return ModeBind
	case e.Battle.IsActive():
		return ModeBattle
	default:
		return ModeExploration
	}
}

// Start begins a new game: mod intro, then entry-point arrival.
func (e *Engine) Start() *effects.Result {
	res := effects.NewResult()
	if name := e.Defs.Mod.Metadata.Name; name != "" {
		res.AddMessage(name)
	}
	if desc := e.Defs.Mod.Metadata.Description; desc != "" {
		res.AddMessage(desc)
	}
	e.navigateTo(e.Defs.Mod.EntryPoint, res)
	e.State.RNGPosition = e.RNG.Position()
	return res
}

// AvailableActions lists the current menu for the active mode.
func (e *Engine) AvailableActions() []MenuEntry {
	switch e.Mode() {
	case ModeOver:
		return nil
	case ModeBind:
		choices := e.Bind.AvailableChoices()
		entries := make([]MenuEntry, len(choices))
		for i, c := range choices {
			entries[i] = MenuEntry{ID: c.ID, Label: c.Label, Description: c.Description}
		}
		return entries
	case ModeBattle:
		return []MenuEntry{
			{ID: battle.ActionAttack, Label: "Attack"},
			{ID: battle.ActionDefend, Label: "Defend"},
			{ID: battle.ActionSpell, Label: "Cast Spell"},
			{ID: battle.ActionItem, Label: "Use Item"},
			{ID: battle.ActionEscape, Label: "Escape"},
		}
	default:
		return e.explorationActions()
	}
}

// ExecuteAction runs the menu entry with the given ID in the current
// mode. arg carries the spell or item ID for battle casts and item use.
func (e *Engine) ExecuteAction(id, arg string) (*effects.Result, error) {
	switch e.Mode() {
	case ModeOver:
		res := effects.NewResult()
		if e.State.GameClear {
			res.AddMessage("The story has reached its end.")
		} else {
			res.AddMessage("Game over. Load a save or start again.")
		}
		return res, nil
	case ModeBind:
		res, err := e.Bind.ExecuteChoice(id)
		if err != nil {
			return nil, err
		}
		e.afterBind(res)
		e.handleSignals(res)
		e.State.RNGPosition = e.RNG.Position()
		return res, nil
	case ModeBattle:
		res, err := e.Battle.ExecutePlayerAction(id, arg)
		if err != nil {
			return nil, err
		}
		e.afterBattle(res)
		e.handleSignals(res)
		e.State.RNGPosition = e.RNG.Position()
		return res, nil
	default:
		return e.executeExploration(id)
	}
}

func (e *Engine) explorationActions() []MenuEntry {
	var entries []MenuEntry
	for _, act := range e.currentActions() {
		entries = append(entries, MenuEntry{ID: act.ID, Label: act.Label, Description: act.Description})
	}
	return entries
}

// currentActions collects the node's state actions plus every object's
// state actions, requirement-filtered, in deterministic order.
func (e *Engine) currentActions() []types.Action {
	node, ok := e.Defs.Nodes[e.State.CurrentNode]
	if !ok {
		return nil
	}
	var out []types.Action
	if st, ok := node.States[state.NodeState(e.State, node)]; ok {
		for _, act := range st.Actions {
			if rules.CheckAll(act.Requirements, e.State) {
				out = append(out, act)
			}
		}
	}
	objIDs := make([]string, 0, len(node.Objects))
	for id := range node.Objects {
		objIDs = append(objIDs, id)
	}
	sort.Strings(objIDs)
	for _, id := range objIDs {
		obj := node.Objects[id]
		if st, ok := obj.States[state.ObjectState(e.State, node.ID, obj)]; ok {
			for _, act := range st.Actions {
				if rules.CheckAll(act.Requirements, e.State) {
					out = append(out, act)
				}
			}
		}
	}
	return out
}

func (e *Engine) executeExploration(id string) (*effects.Result, error) {
	for _, act := range e.currentActions() {
		if act.ID != id {
			continue
		}
		res := e.Interp.Apply(act.Effects)
		if act.Type == "navigation" && act.Target != "" && res.NavigationTarget == "" {
			res.NavigationTarget = act.Target
		}
		e.handleSignals(res)
		e.State.RNGPosition = e.RNG.Position()
		return res, nil
	}
	return nil, fmt.Errorf("engine: unknown action %q", id)
}

// handleSignals performs the transitions an effect list requested:
// navigation, battle start, bind start, and terminal states. Signals
// raised by those transitions are processed in the same pass.
func (e *Engine) handleSignals(res *effects.Result) {
	if e.State.GameOver || e.State.GameClear {
		if e.State.GameClear && res.Ending != "" {
			res.AddMessage(fmt.Sprintf("Ending: %s", res.Ending))
		}
		return
	}

	if res.BindSequence != "" {
		seqID, stage := res.BindSequence, res.BindStage
		res.BindSequence = ""
		if sub, err := e.Bind.StartSequence(seqID, stage); err == nil {
			res.Messages = append(res.Messages, sub.Messages...)
		} else {
			res.AddMessage(err.Error())
		}
		return
	}

	if res.BattleEnemy != "" || res.BattleEnemyPool != "" {
		enemy, pool := res.BattleEnemy, res.BattleEnemyPool
		res.BattleEnemy, res.BattleEnemyPool = "", ""
		var sub *effects.Result
		var err error
		if enemy != "" {
			sub, err = e.Battle.Start(enemy)
		} else {
			sub, err = e.Battle.StartFromPool(pool)
		}
		if err != nil {
			res.AddMessage(err.Error())
			return
		}
		res.Messages = append(res.Messages, sub.Messages...)
		e.afterBattle(sub)
		res.BindSequence = sub.BindSequence
		res.BindStage = sub.BindStage
		e.handleSignals(res)
		return
	}

	if res.NavigationTarget != "" && !e.State.InBattle {
		target := res.NavigationTarget
		res.NavigationTarget = ""
		e.navigateTo(target, res)
	}
}

// afterBattle reacts to a battle reaching a terminal outcome: the
// enemy's declared event navigation, or game over on an unhandled loss.
func (e *Engine) afterBattle(res *effects.Result) {
	if e.Battle.IsActive() {
		return
	}
	enemy := e.State.CurrentEnemy
	outcome := e.Battle.Outcome()
	if outcome == battle.OutcomeNone || enemy == nil {
		return
	}
	e.State.CurrentEnemy = nil

	var event string
	switch outcome {
	case battle.OutcomeWon:
		event = "on_victory"
	case battle.OutcomeLost:
		event = "on_defeat"
	case battle.OutcomeEscaped:
		event = "on_escape"
	}
	if target, ok := enemy.Def.Events[event]; ok && target != "" {
		if res.NavigationTarget == "" {
			res.NavigationTarget = target
		}
		return
	}
	if outcome == battle.OutcomeLost {
		e.State.GameOver = true
		res.AddMessage("Game over.")
	}
}

// afterBind reacts to a bind sequence ending: resume an interrupted
// battle, or resolve a defeat the sequence inflicted.
func (e *Engine) afterBind(res *effects.Result) {
	if e.Bind.IsActive() {
		return
	}
	if e.State.Player.Combat.HP <= 0 && !e.State.GameOver {
		if e.Battle.IsActive() {
			e.Battle.CheckPlayerDefeat(res)
			e.afterBattle(res)
		} else {
			e.State.GameOver = true
			res.AddMessage("You collapse...")
			res.AddMessage("Game over.")
		}
		return
	}
	if e.Battle.IsActive() && e.Bind.Escaped() {
		res.AddMessage(fmt.Sprintf("You face %s once more!", e.State.CurrentEnemy.Def.Name))
	}
}

// navigateTo moves the player to a node: trigger-driven state
// transitions first, then the header and current-state description.
func (e *Engine) navigateTo(nodeID string, res *effects.Result) {
	node, ok := e.Defs.Nodes[nodeID]
	if !ok {
		res.AddMessage(fmt.Sprintf("You can't go there. (%s)", nodeID))
		return
	}
	e.State.CurrentNode = nodeID
	e.applyTriggers(node)

	res.AddMessage(fmt.Sprintf("【%s】", node.Metadata.DisplayName))
	if st, ok := node.States[state.NodeState(e.State, node)]; ok && st.Description != "" {
		res.AddMessage(st.Description)
	}
	e.State.VisitedNodes[nodeID] = true
}

// applyTriggers switches the node to the first non-current state whose
// trigger requirement is satisfied. States are scanned in sorted name
// order for determinism.
func (e *Engine) applyTriggers(node *types.Node) {
	current := state.NodeState(e.State, node)
	names := make([]string, 0, len(node.States))
	for name := range node.States {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == current {
			continue
		}
		st := node.States[name]
		if st.Trigger != nil && rules.Check(*st.Trigger, e.State) {
			state.SetNodeState(e.State, node, name)
			return
		}
	}
}
