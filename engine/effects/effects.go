// Package effects implements the effect interpreter: ordered execution
// of declarative effect lists against the game state. Every built-in
// effect kind is one atomic operation; unknown kinds dispatch to
// registered handlers or are skipped. The interpreter itself performs
// no I/O; output is the message list on the Result.
package effects

import (
	"fmt"

	"github.com/seika-games/modcore/engine/rng"
	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/engine/stats"
	"github.com/seika-games/modcore/types"
)

// Result accumulates messages and control signals across one effect
// list. Signals are accumulative: a later effect can still append
// messages after navigation has been requested; the caller performs the
// actual transition after the whole list completes.
type Result struct {
	Messages         []string
	NavigationTarget string
	BattleEnemy      string
	BattleEnemyPool  string
	BindSequence     string
	BindStage        int
	GameOver         bool
	GameClear        bool
	Ending           string
	Success          bool
}

// NewResult returns an empty successful result.
func NewResult() *Result {
	return &Result{Success: true}
}

// AddMessage appends a non-empty message.
func (r *Result) AddMessage(msg string) {
	if msg != "" {
		r.Messages = append(r.Messages, msg)
	}
}

// Handler is an externally registered effect executor. It receives the
// effect record, the mutable result, and the interpreter for state
// access. Handlers are registered before interpretation begins; how
// they are discovered is not this package's concern.
type Handler func(eff types.Effect, res *Result, it *Interpreter)

// Interpreter executes effect lists against one game state.
type Interpreter struct {
	State    *types.GameState
	Defs     *state.Defs
	RNG      *rng.RNG
	handlers map[string]Handler
}

// New creates an interpreter bound to a state, definitions, and RNG.
func New(s *types.GameState, defs *state.Defs, r *rng.RNG) *Interpreter {
	return &Interpreter{
		State:    s,
		Defs:     defs,
		RNG:      r,
		handlers: map[string]Handler{},
	}
}

// RegisterHandler binds a handler to an effect kind. A registered
// handler takes precedence over the built-in catalog, so plugins can
// replace built-in behavior.
func (it *Interpreter) RegisterHandler(kind string, h Handler) {
	it.handlers[kind] = h
}

// Apply executes an effect list in order and returns the accumulated result.
func (it *Interpreter) Apply(effs []types.Effect) *Result {
	res := NewResult()
	it.ApplyInto(effs, res)
	return res
}

// ApplyInto executes an effect list in order, accumulating into res.
func (it *Interpreter) ApplyInto(effs []types.Effect, res *Result) {
	for _, eff := range effs {
		it.applyOne(eff, res)
	}
}

func (it *Interpreter) applyOne(eff types.Effect, res *Result) {
	if h, ok := it.handlers[eff.Type]; ok {
		h(eff, res, it)
		return
	}

	s := it.State
	switch eff.Type {
	case "message":
		res.AddMessage(eff.Text)

	case "navigation":
		res.NavigationTarget = eff.Target

	case "get_item":
		count := defaultOne(eff.Count)
		state.AddItem(s, eff.Item, count)
		res.AddMessage(fmt.Sprintf("You obtained %s!", it.ItemName(eff.Item)))

	case "item_roll":
		it.rollItems(eff.Pool, defaultOne(eff.Count), res)

	case "set_flag":
		s.Player.Flags[eff.Flag] = eff.Value

	case "modify_stat":
		stats.Modify(&s.Player, eff.Stat, eff.Operator, toInt(eff.Value))

	case "change_node_state":
		nodeID := eff.Node
		if nodeID == "" {
			nodeID = s.CurrentNode
		}
		if node, ok := it.Defs.Nodes[nodeID]; ok {
			state.SetNodeState(s, node, eff.NewState)
		}

	case "change_object_state":
		if node, ok := it.Defs.Nodes[s.CurrentNode]; ok {
			if obj, ok := node.Objects[eff.Object]; ok {
				state.SetObjectState(s, node.ID, obj, eff.NewState)
			}
		}

	case "battle":
		res.BattleEnemy = eff.Enemy
		res.BattleEnemyPool = eff.EnemyPool

	case "run_bind_sequence":
		res.BindSequence = eff.Sequence
		res.BindStage = 0

	case "switch_bind_sequence":
		res.BindSequence = eff.Target
		res.BindStage = eff.Stage
		s.BindStage = eff.Stage

	case "game_over":
		res.GameOver = true
		s.GameOver = true
		if eff.Reason != "" {
			res.AddMessage(eff.Reason)
		} else {
			res.AddMessage("Game over.")
		}

	case "game_clear":
		res.GameClear = true
		res.Ending = eff.Ending
		s.GameClear = true

	case "stage_progress":
		s.BindStage += defaultOne(eff.Amount)

	case "stage_regress":
		s.BindStage -= defaultOne(eff.Amount)
		if s.BindStage < -1 {
			s.BindStage = -1
		}

	case "escape_bind":
		if s.InBind {
			// The sequence engine observes the negative stage and
			// terminates as escaped.
			s.BindStage = -1
		} else {
			s.BindSequence = ""
			s.BindStage = 0
		}

	case "deal_damage":
		it.dealDamage(eff, res)

	default:
		// Unknown effect kind with no registered handler: skipped.
	}
}

// dealDamage is the generic damage effect. The self path deliberately
// bypasses the SP shield; only the battle engine's own attack
// resolution routes through the shield split.
func (it *Interpreter) dealDamage(eff types.Effect, res *Result) {
	s := it.State
	switch eff.Target {
	case "enemy":
		if s.CurrentEnemy == nil {
			return
		}
		s.CurrentEnemy.HP -= eff.Damage
		res.AddMessage(fmt.Sprintf("Dealt %d damage to the enemy!", eff.Damage))

	case "self":
		if eff.DamageType == "pt" {
			stats.Set(&s.Player, stats.PT, s.Player.Combat.PT+eff.Damage)
		} else {
			stats.Set(&s.Player, stats.HP, s.Player.Combat.HP-eff.Damage)
			res.AddMessage(fmt.Sprintf("You took %d damage!", eff.Damage))
		}
	}
}

// rollItems performs count weighted draws from a named pool. A drawn
// list value is an atomic set: every member is granted.
func (it *Interpreter) rollItems(poolID string, count int, res *Result) {
	pool, ok := it.Defs.Pools[poolID]
	if !ok || len(pool.Options) == 0 {
		return
	}
	weights := make([]int, len(pool.Options))
	for i, opt := range pool.Options {
		weights[i] = opt.Weight
	}
	for n := 0; n < count; n++ {
		value := pool.Options[it.RNG.WeightedIndex(weights)].Value
		it.grantRolled(value, res)
	}
}

func (it *Interpreter) grantRolled(value any, res *Result) {
	switch v := value.(type) {
	case string:
		state.AddItem(it.State, v, 1)
		res.AddMessage(fmt.Sprintf("You obtained %s!", it.ItemName(v)))
	case []any:
		for _, sub := range v {
			it.grantRolled(sub, res)
		}
	case []string:
		for _, sub := range v {
			it.grantRolled(sub, res)
		}
	}
}

// ItemName returns the display name for an item ID, falling back to the ID.
func (it *Interpreter) ItemName(itemID string) string {
	if item, ok := it.Defs.Items[itemID]; ok {
		return item.Name
	}
	return itemID
}

func defaultOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
