package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seika-games/modcore/engine/rng"
	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/types"
)

func testInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	defs := &state.Defs{
		Mod: types.ModInfo{ID: "test", EntryPoint: "cell"},
		Nodes: map[string]*types.Node{
			"cell": {
				ID:           "cell",
				InitialState: "default",
				States: map[string]types.NodeState{
					"default": {Description: "A stone cell."},
					"flooded": {Description: "Water covers the floor."},
				},
				Objects: map[string]*types.InteractiveObject{
					"door": {
						ID:           "door",
						InitialState: "locked",
						States: map[string]types.NodeState{
							"locked":   {},
							"unlocked": {},
						},
					},
				},
			},
		},
		Items: map[string]*types.Item{
			"herb": {ID: "herb", Name: "Bitter Herb"},
		},
		Pools: map[string]*types.ItemPool{
			"loot": {
				ID: "loot",
				Options: []types.WeightedOption{
					{Weight: 1, Value: "herb"},
				},
			},
			"bundle": {
				ID: "bundle",
				Options: []types.WeightedOption{
					{Weight: 1, Value: []any{"herb", "coin"}},
				},
			},
		},
		Enemies:   map[string]*types.Enemy{},
		Sequences: map[string]*types.BindSequence{},
		Spells:    map[string]*types.Spell{},
		Statuses:  map[string]*types.StatusEffect{},
	}
	s := state.NewState(defs)
	return New(s, defs, rng.New(7))
}

func TestMessageOrdering(t *testing.T) {
	it := testInterpreter(t)
	res := it.Apply([]types.Effect{
		{Type: "message", Text: "first"},
		{Type: "message", Text: ""},
		{Type: "message", Text: "second"},
	})
	assert.Equal(t, []string{"first", "second"}, res.Messages)
	assert.True(t, res.Success)
}

func TestGetItem(t *testing.T) {
	it := testInterpreter(t)
	res := it.Apply([]types.Effect{
		{Type: "get_item", Item: "herb"},
		{Type: "get_item", Item: "coin", Count: 3},
	})
	assert.Equal(t, 1, it.State.Player.Inventory["herb"])
	assert.Equal(t, 3, it.State.Player.Inventory["coin"])
	require.Len(t, res.Messages, 2)
	assert.Contains(t, res.Messages[0], "Bitter Herb")
	assert.Contains(t, res.Messages[1], "coin")
}

func TestItemRollSingleAndBundle(t *testing.T) {
	it := testInterpreter(t)
	it.Apply([]types.Effect{{Type: "item_roll", Pool: "loot", Count: 2}})
	assert.Equal(t, 2, it.State.Player.Inventory["herb"])

	it.Apply([]types.Effect{{Type: "item_roll", Pool: "bundle"}})
	assert.Equal(t, 3, it.State.Player.Inventory["herb"])
	assert.Equal(t, 1, it.State.Player.Inventory["coin"])

	// unknown pool is a silent no-op
	res := it.Apply([]types.Effect{{Type: "item_roll", Pool: "nope"}})
	assert.Empty(t, res.Messages)
}

func TestSetFlagAndModifyStat(t *testing.T) {
	it := testInterpreter(t)
	it.Apply([]types.Effect{
		{Type: "set_flag", Flag: "met_warden", Value: true},
		{Type: "modify_stat", Stat: "hp", Operator: "-", Value: 30},
	})
	assert.Equal(t, true, it.State.Player.Flags["met_warden"])
	assert.Equal(t, 50, it.State.Player.Combat.HP)
}

func TestChangeNodeAndObjectState(t *testing.T) {
	it := testInterpreter(t)
	it.Apply([]types.Effect{
		{Type: "change_node_state", NewState: "flooded"},
		{Type: "change_object_state", Object: "door", NewState: "unlocked"},
	})
	assert.Equal(t, "flooded", it.State.NodeStates["cell"])
	assert.Equal(t, "unlocked", it.State.ObjectStates["cell"]["door"])

	// unknown target state leaves things alone
	it.Apply([]types.Effect{{Type: "change_node_state", NewState: "on_fire"}})
	assert.Equal(t, "flooded", it.State.NodeStates["cell"])
}

func TestControlSignals(t *testing.T) {
	it := testInterpreter(t)
	res := it.Apply([]types.Effect{
		{Type: "navigation", Target: "hallway"},
		{Type: "battle", Enemy: "wraith"},
		{Type: "run_bind_sequence", Sequence: "vines"},
	})
	assert.Equal(t, "hallway", res.NavigationTarget)
	assert.Equal(t, "wraith", res.BattleEnemy)
	assert.Equal(t, "vines", res.BindSequence)
	assert.Equal(t, 0, res.BindStage)
}

func TestSwitchBindSequence(t *testing.T) {
	it := testInterpreter(t)
	res := it.Apply([]types.Effect{
		{Type: "switch_bind_sequence", Target: "web", Stage: 2},
	})
	assert.Equal(t, "web", res.BindSequence)
	assert.Equal(t, 2, res.BindStage)
	assert.Equal(t, 2, it.State.BindStage)
}

func TestGameOverAndClear(t *testing.T) {
	it := testInterpreter(t)
	res := it.Apply([]types.Effect{{Type: "game_over", Reason: "The dark takes you."}})
	assert.True(t, res.GameOver)
	assert.True(t, it.State.GameOver)
	assert.Contains(t, res.Messages, "The dark takes you.")

	it = testInterpreter(t)
	res = it.Apply([]types.Effect{{Type: "game_over"}})
	assert.Contains(t, res.Messages, "Game over.")

	it = testInterpreter(t)
	res = it.Apply([]types.Effect{{Type: "game_clear", Ending: "true_end"}})
	assert.True(t, res.GameClear)
	assert.Equal(t, "true_end", res.Ending)
	assert.True(t, it.State.GameClear)
}

func TestStageProgressAndRegress(t *testing.T) {
	it := testInterpreter(t)
	it.Apply([]types.Effect{{Type: "stage_progress"}})
	assert.Equal(t, 1, it.State.BindStage)

	it.Apply([]types.Effect{{Type: "stage_progress", Amount: 2}})
	assert.Equal(t, 3, it.State.BindStage)

	it.Apply([]types.Effect{{Type: "stage_regress", Amount: 10}})
	assert.Equal(t, -1, it.State.BindStage, "regress floors at -1")
}

func TestEscapeBind(t *testing.T) {
	it := testInterpreter(t)
	it.State.InBind = true
	it.State.BindStage = 3
	it.Apply([]types.Effect{{Type: "escape_bind"}})
	assert.Equal(t, -1, it.State.BindStage)

	it = testInterpreter(t)
	it.State.BindSequence = "vines"
	it.State.BindStage = 2
	it.Apply([]types.Effect{{Type: "escape_bind"}})
	assert.Equal(t, "", it.State.BindSequence)
	assert.Equal(t, 0, it.State.BindStage)
}

func TestDealDamage(t *testing.T) {
	it := testInterpreter(t)
	it.State.CurrentEnemy = &types.EnemyInstance{HP: 40}
	it.Apply([]types.Effect{{Type: "deal_damage", Target: "enemy", Damage: 15}})
	assert.Equal(t, 25, it.State.CurrentEnemy.HP)

	// self damage bypasses the SP shield
	it.Apply([]types.Effect{{Type: "deal_damage", Target: "self", Damage: 10}})
	assert.Equal(t, 70, it.State.Player.Combat.HP)
	assert.Equal(t, 100, it.State.Player.Combat.SP)

	it.Apply([]types.Effect{{Type: "deal_damage", Target: "self", DamageType: "pt", Damage: 20}})
	assert.Equal(t, 20, it.State.Player.Combat.PT)
}

func TestRegisteredHandlerPrecedence(t *testing.T) {
	it := testInterpreter(t)
	it.RegisterHandler("message", func(eff types.Effect, res *Result, _ *Interpreter) {
		res.AddMessage("hooked: " + eff.Text)
	})
	it.RegisterHandler("weather", func(_ types.Effect, res *Result, it *Interpreter) {
		it.State.Player.Flags["raining"] = true
		res.AddMessage("Rain begins to fall.")
	})

	res := it.Apply([]types.Effect{
		{Type: "message", Text: "hello"},
		{Type: "weather"},
	})
	assert.Equal(t, []string{"hooked: hello", "Rain begins to fall."}, res.Messages)
	assert.Equal(t, true, it.State.Player.Flags["raining"])
}

func TestUnknownEffectKindSkipped(t *testing.T) {
	it := testInterpreter(t)
	res := it.Apply([]types.Effect{{Type: "teleport_everyone"}})
	assert.Empty(t, res.Messages)
	assert.True(t, res.Success)
}
