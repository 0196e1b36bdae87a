package engine

import (
	"strings"
	"testing"

	"github.com/seika-games/modcore/engine/battle"
	"github.com/seika-games/modcore/engine/effects"
	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Mod: types.ModInfo{
			ID:         "demo",
			EntryPoint: "cell",
			Metadata:   types.ModMetadata{Name: "Demo", Description: "A short demo."},
		},
		Nodes: map[string]*types.Node{
			"cell": {
				ID:           "cell",
				InitialState: "default",
				Metadata:     types.NodeMetadata{DisplayName: "Stone Cell"},
				States: map[string]types.NodeState{
					"default": {
						Description: "Four damp walls.",
						Actions: []types.Action{
							{ID: "leave", Type: "navigation", Label: "Leave", Target: "hall"},
							{ID: "search", Type: "interact", Label: "Search",
								Effects: []types.Effect{
									{Type: "get_item", Item: "herb"},
									{Type: "set_flag", Flag: "searched", Value: true},
								}},
							{ID: "pray", Type: "interact", Label: "Pray",
								Requirements: []types.Requirement{
									{Type: "flag_check", Flag: "searched", Value: true},
								}},
						},
					},
				},
			},
			"hall": {
				ID:           "hall",
				InitialState: "default",
				Metadata:     types.NodeMetadata{DisplayName: "Long Hall"},
				States: map[string]types.NodeState{
					"default": {
						Description: "A long hall stretches ahead.",
						Actions: []types.Action{
							{ID: "fight", Type: "interact", Label: "Approach the shadow",
								Effects: []types.Effect{{Type: "battle", Enemy: "wraith"}}},
						},
					},
					"haunted": {
						Description: "The hall is thick with cold mist.",
						Trigger:     &types.Requirement{Type: "flag_check", Flag: "angered", Value: true},
					},
				},
			},
			"shrine": {
				ID:           "shrine",
				InitialState: "default",
				Metadata:     types.NodeMetadata{DisplayName: "Shrine"},
				States:       map[string]types.NodeState{"default": {Description: "A quiet shrine."}},
			},
		},
		Enemies: map[string]*types.Enemy{
			"wraith": {
				ID:    "wraith",
				Name:  "Pale Wraith",
				Stats: types.EnemyStats{HP: 1, Atk: 5, Initiative: 10},
				Events: map[string]string{
					"on_victory": "shrine",
				},
			},
		},
		Sequences: map[string]*types.BindSequence{
			"vines": {
				ID:     "vines",
				Config: types.BindConfig{BaseDifficulty: 50},
				Stages: []types.BindStage{{Stage: 0, Description: "Vines coil around you."}},
			},
		},
		Spells:   map[string]*types.Spell{},
		Items:    map[string]*types.Item{"herb": {ID: "herb", Name: "Bitter Herb"}},
		Pools:    map[string]*types.ItemPool{},
		Statuses: map[string]*types.StatusEffect{},
	}
}

func hasMessage(res *effects.Result, substr string) bool {
	for _, m := range res.Messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func entryIDs(e *Engine) []string {
	var out []string
	for _, entry := range e.AvailableActions() {
		out = append(out, entry.ID)
	}
	return out
}

func TestStart(t *testing.T) {
	e := New(testDefs(), 1)
	res := e.Start()

	if !hasMessage(res, "Demo") || !hasMessage(res, "A short demo.") {
		t.Error("expected the mod intro")
	}
	if !hasMessage(res, "【Stone Cell】") {
		t.Error("expected the entry node header")
	}
	if !hasMessage(res, "Four damp walls.") {
		t.Error("expected the node description")
	}
	if !e.State.VisitedNodes["cell"] {
		t.Error("expected the entry node marked visited")
	}
	if e.Mode() != ModeExploration {
		t.Errorf("expected exploration mode, got %s", e.Mode())
	}
}

func TestExplorationActionsFilterRequirements(t *testing.T) {
	e := New(testDefs(), 1)
	e.Start()

	got := entryIDs(e)
	if len(got) != 2 || got[0] != "leave" || got[1] != "search" {
		t.Errorf("expected [leave search] before the flag, got %v", got)
	}

	if _, err := e.ExecuteAction("search", ""); err != nil {
		t.Fatal(err)
	}
	got = entryIDs(e)
	if len(got) != 3 || got[2] != "pray" {
		t.Errorf("expected pray once searched, got %v", got)
	}
}

func TestExecuteUnknownAction(t *testing.T) {
	e := New(testDefs(), 1)
	e.Start()
	if _, err := e.ExecuteAction("fly", ""); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestNavigation(t *testing.T) {
	e := New(testDefs(), 1)
	e.Start()

	res, err := e.ExecuteAction("leave", "")
	if err != nil {
		t.Fatal(err)
	}
	if e.State.CurrentNode != "hall" {
		t.Errorf("expected hall, got %s", e.State.CurrentNode)
	}
	if !hasMessage(res, "【Long Hall】") {
		t.Error("expected the hall header")
	}
}

func TestTriggerTransition(t *testing.T) {
	e := New(testDefs(), 1)
	e.Start()
	e.State.Player.Flags["angered"] = true

	res, err := e.ExecuteAction("leave", "")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.State.NodeStates["hall"]; got != "haunted" {
		t.Errorf("expected the trigger to fire on arrival, got %q", got)
	}
	if !hasMessage(res, "cold mist") {
		t.Error("expected the triggered state description")
	}
}

func TestBattleFlow(t *testing.T) {
	e := New(testDefs(), 1)
	e.Start()
	if _, err := e.ExecuteAction("leave", ""); err != nil {
		t.Fatal(err)
	}

	res, err := e.ExecuteAction("fight", "")
	if err != nil {
		t.Fatal(err)
	}
	if e.Mode() != ModeBattle {
		t.Fatalf("expected battle mode, got %s", e.Mode())
	}
	if !hasMessage(res, "Pale Wraith appears!") {
		t.Error("expected the encounter message")
	}

	got := entryIDs(e)
	if len(got) != 5 || got[0] != battle.ActionAttack {
		t.Errorf("unexpected battle menu %v", got)
	}

	// the wraith has 1 HP; one attack wins and fires on_victory
	res, err = e.ExecuteAction(battle.ActionAttack, "")
	if err != nil {
		t.Fatal(err)
	}
	if e.Mode() != ModeExploration {
		t.Fatalf("expected battle over, mode %s", e.Mode())
	}
	if e.State.CurrentNode != "shrine" {
		t.Errorf("expected on_victory navigation to the shrine, got %s", e.State.CurrentNode)
	}
	if !hasMessage(res, "【Shrine】") {
		t.Error("expected the shrine header")
	}
}

func TestBindFlow(t *testing.T) {
	defs := testDefs()
	defs.Nodes["cell"].States["default"] = types.NodeState{
		Description: "Four damp walls.",
		Actions: []types.Action{
			{ID: "touch", Type: "interact", Label: "Touch the vines",
				Effects: []types.Effect{{Type: "run_bind_sequence", Sequence: "vines"}}},
		},
	}
	e := New(defs, 1)
	e.Start()

	res, err := e.ExecuteAction("touch", "")
	if err != nil {
		t.Fatal(err)
	}
	if e.Mode() != ModeBind {
		t.Fatalf("expected bind mode, got %s", e.Mode())
	}
	if !hasMessage(res, "Vines coil around you.") {
		t.Error("expected the stage description")
	}
	if len(e.AvailableActions()) == 0 {
		t.Error("expected bind choices")
	}
}

func TestResumeBindAfterLoad(t *testing.T) {
	e := New(testDefs(), 1)
	e.Start()

	// a loaded save only carries the flags; the sequence must restart
	e.State.InBind = true
	e.State.BindSequence = "vines"
	e.State.BindStage = 0

	res := e.ResumeBind()
	if e.Mode() != ModeBind {
		t.Fatalf("expected bind mode after resume, got %s", e.Mode())
	}
	if !e.Bind.IsActive() {
		t.Fatal("expected the bind system re-armed")
	}
	if !hasMessage(res, "Vines coil around you.") {
		t.Error("expected the saved stage description")
	}
	if len(e.AvailableActions()) == 0 {
		t.Error("expected bind choices after resume")
	}
}

func TestResumeBindUnknownSequenceClears(t *testing.T) {
	e := New(testDefs(), 1)
	e.Start()

	e.State.InBind = true
	e.State.BindSequence = "chains"
	e.State.BindStage = 2

	e.ResumeBind()
	if e.State.InBind || e.State.BindSequence != "" || e.State.BindStage != 0 {
		t.Errorf("expected stale bind flags cleared, got %v %q %d",
			e.State.InBind, e.State.BindSequence, e.State.BindStage)
	}
	if e.Mode() != ModeExploration {
		t.Errorf("expected exploration mode, got %s", e.Mode())
	}
}

func TestGameOverGatesActions(t *testing.T) {
	e := New(testDefs(), 1)
	e.Start()
	e.State.GameOver = true

	if e.Mode() != ModeOver {
		t.Fatalf("expected over mode, got %s", e.Mode())
	}
	if entries := e.AvailableActions(); entries != nil {
		t.Errorf("expected no actions after game over, got %v", entries)
	}
	res, err := e.ExecuteAction("anything", "")
	if err != nil {
		t.Fatal(err)
	}
	if !hasMessage(res, "Game over") {
		t.Error("expected the game over notice")
	}
}

func TestRNGPositionTracked(t *testing.T) {
	e := New(testDefs(), 42)
	e.Start()
	if e.State.RNGSeed != 42 {
		t.Errorf("expected seed recorded, got %d", e.State.RNGSeed)
	}
	if _, err := e.ExecuteAction("leave", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ExecuteAction("fight", ""); err != nil {
		t.Fatal(err)
	}
	if e.State.RNGPosition != e.RNG.Position() {
		t.Errorf("position %d not synced with rng %d", e.State.RNGPosition, e.RNG.Position())
	}
}
