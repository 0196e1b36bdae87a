package save

import (
	"testing"

	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Mod: types.ModInfo{ID: "test_mod", Version: "1.2.0", EntryPoint: "cell"},
		Nodes: map[string]*types.Node{
			"cell": {ID: "cell", InitialState: "default",
				States: map[string]types.NodeState{"default": {}}},
		},
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.CurrentNode = "cell"
	s.Player.Combat.HP = 42
	s.Player.Inventory["herb"] = 2
	s.Player.Flags["met_warden"] = true
	s.Player.Spells = []string{"bolt"}
	s.VisitedNodes["cell"] = true
	s.NodeStates["cell"] = "default"
	s.BindSequence = "vines"
	s.BindStage = 2
	s.RNGSeed = 12345
	s.RNGPosition = 67

	data, err := Save(s, defs)
	if err != nil {
		t.Fatal(err)
	}

	sd, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	if sd.Version != "1.2.0" || sd.Mod != "test_mod" {
		t.Errorf("unexpected header: %s %s", sd.Version, sd.Mod)
	}
	if sd.CurrentNode != "cell" {
		t.Errorf("unexpected node %s", sd.CurrentNode)
	}
	if sd.Player.Combat.HP != 42 {
		t.Errorf("unexpected HP %d", sd.Player.Combat.HP)
	}
	if sd.Player.Inventory["herb"] != 2 {
		t.Error("inventory not preserved")
	}
	if sd.BindSequence != "vines" || sd.BindStage != 2 {
		t.Errorf("bind state not preserved: %q %d", sd.BindSequence, sd.BindStage)
	}
	if sd.RNGSeed != 12345 || sd.RNGPosition != 67 {
		t.Errorf("rng state not preserved: %d %d", sd.RNGSeed, sd.RNGPosition)
	}
}

func TestLoadNormalizesNilMaps(t *testing.T) {
	sd, err := Load([]byte(`{"version":"1.0.0","mod":"m","current_node":"cell"}`))
	if err != nil {
		t.Fatal(err)
	}
	if sd.VisitedNodes == nil || sd.NodeStates == nil || sd.ObjectStates == nil {
		t.Error("expected state maps initialized")
	}
	if sd.Player.Inventory == nil || sd.Player.Flags == nil {
		t.Error("expected player maps initialized")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load([]byte("not json")); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestApplySave(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.InBattle = true
	s.CurrentEnemy = &types.EnemyInstance{HP: 10}

	flagTrue := map[string]any{"met_warden": true}
	sd := &SaveData{
		CurrentNode:  "cell",
		Player:       types.Player{Flags: flagTrue, Inventory: map[string]int{}},
		VisitedNodes: map[string]bool{"cell": true},
		NodeStates:   map[string]string{},
		ObjectStates: map[string]map[string]string{},
		BindSequence: "vines",
		BindStage:    1,
		RNGSeed:      7,
		RNGPosition:  3,
	}
	ApplySave(s, sd)

	if s.InBattle || s.CurrentEnemy != nil {
		t.Error("loading must drop any in-memory battle")
	}
	if !s.InBind {
		t.Error("a saved bind sequence resumes in bind mode")
	}
	if s.CurrentNode != "cell" || s.BindStage != 1 {
		t.Errorf("state not applied: %s stage %d", s.CurrentNode, s.BindStage)
	}

	sd.BindSequence = ""
	ApplySave(s, sd)
	if s.InBind {
		t.Error("no saved sequence means no bind mode")
	}
}
