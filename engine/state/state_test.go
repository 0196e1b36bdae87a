package state

import (
	"testing"

	"github.com/seika-games/modcore/types"
)

func testDefs() *Defs {
	return &Defs{
		Mod: types.ModInfo{ID: "test", EntryPoint: "start"},
		Nodes: map[string]*types.Node{
			"start": {
				ID:           "start",
				InitialState: "default",
				States: map[string]types.NodeState{
					"default": {Description: "A quiet room."},
					"ransacked": {Description: "The room is a mess."},
				},
			},
		},
	}
}

func TestNewState(t *testing.T) {
	defs := testDefs()
	s := NewState(defs)

	if s.CurrentNode != "start" {
		t.Errorf("expected current node start, got %s", s.CurrentNode)
	}
	if s.Player.Combat.HP != 80 || s.Player.Combat.SP != 100 {
		t.Errorf("unexpected default combat stats: %+v", s.Player.Combat)
	}
	if s.Player.Inventory == nil || s.Player.Flags == nil {
		t.Error("expected initialized inventory and flags maps")
	}
}

func TestNewStateWithOverrides(t *testing.T) {
	defs := testDefs()
	defs.PlayerCombat = &types.CombatStats{HP: 10, HPMax: 10, SP: 5, SPMax: 5}
	defs.PlayerAbility = &types.AbilityStats{Strength: 99}

	s := NewState(defs)
	if s.Player.Combat.HP != 10 {
		t.Errorf("expected overridden HP 10, got %d", s.Player.Combat.HP)
	}
	if s.Player.Ability.Strength != 99 {
		t.Errorf("expected overridden strength 99, got %d", s.Player.Ability.Strength)
	}
}

func TestNodeStateTransitions(t *testing.T) {
	defs := testDefs()
	s := NewState(defs)
	node := defs.Nodes["start"]

	if got := NodeState(s, node); got != "default" {
		t.Errorf("expected initial state default, got %s", got)
	}

	if !SetNodeState(s, node, "ransacked") {
		t.Fatal("expected transition to ransacked to succeed")
	}
	if got := NodeState(s, node); got != "ransacked" {
		t.Errorf("expected ransacked after transition, got %s", got)
	}

	if SetNodeState(s, node, "nonexistent") {
		t.Error("expected unknown state transition to be rejected")
	}
	if got := NodeState(s, node); got != "ransacked" {
		t.Errorf("rejected transition must not change state, got %s", got)
	}
}

func TestObjectStateTransitions(t *testing.T) {
	defs := testDefs()
	s := NewState(defs)
	obj := &types.InteractiveObject{
		ID:           "chest",
		InitialState: "closed",
		States: map[string]types.NodeState{
			"closed": {Description: "A closed chest."},
			"open":   {Description: "The chest stands open."},
		},
	}

	if got := ObjectState(s, "start", obj); got != "closed" {
		t.Errorf("expected initial object state closed, got %s", got)
	}
	if !SetObjectState(s, "start", obj, "open") {
		t.Fatal("expected transition to open to succeed")
	}
	if got := ObjectState(s, "start", obj); got != "open" {
		t.Errorf("expected open after transition, got %s", got)
	}
	if SetObjectState(s, "start", obj, "sideways") {
		t.Error("expected unknown object state to be rejected")
	}
}

func TestInventory(t *testing.T) {
	s := NewState(testDefs())

	AddItem(s, "potion", 3)
	if got := ItemCount(s, "potion"); got != 3 {
		t.Errorf("expected 3 potions, got %d", got)
	}

	if RemoveItem(s, "potion", 5) {
		t.Error("expected insufficient removal to fail")
	}
	if got := ItemCount(s, "potion"); got != 3 {
		t.Errorf("failed removal must not change count, got %d", got)
	}

	if !RemoveItem(s, "potion", 3) {
		t.Error("expected full removal to succeed")
	}
	if _, ok := s.Player.Inventory["potion"]; ok {
		t.Error("expected emptied item to be deleted from inventory")
	}

	AddItem(s, "curse", -1)
	if _, ok := s.Player.Inventory["curse"]; ok {
		t.Error("expected non-positive count to be deleted")
	}
}

func TestBrands(t *testing.T) {
	p := &types.Player{}

	AddBrand(p, "wraith", "Pale Wraith", 0.2)
	AddBrand(p, "wraith", "Pale Wraith", 0.5)
	if len(p.Brands) != 1 {
		t.Fatalf("expected brand dedup, got %d brands", len(p.Brands))
	}
	if !HasBrand(p, "wraith") {
		t.Error("expected HasBrand true")
	}
	if got := BrandDebuff(p, "wraith"); got != 0.2 {
		t.Errorf("expected original ratio 0.2 kept, got %v", got)
	}
	if got := BrandDebuff(p, "other"); got != 0 {
		t.Errorf("expected 0 for unbranded enemy, got %v", got)
	}

	if !RemoveBrand(p, "wraith") {
		t.Error("expected brand removal to succeed")
	}
	if RemoveBrand(p, "wraith") {
		t.Error("expected second removal to fail")
	}
}

func TestStatuses(t *testing.T) {
	p := &types.Player{
		Statuses: []types.StatusEffectInstance{
			{ID: "poison", RemainingTurns: 2},
		},
	}
	if !HasStatus(p, "poison") {
		t.Error("expected HasStatus poison")
	}
	if HasStatus(p, "paralysis") {
		t.Error("did not expect paralysis")
	}
	if ActionPrevented(p) {
		t.Error("poison without modifiers must not prevent actions")
	}

	p.Statuses = append(p.Statuses, types.StatusEffectInstance{
		ID:      "paralysis",
		Effects: []types.StatusModifier{{Type: "prevent_action"}},
	})
	if !ActionPrevented(p) {
		t.Error("expected prevent_action modifier to block actions")
	}
}

func TestNewEnemyInstance(t *testing.T) {
	def := &types.Enemy{ID: "wraith", Stats: types.EnemyStats{HP: 45}}
	inst := NewEnemyInstance(def)

	if inst.HP != 45 {
		t.Errorf("expected HP seeded from template, got %d", inst.HP)
	}
	if inst.Cooldowns == nil {
		t.Error("expected initialized cooldowns map")
	}
	if inst.Def != def {
		t.Error("expected instance to reference its template")
	}
}
