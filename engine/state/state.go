// Package state holds the immutable definition set and the helpers that
// read and mutate the single live game state. Definitions are never
// modified after loading; all runtime variance lives in types.GameState.
package state

import "github.com/seika-games/modcore/types"

// Defs holds the immutable game definitions produced by the loader.
type Defs struct {
	Mod           types.ModInfo
	Nodes         map[string]*types.Node
	Enemies       map[string]*types.Enemy
	Sequences     map[string]*types.BindSequence
	Spells        map[string]*types.Spell
	Items         map[string]*types.Item
	Pools         map[string]*types.ItemPool
	Statuses      map[string]*types.StatusEffect
	PlayerCombat  *types.CombatStats  // optional starting combat stats
	PlayerAbility *types.AbilityStats // optional starting ability stats
}

// Default starting stats, used when the mod does not override them.
var (
	defaultCombat = types.CombatStats{
		SP: 100, SPMax: 100,
		HP: 80, HPMax: 80,
		MP: 50, MPMax: 50,
		PT: 0, PTMax: 100,
	}
	defaultAbility = types.AbilityStats{
		Sanity: 70, Strength: 50, Focus: 60,
		Intelligence: 65, Knowledge: 55, Dexterity: 45,
	}
)

// NewState creates a fresh game state positioned at the mod entry point.
func NewState(defs *Defs) *types.GameState {
	combat := defaultCombat
	if defs.PlayerCombat != nil {
		combat = *defs.PlayerCombat
	}
	ability := defaultAbility
	if defs.PlayerAbility != nil {
		ability = *defs.PlayerAbility
	}
	return &types.GameState{
		CurrentNode: defs.Mod.EntryPoint,
		Player: types.Player{
			Combat:    combat,
			Ability:   ability,
			Inventory: map[string]int{},
			Flags:     map[string]any{},
			Spells:    []string{},
		},
		VisitedNodes: map[string]bool{},
		NodeStates:   map[string]string{},
		ObjectStates: map[string]map[string]string{},
	}
}

// NodeState returns the current state name of a node, falling back to
// its declared initial state.
func NodeState(s *types.GameState, node *types.Node) string {
	if cur, ok := s.NodeStates[node.ID]; ok {
		return cur
	}
	return node.InitialState
}

// SetNodeState records a node state transition. Unknown target states
// are ignored so content typos cannot wedge a node.
func SetNodeState(s *types.GameState, node *types.Node, newState string) bool {
	if _, ok := node.States[newState]; !ok {
		return false
	}
	s.NodeStates[node.ID] = newState
	return true
}

// ObjectState returns the current state name of an object within a node.
func ObjectState(s *types.GameState, nodeID string, obj *types.InteractiveObject) string {
	if states, ok := s.ObjectStates[nodeID]; ok {
		if cur, ok := states[obj.ID]; ok {
			return cur
		}
	}
	return obj.InitialState
}

// SetObjectState records an object state transition.
func SetObjectState(s *types.GameState, nodeID string, obj *types.InteractiveObject, newState string) bool {
	if _, ok := obj.States[newState]; !ok {
		return false
	}
	if s.ObjectStates[nodeID] == nil {
		s.ObjectStates[nodeID] = map[string]string{}
	}
	s.ObjectStates[nodeID][obj.ID] = newState
	return true
}

// GetFlag returns a flag value; unset flags return nil.
func GetFlag(s *types.GameState, name string) any {
	return s.Player.Flags[name]
}

// ItemCount returns the inventory count for an item ID.
func ItemCount(s *types.GameState, itemID string) int {
	return s.Player.Inventory[itemID]
}

// AddItem adds count of an item to the inventory.
func AddItem(s *types.GameState, itemID string, count int) {
	s.Player.Inventory[itemID] += count
	if s.Player.Inventory[itemID] <= 0 {
		delete(s.Player.Inventory, itemID)
	}
}

// RemoveItem removes count of an item. Returns false (and leaves the
// inventory untouched) if the player doesn't hold enough.
func RemoveItem(s *types.GameState, itemID string, count int) bool {
	if s.Player.Inventory[itemID] < count {
		return false
	}
	s.Player.Inventory[itemID] -= count
	if s.Player.Inventory[itemID] <= 0 {
		delete(s.Player.Inventory, itemID)
	}
	return true
}

// HasBrand reports whether the player carries a brand from the enemy.
func HasBrand(p *types.Player, enemyID string) bool {
	for _, b := range p.Brands {
		if b.EnemyID == enemyID {
			return true
		}
	}
	return false
}

// BrandDebuff returns the attack debuff ratio for an enemy, 0 if unbranded.
func BrandDebuff(p *types.Player, enemyID string) float64 {
	for _, b := range p.Brands {
		if b.EnemyID == enemyID {
			return b.DebuffRatio
		}
	}
	return 0
}

// AddBrand adds a brand unless one from the same enemy already exists.
func AddBrand(p *types.Player, enemyID, enemyName string, ratio float64) {
	if HasBrand(p, enemyID) {
		return
	}
	p.Brands = append(p.Brands, types.Brand{
		EnemyID:     enemyID,
		EnemyName:   enemyName,
		DebuffRatio: ratio,
	})
}

// RemoveBrand deletes the brand from an enemy. Returns false if absent.
func RemoveBrand(p *types.Player, enemyID string) bool {
	for i, b := range p.Brands {
		if b.EnemyID == enemyID {
			p.Brands = append(p.Brands[:i], p.Brands[i+1:]...)
			return true
		}
	}
	return false
}

// HasStatus reports whether the player has an active status by ID.
func HasStatus(p *types.Player, statusID string) bool {
	for _, se := range p.Statuses {
		if se.ID == statusID {
			return true
		}
	}
	return false
}

// ActionPrevented reports whether any active status carries a
// prevent_action modifier.
func ActionPrevented(p *types.Player) bool {
	for _, se := range p.Statuses {
		for _, m := range se.Effects {
			if m.Type == "prevent_action" {
				return true
			}
		}
	}
	return false
}

// NewEnemyInstance creates a fresh battle copy of an enemy template:
// current HP seeded from max, empty cooldowns.
func NewEnemyInstance(def *types.Enemy) *types.EnemyInstance {
	return &types.EnemyInstance{
		Def:       def,
		HP:        def.Stats.HP,
		Cooldowns: map[string]int{},
	}
}
