// Package save implements JSON serialization and deserialization of game state.
package save

import (
	"encoding/json"

	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/types"
)

// SaveData is the JSON-serializable save format. Battles are not
// persisted; saving is only offered outside combat.
type SaveData struct {
	Version      string                       `json:"version"`
	Mod          string                       `json:"mod"`
	CurrentNode  string                       `json:"current_node"`
	Player       types.Player                 `json:"player"`
	VisitedNodes map[string]bool              `json:"visited_nodes"`
	NodeStates   map[string]string            `json:"node_states"`
	ObjectStates map[string]map[string]string `json:"object_states"`
	BindSequence string                       `json:"bind_sequence,omitempty"`
	BindStage    int                          `json:"bind_stage,omitempty"`
	GameOver     bool                         `json:"game_over"`
	GameClear    bool                         `json:"game_clear"`
	RNGSeed      int64                        `json:"rng_seed"`
	RNGPosition  int64                        `json:"rng_position"`
}

// Save serializes game state to JSON bytes.
func Save(s *types.GameState, defs *state.Defs) ([]byte, error) {
	data := SaveData{
		Version:      defs.Mod.Version,
		Mod:          defs.Mod.ID,
		CurrentNode:  s.CurrentNode,
		Player:       s.Player,
		VisitedNodes: s.VisitedNodes,
		NodeStates:   s.NodeStates,
		ObjectStates: s.ObjectStates,
		BindSequence: s.BindSequence,
		BindStage:    s.BindStage,
		GameOver:     s.GameOver,
		GameClear:    s.GameClear,
		RNGSeed:      s.RNGSeed,
		RNGPosition:  s.RNGPosition,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	// Ensure maps are never nil after load.
	if sd.VisitedNodes == nil {
		sd.VisitedNodes = map[string]bool{}
	}
	if sd.NodeStates == nil {
		sd.NodeStates = map[string]string{}
	}
	if sd.ObjectStates == nil {
		sd.ObjectStates = map[string]map[string]string{}
	}
	if sd.Player.Inventory == nil {
		sd.Player.Inventory = map[string]int{}
	}
	if sd.Player.Flags == nil {
		sd.Player.Flags = map[string]any{}
	}
	return &sd, nil
}

// ApplySave applies loaded save data onto a state.
func ApplySave(s *types.GameState, sd *SaveData) {
	s.CurrentNode = sd.CurrentNode
	s.Player = sd.Player
	s.VisitedNodes = sd.VisitedNodes
	s.NodeStates = sd.NodeStates
	s.ObjectStates = sd.ObjectStates
	s.BindSequence = sd.BindSequence
	s.BindStage = sd.BindStage
	s.GameOver = sd.GameOver
	s.GameClear = sd.GameClear
	s.RNGSeed = sd.RNGSeed
	s.RNGPosition = sd.RNGPosition
	s.InBattle = false
	s.CurrentEnemy = nil
	s.InBind = sd.BindSequence != ""
}
