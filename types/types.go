// Package types defines the shared data structures for the modcore engine.
// This package contains only type definitions, no logic and no methods.
package types

// Requirement gates an action, choice, or trigger. Kinds: "stat_check",
// "flag_check", "item_check". Unknown kinds are treated as satisfied.
type Requirement struct {
	Type     string `yaml:"type"`
	Stat     string `yaml:"stat,omitempty"`
	Flag     string `yaml:"flag,omitempty"`
	Item     string `yaml:"item,omitempty"`
	Operator string `yaml:"operator,omitempty"`
	Value    any    `yaml:"value,omitempty"`
	Count    int    `yaml:"count,omitempty"`
}

// Effect is a single declarative state mutation or signal instruction.
// The populated optional fields depend on Type.
type Effect struct {
	Type       string `yaml:"type"`
	Target     string `yaml:"target,omitempty"`
	Text       string `yaml:"text,omitempty"`
	Item       string `yaml:"item,omitempty"`
	Count      int    `yaml:"count,omitempty"`
	Pool       string `yaml:"pool,omitempty"`
	Flag       string `yaml:"flag,omitempty"`
	Value      any    `yaml:"value,omitempty"`
	Stat       string `yaml:"stat,omitempty"`
	Operator   string `yaml:"operator,omitempty"`
	Node       string `yaml:"node,omitempty"`
	NewState   string `yaml:"new_state,omitempty"`
	Object     string `yaml:"object,omitempty"`
	Enemy      string `yaml:"enemy,omitempty"`
	EnemyPool  string `yaml:"enemy_pool,omitempty"`
	Sequence   string `yaml:"sequence,omitempty"`
	Stage      int    `yaml:"stage,omitempty"`
	Reason     string `yaml:"reason,omitempty"`
	Ending     string `yaml:"ending,omitempty"`
	Amount     int    `yaml:"amount,omitempty"`
	Damage     int    `yaml:"damage,omitempty"`
	DamageType string `yaml:"damage_type,omitempty"`
}

// Action is a selectable option attached to a node or object state.
type Action struct {
	ID           string        `yaml:"id"`
	Type         string        `yaml:"type"`
	Label        string        `yaml:"label"`
	Target       string        `yaml:"target,omitempty"`
	Requirements []Requirement `yaml:"requirements,omitempty"`
	Effects      []Effect      `yaml:"effects,omitempty"`
	Description  string        `yaml:"description,omitempty"`
}

// NodeState is one state in a node's (or object's) state machine.
type NodeState struct {
	Description string       `yaml:"description"`
	Actions     []Action     `yaml:"actions,omitempty"`
	Trigger     *Requirement `yaml:"trigger,omitempty"`
}

// InteractiveObject is an object inside a node with its own state machine.
type InteractiveObject struct {
	ID           string               `yaml:"id"`
	Type         string               `yaml:"type"`
	States       map[string]NodeState `yaml:"states"`
	InitialState string               `yaml:"initial_state"`
}

// NodeMetadata carries display information for a node.
type NodeMetadata struct {
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description,omitempty"`
}

// Node is a location or event point in the game.
type Node struct {
	ID           string                        `yaml:"id"`
	Type         string                        `yaml:"type"`
	Metadata     NodeMetadata                  `yaml:"metadata"`
	States       map[string]NodeState          `yaml:"states"`
	InitialState string                        `yaml:"initial_state"`
	Objects      map[string]*InteractiveObject `yaml:"objects,omitempty"`
}

// WeightedOption is one entry in a weighted pool. Value is usually an
// item/enemy/spell ID string; a list value is an atomic set granted together.
type WeightedOption struct {
	Weight int `yaml:"weight"`
	Value  any `yaml:"value"`
}

// ItemPool is a named weighted pool of IDs (items, enemies, or spells).
type ItemPool struct {
	ID      string           `yaml:"id"`
	Options []WeightedOption `yaml:"options"`
}

// CombatStats are the depletable combat meters. SP is a shield absorbed
// before HP; PT is the pleasure meter that triggers climax at max.
type CombatStats struct {
	SP    int `yaml:"sp" json:"sp"`
	SPMax int `yaml:"sp_max" json:"sp_max"`
	HP    int `yaml:"hp" json:"hp"`
	HPMax int `yaml:"hp_max" json:"hp_max"`
	MP    int `yaml:"mp" json:"mp"`
	MPMax int `yaml:"mp_max" json:"mp_max"`
	PT    int `yaml:"pt" json:"pt"`
	PTMax int `yaml:"pt_max" json:"pt_max"`
}

// AbilityStats are the six fixed-range [0,100] attributes.
type AbilityStats struct {
	Sanity       int `yaml:"sanity" json:"sanity"`
	Strength     int `yaml:"strength" json:"strength"`
	Focus        int `yaml:"focus" json:"focus"`
	Intelligence int `yaml:"intelligence" json:"intelligence"`
	Knowledge    int `yaml:"knowledge" json:"knowledge"`
	Dexterity    int `yaml:"dexterity" json:"dexterity"`
}

// Brand is a persistent per-enemy attack debuff earned by a climax defeat.
// At most one per enemy ID; survives battles and save/load.
type Brand struct {
	EnemyID     string  `json:"enemy_id"`
	EnemyName   string  `json:"enemy_name"`
	DebuffRatio float64 `json:"debuff_ratio"`
}

// StatusModifier is a passive effect carried by an active status
// (e.g. type "prevent_action").
type StatusModifier struct {
	Type string `yaml:"type" json:"type"`
}

// StatusTick is a per-turn effect of an active status
// (e.g. type "damage" with a fixed amount).
type StatusTick struct {
	Type   string `yaml:"type" json:"type"`
	Damage int    `yaml:"damage,omitempty" json:"damage,omitempty"`
	Text   string `yaml:"text,omitempty" json:"text,omitempty"`
}

// StatusEffect is the immutable definition of a status.
type StatusEffect struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Duration    int              `yaml:"duration"`
	Effects     []StatusModifier `yaml:"effects,omitempty"`
	TickEffects []StatusTick     `yaml:"tick_effects,omitempty"`
}

// StatusEffectInstance is an active status on the player. The instance is
// removed once RemainingTurns reaches 0.
type StatusEffectInstance struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	RemainingTurns int              `json:"remaining_turns"`
	Effects        []StatusModifier `json:"effects,omitempty"`
	TickEffects    []StatusTick     `json:"tick_effects,omitempty"`
}

// Player holds everything attached to the player character.
type Player struct {
	Combat    CombatStats            `json:"combat_stats"`
	Ability   AbilityStats           `json:"ability_stats"`
	Inventory map[string]int         `json:"inventory"`
	Flags     map[string]any         `json:"flags"`
	Spells    []string               `json:"spells"`
	Statuses  []StatusEffectInstance `json:"status_effects"`
	Brands    []Brand                `json:"brands"`
}

// EnemyStats are an enemy template's fixed stats.
type EnemyStats struct {
	HP         int `yaml:"hp"`
	Atk        int `yaml:"atk"`
	Defense    int `yaml:"defense"`
	Matk       int `yaml:"matk"`
	Initiative int `yaml:"initiative"`
}

// EnemyRewards describe what defeating an enemy grants.
type EnemyRewards struct {
	Exp   int              `yaml:"exp,omitempty"`
	Drops []WeightedOption `yaml:"drops,omitempty"`
}

// EnemyText are the fixed narration strings for an enemy.
type EnemyText struct {
	Encounter string `yaml:"encounter,omitempty"`
	Defeat    string `yaml:"defeat,omitempty"`
	Victory   string `yaml:"victory,omitempty"`
}

// BehaviorCondition is a predicate inside a behavior-tree sequence node.
// Kinds: "check_player_stat", "check_self_stat", "cooldown_ready".
type BehaviorCondition struct {
	Type     string `yaml:"type"`
	Stat     string `yaml:"stat,omitempty"`
	Operator string `yaml:"operator,omitempty"`
	Value    int    `yaml:"value,omitempty"`
	Skill    string `yaml:"skill,omitempty"`
}

// BehaviorAction is the concrete action a behavior tree resolves to.
// Kinds: "normal_attack", "defend", "cast_spell", "bind_attack".
type BehaviorAction struct {
	Type      string `yaml:"type"`
	Text      string `yaml:"text,omitempty"`
	Spell     string `yaml:"spell,omitempty"`
	SpellPool string `yaml:"spell_pool,omitempty"`
	Sequence  string `yaml:"sequence,omitempty"`
	Cooldown  int    `yaml:"cooldown,omitempty"`
}

// BehaviorOption is a weighted candidate inside a weighted_random node.
type BehaviorOption struct {
	Weight int             `yaml:"weight"`
	Action *BehaviorAction `yaml:"action"`
}

// BehaviorNode is one node of an enemy AI decision tree. Kinds:
// "priority_selector", "sequence", "weighted_random".
type BehaviorNode struct {
	Type       string              `yaml:"type"`
	Name       string              `yaml:"name,omitempty"`
	Conditions []BehaviorCondition `yaml:"conditions,omitempty"`
	Action     *BehaviorAction     `yaml:"action,omitempty"`
	Children   []*BehaviorNode     `yaml:"children,omitempty"`
	Options    []BehaviorOption    `yaml:"options,omitempty"`
}

// Enemy is an immutable enemy template. Battles run against a fresh
// EnemyInstance, never against the template.
type Enemy struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description,omitempty"`
	Stats        EnemyStats        `yaml:"stats"`
	Rewards      EnemyRewards      `yaml:"rewards,omitempty"`
	Text         EnemyText         `yaml:"text,omitempty"`
	AttackTexts  []string          `yaml:"attack_texts,omitempty"`
	Spells       []string          `yaml:"spells,omitempty"`
	BehaviorTree *BehaviorNode     `yaml:"behavior_tree,omitempty"`
	Events       map[string]string `yaml:"events,omitempty"`
}

// EnemyInstance is the per-battle mutable copy of an enemy template.
type EnemyInstance struct {
	Def       *Enemy         `json:"-"`
	HP        int            `json:"hp"`
	Defending bool           `json:"defending"`
	Cooldowns map[string]int `json:"cooldowns"`
}

// ScalingSpec scales a spell effect with a caster ability stat.
type ScalingSpec struct {
	Stat  string  `yaml:"stat"`
	Ratio float64 `yaml:"ratio"`
}

// SpellEffect is one effect of a spell. Kinds: "deal_damage",
// "inflict_status".
type SpellEffect struct {
	Type       string       `yaml:"type"`
	DamageType string       `yaml:"damage_type,omitempty"`
	Base       int          `yaml:"base,omitempty"`
	Scaling    *ScalingSpec `yaml:"scaling,omitempty"`
	Status     string       `yaml:"status,omitempty"`
	Duration   int          `yaml:"duration,omitempty"`
	Chance     int          `yaml:"chance,omitempty"`
}

// SpellText are the narration strings for a spell. {{caster}} and
// {{target}} placeholders are substituted at cast time.
type SpellText struct {
	Cast string `yaml:"cast,omitempty"`
	Hit  string `yaml:"hit,omitempty"`
	Miss string `yaml:"miss,omitempty"`
}

// Spell is a castable spell or skill.
type Spell struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Cost        map[string]int `yaml:"cost,omitempty"`
	Effects     []SpellEffect  `yaml:"effects,omitempty"`
	Text        SpellText      `yaml:"text,omitempty"`
}

// Item is an inventory item definition.
type Item struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Type        string   `yaml:"type"`
	Effects     []Effect `yaml:"effects,omitempty"`
	Value       int      `yaml:"value,omitempty"`
}

// SuccessCheck decides whether a custom bind action succeeds. Kinds:
// "fixed", "stat_based", "formula".
type SuccessCheck struct {
	Type       string         `yaml:"type"`
	Rate       int            `yaml:"rate,omitempty"`
	BaseRate   int            `yaml:"base_rate,omitempty"`
	Formula    string         `yaml:"formula,omitempty"`
	Expression string         `yaml:"expression,omitempty"`
	Modifiers  []RateModifier `yaml:"modifiers,omitempty"`
}

// RateModifier is an additive success-rate adjustment. Kinds:
// "flag_bonus", "item_bonus", "status_penalty".
type RateModifier struct {
	Type    string `yaml:"type"`
	Flag    string `yaml:"flag,omitempty"`
	Item    string `yaml:"item,omitempty"`
	Status  string `yaml:"status,omitempty"`
	Bonus   int    `yaml:"bonus,omitempty"`
	Penalty int    `yaml:"penalty,omitempty"`
}

// Outcome is the declared result branch of a custom bind action.
type Outcome struct {
	Effects       []Effect `yaml:"effects,omitempty"`
	EnemyReaction string   `yaml:"enemy_reaction,omitempty"`
}

// CustomAction is a stage-specific bind-sequence action.
type CustomAction struct {
	ID           string         `yaml:"id"`
	Label        string         `yaml:"label"`
	Description  string         `yaml:"description,omitempty"`
	Requirements []Requirement  `yaml:"requirements,omitempty"`
	Cost         map[string]int `yaml:"cost,omitempty"`
	SuccessCheck *SuccessCheck  `yaml:"success_check,omitempty"`
	OnSuccess    *Outcome       `yaml:"on_success,omitempty"`
	OnFailure    *Outcome       `yaml:"on_failure,omitempty"`
}

// ChoiceOverride adjusts or replaces a default bind choice for one stage.
// A nil Enabled means enabled.
type ChoiceOverride struct {
	Enabled             *bool  `yaml:"enabled,omitempty"`
	OverrideResult      string `yaml:"override_result,omitempty"`
	SuccessRateModifier int    `yaml:"success_rate_modifier,omitempty"`
	Reason              string `yaml:"reason,omitempty"`
}

// BindStage is one stage of a bind sequence.
type BindStage struct {
	Stage          int                       `yaml:"stage"`
	Description    string                    `yaml:"description"`
	PlayerTexts    map[string]any            `yaml:"player_texts,omitempty"`
	EnemyReactions map[string]string         `yaml:"enemy_reactions,omitempty"`
	Overrides      map[string]ChoiceOverride `yaml:"default_choices_override,omitempty"`
	CustomActions  []CustomAction            `yaml:"custom_actions,omitempty"`
	LoopEffects    []Effect                  `yaml:"loop_effects,omitempty"`
}

// BindConfig is sequence-wide tuning.
type BindConfig struct {
	BaseDifficulty int            `yaml:"base_difficulty"`
	EscapeTarget   string         `yaml:"escape_target,omitempty"`
	LoopDamage     map[string]int `yaml:"loop_damage,omitempty"`
}

// BindMetadata carries display information for a bind sequence.
type BindMetadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// BindSequence is a staged restraint event definition.
type BindSequence struct {
	ID       string       `yaml:"id"`
	Metadata BindMetadata `yaml:"metadata"`
	Config   BindConfig   `yaml:"config"`
	Stages   []BindStage  `yaml:"stages"`
}

// ModMetadata describes a loaded mod.
type ModMetadata struct {
	Name        string   `yaml:"name"`
	Author      string   `yaml:"author,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// ModInfo is the top-level mod manifest.
type ModInfo struct {
	ID         string      `yaml:"id"`
	Version    string      `yaml:"version"`
	Metadata   ModMetadata `yaml:"metadata"`
	EntryPoint string      `yaml:"entry_point"`
}

// GameState is the complete mutable game state. Exactly one is live at a
// time; every engine call mutates it in place.
type GameState struct {
	CurrentNode  string                       `json:"current_node"`
	Player       Player                       `json:"player"`
	VisitedNodes map[string]bool              `json:"visited_nodes"`
	NodeStates   map[string]string            `json:"node_states"`
	ObjectStates map[string]map[string]string `json:"object_states"`
	InBattle     bool                         `json:"in_battle"`
	InBind       bool                         `json:"in_bind_sequence"`
	CurrentEnemy *EnemyInstance               `json:"-"`
	BindSequence string                       `json:"current_bind_sequence,omitempty"`
	BindStage    int                          `json:"current_bind_stage"`
	GameOver     bool                         `json:"game_over"`
	GameClear    bool                         `json:"game_clear"`
	RNGSeed      int64                        `json:"rng_seed"`
	RNGPosition  int64                        `json:"rng_position"`
}
