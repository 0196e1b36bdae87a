// Package bind runs staged restraint sequences. The player works the
// stage counter down to escape; failures push it toward the final
// stage, where every further failure loops its penalty effects.
package bind

import (
	"fmt"

	"github.com/seika-games/modcore/engine/effects"
	"github.com/seika-games/modcore/engine/formula"
	"github.com/seika-games/modcore/engine/rng"
	"github.com/seika-games/modcore/engine/rules"
	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/engine/stats"
	"github.com/seika-games/modcore/types"
)

// Default choice kinds.
const (
	ChoiceResist     = "resist"
	ChoiceResistHard = "resist_hard"
	ChoiceWait       = "wait"
)

const (
	minRate      = 5
	maxRate      = 95
	failPT       = 10
	hardFailPT   = 25
	waitBonus    = 20
	fallbackRate = 50
	sureRate     = 100
	escapedStage = -1
)

// Choice is one selectable option at the current stage.
type Choice struct {
	ID          string
	Label       string
	Description string
	Custom      bool
}

// System drives one bind sequence at a time against the shared state.
type System struct {
	state  *types.GameState
	defs   *state.Defs
	rng    *rng.RNG
	interp *effects.Interpreter

	seq        *types.BindSequence
	active     bool
	escaped    bool
	carryBonus int
}

// NewSystem creates a bind system sharing the caller's state, defs,
// RNG, and effect interpreter.
func NewSystem(s *types.GameState, defs *state.Defs, r *rng.RNG, interp *effects.Interpreter) *System {
	return &System{state: s, defs: defs, rng: r, interp: interp}
}

// IsActive reports whether a sequence is currently running.
func (b *System) IsActive() bool { return b.active }

// Escaped reports whether the last sequence ended by escape.
func (b *System) Escaped() bool { return b.escaped }

// Stage returns the current stage number.
func (b *System) Stage() int { return b.state.BindStage }

// StartSequence begins the named sequence at the given stage.
func (b *System) StartSequence(id string, stage int) (*effects.Result, error) {
	seq, ok := b.defs.Sequences[id]
	if !ok {
		return nil, fmt.Errorf("bind: unknown sequence %q", id)
	}
	b.seq = seq
	b.active = true
	b.escaped = false
	b.carryBonus = 0
	b.state.InBind = true
	b.state.BindSequence = id
	b.state.BindStage = stage

	res := effects.NewResult()
	if seq.Metadata.Description != "" {
		res.AddMessage(seq.Metadata.Description)
	}
	b.describeStage(res)
	return res, nil
}

// AvailableChoices lists the selectable options at the current stage:
// the default choices not disabled by an override, then the custom
// actions whose requirements pass and whose cost is affordable.
func (b *System) AvailableChoices() []Choice {
	stage := b.currentStage()
	var out []Choice
	defaults := []struct {
		id, label, desc string
	}{
		{ChoiceResist, "Struggle", "Try to work a stage looser."},
		{ChoiceResistHard, "Break free", "Gamble everything on one violent pull."},
		{ChoiceWait, "Conserve strength", "Yield this turn to strike harder next."},
	}
	for _, d := range defaults {
		if stage != nil {
			if ov, ok := stage.Overrides[d.id]; ok && ov.Enabled != nil && !*ov.Enabled {
				continue
			}
		}
		out = append(out, Choice{ID: d.id, Label: d.label, Description: d.desc})
	}
	if stage != nil {
		for _, ca := range stage.CustomActions {
			if !rules.CheckAll(ca.Requirements, b.state) {
				continue
			}
			if !b.canAfford(ca.Cost) {
				continue
			}
			out = append(out, Choice{ID: ca.ID, Label: ca.Label, Description: ca.Description, Custom: true})
		}
	}
	return out
}

// ExecuteChoice runs one default choice or, when id names a custom
// action at the current stage, that action.
func (b *System) ExecuteChoice(id string) (*effects.Result, error) {
	if !b.active || b.seq == nil {
		return nil, fmt.Errorf("bind: no active sequence")
	}
	res := effects.NewResult()
	stage := b.currentStage()

	switch id {
	case ChoiceResist:
		b.resolveResist(stage, res)
	case ChoiceResistHard:
		b.resolveResistHard(stage, res)
	case ChoiceWait:
		b.resolveWait(stage, res)
	default:
		ca := findCustomAction(stage, id)
		if ca == nil {
			return nil, fmt.Errorf("bind: unknown choice %q", id)
		}
		if err := b.resolveCustom(stage, ca, res); err != nil {
			return nil, err
		}
	}

	b.settle(res)
	return res, nil
}

func (b *System) resolveResist(stage *types.BindStage, res *effects.Result) {
	ov := override(stage, ChoiceResist)
	// A forced failure only pushes the stage; the PT hit is reserved
	// for a lost roll.
	if done := b.applyOverrideResult(ov, res, func() { b.shiftStage(-1) }, func() {
		b.shiftStage(+1)
	}); done {
		return
	}

	rate := clampRate(100 - b.seq.Config.BaseDifficulty + ov.SuccessRateModifier + b.takeBonus())
	if b.rng.Percent(rate) {
		b.narrate(stage, ChoiceResist, true, res, "You work yourself a little looser!")
		b.shiftStage(-1)
	} else {
		b.narrate(stage, ChoiceResist, false, res, "The grip only tightens...")
		b.shiftStage(+1)
		b.addPT(failPT, res)
	}
}

func (b *System) resolveResistHard(stage *types.BindStage, res *effects.Result) {
	ov := override(stage, ChoiceResistHard)
	if done := b.applyOverrideResult(ov, res, func() { b.state.BindStage = escapedStage }, func() {
		b.shiftStage(+2)
		b.addPT(hardFailPT, res)
	}); done {
		return
	}

	rate := clampRate(50 - b.seq.Config.BaseDifficulty/2 + ov.SuccessRateModifier + b.takeBonus())
	if b.rng.Percent(rate) {
		b.narrate(stage, ChoiceResistHard, true, res, "With one desperate wrench you tear yourself free!")
		b.state.BindStage = escapedStage
	} else {
		b.narrate(stage, ChoiceResistHard, false, res, "The wild struggle costs you dearly...")
		b.shiftStage(+1)
		b.addPT(hardFailPT, res)
	}
}

func (b *System) resolveWait(stage *types.BindStage, res *effects.Result) {
	ov := override(stage, ChoiceWait)
	// A forced wait result leaves the stage where it is either way.
	if done := b.applyOverrideResult(ov, res, func() {}, func() {}); done {
		return
	}
	b.narrate(stage, ChoiceWait, true, res, "You go limp and gather your strength...")
	b.shiftStage(+1)
	b.carryBonus = waitBonus
}

// applyOverrideResult short-circuits a choice whose override forces the
// outcome. Returns true when the choice was decided without a roll.
func (b *System) applyOverrideResult(ov types.ChoiceOverride, res *effects.Result, onSuccess, onFail func()) bool {
	switch ov.OverrideResult {
	case "auto_success":
		if ov.Reason != "" {
			res.AddMessage(ov.Reason)
		}
		onSuccess()
		return true
	case "auto_fail":
		if ov.Reason != "" {
			res.AddMessage(ov.Reason)
		}
		onFail()
		return true
	}
	return false
}

func (b *System) resolveCustom(stage *types.BindStage, ca *types.CustomAction, res *effects.Result) error {
	if !rules.CheckAll(ca.Requirements, b.state) {
		return fmt.Errorf("bind: requirements not met for %q", ca.ID)
	}
	if !b.canAfford(ca.Cost) {
		return fmt.Errorf("bind: cannot afford %q", ca.ID)
	}
	b.payCost(ca.Cost)

	success := b.rng.Percent(b.successRate(ca.SuccessCheck))
	outcome := ca.OnFailure
	if success {
		outcome = ca.OnSuccess
	}
	if outcome != nil {
		b.interp.ApplyInto(outcome.Effects, res)
		if outcome.EnemyReaction != "" {
			res.AddMessage(outcome.EnemyReaction)
		}
	}
	return nil
}

// successRate resolves a custom action's success check to a clamped
// percentage. A missing or unrecognized check never blocks the action;
// a broken formula falls back to even odds.
func (b *System) successRate(check *types.SuccessCheck) int {
	if check == nil {
		return sureRate
	}
	switch check.Type {
	case "fixed":
		return clampRate(check.Rate)
	case "stat_based":
		rate := check.BaseRate
		if check.Formula != "" {
			v, err := formula.Eval(check.Formula, b.statLookup)
			if err != nil {
				return fallbackRate
			}
			rate += v
		}
		for _, mod := range check.Modifiers {
			rate += b.modifierDelta(mod)
		}
		return clampRate(rate)
	case "formula":
		v, err := formula.Eval(check.Expression, b.statLookup)
		if err != nil {
			return fallbackRate
		}
		return clampRate(v)
	}
	return sureRate
}

func (b *System) modifierDelta(mod types.RateModifier) int {
	switch mod.Type {
	case "flag_bonus":
		if truthy(state.GetFlag(b.state, mod.Flag)) {
			return mod.Bonus
		}
	case "item_bonus":
		if state.ItemCount(b.state, mod.Item) > 0 {
			return mod.Bonus
		}
	case "status_penalty":
		if state.HasStatus(&b.state.Player, mod.Status) {
			return -mod.Penalty
		}
	}
	return 0
}

func (b *System) statLookup(name string) (int, bool) {
	switch stats.Canon(name) {
	case stats.SP, stats.SPMax, stats.HP, stats.HPMax, stats.MP, stats.MPMax,
		stats.PT, stats.PTMax, stats.Sanity, stats.Strength, stats.Focus,
		stats.Intelligence, stats.Knowledge, stats.Dexterity:
		return stats.Get(&b.state.Player, name), true
	}
	return 0, false
}

// settle reconciles the stage counter after a choice: escape below
// zero, loop penalties past the final stage, then narration for the
// stage the player lands on.
func (b *System) settle(res *effects.Result) {
	s := b.state
	if s.GameOver || s.GameClear {
		b.active = false
		s.InBind = false
		return
	}
	if s.BindStage < 0 {
		b.escaped = true
		b.active = false
		s.InBind = false
		s.BindSequence = ""
		s.BindStage = 0
		res.AddMessage("You break free!")
		if target := b.seq.Config.EscapeTarget; target != "" && res.NavigationTarget == "" {
			res.NavigationTarget = target
		}
		return
	}
	if max := b.maxStage(); s.BindStage > max {
		s.BindStage = max
		b.applyLoopPenalty(res)
	}
	b.describeStage(res)
}

// applyLoopPenalty fires when the player fails past the final stage:
// the configured loop damage lands, then the stage's loop effects run
// once.
func (b *System) applyLoopPenalty(res *effects.Result) {
	for stat, amount := range b.seq.Config.LoopDamage {
		switch stats.Canon(stat) {
		case stats.PT:
			b.addPT(amount, res)
		case stats.HP:
			p := &b.state.Player
			stats.Set(p, stats.HP, p.Combat.HP-amount)
			res.AddMessage(fmt.Sprintf("You take %d damage!", amount))
		}
	}
	if stage := b.currentStage(); stage != nil && len(stage.LoopEffects) > 0 {
		b.interp.ApplyInto(stage.LoopEffects, res)
	}
}

func (b *System) describeStage(res *effects.Result) {
	if stage := b.currentStage(); stage != nil && stage.Description != "" {
		res.AddMessage(stage.Description)
	}
}

// narrate emits the stage's player text for a choice result plus the
// enemy reaction, falling back to fixed lines.
func (b *System) narrate(stage *types.BindStage, kind string, success bool, res *effects.Result, fallback string) {
	suffix := "_fail"
	if success {
		suffix = "_success"
	}
	text := b.playerText(stage, kind+suffix)
	if text == "" {
		text = b.playerText(stage, kind)
	}
	if text == "" {
		text = fallback
	}
	res.AddMessage(text)
	if stage != nil {
		if reaction, ok := stage.EnemyReactions[kind+suffix]; ok {
			res.AddMessage(reaction)
		} else if reaction, ok := stage.EnemyReactions[kind]; ok {
			res.AddMessage(reaction)
		}
	}
}

// playerText resolves a player_texts entry. The value is a plain
// string or a random_select record with weighted-equal options.
func (b *System) playerText(stage *types.BindStage, key string) string {
	if stage == nil {
		return ""
	}
	raw, ok := stage.PlayerTexts[key]
	if !ok {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		if v["type"] != "random_select" {
			return ""
		}
		opts, _ := v["options"].([]any)
		if len(opts) == 0 {
			return ""
		}
		s, _ := opts[b.rng.Intn(len(opts))].(string)
		return s
	}
	return ""
}

func (b *System) shiftStage(delta int) {
	b.state.BindStage += delta
}

func (b *System) addPT(amount int, res *effects.Result) {
	p := &b.state.Player
	stats.Set(p, stats.PT, p.Combat.PT+amount)
	res.AddMessage(fmt.Sprintf("Pleasure rises by %d...", amount))
}

// takeBonus consumes the banked wait bonus.
func (b *System) takeBonus() int {
	bonus := b.carryBonus
	b.carryBonus = 0
	return bonus
}

// Cost keys name either a combat stat (mp, hp, sp, pt) or an item ID.
func (b *System) canAfford(cost map[string]int) bool {
	for key, count := range cost {
		if statCost(key) {
			if stats.Get(&b.state.Player, key) < count {
				return false
			}
		} else if state.ItemCount(b.state, key) < count {
			return false
		}
	}
	return true
}

func (b *System) payCost(cost map[string]int) {
	for key, count := range cost {
		if statCost(key) {
			stats.Modify(&b.state.Player, key, "-", count)
		} else {
			state.RemoveItem(b.state, key, count)
		}
	}
}

func statCost(key string) bool {
	switch stats.Canon(key) {
	case stats.HP, stats.SP, stats.MP, stats.PT:
		return true
	}
	return false
}

func (b *System) currentStage() *types.BindStage {
	if b.seq == nil {
		return nil
	}
	for i := range b.seq.Stages {
		if b.seq.Stages[i].Stage == b.state.BindStage {
			return &b.seq.Stages[i]
		}
	}
	return nil
}

func (b *System) maxStage() int {
	max := 0
	for _, st := range b.seq.Stages {
		if st.Stage > max {
			max = st.Stage
		}
	}
	return max
}

func override(stage *types.BindStage, kind string) types.ChoiceOverride {
	if stage == nil {
		return types.ChoiceOverride{}
	}
	return stage.Overrides[kind]
}

func findCustomAction(stage *types.BindStage, id string) *types.CustomAction {
	if stage == nil {
		return nil
	}
	for i := range stage.CustomActions {
		if stage.CustomActions[i].ID == id {
			return &stage.CustomActions[i]
		}
	}
	return nil
}

func clampRate(rate int) int {
	if rate < minRate {
		return minRate
	}
	if rate > maxRate {
		return maxRate
	}
	return rate
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	}
	return true
}
