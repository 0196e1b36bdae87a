// Package battle runs turn-based encounters. A System owns one battle
// at a time; the caller drives it with ExecutePlayerAction until
// IsActive reports false, then reads the Outcome.
package battle

import (
	"fmt"
	"strings"

	"github.com/seika-games/modcore/engine/behavior"
	"github.com/seika-games/modcore/engine/effects"
	"github.com/seika-games/modcore/engine/rng"
	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/engine/stats"
	"github.com/seika-games/modcore/types"
)

// Outcome is the terminal result of a battle.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomeEscaped Outcome = "escaped"
)

// Player action kinds accepted by ExecutePlayerAction.
const (
	ActionAttack = "attack"
	ActionDefend = "defend"
	ActionSpell  = "spell"
	ActionItem   = "item"
	ActionEscape = "escape"
)

const (
	spellMissRate   = 10
	damageJitter    = 0.10
	spellDefense    = 5
	defeatBrandRate = 0.2
)

// System drives one battle against one enemy instance.
type System struct {
	state  *types.GameState
	defs   *state.Defs
	rng    *rng.RNG
	interp *effects.Interpreter

	active       bool
	outcome      Outcome
	turn         int
	playerFirst  bool
	defending    bool
	climaxDefeat bool
}

// NewSystem creates a battle system sharing the caller's state, defs,
// RNG, and effect interpreter.
func NewSystem(s *types.GameState, defs *state.Defs, r *rng.RNG, interp *effects.Interpreter) *System {
	return &System{state: s, defs: defs, rng: r, interp: interp}
}

// IsActive reports whether a battle is currently running.
func (b *System) IsActive() bool { return b.active }

// Outcome returns the terminal result once the battle is over.
func (b *System) Outcome() Outcome { return b.outcome }

// Enemy returns the current enemy instance, or nil outside battle.
func (b *System) Enemy() *types.EnemyInstance { return b.state.CurrentEnemy }

// PlayerActions lists the fixed battle menu.
func (b *System) PlayerActions() []string {
	return []string{"Attack", "Defend", "Cast Spell", "Use Item", "Escape"}
}

// Start begins a battle against the named enemy. Initiative is decided
// by dexterity against the enemy's initiative stat; on a loss the enemy
// acts once before the player's first command.
func (b *System) Start(enemyID string) (*effects.Result, error) {
	def, ok := b.defs.Enemies[enemyID]
	if !ok {
		return nil, fmt.Errorf("battle: unknown enemy %q", enemyID)
	}

	b.active = true
	b.outcome = OutcomeNone
	b.turn = 1
	b.defending = false
	b.climaxDefeat = false
	b.state.InBattle = true
	b.state.CurrentEnemy = state.NewEnemyInstance(def)

	res := effects.NewResult()
	if def.Text.Encounter != "" {
		res.AddMessage(def.Text.Encounter)
	} else {
		res.AddMessage(fmt.Sprintf("%s appears!", def.Name))
	}

	b.playerFirst = b.state.Player.Ability.Dexterity >= def.Stats.Initiative
	if !b.playerFirst {
		res.AddMessage(fmt.Sprintf("%s moves first!", def.Name))
		b.enemyTurn(res)
		b.CheckPlayerDefeat(res)
	}
	return res, nil
}

// StartFromPool draws an enemy ID from a weighted pool and starts the battle.
func (b *System) StartFromPool(poolID string) (*effects.Result, error) {
	pool, ok := b.defs.Pools[poolID]
	if !ok || len(pool.Options) == 0 {
		return nil, fmt.Errorf("battle: unknown enemy pool %q", poolID)
	}
	weights := make([]int, len(pool.Options))
	for i, opt := range pool.Options {
		weights[i] = opt.Weight
	}
	id, _ := pool.Options[b.rng.WeightedIndex(weights)].Value.(string)
	return b.Start(id)
}

// ExecutePlayerAction runs one full battle round: the player's status
// ticks, the chosen command, then the enemy's reply. arg carries the
// spell or item ID for those action kinds.
func (b *System) ExecutePlayerAction(kind, arg string) (*effects.Result, error) {
	if !b.active || b.state.CurrentEnemy == nil {
		return nil, fmt.Errorf("battle: no active battle")
	}

	res := effects.NewResult()
	b.defending = false

	b.applyStatusTicks(res)
	if b.CheckPlayerDefeat(res) {
		return res, nil
	}

	if state.ActionPrevented(&b.state.Player) {
		res.AddMessage("You cannot move!")
		b.enemyTurn(res)
		b.CheckPlayerDefeat(res)
		b.endRound(res)
		return res, nil
	}

	switch kind {
	case ActionAttack:
		b.playerAttack(res)
	case ActionDefend:
		b.defending = true
		res.AddMessage("You brace yourself.")
	case ActionSpell:
		if !b.playerCast(arg, res) {
			return res, nil
		}
	case ActionItem:
		if !b.playerUseItem(arg, res) {
			return res, nil
		}
	case ActionEscape:
		if b.tryEscape(res) {
			return res, nil
		}
	default:
		return nil, fmt.Errorf("battle: unknown action %q", kind)
	}

	if b.checkEnemyDefeat(res) {
		return res, nil
	}

	b.enemyTurn(res)
	if b.CheckPlayerDefeat(res) {
		return res, nil
	}
	b.endRound(res)
	return res, nil
}

func (b *System) applyStatusTicks(res *effects.Result) {
	p := &b.state.Player
	for _, st := range p.Statuses {
		for _, tick := range st.TickEffects {
			if tick.Type != "damage" || tick.Damage <= 0 {
				continue
			}
			// Tick damage goes straight to HP, past the shield.
			stats.Set(p, stats.HP, p.Combat.HP-tick.Damage)
			if tick.Text != "" {
				res.AddMessage(tick.Text)
			} else {
				res.AddMessage(fmt.Sprintf("%s deals %d damage!", st.Name, tick.Damage))
			}
		}
	}
}

func (b *System) playerAttack(res *effects.Result) {
	p := &b.state.Player
	enemy := b.state.CurrentEnemy

	dmg := 20 + p.Ability.Strength/5
	if ratio := state.BrandDebuff(p, enemy.Def.ID); ratio > 0 {
		dmg = int(float64(dmg) * (1 - ratio))
		res.AddMessage("The brand saps your strength...")
	}
	def := enemy.Def.Stats.Defense / 2
	if enemy.Defending {
		def *= 2
	}
	dmg = b.rng.Jitter(dmg-def, damageJitter)
	if dmg < 1 {
		dmg = 1
	}
	enemy.HP -= dmg
	res.AddMessage(fmt.Sprintf("You strike %s for %d damage!", enemy.Def.Name, dmg))
}

func (b *System) playerCast(spellID string, res *effects.Result) bool {
	p := &b.state.Player
	spell, ok := b.defs.Spells[spellID]
	if !ok || !knowsSpell(p, spellID) {
		res.AddMessage("You don't know that spell.")
		return false
	}
	if !b.paySpellCost(spell, res) {
		return false
	}

	if spell.Text.Cast != "" {
		res.AddMessage(substitute(spell.Text.Cast, "You", b.state.CurrentEnemy.Def.Name))
	} else {
		res.AddMessage(fmt.Sprintf("You cast %s!", spell.Name))
	}
	if b.rng.Percent(spellMissRate) {
		if spell.Text.Miss != "" {
			res.AddMessage(substitute(spell.Text.Miss, "You", b.state.CurrentEnemy.Def.Name))
		} else {
			res.AddMessage("The spell fizzles!")
		}
		return true
	}

	for _, eff := range spell.Effects {
		if eff.Type != "deal_damage" {
			continue
		}
		dmg := eff.Base
		if eff.Scaling != nil {
			dmg += int(float64(stats.Get(p, eff.Scaling.Stat)) * eff.Scaling.Ratio)
		}
		dmg = b.rng.Jitter(dmg, damageJitter)
		if dmg < 1 {
			dmg = 1
		}
		b.state.CurrentEnemy.HP -= dmg
		if spell.Text.Hit != "" {
			res.AddMessage(substitute(spell.Text.Hit, "You", b.state.CurrentEnemy.Def.Name))
		}
		res.AddMessage(fmt.Sprintf("%s takes %d damage!", b.state.CurrentEnemy.Def.Name, dmg))
	}
	return true
}

func (b *System) paySpellCost(spell *types.Spell, res *effects.Result) bool {
	p := &b.state.Player
	for stat, cost := range spell.Cost {
		if stats.Get(p, stat) < cost {
			res.AddMessage(fmt.Sprintf("Not enough %s to cast %s.", stats.Canon(stat), spell.Name))
			return false
		}
	}
	for stat, cost := range spell.Cost {
		stats.Modify(p, stat, "-", cost)
	}
	return true
}

func (b *System) playerUseItem(itemID string, res *effects.Result) bool {
	item, ok := b.defs.Items[itemID]
	if !ok || state.ItemCount(b.state, itemID) <= 0 {
		res.AddMessage("You don't have that item.")
		return false
	}
	if item.Type == "consumable" {
		state.RemoveItem(b.state, itemID, 1)
	}
	res.AddMessage(fmt.Sprintf("You use %s.", item.Name))
	b.interp.ApplyInto(item.Effects, res)
	return true
}

// tryEscape reports true when the round ends immediately, either by a
// successful escape or by defeat during the enemy's free attack.
func (b *System) tryEscape(res *effects.Result) bool {
	enemy := b.state.CurrentEnemy
	p := 0.5 + 0.01*float64(b.state.Player.Ability.Dexterity-enemy.Def.Stats.Initiative)
	if p < 0.1 {
		p = 0.1
	}
	if p > 0.9 {
		p = 0.9
	}
	if b.rng.Chance(p) {
		res.AddMessage("You got away!")
		b.finish(OutcomeEscaped)
		return true
	}
	res.AddMessage("You can't get away!")
	return false
}

func (b *System) enemyTurn(res *effects.Result) {
	enemy := b.state.CurrentEnemy
	if enemy == nil || !b.active {
		return
	}
	enemy.Defending = false
	b.tickCooldowns(enemy)

	act := behavior.Evaluate(enemy.Def.BehaviorTree, &b.state.Player, enemy, b.rng)
	if act == nil {
		act = &types.BehaviorAction{Type: "normal_attack"}
	}

	switch act.Type {
	case "defend":
		enemy.Defending = true
		if act.Text != "" {
			res.AddMessage(act.Text)
		} else {
			res.AddMessage(fmt.Sprintf("%s guards itself.", enemy.Def.Name))
		}
	case "cast_spell":
		b.enemyCast(act, res)
	case "bind_attack":
		b.enemyBindAttack(act, res)
	default:
		b.enemyAttack(act.Text, res)
	}
}

func (b *System) enemyAttack(text string, res *effects.Result) {
	enemy := b.state.CurrentEnemy
	if text == "" && len(enemy.Def.AttackTexts) > 0 {
		text = rng.Pick(b.rng, enemy.Def.AttackTexts)
	}
	if text != "" {
		res.AddMessage(text)
	} else {
		res.AddMessage(fmt.Sprintf("%s attacks!", enemy.Def.Name))
	}

	dmg := b.rng.Jitter(enemy.Def.Stats.Atk, damageJitter)
	if b.defending {
		dmg /= 2
		res.AddMessage("Your guard softens the blow.")
	}
	if dmg < 1 {
		dmg = 1
	}
	b.DealDamageToPlayer(dmg, false, res)
}

func (b *System) enemyCast(act *types.BehaviorAction, res *effects.Result) {
	spellID := act.Spell
	if spellID == "" && act.SpellPool != "" {
		if pool, ok := b.defs.Pools[act.SpellPool]; ok && len(pool.Options) > 0 {
			weights := make([]int, len(pool.Options))
			for i, opt := range pool.Options {
				weights[i] = opt.Weight
			}
			spellID, _ = pool.Options[b.rng.WeightedIndex(weights)].Value.(string)
		}
	}
	spell, ok := b.defs.Spells[spellID]
	if !ok {
		b.enemyAttack(act.Text, res)
		return
	}
	enemy := b.state.CurrentEnemy
	if act.Cooldown > 0 {
		enemy.Cooldowns[spellID] = act.Cooldown
	}

	if spell.Text.Cast != "" {
		res.AddMessage(substitute(spell.Text.Cast, enemy.Def.Name, "you"))
	} else {
		res.AddMessage(fmt.Sprintf("%s casts %s!", enemy.Def.Name, spell.Name))
	}
	if b.rng.Percent(spellMissRate) {
		if spell.Text.Miss != "" {
			res.AddMessage(substitute(spell.Text.Miss, enemy.Def.Name, "you"))
		} else {
			res.AddMessage("But it misses!")
		}
		return
	}

	for _, eff := range spell.Effects {
		switch eff.Type {
		case "deal_damage":
			b.enemySpellDamage(spell, eff, res)
		case "inflict_status":
			b.inflictStatus(eff, res)
		}
	}
}

func (b *System) enemySpellDamage(spell *types.Spell, eff types.SpellEffect, res *effects.Result) {
	enemy := b.state.CurrentEnemy
	dmg := eff.Base
	if eff.Scaling != nil {
		dmg += int(float64(enemySpellStat(enemy, eff.Scaling.Stat)) * eff.Scaling.Ratio)
	}
	dmg = b.rng.Jitter(dmg, damageJitter)

	if spell.Text.Hit != "" {
		res.AddMessage(substitute(spell.Text.Hit, enemy.Def.Name, "you"))
	}
	if eff.DamageType == "pt" {
		b.DealPTDamage(dmg, res)
		return
	}
	if b.defending {
		dmg -= spellDefense
	}
	if dmg < 1 {
		dmg = 1
	}
	b.spellDamageToPlayer(dmg, res)
}

// spellDamageToPlayer routes spell damage through the shield. Guarding
// halves only the HP remainder, never the shield portion.
func (b *System) spellDamageToPlayer(amount int, res *effects.Result) {
	p := &b.state.Player
	rest := amount
	if p.Combat.SP > 0 {
		shield := amount
		if shield > p.Combat.SP {
			shield = p.Combat.SP
		}
		stats.Set(p, stats.SP, p.Combat.SP-shield)
		res.AddMessage(fmt.Sprintf("Your composure absorbs %d damage.", shield))
		if p.Combat.SP == 0 {
			res.AddMessage("Your composure shatters!")
		}
		rest = amount - shield
	}
	if rest <= 0 {
		return
	}
	if b.defending {
		rest /= 2
		if rest < 1 {
			rest = 1
		}
		res.AddMessage("Your guard softens the blow.")
	}
	stats.Set(p, stats.HP, p.Combat.HP-rest)
	res.AddMessage(fmt.Sprintf("You take %d damage!", rest))
}

func (b *System) inflictStatus(eff types.SpellEffect, res *effects.Result) {
	def, ok := b.defs.Statuses[eff.Status]
	if !ok {
		return
	}
	chance := eff.Chance
	if chance == 0 {
		chance = 100
	}
	if !b.rng.Percent(chance) {
		return
	}
	p := &b.state.Player
	duration := eff.Duration
	if duration == 0 {
		duration = def.Duration
	}
	for i := range p.Statuses {
		if p.Statuses[i].ID == def.ID {
			if p.Statuses[i].RemainingTurns < duration {
				p.Statuses[i].RemainingTurns = duration
			}
			return
		}
	}
	p.Statuses = append(p.Statuses, types.StatusEffectInstance{
		ID:             def.ID,
		Name:           def.Name,
		RemainingTurns: duration,
		Effects:        def.Effects,
		TickEffects:    def.TickEffects,
	})
	res.AddMessage(fmt.Sprintf("You are afflicted with %s!", def.Name))
}

// enemyBindAttack only lands when the shield is fully broken; otherwise
// it degrades to a normal attack.
func (b *System) enemyBindAttack(act *types.BehaviorAction, res *effects.Result) {
	enemy := b.state.CurrentEnemy
	if b.state.Player.Combat.SP > 0 || act.Sequence == "" {
		b.enemyAttack(act.Text, res)
		return
	}
	if act.Text != "" {
		res.AddMessage(act.Text)
	}
	cooldown := act.Cooldown
	if cooldown == 0 {
		cooldown = 3
	}
	enemy.Cooldowns[act.Sequence] = cooldown
	res.BindSequence = act.Sequence
	res.BindStage = 0
}

func (b *System) tickCooldowns(enemy *types.EnemyInstance) {
	for skill, left := range enemy.Cooldowns {
		left--
		if left <= 0 {
			delete(enemy.Cooldowns, skill)
		} else {
			enemy.Cooldowns[skill] = left
		}
	}
}

// DealDamageToPlayer routes damage through the SP shield. A broken
// shield or an explicit bypass sends the full amount to HP.
func (b *System) DealDamageToPlayer(amount int, bypassShield bool, res *effects.Result) {
	p := &b.state.Player
	if amount <= 0 {
		return
	}
	if bypassShield || p.Combat.SP <= 0 {
		stats.Set(p, stats.HP, p.Combat.HP-amount)
		res.AddMessage(fmt.Sprintf("You take %d damage!", amount))
		return
	}
	shield := amount
	if shield > p.Combat.SP {
		shield = p.Combat.SP
	}
	stats.Set(p, stats.SP, p.Combat.SP-shield)
	res.AddMessage(fmt.Sprintf("Your composure absorbs %d damage.", shield))
	if p.Combat.SP == 0 {
		res.AddMessage("Your composure shatters!")
	}
	if rest := amount - shield; rest > 0 {
		stats.Set(p, stats.HP, p.Combat.HP-rest)
		res.AddMessage(fmt.Sprintf("You take %d damage!", rest))
	}
}

// DealPTDamage raises the pleasure meter. Hitting the cap triggers a
// climax: the meter resets and an HP penalty lands past the shield.
func (b *System) DealPTDamage(amount int, res *effects.Result) {
	p := &b.state.Player
	if amount <= 0 {
		return
	}
	stats.Set(p, stats.PT, p.Combat.PT+amount)
	res.AddMessage(fmt.Sprintf("Pleasure rises by %d...", amount))
	if p.Combat.PT < p.Combat.PTMax {
		return
	}
	stats.Set(p, stats.PT, 0)
	penalty := 10 + p.Combat.PTMax/5
	res.AddMessage("You climax! Your body betrays you...")
	b.DealDamageToPlayer(penalty, true, res)
	if p.Combat.HP <= 0 {
		b.climaxDefeat = true
	}
}

func (b *System) checkEnemyDefeat(res *effects.Result) bool {
	enemy := b.state.CurrentEnemy
	if enemy == nil || enemy.HP > 0 {
		return false
	}
	if enemy.Def.Text.Victory != "" {
		res.AddMessage(enemy.Def.Text.Victory)
	} else {
		res.AddMessage(fmt.Sprintf("%s is defeated!", enemy.Def.Name))
	}
	if exp := enemy.Def.Rewards.Exp; exp > 0 {
		res.AddMessage(fmt.Sprintf("Gained %d EXP.", exp))
	}
	for _, drop := range enemy.Def.Rewards.Drops {
		// Drop weights are independent percent chances.
		if !b.rng.Percent(drop.Weight) {
			continue
		}
		if id, ok := drop.Value.(string); ok {
			state.AddItem(b.state, id, 1)
			res.AddMessage(fmt.Sprintf("You obtained %s!", b.interp.ItemName(id)))
		}
	}
	b.finish(OutcomeWon)
	return true
}

// CheckPlayerDefeat ends the battle as lost when the player's HP is
// gone. Only a defeat sealed by a climax brands the player with the
// victorious enemy's mark. The orchestrator also calls this after a
// bind sequence drains HP.
func (b *System) CheckPlayerDefeat(res *effects.Result) bool {
	p := &b.state.Player
	if p.Combat.HP > 0 {
		return false
	}
	enemy := b.state.CurrentEnemy
	if enemy != nil {
		if enemy.Def.Text.Defeat != "" {
			res.AddMessage(enemy.Def.Text.Defeat)
		}
		if b.climaxDefeat && !state.HasBrand(p, enemy.Def.ID) {
			state.AddBrand(p, enemy.Def.ID, enemy.Def.Name, defeatBrandRate)
			res.AddMessage(fmt.Sprintf("The mark of %s is branded onto you...", enemy.Def.Name))
		}
	}
	res.AddMessage("You collapse...")
	b.finish(OutcomeLost)
	return true
}

func (b *System) endRound(res *effects.Result) {
	b.turn++
	p := &b.state.Player
	kept := p.Statuses[:0]
	for _, st := range p.Statuses {
		st.RemainingTurns--
		if st.RemainingTurns > 0 {
			kept = append(kept, st)
		} else {
			res.AddMessage(fmt.Sprintf("%s wears off.", st.Name))
		}
	}
	p.Statuses = kept
}

func (b *System) finish(outcome Outcome) {
	b.active = false
	b.outcome = outcome
	b.state.InBattle = false
}

func knowsSpell(p *types.Player, spellID string) bool {
	for _, id := range p.Spells {
		if id == spellID {
			return true
		}
	}
	return false
}

func enemySpellStat(enemy *types.EnemyInstance, stat string) int {
	switch stat {
	case "atk":
		return enemy.Def.Stats.Atk
	case "matk", "":
		return enemy.Def.Stats.Matk
	}
	return enemy.Def.Stats.Matk
}

func substitute(text, caster, target string) string {
	text = strings.ReplaceAll(text, "{{caster}}", caster)
	return strings.ReplaceAll(text, "{{target}}", target)
}
