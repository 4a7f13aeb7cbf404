// Package stats implements the stat aggregation engine: effective scores,
// HP, AC, speed, initiative and implant capacity from a base stat block
// plus the modifiers of currently equipped inventory items.
package stats

import (
	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
)

// legacyEncodingFloor is the threshold of the legacy stat heuristic. Values
// at or above it are treated as the old "10+bonus" encoding.
const legacyEncodingFloor = 8

// Modifier converts a stored ability score to its modifier.
//
// Legacy compatibility: scores >= 8 are assumed to use the old "10+bonus"
// encoding and convert as score-10; smaller values are assumed to already
// be direct modifiers and pass through unchanged. Legacy scores of 0-7 are
// indistinguishable from direct modifiers under this rule; callers must not
// "fix" such values, a schema version field is the only real way out.
func Modifier(score int32) int32 {
	if score >= legacyEncodingFloor {
		return score - 10
	}
	return score
}

// EquippedMods sums the stat modifiers of all equipped items in the
// inventory. Unequipped items contribute nothing. An equipped stack
// contributes its modifiers once regardless of quantity.
func EquippedMods(inventory []*ashfall.InventoryItem) ashfall.StatMods {
	var total ashfall.StatMods
	for _, row := range inventory {
		if row == nil || !row.IsEquipped || row.Item == nil {
			continue
		}
		mods := row.Item.Mods()
		total.Strength += mods.Strength
		total.Dexterity += mods.Dexterity
		total.Constitution += mods.Constitution
		total.Wisdom += mods.Wisdom
		total.Intelligence += mods.Intelligence
		total.Charisma += mods.Charisma
		total.HP += mods.HP
		total.AC += mods.AC
		total.Speed += mods.Speed
		total.Initiative += mods.Initiative
		total.ImplantCapacity += mods.ImplantCapacity
	}
	return total
}

// Aggregate returns the effective stat block: base values plus the summed
// modifiers of equipped items. Item HP modifiers raise MaxHP; CurrentHP
// passes through untouched.
func Aggregate(base ashfall.StatBlock, inventory []*ashfall.InventoryItem) ashfall.StatBlock {
	mods := EquippedMods(inventory)

	return ashfall.StatBlock{
		Strength:        base.Strength + mods.Strength,
		Dexterity:       base.Dexterity + mods.Dexterity,
		Constitution:    base.Constitution + mods.Constitution,
		Wisdom:          base.Wisdom + mods.Wisdom,
		Intelligence:    base.Intelligence + mods.Intelligence,
		Charisma:        base.Charisma + mods.Charisma,
		CurrentHP:       base.CurrentHP,
		MaxHP:           base.MaxHP + mods.HP,
		AC:              base.AC + mods.AC,
		Speed:           base.Speed + mods.Speed,
		Initiative:      base.Initiative + mods.Initiative,
		ImplantCapacity: base.ImplantCapacity + mods.ImplantCapacity,
	}
}

// SkillTotal computes a skill's total: base points, plus the modifier of
// the linked ability score, plus equipped item bonuses for that skill.
// linkedScore should be the effective score of the skill's linked ability.
func SkillTotal(basePoints, linkedScore int32, skillName string, inventory []*ashfall.InventoryItem) int32 {
	total := basePoints + Modifier(linkedScore)
	for _, row := range inventory {
		if row == nil || !row.IsEquipped || row.Item == nil {
			continue
		}
		total += row.Item.SkillMods[skillName]
	}
	return total
}
