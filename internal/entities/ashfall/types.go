// Package ashfall implements the Ashfall campaign entities.
// NOTE: These are data-only structs. Derived numbers (effective stats,
// skill totals) are computed by internal/engine/stats, not here.
package ashfall

// EncounterStatus is the lifecycle state of an encounter
type EncounterStatus string

// Encounter lifecycle states
const (
	EncounterStatusDraft     EncounterStatus = "draft"
	EncounterStatusActive    EncounterStatus = "active"
	EncounterStatusCompleted EncounterStatus = "completed"
	EncounterStatusArchived  EncounterStatus = "archived"
)

// ParticipantType distinguishes player characters from NPCs in an encounter
type ParticipantType string

// Participant types
const (
	ParticipantTypePlayer ParticipantType = "player"
	ParticipantTypeNPC    ParticipantType = "npc"
)

// ChargeType describes how an ability's charges replenish
type ChargeType string

// Charge types
const (
	ChargeTypeInfinite  ChargeType = "infinite"
	ChargeTypeShortRest ChargeType = "short_rest"
	ChargeTypeLongRest  ChargeType = "long_rest"
	ChargeTypeUses      ChargeType = "uses"
)

// HPModType describes how a consumable's HP modifier applies
type HPModType string

// HP modifier types
const (
	HPModTypeHeal  HPModType = "heal"
	HPModTypeMaxHP HPModType = "max_hp"
)

// GrantSourceType describes where an ability grant came from
type GrantSourceType string

// Grant sources
const (
	GrantSourceClass     GrantSourceType = "class"
	GrantSourceItem      GrantSourceType = "item"
	GrantSourceTemporary GrantSourceType = "temporary"
)

// ClampHP clamps hp into [0, maxHP]
func ClampHP(hp, maxHP int32) int32 {
	if hp < 0 {
		return 0
	}
	if hp > maxHP {
		return maxHP
	}
	return hp
}
