// Package inventory implements the item orchestrator: giving items with
// linked ability grants, equipping, consumable resolution and loadout
// aggregation.
package inventory

//go:generate mockgen -destination=mock/mock_service.go -package=inventorymock github.com/ashfall-rpg/gm-api/internal/orchestrators/inventory Service

import (
	"context"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
)

// Service defines the inventory orchestrator interface
type Service interface {
	// GiveItem adds quantity of an item to a character, stacking onto an
	// existing row. Abilities linked to the item are granted once per row.
	GiveItem(ctx context.Context, input *GiveItemInput) (*GiveItemOutput, error)

	// SetEquipped toggles whether a row contributes to effective stats
	SetEquipped(ctx context.Context, input *SetEquippedInput) (*SetEquippedOutput, error)

	// UseConsumable applies a consumable's modifiers permanently to the
	// holder's base stats and decrements the stack
	// Returns errors.FailedPrecondition if the item is not consumable or
	// the stack is empty
	UseConsumable(ctx context.Context, input *UseConsumableInput) (*UseConsumableOutput, error)

	// Loadout returns a character's inventory and effective stats
	Loadout(ctx context.Context, input *LoadoutInput) (*LoadoutOutput, error)
}

// GiveItemInput defines the input for giving an item
type GiveItemInput struct {
	CharacterID string
	ItemID      string
	Quantity    int32
}

// GiveItemOutput defines the output for giving an item
type GiveItemOutput struct {
	Row *ashfall.InventoryItem
	// GrantsCreated is how many linked ability grants this give produced
	GrantsCreated int
}

// SetEquippedInput defines the input for toggling equipment
type SetEquippedInput struct {
	InventoryItemID string
	IsEquipped      bool
}

// SetEquippedOutput defines the output for toggling equipment
type SetEquippedOutput struct {
	Row *ashfall.InventoryItem
}

// UseConsumableInput defines the input for consuming an item
type UseConsumableInput struct {
	InventoryItemID string
}

// UseConsumableOutput defines the output for consuming an item
type UseConsumableOutput struct {
	Character *ashfall.Character
	// Row is nil when the consumed stack hit zero and was deleted
	Row *ashfall.InventoryItem
	// HPChanged reports whether CurrentHP moved, and so whether the change
	// was pushed into an active encounter
	HPChanged bool
}

// LoadoutInput defines the input for reading a character's loadout
type LoadoutInput struct {
	CharacterID string
}

// LoadoutOutput defines the output for reading a character's loadout
type LoadoutOutput struct {
	Character *ashfall.Character
	Rows      []*ashfall.InventoryItem
	// EffectiveStats is the base stat block plus equipped item modifiers
	EffectiveStats ashfall.StatBlock
}
