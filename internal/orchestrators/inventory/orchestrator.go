package inventory

import (
	"context"
	"log/slog"

	"github.com/ashfall-rpg/gm-api/internal/engine/stats"
	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	"github.com/ashfall-rpg/gm-api/internal/notify"
	"github.com/ashfall-rpg/gm-api/internal/orchestrators/combat"
	"github.com/ashfall-rpg/gm-api/internal/pkg/idgen"
	abilityrepo "github.com/ashfall-rpg/gm-api/internal/repositories/abilities"
	characterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/characters"
	inventoryrepo "github.com/ashfall-rpg/gm-api/internal/repositories/inventory"
	itemrepo "github.com/ashfall-rpg/gm-api/internal/repositories/items"
)

const (
	collectionCharacters = "characters"
	collectionInventory  = "inventory"
	collectionGrants     = "ability_grants"
)

// HPSyncer pushes canonical HP changes into any active encounter. The
// combat orchestrator implements it.
type HPSyncer interface {
	SyncParticipantHP(ctx context.Context, input *combat.SyncParticipantHPInput) (*combat.SyncParticipantHPOutput, error)
}

// Config holds the dependencies for the inventory orchestrator
type Config struct {
	InventoryRepo inventoryrepo.Repository
	ItemRepo      itemrepo.Repository
	CharacterRepo characterrepo.Repository
	AbilityRepo   abilityrepo.Repository
	HPSyncer      HPSyncer
	Bus           notify.Bus

	RowIDGenerator   idgen.Generator
	GrantIDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.InventoryRepo == nil {
		vb.RequiredField("InventoryRepo")
	}
	if c.ItemRepo == nil {
		vb.RequiredField("ItemRepo")
	}
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.AbilityRepo == nil {
		vb.RequiredField("AbilityRepo")
	}
	if c.HPSyncer == nil {
		vb.RequiredField("HPSyncer")
	}
	if c.Bus == nil {
		vb.RequiredField("Bus")
	}
	if c.RowIDGenerator == nil {
		vb.RequiredField("RowIDGenerator")
	}
	if c.GrantIDGenerator == nil {
		vb.RequiredField("GrantIDGenerator")
	}

	return vb.Build()
}

// Orchestrator implements the inventory Service interface
type Orchestrator struct {
	inventoryRepo inventoryrepo.Repository
	itemRepo      itemrepo.Repository
	characterRepo characterrepo.Repository
	abilityRepo   abilityrepo.Repository
	hpSyncer      HPSyncer
	bus           notify.Bus

	rowIDGen   idgen.Generator
	grantIDGen idgen.Generator
}

// New creates a new inventory orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Orchestrator{
		inventoryRepo: cfg.InventoryRepo,
		itemRepo:      cfg.ItemRepo,
		characterRepo: cfg.CharacterRepo,
		abilityRepo:   cfg.AbilityRepo,
		hpSyncer:      cfg.HPSyncer,
		bus:           cfg.Bus,
		rowIDGen:      cfg.RowIDGenerator,
		grantIDGen:    cfg.GrantIDGenerator,
	}, nil
}

// Ensure Orchestrator implements the Service interface
var _ Service = (*Orchestrator)(nil)

// GiveItem adds quantity of an item to a character, stacking onto an
// existing row and granting the item's linked abilities once per row
func (o *Orchestrator) GiveItem(ctx context.Context, input *GiveItemInput) (*GiveItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	if input.CharacterID == "" {
		vb.RequiredField("CharacterID")
	}
	if input.ItemID == "" {
		vb.RequiredField("ItemID")
	}
	if input.Quantity < 1 {
		vb.InvalidField("Quantity", "must be at least 1")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	if _, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID}); err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", input.CharacterID)
	}

	itemOutput, err := o.itemRepo.Get(ctx, itemrepo.GetInput{ID: input.ItemID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get item %s", input.ItemID)
	}
	item := itemOutput.Item

	row, err := o.upsertRow(ctx, input.CharacterID, item, input.Quantity)
	if err != nil {
		return nil, err
	}

	granted, err := o.grantLinkedAbilities(ctx, input.CharacterID, row.ID, item)
	if err != nil {
		return nil, err
	}

	o.publish(ctx, collectionInventory, row.ID)

	slog.InfoContext(ctx, "gave item",
		"character_id", input.CharacterID,
		"item_id", item.ID,
		"quantity", input.Quantity,
		"grants_created", granted)

	return &GiveItemOutput{Row: row, GrantsCreated: granted}, nil
}

// upsertRow stacks quantity onto the character's existing row for the item
// or creates a fresh row with a snapshot of the item definition
func (o *Orchestrator) upsertRow(ctx context.Context, characterID string, item *ashfall.Item, quantity int32) (*ashfall.InventoryItem, error) {
	listOutput, err := o.inventoryRepo.ListByCharacterID(ctx, inventoryrepo.ListByCharacterIDInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list inventory of character %s", characterID)
	}

	for _, row := range listOutput.Rows {
		if row.ItemID != item.ID {
			continue
		}

		row.Quantity += quantity
		updateOutput, err := o.inventoryRepo.Update(ctx, inventoryrepo.UpdateInput{Row: row})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to stack onto inventory row %s", row.ID)
		}
		return updateOutput.Row, nil
	}

	row := &ashfall.InventoryItem{
		ID:          o.rowIDGen.Generate(),
		CharacterID: characterID,
		ItemID:      item.ID,
		Quantity:    quantity,
		Item:        item,
	}

	createOutput, err := o.inventoryRepo.Create(ctx, inventoryrepo.CreateInput{Row: row})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create inventory row for item %s", item.ID)
	}

	return createOutput.Row, nil
}

// grantLinkedAbilities creates a grant per linked ability unless the row
// already produced one. Re-giving the same item is safe.
func (o *Orchestrator) grantLinkedAbilities(ctx context.Context, characterID, rowID string, item *ashfall.Item) (int, error) {
	if len(item.LinkedAbilityIDs) == 0 {
		return 0, nil
	}

	grantsOutput, err := o.abilityRepo.ListGrantsBySource(ctx, abilityrepo.ListGrantsBySourceInput{SourceID: rowID})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to list grants of row %s", rowID)
	}

	existing := make(map[string]bool)
	for _, grant := range grantsOutput.Grants {
		existing[grant.AbilityID] = true
	}

	granted := 0
	for _, abilityID := range item.LinkedAbilityIDs {
		if existing[abilityID] {
			continue
		}

		abilityOutput, err := o.abilityRepo.Get(ctx, abilityrepo.GetInput{ID: abilityID})
		if err != nil {
			return granted, errors.Wrapf(err, "failed to get linked ability %s", abilityID)
		}

		grant := &ashfall.AbilityGrant{
			ID:          o.grantIDGen.Generate(),
			CharacterID: characterID,
			AbilityID:   abilityID,
			SourceType:  ashfall.GrantSourceItem,
			SourceID:    rowID,
		}
		if abilityOutput.Ability.MaxCharges != nil {
			grant.CurrentCharges = *abilityOutput.Ability.MaxCharges
		}

		if _, err := o.abilityRepo.CreateGrant(ctx, abilityrepo.CreateGrantInput{Grant: grant}); err != nil {
			return granted, errors.Wrapf(err, "failed to grant ability %s", abilityID)
		}
		granted++

		o.publish(ctx, collectionGrants, grant.ID)
	}

	return granted, nil
}

// SetEquipped toggles whether a row contributes to effective stats
func (o *Orchestrator) SetEquipped(ctx context.Context, input *SetEquippedInput) (*SetEquippedOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.InventoryItemID == "" {
		return nil, errors.InvalidArgument("inventory item ID is required")
	}

	getOutput, err := o.inventoryRepo.Get(ctx, inventoryrepo.GetInput{ID: input.InventoryItemID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get inventory row %s", input.InventoryItemID)
	}

	row := getOutput.Row
	row.IsEquipped = input.IsEquipped

	updateOutput, err := o.inventoryRepo.Update(ctx, inventoryrepo.UpdateInput{Row: row})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update inventory row %s", row.ID)
	}

	o.publish(ctx, collectionInventory, row.ID)

	return &SetEquippedOutput{Row: updateOutput.Row}, nil
}

// UseConsumable applies a consumable's modifiers permanently to the
// holder's base stats and decrements the stack. The steps are independent
// writes; a failure partway leaves the earlier ones applied.
func (o *Orchestrator) UseConsumable(ctx context.Context, input *UseConsumableInput) (*UseConsumableOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.InventoryItemID == "" {
		return nil, errors.InvalidArgument("inventory item ID is required")
	}

	getOutput, err := o.inventoryRepo.Get(ctx, inventoryrepo.GetInput{ID: input.InventoryItemID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get inventory row %s", input.InventoryItemID)
	}

	row := getOutput.Row
	if row.Item == nil {
		return nil, errors.Internalf("inventory row %s has no item snapshot", row.ID)
	}
	if !row.Item.IsConsumable {
		return nil, errors.FailedPreconditionf("item %s is not consumable", row.ItemID)
	}
	if row.Quantity < 1 {
		return nil, errors.FailedPreconditionf("inventory row %s is empty", row.ID)
	}

	charOutput, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: row.CharacterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", row.CharacterID)
	}

	character := charOutput.Character
	previousHP := character.CurrentHP
	applyConsumable(character, row.Item)
	hpChanged := character.CurrentHP != previousHP

	if _, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{Character: character}); err != nil {
		return nil, errors.Wrapf(err, "failed to update character %s", character.ID)
	}

	row.Quantity--
	var remaining *ashfall.InventoryItem
	if row.Quantity <= 0 {
		if _, err := o.inventoryRepo.Delete(ctx, inventoryrepo.DeleteInput{ID: row.ID}); err != nil {
			return nil, errors.Wrapf(err, "failed to delete emptied inventory row %s", row.ID)
		}
	} else {
		updateOutput, err := o.inventoryRepo.Update(ctx, inventoryrepo.UpdateInput{Row: row})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to update inventory row %s", row.ID)
		}
		remaining = updateOutput.Row
	}

	if hpChanged {
		if _, err := o.hpSyncer.SyncParticipantHP(ctx, &combat.SyncParticipantHPInput{
			CharacterID: character.ID,
			CurrentHP:   character.CurrentHP,
		}); err != nil {
			slog.WarnContext(ctx, "failed to sync consumable HP into encounter",
				"character_id", character.ID,
				"error", err)
		}
	}

	o.publish(ctx, collectionCharacters, character.ID)
	o.publish(ctx, collectionInventory, row.ID)

	slog.InfoContext(ctx, "used consumable",
		"character_id", character.ID,
		"item_id", row.ItemID,
		"hp_changed", hpChanged)

	return &UseConsumableOutput{
		Character: character,
		Row:       remaining,
		HPChanged: hpChanged,
	}, nil
}

// Loadout returns a character's inventory and effective stats
func (o *Orchestrator) Loadout(ctx context.Context, input *LoadoutInput) (*LoadoutOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	charOutput, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", input.CharacterID)
	}

	listOutput, err := o.inventoryRepo.ListByCharacterID(ctx, inventoryrepo.ListByCharacterIDInput{CharacterID: input.CharacterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list inventory of character %s", input.CharacterID)
	}

	return &LoadoutOutput{
		Character:      charOutput.Character,
		Rows:           listOutput.Rows,
		EffectiveStats: stats.Aggregate(charOutput.Character.StatBlock, listOutput.Rows),
	}, nil
}

// applyConsumable folds an item's modifiers into a character's base stats.
// HP heals clamp into [0, MaxHP]; max_hp modifiers move the ceiling and
// leave CurrentHP alone.
func applyConsumable(character *ashfall.Character, item *ashfall.Item) {
	character.Strength += item.StrMod
	character.Dexterity += item.DexMod
	character.Constitution += item.ConMod
	character.Wisdom += item.WisMod
	character.Intelligence += item.IntMod
	character.Charisma += item.ChaMod
	character.AC += item.ACMod
	character.Speed += item.SpeedMod
	character.Initiative += item.InitiativeMod
	character.ImplantCapacity += item.ImplantCapacityMod

	if item.HPMod != 0 {
		switch item.HPModType {
		case ashfall.HPModTypeMaxHP:
			character.MaxHP += item.HPMod
		default:
			character.SetCurrentHP(character.CurrentHP + item.HPMod)
		}
	}
}

func (o *Orchestrator) publish(ctx context.Context, collection, recordID string) {
	if err := o.bus.Publish(ctx, collection, recordID); err != nil {
		slog.WarnContext(ctx, "failed to publish change event",
			"collection", collection,
			"record_id", recordID,
			"error", err)
	}
}
