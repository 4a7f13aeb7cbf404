package ashfall

// StatMods is a set of stat deltas contributed by an item
type StatMods struct {
	Strength        int32
	Dexterity       int32
	Constitution    int32
	Wisdom          int32
	Intelligence    int32
	Charisma        int32
	HP              int32
	AC              int32
	Speed           int32
	Initiative      int32
	ImplantCapacity int32
}

// Item represents a campaign item definition
type Item struct {
	ID          string
	Name        string
	Description string

	StrMod             int32
	DexMod             int32
	ConMod             int32
	WisMod             int32
	IntMod             int32
	ChaMod             int32
	HPMod              int32
	ACMod              int32
	SpeedMod           int32
	InitiativeMod      int32
	ImplantCapacityMod int32

	// SkillMods maps skill display name to the bonus granted while equipped
	SkillMods map[string]int32

	IsConsumable bool
	// HPModType controls how HPMod applies when the item is consumed
	HPModType HPModType

	// LinkedAbilityIDs are granted to the holder when the item is given
	LinkedAbilityIDs []string

	CreatedAt int64
	UpdatedAt int64
}

// Mods returns the item's stat deltas as a single block
func (i *Item) Mods() StatMods {
	return StatMods{
		Strength:        i.StrMod,
		Dexterity:       i.DexMod,
		Constitution:    i.ConMod,
		Wisdom:          i.WisMod,
		Intelligence:    i.IntMod,
		Charisma:        i.ChaMod,
		HP:              i.HPMod,
		AC:              i.ACMod,
		Speed:           i.SpeedMod,
		Initiative:      i.InitiativeMod,
		ImplantCapacity: i.ImplantCapacityMod,
	}
}

// InventoryItem is one stack of an item held by a character
type InventoryItem struct {
	ID          string
	CharacterID string
	ItemID      string
	Quantity    int32
	IsEquipped  bool

	// Item is a denormalized snapshot of the item definition, stored with
	// the row so stat aggregation does not need a second lookup
	Item *Item

	CreatedAt int64
	UpdatedAt int64
}
