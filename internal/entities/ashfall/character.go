package ashfall

// StatBlock is the base stat line shared by characters and NPCs. All values
// are stored bases; equipped-item bonuses are layered on by the stat engine.
type StatBlock struct {
	Strength        int32
	Dexterity       int32
	Constitution    int32
	Wisdom          int32
	Intelligence    int32
	Charisma        int32
	CurrentHP       int32
	MaxHP           int32
	AC              int32
	Speed           int32
	Initiative      int32
	ImplantCapacity int32
}

// SetCurrentHP writes CurrentHP clamped into [0, MaxHP]
func (b *StatBlock) SetCurrentHP(hp int32) {
	b.CurrentHP = ClampHP(hp, b.MaxHP)
}

// Character represents a player character in the campaign
type Character struct {
	ID       string
	PlayerID string
	Name     string
	StatBlock

	// Skills maps skill display name to base skill points
	Skills map[string]int32
	// WeaponRanks maps weapon category to rank
	WeaponRanks map[string]int32

	CreatedAt int64
	UpdatedAt int64
}

// NPC represents a non-player character controlled by the game master
type NPC struct {
	ID          string
	Name        string
	Description string
	Hostile     bool
	StatBlock

	Skills      map[string]int32
	WeaponRanks map[string]int32

	CreatedAt int64
	UpdatedAt int64
}
