package ashfall

// Ability represents an ability definition
type Ability struct {
	ID          string
	Name        string
	Description string

	ChargeType ChargeType
	// MaxCharges is nil only for infinite abilities
	MaxCharges *int32
	// ChargesPerRest defaults to MaxCharges when nil
	ChargesPerRest *int32

	CreatedAt int64
	UpdatedAt int64
}

// RechargeAmount returns how many charges one rest restores
func (a *Ability) RechargeAmount() int32 {
	if a.ChargesPerRest != nil {
		return *a.ChargesPerRest
	}
	if a.MaxCharges != nil {
		return *a.MaxCharges
	}
	return 0
}

// AbilityGrant is a character's held instance of an ability
type AbilityGrant struct {
	ID          string
	CharacterID string
	AbilityID   string

	// CurrentCharges stays within [0, ability.MaxCharges]
	CurrentCharges int32

	SourceType GrantSourceType
	// SourceID identifies the granting class, inventory row, or effect
	SourceID string

	CreatedAt int64
	UpdatedAt int64
}
