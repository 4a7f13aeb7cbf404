package ashfall

// Encounter is a tracked combat session with lifecycle state and a
// participant roster.
type Encounter struct {
	ID          string
	Name        string
	Description string
	Status      EncounterStatus

	// Round starts at 1 when the encounter starts
	Round int32
	// CurrentTurn is the positional index into the sorted active
	// participant list, kept for ordering and display
	CurrentTurn int32
	// CurrentParticipantID is the stable turn pointer. Roster edits
	// mid-encounter cannot reassign whose turn it is; the index above is
	// re-derived from this ID after every change.
	CurrentParticipantID string

	CreatedAt   int64
	UpdatedAt   int64
	CompletedAt int64
}

// Participant is a combat-scoped snapshot of a character or NPC used for
// initiative and HP tracking during an encounter. MaxHP and AC are captured
// at add-time and do not live-update with the referenced entity's gear.
type Participant struct {
	ID          string
	EncounterID string
	Type        ParticipantType
	// EntityID references the canonical Character or NPC record
	EntityID string
	Name     string

	// Initiative is nil until rolled; nil sorts as 0
	Initiative *int32

	CurrentHP int32
	MaxHP     int32
	AC        int32

	Notes    string
	IsActive bool

	// SortOrder is the insertion order, used as the tie-break for equal
	// initiative so sorting stays deterministic
	SortOrder int32

	CreatedAt int64
	UpdatedAt int64
}

// InitiativeValue returns the initiative for sorting, nil counting as 0
func (p *Participant) InitiativeValue() int32 {
	if p.Initiative == nil {
		return 0
	}
	return *p.Initiative
}

// SetCurrentHP writes CurrentHP clamped into [0, MaxHP]
func (p *Participant) SetCurrentHP(hp int32) {
	p.CurrentHP = ClampHP(hp, p.MaxHP)
}
