package combat

import (
	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
)

// CreateEncounterInput defines the input for creating an encounter
type CreateEncounterInput struct {
	Name        string
	Description string
}

// CreateEncounterOutput defines the output for creating an encounter
type CreateEncounterOutput struct {
	Encounter *ashfall.Encounter
}

// GetEncounterInput defines the input for fetching an encounter view
type GetEncounterInput struct {
	EncounterID string
}

// GetEncounterOutput defines the output for fetching an encounter view
type GetEncounterOutput struct {
	Encounter *ashfall.Encounter
	// Participants is the full roster sorted by initiative descending
	Participants []*ashfall.Participant
	// ActiveParticipants is the sorted roster filtered to IsActive
	ActiveParticipants []*ashfall.Participant
	// CurrentParticipant is whose turn it is, nil outside active combat
	CurrentParticipant *ashfall.Participant
}

// ListEncountersInput defines the input for listing encounters
type ListEncountersInput struct{}

// ListEncountersOutput defines the output for listing encounters
type ListEncountersOutput struct {
	Encounters []*ashfall.Encounter
}

// StartEncounterInput defines the input for starting an encounter
type StartEncounterInput struct {
	EncounterID string
}

// StartEncounterOutput defines the output for starting an encounter
type StartEncounterOutput struct {
	Encounter *ashfall.Encounter
	// ActiveParticipants is the initiative-ordered turn order
	ActiveParticipants []*ashfall.Participant
}

// NextTurnInput defines the input for advancing the turn
type NextTurnInput struct {
	EncounterID string
}

// NextTurnOutput defines the output for advancing the turn
type NextTurnOutput struct {
	Encounter          *ashfall.Encounter
	CurrentParticipant *ashfall.Participant
}

// PrevTurnInput defines the input for stepping the turn back
type PrevTurnInput struct {
	EncounterID string
}

// PrevTurnOutput defines the output for stepping the turn back
type PrevTurnOutput struct {
	Encounter          *ashfall.Encounter
	CurrentParticipant *ashfall.Participant
}

// EndEncounterInput defines the input for ending an encounter
type EndEncounterInput struct {
	EncounterID string
}

// EndEncounterOutput defines the output for ending an encounter
type EndEncounterOutput struct {
	Encounter *ashfall.Encounter
}

// ArchiveEncounterInput defines the input for archiving an encounter
type ArchiveEncounterInput struct {
	EncounterID string
}

// ArchiveEncounterOutput defines the output for archiving an encounter
type ArchiveEncounterOutput struct {
	Encounter *ashfall.Encounter
}

// DeleteEncounterInput defines the input for deleting an encounter
type DeleteEncounterInput struct {
	EncounterID string
}

// DeleteEncounterOutput defines the output for deleting an encounter
type DeleteEncounterOutput struct {
	ParticipantsRemoved int
}

// AddParticipantInput defines the input for adding one combatant
type AddParticipantInput struct {
	EncounterID string
	Type        ashfall.ParticipantType
	// EntityID references the character or NPC to snapshot
	EntityID string
}

// AddParticipantOutput defines the output for adding one combatant
type AddParticipantOutput struct {
	Participant *ashfall.Participant
}

// AddAllPlayersInput defines the input for bulk-adding the party
type AddAllPlayersInput struct {
	EncounterID string
}

// AddAllPlayersOutput defines the output for bulk-adding the party
type AddAllPlayersOutput struct {
	// Added is the number of characters actually added; characters already
	// in the roster are skipped
	Added   int
	Skipped int
}

// AddNPCGroupInput defines the input for adding N copies of one NPC
type AddNPCGroupInput struct {
	EncounterID string
	NPCID       string
	Count       int32
}

// AddNPCGroupOutput defines the output for adding N copies of one NPC
type AddNPCGroupOutput struct {
	Participants []*ashfall.Participant
}

// RemoveParticipantInput defines the input for removing a combatant
type RemoveParticipantInput struct {
	ParticipantID string
}

// RemoveParticipantOutput defines the output for removing a combatant
type RemoveParticipantOutput struct{}

// UpdateInitiativeInput defines the input for setting a combatant's initiative
type UpdateInitiativeInput struct {
	ParticipantID string
	Initiative    *int32
}

// UpdateInitiativeOutput defines the output for setting initiative
type UpdateInitiativeOutput struct {
	Participant *ashfall.Participant
}

// SetParticipantActiveInput defines the input for toggling the active flag
type SetParticipantActiveInput struct {
	ParticipantID string
	IsActive      bool
}

// SetParticipantActiveOutput defines the output for toggling the active flag
type SetParticipantActiveOutput struct {
	Participant *ashfall.Participant
}

// ApplyHPChangeInput defines the input for damaging or healing a combatant
type ApplyHPChangeInput struct {
	ParticipantID string
	// Delta is negative for damage, positive for healing
	Delta int32
}

// ApplyHPChangeOutput defines the output for damaging or healing a combatant
type ApplyHPChangeOutput struct {
	Participant *ashfall.Participant
	PreviousHP  int32
	NewHP       int32
}

// FullHealInput defines the input for restoring a combatant to max HP
type FullHealInput struct {
	ParticipantID string
}

// FullHealOutput defines the output for restoring a combatant to max HP
type FullHealOutput struct {
	Participant *ashfall.Participant
}

// SyncParticipantHPInput defines the input for pushing a canonical HP value
// into a character's active participant row
type SyncParticipantHPInput struct {
	CharacterID string
	CurrentHP   int32
}

// SyncParticipantHPOutput defines the output for the participant HP sync
type SyncParticipantHPOutput struct {
	// Synced is false when the character has no active participant
	Synced bool
}

// UpdateNotesInput defines the input for editing a combatant's notes
type UpdateNotesInput struct {
	ParticipantID string
	Notes         string
}

// UpdateNotesOutput defines the output for editing a combatant's notes
type UpdateNotesOutput struct{}
