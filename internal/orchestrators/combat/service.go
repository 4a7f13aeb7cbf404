// Package combat implements the encounter orchestrator: lifecycle state
// machine, participant roster, turn order and the HP bridge back to the
// canonical character and NPC records.
package combat

//go:generate mockgen -destination=mock/mock_service.go -package=combatmock github.com/ashfall-rpg/gm-api/internal/orchestrators/combat Service

import (
	"context"
)

// Service defines the combat orchestrator interface
type Service interface {
	// CreateEncounter creates a draft encounter
	CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*CreateEncounterOutput, error)

	// GetEncounter returns an encounter with its sorted roster
	GetEncounter(ctx context.Context, input *GetEncounterInput) (*GetEncounterOutput, error)

	// ListEncounters returns all encounters
	ListEncounters(ctx context.Context, input *ListEncountersInput) (*ListEncountersOutput, error)

	// StartEncounter transitions draft to active, sets round 1, points the
	// turn at the first active participant and engages the campaign lock
	// Returns errors.FailedPrecondition if the encounter is not a draft or
	// has no participants
	StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error)

	// NextTurn advances the turn pointer, wrapping into a new round
	// Returns errors.FailedPrecondition if the encounter is not active
	NextTurn(ctx context.Context, input *NextTurnInput) (*NextTurnOutput, error)

	// PrevTurn steps the turn pointer back, unwinding a round wrap. At the
	// top of round 1 it stays put.
	// Returns errors.FailedPrecondition if the encounter is not active
	PrevTurn(ctx context.Context, input *PrevTurnInput) (*PrevTurnOutput, error)

	// EndEncounter transitions active to completed and releases the lock
	// Returns errors.FailedPrecondition if the encounter is not active
	EndEncounter(ctx context.Context, input *EndEncounterInput) (*EndEncounterOutput, error)

	// ArchiveEncounter moves a draft or completed encounter to archived
	// Returns errors.FailedPrecondition if the encounter is active
	ArchiveEncounter(ctx context.Context, input *ArchiveEncounterInput) (*ArchiveEncounterOutput, error)

	// DeleteEncounter removes an encounter and cascades to its participants
	// Returns errors.FailedPrecondition if the encounter is active
	DeleteEncounter(ctx context.Context, input *DeleteEncounterInput) (*DeleteEncounterOutput, error)

	// AddParticipant snapshots a character or NPC into the roster
	AddParticipant(ctx context.Context, input *AddParticipantInput) (*AddParticipantOutput, error)

	// AddAllPlayers adds every character not already in the roster
	AddAllPlayers(ctx context.Context, input *AddAllPlayersInput) (*AddAllPlayersOutput, error)

	// AddNPCGroup adds count independent copies of one NPC
	AddNPCGroup(ctx context.Context, input *AddNPCGroupInput) (*AddNPCGroupOutput, error)

	// RemoveParticipant deletes a roster row
	RemoveParticipant(ctx context.Context, input *RemoveParticipantInput) (*RemoveParticipantOutput, error)

	// UpdateInitiative sets or clears a participant's initiative
	UpdateInitiative(ctx context.Context, input *UpdateInitiativeInput) (*UpdateInitiativeOutput, error)

	// SetParticipantActive toggles a participant in or out of the turn order
	SetParticipantActive(ctx context.Context, input *SetParticipantActiveInput) (*SetParticipantActiveOutput, error)

	// ApplyHPChange damages or heals a participant, clamped to [0, MaxHP],
	// and writes the result through to the canonical record
	ApplyHPChange(ctx context.Context, input *ApplyHPChangeInput) (*ApplyHPChangeOutput, error)

	// FullHeal restores a participant to its snapshot MaxHP
	FullHeal(ctx context.Context, input *FullHealInput) (*FullHealOutput, error)

	// SyncParticipantHP pushes a canonical character HP change into the
	// character's participant row in the active encounter, if any
	SyncParticipantHP(ctx context.Context, input *SyncParticipantHPInput) (*SyncParticipantHPOutput, error)

	// UpdateNotes schedules a debounced write of a participant's notes
	UpdateNotes(ctx context.Context, input *UpdateNotesInput) (*UpdateNotesOutput, error)

	// Close flushes pending debounced writes
	Close()
}
