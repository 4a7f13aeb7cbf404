// Package encounters provides persistence for encounters and their
// participant rosters.
package encounters

//go:generate mockgen -destination=mock/mock_repository.go -package=encountersmock github.com/ashfall-rpg/gm-api/internal/repositories/encounters Repository

import (
	"context"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
)

// Repository defines the storage interface for encounters and participants.
// Participants are owned by their encounter: deleting an encounter cascades
// to its participant rows.
type Repository interface {
	// Create stores a new encounter
	// Returns errors.AlreadyExists if an encounter with the same ID exists
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves an encounter by ID
	// Returns errors.NotFound if the encounter doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update overwrites an existing encounter
	// Returns errors.NotFound if the encounter doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes an encounter and all of its participants
	// Returns errors.NotFound if the encounter doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List retrieves all encounters
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// AddParticipant stores a new participant row for an encounter
	AddParticipant(ctx context.Context, input AddParticipantInput) (*AddParticipantOutput, error)

	// GetParticipant retrieves a participant by ID
	// Returns errors.NotFound if the participant doesn't exist
	GetParticipant(ctx context.Context, input GetParticipantInput) (*GetParticipantOutput, error)

	// UpdateParticipant overwrites an existing participant row
	// Returns errors.NotFound if the participant doesn't exist
	UpdateParticipant(ctx context.Context, input UpdateParticipantInput) (*UpdateParticipantOutput, error)

	// RemoveParticipant deletes a participant row
	// Returns errors.NotFound if the participant doesn't exist
	RemoveParticipant(ctx context.Context, input RemoveParticipantInput) (*RemoveParticipantOutput, error)

	// ListParticipants retrieves all participants of an encounter
	ListParticipants(ctx context.Context, input ListParticipantsInput) (*ListParticipantsOutput, error)
}

// CreateInput defines the input for creating an encounter
type CreateInput struct {
	Encounter *ashfall.Encounter
}

// CreateOutput defines the output for creating an encounter
type CreateOutput struct {
	Encounter *ashfall.Encounter
}

// GetInput defines the input for getting an encounter
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an encounter
type GetOutput struct {
	Encounter *ashfall.Encounter
}

// UpdateInput defines the input for updating an encounter
type UpdateInput struct {
	Encounter *ashfall.Encounter
}

// UpdateOutput defines the output for updating an encounter
type UpdateOutput struct {
	Encounter *ashfall.Encounter
}

// DeleteInput defines the input for deleting an encounter
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting an encounter
type DeleteOutput struct {
	// ParticipantsRemoved is the number of cascaded participant deletions
	ParticipantsRemoved int
}

// ListInput defines the input for listing encounters
type ListInput struct{}

// ListOutput defines the output for listing encounters
type ListOutput struct {
	Encounters []*ashfall.Encounter
}

// AddParticipantInput defines the input for adding a participant
type AddParticipantInput struct {
	Participant *ashfall.Participant
}

// AddParticipantOutput defines the output for adding a participant
type AddParticipantOutput struct {
	Participant *ashfall.Participant
}

// GetParticipantInput defines the input for getting a participant
type GetParticipantInput struct {
	ID string
}

// GetParticipantOutput defines the output for getting a participant
type GetParticipantOutput struct {
	Participant *ashfall.Participant
}

// UpdateParticipantInput defines the input for updating a participant
type UpdateParticipantInput struct {
	Participant *ashfall.Participant
}

// UpdateParticipantOutput defines the output for updating a participant
type UpdateParticipantOutput struct {
	Participant *ashfall.Participant
}

// RemoveParticipantInput defines the input for removing a participant
type RemoveParticipantInput struct {
	ID string
}

// RemoveParticipantOutput defines the output for removing a participant
type RemoveParticipantOutput struct{}

// ListParticipantsInput defines the input for listing participants
type ListParticipantsInput struct {
	EncounterID string
}

// ListParticipantsOutput defines the output for listing participants
type ListParticipantsOutput struct {
	Participants []*ashfall.Participant
}
