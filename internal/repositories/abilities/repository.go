// Package abilities provides persistence for ability definitions and the
// per-character ability grants that carry charge state.
package abilities

//go:generate mockgen -destination=mock/mock_repository.go -package=abilitiesmock github.com/ashfall-rpg/gm-api/internal/repositories/abilities Repository

import (
	"context"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
)

// Repository defines the storage interface for abilities and grants.
// Error code conventions match the characters repository.
type Repository interface {
	// Ability definitions
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Grants
	CreateGrant(ctx context.Context, input CreateGrantInput) (*CreateGrantOutput, error)
	GetGrant(ctx context.Context, input GetGrantInput) (*GetGrantOutput, error)
	UpdateGrant(ctx context.Context, input UpdateGrantInput) (*UpdateGrantOutput, error)
	DeleteGrant(ctx context.Context, input DeleteGrantInput) (*DeleteGrantOutput, error)

	// ListGrantsByCharacterID retrieves all grants held by one character
	ListGrantsByCharacterID(ctx context.Context, input ListGrantsByCharacterIDInput) (*ListGrantsByCharacterIDOutput, error)

	// ListGrantsBySource retrieves the grants attached to one source record,
	// e.g. the inventory row that granted them
	ListGrantsBySource(ctx context.Context, input ListGrantsBySourceInput) (*ListGrantsBySourceOutput, error)

	// ListAllGrants retrieves every grant in the campaign. Rest events are
	// party-wide, so the rest engine scans all grants of all characters.
	ListAllGrants(ctx context.Context, input ListAllGrantsInput) (*ListAllGrantsOutput, error)
}

// CreateInput defines the input for creating an ability
type CreateInput struct {
	Ability *ashfall.Ability
}

// CreateOutput defines the output for creating an ability
type CreateOutput struct {
	Ability *ashfall.Ability
}

// GetInput defines the input for getting an ability
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an ability
type GetOutput struct {
	Ability *ashfall.Ability
}

// UpdateInput defines the input for updating an ability
type UpdateInput struct {
	Ability *ashfall.Ability
}

// UpdateOutput defines the output for updating an ability
type UpdateOutput struct {
	Ability *ashfall.Ability
}

// DeleteInput defines the input for deleting an ability
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting an ability
type DeleteOutput struct{}

// ListInput defines the input for listing abilities
type ListInput struct{}

// ListOutput defines the output for listing abilities
type ListOutput struct {
	Abilities []*ashfall.Ability
}

// CreateGrantInput defines the input for creating a grant
type CreateGrantInput struct {
	Grant *ashfall.AbilityGrant
}

// CreateGrantOutput defines the output for creating a grant
type CreateGrantOutput struct {
	Grant *ashfall.AbilityGrant
}

// GetGrantInput defines the input for getting a grant
type GetGrantInput struct {
	ID string
}

// GetGrantOutput defines the output for getting a grant
type GetGrantOutput struct {
	Grant *ashfall.AbilityGrant
}

// UpdateGrantInput defines the input for updating a grant
type UpdateGrantInput struct {
	Grant *ashfall.AbilityGrant
}

// UpdateGrantOutput defines the output for updating a grant
type UpdateGrantOutput struct {
	Grant *ashfall.AbilityGrant
}

// DeleteGrantInput defines the input for deleting a grant
type DeleteGrantInput struct {
	ID string
}

// DeleteGrantOutput defines the output for deleting a grant
type DeleteGrantOutput struct{}

// ListGrantsByCharacterIDInput defines the input for listing a character's grants
type ListGrantsByCharacterIDInput struct {
	CharacterID string
}

// ListGrantsByCharacterIDOutput defines the output for listing a character's grants
type ListGrantsByCharacterIDOutput struct {
	Grants []*ashfall.AbilityGrant
}

// ListGrantsBySourceInput defines the input for listing grants by source record
type ListGrantsBySourceInput struct {
	SourceID string
}

// ListGrantsBySourceOutput defines the output for listing grants by source record
type ListGrantsBySourceOutput struct {
	Grants []*ashfall.AbilityGrant
}

// ListAllGrantsInput defines the input for listing all grants
type ListAllGrantsInput struct{}

// ListAllGrantsOutput defines the output for listing all grants
type ListAllGrantsOutput struct {
	Grants []*ashfall.AbilityGrant
}
