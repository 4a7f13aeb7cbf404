// Package inventory provides persistence for per-character inventory rows
package inventory

//go:generate mockgen -destination=mock/mock_repository.go -package=inventorymock github.com/ashfall-rpg/gm-api/internal/repositories/inventory Repository

import (
	"context"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
)

// Repository defines the interface for inventory persistence. Error code
// conventions match the characters repository.
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByCharacterID retrieves all inventory rows held by a character
	ListByCharacterID(ctx context.Context, input ListByCharacterIDInput) (*ListByCharacterIDOutput, error)
}

// CreateInput defines the input for creating an inventory row
type CreateInput struct {
	Row *ashfall.InventoryItem
}

// CreateOutput defines the output for creating an inventory row
type CreateOutput struct {
	Row *ashfall.InventoryItem
}

// GetInput defines the input for getting an inventory row
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an inventory row
type GetOutput struct {
	Row *ashfall.InventoryItem
}

// UpdateInput defines the input for updating an inventory row
type UpdateInput struct {
	Row *ashfall.InventoryItem
}

// UpdateOutput defines the output for updating an inventory row
type UpdateOutput struct {
	Row *ashfall.InventoryItem
}

// DeleteInput defines the input for deleting an inventory row
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting an inventory row
type DeleteOutput struct{}

// ListByCharacterIDInput defines the input for listing a character's rows
type ListByCharacterIDInput struct {
	CharacterID string
}

// ListByCharacterIDOutput defines the output for listing a character's rows
type ListByCharacterIDOutput struct {
	Rows []*ashfall.InventoryItem
}
