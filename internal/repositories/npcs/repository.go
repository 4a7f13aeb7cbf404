// Package npcs provides the interface for NPC persistence
package npcs

//go:generate mockgen -destination=mock/mock_repository.go -package=npcsmock github.com/ashfall-rpg/gm-api/internal/repositories/npcs Repository

import (
	"context"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
)

// Repository defines the interface for NPC persistence. Error code
// conventions match the characters repository.
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// CreateInput defines the input for creating an NPC
type CreateInput struct {
	NPC *ashfall.NPC
}

// CreateOutput defines the output for creating an NPC
type CreateOutput struct {
	NPC *ashfall.NPC
}

// GetInput defines the input for getting an NPC
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an NPC
type GetOutput struct {
	NPC *ashfall.NPC
}

// UpdateInput defines the input for updating an NPC
type UpdateInput struct {
	NPC *ashfall.NPC
}

// UpdateOutput defines the output for updating an NPC
type UpdateOutput struct {
	NPC *ashfall.NPC
}

// DeleteInput defines the input for deleting an NPC
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting an NPC
type DeleteOutput struct{}

// ListInput defines the input for listing NPCs
type ListInput struct{}

// ListOutput defines the output for listing NPCs
type ListOutput struct {
	NPCs []*ashfall.NPC
}
