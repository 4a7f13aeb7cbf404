// Package items provides the interface for item definition persistence
package items

//go:generate mockgen -destination=mock/mock_repository.go -package=itemsmock github.com/ashfall-rpg/gm-api/internal/repositories/items Repository

import (
	"context"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
)

// Repository defines the interface for item persistence. Error code
// conventions match the characters repository.
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// CreateInput defines the input for creating an item
type CreateInput struct {
	Item *ashfall.Item
}

// CreateOutput defines the output for creating an item
type CreateOutput struct {
	Item *ashfall.Item
}

// GetInput defines the input for getting an item
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an item
type GetOutput struct {
	Item *ashfall.Item
}

// UpdateInput defines the input for updating an item
type UpdateInput struct {
	Item *ashfall.Item
}

// UpdateOutput defines the output for updating an item
type UpdateOutput struct {
	Item *ashfall.Item
}

// DeleteInput defines the input for deleting an item
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting an item
type DeleteOutput struct{}

// ListInput defines the input for listing items
type ListInput struct{}

// ListOutput defines the output for listing items
type ListOutput struct {
	Items []*ashfall.Item
}
