// Package lock provides the campaign combat lock. While an encounter is
// running the lock is engaged with the encounter's name so player-facing
// tools can freeze edits; ending the encounter releases it.
package lock

//go:generate mockgen -destination=mock/mock_locker.go -package=lockmock github.com/ashfall-rpg/gm-api/internal/lock Locker

import (
	"context"
)

// Locker is the combat lock collaborator
type Locker interface {
	// SetLocked engages or releases the campaign lock
	SetLocked(ctx context.Context, input SetLockedInput) (*SetLockedOutput, error)

	// GetLocked reads the current lock state
	GetLocked(ctx context.Context, input GetLockedInput) (*GetLockedOutput, error)
}

// SetLockedInput defines the input for setting the lock
type SetLockedInput struct {
	Locked bool
	// Reason is shown to players while locked; nil when releasing
	Reason *string
}

// SetLockedOutput defines the output for setting the lock
type SetLockedOutput struct{}

// GetLockedInput defines the input for reading the lock
type GetLockedInput struct{}

// GetLockedOutput defines the output for reading the lock
type GetLockedOutput struct {
	Locked bool
	Reason *string
}
