// Package rest implements the charge economy: party-wide short and long
// rests over every ability grant in the campaign, plus single-grant charge
// spending and resets.
package rest

//go:generate mockgen -destination=mock/mock_service.go -package=restmock github.com/ashfall-rpg/gm-api/internal/orchestrators/rest Service

import (
	"context"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
)

// Service defines the rest orchestrator interface
type Service interface {
	// ShortRest recharges every short-rest grant in the campaign, capped at
	// each ability's maximum
	ShortRest(ctx context.Context, input *ShortRestInput) (*ShortRestOutput, error)

	// LongRest recharges long-rest grants once and short-rest grants twice,
	// capped at each ability's maximum
	LongRest(ctx context.Context, input *LongRestInput) (*LongRestOutput, error)

	// SpendCharge decrements a grant's charges. Spending an infinite ability
	// is a no-op.
	// Returns errors.FailedPrecondition when no charges remain
	SpendCharge(ctx context.Context, input *SpendChargeInput) (*SpendChargeOutput, error)

	// ResetCharges restores a grant to its ability's maximum
	ResetCharges(ctx context.Context, input *ResetChargesInput) (*ResetChargesOutput, error)
}

// ShortRestInput defines the input for a party-wide short rest
type ShortRestInput struct{}

// ShortRestOutput defines the output for a party-wide short rest
type ShortRestOutput struct {
	// ScannedGrants is how many grants the rest looked at
	ScannedGrants int
	// UpdatedGrants is how many grants actually changed
	UpdatedGrants int
}

// LongRestInput defines the input for a party-wide long rest
type LongRestInput struct{}

// LongRestOutput defines the output for a party-wide long rest
type LongRestOutput struct {
	ScannedGrants int
	UpdatedGrants int
}

// SpendChargeInput defines the input for spending one charge
type SpendChargeInput struct {
	GrantID string
}

// SpendChargeOutput defines the output for spending one charge
type SpendChargeOutput struct {
	Grant *ashfall.AbilityGrant
}

// ResetChargesInput defines the input for resetting a grant
type ResetChargesInput struct {
	GrantID string
}

// ResetChargesOutput defines the output for resetting a grant
type ResetChargesOutput struct {
	Grant *ashfall.AbilityGrant
}
