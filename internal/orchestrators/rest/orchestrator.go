package rest

import (
	"context"
	"log/slog"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	"github.com/ashfall-rpg/gm-api/internal/notify"
	abilityrepo "github.com/ashfall-rpg/gm-api/internal/repositories/abilities"
)

const collectionGrants = "ability_grants"

// Config holds the dependencies for the rest orchestrator
type Config struct {
	AbilityRepo abilityrepo.Repository
	Bus         notify.Bus
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.AbilityRepo == nil {
		vb.RequiredField("AbilityRepo")
	}
	if c.Bus == nil {
		vb.RequiredField("Bus")
	}

	return vb.Build()
}

// Orchestrator implements the rest Service interface
type Orchestrator struct {
	abilityRepo abilityrepo.Repository
	bus         notify.Bus
}

// New creates a new rest orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Orchestrator{
		abilityRepo: cfg.AbilityRepo,
		bus:         cfg.Bus,
	}, nil
}

// Ensure Orchestrator implements the Service interface
var _ Service = (*Orchestrator)(nil)

// ShortRest recharges every short-rest grant in the campaign
func (o *Orchestrator) ShortRest(ctx context.Context, input *ShortRestInput) (*ShortRestOutput, error) {
	scanned, updated, err := o.applyRest(ctx, map[ashfall.ChargeType]int32{
		ashfall.ChargeTypeShortRest: 1,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "short rest applied",
		"scanned", scanned,
		"updated", updated)

	return &ShortRestOutput{ScannedGrants: scanned, UpdatedGrants: updated}, nil
}

// LongRest recharges long-rest grants once and short-rest grants twice
func (o *Orchestrator) LongRest(ctx context.Context, input *LongRestInput) (*LongRestOutput, error) {
	scanned, updated, err := o.applyRest(ctx, map[ashfall.ChargeType]int32{
		ashfall.ChargeTypeShortRest: 2,
		ashfall.ChargeTypeLongRest:  1,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "long rest applied",
		"scanned", scanned,
		"updated", updated)

	return &LongRestOutput{ScannedGrants: scanned, UpdatedGrants: updated}, nil
}

// applyRest recharges all grants whose ability charge type appears in
// multipliers. Each changed grant is written individually; a failed write
// aborts the batch and leaves earlier updates in place. Recharge is capped,
// so re-running a partially applied rest is safe.
func (o *Orchestrator) applyRest(ctx context.Context, multipliers map[ashfall.ChargeType]int32) (scanned, updated int, err error) {
	listOutput, err := o.abilityRepo.List(ctx, abilityrepo.ListInput{})
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to list abilities")
	}

	abilitiesByID := make(map[string]*ashfall.Ability, len(listOutput.Abilities))
	for _, ability := range listOutput.Abilities {
		abilitiesByID[ability.ID] = ability
	}

	grantsOutput, err := o.abilityRepo.ListAllGrants(ctx, abilityrepo.ListAllGrantsInput{})
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to list ability grants")
	}

	for _, grant := range grantsOutput.Grants {
		scanned++

		ability, ok := abilitiesByID[grant.AbilityID]
		if !ok {
			slog.WarnContext(ctx, "grant references missing ability",
				"grant_id", grant.ID,
				"ability_id", grant.AbilityID)
			continue
		}

		multiplier, ok := multipliers[ability.ChargeType]
		if !ok || ability.MaxCharges == nil {
			continue
		}

		newCharges := grant.CurrentCharges + ability.RechargeAmount()*multiplier
		if newCharges > *ability.MaxCharges {
			newCharges = *ability.MaxCharges
		}
		if newCharges == grant.CurrentCharges {
			continue
		}

		grant.CurrentCharges = newCharges
		if _, err := o.abilityRepo.UpdateGrant(ctx, abilityrepo.UpdateGrantInput{Grant: grant}); err != nil {
			return scanned, updated, errors.Wrapf(err, "failed to recharge grant %s", grant.ID)
		}
		updated++

		o.publish(ctx, grant.ID)
	}

	return scanned, updated, nil
}

// SpendCharge decrements a grant's charges
func (o *Orchestrator) SpendCharge(ctx context.Context, input *SpendChargeInput) (*SpendChargeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.GrantID == "" {
		return nil, errors.InvalidArgument("grant ID is required")
	}

	grant, ability, err := o.loadGrant(ctx, input.GrantID)
	if err != nil {
		return nil, err
	}

	// Infinite abilities have nothing to track
	if ability.ChargeType == ashfall.ChargeTypeInfinite {
		return &SpendChargeOutput{Grant: grant}, nil
	}

	if grant.CurrentCharges <= 0 {
		return nil, errors.FailedPreconditionf("grant %s has no charges left", grant.ID)
	}

	grant.CurrentCharges--

	updateOutput, err := o.abilityRepo.UpdateGrant(ctx, abilityrepo.UpdateGrantInput{Grant: grant})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to spend charge on grant %s", grant.ID)
	}

	o.publish(ctx, grant.ID)

	return &SpendChargeOutput{Grant: updateOutput.Grant}, nil
}

// ResetCharges restores a grant to its ability's maximum
func (o *Orchestrator) ResetCharges(ctx context.Context, input *ResetChargesInput) (*ResetChargesOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.GrantID == "" {
		return nil, errors.InvalidArgument("grant ID is required")
	}

	grant, ability, err := o.loadGrant(ctx, input.GrantID)
	if err != nil {
		return nil, err
	}

	if ability.MaxCharges == nil {
		return &ResetChargesOutput{Grant: grant}, nil
	}

	grant.CurrentCharges = *ability.MaxCharges

	updateOutput, err := o.abilityRepo.UpdateGrant(ctx, abilityrepo.UpdateGrantInput{Grant: grant})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reset grant %s", grant.ID)
	}

	o.publish(ctx, grant.ID)

	return &ResetChargesOutput{Grant: updateOutput.Grant}, nil
}

func (o *Orchestrator) loadGrant(ctx context.Context, grantID string) (*ashfall.AbilityGrant, *ashfall.Ability, error) {
	grantOutput, err := o.abilityRepo.GetGrant(ctx, abilityrepo.GetGrantInput{ID: grantID})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to get grant %s", grantID)
	}

	abilityOutput, err := o.abilityRepo.Get(ctx, abilityrepo.GetInput{ID: grantOutput.Grant.AbilityID})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to get ability %s", grantOutput.Grant.AbilityID)
	}

	return grantOutput.Grant, abilityOutput.Ability, nil
}

func (o *Orchestrator) publish(ctx context.Context, grantID string) {
	if err := o.bus.Publish(ctx, collectionGrants, grantID); err != nil {
		slog.WarnContext(ctx, "failed to publish change event",
			"collection", collectionGrants,
			"grant_id", grantID,
			"error", err)
	}
}
