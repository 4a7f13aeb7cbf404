package rest_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	"github.com/ashfall-rpg/gm-api/internal/notify"
	"github.com/ashfall-rpg/gm-api/internal/orchestrators/rest"
	abilityrepo "github.com/ashfall-rpg/gm-api/internal/repositories/abilities"
)

type OrchestratorTestSuite struct {
	suite.Suite

	mini   *miniredis.Miniredis
	client *redis.Client

	abilityRepo  abilityrepo.Repository
	orchestrator *rest.Orchestrator
	ctx          context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()

	mini, err := miniredis.Run()
	s.Require().NoError(err)
	s.mini = mini
	s.client = redis.NewClient(&redis.Options{Addr: mini.Addr()})

	s.abilityRepo, err = abilityrepo.NewRedis(&abilityrepo.RedisConfig{Client: s.client})
	s.Require().NoError(err)

	s.orchestrator, err = rest.New(&rest.Config{
		AbilityRepo: s.abilityRepo,
		Bus:         notify.Noop{},
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *OrchestratorTestSuite) createAbility(id string, chargeType ashfall.ChargeType, maxCharges, perRest *int32) *ashfall.Ability {
	ability := &ashfall.Ability{
		ID:             id,
		Name:           id,
		ChargeType:     chargeType,
		MaxCharges:     maxCharges,
		ChargesPerRest: perRest,
	}
	_, err := s.abilityRepo.Create(s.ctx, abilityrepo.CreateInput{Ability: ability})
	s.Require().NoError(err)
	return ability
}

func (s *OrchestratorTestSuite) createGrant(id, characterID, abilityID string, charges int32) *ashfall.AbilityGrant {
	grant := &ashfall.AbilityGrant{
		ID:             id,
		CharacterID:    characterID,
		AbilityID:      abilityID,
		CurrentCharges: charges,
		SourceType:     ashfall.GrantSourceClass,
		SourceID:       "class_vanguard",
	}
	_, err := s.abilityRepo.CreateGrant(s.ctx, abilityrepo.CreateGrantInput{Grant: grant})
	s.Require().NoError(err)
	return grant
}

func (s *OrchestratorTestSuite) grantCharges(id string) int32 {
	output, err := s.abilityRepo.GetGrant(s.ctx, abilityrepo.GetGrantInput{ID: id})
	s.Require().NoError(err)
	return output.Grant.CurrentCharges
}

func int32p(v int32) *int32 { return &v }

func (s *OrchestratorTestSuite) TestShortRestRechargesShortRestGrants() {
	s.createAbility("surge", ashfall.ChargeTypeShortRest, int32p(3), int32p(1))
	s.createGrant("grant_empty", "char_a", "surge", 0)
	s.createGrant("grant_partial", "char_b", "surge", 2)

	output, err := s.orchestrator.ShortRest(s.ctx, &rest.ShortRestInput{})
	s.Require().NoError(err)

	s.Equal(2, output.ScannedGrants)
	s.Equal(2, output.UpdatedGrants)
	s.Equal(int32(1), s.grantCharges("grant_empty"))
	s.Equal(int32(3), s.grantCharges("grant_partial"))
}

func (s *OrchestratorTestSuite) TestShortRestCapsAtMax() {
	s.createAbility("surge", ashfall.ChargeTypeShortRest, int32p(2), int32p(2))
	s.createGrant("grant_full", "char_a", "surge", 2)

	output, err := s.orchestrator.ShortRest(s.ctx, &rest.ShortRestInput{})
	s.Require().NoError(err)

	s.Equal(1, output.ScannedGrants)
	s.Equal(0, output.UpdatedGrants)
	s.Equal(int32(2), s.grantCharges("grant_full"))
}

func (s *OrchestratorTestSuite) TestShortRestLeavesLongRestGrantsAlone() {
	s.createAbility("overdrive", ashfall.ChargeTypeLongRest, int32p(2), int32p(1))
	s.createGrant("grant_long", "char_a", "overdrive", 0)

	output, err := s.orchestrator.ShortRest(s.ctx, &rest.ShortRestInput{})
	s.Require().NoError(err)

	s.Equal(1, output.ScannedGrants)
	s.Equal(0, output.UpdatedGrants)
	s.Equal(int32(0), s.grantCharges("grant_long"))
}

func (s *OrchestratorTestSuite) TestLongRestRechargesShortRestTwice() {
	s.createAbility("surge", ashfall.ChargeTypeShortRest, int32p(5), int32p(1))
	s.createAbility("overdrive", ashfall.ChargeTypeLongRest, int32p(2), int32p(1))
	s.createGrant("grant_short", "char_a", "surge", 0)
	s.createGrant("grant_long", "char_a", "overdrive", 0)

	output, err := s.orchestrator.LongRest(s.ctx, &rest.LongRestInput{})
	s.Require().NoError(err)

	s.Equal(2, output.ScannedGrants)
	s.Equal(2, output.UpdatedGrants)
	s.Equal(int32(2), s.grantCharges("grant_short"))
	s.Equal(int32(1), s.grantCharges("grant_long"))
}

func (s *OrchestratorTestSuite) TestRestIgnoresInfiniteAndUses() {
	s.createAbility("implant_scan", ashfall.ChargeTypeInfinite, nil, nil)
	s.createAbility("flare", ashfall.ChargeTypeUses, int32p(3), nil)
	s.createGrant("grant_infinite", "char_a", "implant_scan", 0)
	s.createGrant("grant_uses", "char_a", "flare", 1)

	output, err := s.orchestrator.LongRest(s.ctx, &rest.LongRestInput{})
	s.Require().NoError(err)

	s.Equal(2, output.ScannedGrants)
	s.Equal(0, output.UpdatedGrants)
	s.Equal(int32(0), s.grantCharges("grant_infinite"))
	s.Equal(int32(1), s.grantCharges("grant_uses"))
}

func (s *OrchestratorTestSuite) TestRestIsIdempotentAtCap() {
	s.createAbility("surge", ashfall.ChargeTypeShortRest, int32p(3), nil)
	s.createGrant("grant_a", "char_a", "surge", 1)

	_, err := s.orchestrator.ShortRest(s.ctx, &rest.ShortRestInput{})
	s.Require().NoError(err)
	s.Equal(int32(3), s.grantCharges("grant_a"))

	// Per-rest amount defaults to MaxCharges when unset, so one rest fills
	// the grant and a second changes nothing
	output, err := s.orchestrator.ShortRest(s.ctx, &rest.ShortRestInput{})
	s.Require().NoError(err)
	s.Equal(0, output.UpdatedGrants)
	s.Equal(int32(3), s.grantCharges("grant_a"))
}

func (s *OrchestratorTestSuite) TestSpendCharge() {
	s.createAbility("surge", ashfall.ChargeTypeShortRest, int32p(3), int32p(1))
	s.createGrant("grant_a", "char_a", "surge", 2)

	output, err := s.orchestrator.SpendCharge(s.ctx, &rest.SpendChargeInput{GrantID: "grant_a"})
	s.Require().NoError(err)
	s.Equal(int32(1), output.Grant.CurrentCharges)
}

func (s *OrchestratorTestSuite) TestSpendChargeAtZeroFails() {
	s.createAbility("surge", ashfall.ChargeTypeShortRest, int32p(3), int32p(1))
	s.createGrant("grant_a", "char_a", "surge", 0)

	_, err := s.orchestrator.SpendCharge(s.ctx, &rest.SpendChargeInput{GrantID: "grant_a"})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Equal(int32(0), s.grantCharges("grant_a"))
}

func (s *OrchestratorTestSuite) TestSpendChargeInfiniteIsNoop() {
	s.createAbility("implant_scan", ashfall.ChargeTypeInfinite, nil, nil)
	s.createGrant("grant_a", "char_a", "implant_scan", 0)

	output, err := s.orchestrator.SpendCharge(s.ctx, &rest.SpendChargeInput{GrantID: "grant_a"})
	s.Require().NoError(err)
	s.Equal(int32(0), output.Grant.CurrentCharges)
}

func (s *OrchestratorTestSuite) TestSpendChargeUnknownGrant() {
	_, err := s.orchestrator.SpendCharge(s.ctx, &rest.SpendChargeInput{GrantID: "grant_missing"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestResetCharges() {
	s.createAbility("flare", ashfall.ChargeTypeUses, int32p(3), nil)
	s.createGrant("grant_a", "char_a", "flare", 0)

	output, err := s.orchestrator.ResetCharges(s.ctx, &rest.ResetChargesInput{GrantID: "grant_a"})
	s.Require().NoError(err)
	s.Equal(int32(3), output.Grant.CurrentCharges)
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
