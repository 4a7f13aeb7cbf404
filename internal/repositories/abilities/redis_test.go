package abilities_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	"github.com/ashfall-rpg/gm-api/internal/repositories/abilities"
)

type RedisRepositoryTestSuite struct {
	suite.Suite

	mini   *miniredis.Miniredis
	client *redis.Client
	repo   abilities.Repository
	ctx    context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	mini, err := miniredis.Run()
	s.Require().NoError(err)
	s.mini = mini
	s.client = redis.NewClient(&redis.Options{Addr: mini.Addr()})

	s.repo, err = abilities.NewRedis(&abilities.RedisConfig{Client: s.client})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func int32p(v int32) *int32 { return &v }

func (s *RedisRepositoryTestSuite) createAbility(id string) *ashfall.Ability {
	ability := &ashfall.Ability{
		ID:         id,
		Name:       "Shock Pulse",
		ChargeType: ashfall.ChargeTypeShortRest,
		MaxCharges: int32p(3),
	}
	_, err := s.repo.Create(s.ctx, abilities.CreateInput{Ability: ability})
	s.Require().NoError(err)
	return ability
}

func (s *RedisRepositoryTestSuite) createGrant(id, characterID, abilityID string) *ashfall.AbilityGrant {
	grant := &ashfall.AbilityGrant{
		ID:             id,
		CharacterID:    characterID,
		AbilityID:      abilityID,
		CurrentCharges: 3,
		SourceType:     ashfall.GrantSourceClass,
		SourceID:       "class_vanguard",
	}
	_, err := s.repo.CreateGrant(s.ctx, abilities.CreateGrantInput{Grant: grant})
	s.Require().NoError(err)
	return grant
}

func (s *RedisRepositoryTestSuite) TestAbilityRoundTrip() {
	s.createAbility("ability_1")

	got, err := s.repo.Get(s.ctx, abilities.GetInput{ID: "ability_1"})
	s.Require().NoError(err)
	s.Equal("Shock Pulse", got.Ability.Name)
	s.Require().NotNil(got.Ability.MaxCharges)
	s.Equal(int32(3), *got.Ability.MaxCharges)
	// ChargesPerRest stays nil and defaults to MaxCharges at recharge time
	s.Nil(got.Ability.ChargesPerRest)
	s.Equal(int32(3), got.Ability.RechargeAmount())
}

func (s *RedisRepositoryTestSuite) TestAbilityDuplicateFails() {
	s.createAbility("ability_1")

	_, err := s.repo.Create(s.ctx, abilities.CreateInput{Ability: &ashfall.Ability{ID: "ability_1", Name: "Again"}})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestAbilityDelete() {
	s.createAbility("ability_1")

	_, err := s.repo.Delete(s.ctx, abilities.DeleteInput{ID: "ability_1"})
	s.Require().NoError(err)

	list, err := s.repo.List(s.ctx, abilities.ListInput{})
	s.Require().NoError(err)
	s.Empty(list.Abilities)
}

func (s *RedisRepositoryTestSuite) TestGrantRoundTrip() {
	s.createAbility("ability_1")
	grant := s.createGrant("grant_1", "char_a", "ability_1")

	grant.CurrentCharges = 1
	_, err := s.repo.UpdateGrant(s.ctx, abilities.UpdateGrantInput{Grant: grant})
	s.Require().NoError(err)

	got, err := s.repo.GetGrant(s.ctx, abilities.GetGrantInput{ID: "grant_1"})
	s.Require().NoError(err)
	s.Equal(int32(1), got.Grant.CurrentCharges)
	s.Equal(ashfall.GrantSourceClass, got.Grant.SourceType)
}

func (s *RedisRepositoryTestSuite) TestListGrantsByCharacterID() {
	s.createAbility("ability_1")
	s.createGrant("grant_1", "char_a", "ability_1")
	s.createGrant("grant_2", "char_a", "ability_1")
	s.createGrant("grant_3", "char_b", "ability_1")

	grants, err := s.repo.ListGrantsByCharacterID(s.ctx, abilities.ListGrantsByCharacterIDInput{CharacterID: "char_a"})
	s.Require().NoError(err)
	s.Len(grants.Grants, 2)
}

func (s *RedisRepositoryTestSuite) TestListGrantsBySource() {
	s.createAbility("ability_1")
	s.createGrant("grant_1", "char_a", "ability_1")

	other := &ashfall.AbilityGrant{
		ID:          "grant_2",
		CharacterID: "char_a",
		AbilityID:   "ability_1",
		SourceType:  ashfall.GrantSourceItem,
		SourceID:    "inv_42",
	}
	_, err := s.repo.CreateGrant(s.ctx, abilities.CreateGrantInput{Grant: other})
	s.Require().NoError(err)

	bySource, err := s.repo.ListGrantsBySource(s.ctx, abilities.ListGrantsBySourceInput{SourceID: "inv_42"})
	s.Require().NoError(err)
	s.Require().Len(bySource.Grants, 1)
	s.Equal("grant_2", bySource.Grants[0].ID)

	_, err = s.repo.DeleteGrant(s.ctx, abilities.DeleteGrantInput{ID: "grant_2"})
	s.Require().NoError(err)

	bySource, err = s.repo.ListGrantsBySource(s.ctx, abilities.ListGrantsBySourceInput{SourceID: "inv_42"})
	s.Require().NoError(err)
	s.Empty(bySource.Grants)
}

func (s *RedisRepositoryTestSuite) TestListAllGrantsSpansCharacters() {
	s.createAbility("ability_1")
	s.createGrant("grant_1", "char_a", "ability_1")
	s.createGrant("grant_2", "char_b", "ability_1")

	grants, err := s.repo.ListAllGrants(s.ctx, abilities.ListAllGrantsInput{})
	s.Require().NoError(err)
	s.Len(grants.Grants, 2)
}

func (s *RedisRepositoryTestSuite) TestDeleteGrantDropsItFromIndexes() {
	s.createAbility("ability_1")
	s.createGrant("grant_1", "char_a", "ability_1")

	_, err := s.repo.DeleteGrant(s.ctx, abilities.DeleteGrantInput{ID: "grant_1"})
	s.Require().NoError(err)

	all, err := s.repo.ListAllGrants(s.ctx, abilities.ListAllGrantsInput{})
	s.Require().NoError(err)
	s.Empty(all.Grants)

	byChar, err := s.repo.ListGrantsByCharacterID(s.ctx, abilities.ListGrantsByCharacterIDInput{CharacterID: "char_a"})
	s.Require().NoError(err)
	s.Empty(byChar.Grants)
}

func (s *RedisRepositoryTestSuite) TestGetGrantNotFound() {
	_, err := s.repo.GetGrant(s.ctx, abilities.GetGrantInput{ID: "grant_ghost"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
