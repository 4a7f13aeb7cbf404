package encounters_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	"github.com/ashfall-rpg/gm-api/internal/pkg/clock"
	"github.com/ashfall-rpg/gm-api/internal/repositories/encounters"
)

type RedisRepositoryTestSuite struct {
	suite.Suite

	mini   *miniredis.Miniredis
	client *redis.Client
	repo   encounters.Repository
	ctx    context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	mini, err := miniredis.Run()
	s.Require().NoError(err)
	s.mini = mini
	s.client = redis.NewClient(&redis.Options{Addr: mini.Addr()})

	s.repo, err = encounters.NewRedis(&encounters.RedisConfig{
		Client: s.client,
		Clock:  clock.NewFixed(time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)),
	})
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

func (s *RedisRepositoryTestSuite) createEncounter(id string) *ashfall.Encounter {
	encounter := &ashfall.Encounter{
		ID:     id,
		Name:   "Reactor Breach",
		Status: ashfall.EncounterStatusDraft,
	}
	_, err := s.repo.Create(s.ctx, encounters.CreateInput{Encounter: encounter})
	s.Require().NoError(err)
	return encounter
}

func (s *RedisRepositoryTestSuite) addParticipant(id, encounterID string) *ashfall.Participant {
	participant := &ashfall.Participant{
		ID:          id,
		EncounterID: encounterID,
		Type:        ashfall.ParticipantTypeNPC,
		EntityID:    "npc_raider",
		Name:        "Raider",
		CurrentHP:   6,
		MaxHP:       6,
		AC:          12,
		IsActive:    true,
	}
	_, err := s.repo.AddParticipant(s.ctx, encounters.AddParticipantInput{Participant: participant})
	s.Require().NoError(err)
	return participant
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	s.createEncounter("enc_1")

	got, err := s.repo.Get(s.ctx, encounters.GetInput{ID: "enc_1"})
	s.Require().NoError(err)
	s.Equal("Reactor Breach", got.Encounter.Name)
	s.Equal(ashfall.EncounterStatusDraft, got.Encounter.Status)
}

func (s *RedisRepositoryTestSuite) TestCreateDuplicateFails() {
	s.createEncounter("enc_1")

	_, err := s.repo.Create(s.ctx, encounters.CreateInput{Encounter: &ashfall.Encounter{ID: "enc_1", Name: "Again"}})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateStatus() {
	encounter := s.createEncounter("enc_1")
	encounter.Status = ashfall.EncounterStatusActive
	encounter.Round = 1

	_, err := s.repo.Update(s.ctx, encounters.UpdateInput{Encounter: encounter})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, encounters.GetInput{ID: "enc_1"})
	s.Require().NoError(err)
	s.Equal(ashfall.EncounterStatusActive, got.Encounter.Status)
	s.Equal(int32(1), got.Encounter.Round)
}

func (s *RedisRepositoryTestSuite) TestDeleteCascadesToParticipants() {
	s.createEncounter("enc_1")
	s.addParticipant("part_1", "enc_1")
	s.addParticipant("part_2", "enc_1")

	output, err := s.repo.Delete(s.ctx, encounters.DeleteInput{ID: "enc_1"})
	s.Require().NoError(err)
	s.Equal(2, output.ParticipantsRemoved)

	_, err = s.repo.GetParticipant(s.ctx, encounters.GetParticipantInput{ID: "part_1"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))

	list, err := s.repo.List(s.ctx, encounters.ListInput{})
	s.Require().NoError(err)
	s.Empty(list.Encounters)
}

func (s *RedisRepositoryTestSuite) TestParticipantRoundTrip() {
	s.createEncounter("enc_1")
	participant := s.addParticipant("part_1", "enc_1")

	initiative := int32(17)
	participant.Initiative = &initiative
	participant.Notes = "bleeding"

	_, err := s.repo.UpdateParticipant(s.ctx, encounters.UpdateParticipantInput{Participant: participant})
	s.Require().NoError(err)

	got, err := s.repo.GetParticipant(s.ctx, encounters.GetParticipantInput{ID: "part_1"})
	s.Require().NoError(err)
	s.Require().NotNil(got.Participant.Initiative)
	s.Equal(int32(17), *got.Participant.Initiative)
	s.Equal("bleeding", got.Participant.Notes)
}

func (s *RedisRepositoryTestSuite) TestRemoveParticipant() {
	s.createEncounter("enc_1")
	s.addParticipant("part_1", "enc_1")
	s.addParticipant("part_2", "enc_1")

	_, err := s.repo.RemoveParticipant(s.ctx, encounters.RemoveParticipantInput{ID: "part_1"})
	s.Require().NoError(err)

	list, err := s.repo.ListParticipants(s.ctx, encounters.ListParticipantsInput{EncounterID: "enc_1"})
	s.Require().NoError(err)
	s.Require().Len(list.Participants, 1)
	s.Equal("part_2", list.Participants[0].ID)
}

func (s *RedisRepositoryTestSuite) TestListParticipantsEmptyEncounter() {
	s.createEncounter("enc_1")

	list, err := s.repo.ListParticipants(s.ctx, encounters.ListParticipantsInput{EncounterID: "enc_1"})
	s.Require().NoError(err)
	s.Empty(list.Participants)
}

func (s *RedisRepositoryTestSuite) TestGetParticipantNotFound() {
	_, err := s.repo.GetParticipant(s.ctx, encounters.GetParticipantInput{ID: "part_ghost"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
