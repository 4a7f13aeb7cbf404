package combat_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	"github.com/ashfall-rpg/gm-api/internal/lock"
	lockmock "github.com/ashfall-rpg/gm-api/internal/lock/mock"
	"github.com/ashfall-rpg/gm-api/internal/notify"
	"github.com/ashfall-rpg/gm-api/internal/orchestrators/combat"
	"github.com/ashfall-rpg/gm-api/internal/pkg/clock"
	"github.com/ashfall-rpg/gm-api/internal/pkg/idgen"
	characterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/characters"
	encounterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/encounters"
	inventoryrepo "github.com/ashfall-rpg/gm-api/internal/repositories/inventory"
	npcrepo "github.com/ashfall-rpg/gm-api/internal/repositories/npcs"
)

type OrchestratorTestSuite struct {
	suite.Suite

	mini   *miniredis.Miniredis
	client *redis.Client
	ctrl   *gomock.Controller

	encounterRepo encounterrepo.Repository
	characterRepo characterrepo.Repository
	npcRepo       npcrepo.Repository
	inventoryRepo inventoryrepo.Repository
	locker        *lockmock.MockLocker

	// lockState mirrors what the orchestrator last told the locker
	lockState *lock.SetLockedInput

	fixedTime    time.Time
	orchestrator *combat.Orchestrator
	ctx          context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()

	mini, err := miniredis.Run()
	s.Require().NoError(err)
	s.mini = mini
	s.client = redis.NewClient(&redis.Options{Addr: mini.Addr()})

	s.fixedTime = time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	fixed := clock.NewFixed(s.fixedTime)

	s.encounterRepo, err = encounterrepo.NewRedis(&encounterrepo.RedisConfig{Client: s.client, Clock: fixed})
	s.Require().NoError(err)
	s.characterRepo, err = characterrepo.NewRedis(&characterrepo.RedisConfig{Client: s.client, Clock: fixed})
	s.Require().NoError(err)
	s.npcRepo, err = npcrepo.NewRedis(&npcrepo.RedisConfig{Client: s.client, Clock: fixed})
	s.Require().NoError(err)
	s.inventoryRepo, err = inventoryrepo.NewRedis(&inventoryrepo.RedisConfig{Client: s.client, Clock: fixed})
	s.Require().NoError(err)

	s.ctrl = gomock.NewController(s.T())
	s.locker = lockmock.NewMockLocker(s.ctrl)
	s.lockState = nil
	s.locker.EXPECT().
		SetLocked(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input lock.SetLockedInput) (*lock.SetLockedOutput, error) {
			s.lockState = &input
			return &lock.SetLockedOutput{}, nil
		}).
		AnyTimes()

	s.orchestrator, err = combat.New(&combat.Config{
		EncounterRepo:          s.encounterRepo,
		CharacterRepo:          s.characterRepo,
		NPCRepo:                s.npcRepo,
		InventoryRepo:          s.inventoryRepo,
		Locker:                 s.locker,
		Bus:                    notify.Noop{},
		EncounterIDGenerator:   idgen.NewSequential("enc"),
		ParticipantIDGenerator: idgen.NewSequential("part"),
		Clock:                  fixed,
		NotesWindow:            20 * time.Millisecond,
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.orchestrator.Close()
	s.ctrl.Finish()
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Helpers

func (s *OrchestratorTestSuite) createCharacter(name string, currentHP, maxHP, ac int32) *ashfall.Character {
	char := &ashfall.Character{
		ID:       "char_" + name,
		PlayerID: "player_" + name,
		Name:     name,
		StatBlock: ashfall.StatBlock{
			CurrentHP: currentHP,
			MaxHP:     maxHP,
			AC:        ac,
		},
	}
	_, err := s.characterRepo.Create(s.ctx, characterrepo.CreateInput{Character: char})
	s.Require().NoError(err)
	return char
}

func (s *OrchestratorTestSuite) createNPC(name string, currentHP, maxHP, ac int32) *ashfall.NPC {
	npc := &ashfall.NPC{
		ID:      "npc_" + name,
		Name:    name,
		Hostile: true,
		StatBlock: ashfall.StatBlock{
			CurrentHP: currentHP,
			MaxHP:     maxHP,
			AC:        ac,
		},
	}
	_, err := s.npcRepo.Create(s.ctx, npcrepo.CreateInput{NPC: npc})
	s.Require().NoError(err)
	return npc
}

func (s *OrchestratorTestSuite) createEncounter(name string) *ashfall.Encounter {
	output, err := s.orchestrator.CreateEncounter(s.ctx, &combat.CreateEncounterInput{Name: name})
	s.Require().NoError(err)
	return output.Encounter
}

func (s *OrchestratorTestSuite) addCharacter(encounterID string, char *ashfall.Character, initiative int32) *ashfall.Participant {
	output, err := s.orchestrator.AddParticipant(s.ctx, &combat.AddParticipantInput{
		EncounterID: encounterID,
		Type:        ashfall.ParticipantTypePlayer,
		EntityID:    char.ID,
	})
	s.Require().NoError(err)
	return s.setInitiative(output.Participant.ID, initiative)
}

func (s *OrchestratorTestSuite) addNPC(encounterID string, npc *ashfall.NPC, initiative int32) *ashfall.Participant {
	output, err := s.orchestrator.AddParticipant(s.ctx, &combat.AddParticipantInput{
		EncounterID: encounterID,
		Type:        ashfall.ParticipantTypeNPC,
		EntityID:    npc.ID,
	})
	s.Require().NoError(err)
	return s.setInitiative(output.Participant.ID, initiative)
}

func (s *OrchestratorTestSuite) setInitiative(participantID string, initiative int32) *ashfall.Participant {
	output, err := s.orchestrator.UpdateInitiative(s.ctx, &combat.UpdateInitiativeInput{
		ParticipantID: participantID,
		Initiative:    &initiative,
	})
	s.Require().NoError(err)
	return output.Participant
}

func (s *OrchestratorTestSuite) startEncounter(encounterID string) *combat.StartEncounterOutput {
	output, err := s.orchestrator.StartEncounter(s.ctx, &combat.StartEncounterInput{EncounterID: encounterID})
	s.Require().NoError(err)
	return output
}

// Lifecycle

func (s *OrchestratorTestSuite) TestCreateEncounter() {
	encounter := s.createEncounter("Reactor Breach")

	s.Equal(ashfall.EncounterStatusDraft, encounter.Status)
	s.Equal("Reactor Breach", encounter.Name)
	s.Equal(int32(1), encounter.Round)
	s.Equal(int32(0), encounter.CurrentTurn)
	s.Empty(encounter.CurrentParticipantID)
}

func (s *OrchestratorTestSuite) TestCreateEncounterRequiresName() {
	_, err := s.orchestrator.CreateEncounter(s.ctx, &combat.CreateEncounterInput{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestStartEncounterRequiresParticipants() {
	encounter := s.createEncounter("Empty Fight")

	_, err := s.orchestrator.StartEncounter(s.ctx, &combat.StartEncounterInput{EncounterID: encounter.ID})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestStartEncounter() {
	encounter := s.createEncounter("Raider Ambush")
	slow := s.createCharacter("slow", 10, 10, 12)
	fast := s.createCharacter("fast", 8, 8, 14)
	s.addCharacter(encounter.ID, slow, 5)
	s.addCharacter(encounter.ID, fast, 18)

	output := s.startEncounter(encounter.ID)

	s.Equal(ashfall.EncounterStatusActive, output.Encounter.Status)
	s.Equal(int32(1), output.Encounter.Round)
	s.Equal(int32(0), output.Encounter.CurrentTurn)
	s.Require().Len(output.ActiveParticipants, 2)
	s.Equal("fast", output.ActiveParticipants[0].Name)
	s.Equal(output.ActiveParticipants[0].ID, output.Encounter.CurrentParticipantID)

	s.Require().NotNil(s.lockState)
	s.True(s.lockState.Locked)
	s.Require().NotNil(s.lockState.Reason)
	s.Equal("Raider Ambush", *s.lockState.Reason)
}

func (s *OrchestratorTestSuite) TestStartEncounterOnlyFromDraft() {
	encounter := s.createEncounter("Once Only")
	char := s.createCharacter("solo", 10, 10, 12)
	s.addCharacter(encounter.ID, char, 10)
	s.startEncounter(encounter.ID)

	_, err := s.orchestrator.StartEncounter(s.ctx, &combat.StartEncounterInput{EncounterID: encounter.ID})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestEndEncounter() {
	encounter := s.createEncounter("Short Fight")
	char := s.createCharacter("ender", 10, 10, 12)
	s.addCharacter(encounter.ID, char, 10)
	s.startEncounter(encounter.ID)

	output, err := s.orchestrator.EndEncounter(s.ctx, &combat.EndEncounterInput{EncounterID: encounter.ID})
	s.Require().NoError(err)

	s.Equal(ashfall.EncounterStatusCompleted, output.Encounter.Status)
	s.Equal(s.fixedTime.Unix(), output.Encounter.CompletedAt)

	s.Require().NotNil(s.lockState)
	s.False(s.lockState.Locked)
}

func (s *OrchestratorTestSuite) TestEndEncounterRequiresActive() {
	encounter := s.createEncounter("Never Started")

	_, err := s.orchestrator.EndEncounter(s.ctx, &combat.EndEncounterInput{EncounterID: encounter.ID})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestArchiveEncounter() {
	s.Run("archives a draft", func() {
		encounter := s.createEncounter("Old Draft")

		output, err := s.orchestrator.ArchiveEncounter(s.ctx, &combat.ArchiveEncounterInput{EncounterID: encounter.ID})
		s.Require().NoError(err)
		s.Equal(ashfall.EncounterStatusArchived, output.Encounter.Status)
	})

	s.Run("refuses an active encounter", func() {
		encounter := s.createEncounter("Still Running")
		char := s.createCharacter("archiver", 10, 10, 12)
		s.addCharacter(encounter.ID, char, 10)
		s.startEncounter(encounter.ID)

		_, err := s.orchestrator.ArchiveEncounter(s.ctx, &combat.ArchiveEncounterInput{EncounterID: encounter.ID})
		s.Require().Error(err)
		s.True(errors.IsFailedPrecondition(err))
	})
}

func (s *OrchestratorTestSuite) TestDeleteEncounterCascades() {
	encounter := s.createEncounter("Doomed")
	a := s.createCharacter("da", 10, 10, 12)
	b := s.createCharacter("db", 10, 10, 12)
	s.addCharacter(encounter.ID, a, 10)
	s.addCharacter(encounter.ID, b, 5)

	output, err := s.orchestrator.DeleteEncounter(s.ctx, &combat.DeleteEncounterInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal(2, output.ParticipantsRemoved)

	_, err = s.orchestrator.GetEncounter(s.ctx, &combat.GetEncounterInput{EncounterID: encounter.ID})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestDeleteEncounterRefusesActive() {
	encounter := s.createEncounter("Live Wire")
	char := s.createCharacter("deleter", 10, 10, 12)
	s.addCharacter(encounter.ID, char, 10)
	s.startEncounter(encounter.ID)

	_, err := s.orchestrator.DeleteEncounter(s.ctx, &combat.DeleteEncounterInput{EncounterID: encounter.ID})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

// Turn order

func (s *OrchestratorTestSuite) TestRosterSortedByInitiativeDescending() {
	encounter := s.createEncounter("Sort Check")
	low := s.createCharacter("low", 10, 10, 12)
	high := s.createCharacter("high", 10, 10, 12)
	mid := s.createCharacter("mid", 10, 10, 12)
	s.addCharacter(encounter.ID, low, 3)
	s.addCharacter(encounter.ID, high, 21)
	s.addCharacter(encounter.ID, mid, 12)

	output, err := s.orchestrator.GetEncounter(s.ctx, &combat.GetEncounterInput{EncounterID: encounter.ID})
	s.Require().NoError(err)

	s.Require().Len(output.Participants, 3)
	s.Equal("high", output.Participants[0].Name)
	s.Equal("mid", output.Participants[1].Name)
	s.Equal("low", output.Participants[2].Name)
}

func (s *OrchestratorTestSuite) TestEqualInitiativeKeepsInsertionOrder() {
	encounter := s.createEncounter("Tie Check")
	first := s.createCharacter("first", 10, 10, 12)
	second := s.createCharacter("second", 10, 10, 12)
	third := s.createCharacter("third", 10, 10, 12)
	s.addCharacter(encounter.ID, first, 10)
	s.addCharacter(encounter.ID, second, 10)
	s.addCharacter(encounter.ID, third, 10)

	output, err := s.orchestrator.GetEncounter(s.ctx, &combat.GetEncounterInput{EncounterID: encounter.ID})
	s.Require().NoError(err)

	s.Equal("first", output.Participants[0].Name)
	s.Equal("second", output.Participants[1].Name)
	s.Equal("third", output.Participants[2].Name)
}

func (s *OrchestratorTestSuite) TestUnrolledInitiativeSortsAsZero() {
	encounter := s.createEncounter("Unrolled")
	rolled := s.createCharacter("rolled", 10, 10, 12)
	unrolled := s.createCharacter("unrolled", 10, 10, 12)

	s.addCharacter(encounter.ID, rolled, 2)
	output, err := s.orchestrator.AddParticipant(s.ctx, &combat.AddParticipantInput{
		EncounterID: encounter.ID,
		Type:        ashfall.ParticipantTypePlayer,
		EntityID:    unrolled.ID,
	})
	s.Require().NoError(err)
	s.Nil(output.Participant.Initiative)

	view, err := s.orchestrator.GetEncounter(s.ctx, &combat.GetEncounterInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("rolled", view.Participants[0].Name)
	s.Equal("unrolled", view.Participants[1].Name)
}

func (s *OrchestratorTestSuite) TestNextTurnWrapsIntoNewRound() {
	encounter := s.createEncounter("Wrap Check")
	a := s.createCharacter("wa", 10, 10, 12)
	b := s.createCharacter("wb", 10, 10, 12)
	s.addCharacter(encounter.ID, a, 20)
	s.addCharacter(encounter.ID, b, 10)
	s.startEncounter(encounter.ID)

	next, err := s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("wb", next.CurrentParticipant.Name)
	s.Equal(int32(1), next.Encounter.Round)

	next, err = s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("wa", next.CurrentParticipant.Name)
	s.Equal(int32(2), next.Encounter.Round)
}

func (s *OrchestratorTestSuite) TestPrevTurnUnwindsRoundWrap() {
	encounter := s.createEncounter("Unwind Check")
	a := s.createCharacter("ua", 10, 10, 12)
	b := s.createCharacter("ub", 10, 10, 12)
	s.addCharacter(encounter.ID, a, 20)
	s.addCharacter(encounter.ID, b, 10)
	s.startEncounter(encounter.ID)

	// Advance into round 2, then step back across the wrap
	_, err := s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	_, err = s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)

	prev, err := s.orchestrator.PrevTurn(s.ctx, &combat.PrevTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("ub", prev.CurrentParticipant.Name)
	s.Equal(int32(1), prev.Encounter.Round)
}

func (s *OrchestratorTestSuite) TestPrevTurnStopsAtTopOfRoundOne() {
	encounter := s.createEncounter("Floor Check")
	a := s.createCharacter("fa", 10, 10, 12)
	b := s.createCharacter("fb", 10, 10, 12)
	s.addCharacter(encounter.ID, a, 20)
	s.addCharacter(encounter.ID, b, 10)
	s.startEncounter(encounter.ID)

	prev, err := s.orchestrator.PrevTurn(s.ctx, &combat.PrevTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("fa", prev.CurrentParticipant.Name)
	s.Equal(int32(1), prev.Encounter.Round)
}

func (s *OrchestratorTestSuite) TestInactiveParticipantsSkipTurns() {
	encounter := s.createEncounter("Skip Check")
	a := s.createCharacter("sa", 10, 10, 12)
	b := s.createCharacter("sb", 10, 10, 12)
	c := s.createCharacter("sc", 10, 10, 12)
	s.addCharacter(encounter.ID, a, 30)
	middle := s.addCharacter(encounter.ID, b, 20)
	s.addCharacter(encounter.ID, c, 10)

	_, err := s.orchestrator.SetParticipantActive(s.ctx, &combat.SetParticipantActiveInput{
		ParticipantID: middle.ID,
		IsActive:      false,
	})
	s.Require().NoError(err)

	s.startEncounter(encounter.ID)

	next, err := s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("sc", next.CurrentParticipant.Name)
}

func (s *OrchestratorTestSuite) TestTurnPointerSurvivesRosterGrowth() {
	encounter := s.createEncounter("Stable Pointer")
	a := s.createCharacter("pa", 10, 10, 12)
	b := s.createCharacter("pb", 10, 10, 12)
	c := s.createCharacter("pc", 10, 10, 12)
	s.addCharacter(encounter.ID, a, 30)
	s.addCharacter(encounter.ID, b, 20)
	s.addCharacter(encounter.ID, c, 10)
	s.startEncounter(encounter.ID)

	// Move to pb, then insert a faster combatant above it
	next, err := s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("pb", next.CurrentParticipant.Name)

	npc := s.createNPC("interloper", 8, 8, 13)
	s.addNPC(encounter.ID, npc, 25)

	// The turn stays with pb; advancing moves to pc, not back up the order
	next, err = s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("pc", next.CurrentParticipant.Name)
	s.Equal(int32(1), next.Encounter.Round)
}

func (s *OrchestratorTestSuite) TestRemovedCurrentFallsToDerivedIndex() {
	encounter := s.createEncounter("Fallback Pointer")
	a := s.createCharacter("ra", 10, 10, 12)
	b := s.createCharacter("rb", 10, 10, 12)
	c := s.createCharacter("rc", 10, 10, 12)
	s.addCharacter(encounter.ID, a, 30)
	middle := s.addCharacter(encounter.ID, b, 20)
	s.addCharacter(encounter.ID, c, 10)
	s.startEncounter(encounter.ID)

	next, err := s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("rb", next.CurrentParticipant.Name)

	_, err = s.orchestrator.RemoveParticipant(s.ctx, &combat.RemoveParticipantInput{ParticipantID: middle.ID})
	s.Require().NoError(err)

	// The pointer falls to rc, which now holds the stored index; advancing
	// wraps to ra and a new round
	next, err = s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal("ra", next.CurrentParticipant.Name)
	s.Equal(int32(2), next.Encounter.Round)
}

func (s *OrchestratorTestSuite) TestNextTurnWithNobodyActiveClearsPointer() {
	encounter := s.createEncounter("Everyone Down")
	char := s.createCharacter("downed", 10, 10, 12)
	participant := s.addCharacter(encounter.ID, char, 10)
	s.startEncounter(encounter.ID)

	_, err := s.orchestrator.SetParticipantActive(s.ctx, &combat.SetParticipantActiveInput{
		ParticipantID: participant.ID,
		IsActive:      false,
	})
	s.Require().NoError(err)

	next, err := s.orchestrator.NextTurn(s.ctx, &combat.NextTurnInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Nil(next.CurrentParticipant)
	s.Equal(int32(0), next.Encounter.CurrentTurn)
	s.Empty(next.Encounter.CurrentParticipantID)
}

// Roster

func (s *OrchestratorTestSuite) TestAddParticipantSnapshotsEquippedGear() {
	encounter := s.createEncounter("Gear Check")
	char := s.createCharacter("geared", 9, 10, 12)

	_, err := s.inventoryRepo.Create(s.ctx, inventoryrepo.CreateInput{Row: &ashfall.InventoryItem{
		ID:          "inv_armor",
		CharacterID: char.ID,
		ItemID:      "item_armor",
		Quantity:    1,
		IsEquipped:  true,
		Item:        &ashfall.Item{ID: "item_armor", Name: "Scrap Plate", HPMod: 5, ACMod: 2},
	}})
	s.Require().NoError(err)

	output, err := s.orchestrator.AddParticipant(s.ctx, &combat.AddParticipantInput{
		EncounterID: encounter.ID,
		Type:        ashfall.ParticipantTypePlayer,
		EntityID:    char.ID,
	})
	s.Require().NoError(err)

	s.Equal(int32(15), output.Participant.MaxHP)
	s.Equal(int32(14), output.Participant.AC)
	s.Equal(int32(9), output.Participant.CurrentHP)
	s.True(output.Participant.IsActive)
}

func (s *OrchestratorTestSuite) TestAddAllPlayersSkipsExisting() {
	encounter := s.createEncounter("Party Time")
	present := s.createCharacter("present", 10, 10, 12)
	s.createCharacter("missing", 8, 8, 11)
	s.addCharacter(encounter.ID, present, 10)

	output, err := s.orchestrator.AddAllPlayers(s.ctx, &combat.AddAllPlayersInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Equal(1, output.Added)
	s.Equal(1, output.Skipped)

	view, err := s.orchestrator.GetEncounter(s.ctx, &combat.GetEncounterInput{EncounterID: encounter.ID})
	s.Require().NoError(err)
	s.Len(view.Participants, 2)
}

func (s *OrchestratorTestSuite) TestAddNPCGroupNumbersCopies() {
	encounter := s.createEncounter("Raider Pack")
	npc := s.createNPC("Raider", 6, 6, 13)

	output, err := s.orchestrator.AddNPCGroup(s.ctx, &combat.AddNPCGroupInput{
		EncounterID: encounter.ID,
		NPCID:       npc.ID,
		Count:       3,
	})
	s.Require().NoError(err)
	s.Require().Len(output.Participants, 3)
	s.Equal("Raider #1", output.Participants[0].Name)
	s.Equal("Raider #2", output.Participants[1].Name)
	s.Equal("Raider #3", output.Participants[2].Name)

	// A second group keeps counting
	output, err = s.orchestrator.AddNPCGroup(s.ctx, &combat.AddNPCGroupInput{
		EncounterID: encounter.ID,
		NPCID:       npc.ID,
		Count:       1,
	})
	s.Require().NoError(err)
	s.Equal("Raider #4", output.Participants[0].Name)
}

func (s *OrchestratorTestSuite) TestAddNPCGroupRejectsZeroCount() {
	encounter := s.createEncounter("Empty Pack")
	npc := s.createNPC("Ghost", 1, 1, 10)

	_, err := s.orchestrator.AddNPCGroup(s.ctx, &combat.AddNPCGroupInput{
		EncounterID: encounter.ID,
		NPCID:       npc.ID,
		Count:       0,
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

// HP bridge

func (s *OrchestratorTestSuite) TestApplyHPChangeClampsAtZero() {
	encounter := s.createEncounter("Overkill")
	char := s.createCharacter("victim", 10, 10, 12)
	participant := s.addCharacter(encounter.ID, char, 10)

	output, err := s.orchestrator.ApplyHPChange(s.ctx, &combat.ApplyHPChangeInput{
		ParticipantID: participant.ID,
		Delta:         -999,
	})
	s.Require().NoError(err)
	s.Equal(int32(10), output.PreviousHP)
	s.Equal(int32(0), output.NewHP)

	// Write-through reaches the canonical record
	charOutput, err := s.characterRepo.Get(s.ctx, characterrepo.GetInput{ID: char.ID})
	s.Require().NoError(err)
	s.Equal(int32(0), charOutput.Character.CurrentHP)
}

func (s *OrchestratorTestSuite) TestApplyHPChangeClampsAtMax() {
	encounter := s.createEncounter("Overheal")
	char := s.createCharacter("patient", 3, 10, 12)
	participant := s.addCharacter(encounter.ID, char, 10)

	output, err := s.orchestrator.ApplyHPChange(s.ctx, &combat.ApplyHPChangeInput{
		ParticipantID: participant.ID,
		Delta:         50,
	})
	s.Require().NoError(err)
	s.Equal(int32(10), output.NewHP)
}

func (s *OrchestratorTestSuite) TestApplyHPChangeSyncsNPC() {
	encounter := s.createEncounter("NPC Damage")
	npc := s.createNPC("Bruiser", 12, 12, 14)
	participant := s.addNPC(encounter.ID, npc, 8)

	_, err := s.orchestrator.ApplyHPChange(s.ctx, &combat.ApplyHPChangeInput{
		ParticipantID: participant.ID,
		Delta:         -5,
	})
	s.Require().NoError(err)

	npcOutput, err := s.npcRepo.Get(s.ctx, npcrepo.GetInput{ID: npc.ID})
	s.Require().NoError(err)
	s.Equal(int32(7), npcOutput.NPC.CurrentHP)
}

func (s *OrchestratorTestSuite) TestFullHeal() {
	encounter := s.createEncounter("Stimpack")
	char := s.createCharacter("wounded", 2, 10, 12)
	participant := s.addCharacter(encounter.ID, char, 10)

	output, err := s.orchestrator.FullHeal(s.ctx, &combat.FullHealInput{ParticipantID: participant.ID})
	s.Require().NoError(err)
	s.Equal(int32(10), output.Participant.CurrentHP)

	charOutput, err := s.characterRepo.Get(s.ctx, characterrepo.GetInput{ID: char.ID})
	s.Require().NoError(err)
	s.Equal(int32(10), charOutput.Character.CurrentHP)
}

func (s *OrchestratorTestSuite) TestSyncParticipantHP() {
	encounter := s.createEncounter("Outside Healing")
	char := s.createCharacter("healed", 4, 10, 12)
	participant := s.addCharacter(encounter.ID, char, 10)
	s.startEncounter(encounter.ID)

	output, err := s.orchestrator.SyncParticipantHP(s.ctx, &combat.SyncParticipantHPInput{
		CharacterID: char.ID,
		CurrentHP:   9,
	})
	s.Require().NoError(err)
	s.True(output.Synced)

	view, err := s.encounterRepo.GetParticipant(s.ctx, encounterrepo.GetParticipantInput{ID: participant.ID})
	s.Require().NoError(err)
	s.Equal(int32(9), view.Participant.CurrentHP)
}

func (s *OrchestratorTestSuite) TestSyncParticipantHPWithoutActiveEncounter() {
	char := s.createCharacter("benched", 4, 10, 12)

	output, err := s.orchestrator.SyncParticipantHP(s.ctx, &combat.SyncParticipantHPInput{
		CharacterID: char.ID,
		CurrentHP:   9,
	})
	s.Require().NoError(err)
	s.False(output.Synced)
}

// Notes

func (s *OrchestratorTestSuite) TestUpdateNotesCoalescesToLatest() {
	encounter := s.createEncounter("Note Taking")
	char := s.createCharacter("noted", 10, 10, 12)
	participant := s.addCharacter(encounter.ID, char, 10)

	for _, notes := range []string{"p", "po", "poi", "poisoned"} {
		_, err := s.orchestrator.UpdateNotes(s.ctx, &combat.UpdateNotesInput{
			ParticipantID: participant.ID,
			Notes:         notes,
		})
		s.Require().NoError(err)
	}

	s.Require().Eventually(func() bool {
		output, err := s.encounterRepo.GetParticipant(s.ctx, encounterrepo.GetParticipantInput{ID: participant.ID})
		return err == nil && output.Participant.Notes == "poisoned"
	}, time.Second, 5*time.Millisecond)
}

func (s *OrchestratorTestSuite) TestCloseFlushesPendingNotes() {
	encounter := s.createEncounter("Last Words")
	char := s.createCharacter("closer", 10, 10, 12)
	participant := s.addCharacter(encounter.ID, char, 10)

	_, err := s.orchestrator.UpdateNotes(s.ctx, &combat.UpdateNotesInput{
		ParticipantID: participant.ID,
		Notes:         "stunned",
	})
	s.Require().NoError(err)

	s.orchestrator.Close()

	output, err := s.encounterRepo.GetParticipant(s.ctx, encounterrepo.GetParticipantInput{ID: participant.ID})
	s.Require().NoError(err)
	s.Equal("stunned", output.Participant.Notes)
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func TestConfigValidate(t *testing.T) {
	_, err := combat.New(&combat.Config{})
	require.Error(t, err)
}
