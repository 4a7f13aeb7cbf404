package combat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashfall-rpg/gm-api/internal/engine/stats"
	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	characterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/characters"
	encounterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/encounters"
	inventoryrepo "github.com/ashfall-rpg/gm-api/internal/repositories/inventory"
	npcrepo "github.com/ashfall-rpg/gm-api/internal/repositories/npcs"
)

// AddParticipant snapshots a character or NPC into the roster
func (o *Orchestrator) AddParticipant(ctx context.Context, input *AddParticipantInput) (*AddParticipantOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	if input.EncounterID == "" {
		vb.RequiredField("EncounterID")
	}
	if input.EntityID == "" {
		vb.RequiredField("EntityID")
	}
	if input.Type != ashfall.ParticipantTypePlayer && input.Type != ashfall.ParticipantTypeNPC {
		vb.InvalidField("Type", fmt.Sprintf("unknown participant type %q", input.Type))
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	_, participants, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	participant, err := o.snapshotParticipant(ctx, input.EncounterID, input.Type, input.EntityID, nextSortOrder(participants))
	if err != nil {
		return nil, err
	}

	addOutput, err := o.encounterRepo.AddParticipant(ctx, encounterrepo.AddParticipantInput{Participant: participant})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to add participant to encounter %s", input.EncounterID)
	}

	o.publish(ctx, collectionParticipants, participant.ID)

	slog.InfoContext(ctx, "added participant",
		"encounter_id", input.EncounterID,
		"participant_id", participant.ID,
		"type", input.Type,
		"name", participant.Name)

	return &AddParticipantOutput{Participant: addOutput.Participant}, nil
}

// AddAllPlayers adds every character not already in the roster
func (o *Orchestrator) AddAllPlayers(ctx context.Context, input *AddAllPlayersInput) (*AddAllPlayersOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	_, participants, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	listOutput, err := o.characterRepo.List(ctx, characterrepo.ListInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list characters")
	}

	present := make(map[string]bool)
	for _, p := range participants {
		if p.Type == ashfall.ParticipantTypePlayer {
			present[p.EntityID] = true
		}
	}

	sortOrder := nextSortOrder(participants)
	added, skipped := 0, 0
	for _, character := range listOutput.Characters {
		if present[character.ID] {
			skipped++
			continue
		}

		participant, err := o.snapshotCharacter(ctx, input.EncounterID, character.ID, sortOrder)
		if err != nil {
			return nil, err
		}

		if _, err := o.encounterRepo.AddParticipant(ctx, encounterrepo.AddParticipantInput{Participant: participant}); err != nil {
			return nil, errors.Wrapf(err, "failed to add character %s to encounter %s", character.ID, input.EncounterID)
		}

		sortOrder++
		added++
	}

	if added > 0 {
		o.publish(ctx, collectionParticipants, input.EncounterID)
	}

	slog.InfoContext(ctx, "added party to encounter",
		"encounter_id", input.EncounterID,
		"added", added,
		"skipped", skipped)

	return &AddAllPlayersOutput{Added: added, Skipped: skipped}, nil
}

// AddNPCGroup adds count independent copies of one NPC. Copies get numbered
// names so the roster stays readable.
func (o *Orchestrator) AddNPCGroup(ctx context.Context, input *AddNPCGroupInput) (*AddNPCGroupOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	if input.EncounterID == "" {
		vb.RequiredField("EncounterID")
	}
	if input.NPCID == "" {
		vb.RequiredField("NPCID")
	}
	if input.Count < 1 {
		vb.InvalidField("Count", "must be at least 1")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	_, participants, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	getOutput, err := o.npcRepo.Get(ctx, npcrepo.GetInput{ID: input.NPCID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get NPC %s", input.NPCID)
	}
	npc := getOutput.NPC

	// Continue numbering past copies already in the roster
	existing := 0
	for _, p := range participants {
		if p.Type == ashfall.ParticipantTypeNPC && p.EntityID == input.NPCID {
			existing++
		}
	}

	sortOrder := nextSortOrder(participants)
	created := make([]*ashfall.Participant, 0, input.Count)
	for i := int32(0); i < input.Count; i++ {
		participant := &ashfall.Participant{
			ID:          o.participantIDGen.Generate(),
			EncounterID: input.EncounterID,
			Type:        ashfall.ParticipantTypeNPC,
			EntityID:    npc.ID,
			Name:        fmt.Sprintf("%s #%d", npc.Name, existing+int(i)+1),
			CurrentHP:   npc.CurrentHP,
			MaxHP:       npc.MaxHP,
			AC:          npc.AC,
			IsActive:    true,
			SortOrder:   sortOrder,
		}
		sortOrder++

		addOutput, err := o.encounterRepo.AddParticipant(ctx, encounterrepo.AddParticipantInput{Participant: participant})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to add NPC %s copy to encounter %s", npc.ID, input.EncounterID)
		}
		created = append(created, addOutput.Participant)
	}

	o.publish(ctx, collectionParticipants, input.EncounterID)

	slog.InfoContext(ctx, "added NPC group",
		"encounter_id", input.EncounterID,
		"npc_id", npc.ID,
		"count", input.Count)

	return &AddNPCGroupOutput{Participants: created}, nil
}

// RemoveParticipant deletes a roster row. If it held the turn, the pointer
// falls to whoever now occupies the derived index on the next transition.
func (o *Orchestrator) RemoveParticipant(ctx context.Context, input *RemoveParticipantInput) (*RemoveParticipantOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ParticipantID == "" {
		return nil, errors.InvalidArgument("participant ID is required")
	}

	if _, err := o.encounterRepo.RemoveParticipant(ctx, encounterrepo.RemoveParticipantInput{ID: input.ParticipantID}); err != nil {
		return nil, errors.Wrapf(err, "failed to remove participant %s", input.ParticipantID)
	}

	o.publish(ctx, collectionParticipants, input.ParticipantID)

	return &RemoveParticipantOutput{}, nil
}

// UpdateInitiative sets or clears a participant's initiative
func (o *Orchestrator) UpdateInitiative(ctx context.Context, input *UpdateInitiativeInput) (*UpdateInitiativeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ParticipantID == "" {
		return nil, errors.InvalidArgument("participant ID is required")
	}

	getOutput, err := o.encounterRepo.GetParticipant(ctx, encounterrepo.GetParticipantInput{ID: input.ParticipantID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get participant %s", input.ParticipantID)
	}

	participant := getOutput.Participant
	participant.Initiative = input.Initiative

	updateOutput, err := o.encounterRepo.UpdateParticipant(ctx, encounterrepo.UpdateParticipantInput{Participant: participant})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update participant %s", input.ParticipantID)
	}

	o.publish(ctx, collectionParticipants, participant.ID)

	return &UpdateInitiativeOutput{Participant: updateOutput.Participant}, nil
}

// SetParticipantActive toggles a participant in or out of the turn order
func (o *Orchestrator) SetParticipantActive(ctx context.Context, input *SetParticipantActiveInput) (*SetParticipantActiveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ParticipantID == "" {
		return nil, errors.InvalidArgument("participant ID is required")
	}

	getOutput, err := o.encounterRepo.GetParticipant(ctx, encounterrepo.GetParticipantInput{ID: input.ParticipantID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get participant %s", input.ParticipantID)
	}

	participant := getOutput.Participant
	participant.IsActive = input.IsActive

	updateOutput, err := o.encounterRepo.UpdateParticipant(ctx, encounterrepo.UpdateParticipantInput{Participant: participant})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update participant %s", input.ParticipantID)
	}

	o.publish(ctx, collectionParticipants, participant.ID)

	return &SetParticipantActiveOutput{Participant: updateOutput.Participant}, nil
}

// snapshotParticipant builds a roster row from a canonical record
func (o *Orchestrator) snapshotParticipant(ctx context.Context, encounterID string, participantType ashfall.ParticipantType, entityID string, sortOrder int32) (*ashfall.Participant, error) {
	if participantType == ashfall.ParticipantTypePlayer {
		return o.snapshotCharacter(ctx, encounterID, entityID, sortOrder)
	}

	getOutput, err := o.npcRepo.Get(ctx, npcrepo.GetInput{ID: entityID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get NPC %s", entityID)
	}
	npc := getOutput.NPC

	return &ashfall.Participant{
		ID:          o.participantIDGen.Generate(),
		EncounterID: encounterID,
		Type:        ashfall.ParticipantTypeNPC,
		EntityID:    npc.ID,
		Name:        npc.Name,
		CurrentHP:   npc.CurrentHP,
		MaxHP:       npc.MaxHP,
		AC:          npc.AC,
		IsActive:    true,
		SortOrder:   sortOrder,
	}, nil
}

// snapshotCharacter captures a character's effective MaxHP and AC, gear
// included, at add-time. The snapshot does not live-update with equipment.
func (o *Orchestrator) snapshotCharacter(ctx context.Context, encounterID, characterID string, sortOrder int32) (*ashfall.Participant, error) {
	getOutput, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: characterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", characterID)
	}
	character := getOutput.Character

	invOutput, err := o.inventoryRepo.ListByCharacterID(ctx, inventoryrepo.ListByCharacterIDInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list inventory of character %s", characterID)
	}

	effective := stats.Aggregate(character.StatBlock, invOutput.Rows)

	return &ashfall.Participant{
		ID:          o.participantIDGen.Generate(),
		EncounterID: encounterID,
		Type:        ashfall.ParticipantTypePlayer,
		EntityID:    character.ID,
		Name:        character.Name,
		CurrentHP:   ashfall.ClampHP(character.CurrentHP, effective.MaxHP),
		MaxHP:       effective.MaxHP,
		AC:          effective.AC,
		IsActive:    true,
		SortOrder:   sortOrder,
	}, nil
}

func nextSortOrder(participants []*ashfall.Participant) int32 {
	var max int32 = -1
	for _, p := range participants {
		if p.SortOrder > max {
			max = p.SortOrder
		}
	}
	return max + 1
}
