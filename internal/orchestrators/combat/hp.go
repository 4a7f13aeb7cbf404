package combat

import (
	"context"
	"log/slog"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	characterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/characters"
	encounterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/encounters"
	npcrepo "github.com/ashfall-rpg/gm-api/internal/repositories/npcs"
)

// ApplyHPChange damages or heals a participant and writes the result
// through to the canonical record
func (o *Orchestrator) ApplyHPChange(ctx context.Context, input *ApplyHPChangeInput) (*ApplyHPChangeOutput, error) {
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
	previous := participant.CurrentHP

	return o.writeHP(ctx, participant, previous, participant.CurrentHP+input.Delta)
}

// FullHeal restores a participant to its snapshot MaxHP
func (o *Orchestrator) FullHeal(ctx context.Context, input *FullHealInput) (*FullHealOutput, error) {
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

	hpOutput, err := o.writeHP(ctx, participant, participant.CurrentHP, participant.MaxHP)
	if err != nil {
		return nil, err
	}

	return &FullHealOutput{Participant: hpOutput.Participant}, nil
}

// writeHP clamps and persists a participant HP value, then pushes it into
// the canonical character or NPC record. The canonical side clamps against
// its own MaxHP, which can differ from the combat snapshot.
func (o *Orchestrator) writeHP(ctx context.Context, participant *ashfall.Participant, previous, hp int32) (*ApplyHPChangeOutput, error) {
	participant.SetCurrentHP(hp)

	if _, err := o.encounterRepo.UpdateParticipant(ctx, encounterrepo.UpdateParticipantInput{Participant: participant}); err != nil {
		return nil, errors.Wrapf(err, "failed to update participant %s", participant.ID)
	}

	o.publish(ctx, collectionParticipants, participant.ID)

	if err := o.syncCanonicalHP(ctx, participant); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "applied HP change",
		"participant_id", participant.ID,
		"previous", previous,
		"current", participant.CurrentHP)

	return &ApplyHPChangeOutput{
		Participant: participant,
		PreviousHP:  previous,
		NewHP:       participant.CurrentHP,
	}, nil
}

// syncCanonicalHP writes a participant's HP back to its character or NPC
func (o *Orchestrator) syncCanonicalHP(ctx context.Context, participant *ashfall.Participant) error {
	switch participant.Type {
	case ashfall.ParticipantTypePlayer:
		getOutput, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: participant.EntityID})
		if err != nil {
			return errors.Wrapf(err, "failed to get character %s", participant.EntityID)
		}

		character := getOutput.Character
		character.SetCurrentHP(participant.CurrentHP)

		if _, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{Character: character}); err != nil {
			return errors.Wrapf(err, "failed to sync HP to character %s", character.ID)
		}

		o.publish(ctx, collectionCharacters, character.ID)

	case ashfall.ParticipantTypeNPC:
		getOutput, err := o.npcRepo.Get(ctx, npcrepo.GetInput{ID: participant.EntityID})
		if err != nil {
			return errors.Wrapf(err, "failed to get NPC %s", participant.EntityID)
		}

		npc := getOutput.NPC
		npc.SetCurrentHP(participant.CurrentHP)

		if _, err := o.npcRepo.Update(ctx, npcrepo.UpdateInput{NPC: npc}); err != nil {
			return errors.Wrapf(err, "failed to sync HP to NPC %s", npc.ID)
		}

		o.publish(ctx, collectionNPCs, npc.ID)
	}

	return nil
}

// SyncParticipantHP pushes a canonical character HP change into the
// character's participant row in the active encounter, if any. Healing from
// outside combat shows up on the tracker through this path.
func (o *Orchestrator) SyncParticipantHP(ctx context.Context, input *SyncParticipantHPInput) (*SyncParticipantHPOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	listOutput, err := o.encounterRepo.List(ctx, encounterrepo.ListInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list encounters")
	}

	for _, encounter := range listOutput.Encounters {
		if encounter.Status != ashfall.EncounterStatusActive {
			continue
		}

		participantsOutput, err := o.encounterRepo.ListParticipants(ctx, encounterrepo.ListParticipantsInput{EncounterID: encounter.ID})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list participants of encounter %s", encounter.ID)
		}

		for _, participant := range participantsOutput.Participants {
			if participant.Type != ashfall.ParticipantTypePlayer || participant.EntityID != input.CharacterID {
				continue
			}

			participant.SetCurrentHP(input.CurrentHP)

			if _, err := o.encounterRepo.UpdateParticipant(ctx, encounterrepo.UpdateParticipantInput{Participant: participant}); err != nil {
				return nil, errors.Wrapf(err, "failed to sync HP to participant %s", participant.ID)
			}

			o.publish(ctx, collectionParticipants, participant.ID)

			return &SyncParticipantHPOutput{Synced: true}, nil
		}
	}

	return &SyncParticipantHPOutput{Synced: false}, nil
}

// UpdateNotes schedules a debounced write of a participant's notes. The
// latest value within the window wins; the write happens off this call.
func (o *Orchestrator) UpdateNotes(ctx context.Context, input *UpdateNotesInput) (*UpdateNotesOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ParticipantID == "" {
		return nil, errors.InvalidArgument("participant ID is required")
	}

	o.notes.Set(input.ParticipantID, input.Notes)

	return &UpdateNotesOutput{}, nil
}

// flushNotes is the debounce flush target for notes writes. A participant
// removed while an edit was pending is dropped quietly.
func (o *Orchestrator) flushNotes(ctx context.Context, participantID, notes string) {
	getOutput, err := o.encounterRepo.GetParticipant(ctx, encounterrepo.GetParticipantInput{ID: participantID})
	if err != nil {
		if !errors.IsNotFound(err) {
			slog.WarnContext(ctx, "failed to load participant for notes flush",
				"participant_id", participantID,
				"error", err)
		}
		return
	}

	participant := getOutput.Participant
	participant.Notes = notes

	if _, err := o.encounterRepo.UpdateParticipant(ctx, encounterrepo.UpdateParticipantInput{Participant: participant}); err != nil {
		slog.WarnContext(ctx, "failed to flush participant notes",
			"participant_id", participantID,
			"error", err)
		return
	}

	o.publish(ctx, collectionParticipants, participantID)
}
