package combat

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/ashfall-rpg/gm-api/internal/entities/ashfall"
	"github.com/ashfall-rpg/gm-api/internal/errors"
	"github.com/ashfall-rpg/gm-api/internal/lock"
	"github.com/ashfall-rpg/gm-api/internal/notify"
	"github.com/ashfall-rpg/gm-api/internal/pkg/clock"
	"github.com/ashfall-rpg/gm-api/internal/pkg/debounce"
	"github.com/ashfall-rpg/gm-api/internal/pkg/idgen"
	characterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/characters"
	encounterrepo "github.com/ashfall-rpg/gm-api/internal/repositories/encounters"
	inventoryrepo "github.com/ashfall-rpg/gm-api/internal/repositories/inventory"
	npcrepo "github.com/ashfall-rpg/gm-api/internal/repositories/npcs"
)

// Change feed collections published by this orchestrator
const (
	collectionEncounters   = "encounters"
	collectionParticipants = "encounter_participants"
	collectionCharacters   = "characters"
	collectionNPCs         = "npcs"
)

// Config holds the dependencies for the combat orchestrator
type Config struct {
	EncounterRepo encounterrepo.Repository
	CharacterRepo characterrepo.Repository
	NPCRepo       npcrepo.Repository
	InventoryRepo inventoryrepo.Repository
	Locker        lock.Locker
	Bus           notify.Bus

	EncounterIDGenerator   idgen.Generator
	ParticipantIDGenerator idgen.Generator

	// Clock defaults to the real clock
	Clock clock.Clock
	// NotesWindow overrides the debounce window for notes writes; zero
	// means debounce.DefaultWindow
	NotesWindow time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.EncounterRepo == nil {
		vb.RequiredField("EncounterRepo")
	}
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.NPCRepo == nil {
		vb.RequiredField("NPCRepo")
	}
	if c.InventoryRepo == nil {
		vb.RequiredField("InventoryRepo")
	}
	if c.Locker == nil {
		vb.RequiredField("Locker")
	}
	if c.Bus == nil {
		vb.RequiredField("Bus")
	}
	if c.EncounterIDGenerator == nil {
		vb.RequiredField("EncounterIDGenerator")
	}
	if c.ParticipantIDGenerator == nil {
		vb.RequiredField("ParticipantIDGenerator")
	}

	return vb.Build()
}

// Orchestrator implements the combat Service interface
type Orchestrator struct {
	encounterRepo encounterrepo.Repository
	characterRepo characterrepo.Repository
	npcRepo       npcrepo.Repository
	inventoryRepo inventoryrepo.Repository
	locker        lock.Locker
	bus           notify.Bus

	encounterIDGen   idgen.Generator
	participantIDGen idgen.Generator

	clock clock.Clock
	notes *debounce.Scheduler
}

// New creates a new combat orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	o := &Orchestrator{
		encounterRepo:    cfg.EncounterRepo,
		characterRepo:    cfg.CharacterRepo,
		npcRepo:          cfg.NPCRepo,
		inventoryRepo:    cfg.InventoryRepo,
		locker:           cfg.Locker,
		bus:              cfg.Bus,
		encounterIDGen:   cfg.EncounterIDGenerator,
		participantIDGen: cfg.ParticipantIDGenerator,
		clock:            c,
	}

	o.notes = debounce.New(&debounce.Config{
		Window: cfg.NotesWindow,
		Flush:  o.flushNotes,
	})

	return o, nil
}

// Ensure Orchestrator implements the Service interface
var _ Service = (*Orchestrator)(nil)

// Close flushes pending debounced notes writes
func (o *Orchestrator) Close() {
	o.notes.Close()
}

// CreateEncounter creates a draft encounter
func (o *Orchestrator) CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*CreateEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	if input.Name == "" {
		vb.RequiredField("Name")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	encounter := &ashfall.Encounter{
		ID:          o.encounterIDGen.Generate(),
		Name:        input.Name,
		Description: input.Description,
		Status:      ashfall.EncounterStatusDraft,
		Round:       1,
	}

	createOutput, err := o.encounterRepo.Create(ctx, encounterrepo.CreateInput{Encounter: encounter})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create encounter %s", encounter.ID)
	}

	o.publish(ctx, collectionEncounters, encounter.ID)

	slog.InfoContext(ctx, "created encounter",
		"encounter_id", encounter.ID,
		"name", encounter.Name)

	return &CreateEncounterOutput{Encounter: createOutput.Encounter}, nil
}

// GetEncounter returns an encounter with its sorted roster
func (o *Orchestrator) GetEncounter(ctx context.Context, input *GetEncounterInput) (*GetEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	encounter, participants, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	active := activeParticipants(participants)

	var current *ashfall.Participant
	if encounter.Status == ashfall.EncounterStatusActive {
		if idx := indexOf(active, encounter.CurrentParticipantID); idx >= 0 {
			current = active[idx]
		} else if len(active) > 0 {
			current = active[clampIndex(encounter.CurrentTurn, len(active))]
		}
	}

	return &GetEncounterOutput{
		Encounter:          encounter,
		Participants:       participants,
		ActiveParticipants: active,
		CurrentParticipant: current,
	}, nil
}

// ListEncounters returns all encounters
func (o *Orchestrator) ListEncounters(ctx context.Context, input *ListEncountersInput) (*ListEncountersOutput, error) {
	listOutput, err := o.encounterRepo.List(ctx, encounterrepo.ListInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list encounters")
	}

	return &ListEncountersOutput{Encounters: listOutput.Encounters}, nil
}

// StartEncounter transitions draft to active and engages the campaign lock
func (o *Orchestrator) StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	encounter, participants, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	if encounter.Status != ashfall.EncounterStatusDraft {
		return nil, errors.FailedPreconditionf("encounter %s is %s, only drafts can start", encounter.ID, encounter.Status)
	}
	if len(participants) == 0 {
		return nil, errors.FailedPreconditionf("encounter %s has no participants", encounter.ID)
	}

	active := activeParticipants(participants)

	encounter.Status = ashfall.EncounterStatusActive
	encounter.Round = 1
	encounter.CurrentTurn = 0
	encounter.CurrentParticipantID = ""
	if len(active) > 0 {
		encounter.CurrentParticipantID = active[0].ID
	}

	if _, err := o.encounterRepo.Update(ctx, encounterrepo.UpdateInput{Encounter: encounter}); err != nil {
		return nil, errors.Wrapf(err, "failed to start encounter %s", encounter.ID)
	}

	reason := encounter.Name
	if _, err := o.locker.SetLocked(ctx, lock.SetLockedInput{Locked: true, Reason: &reason}); err != nil {
		// The encounter is running either way; the lock is advisory
		slog.ErrorContext(ctx, "failed to engage campaign lock",
			"encounter_id", encounter.ID,
			"error", err)
	}

	o.publish(ctx, collectionEncounters, encounter.ID)

	slog.InfoContext(ctx, "started encounter",
		"encounter_id", encounter.ID,
		"participants", len(participants),
		"active", len(active))

	return &StartEncounterOutput{Encounter: encounter, ActiveParticipants: active}, nil
}

// NextTurn advances the turn pointer, wrapping into a new round
func (o *Orchestrator) NextTurn(ctx context.Context, input *NextTurnInput) (*NextTurnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	encounter, active, err := o.loadActiveEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	if len(active) == 0 {
		if err := o.clearTurn(ctx, encounter); err != nil {
			return nil, err
		}
		return &NextTurnOutput{Encounter: encounter}, nil
	}

	idx := o.currentIndex(encounter, active)
	next := idx + 1
	if next >= len(active) {
		next = 0
		encounter.Round++
	}

	current, err := o.setTurn(ctx, encounter, active, next)
	if err != nil {
		return nil, err
	}

	return &NextTurnOutput{Encounter: encounter, CurrentParticipant: current}, nil
}

// PrevTurn steps the turn pointer back, unwinding a round wrap
func (o *Orchestrator) PrevTurn(ctx context.Context, input *PrevTurnInput) (*PrevTurnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	encounter, active, err := o.loadActiveEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	if len(active) == 0 {
		if err := o.clearTurn(ctx, encounter); err != nil {
			return nil, err
		}
		return &PrevTurnOutput{Encounter: encounter}, nil
	}

	idx := o.currentIndex(encounter, active)
	prev := idx - 1
	if prev < 0 {
		if encounter.Round > 1 {
			prev = len(active) - 1
			encounter.Round--
		} else {
			// Top of round 1 is the floor of history
			prev = 0
		}
	}

	current, err := o.setTurn(ctx, encounter, active, prev)
	if err != nil {
		return nil, err
	}

	return &PrevTurnOutput{Encounter: encounter, CurrentParticipant: current}, nil
}

// EndEncounter transitions active to completed and releases the lock
func (o *Orchestrator) EndEncounter(ctx context.Context, input *EndEncounterInput) (*EndEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	getOutput, err := o.encounterRepo.Get(ctx, encounterrepo.GetInput{ID: input.EncounterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get encounter %s", input.EncounterID)
	}
	encounter := getOutput.Encounter

	if encounter.Status != ashfall.EncounterStatusActive {
		return nil, errors.FailedPreconditionf("encounter %s is %s, only active encounters can end", encounter.ID, encounter.Status)
	}

	encounter.Status = ashfall.EncounterStatusCompleted
	encounter.CompletedAt = o.clock.Now().Unix()

	if _, err := o.encounterRepo.Update(ctx, encounterrepo.UpdateInput{Encounter: encounter}); err != nil {
		return nil, errors.Wrapf(err, "failed to end encounter %s", encounter.ID)
	}

	if _, err := o.locker.SetLocked(ctx, lock.SetLockedInput{Locked: false}); err != nil {
		slog.ErrorContext(ctx, "failed to release campaign lock",
			"encounter_id", encounter.ID,
			"error", err)
	}

	o.publish(ctx, collectionEncounters, encounter.ID)

	slog.InfoContext(ctx, "ended encounter",
		"encounter_id", encounter.ID,
		"rounds", encounter.Round)

	return &EndEncounterOutput{Encounter: encounter}, nil
}

// ArchiveEncounter moves a draft or completed encounter to archived
func (o *Orchestrator) ArchiveEncounter(ctx context.Context, input *ArchiveEncounterInput) (*ArchiveEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	getOutput, err := o.encounterRepo.Get(ctx, encounterrepo.GetInput{ID: input.EncounterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get encounter %s", input.EncounterID)
	}
	encounter := getOutput.Encounter

	if encounter.Status == ashfall.EncounterStatusActive {
		return nil, errors.FailedPreconditionf("encounter %s is active, end it before archiving", encounter.ID)
	}

	encounter.Status = ashfall.EncounterStatusArchived

	if _, err := o.encounterRepo.Update(ctx, encounterrepo.UpdateInput{Encounter: encounter}); err != nil {
		return nil, errors.Wrapf(err, "failed to archive encounter %s", encounter.ID)
	}

	o.publish(ctx, collectionEncounters, encounter.ID)

	return &ArchiveEncounterOutput{Encounter: encounter}, nil
}

// DeleteEncounter removes an encounter and cascades to its participants
func (o *Orchestrator) DeleteEncounter(ctx context.Context, input *DeleteEncounterInput) (*DeleteEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	getOutput, err := o.encounterRepo.Get(ctx, encounterrepo.GetInput{ID: input.EncounterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get encounter %s", input.EncounterID)
	}

	if getOutput.Encounter.Status == ashfall.EncounterStatusActive {
		return nil, errors.FailedPreconditionf("encounter %s is active, end it before deleting", input.EncounterID)
	}

	deleteOutput, err := o.encounterRepo.Delete(ctx, encounterrepo.DeleteInput{ID: input.EncounterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete encounter %s", input.EncounterID)
	}

	o.publish(ctx, collectionEncounters, input.EncounterID)

	slog.InfoContext(ctx, "deleted encounter",
		"encounter_id", input.EncounterID,
		"participants_removed", deleteOutput.ParticipantsRemoved)

	return &DeleteEncounterOutput{ParticipantsRemoved: deleteOutput.ParticipantsRemoved}, nil
}

// loadEncounter fetches an encounter and its roster sorted for display
func (o *Orchestrator) loadEncounter(ctx context.Context, encounterID string) (*ashfall.Encounter, []*ashfall.Participant, error) {
	getOutput, err := o.encounterRepo.Get(ctx, encounterrepo.GetInput{ID: encounterID})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to get encounter %s", encounterID)
	}

	listOutput, err := o.encounterRepo.ListParticipants(ctx, encounterrepo.ListParticipantsInput{EncounterID: encounterID})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to list participants of encounter %s", encounterID)
	}

	participants := listOutput.Participants
	sortRoster(participants)

	return getOutput.Encounter, participants, nil
}

// loadActiveEncounter is loadEncounter plus the active-status gate and the
// roster filtered to active participants
func (o *Orchestrator) loadActiveEncounter(ctx context.Context, encounterID string) (*ashfall.Encounter, []*ashfall.Participant, error) {
	encounter, participants, err := o.loadEncounter(ctx, encounterID)
	if err != nil {
		return nil, nil, err
	}

	if encounter.Status != ashfall.EncounterStatusActive {
		return nil, nil, errors.FailedPreconditionf("encounter %s is %s, not active", encounter.ID, encounter.Status)
	}

	return encounter, activeParticipants(participants), nil
}

// currentIndex derives the turn index from the stable participant pointer.
// When the pointed-at participant has left the turn order, the pointer falls
// to whoever now occupies the stored index, clamped to the roster.
func (o *Orchestrator) currentIndex(encounter *ashfall.Encounter, active []*ashfall.Participant) int {
	if idx := indexOf(active, encounter.CurrentParticipantID); idx >= 0 {
		return idx
	}
	return clampIndex(encounter.CurrentTurn, len(active))
}

// clearTurn zeroes the pointer when nobody is left in the turn order
func (o *Orchestrator) clearTurn(ctx context.Context, encounter *ashfall.Encounter) error {
	encounter.CurrentTurn = 0
	encounter.CurrentParticipantID = ""

	if _, err := o.encounterRepo.Update(ctx, encounterrepo.UpdateInput{Encounter: encounter}); err != nil {
		return errors.Wrapf(err, "failed to update turn on encounter %s", encounter.ID)
	}

	o.publish(ctx, collectionEncounters, encounter.ID)
	return nil
}

func (o *Orchestrator) setTurn(ctx context.Context, encounter *ashfall.Encounter, active []*ashfall.Participant, idx int) (*ashfall.Participant, error) {
	current := active[idx]
	encounter.CurrentTurn = int32(idx)
	encounter.CurrentParticipantID = current.ID

	if _, err := o.encounterRepo.Update(ctx, encounterrepo.UpdateInput{Encounter: encounter}); err != nil {
		return nil, errors.Wrapf(err, "failed to update turn on encounter %s", encounter.ID)
	}

	o.publish(ctx, collectionEncounters, encounter.ID)

	return current, nil
}

// publish emits a change signal; feed failures are logged, never surfaced
func (o *Orchestrator) publish(ctx context.Context, collection, recordID string) {
	if err := o.bus.Publish(ctx, collection, recordID); err != nil {
		slog.WarnContext(ctx, "failed to publish change event",
			"collection", collection,
			"record_id", recordID,
			"error", err)
	}
}

// sortRoster orders by initiative descending; ties keep insertion order
func sortRoster(participants []*ashfall.Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		a, b := participants[i].InitiativeValue(), participants[j].InitiativeValue()
		if a != b {
			return a > b
		}
		return participants[i].SortOrder < participants[j].SortOrder
	})
}

// activeParticipants filters a sorted roster to rows in the turn order
func activeParticipants(participants []*ashfall.Participant) []*ashfall.Participant {
	active := make([]*ashfall.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}

func indexOf(participants []*ashfall.Participant, id string) int {
	if id == "" {
		return -1
	}
	for i, p := range participants {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clampIndex(idx int32, count int) int {
	if count == 0 {
		return 0
	}
	i := int(idx)
	if i < 0 {
		return 0
	}
	if i >= count {
		return count - 1
	}
	return i
}
