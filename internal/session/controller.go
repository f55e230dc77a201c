package session

import (
	"context"
	"strings"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/narrative"
)

// Store persists treatment progress. Load returns the existing state for the
// (user, treatment) pair, creating a fresh unverified one when none exists.
type Store interface {
	Load(ctx context.Context, userID uint, treatmentNumber int) (*models.TreatmentState, error)
	Save(ctx context.Context, state *models.TreatmentState) error
}

// Controller drives one treatment session through the phase sequence. Every
// operation validates its phase and preconditions, mutates the state and
// saves it; on any precondition failure the state is untouched.
type Controller struct {
	store           Store
	userID          uint
	treatmentNumber int
	state           *models.TreatmentState
}

// NewController loads (or creates) the persisted state for the given user
// and treatment number.
func NewController(ctx context.Context, store Store, userID uint, treatmentNumber int) (*Controller, error) {
	state, err := store.Load(ctx, userID, treatmentNumber)
	if err != nil {
		return nil, err
	}
	return &Controller{
		store:           store,
		userID:          userID,
		treatmentNumber: treatmentNumber,
		state:           state,
	}, nil
}

// State returns the current persisted state.
func (c *Controller) State() *models.TreatmentState { return c.state }

// Phase returns the current cursor position.
func (c *Controller) Phase() Phase { return Phase(c.state.Phase) }

// VerifyGate re-checks the setup prerequisites and moves the cursor to the
// selection phase. It runs on every treatment start; if the setup was
// cleared externally mid-session the next start bounces back to setup.
func (c *Controller) VerifyGate(ctx context.Context, setup *models.SessionSetup) error {
	if !setup.IsComplete() {
		return ErrSetupIncomplete
	}
	if c.state.Completed {
		return ErrAlreadyComplete
	}
	if Phase(c.state.Phase) != PhaseUnverified {
		// Already past the gate; resuming is fine.
		return nil
	}
	c.state.Phase = int(PhaseSelection)
	return c.store.Save(ctx, c.state)
}

// ToggleError adds the prediction error to the ordered selection, or removes
// it if already selected. Adding a 12th entry is rejected and leaves the
// selection unchanged.
func (c *Controller) ToggleError(ctx context.Context, pe models.PredictionError) error {
	if Phase(c.state.Phase) != PhaseSelection {
		return ErrWrongPhase
	}
	for i, sel := range c.state.SelectedErrors {
		if sel.ID == pe.ID {
			c.state.SelectedErrors = append(c.state.SelectedErrors[:i], c.state.SelectedErrors[i+1:]...)
			return c.store.Save(ctx, c.state)
		}
	}
	if len(c.state.SelectedErrors) >= models.NarrationCount {
		return ErrSelectionFull
	}
	c.state.SelectedErrors = append(c.state.SelectedErrors, pe)
	return c.store.Save(ctx, c.state)
}

// AddCustomError authors a new prediction error and selects it immediately.
func (c *Controller) AddCustomError(ctx context.Context, title, description string) (models.PredictionError, error) {
	if Phase(c.state.Phase) != PhaseSelection {
		return models.PredictionError{}, ErrWrongPhase
	}
	if strings.TrimSpace(description) == "" {
		return models.PredictionError{}, ErrBlankCustomError
	}
	if len(c.state.SelectedErrors) >= models.NarrationCount {
		return models.PredictionError{}, ErrSelectionFull
	}
	pe := models.NewCustomPredictionError(title, description)
	c.state.SelectedErrors = append(c.state.SelectedErrors, pe)
	return pe, c.store.Save(ctx, c.state)
}

// CompleteSelection finalizes the ordered selection and advances to the
// first narrative phase. Only enabled at exactly 11 selected.
func (c *Controller) CompleteSelection(ctx context.Context) error {
	if Phase(c.state.Phase) != PhaseSelection {
		return ErrWrongPhase
	}
	if len(c.state.SelectedErrors) != models.NarrationCount {
		return ErrSelectionCount
	}
	c.state.Phase = int(PhaseNarrativeOne)
	return c.store.Save(ctx, c.state)
}

// CompleteNarrativePhase records the free-text response for phases 1-3 and
// advances. Responses shorter than 10 trimmed characters are rejected.
func (c *Controller) CompleteNarrativePhase(ctx context.Context, phase Phase, response string) error {
	if phase < PhaseNarrativeOne || phase > PhaseNarrativeThree {
		return ErrWrongPhase
	}
	if Phase(c.state.Phase) != phase {
		return ErrWrongPhase
	}
	if len(strings.TrimSpace(response)) < models.MinPhaseResponseLength {
		return ErrResponseTooShort
	}

	if c.state.PhaseResponses == nil {
		c.state.PhaseResponses = make([]string, models.NarrativePhaseCount)
	}
	c.state.PhaseResponses[int(phase)-1] = response
	c.state.Phase = int(phase) + 1

	if Phase(c.state.Phase) == PhaseNarration && c.state.Narrations == nil {
		c.state.Narrations = make([]string, models.NarrationCount)
	}
	return c.store.Save(ctx, c.state)
}

// Scripts recomputes the narrative scripts from the setup and the finalized
// selection. They are derived data, never cached on the state row.
func (c *Controller) Scripts(setup *models.SessionSetup) ([]string, error) {
	if Phase(c.state.Phase) < PhaseNarration {
		return nil, ErrWrongPhase
	}
	return narrative.Generate(setup.Memory1, setup.Memory2, setup.TargetEventTranscript, c.state.SelectedErrors)
}

// RecordNarration stores the recorded audio locator for one narrative index.
// An empty url signals failure or deletion and clears the slot; it never
// counts as a completed narration.
func (c *Controller) RecordNarration(ctx context.Context, index int, url string) error {
	if Phase(c.state.Phase) != PhaseNarration {
		return ErrWrongPhase
	}
	if index < 0 || index >= models.NarrationCount {
		return ErrBadIndex
	}
	if c.state.Narrations == nil {
		c.state.Narrations = make([]string, models.NarrationCount)
	}
	c.state.Narrations[index] = url
	return c.store.Save(ctx, c.state)
}

// ConfirmPlayback marks that the user has played the full narration
// sequence. The narration phase cannot complete without it; the friction is
// intentional.
func (c *Controller) ConfirmPlayback(ctx context.Context) error {
	if Phase(c.state.Phase) != PhaseNarration {
		return ErrWrongPhase
	}
	c.state.HasPlayedAllNarrations = true
	return c.store.Save(ctx, c.state)
}

// CompleteNarration advances to the reversal phase once all 11 narrations
// exist and playback has been confirmed.
func (c *Controller) CompleteNarration(ctx context.Context) error {
	if Phase(c.state.Phase) != PhaseNarration {
		return ErrWrongPhase
	}
	if !c.state.NarrationComplete() {
		return ErrNarrationMissing
	}
	if !c.state.HasPlayedAllNarrations {
		return ErrPlaybackRequired
	}
	c.state.Phase = int(PhaseReversal)
	return c.store.Save(ctx, c.state)
}

// ToggleReversal adds or removes a narrative index from the reversal
// selection. At most 8 indices may be selected.
func (c *Controller) ToggleReversal(ctx context.Context, index int) error {
	if Phase(c.state.Phase) != PhaseReversal {
		return ErrWrongPhase
	}
	if index < 0 || index >= models.NarrationCount {
		return ErrBadIndex
	}
	for i, sel := range c.state.ReversalSelection {
		if int(sel) == index {
			c.state.ReversalSelection = append(c.state.ReversalSelection[:i], c.state.ReversalSelection[i+1:]...)
			// A deselected narrative's recording no longer counts.
			delete(c.state.ReversalRecordings, index)
			return c.store.Save(ctx, c.state)
		}
	}
	if len(c.state.ReversalSelection) >= models.ReversalCount {
		return ErrReversalFull
	}
	c.state.ReversalSelection = append(c.state.ReversalSelection, int64(index))
	return c.store.Save(ctx, c.state)
}

// ReversedScripts returns the reversed variant script for every selected
// index, keyed by narrative index.
func (c *Controller) ReversedScripts(setup *models.SessionSetup) (map[int]string, error) {
	if Phase(c.state.Phase) != PhaseReversal {
		return nil, ErrWrongPhase
	}
	scripts := make(map[int]string, len(c.state.ReversalSelection))
	for _, sel := range c.state.ReversalSelection {
		i := int(sel)
		if i < 0 || i >= len(c.state.SelectedErrors) {
			return nil, ErrBadIndex
		}
		scripts[i] = narrative.GenerateReversed(setup.Memory1, setup.Memory2, setup.TargetEventTranscript, c.state.SelectedErrors[i])
	}
	return scripts, nil
}

// RecordReversal stores the short-form recording for one selected index.
func (c *Controller) RecordReversal(ctx context.Context, index int, url string) error {
	if Phase(c.state.Phase) != PhaseReversal {
		return ErrWrongPhase
	}
	if !c.state.ReversalSelected(index) {
		return ErrNotSelected
	}
	if c.state.ReversalRecordings == nil {
		c.state.ReversalRecordings = models.RecordingMap{}
	}
	if url == "" {
		delete(c.state.ReversalRecordings, index)
	} else {
		c.state.ReversalRecordings[index] = url
	}
	return c.store.Save(ctx, c.state)
}

// CompleteReversal advances to reassessment once exactly 8 indices are
// selected and each has a recording.
func (c *Controller) CompleteReversal(ctx context.Context) error {
	if Phase(c.state.Phase) != PhaseReversal {
		return ErrWrongPhase
	}
	if len(c.state.ReversalSelection) != models.ReversalCount {
		return ErrReversalCount
	}
	for _, sel := range c.state.ReversalSelection {
		if c.state.ReversalRecordings[int(sel)] == "" {
			return ErrReversalMissing
		}
	}
	c.state.Phase = int(PhaseReassessment)
	return c.store.Save(ctx, c.state)
}

// CompleteTreatment validates the final SUDS rating, marks the session
// complete and returns the result record. The caller persists the result and
// triggers the notify side effects; the controller is terminal afterwards.
func (c *Controller) CompleteTreatment(ctx context.Context, setup *models.SessionSetup, finalSuds int) (models.TreatmentResult, error) {
	if Phase(c.state.Phase) != PhaseReassessment {
		return models.TreatmentResult{}, ErrWrongPhase
	}
	if finalSuds < 0 || finalSuds > 100 {
		return models.TreatmentResult{}, ErrSudsRange
	}
	result := models.NewTreatmentResult(c.userID, c.treatmentNumber, setup.CalibrationSuds, finalSuds)
	c.state.Completed = true
	if err := c.store.Save(ctx, c.state); err != nil {
		return models.TreatmentResult{}, err
	}
	return result, nil
}
