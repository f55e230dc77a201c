package session

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for exercising the controller without a
// database.
type memStore struct {
	states map[string]*models.TreatmentState
	saves  int
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]*models.TreatmentState)}
}

func (s *memStore) key(userID uint, n int) string {
	return fmt.Sprintf("%d/%d", userID, n)
}

func (s *memStore) Load(ctx context.Context, userID uint, treatmentNumber int) (*models.TreatmentState, error) {
	if st, ok := s.states[s.key(userID, treatmentNumber)]; ok {
		return st, nil
	}
	st := &models.TreatmentState{UserID: userID, TreatmentNumber: treatmentNumber, Phase: -1}
	s.states[s.key(userID, treatmentNumber)] = st
	return st, nil
}

func (s *memStore) Save(ctx context.Context, state *models.TreatmentState) error {
	s.saves++
	s.states[s.key(state.UserID, state.TreatmentNumber)] = state
	return nil
}

func validSetup() *models.SessionSetup {
	return &models.SessionSetup{
		UserID:                1,
		TargetEventTranscript: "the day everything went wrong on the bridge",
		Memory1:               "breakfast in the garden with my sister",
		Memory2:               "the quiet walk home after the concert",
		CalibrationSuds:       80,
		MemoriesSaved:         true,
	}
}

func catalogError(id int64) models.PredictionError {
	return models.PredictionError{
		ID:          id,
		Title:       fmt.Sprintf("Error %d", id),
		Description: fmt.Sprintf("Outcome %d happens instead.", id),
	}
}

func newTestController(t *testing.T) (*Controller, *memStore) {
	t.Helper()
	store := newMemStore()
	ctrl, err := NewController(context.Background(), store, 1, 2)
	require.NoError(t, err)
	return ctrl, store
}

// advanceToSelection passes the gate.
func advanceToSelection(t *testing.T, ctrl *Controller) {
	t.Helper()
	require.NoError(t, ctrl.VerifyGate(context.Background(), validSetup()))
	require.Equal(t, PhaseSelection, ctrl.Phase())
}

// advanceToNarration selects 11 errors and completes phases 1-3.
func advanceToNarration(t *testing.T, ctrl *Controller) {
	t.Helper()
	ctx := context.Background()
	advanceToSelection(t, ctrl)
	for i := int64(1); i <= models.NarrationCount; i++ {
		require.NoError(t, ctrl.ToggleError(ctx, catalogError(i)))
	}
	require.NoError(t, ctrl.CompleteSelection(ctx))
	for p := PhaseNarrativeOne; p <= PhaseNarrativeThree; p++ {
		require.NoError(t, ctrl.CompleteNarrativePhase(ctx, p, "a response of sufficient length"))
	}
	require.Equal(t, PhaseNarration, ctrl.Phase())
}

// advanceToReversal records and plays back all narrations.
func advanceToReversal(t *testing.T, ctrl *Controller) {
	t.Helper()
	ctx := context.Background()
	advanceToNarration(t, ctrl)
	for i := 0; i < models.NarrationCount; i++ {
		require.NoError(t, ctrl.RecordNarration(ctx, i, fmt.Sprintf("blob:narration-%d", i)))
	}
	require.NoError(t, ctrl.ConfirmPlayback(ctx))
	require.NoError(t, ctrl.CompleteNarration(ctx))
	require.Equal(t, PhaseReversal, ctrl.Phase())
}

// advanceToReassessment selects 8 reversals and records them.
func advanceToReassessment(t *testing.T, ctrl *Controller) {
	t.Helper()
	ctx := context.Background()
	advanceToReversal(t, ctrl)
	for i := 0; i < models.ReversalCount; i++ {
		require.NoError(t, ctrl.ToggleReversal(ctx, i))
		require.NoError(t, ctrl.RecordReversal(ctx, i, fmt.Sprintf("blob:reversed-%d", i)))
	}
	require.NoError(t, ctrl.CompleteReversal(ctx))
	require.Equal(t, PhaseReassessment, ctrl.Phase())
}

func TestVerifyGate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects incomplete setup", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		setup := validSetup()
		setup.Memory2 = ""
		assert.ErrorIs(t, ctrl.VerifyGate(ctx, setup), ErrSetupIncomplete)
		assert.Equal(t, PhaseUnverified, ctrl.Phase())
	})

	t.Run("rejects unset memoriesSaved flag", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		setup := validSetup()
		setup.MemoriesSaved = false
		assert.ErrorIs(t, ctrl.VerifyGate(ctx, setup), ErrSetupIncomplete)
	})

	t.Run("passes with complete setup", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		require.NoError(t, ctrl.VerifyGate(ctx, validSetup()))
		assert.Equal(t, PhaseSelection, ctrl.Phase())
	})

	t.Run("re-running the gate mid-session resumes", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToSelection(t, ctrl)
		require.NoError(t, ctrl.ToggleError(ctx, catalogError(1)))

		// A second mount re-runs the gate; the cursor stays where it was.
		require.NoError(t, ctrl.VerifyGate(ctx, validSetup()))
		assert.Equal(t, PhaseSelection, ctrl.Phase())
		assert.Len(t, ctrl.State().SelectedErrors, 1)
	})

	t.Run("cleared setup bounces even mid-session", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToSelection(t, ctrl)

		assert.ErrorIs(t, ctrl.VerifyGate(ctx, &models.SessionSetup{}), ErrSetupIncomplete)
	})
}

func TestPredictionErrorSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle adds and removes in selection order", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToSelection(t, ctrl)

		require.NoError(t, ctrl.ToggleError(ctx, catalogError(5)))
		require.NoError(t, ctrl.ToggleError(ctx, catalogError(2)))
		require.NoError(t, ctrl.ToggleError(ctx, catalogError(9)))
		ids := make([]int64, 0)
		for _, pe := range ctrl.State().SelectedErrors {
			ids = append(ids, pe.ID)
		}
		assert.Equal(t, []int64{5, 2, 9}, ids)

		// Toggling an already-selected entry removes it.
		require.NoError(t, ctrl.ToggleError(ctx, catalogError(2)))
		assert.Len(t, ctrl.State().SelectedErrors, 2)
	})

	t.Run("a twelfth selection is rejected without mutation", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToSelection(t, ctrl)

		for i := int64(1); i <= models.NarrationCount; i++ {
			require.NoError(t, ctrl.ToggleError(ctx, catalogError(i)))
		}
		before := append([]models.PredictionError(nil), ctrl.State().SelectedErrors...)

		assert.ErrorIs(t, ctrl.ToggleError(ctx, catalogError(99)), ErrSelectionFull)
		assert.Equal(t, before, []models.PredictionError(ctrl.State().SelectedErrors))
	})

	t.Run("custom errors are validated and counted", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToSelection(t, ctrl)

		_, err := ctrl.AddCustomError(ctx, "My own", "   ")
		assert.ErrorIs(t, err, ErrBlankCustomError)

		pe, err := ctrl.AddCustomError(ctx, "My own", "my neighbor knocks on the door instead")
		require.NoError(t, err)
		assert.NotZero(t, pe.ID)
		assert.Len(t, ctrl.State().SelectedErrors, 1)
	})

	t.Run("completion requires exactly eleven", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToSelection(t, ctrl)

		for i := int64(1); i <= models.NarrationCount-1; i++ {
			require.NoError(t, ctrl.ToggleError(ctx, catalogError(i)))
		}
		assert.ErrorIs(t, ctrl.CompleteSelection(ctx), ErrSelectionCount)
		assert.Equal(t, PhaseSelection, ctrl.Phase())

		require.NoError(t, ctrl.ToggleError(ctx, catalogError(11)))
		require.NoError(t, ctrl.CompleteSelection(ctx))
		assert.Equal(t, PhaseNarrativeOne, ctrl.Phase())
	})
}

func TestNarrativePhases(t *testing.T) {
	ctx := context.Background()

	t.Run("response length boundary", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToSelection(t, ctrl)
		for i := int64(1); i <= models.NarrationCount; i++ {
			require.NoError(t, ctrl.ToggleError(ctx, catalogError(i)))
		}
		require.NoError(t, ctrl.CompleteSelection(ctx))

		// Nine characters (after trimming) is rejected, ten is accepted.
		nine := strings.Repeat("a", 9)
		assert.ErrorIs(t, ctrl.CompleteNarrativePhase(ctx, PhaseNarrativeOne, "  "+nine+"  "), ErrResponseTooShort)
		assert.Equal(t, PhaseNarrativeOne, ctrl.Phase())

		ten := strings.Repeat("a", 10)
		require.NoError(t, ctrl.CompleteNarrativePhase(ctx, PhaseNarrativeOne, ten))
		assert.Equal(t, PhaseNarrativeTwo, ctrl.Phase())
	})

	t.Run("phases cannot be replayed or skipped", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToSelection(t, ctrl)
		for i := int64(1); i <= models.NarrationCount; i++ {
			require.NoError(t, ctrl.ToggleError(ctx, catalogError(i)))
		}
		require.NoError(t, ctrl.CompleteSelection(ctx))

		// Skipping ahead to phase 2 is rejected.
		assert.ErrorIs(t, ctrl.CompleteNarrativePhase(ctx, PhaseNarrativeTwo, "long enough response"), ErrWrongPhase)

		require.NoError(t, ctrl.CompleteNarrativePhase(ctx, PhaseNarrativeOne, "long enough response"))

		// Going back to phase 1 is rejected: the cursor only moves forward.
		assert.ErrorIs(t, ctrl.CompleteNarrativePhase(ctx, PhaseNarrativeOne, "long enough response"), ErrWrongPhase)
	})
}

func TestNarrationPhase(t *testing.T) {
	ctx := context.Background()

	t.Run("scripts regenerate identically from the same state", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToNarration(t, ctrl)

		setup := validSetup()
		first, err := ctrl.Scripts(setup)
		require.NoError(t, err)
		require.Len(t, first, models.NarrationCount)

		second, err := ctrl.Scripts(setup)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("scripts are unavailable before narration", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToSelection(t, ctrl)
		_, err := ctrl.Scripts(validSetup())
		assert.ErrorIs(t, err, ErrWrongPhase)
	})

	t.Run("completion needs all recordings and a full playback", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToNarration(t, ctrl)

		assert.ErrorIs(t, ctrl.CompleteNarration(ctx), ErrNarrationMissing)

		for i := 0; i < models.NarrationCount; i++ {
			require.NoError(t, ctrl.RecordNarration(ctx, i, fmt.Sprintf("blob:%d", i)))
		}

		// An empty url clears the slot; it never counts as a narration.
		require.NoError(t, ctrl.RecordNarration(ctx, 4, ""))
		assert.ErrorIs(t, ctrl.CompleteNarration(ctx), ErrNarrationMissing)
		require.NoError(t, ctrl.RecordNarration(ctx, 4, "blob:4-retake"))

		// All recorded, but the playback confirmation is still missing.
		assert.ErrorIs(t, ctrl.CompleteNarration(ctx), ErrPlaybackRequired)

		require.NoError(t, ctrl.ConfirmPlayback(ctx))
		require.NoError(t, ctrl.CompleteNarration(ctx))
		assert.Equal(t, PhaseReversal, ctrl.Phase())
	})

	t.Run("index bounds are enforced", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToNarration(t, ctrl)
		assert.ErrorIs(t, ctrl.RecordNarration(ctx, -1, "blob:x"), ErrBadIndex)
		assert.ErrorIs(t, ctrl.RecordNarration(ctx, models.NarrationCount, "blob:x"), ErrBadIndex)
	})
}

func TestReversalPhase(t *testing.T) {
	ctx := context.Background()

	t.Run("at most eight indices can be selected", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToReversal(t, ctrl)

		for i := 0; i < models.ReversalCount; i++ {
			require.NoError(t, ctrl.ToggleReversal(ctx, i))
		}
		assert.ErrorIs(t, ctrl.ToggleReversal(ctx, 9), ErrReversalFull)
		assert.Len(t, ctrl.State().ReversalSelection, models.ReversalCount)
	})

	t.Run("recording an unselected index is rejected", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToReversal(t, ctrl)
		assert.ErrorIs(t, ctrl.RecordReversal(ctx, 3, "blob:r3"), ErrNotSelected)
	})

	t.Run("deselecting drops the recording", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToReversal(t, ctrl)

		require.NoError(t, ctrl.ToggleReversal(ctx, 3))
		require.NoError(t, ctrl.RecordReversal(ctx, 3, "blob:r3"))
		require.NoError(t, ctrl.ToggleReversal(ctx, 3)) // deselect
		require.NoError(t, ctrl.ToggleReversal(ctx, 3)) // reselect
		assert.Empty(t, ctrl.State().ReversalRecordings[3])
	})

	t.Run("completion requires eight recorded reversals", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToReversal(t, ctrl)

		for i := 0; i < models.ReversalCount; i++ {
			require.NoError(t, ctrl.ToggleReversal(ctx, i))
		}
		assert.ErrorIs(t, ctrl.CompleteReversal(ctx), ErrReversalMissing)

		for i := 0; i < models.ReversalCount; i++ {
			require.NoError(t, ctrl.RecordReversal(ctx, i, fmt.Sprintf("blob:r%d", i)))
		}
		require.NoError(t, ctrl.CompleteReversal(ctx))
		assert.Equal(t, PhaseReassessment, ctrl.Phase())
	})

	t.Run("fewer than eight cannot complete", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToReversal(t, ctrl)

		for i := 0; i < models.ReversalCount-1; i++ {
			require.NoError(t, ctrl.ToggleReversal(ctx, i))
			require.NoError(t, ctrl.RecordReversal(ctx, i, fmt.Sprintf("blob:r%d", i)))
		}
		assert.ErrorIs(t, ctrl.CompleteReversal(ctx), ErrReversalCount)
	})

	t.Run("reversed scripts cover exactly the selection", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToReversal(t, ctrl)

		require.NoError(t, ctrl.ToggleReversal(ctx, 0))
		require.NoError(t, ctrl.ToggleReversal(ctx, 7))

		scripts, err := ctrl.ReversedScripts(validSetup())
		require.NoError(t, err)
		assert.Len(t, scripts, 2)
		assert.Contains(t, scripts, 0)
		assert.Contains(t, scripts, 7)
	})
}

func TestCompleteTreatment(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects out-of-range SUDS", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToReassessment(t, ctrl)

		_, err := ctrl.CompleteTreatment(ctx, validSetup(), 101)
		assert.ErrorIs(t, err, ErrSudsRange)
		_, err = ctrl.CompleteTreatment(ctx, validSetup(), -1)
		assert.ErrorIs(t, err, ErrSudsRange)
	})

	t.Run("computes the improvement result", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToReassessment(t, ctrl)

		result, err := ctrl.CompleteTreatment(ctx, validSetup(), 40)
		require.NoError(t, err)
		assert.Equal(t, 2, result.TreatmentNumber)
		assert.Equal(t, 40, result.FinalSuds)
		assert.InDelta(t, 50.0, result.ImprovementPercentage, 1e-9)
		assert.True(t, result.IsImprovement)
		assert.True(t, ctrl.State().Completed)
	})

	t.Run("a repeat completion replaces the earlier values", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		advanceToReassessment(t, ctrl)

		// Persisted results are keyed by (user, treatment number); a second
		// completion produces the row that replaces the first.
		results := map[int]models.TreatmentResult{}

		first, err := ctrl.CompleteTreatment(ctx, validSetup(), 60)
		require.NoError(t, err)
		results[first.TreatmentNumber] = first

		second, err := ctrl.CompleteTreatment(ctx, validSetup(), 30)
		require.NoError(t, err)
		results[second.TreatmentNumber] = second

		require.Len(t, results, 1)
		assert.Equal(t, 30, results[2].FinalSuds)
		assert.InDelta(t, 62.5, results[2].ImprovementPercentage, 1e-9)
	})
}

// TestFullProtocol walks the end-to-end scenario: calibration 80, eleven
// catalog errors, three narrative responses, eleven narrations with a full
// playback, eight reversals, final SUDS 40.
func TestFullProtocol(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	ctrl, err := NewController(ctx, store, 7, 1)
	require.NoError(t, err)
	setup := validSetup()
	setup.UserID = 7

	require.NoError(t, ctrl.VerifyGate(ctx, setup))
	for i := int64(1); i <= models.NarrationCount; i++ {
		require.NoError(t, ctrl.ToggleError(ctx, catalogError(i)))
	}
	require.NoError(t, ctrl.CompleteSelection(ctx))

	for p := PhaseNarrativeOne; p <= PhaseNarrativeThree; p++ {
		require.NoError(t, ctrl.CompleteNarrativePhase(ctx, p, "watching the scene from a distance I noticed"))
	}

	scripts, err := ctrl.Scripts(setup)
	require.NoError(t, err)
	require.Len(t, scripts, models.NarrationCount)

	for i := 0; i < models.NarrationCount; i++ {
		require.NoError(t, ctrl.RecordNarration(ctx, i, fmt.Sprintf("blob:n%d", i)))
	}
	require.NoError(t, ctrl.ConfirmPlayback(ctx))
	require.NoError(t, ctrl.CompleteNarration(ctx))

	for i := 0; i < models.ReversalCount; i++ {
		require.NoError(t, ctrl.ToggleReversal(ctx, i))
		require.NoError(t, ctrl.RecordReversal(ctx, i, fmt.Sprintf("blob:r%d", i)))
	}
	require.NoError(t, ctrl.CompleteReversal(ctx))

	result, err := ctrl.CompleteTreatment(ctx, setup, 40)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, result.ImprovementPercentage, 1e-9)
	assert.True(t, result.IsImprovement)

	// The persisted state survives a reload with the same cursor.
	reloaded, err := NewController(ctx, store, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, PhaseReassessment, reloaded.Phase())
	assert.True(t, reloaded.State().Completed)
}
