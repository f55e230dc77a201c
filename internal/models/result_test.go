package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImprovementPercentage(t *testing.T) {
	tests := []struct {
		name        string
		calibration int
		final       int
		want        float64
	}{
		{"halved", 80, 40, 50},
		{"unchanged", 80, 80, 0},
		{"worsened", 50, 75, -50},
		{"fully resolved", 60, 0, 100},
		{"zero calibration", 0, 40, 0},
		{"negative calibration", -5, 40, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ImprovementPercentage(tt.calibration, tt.final), 1e-9)
		})
	}
}

func TestNewTreatmentResult(t *testing.T) {
	t.Run("improvement", func(t *testing.T) {
		r := NewTreatmentResult(3, 2, 80, 40)
		assert.Equal(t, uint(3), r.UserID)
		assert.Equal(t, 2, r.TreatmentNumber)
		assert.Equal(t, 40, r.FinalSuds)
		assert.InDelta(t, 50.0, r.ImprovementPercentage, 1e-9)
		assert.True(t, r.IsImprovement)
		assert.False(t, r.CompletedAt.IsZero())
	})

	t.Run("no change is not an improvement", func(t *testing.T) {
		r := NewTreatmentResult(3, 2, 80, 80)
		assert.False(t, r.IsImprovement)
	})

	t.Run("worsening is not an improvement", func(t *testing.T) {
		r := NewTreatmentResult(3, 2, 40, 70)
		assert.False(t, r.IsImprovement)
		assert.InDelta(t, -75.0, r.ImprovementPercentage, 1e-9)
	})
}

func TestSessionSetupIsComplete(t *testing.T) {
	complete := func() *SessionSetup {
		return &SessionSetup{
			TargetEventTranscript: "the event",
			Memory1:               "first memory",
			Memory2:               "second memory",
			CalibrationSuds:       70,
			MemoriesSaved:         true,
		}
	}

	t.Run("complete setup passes", func(t *testing.T) {
		assert.True(t, complete().IsComplete())
	})

	t.Run("nil receiver", func(t *testing.T) {
		var s *SessionSetup
		assert.False(t, s.IsComplete())
	})

	t.Run("unsaved flag fails", func(t *testing.T) {
		s := complete()
		s.MemoriesSaved = false
		assert.False(t, s.IsComplete())
	})

	t.Run("whitespace-only memory fails", func(t *testing.T) {
		s := complete()
		s.Memory2 = "   "
		assert.False(t, s.IsComplete())
	})

	t.Run("out-of-range calibration fails", func(t *testing.T) {
		s := complete()
		s.CalibrationSuds = 101
		assert.False(t, s.IsComplete())
	})
}

func TestProtocolComplete(t *testing.T) {
	assert.True(t, ProtocolComplete([]int{1, 2, 3, 4, 5}))
	assert.True(t, ProtocolComplete([]int{5, 4, 3, 2, 1, 6}))

	// A follow-up result never fills a gap in the five.
	assert.False(t, ProtocolComplete([]int{1, 2, 3, 4, 6}))
	assert.False(t, ProtocolComplete([]int{1, 2, 3, 4}))
	assert.False(t, ProtocolComplete([]int{1, 1, 2, 3, 4}))
	assert.False(t, ProtocolComplete(nil))
}

func TestNarrationComplete(t *testing.T) {
	state := &TreatmentState{}
	assert.False(t, state.NarrationComplete())

	state.Narrations = make([]string, NarrationCount)
	assert.False(t, state.NarrationComplete())

	for i := range state.Narrations {
		state.Narrations[i] = "blob:x"
	}
	require.True(t, state.NarrationComplete())

	state.Narrations[6] = ""
	assert.False(t, state.NarrationComplete())
}

func TestNewCustomPredictionError(t *testing.T) {
	pe := NewCustomPredictionError("  My title  ", "  something else happens  ")
	assert.Equal(t, "My title", pe.Title)
	assert.Equal(t, "something else happens", pe.Description)
	assert.Greater(t, pe.ID, int64(1000)) // millisecond ids never collide with catalog ids

	untitled := NewCustomPredictionError("   ", "something else happens")
	assert.Equal(t, "Custom prediction error", untitled.Title)
}
