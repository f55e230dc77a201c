package narrative

import (
	"fmt"
	"testing"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testErrors(n int) []models.PredictionError {
	errors := make([]models.PredictionError, 0, n)
	for i := 0; i < n; i++ {
		errors = append(errors, models.PredictionError{
			ID:          int64(i + 1),
			Title:       fmt.Sprintf("Error %d", i+1),
			Description: fmt.Sprintf("Something different happens in version %d.", i+1),
		})
	}
	return errors
}

func TestGenerate(t *testing.T) {
	memory1 := "the summer afternoon at my grandmother's kitchen table"
	memory2 := "walking the dog along the canal last spring"
	target := "the day the car spun out on the icy bridge"

	t.Run("produces one script per prediction error", func(t *testing.T) {
		scripts, err := Generate(memory1, memory2, target, testErrors(models.NarrationCount))
		require.NoError(t, err)
		require.Len(t, scripts, models.NarrationCount)

		for i, script := range scripts {
			assert.NotEmpty(t, script)
			assert.Contains(t, script, memory1)
			assert.Contains(t, script, memory2)
			assert.Contains(t, script, target)
			assert.Contains(t, script, fmt.Sprintf("Something different happens in version %d.", i+1))
		}
	})

	t.Run("is deterministic across invocations", func(t *testing.T) {
		errors := testErrors(models.NarrationCount)
		first, err := Generate(memory1, memory2, target, errors)
		require.NoError(t, err)
		second, err := Generate(memory1, memory2, target, errors)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects wrong prediction error counts", func(t *testing.T) {
		for _, n := range []int{0, 10, 12} {
			scripts, err := Generate(memory1, memory2, target, testErrors(n))
			assert.ErrorIs(t, err, ErrWrongErrorCount, "count %d", n)
			assert.Nil(t, scripts)
		}
	})

	t.Run("rejects missing inputs", func(t *testing.T) {
		scripts, err := Generate("", memory2, target, testErrors(models.NarrationCount))
		assert.ErrorIs(t, err, ErrMissingInput)
		assert.Nil(t, scripts)

		scripts, err = Generate(memory1, memory2, "   ", testErrors(models.NarrationCount))
		assert.ErrorIs(t, err, ErrMissingInput)
		assert.Nil(t, scripts)
	})
}

func TestGenerateReversed(t *testing.T) {
	pe := models.PredictionError{ID: 7, Title: "Help arrives", Description: "The people I needed arrive in time."}
	script := GenerateReversed("memory one", "memory two", "the event", pe)

	assert.Contains(t, script, "memory one")
	assert.Contains(t, script, "memory two")
	assert.Contains(t, script, "the event")
	assert.Contains(t, script, pe.Description)

	// Deterministic as well.
	assert.Equal(t, script, GenerateReversed("memory one", "memory two", "the event", pe))
}

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, "42/treatment_3/narration_1.mp3", NarrationObjectKey(42, 3, 0))
	assert.Equal(t, "42/treatment_3/narration_11.mp3", NarrationObjectKey(42, 3, 10))
	assert.Equal(t, "a@b.com_t2/narration_video_5.mp4", SourceVideoKey("a@b.com", 2, 5))
	assert.Equal(t, "a@b.com_t2/reversed_clip_5.mp4", ReversedClipKey("a@b.com", 2, 5))
}
