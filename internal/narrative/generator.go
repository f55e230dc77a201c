// Package narrative builds the dissociated-viewpoint scripts a treatment
// session walks through: one long-form script per selected prediction error
// and a short reversed variant for the rewind exercise.
package narrative

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
)

var (
	ErrWrongErrorCount = errors.New("narrative generation requires exactly 11 prediction errors")
	ErrMissingInput    = errors.New("narrative generation requires both memories and the target event transcript")
)

// Generate produces one dissociated-narrative script per prediction error.
// It is a pure function of its inputs: no randomness, no caching, the same
// inputs always produce byte-identical scripts. It is recomputed every time
// the narration phase is entered.
func Generate(memory1, memory2, targetEvent string, predictionErrors []models.PredictionError) ([]string, error) {
	memory1 = strings.TrimSpace(memory1)
	memory2 = strings.TrimSpace(memory2)
	targetEvent = strings.TrimSpace(targetEvent)

	if memory1 == "" || memory2 == "" || targetEvent == "" {
		return nil, ErrMissingInput
	}
	if len(predictionErrors) != models.NarrationCount {
		return nil, ErrWrongErrorCount
	}

	scripts := make([]string, 0, models.NarrationCount)
	for i, pe := range predictionErrors {
		scripts = append(scripts, buildScript(i+1, memory1, memory2, targetEvent, pe))
	}
	return scripts, nil
}

func buildScript(number int, memory1, memory2, targetEvent string, pe models.PredictionError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Narrative %d.\n\n", number)
	fmt.Fprintf(&b, "I settle into my seat in the projection booth, far from the screen, watching a film of my own life. The film opens on a good moment: %s.\n\n", memory1)
	fmt.Fprintf(&b, "The scene changes. On the small screen below, I watch myself back then as the event unfolds: %s.\n\n", targetEvent)
	fmt.Fprintf(&b, "But in this version of the film, something different happens. %s\n\n", pe.Description)
	fmt.Fprintf(&b, "The film moves on, and it ends somewhere safe: %s.\n\n", memory2)
	b.WriteString("The screen fades. I am still here in the booth, watching, at a distance from all of it.")
	return b.String()
}

// GenerateReversed produces the short rewind script for one selected
// narrative. The same four components appear, played backwards; the clip the
// user records against it should stay under a few seconds.
func GenerateReversed(memory1, memory2, targetEvent string, pe models.PredictionError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewind.\n\n")
	fmt.Fprintf(&b, "I start at the end, in the safe place: %s. ", strings.TrimSpace(memory2))
	fmt.Fprintf(&b, "The film runs backwards. %s undoes itself. ", strings.TrimSpace(pe.Description))
	fmt.Fprintf(&b, "The event runs in reverse: %s, unhappening. ", strings.TrimSpace(targetEvent))
	fmt.Fprintf(&b, "And I land back at the start: %s.", strings.TrimSpace(memory1))
	return b.String()
}

// NarrationObjectKey is the storage path for a synthesized narration audio
// file. Narrative indices are 0-based in the API and 1-based in storage.
func NarrationObjectKey(userID uint, treatmentNumber, narrativeIndex int) string {
	return fmt.Sprintf("%d/treatment_%d/narration_%d.mp3", userID, treatmentNumber, narrativeIndex+1)
}

// SourceVideoKey is the storage path of a long-form narration video used as
// reversal source material. Indices here are 1-based.
func SourceVideoKey(userEmail string, treatmentNumber, index int) string {
	return fmt.Sprintf("%s_t%d/narration_video_%d.mp4", userEmail, treatmentNumber, index)
}

// ReversedClipKey is the storage path of a generated reversed clip.
func ReversedClipKey(userEmail string, treatmentNumber, index int) string {
	return fmt.Sprintf("%s_t%d/reversed_clip_%d.mp4", userEmail, treatmentNumber, index)
}
