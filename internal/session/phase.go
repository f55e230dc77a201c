// Package session implements the treatment phase flow: one parametrized
// controller walks a user through the ordered protocol phases, persisting
// progress through a Store so a reload resumes where the browser left off.
package session

// Phase is the cursor over the treatment protocol. Transitions are strictly
// monotonic forward; a controller never returns to an earlier phase.
type Phase int

const (
	// PhaseUnverified means the setup gate has not passed yet.
	PhaseUnverified Phase = -1
	// PhaseSelection is the prediction-error selection step.
	PhaseSelection Phase = 0
	// PhaseNarrativeOne through PhaseNarrativeThree are the
	// dissociated-viewpoint free-text phases.
	PhaseNarrativeOne   Phase = 1
	PhaseNarrativeTwo   Phase = 2
	PhaseNarrativeThree Phase = 3
	// PhaseNarration is the per-script audio recording step.
	PhaseNarration Phase = 4
	// PhaseReversal is the rewind exercise over 8 of the 11 scripts.
	PhaseReversal Phase = 5
	// PhaseReassessment collects the final SUDS rating and completes the
	// treatment. It is terminal.
	PhaseReassessment Phase = 6
)

func (p Phase) String() string {
	switch p {
	case PhaseUnverified:
		return "unverified"
	case PhaseSelection:
		return "selection"
	case PhaseNarrativeOne, PhaseNarrativeTwo, PhaseNarrativeThree:
		return "narrative"
	case PhaseNarration:
		return "narration"
	case PhaseReversal:
		return "reversal"
	case PhaseReassessment:
		return "reassessment"
	default:
		return "unknown"
	}
}
