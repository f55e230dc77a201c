package session

import "errors"

// Precondition errors. Handlers map these to 4xx responses with the error
// text as the user-facing message; the cursor never moves when one is
// returned.
var (
	ErrSetupIncomplete  = errors.New("session setup is incomplete; save your memories and calibration rating first")
	ErrWrongPhase       = errors.New("this action is not available in the current phase")
	ErrSelectionFull    = errors.New("You can only select 11 prediction errors")
	ErrSelectionCount   = errors.New("exactly 11 prediction errors must be selected")
	ErrBlankCustomError = errors.New("a custom prediction error needs a description")
	ErrResponseTooShort = errors.New("please write at least 10 characters before completing this phase")
	ErrBadIndex         = errors.New("narrative index out of range")
	ErrNarrationMissing = errors.New("all 11 narrations must be recorded before completing this phase")
	ErrPlaybackRequired = errors.New("play back the full narration sequence before completing this phase")
	ErrReversalFull     = errors.New("you can only select 8 narratives for reversal")
	ErrReversalCount    = errors.New("exactly 8 narratives must be selected for reversal")
	ErrNotSelected      = errors.New("this narrative is not selected for reversal")
	ErrReversalMissing  = errors.New("all 8 reversed clips must be recorded before completing this phase")
	ErrSudsRange        = errors.New("SUDS rating must be between 0 and 100")
	ErrAlreadyComplete  = errors.New("this treatment has already been completed")
)
