package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Protocol cardinalities and advisory capture limits. The duration limits
// are served to the client, which owns the actual capture.
const (
	NarrationCount         = 11
	ReversalCount          = 8
	TreatmentCount         = 5
	MaxNarrationSeconds    = 45
	ReversalTargetSeconds  = 3
	ReassessmentCapMinutes = 3
	MinPhaseResponseLength = 10
	NarrativePhaseCount    = 3
)

// RecordingMap maps a narrative index to a recorded media locator. Stored as
// jsonb; used for the phase-5 reversal recordings.
type RecordingMap map[int]string

func (m RecordingMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *RecordingMap) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into RecordingMap", value)
	}
}

// TreatmentState is the persisted progress of one treatment session. One row
// per (user, treatment number); the phase cursor and every phase's inputs
// live here so a page reload resumes instead of losing browser-only state.
type TreatmentState struct {
	ID              uint `gorm:"primaryKey"`
	UserID          uint `gorm:"uniqueIndex:idx_treatment_user_number"`
	User            User `gorm:"foreignKey:UserID"`
	TreatmentNumber int  `gorm:"uniqueIndex:idx_treatment_user_number"`

	// Phase is the cursor: -1 until the setup gate passes, then 0..6.
	Phase int `gorm:"default:-1"`

	// Phase 0: ordered selection, exactly NarrationCount entries on completion.
	SelectedErrors PredictionErrorList `gorm:"type:jsonb"`

	// Phases 1-3: free-text responses, write-only.
	PhaseResponses pq.StringArray `gorm:"type:text[]"`

	// Phase 4: one locator per narrative index, "" until recorded.
	Narrations             pq.StringArray `gorm:"type:text[]"`
	HasPlayedAllNarrations bool

	// Phase 5: up to ReversalCount selected indices and their recordings.
	ReversalSelection  pq.Int64Array `gorm:"type:integer[]"`
	ReversalRecordings RecordingMap  `gorm:"type:jsonb"`

	Completed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProtocolComplete reports whether result rows cover every numbered
// treatment. A follow-up result (number 6) never counts toward the five.
func ProtocolComplete(treatmentNumbers []int) bool {
	seen := make(map[int]bool, len(treatmentNumbers))
	for _, n := range treatmentNumbers {
		if n >= 1 && n <= TreatmentCount {
			seen[n] = true
		}
	}
	return len(seen) == TreatmentCount
}

// NarrationComplete reports whether every narrative index has a recording.
func (t *TreatmentState) NarrationComplete() bool {
	if len(t.Narrations) != NarrationCount {
		return false
	}
	for _, url := range t.Narrations {
		if url == "" {
			return false
		}
	}
	return true
}

// ReversalSelected reports whether the index is in the reversal selection.
func (t *TreatmentState) ReversalSelected(index int) bool {
	for _, i := range t.ReversalSelection {
		if int(i) == index {
			return true
		}
	}
	return false
}
