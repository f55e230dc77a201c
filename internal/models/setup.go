package models

import (
	"strings"
	"time"
)

// SessionSetup holds the material recorded once before any treatment: the
// target event transcript, the two positive context memories and the
// calibration SUDS rating. Every treatment page gates on it.
type SessionSetup struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"uniqueIndex"`
	User   User `gorm:"foreignKey:UserID"`

	TargetEventTranscript string `gorm:"type:text"`
	Memory1               string `gorm:"type:text"`
	Memory2               string `gorm:"type:text"`
	CalibrationSuds       int

	// MemoriesSaved is only true once all of the above are present.
	MemoriesSaved bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsComplete reports whether the setup passes the treatment gate: the flag is
// set, all three texts are non-empty and the calibration rating is in range.
func (s *SessionSetup) IsComplete() bool {
	if s == nil || !s.MemoriesSaved {
		return false
	}
	if strings.TrimSpace(s.TargetEventTranscript) == "" ||
		strings.TrimSpace(s.Memory1) == "" ||
		strings.TrimSpace(s.Memory2) == "" {
		return false
	}
	return s.CalibrationSuds >= 0 && s.CalibrationSuds <= 100
}
