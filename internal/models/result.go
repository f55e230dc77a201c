package models

import "time"

// TreatmentResult records the outcome of one completed treatment. At most
// one row exists per (user, treatment number); a repeat completion replaces
// the earlier values.
type TreatmentResult struct {
	ID              uint `gorm:"primaryKey"`
	UserID          uint `gorm:"uniqueIndex:idx_result_user_number"`
	User            User `gorm:"foreignKey:UserID"`
	TreatmentNumber int  `gorm:"uniqueIndex:idx_result_user_number"`

	FinalSuds             int
	ImprovementPercentage float64
	IsImprovement         bool
	CompletedAt           time.Time
}

// ImprovementPercentage computes the relative SUDS reduction. A calibration
// of zero yields zero, never a division by zero.
func ImprovementPercentage(calibrationSuds, finalSuds int) float64 {
	if calibrationSuds <= 0 {
		return 0
	}
	return float64(calibrationSuds-finalSuds) / float64(calibrationSuds) * 100
}

// NewTreatmentResult builds the result record for a completed treatment.
func NewTreatmentResult(userID uint, treatmentNumber, calibrationSuds, finalSuds int) TreatmentResult {
	return TreatmentResult{
		UserID:                userID,
		TreatmentNumber:       treatmentNumber,
		FinalSuds:             finalSuds,
		ImprovementPercentage: ImprovementPercentage(calibrationSuds, finalSuds),
		IsImprovement:         finalSuds < calibrationSuds,
		CompletedAt:           time.Now().UTC(),
	}
}
