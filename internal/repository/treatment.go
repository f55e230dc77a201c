package repository

import (
	"context"
	"errors"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/database"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"

	"gorm.io/gorm"
)

// TreatmentStore is the gorm-backed session.Store implementation.
type TreatmentStore struct{}

func NewTreatmentStore() *TreatmentStore { return &TreatmentStore{} }

// Load returns the persisted state for (user, treatment number), creating a
// fresh unverified row when none exists yet.
func (s *TreatmentStore) Load(ctx context.Context, userID uint, treatmentNumber int) (*models.TreatmentState, error) {
	var state models.TreatmentState
	err := database.DB.WithContext(ctx).
		First(&state, "user_id = ? AND treatment_number = ?", userID, treatmentNumber).Error
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	state = models.TreatmentState{
		UserID:          userID,
		TreatmentNumber: treatmentNumber,
		Phase:           -1,
	}
	if err := database.DB.WithContext(ctx).Create(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// Save writes the full state row back.
func (s *TreatmentStore) Save(ctx context.Context, state *models.TreatmentState) error {
	return database.DB.WithContext(ctx).Save(state).Error
}

// DeleteTreatmentState removes the progress row for one treatment as part of
// an explicit data purge.
func DeleteTreatmentState(ctx context.Context, userID uint, treatmentNumber int) error {
	return database.DB.WithContext(ctx).
		Where("user_id = ? AND treatment_number = ?", userID, treatmentNumber).
		Delete(&models.TreatmentState{}).Error
}
