package repository

import (
	"context"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/database"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"

	"gorm.io/gorm/clause"
)

// GetSessionSetup returns the user's setup row, or gorm.ErrRecordNotFound.
func GetSessionSetup(ctx context.Context, userID uint) (*models.SessionSetup, error) {
	var setup models.SessionSetup
	result := database.DB.WithContext(ctx).First(&setup, "user_id = ?", userID)
	return &setup, result.Error
}

// SaveSessionSetup upserts the user's setup. The MemoriesSaved flag is
// derived here, never trusted from the client.
func SaveSessionSetup(ctx context.Context, setup *models.SessionSetup) error {
	setup.MemoriesSaved = setup.TargetEventTranscript != "" &&
		setup.Memory1 != "" && setup.Memory2 != "" &&
		setup.CalibrationSuds >= 0 && setup.CalibrationSuds <= 100

	return database.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"target_event_transcript", "memory1", "memory2",
			"calibration_suds", "memories_saved", "updated_at",
		}),
	}).Create(setup).Error
}

// DeleteSessionSetup removes the setup row as part of an explicit data purge.
func DeleteSessionSetup(ctx context.Context, userID uint) error {
	return database.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SessionSetup{}).Error
}
