package repository

import (
	"context"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/database"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"

	"gorm.io/gorm/clause"
)

// SaveTreatmentResult upserts the result for (user, treatment number). A
// repeat completion replaces the earlier row rather than appending a second
// one.
func SaveTreatmentResult(ctx context.Context, result *models.TreatmentResult) error {
	return database.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "treatment_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"final_suds", "improvement_percentage", "is_improvement", "completed_at",
		}),
	}).Create(result).Error
}

// GetTreatmentResults returns all of a user's results ordered by treatment
// number.
func GetTreatmentResults(ctx context.Context, userID uint) ([]models.TreatmentResult, error) {
	var results []models.TreatmentResult
	err := database.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("treatment_number").
		Find(&results).Error
	return results, err
}

// CountCompletedTreatments returns how many treatments the user has finished.
func CountCompletedTreatments(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.TreatmentResult{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// DeleteTreatmentResult removes the result row for one treatment as part of
// an explicit data purge.
func DeleteTreatmentResult(ctx context.Context, userID uint, treatmentNumber int) error {
	return database.DB.WithContext(ctx).
		Where("user_id = ? AND treatment_number = ?", userID, treatmentNumber).
		Delete(&models.TreatmentResult{}).Error
}
