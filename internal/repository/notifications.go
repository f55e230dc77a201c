package repository

import (
	"github.com/Devin-147/reconsolidator-app-sub000/internal/database"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
)

// GetUsersForFollowUpReminder finds users who have reminders enabled for a
// specific UTC time.
func GetUsersForFollowUpReminder(reminderTime string) ([]models.User, error) {
	var users []models.User
	err := database.DB.Where("reminders_enabled = ? AND reminder_time = ?", true, reminderTime).Find(&users).Error
	return users, err
}

// HasCompletedAllTreatments reports whether the user has a result for every
// numbered treatment. Follow-up results are excluded so a user with a gap in
// the five is still reminded.
func HasCompletedAllTreatments(userID uint) (bool, error) {
	var numbers []int
	err := database.DB.Model(&models.TreatmentResult{}).
		Where("user_id = ? AND treatment_number <= ?", userID, models.TreatmentCount).
		Pluck("treatment_number", &numbers).Error
	return models.ProtocolComplete(numbers), err
}

// UpdateReminderPreferences updates a user's follow-up reminder settings.
func UpdateReminderPreferences(userID uint, enabled bool, reminderTime, timezone string) error {
	return database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reminders_enabled": enabled,
		"reminder_time":     reminderTime,
		"time_zone":         timezone,
	}).Error
}
