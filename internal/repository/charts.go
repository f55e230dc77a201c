package repository

import (
	"context"
	"time"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/database"
)

type SudsTimelinePoint struct {
	Date            time.Time `json:"date"`
	TreatmentNumber int       `json:"treatmentNumber"`
	Suds            float64   `json:"suds"`
	Improvement     float64   `json:"improvement"`
}

// GetSudsTimeline returns the user's distress trajectory: the calibration
// rating as point zero followed by the final SUDS of each completed
// treatment in order.
func GetSudsTimeline(ctx context.Context, userID uint) ([]SudsTimelinePoint, error) {
	var data []SudsTimelinePoint

	query := `
		SELECT s.created_at AS date, 0 AS treatment_number, s.calibration_suds::float AS suds, 0 AS improvement
		FROM session_setups s
		WHERE s.user_id = ?

		UNION ALL

		SELECT r.completed_at AS date, r.treatment_number, r.final_suds::float AS suds, r.improvement_percentage AS improvement
		FROM treatment_results r
		WHERE r.user_id = ?

		ORDER BY treatment_number;
	`

	err := database.DB.WithContext(ctx).Raw(query, userID, userID).Scan(&data).Error
	return data, err
}
