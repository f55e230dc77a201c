package services

import (
	"time"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"

	"go.uber.org/zap"
)

type Scheduler struct {
	log          *zap.Logger
	emailService *EmailService
}

func NewScheduler(log *zap.Logger, emailService *EmailService) *Scheduler {
	return &Scheduler{
		log:          log,
		emailService: emailService,
	}
}

// Start runs the scheduler in a goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Starting follow-up reminder scheduler...")
	go func() {
		// Ticker will fire on every minute.
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			<-ticker.C
			s.runReminderCheck()
		}
	}()
}

func (s *Scheduler) runReminderCheck() {
	// Get current time in UTC, formatted as HH:MM
	currentTime := time.Now().UTC().Format("15:04")
	s.log.Debug("Running reminder check", zap.String("utc_time", currentTime))

	users, err := repository.GetUsersForFollowUpReminder(currentTime)
	if err != nil {
		s.log.Error("Failed to get users for follow-up reminder", zap.Error(err))
		return
	}

	for _, user := range users {
		done, err := repository.HasCompletedAllTreatments(user.ID)
		if err != nil {
			s.log.Error("Failed to check treatment completion status", zap.Uint("userID", user.ID), zap.Error(err))
			continue
		}

		// Users who finished all five treatments no longer get reminders.
		if !done {
			go s.sendReminder(user)
		}
	}
}

func (s *Scheduler) sendReminder(user models.User) {
	if err := s.emailService.SendFollowUpReminder(user); err != nil {
		s.log.Error("Failed to send follow-up reminder", zap.Uint("userID", user.ID), zap.Error(err))
	}
}
