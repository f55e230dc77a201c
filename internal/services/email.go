package services

import (
	"fmt"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/config"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// EmailService sends transactional email through Resend. Without an API key
// configured it degrades to logging the message, so local development needs
// no credentials.
type EmailService struct {
	log    *zap.Logger
	client *resend.Client
	from   string
}

func NewEmailService(log *zap.Logger) *EmailService {
	s := &EmailService{log: log, from: config.Conf.Email.FromAddress}
	if key := config.Conf.Email.APIKey; key != "" {
		s.client = resend.NewClient(key)
	}
	return s
}

func (s *EmailService) send(to, subject, html string) error {
	if s.client == nil {
		s.log.Info("Email delivery skipped (no API key configured)",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed: %s", err.Error())
	}
	s.log.Info("Email sent", zap.String("to", to), zap.String("id", sent.Id))
	return nil
}

// SendTreatmentSummary emails the outcome of a completed treatment.
func (s *EmailService) SendTreatmentSummary(user models.User, result models.TreatmentResult) error {
	subject := fmt.Sprintf("Treatment %d complete", result.TreatmentNumber)
	direction := "decreased"
	if !result.IsImprovement {
		direction = "did not decrease"
	}
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>You completed treatment %d. Your distress rating %s: final SUDS %d, a change of %.1f%%.</p><p>Take a break before your next session.</p>",
		user.FirstName, result.TreatmentNumber, direction, result.FinalSuds, result.ImprovementPercentage,
	)
	return s.send(user.Email, subject, html)
}

// SendFollowUpReminder nudges users who have not finished the protocol.
func (s *EmailService) SendFollowUpReminder(user models.User) error {
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>This is a reminder that your next reconsolidation treatment is waiting. Sessions work best on a regular schedule.</p>",
		user.FirstName,
	)
	return s.send(user.Email, "Your next treatment is waiting", html)
}
