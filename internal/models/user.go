package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserStatus values for the entitlement check on paid features.
const (
	StatusNone  = "none"
	StatusTrial = "trial"
	StatusPaid  = "paid"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex"`
	Password  string
	FirstName string
	LastName  string

	// Entitlement, updated by the billing webhook.
	Status           string `gorm:"default:none"`
	StripeCustomerID string

	// SUDS bookkeeping. InitialSuds is written once, when treatment 1
	// completes; CurrentSuds tracks the latest reassessment.
	InitialSuds *int
	CurrentSuds *int

	// Follow-up reminder preferences. ReminderTime is stored as UTC "HH:MM".
	RemindersEnabled bool
	ReminderTime     string
	TimeZone         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsPaid reports whether the user may use paid-only features such as
// synthesized narration audio.
func (u *User) IsPaid() bool {
	return u.Status == StatusPaid
}
