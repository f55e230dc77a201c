package repository

import (
	"context"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/database"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: firstName,
		LastName:  lastName,
		Status:    models.StatusTrial,
	}
	result := database.DB.Create(user)
	return user, result.Error
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, "email = ?", email)
	return &user, result.Error
}

func GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, id)
	return &user, result.Error
}

func UpdateUser(ctx context.Context, userID uint, firstName, lastName string) error {
	return database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{"first_name": firstName, "last_name": lastName}).Error
}

func UpdateUserPassword(ctx context.Context, userID uint, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", string(hashedPassword)).Error
}

// UpdateUserStatus sets the entitlement tier, normally from the billing
// webhook.
func UpdateUserStatus(ctx context.Context, userID uint, status, stripeCustomerID string) error {
	updates := map[string]interface{}{"status": status}
	if stripeCustomerID != "" {
		updates["stripe_customer_id"] = stripeCustomerID
	}
	return database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

// sudsUpdates builds the column updates for a completed treatment. The
// baseline written by treatment 1 is the pre-treatment calibration rating,
// never the post-treatment one.
func sudsUpdates(treatmentNumber, calibrationSuds, finalSuds int) map[string]interface{} {
	updates := map[string]interface{}{"current_suds": finalSuds}
	if treatmentNumber == 1 {
		updates["initial_suds"] = calibrationSuds
	}
	return updates
}

// UpdateUserSuds records the SUDS bookkeeping of a completed treatment on
// the user row. InitialSuds is only ever written by treatment 1.
func UpdateUserSuds(ctx context.Context, userID uint, treatmentNumber, calibrationSuds, finalSuds int) error {
	updates := sudsUpdates(treatmentNumber, calibrationSuds, finalSuds)
	return database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func DeleteUser(ctx context.Context, userID uint) error {
	return database.DB.WithContext(ctx).Delete(&models.User{}, userID).Error
}
