// Package users manages accounts and their customer memberships.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pantry/internal/store"
	"pantry/models"
)

// Create stores a new account. The email is lowercased and the name trimmed.
func Create(ctx context.Context, db *gorm.DB, email, name, password string) (*models.User, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", store.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return user, nil
}

// FindByEmail looks an account up case-insensitively.
func FindByEmail(ctx context.Context, db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	user := &models.User{}
	err := db.WithContext(ctx).Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Grant gives the user access to the customer. Granting twice is a no-op.
func Grant(ctx context.Context, db *gorm.DB, userID, customerID uint) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	var customer models.Customer
	if err := db.WithContext(ctx).First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("customer %d: %w", customerID, store.ErrNotFound)
		}
		return fmt.Errorf("load customer %d: %w", customerID, err)
	}
	link := models.CustomerUser{CustomerID: customerID, UserID: userID}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	if err != nil {
		return fmt.Errorf("grant customer %d to user %d: %w", customerID, userID, err)
	}
	return nil
}

// Memberships returns the customers the user may act for, ordered by name.
func Memberships(ctx context.Context, db *gorm.DB, userID uint) ([]models.Customer, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	var customers []models.Customer
	err := db.WithContext(ctx).
		Joins("JOIN customer_users ON customer_users.customer_id = customers.id AND customer_users.deleted_at IS NULL").
		Where("customer_users.user_id = ?", userID).
		Order("customers.name asc").
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("list memberships of user %d: %w", userID, err)
	}
	return customers, nil
}
