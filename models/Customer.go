package models

import (
	"gorm.io/gorm"
)

// Customer is the tenant boundary. Every catalog and recipe record belongs to
// exactly one customer.
type Customer struct {
	gorm.Model
	Name     string         `gorm:"not null" json:"name" validate:"required"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Address1 string         `json:"address1"`
	Address2 string         `json:"address2"`
	City     string         `json:"city"`
	State    string         `json:"state"`
	Zip      string         `json:"zip"`
	WebURL   string         `json:"web_url"`
	Notes    string         `gorm:"type:text" json:"notes"`
	Users    []CustomerUser `gorm:"foreignKey:CustomerID" json:"-"`
}

// CustomerUser grants a user access to a customer's data.
type CustomerUser struct {
	gorm.Model
	CustomerID uint      `gorm:"not null;uniqueIndex:idx_customer_user" json:"customer_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_customer_user" json:"user_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
}
