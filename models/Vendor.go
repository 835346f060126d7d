package models

import (
	"gorm.io/gorm"
)

type Vendor struct {
	gorm.Model
	Owned
	Name        string       `gorm:"not null" json:"name" validate:"required"`
	Email       string       `json:"email" validate:"omitempty,email"`
	Phone       string       `json:"phone"`
	Address1    string       `json:"address1"`
	Address2    string       `json:"address2"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Zip         string       `json:"zip"`
	WebURL      string       `json:"web_url"`
	Notes       string       `gorm:"type:text" json:"notes"`
	Ingredients []Ingredient `gorm:"foreignKey:VendorID" json:"-"`
}
