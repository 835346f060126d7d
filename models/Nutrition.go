package models

import (
	"gorm.io/gorm"
)

// Nutrition is a nutrient definition (calories, sodium, ...) and its place on
// the nutrition panel.
type Nutrition struct {
	gorm.Model
	Owned
	Name         string `gorm:"not null" json:"name" validate:"required"`
	Measurement  string `gorm:"not null" json:"measurement" validate:"required"`
	DailyValue   *int   `json:"daily_value" validate:"omitempty,gte=0"`
	OrderOnPanel int    `gorm:"not null;default:0" json:"order_on_panel"`
	ShowOnPanel  bool   `gorm:"not null" json:"show_on_panel"`
}

func (Nutrition) TableName() string { return "nutrition_items" }

type Component struct {
	gorm.Model
	Owned
	Name  string `gorm:"not null" json:"name" validate:"required"`
	Notes string `gorm:"type:text" json:"notes"`
}
