package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MealCategory struct {
	gorm.Model
	Owned
	Name  string `gorm:"not null" json:"name" validate:"required"`
	Notes string `gorm:"type:text" json:"notes"`
}

type ServingSize struct {
	gorm.Model
	Owned
	Grams int    `gorm:"not null" json:"grams" validate:"gt=0"`
	Notes string `gorm:"type:text" json:"notes"`
}

type Recipe struct {
	gorm.Model
	Owned
	Name           string              `gorm:"not null" json:"name" validate:"required"`
	MealCategoryID uint                `gorm:"not null;index" json:"meal_category_id" validate:"required"`
	MealCategory   *MealCategory       `gorm:"foreignKey:MealCategoryID" json:"meal_category,omitempty" validate:"-"`
	ServingSizeID  uint                `gorm:"not null;index" json:"serving_size_id" validate:"required"`
	ServingSize    *ServingSize        `gorm:"foreignKey:ServingSizeID" json:"serving_size,omitempty" validate:"-"`
	SKU            string              `json:"sku"`
	UPC            string              `json:"upc"`
	LaborCost      decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"labor_cost"`
	GlutenFree     bool                `gorm:"not null;default:false" json:"gluten_free"`
	Notes          string              `gorm:"type:text" json:"notes"`
	LastModified   *time.Time          `json:"last_modified"`
	Ingredients    []RecipeIngredient  `gorm:"foreignKey:RecipeID" json:"-"`
}

// AmountScale is the number of decimal places kept for a line amount. It
// matches the amount_grams column type.
const AmountScale = 4

// RecipeIngredient is one composition line: an amount in grams of an
// ingredient within a recipe.
type RecipeIngredient struct {
	gorm.Model
	Owned
	RecipeID     uint            `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint            `gorm:"not null;index" json:"ingredient_id"`
	AmountGrams  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount_g"`
	Recipe       *Recipe         `gorm:"foreignKey:RecipeID" json:"-"`
	Ingredient   *Ingredient     `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
