package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a purchasable item. CostPerLb is the canonical unit cost; the
// other per-unit figures are derived from it on demand.
type Ingredient struct {
	gorm.Model
	Owned
	VendorID           uint                  `gorm:"not null;index" json:"vendor_id" validate:"required"`
	Vendor             *Vendor               `gorm:"foreignKey:VendorID" json:"vendor,omitempty" validate:"-"`
	Name               string                `gorm:"not null" json:"name" validate:"required"`
	ComponentName      string                `json:"component_name"` // name used on ingredient statements
	Brand              string                `json:"brand"`
	Package            bool                  `gorm:"not null;default:false" json:"package"`
	Packaging          string                `json:"packaging"`
	Cost               decimal.NullDecimal   `gorm:"type:decimal(18,4)" json:"cost"`
	CostPerLb          decimal.NullDecimal   `gorm:"type:decimal(18,6)" json:"cost_per_lb"`
	PerItem            decimal.NullDecimal   `gorm:"type:decimal(18,4)" json:"per_item"`
	WeightEquivG       decimal.NullDecimal   `gorm:"type:decimal(18,4)" json:"weight_equiv_g"`
	WeightEquivMeasure string                `json:"weight_equiv_measure"`
	Website            string                `json:"website"`
	Notes              string                `gorm:"type:text" json:"notes"`
	LastModified       *time.Time            `json:"last_modified"`
	Nutrients          []IngredientNutrient  `gorm:"foreignKey:IngredientID" json:"nutrients,omitempty" validate:"-"`
	Components         []IngredientComponent `gorm:"foreignKey:IngredientID" json:"components,omitempty" validate:"-"`
}

// DisplayName prefers the ingredient-statement name over the purchasing name.
func (i Ingredient) DisplayName() string {
	if i.ComponentName != "" {
		return i.ComponentName
	}
	return i.Name
}

// CostPerGram derives the cost of one gram from CostPerLb.
func (i Ingredient) CostPerGram() decimal.NullDecimal {
	return perUnit(i.CostPerLb, decimal.NewFromInt(1))
}

// CostPerOunce derives the cost of one avoirdupois ounce from CostPerLb.
func (i Ingredient) CostPerOunce() decimal.NullDecimal {
	return perUnit(i.CostPerLb, GramsPerOunce)
}

// CostPerKilogram derives the cost of one kilogram from CostPerLb.
func (i Ingredient) CostPerKilogram() decimal.NullDecimal {
	return perUnit(i.CostPerLb, gramsPerKilogram)
}

// CostPerMeasure prices one WeightEquivMeasure (a cup, a tablespoon, ...) using
// the declared gram equivalent.
func (i Ingredient) CostPerMeasure() decimal.NullDecimal {
	if !i.WeightEquivG.Valid || i.WeightEquivG.Decimal.Sign() <= 0 {
		return decimal.NullDecimal{}
	}
	return perUnit(i.CostPerLb, i.WeightEquivG.Decimal)
}

// IngredientNutrient records how much of a nutrient 100 grams of an
// ingredient contains.
type IngredientNutrient struct {
	gorm.Model
	Owned
	IngredientID   uint            `gorm:"not null;index" json:"ingredient_id"`
	NutritionID    uint            `gorm:"not null;index" json:"nutrition_id" validate:"required"`
	NutPer100Grams decimal.Decimal `gorm:"column:nut_per_100_grams;type:decimal(18,6);not null" json:"nut_per_100_grams"`
	Nutrition      *Nutrition      `gorm:"foreignKey:NutritionID" json:"nutrition,omitempty" validate:"-"`
}

// IngredientComponent links an ingredient to a sub-component (allergen,
// additive, ...).
type IngredientComponent struct {
	gorm.Model
	Owned
	IngredientID uint       `gorm:"not null;index" json:"ingredient_id"`
	ComponentID  uint       `gorm:"not null;index" json:"component_id" validate:"required"`
	Component    *Component `gorm:"foreignKey:ComponentID" json:"component,omitempty" validate:"-"`
}
