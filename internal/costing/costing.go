// Package costing computes weights, costs and nutrition panels for a recipe
// composition. Everything here is pure; callers supply the lookups.
package costing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"pantry/models"
)

var hundred = decimal.NewFromInt(100)

// Portion is an amount of one ingredient.
type Portion struct {
	IngredientID uint
	AmountGrams  decimal.Decimal
}

// Density is how much of a nutrient 100 grams of an ingredient contains.
type Density struct {
	NutritionID uint
	Per100Grams decimal.Decimal
}

// CostLookup returns the per-pound cost of an ingredient, unset when unknown.
type CostLookup func(ingredientID uint) decimal.NullDecimal

// DensityLookup returns the nutrient densities recorded for an ingredient.
type DensityLookup func(ingredientID uint) []Density

// TotalWeight sums the portion amounts.
func TotalWeight(portions []Portion) decimal.Decimal {
	total := decimal.Zero
	for _, p := range portions {
		total = total.Add(p.AmountGrams)
	}
	return total
}

// TotalCost prices every portion against its ingredient's per-pound cost.
// Ingredients without a cost contribute zero.
func TotalCost(portions []Portion, costs CostLookup) decimal.Decimal {
	total := decimal.Zero
	if costs == nil {
		return total
	}
	for _, p := range portions {
		total = total.Add(models.CostForGrams(p.AmountGrams, costs(p.IngredientID)))
	}
	return total
}

// NutrientTotals sums amount/100 * density per nutrient across portions.
func NutrientTotals(portions []Portion, densities DensityLookup) map[uint]decimal.Decimal {
	totals := make(map[uint]decimal.Decimal)
	if densities == nil {
		return totals
	}
	for _, p := range portions {
		for _, d := range densities(p.IngredientID) {
			totals[d.NutritionID] = totals[d.NutritionID].Add(p.AmountGrams.Mul(d.Per100Grams).Div(hundred))
		}
	}
	return totals
}

// PanelItem describes one nutrient line on the nutrition panel.
type PanelItem struct {
	NutritionID uint
	Name        string
	Unit        string
	DailyValue  *int
	Order       int
	Show        bool
}

// NutrientLine is a computed panel line.
type NutrientLine struct {
	NutritionID uint            `json:"nutrition_id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	DailyValue  *int            `json:"daily_value,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Per100Grams decimal.Decimal `json:"per_100_grams"`
	PerServing  decimal.Decimal `json:"per_serving"`
	// PercentDailyValue is unset when the nutrient has no daily value.
	PercentDailyValue decimal.NullDecimal `json:"percent_daily_value"`
}

// Panel orders the visible items by panel order then name and fills in
// totals scaled to 100 grams and to one serving.
func Panel(totals map[uint]decimal.Decimal, items []PanelItem, totalWeight, servingGrams decimal.Decimal) []NutrientLine {
	visible := make([]PanelItem, 0, len(items))
	for _, item := range items {
		if item.Show {
			visible = append(visible, item)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Order != visible[j].Order {
			return visible[i].Order < visible[j].Order
		}
		return strings.ToLower(visible[i].Name) < strings.ToLower(visible[j].Name)
	})

	lines := make([]NutrientLine, 0, len(visible))
	for _, item := range visible {
		total := totals[item.NutritionID]
		line := NutrientLine{
			NutritionID: item.NutritionID,
			Name:        item.Name,
			Unit:        item.Unit,
			DailyValue:  item.DailyValue,
			Total:       total,
			Per100Grams: scale(total, hundred, totalWeight),
			PerServing:  scale(total, servingGrams, totalWeight),
		}
		if item.DailyValue != nil && *item.DailyValue > 0 {
			dv := decimal.NewFromInt(int64(*item.DailyValue))
			line.PercentDailyValue = decimal.NewNullDecimal(line.PerServing.Mul(hundred).Div(dv).Round(0))
		}
		lines = append(lines, line)
	}
	return lines
}

// scale returns value * grams / weight, or zero when either weight is zero.
func scale(value, grams, weight decimal.Decimal) decimal.Decimal {
	if weight.IsZero() || grams.IsZero() {
		return decimal.Zero
	}
	return value.Mul(grams).Div(weight)
}
