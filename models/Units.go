package models

import "github.com/shopspring/decimal"

var (
	// GramsPerPound is the exact avoirdupois pound.
	GramsPerPound = decimal.RequireFromString("453.59237")
	// GramsPerOunce is the exact avoirdupois ounce.
	GramsPerOunce = decimal.RequireFromString("28.349523125")

	gramsPerKilogram = decimal.NewFromInt(1000)
)

// CostForGrams prices an amount in grams against a per-pound cost. An unset
// cost contributes nothing.
func CostForGrams(grams decimal.Decimal, costPerLb decimal.NullDecimal) decimal.Decimal {
	if !costPerLb.Valid {
		return decimal.Zero
	}
	return grams.Mul(costPerLb.Decimal).Div(GramsPerPound)
}

func perUnit(costPerLb decimal.NullDecimal, grams decimal.Decimal) decimal.NullDecimal {
	if !costPerLb.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(CostForGrams(grams, costPerLb))
}
