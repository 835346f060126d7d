package models

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/schema"
)

func TestCostForGrams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		grams     string
		costPerLb decimal.NullDecimal
		want      string
	}{
		{name: "one pound", grams: "453.59237", costPerLb: decimal.NewNullDecimal(decimal.RequireFromString("2.50")), want: "2.5"},
		{name: "exact fraction", grams: "500", costPerLb: decimal.NewNullDecimal(decimal.RequireFromString("4.5359237")), want: "5"},
		{name: "zero amount", grams: "0", costPerLb: decimal.NewNullDecimal(decimal.NewFromInt(3)), want: "0"},
		{name: "unset cost", grams: "250", costPerLb: decimal.NullDecimal{}, want: "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CostForGrams(decimal.RequireFromString(tt.grams), tt.costPerLb)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestIngredientDerivedCosts(t *testing.T) {
	t.Parallel()

	ingredient := Ingredient{
		CostPerLb:    decimal.NewNullDecimal(decimal.RequireFromString("4.5359237")),
		WeightEquivG: decimal.NewNullDecimal(decimal.NewFromInt(120)),
	}

	if got := ingredient.CostPerKilogram(); !got.Valid || !got.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected cost per kilogram 10, got %v", got)
	}
	if got := ingredient.CostPerGram(); !got.Valid || !got.Decimal.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("expected cost per gram 0.01, got %v", got)
	}
	if got := ingredient.CostPerMeasure(); !got.Valid || !got.Decimal.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("expected cost per measure 1.2, got %v", got)
	}
	if got := ingredient.CostPerOunce(); !got.Valid || !got.Decimal.Equal(decimal.RequireFromString("0.28349523125")) {
		t.Fatalf("expected cost per ounce 0.28349523125, got %v", got)
	}
}

func TestIngredientDerivedCostsWithoutCanonicalCost(t *testing.T) {
	t.Parallel()

	ingredient := Ingredient{WeightEquivG: decimal.NewNullDecimal(decimal.NewFromInt(5))}
	if ingredient.CostPerGram().Valid || ingredient.CostPerMeasure().Valid {
		t.Fatal("expected derived costs to be unset when cost per pound is unset")
	}

	noEquivalent := Ingredient{CostPerLb: decimal.NewNullDecimal(decimal.NewFromInt(1))}
	if noEquivalent.CostPerMeasure().Valid {
		t.Fatal("expected measure cost to be unset without a gram equivalent")
	}
}

func TestIngredientDisplayName(t *testing.T) {
	t.Parallel()

	if got := (Ingredient{Name: "AP Flour 50lb"}).DisplayName(); got != "AP Flour 50lb" {
		t.Fatalf("expected purchasing name, got %q", got)
	}
	if got := (Ingredient{Name: "AP Flour 50lb", ComponentName: "wheat flour"}).DisplayName(); got != "wheat flour" {
		t.Fatalf("expected component name, got %q", got)
	}
}

func TestNutrientDensityColumnMatchesJSONName(t *testing.T) {
	t.Parallel()

	parsed, err := schema.Parse(&IngredientNutrient{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse schema: %v", err)
	}
	field := parsed.LookUpField("NutPer100Grams")
	if field == nil {
		t.Fatal("expected NutPer100Grams field")
	}
	if field.DBName != "nut_per_100_grams" {
		t.Fatalf("expected column nut_per_100_grams, got %q", field.DBName)
	}
}
