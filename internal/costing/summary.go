package costing

import "github.com/shopspring/decimal"

// Input gathers everything needed to summarize one recipe.
type Input struct {
	Portions     []Portion
	Costs        CostLookup
	Densities    DensityLookup
	Panel        []PanelItem
	LaborCost    decimal.NullDecimal
	ServingGrams decimal.Decimal
}

// Summary is the costing and nutrition rollup of a recipe.
type Summary struct {
	TotalWeightGrams   decimal.Decimal `json:"total_weight_g"`
	// TotalCost is the ingredient cost of every line, without labor.
	TotalCost          decimal.Decimal `json:"total_cost"`
	LaborCost          decimal.Decimal `json:"labor_cost"`
	TotalCostWithLabor decimal.Decimal `json:"total_cost_with_labor"`
	ServingGrams       decimal.Decimal `json:"serving_g"`
	Servings           decimal.Decimal `json:"servings"`
	CostPerServing     decimal.Decimal `json:"cost_per_serving"`
	Nutrients          []NutrientLine  `json:"nutrients"`
}

// Summarize computes the rollup for in. Per-serving cost includes labor.
// Servings and per-serving cost are zero when the serving size or the total
// weight is zero.
func Summarize(in Input) Summary {
	weight := TotalWeight(in.Portions)
	ingredientCost := TotalCost(in.Portions, in.Costs)

	labor := decimal.Zero
	if in.LaborCost.Valid {
		labor = in.LaborCost.Decimal
	}
	total := ingredientCost.Add(labor)

	summary := Summary{
		TotalWeightGrams:   weight,
		TotalCost:          ingredientCost.Round(4),
		LaborCost:          labor,
		TotalCostWithLabor: total.Round(4),
		ServingGrams:       in.ServingGrams,
		Servings:           decimal.Zero,
		CostPerServing:     decimal.Zero,
	}
	if !weight.IsZero() && in.ServingGrams.Sign() > 0 {
		summary.Servings = weight.Div(in.ServingGrams).Round(2)
		summary.CostPerServing = scale(total, in.ServingGrams, weight).Round(4)
	}

	summary.Nutrients = Panel(NutrientTotals(in.Portions, in.Densities), in.Panel, weight, in.ServingGrams)
	return summary
}
