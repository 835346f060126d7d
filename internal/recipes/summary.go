package recipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pantry/internal/costing"
	"pantry/internal/store"
	"pantry/internal/tenant"
	"pantry/models"
)

// Summary computes weight, cost and the nutrition panel for a recipe.
func (s *Service) Summary(ctx context.Context, customer tenant.ID, recipeID uint) (costing.Summary, error) {
	if err := tenant.Require(customer); err != nil {
		return costing.Summary{}, err
	}

	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	err := db.Preload("ServingSize", "customer_id = ?", uint(customer)).
		Where("id = ? AND customer_id = ?", recipeID, uint(customer)).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return costing.Summary{}, fmt.Errorf("recipe %d: %w", recipeID, store.ErrNotFound)
		}
		return costing.Summary{}, fmt.Errorf("load recipe %d: %w", recipeID, err)
	}

	var rows []models.RecipeIngredient
	err = db.Preload("Ingredient").
		Preload("Ingredient.Nutrients", "customer_id = ?", uint(customer)).
		Where("customer_id = ? AND recipe_id = ?", uint(customer), recipe.ID).
		Find(&rows).Error
	if err != nil {
		return costing.Summary{}, fmt.Errorf("load recipe %d lines: %w", recipe.ID, err)
	}

	var nutrition []models.Nutrition
	if err := db.Where("customer_id = ?", uint(customer)).Find(&nutrition).Error; err != nil {
		return costing.Summary{}, fmt.Errorf("load nutrition panel: %w", err)
	}

	portions := make([]costing.Portion, 0, len(rows))
	costs := make(map[uint]decimal.NullDecimal, len(rows))
	densities := make(map[uint][]costing.Density, len(rows))
	for _, row := range rows {
		portions = append(portions, costing.Portion{IngredientID: row.IngredientID, AmountGrams: row.AmountGrams})
		if row.Ingredient == nil {
			continue
		}
		costs[row.IngredientID] = row.Ingredient.CostPerLb
		if _, seen := densities[row.IngredientID]; seen {
			continue
		}
		list := make([]costing.Density, 0, len(row.Ingredient.Nutrients))
		for _, n := range row.Ingredient.Nutrients {
			list = append(list, costing.Density{NutritionID: n.NutritionID, Per100Grams: n.NutPer100Grams})
		}
		densities[row.IngredientID] = list
	}

	panel := make([]costing.PanelItem, 0, len(nutrition))
	for _, n := range nutrition {
		panel = append(panel, costing.PanelItem{
			NutritionID: n.ID,
			Name:        n.Name,
			Unit:        n.Measurement,
			DailyValue:  n.DailyValue,
			Order:       n.OrderOnPanel,
			Show:        n.ShowOnPanel,
		})
	}

	serving := decimal.Zero
	if recipe.ServingSize != nil {
		serving = decimal.NewFromInt(int64(recipe.ServingSize.Grams))
	}

	return costing.Summarize(costing.Input{
		Portions:     portions,
		Costs:        func(id uint) decimal.NullDecimal { return costs[id] },
		Densities:    func(id uint) []costing.Density { return densities[id] },
		Panel:        panel,
		LaborCost:    recipe.LaborCost,
		ServingGrams: serving,
	}), nil
}
