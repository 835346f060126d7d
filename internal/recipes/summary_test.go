package recipes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry/internal/store"
	"pantry/models"
)

func TestSummary(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addLine(t, f.recipe, f.flour, "200")
	f.addLine(t, f.recipe, f.butter, "300")

	protein := models.Nutrition{Name: "Protein", Measurement: "g", OrderOnPanel: 2, ShowOnPanel: true}
	protein.AssignOwner(uint(tenantA))
	require.NoError(t, f.db.Create(&protein).Error)
	calories := models.Nutrition{Name: "Calories", Measurement: "kcal", OrderOnPanel: 1, ShowOnPanel: true}
	calories.AssignOwner(uint(tenantA))
	require.NoError(t, f.db.Create(&calories).Error)

	for _, density := range []models.IngredientNutrient{
		{IngredientID: f.flour.ID, NutritionID: protein.ID, NutPer100Grams: dec("10")},
		{IngredientID: f.butter.ID, NutritionID: protein.ID, NutPer100Grams: dec("5")},
	} {
		density := density
		density.AssignOwner(uint(tenantA))
		require.NoError(t, f.db.Create(&density).Error)
	}

	summary, err := f.service.Summary(context.Background(), tenantA, f.recipe.ID)
	require.NoError(t, err)

	assert.True(t, summary.TotalWeightGrams.Equal(dec("500")), "got %s", summary.TotalWeightGrams)
	// 200g of flour at 4.5359237/lb, butter has no cost.
	assert.True(t, summary.TotalCost.Equal(dec("2")), "got %s", summary.TotalCost)
	assert.True(t, summary.Servings.Equal(dec("10")), "got %s", summary.Servings)

	require.Len(t, summary.Nutrients, 2)
	assert.Equal(t, "Calories", summary.Nutrients[0].Name)
	assert.True(t, summary.Nutrients[0].Total.IsZero())
	assert.Equal(t, "Protein", summary.Nutrients[1].Name)
	assert.True(t, summary.Nutrients[1].Total.Equal(dec("35")), "got %s", summary.Nutrients[1].Total)
}

func TestSummaryEmptyRecipe(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	summary, err := f.service.Summary(context.Background(), tenantA, f.recipe.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalWeightGrams.IsZero())
	assert.True(t, summary.TotalCost.IsZero())
}

func TestSummaryOtherTenant(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.service.Summary(context.Background(), tenantB, f.recipe.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
