package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pantry/internal/store"
	"pantry/internal/tenant"
	"pantry/models"
)

// ReplaceNutrients swaps the full set of nutrient densities recorded for an
// ingredient. Every referenced nutrient must belong to customer.
func ReplaceNutrients(ctx context.Context, db *gorm.DB, customer tenant.ID, ingredientID uint, rows []models.IngredientNutrient) ([]models.IngredientNutrient, error) {
	if err := tenant.Require(customer); err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(rows))
	for i := range rows {
		if err := store.Validate(&rows[i]); err != nil {
			return nil, err
		}
		if rows[i].NutPer100Grams.Sign() < 0 {
			return nil, fmt.Errorf("%w: nut_per_100_grams must not be negative", store.ErrValidation)
		}
		if _, dup := seen[rows[i].NutritionID]; dup {
			return nil, fmt.Errorf("%w: nutrition %d listed twice", store.ErrValidation, rows[i].NutritionID)
		}
		seen[rows[i].NutritionID] = struct{}{}
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.RequireOwned[models.Ingredient](tx, customer, ingredientID); err != nil {
			return err
		}
		for i := range rows {
			if err := store.RequireOwned[models.Nutrition](tx, customer, rows[i].NutritionID); err != nil {
				return err
			}
		}
		if err := store.DeleteWhere[models.IngredientNutrient](tx, customer, "ingredient_id", ingredientID); err != nil {
			return err
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].IngredientID = ingredientID
			rows[i].AssignOwner(uint(customer))
			if err := tx.Omit(clause.Associations).Create(&rows[i]).Error; err != nil {
				return fmt.Errorf("create ingredient nutrient: %w", err)
			}
		}
		return stampIngredient(tx, customer, ingredientID)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceComponents swaps the set of components linked to an ingredient.
func ReplaceComponents(ctx context.Context, db *gorm.DB, customer tenant.ID, ingredientID uint, componentIDs []uint) ([]models.IngredientComponent, error) {
	if err := tenant.Require(customer); err != nil {
		return nil, err
	}

	links := make([]models.IngredientComponent, 0, len(componentIDs))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.RequireOwned[models.Ingredient](tx, customer, ingredientID); err != nil {
			return err
		}
		seen := make(map[uint]struct{}, len(componentIDs))
		for _, componentID := range componentIDs {
			if _, dup := seen[componentID]; dup {
				continue
			}
			seen[componentID] = struct{}{}
			if err := store.RequireOwned[models.Component](tx, customer, componentID); err != nil {
				return err
			}
			link := models.IngredientComponent{IngredientID: ingredientID, ComponentID: componentID}
			link.AssignOwner(uint(customer))
			links = append(links, link)
		}
		if err := store.DeleteWhere[models.IngredientComponent](tx, customer, "ingredient_id", ingredientID); err != nil {
			return err
		}
		for i := range links {
			if err := tx.Omit(clause.Associations).Create(&links[i]).Error; err != nil {
				return fmt.Errorf("create ingredient component: %w", err)
			}
		}
		return stampIngredient(tx, customer, ingredientID)
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Nutrients returns the densities recorded for an ingredient.
func Nutrients(ctx context.Context, db *gorm.DB, customer tenant.ID, ingredientID uint) ([]models.IngredientNutrient, error) {
	if err := tenant.Require(customer); err != nil {
		return nil, err
	}
	if err := store.RequireOwned[models.Ingredient](db.WithContext(ctx), customer, ingredientID); err != nil {
		return nil, err
	}
	var rows []models.IngredientNutrient
	err := db.WithContext(ctx).
		Preload("Nutrition").
		Where("customer_id = ? AND ingredient_id = ?", uint(customer), ingredientID).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list ingredient %d nutrients: %w", ingredientID, err)
	}
	return rows, nil
}

func stampIngredient(tx *gorm.DB, customer tenant.ID, ingredientID uint) error {
	result := tx.Model(&models.Ingredient{}).
		Where("id = ? AND customer_id = ?", ingredientID, uint(customer)).
		Update("last_modified", nowFunc())
	if result.Error != nil {
		return fmt.Errorf("stamp ingredient %d: %w", ingredientID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ingredient %d: %w", ingredientID, store.ErrConflict)
	}
	return nil
}
