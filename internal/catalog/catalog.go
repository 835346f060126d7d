// Package catalog configures the tenant-scoped repositories for reference
// data and recipes, including the delete policy of each entity.
package catalog

import (
	"time"

	"gorm.io/gorm"

	"pantry/internal/store"
	"pantry/internal/tenant"
	"pantry/models"
)

var nowFunc = func() time.Time { return time.Now().UTC() }

// Vendors refuses to delete a vendor that still supplies ingredients.
func Vendors(db *gorm.DB) *store.Repo[models.Vendor, *models.Vendor] {
	return store.New[models.Vendor](db, "vendor").
		OrderBy("name asc").
		BeforeDelete(func(tx *gorm.DB, customer tenant.ID, id uint) error {
			return store.RefuseIfReferenced[models.Ingredient](tx, customer, "vendor_id", id, "ingredients")
		})
}

// Ingredients refuses to delete an ingredient used by a recipe and otherwise
// removes its nutrient and component rows with it.
func Ingredients(db *gorm.DB) *store.Repo[models.Ingredient, *models.Ingredient] {
	return store.New[models.Ingredient](db, "ingredient").
		OrderBy("name asc").
		Preload("Vendor").
		BeforeWrite(func(tx *gorm.DB, customer tenant.ID, ingredient *models.Ingredient) error {
			if err := store.RequireOwned[models.Vendor](tx, customer, ingredient.VendorID); err != nil {
				return err
			}
			now := nowFunc()
			ingredient.LastModified = &now
			return nil
		}).
		BeforeDelete(func(tx *gorm.DB, customer tenant.ID, id uint) error {
			if err := store.RefuseIfReferenced[models.RecipeIngredient](tx, customer, "ingredient_id", id, "recipe lines"); err != nil {
				return err
			}
			if err := store.DeleteWhere[models.IngredientNutrient](tx, customer, "ingredient_id", id); err != nil {
				return err
			}
			return store.DeleteWhere[models.IngredientComponent](tx, customer, "ingredient_id", id)
		})
}

// Components removes the ingredient links of a deleted component.
func Components(db *gorm.DB) *store.Repo[models.Component, *models.Component] {
	return store.New[models.Component](db, "component").
		OrderBy("name asc").
		BeforeDelete(func(tx *gorm.DB, customer tenant.ID, id uint) error {
			return store.DeleteWhere[models.IngredientComponent](tx, customer, "component_id", id)
		})
}

// Nutrition lists nutrients in panel order and removes the densities of a
// deleted nutrient.
func Nutrition(db *gorm.DB) *store.Repo[models.Nutrition, *models.Nutrition] {
	return store.New[models.Nutrition](db, "nutrition item").
		OrderBy("order_on_panel asc, name asc").
		BeforeDelete(func(tx *gorm.DB, customer tenant.ID, id uint) error {
			return store.DeleteWhere[models.IngredientNutrient](tx, customer, "nutrition_id", id)
		})
}

// MealCategories refuses to delete a category still assigned to a recipe.
func MealCategories(db *gorm.DB) *store.Repo[models.MealCategory, *models.MealCategory] {
	return store.New[models.MealCategory](db, "meal category").
		OrderBy("name asc").
		BeforeDelete(func(tx *gorm.DB, customer tenant.ID, id uint) error {
			return store.RefuseIfReferenced[models.Recipe](tx, customer, "meal_category_id", id, "recipes")
		})
}

// ServingSizes lists by size and refuses to delete a size still assigned to
// a recipe.
func ServingSizes(db *gorm.DB) *store.Repo[models.ServingSize, *models.ServingSize] {
	return store.New[models.ServingSize](db, "serving size").
		OrderBy("grams asc").
		BeforeDelete(func(tx *gorm.DB, customer tenant.ID, id uint) error {
			return store.RefuseIfReferenced[models.Recipe](tx, customer, "serving_size_id", id, "recipes")
		})
}

// Recipes checks that the category and serving size belong to the same
// customer and removes the composition of a deleted recipe.
func Recipes(db *gorm.DB) *store.Repo[models.Recipe, *models.Recipe] {
	return store.New[models.Recipe](db, "recipe").
		OrderBy("name asc").
		Preload("MealCategory", "ServingSize").
		BeforeWrite(func(tx *gorm.DB, customer tenant.ID, recipe *models.Recipe) error {
			if err := store.RequireOwned[models.MealCategory](tx, customer, recipe.MealCategoryID); err != nil {
				return err
			}
			if err := store.RequireOwned[models.ServingSize](tx, customer, recipe.ServingSizeID); err != nil {
				return err
			}
			now := nowFunc()
			recipe.LastModified = &now
			return nil
		}).
		BeforeDelete(func(tx *gorm.DB, customer tenant.ID, id uint) error {
			return store.DeleteWhere[models.RecipeIngredient](tx, customer, "recipe_id", id)
		})
}
