package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Customer{},
		&CustomerUser{},
		&Vendor{},
		&Ingredient{},
		&Nutrition{},
		&IngredientNutrient{},
		&Component{},
		&IngredientComponent{},
		&MealCategory{},
		&ServingSize{},
		&Recipe{},
		&RecipeIngredient{},
	}
}
