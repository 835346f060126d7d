package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "pantry/internal/log"
	"pantry/models"
)

// Password is shared by every seeded account.
const Password = "pantry"

// New returns an in-memory sqlite database seeded with two customers so
// tenant isolation can be exercised by hand.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:pantry-mock-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

type seedIngredient struct {
	name      string
	component string
	costPerLb string
	nutrients map[string]string
}

type seedRecipe struct {
	name     string
	category string
	serving  int
	labor    string
	lines    map[string]string
}

type seedTenant struct {
	customer    string
	users       []*models.User
	vendor      string
	nutrition   []models.Nutrition
	ingredients []seedIngredient
	recipes     []seedRecipe
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hash := string(password)

	owner := &models.User{Name: "Morgan Reyes", Email: "owner@pantry.test", PasswordHash: hash}
	baker := &models.User{Name: "Sam Okafor", Email: "baker@harvest.test", PasswordHash: hash}
	chef := &models.User{Name: "Jo Lindqvist", Email: "chef@coastline.test", PasswordHash: hash}
	for _, user := range []*models.User{owner, baker, chef} {
		if err := db.WithContext(ctx).Create(user).Error; err != nil {
			return err
		}
	}

	tenants := []seedTenant{
		{
			customer: "Harvest Bakery",
			users:    []*models.User{owner, baker},
			vendor:   "Valley Mills",
			nutrition: []models.Nutrition{
				{Name: "Calories", Measurement: "kcal", OrderOnPanel: 1, ShowOnPanel: true},
				{Name: "Protein", Measurement: "g", DailyValue: intPtr(50), OrderOnPanel: 2, ShowOnPanel: true},
				{Name: "Sodium", Measurement: "mg", DailyValue: intPtr(2300), OrderOnPanel: 3, ShowOnPanel: true},
			},
			ingredients: []seedIngredient{
				{name: "Bread Flour", component: "wheat flour", costPerLb: "0.62", nutrients: map[string]string{"Calories": "364", "Protein": "12", "Sodium": "2"}},
				{name: "Unsalted Butter", component: "butter (cream)", costPerLb: "4.10", nutrients: map[string]string{"Calories": "717", "Protein": "0.85", "Sodium": "11"}},
				{name: "Cane Sugar", component: "sugar", costPerLb: "0.85", nutrients: map[string]string{"Calories": "387"}},
				{name: "Sea Salt", component: "salt", nutrients: map[string]string{"Sodium": "38758"}},
			},
			recipes: []seedRecipe{
				{name: "Shortbread", category: "Cookies", serving: 30, labor: "4.50", lines: map[string]string{"Bread Flour": "300", "Unsalted Butter": "200", "Cane Sugar": "100", "Sea Salt": "2"}},
				{name: "Country Loaf", category: "Breads", serving: 50, labor: "6.00", lines: map[string]string{"Bread Flour": "1000", "Sea Salt": "20"}},
			},
		},
		{
			customer: "Coastline Kitchen",
			users:    []*models.User{owner, chef},
			vendor:   "Harbor Provisions",
			nutrition: []models.Nutrition{
				{Name: "Calories", Measurement: "kcal", OrderOnPanel: 1, ShowOnPanel: true},
				{Name: "Fat", Measurement: "g", DailyValue: intPtr(78), OrderOnPanel: 2, ShowOnPanel: true},
			},
			ingredients: []seedIngredient{
				{name: "Olive Oil", component: "extra virgin olive oil", costPerLb: "7.25", nutrients: map[string]string{"Calories": "884", "Fat": "100"}},
				{name: "Anchovy Fillets", component: "anchovies", costPerLb: "12.40", nutrients: map[string]string{"Calories": "210", "Fat": "9.7"}},
				{name: "Lemon Juice", component: "lemon juice", costPerLb: "2.10", nutrients: map[string]string{"Calories": "22"}},
			},
			recipes: []seedRecipe{
				{name: "Caesar Dressing", category: "Sauces", serving: 30, labor: "2.25", lines: map[string]string{"Olive Oil": "240", "Anchovy Fillets": "40", "Lemon Juice": "60"}},
			},
		},
	}

	for _, tenant := range tenants {
		if err := seedCustomer(ctx, db, tenant); err != nil {
			return fmt.Errorf("seed %s: %w", tenant.customer, err)
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}

func seedCustomer(ctx context.Context, db *gorm.DB, data seedTenant) error {
	tx := db.WithContext(ctx)
	now := time.Now().UTC()

	customer := &models.Customer{Name: data.customer}
	if err := tx.Create(customer).Error; err != nil {
		return err
	}
	owned := func(record interface{ AssignOwner(uint) }) error {
		record.AssignOwner(customer.ID)
		return tx.Create(record).Error
	}

	for _, user := range data.users {
		if err := tx.Create(&models.CustomerUser{CustomerID: customer.ID, UserID: user.ID}).Error; err != nil {
			return err
		}
	}

	vendor := &models.Vendor{Name: data.vendor}
	if err := owned(vendor); err != nil {
		return err
	}

	nutrition := make(map[string]uint, len(data.nutrition))
	for i := range data.nutrition {
		item := data.nutrition[i]
		if err := owned(&item); err != nil {
			return err
		}
		nutrition[item.Name] = item.ID
	}

	ingredients := make(map[string]uint, len(data.ingredients))
	for _, spec := range data.ingredients {
		ingredient := &models.Ingredient{
			VendorID:      vendor.ID,
			Name:          spec.name,
			ComponentName: spec.component,
			LastModified:  &now,
		}
		if spec.costPerLb != "" {
			ingredient.CostPerLb = decimal.NewNullDecimal(decimal.RequireFromString(spec.costPerLb))
		}
		if err := owned(ingredient); err != nil {
			return err
		}
		ingredients[spec.name] = ingredient.ID

		for name, amount := range spec.nutrients {
			density := &models.IngredientNutrient{
				IngredientID:   ingredient.ID,
				NutritionID:    nutrition[name],
				NutPer100Grams: decimal.RequireFromString(amount),
			}
			if err := owned(density); err != nil {
				return err
			}
		}
	}

	categories := map[string]uint{}
	servings := map[int]uint{}
	for _, spec := range data.recipes {
		if _, ok := categories[spec.category]; !ok {
			category := &models.MealCategory{Name: spec.category}
			if err := owned(category); err != nil {
				return err
			}
			categories[spec.category] = category.ID
		}
		if _, ok := servings[spec.serving]; !ok {
			serving := &models.ServingSize{Grams: spec.serving}
			if err := owned(serving); err != nil {
				return err
			}
			servings[spec.serving] = serving.ID
		}

		recipe := &models.Recipe{
			Name:           spec.name,
			MealCategoryID: categories[spec.category],
			ServingSizeID:  servings[spec.serving],
			LaborCost:      decimal.NewNullDecimal(decimal.RequireFromString(spec.labor)),
			LastModified:   &now,
		}
		if err := owned(recipe); err != nil {
			return err
		}
		for name, amount := range spec.lines {
			line := &models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: ingredients[name],
				AmountGrams:  decimal.RequireFromString(amount),
			}
			if err := owned(line); err != nil {
				return err
			}
		}
	}

	return nil
}

func intPtr(v int) *int { return &v }
