package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pantry/internal/store"
	"pantry/internal/tenant"
	"pantry/models"
)

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

func newImportCommand() *cobra.Command {
	var customer string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk load catalog data from CSV files",
	}
	cmd.PersistentFlags().StringVar(&customer, "customer", "", "customer id or name that receives the rows")

	cmd.AddCommand(&cobra.Command{
		Use:   "ingredients <csv>",
		Short: "Create or update ingredients and their vendors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, customer, args[0], "ingredients", importIngredient)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "nutrients <csv>",
		Short: "Set per-100g nutrient values of existing ingredients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, customer, args[0], "nutrient values", importNutrient)
		},
	})
	return cmd
}

type rowImporter func(tx *gorm.DB, customer tenant.ID, record map[string]string) error

func runImport(cmd *cobra.Command, customerFlag, csvPath, what string, importRow rowImporter) error {
	ctx := cmd.Context()
	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	database, err := openDatabaseFunc(ctx)
	if err != nil {
		return err
	}
	customer, err := resolveCustomer(ctx, database, customerFlag)
	if err != nil {
		return err
	}

	imported, err := importRecords(ctx, database, customer, records, importRow)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s from %s\n", imported, what, filepath.Base(csvPath))
	return nil
}

// importRecords applies each record in its own transaction and stops at the
// first failure. Rows before it stay imported.
func importRecords(ctx context.Context, database *gorm.DB, customer tenant.ID, records []map[string]string, importRow rowImporter) (int, error) {
	imported := 0
	for idx, record := range records {
		err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return importRow(tx, customer, record)
		})
		if err != nil {
			return imported, fmt.Errorf("record %d (%s): %w", idx+2, firstNonEmpty(record["Name"], record["Ingredient"]), err)
		}
		imported++
	}
	return imported, nil
}

// importIngredient upserts one ingredient by name, creating its vendor on
// first sight.
//
// Columns: Vendor, Name, Component Name, Brand, Packaging, Cost, Cost Per Lb,
// Per Item, Weight Equiv G, Weight Equiv Measure, Website, Notes.
func importIngredient(tx *gorm.DB, customer tenant.ID, record map[string]string) error {
	name := normalizeText(record["Name"])
	vendorName := normalizeText(record["Vendor"])
	if name == "" || vendorName == "" {
		return fmt.Errorf("%w: Name and Vendor are required", store.ErrValidation)
	}

	vendor := models.Vendor{Name: vendorName}
	vendor.AssignOwner(uint(customer))
	err := tx.Where("customer_id = ? AND lower(name) = ?", uint(customer), strings.ToLower(vendorName)).
		FirstOrCreate(&vendor).Error
	if err != nil {
		return fmt.Errorf("find or create vendor %q: %w", vendorName, err)
	}

	ingredient := models.Ingredient{
		VendorID:           vendor.ID,
		Name:               name,
		ComponentName:      normalizeText(record["Component Name"]),
		Brand:              normalizeValue(record["Brand"]),
		Packaging:          normalizeValue(record["Packaging"]),
		Cost:               parseDecimal(record["Cost"]),
		CostPerLb:          parseDecimal(record["Cost Per Lb"]),
		PerItem:            parseDecimal(record["Per Item"]),
		WeightEquivG:       parseDecimal(record["Weight Equiv G"]),
		WeightEquivMeasure: normalizeValue(record["Weight Equiv Measure"]),
		Website:            normalizeValue(record["Website"]),
		Notes:              normalizeText(record["Notes"]),
	}
	ingredient.AssignOwner(uint(customer))
	if err := store.Validate(&ingredient); err != nil {
		return err
	}
	now := nowFunc()
	ingredient.LastModified = &now

	var existing models.Ingredient
	err = tx.Where("customer_id = ? AND lower(name) = ?", uint(customer), strings.ToLower(name)).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Omit(clause.Associations).Create(&ingredient).Error; err != nil {
			return fmt.Errorf("create ingredient %q: %w", name, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("find ingredient %q: %w", name, err)
	}

	err = tx.Model(&existing).
		Select("*").
		Omit("id", "created_at", "deleted_at", clause.Associations).
		Updates(&ingredient).Error
	if err != nil {
		return fmt.Errorf("update ingredient %q: %w", name, err)
	}
	return nil
}

// importNutrient sets one nutrient density. The ingredient and the nutrient
// must already exist for the customer.
//
// Columns: Ingredient, Nutrient, Per 100g.
func importNutrient(tx *gorm.DB, customer tenant.ID, record map[string]string) error {
	ingredientName := normalizeText(record["Ingredient"])
	nutrientName := normalizeText(record["Nutrient"])
	amount := parseDecimal(record["Per 100g"])
	if ingredientName == "" || nutrientName == "" || !amount.Valid {
		return fmt.Errorf("%w: Ingredient, Nutrient and Per 100g are required", store.ErrValidation)
	}
	if amount.Decimal.Sign() < 0 {
		return fmt.Errorf("%w: Per 100g must not be negative", store.ErrValidation)
	}

	var ingredient models.Ingredient
	if err := tx.Where("customer_id = ? AND lower(name) = ?", uint(customer), strings.ToLower(ingredientName)).First(&ingredient).Error; err != nil {
		return fmt.Errorf("find ingredient %q: %w", ingredientName, notFound(err))
	}
	var nutrition models.Nutrition
	if err := tx.Where("customer_id = ? AND lower(name) = ?", uint(customer), strings.ToLower(nutrientName)).First(&nutrition).Error; err != nil {
		return fmt.Errorf("find nutrient %q: %w", nutrientName, notFound(err))
	}

	density := models.IngredientNutrient{IngredientID: ingredient.ID, NutritionID: nutrition.ID}
	density.AssignOwner(uint(customer))
	err := tx.Where("customer_id = ? AND ingredient_id = ? AND nutrition_id = ?", uint(customer), ingredient.ID, nutrition.ID).
		Assign(map[string]any{"nut_per_100_grams": amount.Decimal}).
		FirstOrCreate(&density).Error
	if err != nil {
		return fmt.Errorf("save %s for %s: %w", nutrientName, ingredientName, err)
	}

	return tx.Model(&models.Ingredient{}).
		Where("id = ? AND customer_id = ?", ingredient.ID, uint(customer)).
		Update("last_modified", nowFunc()).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[strings.TrimSpace(key)] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// parseDecimal reads the first number in value, so "$4.10/lb" gives 4.10.
// Blank or non-numeric cells are null.
func parseDecimal(value string) decimal.NullDecimal {
	value = normalizeValue(strings.ReplaceAll(value, ",", ""))
	if value == "" {
		return decimal.NullDecimal{}
	}

	match := numberPattern.FindString(value)
	if match == "" {
		return decimal.NullDecimal{}
	}

	parsed, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(parsed)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
