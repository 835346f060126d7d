// Package recipes maintains recipe compositions: the ingredient lines of a
// recipe and the aggregates derived from them.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pantry/internal/audit"
	applog "pantry/internal/log"
	"pantry/internal/metrics"
	"pantry/internal/store"
	"pantry/internal/tenant"
	"pantry/models"
)

// Line is the projection of one composition row.
type Line struct {
	ID             uint            `json:"id"`
	IngredientID   uint            `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	RecipeID       uint            `json:"recipe_id"`
	RecipeName     string          `json:"recipe_name"`
	AmountGrams    decimal.Decimal `json:"amount_g"`
}

// LineEdit sets the amount of an existing line.
type LineEdit struct {
	LineID      uint            `json:"id"`
	AmountGrams decimal.Decimal `json:"amount_g"`
}

// Service applies composition edits. Every operation takes the tenant
// explicitly and refuses tenant.None.
type Service struct {
	db     *gorm.DB
	events audit.Publisher
	now    func() time.Time
}

// NewService returns a Service writing through db. A nil publisher discards
// events.
func NewService(db *gorm.DB, events audit.Publisher) *Service {
	if events == nil {
		events = audit.Discard{}
	}
	return &Service{
		db:     db,
		events: events,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// ListComposition returns the recipe's lines sorted by ingredient name.
func (s *Service) ListComposition(ctx context.Context, customer tenant.ID, recipeID uint) ([]Line, error) {
	if err := tenant.Require(customer); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	recipe, err := loadRecipe(db, customer, recipeID)
	if err != nil {
		return nil, err
	}
	return listLines(db, customer, recipe)
}

// AddLine appends an ingredient to the recipe and stamps the recipe's
// LastModified in the same transaction. Negative amounts are stored as zero.
func (s *Service) AddLine(ctx context.Context, customer tenant.ID, recipeID, ingredientID uint, amountGrams decimal.Decimal) (uint, error) {
	if err := tenant.Require(customer); err != nil {
		return 0, err
	}

	line := models.RecipeIngredient{
		RecipeID:     recipeID,
		IngredientID: ingredientID,
		AmountGrams:  clampAmount(amountGrams),
	}
	line.AssignOwner(uint(customer))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadRecipe(tx, customer, recipeID); err != nil {
			return err
		}
		if err := store.RequireOwned[models.Ingredient](tx, customer, ingredientID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&line).Error; err != nil {
			return fmt.Errorf("create recipe line: %w", err)
		}
		return s.touch(tx, customer, recipeID)
	})
	metrics.ObserveMutation("add", err)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, audit.NewEvent(audit.LineAdded, uint(customer), recipeID, line.ID))
	return line.ID, nil
}

// UpdateLineAmount sets a line's amount in place. Negative amounts are
// stored as zero.
func (s *Service) UpdateLineAmount(ctx context.Context, customer tenant.ID, lineID uint, amountGrams decimal.Decimal) error {
	if err := tenant.Require(customer); err != nil {
		return err
	}

	var recipeID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := loadLine(tx, customer, lineID)
		if err != nil {
			return err
		}
		recipeID = line.RecipeID
		if err := writeAmount(tx, customer, line.ID, amountGrams); err != nil {
			return err
		}
		return s.touch(tx, customer, line.RecipeID)
	})
	metrics.ObserveMutation("update", err)
	if err != nil {
		return err
	}

	s.publish(ctx, audit.NewEvent(audit.LineUpdated, uint(customer), recipeID, lineID))
	return nil
}

// UpdateCompositionBatch applies every edit in one transaction. All lines
// must belong to the same recipe, which is stamped exactly once. Any
// failure leaves the composition untouched.
func (s *Service) UpdateCompositionBatch(ctx context.Context, customer tenant.ID, edits []LineEdit) ([]Line, error) {
	if err := tenant.Require(customer); err != nil {
		return nil, err
	}
	if len(edits) == 0 {
		return nil, fmt.Errorf("%w: batch contains no lines", store.ErrValidation)
	}

	var (
		recipeID uint
		lines    []Line
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, edit := range edits {
			line, err := loadLine(tx, customer, edit.LineID)
			if err != nil {
				return err
			}
			if i == 0 {
				recipeID = line.RecipeID
			} else if line.RecipeID != recipeID {
				return fmt.Errorf("%w: line %d belongs to recipe %d, batch targets recipe %d",
					store.ErrValidation, line.ID, line.RecipeID, recipeID)
			}
			if err := writeAmount(tx, customer, line.ID, edit.AmountGrams); err != nil {
				return err
			}
		}
		if err := s.touch(tx, customer, recipeID); err != nil {
			return err
		}

		recipe, err := loadRecipe(tx, customer, recipeID)
		if err != nil {
			return err
		}
		lines, err = listLines(tx, customer, recipe)
		return err
	})
	metrics.ObserveMutation("batch", err)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edits))
	for _, edit := range edits {
		ids = append(ids, edit.LineID)
	}
	s.publish(ctx, audit.NewEvent(audit.LinesUpdated, uint(customer), recipeID, ids...))
	return lines, nil
}

// RemoveLine deletes a line. The ingredient it referenced is untouched.
func (s *Service) RemoveLine(ctx context.Context, customer tenant.ID, lineID uint) error {
	if err := tenant.Require(customer); err != nil {
		return err
	}

	var recipeID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := loadLine(tx, customer, lineID)
		if err != nil {
			return err
		}
		recipeID = line.RecipeID

		result := tx.Where("id = ? AND customer_id = ?", line.ID, uint(customer)).Delete(&models.RecipeIngredient{})
		if result.Error != nil {
			return fmt.Errorf("delete recipe line %d: %w", line.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("recipe line %d: %w", line.ID, store.ErrConflict)
		}
		return s.touch(tx, customer, line.RecipeID)
	})
	metrics.ObserveMutation("remove", err)
	if err != nil {
		return err
	}

	s.publish(ctx, audit.NewEvent(audit.LineRemoved, uint(customer), recipeID, lineID))
	return nil
}

// DisplayLabels renders each line as "<ingredient>/<amount>g".
func DisplayLabels(lines []Line) []string {
	labels := make([]string, 0, len(lines))
	for _, line := range lines {
		labels = append(labels, fmt.Sprintf("%s/%sg", line.IngredientName, line.AmountGrams.String()))
	}
	return labels
}

// touch stamps the recipe's LastModified.
func (s *Service) touch(tx *gorm.DB, customer tenant.ID, recipeID uint) error {
	result := tx.Model(&models.Recipe{}).
		Where("id = ? AND customer_id = ?", recipeID, uint(customer)).
		Update("last_modified", s.now())
	if result.Error != nil {
		return fmt.Errorf("stamp recipe %d: %w", recipeID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recipe %d: %w", recipeID, store.ErrConflict)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event audit.Event) {
	event.RequestID = applog.RequestID(ctx)
	if err := s.events.Publish(ctx, event); err != nil {
		metrics.AuditPublishFailures.Inc()
		applog.Error(ctx, "failed to publish composition event", "type", event.Type, "recipeID", event.RecipeID, "error", err)
	}
}

func writeAmount(tx *gorm.DB, customer tenant.ID, lineID uint, amountGrams decimal.Decimal) error {
	result := tx.Model(&models.RecipeIngredient{}).
		Where("id = ? AND customer_id = ?", lineID, uint(customer)).
		Update("amount_grams", clampAmount(amountGrams))
	if result.Error != nil {
		return fmt.Errorf("update recipe line %d: %w", lineID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recipe line %d: %w", lineID, store.ErrConflict)
	}
	return nil
}

func loadRecipe(tx *gorm.DB, customer tenant.ID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.Where("id = ? AND customer_id = ?", recipeID, uint(customer)).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %d: %w", recipeID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("load recipe %d: %w", recipeID, err)
	}
	return &recipe, nil
}

func loadLine(tx *gorm.DB, customer tenant.ID, lineID uint) (*models.RecipeIngredient, error) {
	var line models.RecipeIngredient
	if err := tx.Where("id = ? AND customer_id = ?", lineID, uint(customer)).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe line %d: %w", lineID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("load recipe line %d: %w", lineID, err)
	}
	return &line, nil
}

func listLines(tx *gorm.DB, customer tenant.ID, recipe *models.Recipe) ([]Line, error) {
	var rows []models.RecipeIngredient
	if err := tx.Preload("Ingredient").
		Where("customer_id = ? AND recipe_id = ?", uint(customer), recipe.ID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list recipe %d lines: %w", recipe.ID, err)
	}

	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		line := Line{
			ID:           row.ID,
			IngredientID: row.IngredientID,
			RecipeID:     recipe.ID,
			RecipeName:   recipe.Name,
			AmountGrams:  row.AmountGrams,
		}
		if row.Ingredient != nil {
			line.IngredientName = row.Ingredient.Name
		}
		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		a, b := strings.ToLower(lines[i].IngredientName), strings.ToLower(lines[j].IngredientName)
		if a != b {
			return a < b
		}
		return lines[i].ID < lines[j].ID
	})
	return lines, nil
}

// clampAmount zeroes negative amounts and rounds to the stored scale so
// every backend keeps the same value.
func clampAmount(amount decimal.Decimal) decimal.Decimal {
	if amount.Sign() < 0 {
		return decimal.Zero
	}
	return amount.Round(models.AmountScale)
}
