package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pantry/internal/catalog"
	applog "pantry/internal/log"
	"pantry/internal/recipes"
	"pantry/internal/tenant"
	"pantry/internal/views/components"
	"pantry/models"
)

// RecipeResource serves /app/api/recipes and the composition endpoints
// nested under each recipe:
//
//	GET  /app/api/recipes/{id}/ingredients   composition lines
//	POST /app/api/recipes/{id}/ingredients   add a line
//	PUT  /app/api/recipes/{id}/ingredients   batch amount edit
//	GET  /app/api/recipes/{id}/labels        "name/amountg" labels
//	GET  /app/api/recipes/{id}/composition   editable HTML table
//	GET  /app/api/recipes/{id}/summary       weight, cost and nutrition
var RecipeResource http.Handler = resource[models.Recipe, *models.Recipe]{
	prefix: "/app/api/recipes",
	label:  "recipe",
	repo:   catalog.Recipes,
	sub:    recipeComposition,
}

type addLineRequest struct {
	IngredientID uint            `json:"ingredient_id"`
	AmountGrams  decimal.Decimal `json:"amount_g"`
}

type labelsResponse struct {
	RecipeID uint     `json:"recipe_id"`
	Labels   []string `json:"labels"`
}

func compositionService() *recipes.Service {
	return recipes.NewService(database, events)
}

func recipeComposition(w http.ResponseWriter, r *http.Request, customer tenant.ID, recipeID uint, rest string) {
	service := compositionService()

	switch rest {
	case "ingredients":
		switch r.Method {
		case http.MethodGet:
			lines, err := service.ListComposition(r.Context(), customer, recipeID)
			if err != nil {
				writeServiceError(w, r, err, "list recipe ingredients")
				return
			}
			writeJSON(w, http.StatusOK, lines)
		case http.MethodPost:
			var payload addLineRequest
			if err := decodeJSON(w, r, &payload); err != nil {
				writeServiceError(w, r, err, "add recipe ingredient")
				return
			}
			if payload.IngredientID == 0 {
				writeJSONError(w, http.StatusBadRequest, "ingredient_id is required")
				return
			}
			lineID, err := service.AddLine(r.Context(), customer, recipeID, payload.IngredientID, payload.AmountGrams)
			if err != nil {
				writeServiceError(w, r, err, "add recipe ingredient")
				return
			}
			applog.Info(r.Context(), "recipe line added", "recipeID", recipeID, "lineID", lineID)
			lines, err := service.ListComposition(r.Context(), customer, recipeID)
			if err != nil {
				writeServiceError(w, r, err, "list recipe ingredients")
				return
			}
			if isHTMX(r) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusCreated)
				renderComponent(w, r, components.CompositionTable(recipeID, lines))
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"id": lineID, "lines": lines})
		case http.MethodPut:
			var edits []recipes.LineEdit
			if err := decodeJSON(w, r, &edits); err != nil {
				writeServiceError(w, r, err, "update recipe ingredients")
				return
			}
			if err := sameRecipe(r, customer, recipeID, edits); err != nil {
				writeServiceError(w, r, err, "update recipe ingredients")
				return
			}
			lines, err := service.UpdateCompositionBatch(r.Context(), customer, edits)
			if err != nil {
				writeServiceError(w, r, err, "update recipe ingredients")
				return
			}
			writeJSON(w, http.StatusOK, lines)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "labels":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		lines, err := service.ListComposition(r.Context(), customer, recipeID)
		if err != nil {
			writeServiceError(w, r, err, "list recipe labels")
			return
		}
		labels := recipes.DisplayLabels(lines)
		if isHTMX(r) {
			renderComponent(w, r, components.CompositionLabels(recipeID, labels))
			return
		}
		writeJSON(w, http.StatusOK, labelsResponse{RecipeID: recipeID, Labels: labels})
	case "composition":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		lines, err := service.ListComposition(r.Context(), customer, recipeID)
		if err != nil {
			writeServiceError(w, r, err, "load recipe composition")
			return
		}
		renderComponent(w, r, components.CompositionTable(recipeID, lines))
	case "summary":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		summary, err := service.Summary(r.Context(), customer, recipeID)
		if err != nil {
			writeServiceError(w, r, err, "summarize recipe")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	default:
		writeJSONError(w, http.StatusNotFound, "not found")
	}
}

// sameRecipe rejects a batch addressed to one recipe that edits lines of
// another. The service itself only requires the lines to agree.
func sameRecipe(r *http.Request, customer tenant.ID, recipeID uint, edits []recipes.LineEdit) error {
	if len(edits) == 0 {
		return nil
	}
	var line models.RecipeIngredient
	err := database.WithContext(r.Context()).
		Select("id", "recipe_id").
		Where("id = ? AND customer_id = ?", edits[0].LineID, uint(customer)).
		Take(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Missing lines are reported by the batch itself.
		return nil
	}
	if err != nil {
		return err
	}
	if line.RecipeID != recipeID {
		return invalid(fmt.Sprintf("line %d belongs to another recipe", line.ID))
	}
	return nil
}
