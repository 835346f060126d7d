package handlers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pantry/internal/catalog"
	applog "pantry/internal/log"
	"pantry/internal/store"
	"pantry/internal/tenant"
	"pantry/models"
)

// subresource serves "<prefix>/<id>/<rest>". It is only called once the
// request has been scoped to a customer.
type subresource func(w http.ResponseWriter, r *http.Request, customer tenant.ID, id uint, rest string)

// resource is the JSON CRUD handler for one tenant-scoped model:
//
//	GET    <prefix>        list
//	POST   <prefix>        create
//	GET    <prefix>/{id}   read
//	PUT    <prefix>/{id}   replace
//	DELETE <prefix>/{id}   delete
type resource[T any, PT store.Scoped[T]] struct {
	prefix  string
	label   string
	repo    func(*gorm.DB) *store.Repo[T, PT]
	project func(*T) any
	sub     subresource
}

func (h resource[T, PT]) view(record *T) any {
	if h.project == nil {
		return record
	}
	return h.project(record)
}

func (h resource[T, PT]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r, customer, ok := apiScope(w, r)
	if !ok {
		return
	}
	repo := h.repo(database)
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, h.prefix), "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			records, err := repo.List(r.Context(), customer)
			if err != nil {
				writeServiceError(w, r, err, "list "+h.label)
				return
			}
			payload := make([]any, 0, len(records))
			for i := range records {
				payload = append(payload, h.view(&records[i]))
			}
			writeJSON(w, http.StatusOK, payload)
		case http.MethodPost:
			record := PT(new(T))
			if err := decodeJSON(w, r, record); err != nil {
				writeServiceError(w, r, err, "create "+h.label)
				return
			}
			if err := repo.Create(r.Context(), customer, record); err != nil {
				writeServiceError(w, r, err, "create "+h.label)
				return
			}
			applog.Info(r.Context(), "record created", "resource", h.label)
			writeJSON(w, http.StatusCreated, h.view((*T)(record)))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, rest, ok := splitID(path)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	if rest != "" {
		if h.sub == nil {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		h.sub(w, r, customer, id, rest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := repo.Get(r.Context(), customer, id)
		if err != nil {
			writeServiceError(w, r, err, "load "+h.label)
			return
		}
		writeJSON(w, http.StatusOK, h.view(record))
	case http.MethodPut:
		record := PT(new(T))
		if err := decodeJSON(w, r, record); err != nil {
			writeServiceError(w, r, err, "update "+h.label)
			return
		}
		updated, err := repo.Update(r.Context(), customer, id, record)
		if err != nil {
			writeServiceError(w, r, err, "update "+h.label)
			return
		}
		writeJSON(w, http.StatusOK, h.view(updated))
	case http.MethodDelete:
		if err := repo.Delete(r.Context(), customer, id); err != nil {
			writeServiceError(w, r, err, "delete "+h.label)
			return
		}
		applog.Info(r.Context(), "record deleted", "resource", h.label, "id", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ingredientView adds the unit costs derived from the per-pound cost.
type ingredientView struct {
	*models.Ingredient
	CostPerGram     decimal.NullDecimal `json:"cost_per_gram"`
	CostPerOunce    decimal.NullDecimal `json:"cost_per_ounce"`
	CostPerKilogram decimal.NullDecimal `json:"cost_per_kilogram"`
	CostPerMeasure  decimal.NullDecimal `json:"cost_per_measure"`
}

func projectIngredient(ingredient *models.Ingredient) any {
	return ingredientView{
		Ingredient:      ingredient,
		CostPerGram:     ingredient.CostPerGram(),
		CostPerOunce:    ingredient.CostPerOunce(),
		CostPerKilogram: ingredient.CostPerKilogram(),
		CostPerMeasure:  ingredient.CostPerMeasure(),
	}
}

type componentsRequest struct {
	ComponentIDs []uint `json:"component_ids"`
}

func ingredientAttachments(w http.ResponseWriter, r *http.Request, customer tenant.ID, id uint, rest string) {
	switch {
	case rest == "nutrients" && r.Method == http.MethodGet:
		rows, err := catalog.Nutrients(r.Context(), database, customer, id)
		if err != nil {
			writeServiceError(w, r, err, "load ingredient nutrients")
			return
		}
		writeJSON(w, http.StatusOK, rows)
	case rest == "nutrients" && r.Method == http.MethodPut:
		var rows []models.IngredientNutrient
		if err := decodeJSON(w, r, &rows); err != nil {
			writeServiceError(w, r, err, "replace ingredient nutrients")
			return
		}
		saved, err := catalog.ReplaceNutrients(r.Context(), database, customer, id, rows)
		if err != nil {
			writeServiceError(w, r, err, "replace ingredient nutrients")
			return
		}
		writeJSON(w, http.StatusOK, saved)
	case rest == "components" && r.Method == http.MethodPut:
		var payload componentsRequest
		if err := decodeJSON(w, r, &payload); err != nil {
			writeServiceError(w, r, err, "replace ingredient components")
			return
		}
		links, err := catalog.ReplaceComponents(r.Context(), database, customer, id, payload.ComponentIDs)
		if err != nil {
			writeServiceError(w, r, err, "replace ingredient components")
			return
		}
		writeJSON(w, http.StatusOK, links)
	case rest == "nutrients" || rest == "components":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		writeJSONError(w, http.StatusNotFound, "not found")
	}
}

var (
	// VendorResource serves /app/api/vendors.
	VendorResource http.Handler = resource[models.Vendor, *models.Vendor]{
		prefix: "/app/api/vendors",
		label:  "vendor",
		repo:   catalog.Vendors,
	}

	// IngredientResource serves /app/api/ingredients, including the
	// nutrient and component attachments of each ingredient.
	IngredientResource http.Handler = resource[models.Ingredient, *models.Ingredient]{
		prefix:  "/app/api/ingredients",
		label:   "ingredient",
		repo:    catalog.Ingredients,
		project: projectIngredient,
		sub:     ingredientAttachments,
	}

	ComponentResource http.Handler = resource[models.Component, *models.Component]{
		prefix: "/app/api/components",
		label:  "component",
		repo:   catalog.Components,
	}

	NutritionResource http.Handler = resource[models.Nutrition, *models.Nutrition]{
		prefix: "/app/api/nutrition",
		label:  "nutrition item",
		repo:   catalog.Nutrition,
	}

	MealCategoryResource http.Handler = resource[models.MealCategory, *models.MealCategory]{
		prefix: "/app/api/meal-categories",
		label:  "meal category",
		repo:   catalog.MealCategories,
	}

	ServingSizeResource http.Handler = resource[models.ServingSize, *models.ServingSize]{
		prefix: "/app/api/serving-sizes",
		label:  "serving size",
		repo:   catalog.ServingSizes,
	}
)
