package handlers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	applog "pantry/internal/log"
)

type amountRequest struct {
	AmountGrams amountValue `json:"amount_g"`
}

// amountValue is an amount_g that reads as zero when it is blank, null or
// not a number.
type amountValue decimal.Decimal

func (a *amountValue) UnmarshalJSON(data []byte) error {
	*a = amountValue(parseAmount(strings.Trim(string(data), `"`)))
	return nil
}

func parseAmount(raw string) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// RecipeIngredientResource edits single composition lines:
//
//	PUT    /app/api/recipe-ingredients/{id}   set amount_g
//	DELETE /app/api/recipe-ingredients/{id}   remove the line
func RecipeIngredientResource(w http.ResponseWriter, r *http.Request) {
	r, customer, ok := apiScope(w, r)
	if !ok {
		return
	}
	lineID, rest, ok := splitID(strings.TrimPrefix(r.URL.Path, "/app/api/recipe-ingredients"))
	if !ok || rest != "" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	service := compositionService()

	switch r.Method {
	case http.MethodPut:
		amount, err := readAmount(w, r)
		if err != nil {
			writeServiceError(w, r, err, "update recipe ingredient")
			return
		}
		if err := service.UpdateLineAmount(r.Context(), customer, lineID, amount); err != nil {
			writeServiceError(w, r, err, "update recipe ingredient")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := service.RemoveLine(r.Context(), customer, lineID); err != nil {
			writeServiceError(w, r, err, "remove recipe ingredient")
			return
		}
		applog.Info(r.Context(), "recipe line removed", "lineID", lineID)
		if isHTMX(r) {
			// hx-swap="outerHTML" replaces the row with nothing.
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// readAmount accepts JSON from API clients and the form field posted by
// the composition table. A cleared or unparseable amount is zero.
func readAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var payload amountRequest
		if err := decodeJSON(w, r, &payload); err != nil {
			return decimal.Zero, err
		}
		return decimal.Decimal(payload.AmountGrams), nil
	}
	if err := r.ParseForm(); err != nil {
		return decimal.Zero, invalid("invalid form submission")
	}
	return parseAmount(r.PostFormValue("amount_g")), nil
}
