// Package components renders the HTML fragments served to the browser.
package components

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"pantry/internal/recipes"
)

// CustomerOption is one selectable customer.
type CustomerOption struct {
	ID       uint
	Name     string
	Selected bool
}

type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// LoginForm renders the sign-in form, with an optional flash message.
func LoginForm(message, email string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out := &htmlWriter{w: w}
		out.raw(`<form class="login" method="post" action="/login" hx-post="/login">`)
		if message != "" {
			out.raw(`<p class="login__message" role="alert">`)
			out.text(message)
			out.raw(`</p>`)
		}
		out.raw(`<label>Email <input type="email" name="email" required value="`)
		out.text(email)
		out.raw(`"></label>`)
		out.raw(`<label>Password <input type="password" name="password" required></label>`)
		out.raw(`<button type="submit">Sign in</button></form>`)
		return out.err
	})
}

// CustomerPicker renders the customer selection form shown after sign-in
// when the user belongs to more than one customer.
func CustomerPicker(options []CustomerOption) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out := &htmlWriter{w: w}
		out.raw(`<form class="customer-picker" method="post" action="/app/customers/select" hx-post="/app/customers/select">`)
		out.raw(`<select name="customer_id">`)
		for _, option := range options {
			out.raw(`<option value="`)
			out.raw(strconv.FormatUint(uint64(option.ID), 10))
			out.raw(`"`)
			if option.Selected {
				out.raw(` selected`)
			}
			out.raw(`>`)
			out.text(option.Name)
			out.raw(`</option>`)
		}
		out.raw(`</select><button type="submit">Continue</button></form>`)
		return out.err
	})
}

// CompositionLabels renders the "already added" list for a recipe.
func CompositionLabels(recipeID uint, labels []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out := &htmlWriter{w: w}
		out.raw(fmt.Sprintf(`<ul class="recipe-labels" id="recipe-%d-labels">`, recipeID))
		for _, label := range labels {
			out.raw(`<li>`)
			out.text(label)
			out.raw(`</li>`)
		}
		out.raw(`</ul>`)
		return out.err
	})
}

// CompositionTable renders the editable composition of a recipe.
func CompositionTable(recipeID uint, lines []recipes.Line) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out := &htmlWriter{w: w}
		out.raw(fmt.Sprintf(`<table class="composition" id="recipe-%d-composition">`, recipeID))
		out.raw(`<thead><tr><th>Ingredient</th><th>Amount (g)</th><th></th></tr></thead><tbody>`)
		if len(lines) == 0 {
			out.raw(`<tr class="composition__empty"><td colspan="3">No ingredients yet.</td></tr>`)
		}
		for _, line := range lines {
			id := strconv.FormatUint(uint64(line.ID), 10)
			out.raw(`<tr data-line="` + id + `"><td>`)
			out.text(line.IngredientName)
			out.raw(`</td><td><input type="number" min="0" step="any" name="amount_g" value="`)
			out.text(line.AmountGrams.String())
			out.raw(`" hx-put="/app/api/recipe-ingredients/` + id + `" hx-trigger="change"></td>`)
			out.raw(`<td><button type="button" hx-delete="/app/api/recipe-ingredients/` + id + `" hx-target="closest tr" hx-swap="outerHTML">Remove</button></td></tr>`)
		}
		out.raw(`</tbody></table>`)
		return out.err
	})
}
