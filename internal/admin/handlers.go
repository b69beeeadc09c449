package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/dependent"
	"github.com/goliatone/go-bakery/pkg/inventory"
	"github.com/goliatone/go-bakery/pkg/render"
)

type formPage struct {
	title   string
	action  string
	submit  string
	success string
}

var formPages = map[string]formPage{
	FormInventory: {
		title:   "Add inventory",
		action:  "/inventory/new",
		submit:  "Save",
		success: "/",
	},
	FormTransaction: {
		title:   "Record stock transaction",
		action:  "/transactions/new",
		submit:  "Record",
		success: "/transactions",
	},
}

// FormAction returns the path the named form posts to.
func FormAction(name string) (string, bool) {
	page, ok := formPages[name]
	return page.action, ok
}

var formFields = []string{
	inventory.FieldBranch,
	inventory.FieldProductType,
	inventory.FieldProductChoice,
	inventory.FieldQuantity,
	inventory.FieldTransactionType,
}

func (s *Server) handleInventoryList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.service.Inventory(r.Context())
	if err != nil {
		s.serverError(w, r, err, "list inventory")
		return
	}
	out, err := s.renderer.RenderInventory(r.Context(), rows)
	if err != nil {
		s.serverError(w, r, err, "render inventory")
		return
	}
	s.writeHTML(w, http.StatusOK, out)
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.service.Transactions(r.Context())
	if err != nil {
		s.serverError(w, r, err, "list transactions")
		return
	}
	out, err := s.renderer.RenderTransactions(r.Context(), rows)
	if err != nil {
		s.serverError(w, r, err, "render transactions")
		return
	}
	s.writeHTML(w, http.StatusOK, out)
}

// handleInventoryForm renders the inventory form. Query parameters named
// after the form fields prefill it, which is how existing records are
// edited.
func (s *Server) handleInventoryForm(w http.ResponseWriter, r *http.Request) {
	s.showForm(w, r, FormInventory)
}

func (s *Server) handleTransactionForm(w http.ResponseWriter, r *http.Request) {
	s.showForm(w, r, FormTransaction)
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request, name string) {
	out, err := s.renderForm(r.Context(), name, submittedValues(r.URL.Query()), nil)
	if err != nil {
		s.serverError(w, r, err, "render form")
		return
	}
	s.writeHTML(w, http.StatusOK, out)
}

func (s *Server) handleInventorySubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	values := submittedValues(r.PostForm)
	_, err := s.service.SaveInventory(r.Context(), inventory.InventoryForm{
		Branch:        values[inventory.FieldBranch],
		ProductType:   values[inventory.FieldProductType],
		ProductChoice: values[inventory.FieldProductChoice],
		Quantity:      values[inventory.FieldQuantity],
	})
	s.finishSubmit(w, r, FormInventory, values, err)
}

func (s *Server) handleTransactionSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	values := submittedValues(r.PostForm)
	_, err := s.service.RecordTransaction(r.Context(), inventory.TransactionForm{
		Branch:          values[inventory.FieldBranch],
		ProductType:     values[inventory.FieldProductType],
		ProductChoice:   values[inventory.FieldProductChoice],
		Quantity:        values[inventory.FieldQuantity],
		TransactionType: values[inventory.FieldTransactionType],
	})
	s.finishSubmit(w, r, FormTransaction, values, err)
}

// finishSubmit redirects after a successful submission and re-renders the
// form with the submitted values and messages when validation failed.
func (s *Server) finishSubmit(w http.ResponseWriter, r *http.Request, name string, values map[string]string, err error) {
	if err == nil {
		http.Redirect(w, r, formPages[name].success, http.StatusSeeOther)
		return
	}
	verrs, ok := inventory.AsValidation(err)
	if !ok {
		s.serverError(w, r, err, "submit "+name)
		return
	}
	hlog.FromRequest(r).Info().Str("form", name).Err(verrs).Msg("form rejected")

	out, err := s.renderForm(r.Context(), name, values, render.ValidationErrors(verrs))
	if err != nil {
		s.serverError(w, r, err, "render form")
		return
	}
	s.writeHTML(w, http.StatusUnprocessableEntity, out)
}

// renderForm renders the named form. When values carry a known product type
// the product choices of that type are rendered too, so the current product
// stays selected without a client-side refresh.
func (s *Server) renderForm(ctx context.Context, name string, values map[string]string, errs map[string][]string) ([]byte, error) {
	page := formPages[name]
	binding := s.forms[name]

	branches, err := s.service.Branches(ctx)
	if err != nil {
		return nil, err
	}

	var productOptions []dependent.Option
	if productType, ok := catalog.ParseProductType(values[inventory.FieldProductType]); ok {
		list, err := s.service.Products(ctx, productType)
		if err != nil {
			return nil, err
		}
		productOptions = binding.ChoiceOptions(catalog.Options(list))
	}

	form := render.Form{
		Binding:        binding,
		Title:          page.title,
		Action:         page.action,
		SubmitLabel:    page.submit,
		LookupURL:      s.lookupPath,
		ChoicesURL:     ChoicesPath,
		Branches:       branches,
		ProductOptions: productOptions,
	}
	if name == FormTransaction {
		form.TransactionTypes = inventory.TransactionTypes()
	}

	return s.renderer.Render(ctx, form, render.RenderOptions{
		Values: values,
		Errors: errs,
		Hidden: render.MergeHiddenFields(nil, render.FormName(binding.Name)),
	})
}

// submittedValues keeps the first value of every form field.
func submittedValues(source map[string][]string) map[string]string {
	values := make(map[string]string, len(formFields))
	for _, field := range formFields {
		if vals := source[field]; len(vals) > 0 {
			values[field] = strings.TrimSpace(vals[0])
		}
	}
	return values
}

func (s *Server) writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error, action string) {
	hlog.FromRequest(r).Error().Err(err).Str("action", action).Msg("request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
