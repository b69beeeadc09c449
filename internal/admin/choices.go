package admin

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/goliatone/go-bakery/internal/metrics"
	"github.com/goliatone/go-bakery/internal/tracing"
	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/dependent"
	"github.com/goliatone/go-bakery/pkg/dependent/page"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

// QuantityLabelHeader carries the quantity label matching the requested type
// on product choice responses.
const QuantityLabelHeader = "X-Bakery-Quantity-Label"

// handleProductChoices answers GET /bakery/product-choices/?product_type=
// &selected=&form= with the <option> markup of the product choice select.
// The named form is rendered, parsed back into a page document and driven
// by a synchronizer, so clients without scripting get the same options the
// in-page refresh would produce.
func (s *Server) handleProductChoices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := strings.TrimSpace(query.Get("form"))
	if name == "" {
		name = FormInventory
	}
	binding, ok := s.forms[name]
	if !ok {
		http.Error(w, "Unknown form", http.StatusNotFound)
		return
	}
	productType := strings.TrimSpace(query.Get(inventory.FieldProductType))
	selected := strings.TrimSpace(query.Get("selected"))

	markup, err := s.renderForm(r.Context(), name, nil, nil)
	if err != nil {
		s.serverError(w, r, err, "render form")
		return
	}
	doc, err := page.Parse(bytes.NewReader(markup))
	if err != nil {
		s.serverError(w, r, err, "parse form")
		return
	}

	syncer, ok := dependent.Bind(doc, binding, s.storeLookup(binding.Name),
		dependent.WithLogger(*hlog.FromRequest(r)),
		dependent.WithObserver(metrics.ObserveLookup),
	)
	if !ok {
		s.serverError(w, r, errUnbound(name), "bind form")
		return
	}
	defer syncer.Close()

	if typeSel, ok := doc.SelectElement(binding.TypeField); ok {
		typeSel.SetValue(productType)
	}
	label := syncer.UpdateQuantityLabel()

	select {
	case <-syncer.LoadProducts(r.Context(), productType, selected):
	case <-r.Context().Done():
		return
	}

	options, _ := doc.OptionsHTML(binding.ChoiceField)
	status := http.StatusOK
	if syncer.State() == dependent.StateError {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(QuantityLabelHeader, label)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(options))
}

// storeLookup resolves products from the store, tracing every call.
func (s *Server) storeLookup(binding string) dependent.Lookup {
	return dependent.LookupFunc(func(ctx context.Context, productType string) ([]catalog.Option, error) {
		ctx, span := tracing.LookupSpan(ctx, binding, productType)
		defer span.End()

		parsed, ok := catalog.ParseProductType(productType)
		if !ok {
			return nil, nil
		}
		list, err := s.service.Products(ctx, parsed)
		tracing.EndWithError(span, err)
		if err != nil {
			return nil, err
		}
		return catalog.Options(list), nil
	})
}

type errUnbound string

func (e errUnbound) Error() string {
	return "admin: form " + string(e) + " is missing bound fields"
}
