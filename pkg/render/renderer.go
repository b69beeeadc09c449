package render

import (
	"context"

	"github.com/goliatone/go-bakery/pkg/dependent"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

// Form describes one dependent product form. ProductOptions are the choices
// rendered for the currently bound product type, placeholder included, so the
// page is usable before any client-side refresh.
type Form struct {
	Binding     dependent.Binding
	Title       string
	Action      string
	SubmitLabel string
	// LookupURL is exposed to clients that refresh the product choices.
	LookupURL string
	// ChoicesURL serves server-rendered option fragments.
	ChoicesURL string

	Branches       []inventory.Branch
	ProductOptions []dependent.Option
	// TransactionTypes enables the transaction type select when non-empty.
	TransactionTypes []inventory.TransactionType
	// Help is operator-provided markup shown above the fields; renderers
	// sanitise it.
	Help string
}

// Renderer converts a Form into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form Form, options RenderOptions) ([]byte, error)
}
