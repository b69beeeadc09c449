package dependent

import (
	"context"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

// Option is a single entry of a select control.
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Select abstracts a single-choice select control. Programmatic changes
// (ReplaceOptions, SetValue) never notify change listeners; only user input
// does.
type Select interface {
	ID() string
	// Value returns the value of the active option or "" when nothing is
	// selected.
	Value() string
	// SetValue activates the option with the given value. It reports false
	// when no option matches, leaving no option selected.
	SetValue(value string) bool
	// ReplaceOptions swaps the option list; the first option becomes active.
	ReplaceOptions(options []Option)
	Options() []Option
	// OnChange registers a listener for user-driven changes and returns a
	// function that removes it.
	OnChange(fn func(value string)) (unsubscribe func())
}

// Label abstracts the text of a label element.
type Label interface {
	Text() string
	SetText(text string)
}

// Document resolves form elements by their stable identifiers.
type Document interface {
	Select(id string) (Select, bool)
	// LabelFor returns the label whose for attribute targets id.
	LabelFor(id string) (Label, bool)
}

// Lookup returns the products that belong to a product type.
type Lookup interface {
	Products(ctx context.Context, productType string) ([]catalog.Option, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, productType string) ([]catalog.Option, error)

// Products calls fn.
func (fn LookupFunc) Products(ctx context.Context, productType string) ([]catalog.Option, error) {
	return fn(ctx, productType)
}
