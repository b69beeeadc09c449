package dependent

import (
	"strings"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

const (
	DefaultTypeField     = "id_product_type"
	DefaultChoiceField   = "id_product_choice"
	DefaultQuantityField = "id_quantity"
)

// Placeholders holds the texts of the value-less entries shown at the top of
// the product choice select.
type Placeholders struct {
	Empty   string `json:"empty" yaml:"empty"`
	Loading string `json:"loading" yaml:"loading"`
	Error   string `json:"error" yaml:"error"`
}

// DefaultPlaceholders returns the admin's stock placeholder texts.
func DefaultPlaceholders() Placeholders {
	return Placeholders{
		Empty:   "---------",
		Loading: "Loading...",
		Error:   "Error loading",
	}
}

// Binding names the elements of one form that take part in synchronisation.
// QuantityField is optional; leaving it empty disables label updates. The
// same holds for ChoiceField and product loads.
type Binding struct {
	Name          string             `json:"name" yaml:"name"`
	TypeField     string             `json:"typeField" yaml:"typeField"`
	ChoiceField   string             `json:"choiceField" yaml:"choiceField"`
	QuantityField string             `json:"quantityField" yaml:"quantityField"`
	Labels        catalog.LabelTable `json:"labels" yaml:"labels"`
	Placeholders  Placeholders       `json:"placeholders" yaml:"placeholders"`
}

// InventoryBinding is the binding of the inventory form: type, product choice
// and a unit-aware quantity label.
func InventoryBinding() Binding {
	return Binding{
		Name:          "inventory",
		TypeField:     DefaultTypeField,
		ChoiceField:   DefaultChoiceField,
		QuantityField: DefaultQuantityField,
		Labels:        catalog.DefaultQuantityLabels(),
		Placeholders:  DefaultPlaceholders(),
	}
}

// TransactionBinding is the binding of the stock transaction form, which keeps
// a fixed quantity label.
func TransactionBinding() Binding {
	return Binding{
		Name:         "stocktransaction",
		TypeField:    DefaultTypeField,
		ChoiceField:  DefaultChoiceField,
		Labels:       catalog.LabelTable{Default: catalog.DefaultQuantityLabel},
		Placeholders: DefaultPlaceholders(),
	}
}

// Normalize trims identifiers and fills empty placeholder texts and the
// default label.
func (b Binding) Normalize() Binding {
	b.Name = strings.TrimSpace(b.Name)
	b.TypeField = strings.TrimSpace(b.TypeField)
	b.ChoiceField = strings.TrimSpace(b.ChoiceField)
	b.QuantityField = strings.TrimSpace(b.QuantityField)

	defaults := DefaultPlaceholders()
	if b.Placeholders.Empty == "" {
		b.Placeholders.Empty = defaults.Empty
	}
	if b.Placeholders.Loading == "" {
		b.Placeholders.Loading = defaults.Loading
	}
	if b.Placeholders.Error == "" {
		b.Placeholders.Error = defaults.Error
	}
	if b.Labels.Default == "" {
		b.Labels.Default = catalog.DefaultQuantityLabel
	}
	return b
}

// PlaceholderOption returns the "unselected" entry.
func (b Binding) PlaceholderOption() Option {
	return Option{Value: "", Text: b.Placeholders.Empty}
}

// ChoiceOptions builds the option list for a populated choice field: the
// placeholder followed by the products in the given order.
func (b Binding) ChoiceOptions(products []catalog.Option) []Option {
	options := make([]Option, 0, len(products)+1)
	options = append(options, b.PlaceholderOption())
	for _, product := range products {
		options = append(options, Option{Value: product.ID, Text: product.Name})
	}
	return options
}
