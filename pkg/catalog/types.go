package catalog

import (
	"strconv"
	"strings"
)

// ProductType is the coarse category of a bakery item. It drives both the
// quantity unit and which products are selectable for an inventory entry.
type ProductType string

const (
	ProductTypeBread    ProductType = "bread"
	ProductTypeInjera   ProductType = "injera"
	ProductTypeFlour    ProductType = "flour"
	ProductTypeYeast    ProductType = "yeast"
	ProductTypeEnhancer ProductType = "enhancer"
)

// TypeChoice pairs a product type with its display name, mirroring the
// choices rendered in the product type select.
type TypeChoice struct {
	Type  ProductType `json:"type"`
	Label string      `json:"label"`
}

var typeChoices = []TypeChoice{
	{Type: ProductTypeBread, Label: "Bread"},
	{Type: ProductTypeInjera, Label: "Injera"},
	{Type: ProductTypeFlour, Label: "Flour"},
	{Type: ProductTypeYeast, Label: "Yeast"},
	{Type: ProductTypeEnhancer, Label: "Enhancer"},
}

// ProductTypes returns the known product types in display order.
func ProductTypes() []TypeChoice {
	return append([]TypeChoice(nil), typeChoices...)
}

// ParseProductType normalises raw input into a known product type.
func ParseProductType(raw string) (ProductType, bool) {
	candidate := ProductType(strings.ToLower(strings.TrimSpace(raw)))
	for _, choice := range typeChoices {
		if choice.Type == candidate {
			return candidate, true
		}
	}
	return "", false
}

// Label returns the display name for the type, falling back to the raw tag.
func (t ProductType) Label() string {
	for _, choice := range typeChoices {
		if choice.Type == t {
			return choice.Label
		}
	}
	return string(t)
}

// Baked reports whether the type is a finished good counted in units.
func (t ProductType) Baked() bool {
	return t == ProductTypeBread || t == ProductTypeInjera
}

// Ingredient reports whether the type is a raw material weighed in kg.
func (t ProductType) Ingredient() bool {
	switch t {
	case ProductTypeFlour, ProductTypeYeast, ProductTypeEnhancer:
		return true
	default:
		return false
	}
}

// Unit returns the stock unit for the type: "unit" for baked goods, "kg" for
// ingredients and an empty string otherwise.
func Unit(t ProductType) string {
	switch {
	case t.Baked():
		return "unit"
	case t.Ingredient():
		return "kg"
	default:
		return ""
	}
}

// Product is a catalog entry. Baked goods carry their recipe and cost
// breakdown; ingredients carry brand and cost per kilogram.
type Product struct {
	ID          uint64      `json:"id"`
	Type        ProductType `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`

	FlourKG         float64 `json:"flour_kg,omitempty"`
	YeastKG         float64 `json:"yeast_kg,omitempty"`
	EnhancerKG      float64 `json:"enhancer_kg,omitempty"`
	WaterCost       string  `json:"water_birr,omitempty"`
	ElectricityCost string  `json:"electricity_birr,omitempty"`
	SellingPrice    string  `json:"selling_price,omitempty"`

	Brand     string `json:"brand,omitempty"`
	CostPerKG string `json:"cost_per_kg,omitempty"`
}

// Option converts the product into the identifier/name pair used by
// dependent product selects.
func (p Product) Option() Option {
	return Option{ID: strconv.FormatUint(p.ID, 10), Name: p.Name}
}

// Option is one selectable product belonging to a product type.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options converts products into options preserving order.
func Options(products []Product) []Option {
	out := make([]Option, 0, len(products))
	for _, product := range products {
		out = append(out, product.Option())
	}
	return out
}
