package catalog

import "strings"

// DefaultQuantityLabel is shown when the product type has no dedicated label.
const DefaultQuantityLabel = "Quantity"

// LabelTable maps product types to the text displayed on the quantity label.
// Lookups never fail: unknown or empty types resolve to Default.
type LabelTable struct {
	Default string                 `json:"default" yaml:"default"`
	ByType  map[ProductType]string `json:"byType" yaml:"byType"`
}

// DefaultQuantityLabels returns the stock table: units for baked goods and
// kilograms for ingredients.
func DefaultQuantityLabels() LabelTable {
	return LabelTable{
		Default: DefaultQuantityLabel,
		ByType: map[ProductType]string{
			ProductTypeBread:    "Quantity (Unit)",
			ProductTypeInjera:   "Quantity (Unit)",
			ProductTypeFlour:    "Quantity (KG)",
			ProductTypeYeast:    "Quantity (KG)",
			ProductTypeEnhancer: "Quantity (KG)",
		},
	}
}

// For resolves the label for the raw product type value. Matching is exact on
// the tag, the same way the select's option values are compared.
func (t LabelTable) For(raw string) string {
	if label, ok := t.ByType[ProductType(raw)]; ok && label != "" {
		return label
	}
	if t.Default == "" {
		return DefaultQuantityLabel
	}
	return t.Default
}

// Merge returns a copy of t with overrides applied. Empty override labels are
// ignored.
func (t LabelTable) Merge(overrides LabelTable) LabelTable {
	out := LabelTable{
		Default: t.Default,
		ByType:  make(map[ProductType]string, len(t.ByType)+len(overrides.ByType)),
	}
	for key, value := range t.ByType {
		out.ByType[key] = value
	}
	if trimmed := strings.TrimSpace(overrides.Default); trimmed != "" {
		out.Default = trimmed
	}
	for key, value := range overrides.ByType {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out.ByType[key] = trimmed
		}
	}
	return out
}
