package render

// RenderOptions carry per-request data: the submitted values to re-display,
// validation feedback and hidden inputs.
type RenderOptions struct {
	// Values pre-populates controls keyed by field name (e.g.
	// "product_choice").
	Values map[string]string
	// Errors maps field names to messages. Form-level messages use the
	// inventory.FormKey key.
	Errors map[string][]string
	// Hidden adds hidden inputs to the form.
	Hidden map[string]string
}

// Value returns the submitted value of field.
func (o RenderOptions) Value(field string) string {
	if o.Values == nil {
		return ""
	}
	return o.Values[field]
}
