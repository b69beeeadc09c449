package inventory

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("inventory: not found")
	// ErrInsufficientStock is returned when a stock-out exceeds the level.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrNoInventory is returned when a stock-out targets a missing record.
	ErrNoInventory = errors.New("inventory: no inventory record")
)

// FormKey is the ValidationErrors key for errors not tied to a field.
const FormKey = "__all__"

// ValidationErrors maps field names to their messages.
type ValidationErrors map[string][]string

// Add appends a message for field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Has reports whether field carries messages.
func (v ValidationErrors) Has(field string) bool {
	return len(v[field]) > 0
}

// First returns the first message of field.
func (v ValidationErrors) First(field string) string {
	if msgs := v[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Form returns the form-level messages.
func (v ValidationErrors) Form() []string {
	return v[FormKey]
}

// Empty reports whether no field failed.
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(v[field], "; "))
	}
	return "inventory: invalid form: " + strings.Join(parts, ", ")
}

// AsValidation extracts validation errors from err.
func AsValidation(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
