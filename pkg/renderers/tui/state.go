package tui

import (
	"sort"
	"strings"
)

// State tracks collected answers and server-provided errors keyed by field
// name.
type State struct {
	values map[string]string
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]string, errs map[string][]string) *State {
	s := &State{
		values: make(map[string]string, len(prefill)),
		errors: make(map[string][]string, len(errs)),
	}
	for key, value := range prefill {
		s.values[strings.TrimSpace(key)] = value
	}
	for key, messages := range errs {
		s.errors[strings.TrimSpace(key)] = append([]string(nil), messages...)
	}
	return s
}

// Value returns the answer recorded for field.
func (s *State) Value(field string) string {
	if s == nil {
		return ""
	}
	return s.values[field]
}

// Set records an answer.
func (s *State) Set(field, value string) {
	s.values[field] = value
}

// ErrorsFor returns the messages attached to field.
func (s *State) ErrorsFor(field string) []string {
	if s == nil {
		return nil
	}
	return s.errors[field]
}

// Values returns a copy of the collected answers.
func (s *State) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}

// Fields lists answered fields in sorted order.
func (s *State) Fields() []string {
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
