// Package page provides an in-memory form document for the dependent field
// synchronizer. Documents are built programmatically or parsed from the
// server-rendered form markup.
package page

import (
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-bakery/pkg/dependent"
)

// Document holds the select controls and labels of a rendered form. It is
// safe for concurrent use.
type Document struct {
	mu      sync.RWMutex
	selects map[string]*Select
	labels  map[string]*Label
}

var _ dependent.Document = (*Document)(nil)

// New returns an empty document.
func New() *Document {
	return &Document{
		selects: make(map[string]*Select),
		labels:  make(map[string]*Label),
	}
}

// AddSelect registers a select control. The option matching value becomes
// active; with no match the first option is active.
func (d *Document) AddSelect(id string, options []dependent.Option, value string) *Select {
	sel := &Select{
		id:        id,
		listeners: make(map[int]func(string)),
	}
	sel.ReplaceOptions(options)
	if value != "" {
		sel.SetValue(value)
	}

	d.mu.Lock()
	d.selects[id] = sel
	d.mu.Unlock()
	return sel
}

// AddLabel registers a label targeting the element forID.
func (d *Document) AddLabel(forID, text string) *Label {
	label := &Label{forID: forID, text: text}
	d.mu.Lock()
	d.labels[forID] = label
	d.mu.Unlock()
	return label
}

// Select implements dependent.Document.
func (d *Document) Select(id string) (dependent.Select, bool) {
	sel, ok := d.SelectElement(id)
	if !ok {
		return nil, false
	}
	return sel, true
}

// SelectElement returns the concrete select control registered under id.
func (d *Document) SelectElement(id string) (*Select, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sel, ok := d.selects[id]
	return sel, ok && sel != nil
}

// LabelFor implements dependent.Document.
func (d *Document) LabelFor(id string) (dependent.Label, bool) {
	label, ok := d.LabelElement(id)
	if !ok {
		return nil, false
	}
	return label, true
}

// LabelElement returns the concrete label targeting id.
func (d *Document) LabelElement(id string) (*Label, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	label, ok := d.labels[id]
	return label, ok && label != nil
}

// SelectIDs lists registered select ids in sorted order.
func (d *Document) SelectIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.selects))
	for id := range d.selects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OptionsHTML renders the option list of the select id as markup suitable
// for replacing the select's children.
func (d *Document) OptionsHTML(id string) (string, bool) {
	sel, ok := d.SelectElement(id)
	if !ok {
		return "", false
	}
	return sel.OptionsHTML(), true
}

// Select is a single-choice select control.
type Select struct {
	id string

	mu           sync.RWMutex
	options      []dependent.Option
	selected     int
	listeners    map[int]func(string)
	nextListener int
}

var _ dependent.Select = (*Select)(nil)

// ID returns the element identifier.
func (s *Select) ID() string {
	return s.id
}

// Value returns the active option value, or "" when nothing is selected.
func (s *Select) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected < 0 || s.selected >= len(s.options) {
		return ""
	}
	return s.options[s.selected].Value
}

// SelectedIndex returns the index of the active option or -1.
func (s *Select) SelectedIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetValue activates the option carrying value. With no match nothing stays
// selected.
func (s *Select) SetValue(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, option := range s.options {
		if option.Value == value {
			s.selected = i
			return true
		}
	}
	s.selected = -1
	return false
}

// ReplaceOptions swaps the option list and activates the first entry.
func (s *Select) ReplaceOptions(options []dependent.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = append([]dependent.Option(nil), options...)
	if len(s.options) == 0 {
		s.selected = -1
		return
	}
	s.selected = 0
}

// Options returns a copy of the option list.
func (s *Select) Options() []dependent.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dependent.Option(nil), s.options...)
}

// OnChange registers a listener for user-driven changes.
func (s *Select) OnChange(fn func(value string)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	key := s.nextListener
	s.nextListener++
	s.listeners[key] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, key)
		s.mu.Unlock()
	}
}

// Choose simulates user input: it activates value and notifies change
// listeners with the resulting value.
func (s *Select) Choose(value string) bool {
	matched := s.SetValue(value)

	s.mu.RLock()
	keys := make([]int, 0, len(s.listeners))
	for key := range s.listeners {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	listeners := make([]func(string), 0, len(keys))
	for _, key := range keys {
		listeners = append(listeners, s.listeners[key])
	}
	s.mu.RUnlock()

	current := s.Value()
	for _, fn := range listeners {
		fn(current)
	}
	return matched
}

// OptionsHTML renders the options, marking the active one as selected.
func (s *Select) OptionsHTML() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	for i, option := range s.options {
		b.WriteString(`<option value="`)
		b.WriteString(html.EscapeString(option.Value))
		b.WriteString(`"`)
		if i == s.selected {
			b.WriteString(" selected")
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(option.Text))
		b.WriteString("</option>")
	}
	return b.String()
}

// Label is the text of a label element.
type Label struct {
	forID string

	mu   sync.RWMutex
	text string
}

var _ dependent.Label = (*Label)(nil)

// For returns the id of the labelled element.
func (l *Label) For() string {
	return l.forID
}

// Text returns the label text.
func (l *Label) Text() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.text
}

// SetText replaces the label text.
func (l *Label) SetText(text string) {
	l.mu.Lock()
	l.text = text
	l.mu.Unlock()
}
