package dependent

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

// Synchronizer keeps one form's quantity label and product choice consistent
// with its product type field.
type Synchronizer struct {
	binding   Binding
	lookup    Lookup
	logger    zerolog.Logger
	observers []Observer

	typeField     Select
	choiceField   Select
	quantityLabel Label

	mu          sync.Mutex
	seq         uint64
	cancel      context.CancelFunc
	state       FieldState
	unsubscribe func()
	inflight    sync.WaitGroup
}

// Bind resolves the binding's elements in doc. It reports false when the
// type field or any other declared element is absent, meaning the form is
// not on this page, or when product loads are requested without a lookup.
func Bind(doc Document, binding Binding, lookup Lookup, opts ...BindOption) (*Synchronizer, bool) {
	if doc == nil {
		return nil, false
	}
	binding = binding.Normalize()
	if binding.TypeField == "" {
		return nil, false
	}

	s := &Synchronizer{
		binding: binding,
		lookup:  lookup,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	typeField, ok := doc.Select(binding.TypeField)
	if !ok || typeField == nil {
		return nil, false
	}
	s.typeField = typeField

	if binding.ChoiceField != "" {
		choice, ok := doc.Select(binding.ChoiceField)
		if !ok || choice == nil || lookup == nil {
			return nil, false
		}
		s.choiceField = choice
	}
	if binding.QuantityField != "" {
		label, ok := doc.LabelFor(binding.QuantityField)
		if !ok || label == nil {
			return nil, false
		}
		s.quantityLabel = label
	}

	s.logger = s.logger.With().Str("binding", binding.Name).Logger()
	return s, true
}

// Binding returns the normalised binding the synchronizer was created with.
func (s *Synchronizer) Binding() Binding {
	return s.binding
}

// Init performs the initial pass and subscribes to type changes. The label is
// always refreshed; products are loaded only when the type already carries a
// value, keeping the pre-rendered product selection when it is still offered.
// The returned channel closes once that initial load settles. ctx bounds every
// load the synchronizer issues until Close.
func (s *Synchronizer) Init(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	if s.unsubscribe == nil {
		s.unsubscribe = s.typeField.OnChange(func(value string) {
			s.HandleTypeChange(ctx, value)
		})
	}
	s.mu.Unlock()

	s.UpdateQuantityLabel()

	initialType := s.typeField.Value()
	if initialType == "" || s.choiceField == nil {
		return closedChan()
	}
	return s.LoadProducts(ctx, initialType, s.choiceField.Value())
}

// HandleTypeChange reacts to user input on the type field. A type change
// discards the previous product selection.
func (s *Synchronizer) HandleTypeChange(ctx context.Context, value string) <-chan struct{} {
	s.UpdateQuantityLabel()
	return s.LoadProducts(ctx, value, "")
}

// UpdateQuantityLabel sets the quantity label from the current type value and
// returns the text applied. Without a bound label it only resolves the text.
func (s *Synchronizer) UpdateQuantityLabel() string {
	text := s.binding.Labels.For(s.typeField.Value())
	if s.quantityLabel != nil {
		s.quantityLabel.SetText(text)
	}
	return text
}

// LoadProducts refreshes the product choice field for productType. An empty
// type resets the field to the placeholder without a lookup. Otherwise the
// field shows the loading placeholder while the lookup runs in the
// background; selectedID is re-selected when the response offers it. The
// returned channel closes when the load settles, including when it is
// superseded by a newer load.
func (s *Synchronizer) LoadProducts(ctx context.Context, productType, selectedID string) <-chan struct{} {
	if s.choiceField == nil {
		return closedChan()
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if productType == "" {
		s.choiceField.ReplaceOptions([]Option{s.binding.PlaceholderOption()})
		s.state = StateEmpty
		s.mu.Unlock()
		s.notify(Event{
			Binding: s.binding.Name,
			Seq:     seq,
			Outcome: OutcomeReset,
			State:   StateEmpty,
		})
		return closedChan()
	}

	s.choiceField.ReplaceOptions([]Option{{Value: "", Text: s.binding.Placeholders.Loading}})
	s.state = StateLoading
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inflight.Add(1)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer s.inflight.Done()
		defer close(done)
		defer cancel()

		products, err := s.lookup.Products(reqCtx, productType)
		s.resolve(seq, productType, selectedID, products, err)
	}()
	return done
}

func (s *Synchronizer) resolve(seq uint64, productType, selectedID string, products []catalog.Option, err error) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug().
			Str("product_type", productType).
			Uint64("seq", seq).
			Msg("discarding superseded product lookup")
		s.notify(Event{
			Binding:     s.binding.Name,
			ProductType: productType,
			Seq:         seq,
			Outcome:     OutcomeStale,
			State:       s.State(),
			Err:         err,
		})
		return
	}
	s.cancel = nil

	if err != nil {
		s.choiceField.ReplaceOptions([]Option{{Value: "", Text: s.binding.Placeholders.Error}})
		s.state = StateError
		s.mu.Unlock()

		s.logger.Error().
			Err(err).
			Str("product_type", productType).
			Uint64("seq", seq).
			Msg("Error fetching products")
		s.notify(Event{
			Binding:     s.binding.Name,
			ProductType: productType,
			Seq:         seq,
			Outcome:     OutcomeError,
			State:       StateError,
			Err:         err,
		})
		return
	}

	options := s.binding.ChoiceOptions(products)
	s.choiceField.ReplaceOptions(options)
	if selectedID != "" && hasValue(options[1:], selectedID) {
		s.choiceField.SetValue(selectedID)
	}
	s.state = StatePopulated
	s.mu.Unlock()

	s.notify(Event{
		Binding:     s.binding.Name,
		ProductType: productType,
		Seq:         seq,
		Outcome:     OutcomePopulated,
		State:       StatePopulated,
		Options:     len(products),
	})
}

// State returns the current state of the product choice field.
func (s *Synchronizer) State() FieldState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until every in-flight load has settled.
func (s *Synchronizer) Wait() {
	s.inflight.Wait()
}

// Close unsubscribes from type changes, cancels the in-flight load and waits
// for background work to finish.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	// bump the sequence so a cancelled lookup cannot paint the error state
	s.seq++
	s.mu.Unlock()

	s.inflight.Wait()
	return nil
}

func (s *Synchronizer) notify(event Event) {
	for _, observer := range s.observers {
		observer(event)
	}
}

func hasValue(options []Option, value string) bool {
	for _, option := range options {
		if option.Value == value {
			return true
		}
	}
	return false
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
