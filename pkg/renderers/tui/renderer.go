package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/dependent"
	"github.com/goliatone/go-bakery/pkg/dependent/page"
	"github.com/goliatone/go-bakery/pkg/inventory"
	"github.com/goliatone/go-bakery/pkg/render"
)

// Renderer collects a dependent product form from the terminal. The product
// choices come from the same synchronizer the web forms use, running against
// an in-memory page document.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	lookup            dependent.Lookup
	logger            zerolog.Logger
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       NewSurveyDriver(nil),
		outputFormat: OutputFormatJSON,
		logger:       log.Logger,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.lookup == nil {
		return nil, ErrNoLookup
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Fill prompts a bare form for binding.
func (r *Renderer) Fill(ctx context.Context, binding dependent.Binding) ([]byte, error) {
	return r.Render(ctx, render.Form{Binding: binding}, render.RenderOptions{})
}

// Render prompts the fields of form in order: branch (when branches are
// given), product type, product choice, quantity and transaction type (when
// transaction types are given). Values in opts seed the defaults; a
// prefilled product is kept when its type is confirmed unchanged.
func (r *Renderer) Render(ctx context.Context, form render.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	binding := form.Binding.Normalize()
	state := NewState(opts.Values, opts.Errors)
	transaction := len(form.TransactionTypes) > 0

	doc, labelID := newDocument(binding, form, state)
	syncer, ok := dependent.Bind(doc, binding, r.lookup, dependent.WithLogger(r.logger))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnbound, binding.Name)
	}
	defer syncer.Close()

	if len(form.Branches) > 0 {
		if err := r.promptBranch(ctx, form.Branches, state); err != nil {
			return nil, err
		}
	}

	select {
	case <-syncer.Init(ctx):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	typeSel, _ := doc.SelectElement(binding.TypeField)
	choiceSel, _ := doc.SelectElement(binding.ChoiceField)
	for {
		if err := r.promptType(ctx, syncer, typeSel, state); err != nil {
			return nil, err
		}
		done, err := r.promptChoice(ctx, syncer, typeSel, choiceSel, state)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	quantityLabel := syncer.UpdateQuantityLabel()
	if label, ok := doc.LabelElement(labelID); ok && label.Text() != "" {
		quantityLabel = label.Text()
	}
	if err := r.promptQuantity(ctx, quantityLabel, transaction, state); err != nil {
		return nil, err
	}
	if transaction {
		if err := r.promptTransactionType(ctx, form.TransactionTypes, state); err != nil {
			return nil, err
		}
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

// newDocument mirrors the server-rendered form: type choices, the product
// choice carrying the prefilled selection, and the quantity label.
func newDocument(binding dependent.Binding, form render.Form, state *State) (*page.Document, string) {
	doc := page.New()

	types := []dependent.Option{binding.PlaceholderOption()}
	for _, choice := range catalog.ProductTypes() {
		types = append(types, dependent.Option{Value: string(choice.Type), Text: choice.Label})
	}
	doc.AddSelect(binding.TypeField, types, state.Value(inventory.FieldProductType))

	choices := form.ProductOptions
	if len(choices) == 0 {
		choices = []dependent.Option{binding.PlaceholderOption()}
		if current := state.Value(inventory.FieldProductChoice); current != "" {
			choices = append(choices, dependent.Option{Value: current, Text: current})
		}
	}
	doc.AddSelect(binding.ChoiceField, choices, state.Value(inventory.FieldProductChoice))

	labelID := binding.QuantityField
	if labelID != "" {
		doc.AddLabel(labelID, binding.Labels.Default)
	}
	return doc, labelID
}

func (r *Renderer) promptBranch(ctx context.Context, branches []inventory.Branch, state *State) error {
	r.showErrors(ctx, inventory.FieldBranch, state)

	labels := make([]string, 0, len(branches))
	current := 0
	for i, branch := range branches {
		labels = append(labels, branch.String())
		if strconv.FormatUint(branch.ID, 10) == state.Value(inventory.FieldBranch) {
			current = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Branch", Options: labels, DefaultIndex: current})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(branches) {
		return fmt.Errorf("tui: branch selection %d out of range", idx)
	}
	state.Set(inventory.FieldBranch, strconv.FormatUint(branches[idx].ID, 10))
	return nil
}

// promptType asks for the product type. Choosing a different type goes
// through the select's change listeners like user input; re-confirming the
// current type reloads only when the previous load did not populate.
func (r *Renderer) promptType(ctx context.Context, syncer *dependent.Synchronizer, typeSel *page.Select, state *State) error {
	r.showErrors(ctx, inventory.FieldProductType, state)

	choices := catalog.ProductTypes()
	labels := make([]string, 0, len(choices))
	current := 0
	for i, choice := range choices {
		labels = append(labels, choice.Label)
		if string(choice.Type) == typeSel.Value() {
			current = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Product type", Options: labels, DefaultIndex: current})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(choices) {
		return fmt.Errorf("tui: product type selection %d out of range", idx)
	}
	value := string(choices[idx].Type)

	switch {
	case value != typeSel.Value():
		typeSel.Choose(value)
		syncer.Wait()
	case syncer.State() != dependent.StatePopulated:
		select {
		case <-syncer.LoadProducts(ctx, value, ""):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	state.Set(inventory.FieldProductType, value)
	return nil
}

// promptChoice asks for the product among the loaded options. It reports
// false when the type has to be chosen again.
func (r *Renderer) promptChoice(ctx context.Context, syncer *dependent.Synchronizer, typeSel, choiceSel *page.Select, state *State) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	productType := catalog.ProductType(typeSel.Value())

	switch syncer.State() {
	case dependent.StateError:
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("Could not load %s products. Choose the product type again to retry.", productType.Label()))
		return false, nil
	case dependent.StatePopulated:
	default:
		return false, fmt.Errorf("tui: product choices not loaded (state %s)", syncer.State())
	}

	options := choiceSel.Options()
	if len(options) <= 1 {
		_ = r.driver.Info(ctx, r.theme.InfoPrefix+fmt.Sprintf("No %s products are available.", productType.Label()))
		return false, nil
	}

	r.showErrors(ctx, inventory.FieldProductChoice, state)
	products := options[1:]
	labels := make([]string, 0, len(products))
	for _, option := range products {
		labels = append(labels, option.Text)
	}
	current := choiceSel.SelectedIndex() - 1
	if current < 0 {
		current = 0
	}

	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Product", Options: labels, DefaultIndex: current})
	if err != nil {
		return false, err
	}
	if idx < 0 || idx >= len(products) {
		return false, fmt.Errorf("tui: product selection %d out of range", idx)
	}
	choiceSel.SetValue(products[idx].Value)
	state.Set(inventory.FieldProductChoice, products[idx].Value)
	return true, nil
}

func (r *Renderer) promptQuantity(ctx context.Context, label string, movement bool, state *State) error {
	r.showErrors(ctx, inventory.FieldQuantity, state)

	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: state.Value(inventory.FieldQuantity),
		})
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if err := validateQuantity(input, movement); err != nil {
			_ = r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("Invalid %s: %v", strings.ToLower(label), err))
			continue
		}
		state.Set(inventory.FieldQuantity, input)
		return nil
	}
}

func validateQuantity(input string, movement bool) error {
	if input == "" {
		return errors.New("required")
	}
	if movement {
		n, err := strconv.Atoi(input)
		if err != nil {
			return errors.New("enter a whole number")
		}
		if n < 1 {
			return errors.New("must be at least 1")
		}
		return nil
	}
	f, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("enter a number")
	}
	if f < 0 {
		return errors.New("must be at least 0")
	}
	return nil
}

func (r *Renderer) promptTransactionType(ctx context.Context, types []inventory.TransactionType, state *State) error {
	r.showErrors(ctx, inventory.FieldTransactionType, state)

	labels := make([]string, 0, len(types))
	current := 0
	for i, t := range types {
		labels = append(labels, t.Label())
		if string(t) == state.Value(inventory.FieldTransactionType) {
			current = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Transaction type", Options: labels, DefaultIndex: current})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(types) {
		return fmt.Errorf("tui: transaction type selection %d out of range", idx)
	}
	state.Set(inventory.FieldTransactionType, string(types[idx]))
	return nil
}

func (r *Renderer) showErrors(ctx context.Context, field string, state *State) {
	for _, message := range state.ErrorsFor(field) {
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+message)
	}
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flattenForm(values map[string]any) string {
	form := url.Values{}
	for key, value := range values {
		form.Set(key, fmt.Sprint(value))
	}
	return form.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%v\n", key, values[key])
	}
	return b.String()
}
