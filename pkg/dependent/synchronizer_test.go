package dependent_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/dependent"
	"github.com/goliatone/go-bakery/pkg/dependent/page"
)

type recordingLookup struct {
	mu       sync.Mutex
	calls    []string
	products map[string][]catalog.Option
	err      error
}

func (l *recordingLookup) Products(_ context.Context, productType string) ([]catalog.Option, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, productType)
	if l.err != nil {
		return nil, l.err
	}
	return l.products[productType], nil
}

func (l *recordingLookup) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func newInventoryPage(typeValue, choiceValue string) *page.Document {
	doc := page.New()
	doc.AddSelect(dependent.DefaultTypeField, []dependent.Option{
		{Value: "", Text: "---------"},
		{Value: "bread", Text: "Bread"},
		{Value: "injera", Text: "Injera"},
		{Value: "flour", Text: "Flour"},
		{Value: "yeast", Text: "Yeast"},
		{Value: "enhancer", Text: "Enhancer"},
		{Value: "cake", Text: "Cake"},
	}, typeValue)
	choices := []dependent.Option{{Value: "", Text: "---------"}}
	if choiceValue != "" {
		choices = append(choices, dependent.Option{Value: choiceValue, Text: "Pre-rendered"})
	}
	doc.AddSelect(dependent.DefaultChoiceField, choices, choiceValue)
	doc.AddLabel(dependent.DefaultQuantityField, "Quantity")
	return doc
}

func bind(t *testing.T, doc *page.Document, lookup dependent.Lookup, opts ...dependent.BindOption) *dependent.Synchronizer {
	t.Helper()
	opts = append([]dependent.BindOption{dependent.WithLogger(zerolog.Nop())}, opts...)
	syncer, ok := dependent.Bind(doc, dependent.InventoryBinding(), lookup, opts...)
	if !ok {
		t.Fatalf("expected binding to resolve")
	}
	t.Cleanup(func() { _ = syncer.Close() })
	return syncer
}

func choice(t *testing.T, doc *page.Document) *page.Select {
	t.Helper()
	sel, ok := doc.SelectElement(dependent.DefaultChoiceField)
	if !ok {
		t.Fatalf("choice select missing")
	}
	return sel
}

func label(t *testing.T, doc *page.Document) *page.Label {
	t.Helper()
	l, ok := doc.LabelElement(dependent.DefaultQuantityField)
	if !ok {
		t.Fatalf("quantity label missing")
	}
	return l
}

func typeSelect(t *testing.T, doc *page.Document) *page.Select {
	t.Helper()
	sel, ok := doc.SelectElement(dependent.DefaultTypeField)
	if !ok {
		t.Fatalf("type select missing")
	}
	return sel
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("load did not settle")
	}
}

func TestUpdateQuantityLabel(t *testing.T) {
	cases := map[string]string{
		"bread":    "Quantity (Unit)",
		"injera":   "Quantity (Unit)",
		"flour":    "Quantity (KG)",
		"yeast":    "Quantity (KG)",
		"enhancer": "Quantity (KG)",
		"cake":     "Quantity",
		"":         "Quantity",
	}

	for value, want := range cases {
		doc := newInventoryPage(value, "")
		syncer := bind(t, doc, &recordingLookup{})

		if got := syncer.UpdateQuantityLabel(); got != want {
			t.Fatalf("UpdateQuantityLabel(%q) returned %q, want %q", value, got, want)
		}
		if got := label(t, doc).Text(); got != want {
			t.Fatalf("label for %q = %q, want %q", value, got, want)
		}
	}
}

func TestLoadProducts_EmptyTypeResetsWithoutLookup(t *testing.T) {
	doc := newInventoryPage("", "")
	choice(t, doc).ReplaceOptions([]dependent.Option{{Value: "", Text: "stale"}, {Value: "3", Text: "Old"}})
	lookup := &recordingLookup{}
	syncer := bind(t, doc, lookup)

	waitFor(t, syncer.LoadProducts(context.Background(), "", ""))

	want := []dependent.Option{{Value: "", Text: "---------"}}
	if diff := cmp.Diff(want, choice(t, doc).Options()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if calls := lookup.Calls(); len(calls) != 0 {
		t.Fatalf("expected no lookup, got %v", calls)
	}
	if syncer.State() != dependent.StateEmpty {
		t.Fatalf("expected empty state, got %s", syncer.State())
	}
}

func TestLoadProducts_PopulatesWithPlaceholderSelected(t *testing.T) {
	doc := newInventoryPage("bread", "")
	lookup := &recordingLookup{products: map[string][]catalog.Option{
		"bread": {{ID: "1", Name: "White Loaf"}},
	}}
	syncer := bind(t, doc, lookup)

	waitFor(t, syncer.LoadProducts(context.Background(), "bread", ""))

	want := []dependent.Option{
		{Value: "", Text: "---------"},
		{Value: "1", Text: "White Loaf"},
	}
	sel := choice(t, doc)
	if diff := cmp.Diff(want, sel.Options()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if sel.SelectedIndex() != 0 || sel.Value() != "" {
		t.Fatalf("expected placeholder selected, got index %d value %q", sel.SelectedIndex(), sel.Value())
	}
	if syncer.State() != dependent.StatePopulated {
		t.Fatalf("expected populated state, got %s", syncer.State())
	}
}

func TestLoadProducts_RestoresMatchingSelection(t *testing.T) {
	doc := newInventoryPage("bread", "")
	lookup := &recordingLookup{products: map[string][]catalog.Option{
		"bread": {{ID: "1", Name: "White Loaf"}},
	}}
	syncer := bind(t, doc, lookup)

	waitFor(t, syncer.LoadProducts(context.Background(), "bread", "1"))

	if got := choice(t, doc).Value(); got != "1" {
		t.Fatalf("expected product 1 selected, got %q", got)
	}
}

func TestLoadProducts_UnknownSelectionKeepsPlaceholder(t *testing.T) {
	doc := newInventoryPage("flour", "")
	lookup := &recordingLookup{products: map[string][]catalog.Option{
		"flour": {{ID: "1", Name: "Wheat Flour"}, {ID: "2", Name: "Teff Flour"}},
	}}
	syncer := bind(t, doc, lookup)

	waitFor(t, syncer.LoadProducts(context.Background(), "flour", "99"))

	sel := choice(t, doc)
	if sel.SelectedIndex() != 0 || sel.Value() != "" {
		t.Fatalf("expected placeholder selected, got index %d", sel.SelectedIndex())
	}
	if len(sel.Options()) != 3 {
		t.Fatalf("expected placeholder plus two products, got %#v", sel.Options())
	}
}

func TestLoadProducts_FailureShowsErrorAndLogs(t *testing.T) {
	var logs bytes.Buffer
	doc := newInventoryPage("bread", "")
	lookup := &recordingLookup{err: errors.New("connection refused")}
	syncer := bind(t, doc, lookup, dependent.WithLogger(zerolog.New(&logs)))

	waitFor(t, syncer.LoadProducts(context.Background(), "bread", ""))

	want := []dependent.Option{{Value: "", Text: "Error loading"}}
	if diff := cmp.Diff(want, choice(t, doc).Options()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if syncer.State() != dependent.StateError {
		t.Fatalf("expected error state, got %s", syncer.State())
	}
	out := logs.String()
	if !strings.Contains(out, "Error fetching products") || !strings.Contains(out, "connection refused") {
		t.Fatalf("expected failure to be logged, got %q", out)
	}
	if !strings.Contains(out, `"product_type":"bread"`) || !strings.Contains(out, `"binding":"inventory"`) {
		t.Fatalf("expected structured context in log, got %q", out)
	}
}

func TestLoadProducts_ShowsLoadingWhileInFlight(t *testing.T) {
	doc := newInventoryPage("bread", "")
	release := make(chan struct{})
	lookup := dependent.LookupFunc(func(ctx context.Context, _ string) ([]catalog.Option, error) {
		<-release
		return []catalog.Option{{ID: "1", Name: "White Loaf"}}, nil
	})
	syncer := bind(t, doc, lookup)

	done := syncer.LoadProducts(context.Background(), "bread", "")

	want := []dependent.Option{{Value: "", Text: "Loading..."}}
	if diff := cmp.Diff(want, choice(t, doc).Options()); diff != "" {
		t.Fatalf("options mismatch while loading (-want +got):\n%s", diff)
	}
	if syncer.State() != dependent.StateLoading {
		t.Fatalf("expected loading state, got %s", syncer.State())
	}

	close(release)
	waitFor(t, done)
	if syncer.State() != dependent.StatePopulated {
		t.Fatalf("expected populated state, got %s", syncer.State())
	}
}

func TestLoadProducts_StaleResponseIsDiscarded(t *testing.T) {
	doc := newInventoryPage("bread", "")
	breadRelease := make(chan struct{})
	lookup := dependent.LookupFunc(func(ctx context.Context, productType string) ([]catalog.Option, error) {
		if productType == "bread" {
			<-breadRelease
			return []catalog.Option{{ID: "1", Name: "White Loaf"}}, nil
		}
		return []catalog.Option{{ID: "5", Name: "Wheat Flour"}}, nil
	})

	var (
		mu     sync.Mutex
		events []dependent.Event
	)
	synchronizer := bind(t, doc, lookup, dependent.WithObserver(func(e dependent.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}))

	first := synchronizer.LoadProducts(context.Background(), "bread", "")
	second := synchronizer.LoadProducts(context.Background(), "flour", "")
	waitFor(t, second)
	close(breadRelease)
	waitFor(t, first)

	want := []dependent.Option{
		{Value: "", Text: "---------"},
		{Value: "5", Text: "Wheat Flour"},
	}
	if diff := cmp.Diff(want, choice(t, doc).Options()); diff != "" {
		t.Fatalf("stale response leaked into options (-want +got):\n%s", diff)
	}

	mu.Lock()
	defer mu.Unlock()
	outcomes := make(map[string]dependent.Outcome)
	for _, e := range events {
		outcomes[e.ProductType] = e.Outcome
	}
	if outcomes["bread"] != dependent.OutcomeStale || outcomes["flour"] != dependent.OutcomePopulated {
		t.Fatalf("unexpected outcomes: %#v", outcomes)
	}
}

func TestLoadProducts_NewerLoadCancelsInFlightLookup(t *testing.T) {
	doc := newInventoryPage("bread", "")
	cancelled := make(chan struct{})
	lookup := dependent.LookupFunc(func(ctx context.Context, productType string) ([]catalog.Option, error) {
		if productType == "bread" {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return nil, nil
	})
	syncer := bind(t, doc, lookup)

	first := syncer.LoadProducts(context.Background(), "bread", "")
	waitFor(t, syncer.LoadProducts(context.Background(), "", ""))
	waitFor(t, first)

	select {
	case <-cancelled:
	default:
		t.Fatalf("expected superseded lookup to be cancelled")
	}
	want := []dependent.Option{{Value: "", Text: "---------"}}
	if diff := cmp.Diff(want, choice(t, doc).Options()); diff != "" {
		t.Fatalf("cancelled lookup changed options (-want +got):\n%s", diff)
	}
	if syncer.State() != dependent.StateEmpty {
		t.Fatalf("expected empty state, got %s", syncer.State())
	}
}

func TestInit_EditPageKeepsPreRenderedSelection(t *testing.T) {
	doc := newInventoryPage("bread", "2")
	lookup := &recordingLookup{products: map[string][]catalog.Option{
		"bread": {{ID: "1", Name: "White Loaf"}, {ID: "2", Name: "Whole Wheat Loaf"}},
	}}
	syncer := bind(t, doc, lookup)

	waitFor(t, syncer.Init(context.Background()))

	if got := label(t, doc).Text(); got != "Quantity (Unit)" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := choice(t, doc).Value(); got != "2" {
		t.Fatalf("expected pre-rendered selection to survive, got %q", got)
	}
	if diff := cmp.Diff([]string{"bread"}, lookup.Calls()); diff != "" {
		t.Fatalf("lookup calls mismatch (-want +got):\n%s", diff)
	}
}

func TestInit_EmptyTypeOnlyUpdatesLabel(t *testing.T) {
	doc := newInventoryPage("", "")
	label(t, doc).SetText("Stale")
	lookup := &recordingLookup{}
	syncer := bind(t, doc, lookup)

	waitFor(t, syncer.Init(context.Background()))

	if got := label(t, doc).Text(); got != "Quantity" {
		t.Fatalf("expected default label, got %q", got)
	}
	if calls := lookup.Calls(); len(calls) != 0 {
		t.Fatalf("expected no lookup, got %v", calls)
	}
}

func TestTypeChangeDiscardsPreviousSelection(t *testing.T) {
	doc := newInventoryPage("bread", "1")
	lookup := &recordingLookup{products: map[string][]catalog.Option{
		"bread":  {{ID: "1", Name: "White Loaf"}},
		"injera": {{ID: "1", Name: "Teff Injera"}},
	}}
	syncer := bind(t, doc, lookup)
	waitFor(t, syncer.Init(context.Background()))
	if choice(t, doc).Value() != "1" {
		t.Fatalf("expected initial selection")
	}

	typeSelect(t, doc).Choose("injera")
	syncer.Wait()

	if got := label(t, doc).Text(); got != "Quantity (Unit)" {
		t.Fatalf("unexpected label %q", got)
	}
	sel := choice(t, doc)
	if sel.Value() != "" {
		t.Fatalf("type change should discard selection, got %q", sel.Value())
	}
	if diff := cmp.Diff([]string{"bread", "injera"}, lookup.Calls()); diff != "" {
		t.Fatalf("lookup calls mismatch (-want +got):\n%s", diff)
	}

	typeSelect(t, doc).Choose("flour")
	syncer.Wait()
	if got := label(t, doc).Text(); got != "Quantity (KG)" {
		t.Fatalf("unexpected label after flour: %q", got)
	}
}

func TestErrorStateIsReenterable(t *testing.T) {
	doc := newInventoryPage("", "")
	lookup := &recordingLookup{err: errors.New("boom")}
	syncer := bind(t, doc, lookup)
	waitFor(t, syncer.Init(context.Background()))

	typeSelect(t, doc).Choose("bread")
	syncer.Wait()
	if syncer.State() != dependent.StateError {
		t.Fatalf("expected error state, got %s", syncer.State())
	}

	lookup.mu.Lock()
	lookup.err = nil
	lookup.products = map[string][]catalog.Option{"bread": {{ID: "1", Name: "White Loaf"}}}
	lookup.mu.Unlock()

	typeSelect(t, doc).Choose("bread")
	syncer.Wait()
	if syncer.State() != dependent.StatePopulated {
		t.Fatalf("expected retry to populate, got %s", syncer.State())
	}
}

func TestBind_MissingElementsIsNoop(t *testing.T) {
	lookup := &recordingLookup{}

	doc := page.New()
	doc.AddSelect(dependent.DefaultTypeField, nil, "")
	if _, ok := dependent.Bind(doc, dependent.InventoryBinding(), lookup); ok {
		t.Fatalf("expected binding without choice field to be skipped")
	}

	doc = page.New()
	doc.AddSelect(dependent.DefaultChoiceField, nil, "")
	doc.AddLabel(dependent.DefaultQuantityField, "Quantity")
	if _, ok := dependent.Bind(doc, dependent.InventoryBinding(), lookup); ok {
		t.Fatalf("expected binding without type field to be skipped")
	}

	if _, ok := dependent.Bind(nil, dependent.InventoryBinding(), lookup); ok {
		t.Fatalf("expected nil document to be skipped")
	}

	doc = newInventoryPage("", "")
	if _, ok := dependent.Bind(doc, dependent.InventoryBinding(), nil); ok {
		t.Fatalf("expected binding without lookup to be skipped")
	}
}

func TestBind_TransactionFormWithoutLabel(t *testing.T) {
	doc := page.New()
	doc.AddSelect(dependent.DefaultTypeField, []dependent.Option{{Value: "yeast", Text: "Yeast"}}, "yeast")
	doc.AddSelect(dependent.DefaultChoiceField, []dependent.Option{{Value: "", Text: "---------"}}, "")
	lookup := &recordingLookup{products: map[string][]catalog.Option{
		"yeast": {{ID: "4", Name: "Instant Dry Yeast"}},
	}}

	syncer, ok := dependent.Bind(doc, dependent.TransactionBinding(), lookup, dependent.WithLogger(zerolog.Nop()))
	if !ok {
		t.Fatalf("expected transaction binding to resolve without a label")
	}
	defer syncer.Close()

	waitFor(t, syncer.Init(context.Background()))
	if got := choice(t, doc).Options(); len(got) != 2 || got[1].Value != "4" {
		t.Fatalf("unexpected options %#v", got)
	}
	if got := syncer.UpdateQuantityLabel(); got != "Quantity" {
		t.Fatalf("unexpected transaction label %q", got)
	}
}

func TestClose_StopsReactingToChanges(t *testing.T) {
	doc := newInventoryPage("", "")
	lookup := &recordingLookup{}
	syncer, ok := dependent.Bind(doc, dependent.InventoryBinding(), lookup, dependent.WithLogger(zerolog.Nop()))
	if !ok {
		t.Fatalf("expected binding")
	}
	waitFor(t, syncer.Init(context.Background()))
	if err := syncer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	typeSelect(t, doc).Choose("bread")
	syncer.Wait()
	if calls := lookup.Calls(); len(calls) != 0 {
		t.Fatalf("expected no lookups after close, got %v", calls)
	}
}
