package html_test

import (
	"bytes"
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/dependent"
	"github.com/goliatone/go-bakery/pkg/dependent/page"
	"github.com/goliatone/go-bakery/pkg/inventory"
	"github.com/goliatone/go-bakery/pkg/render"
	"github.com/goliatone/go-bakery/pkg/renderers/html"
)

func newRenderer(t *testing.T, opts ...html.Option) *html.Renderer {
	t.Helper()
	renderer, err := html.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func parse(t *testing.T, markup []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}
	return doc
}

func inventoryForm() render.Form {
	binding := dependent.InventoryBinding()
	return render.Form{
		Binding:    binding,
		Title:      "Add inventory",
		Action:     "/inventory/new",
		LookupURL:  "/bakery/get-products/",
		ChoicesURL: "/bakery/product-choices/",
		Branches: []inventory.Branch{
			{ID: 1, Name: "Bole", City: "Addis Ababa"},
			{ID: 2, Name: "Hawassa Main", City: "Hawassa"},
		},
		ProductOptions: binding.ChoiceOptions([]catalog.Option{
			{ID: "1", Name: "White Loaf"},
			{ID: "2", Name: "Whole Wheat Loaf"},
		}),
	}
}

func optionValues(sel *goquery.Selection) []string {
	var values []string
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		values = append(values, opt.AttrOr("value", ""))
	})
	return values
}

func TestRender_InventoryFormEditMode(t *testing.T) {
	renderer := newRenderer(t)

	out, err := renderer.Render(context.Background(), inventoryForm(), render.RenderOptions{
		Values: map[string]string{
			inventory.FieldBranch:        "2",
			inventory.FieldProductType:   "bread",
			inventory.FieldProductChoice: "2",
			inventory.FieldQuantity:      "12",
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := parse(t, out)

	form := doc.Find("form[data-bakery-form='inventory']")
	if form.Length() != 1 {
		t.Fatalf("expected bound form, got %d", form.Length())
	}
	if got := form.AttrOr("data-lookup-url", ""); got != "/bakery/get-products/" {
		t.Fatalf("unexpected lookup url %q", got)
	}
	if got := form.AttrOr("data-type-field", ""); got != dependent.DefaultTypeField {
		t.Fatalf("unexpected type field %q", got)
	}

	typeSel := doc.Find("select#id_product_type")
	if typeSel.AttrOr("name", "") != inventory.FieldProductType {
		t.Fatalf("unexpected type select name %q", typeSel.AttrOr("name", ""))
	}
	wantTypes := []string{"", "bread", "injera", "flour", "yeast", "enhancer"}
	if diff := cmp.Diff(wantTypes, optionValues(typeSel)); diff != "" {
		t.Fatalf("type options mismatch (-want +got):\n%s", diff)
	}
	if got := typeSel.Find("option[selected]").AttrOr("value", ""); got != "bread" {
		t.Fatalf("expected bread selected, got %q", got)
	}

	choice := doc.Find("select#id_product_choice")
	if diff := cmp.Diff([]string{"", "1", "2"}, optionValues(choice)); diff != "" {
		t.Fatalf("choice options mismatch (-want +got):\n%s", diff)
	}
	if got := choice.Find("option[selected]").Text(); got != "Whole Wheat Loaf" {
		t.Fatalf("expected current product selected, got %q", got)
	}

	if got := strings.TrimSpace(doc.Find("label[for='id_quantity']").Text()); got != "Quantity (Unit)" {
		t.Fatalf("unexpected quantity label %q", got)
	}
	if got := doc.Find("input#id_quantity").AttrOr("value", ""); got != "12" {
		t.Fatalf("unexpected quantity value %q", got)
	}
	if got := doc.Find("select#id_branch option[selected]").Text(); got != "Hawassa Main (Hawassa)" {
		t.Fatalf("unexpected branch selection %q", got)
	}
	if doc.Find("select#id_transaction_type").Length() != 0 {
		t.Fatalf("inventory form must not render a transaction type")
	}
}

func TestRender_OutputParsesIntoSynchronizerDocument(t *testing.T) {
	renderer := newRenderer(t)
	out, err := renderer.Render(context.Background(), inventoryForm(), render.RenderOptions{
		Values: map[string]string{inventory.FieldProductType: "flour"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	doc, err := page.Parse(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	typeSel, ok := doc.SelectElement(dependent.DefaultTypeField)
	if !ok || typeSel.Value() != "flour" {
		t.Fatalf("expected flour type, got %v", typeSel)
	}
	label, ok := doc.LabelElement(dependent.DefaultQuantityField)
	if !ok || label.Text() != "Quantity (KG)" {
		t.Fatalf("unexpected label %v", label)
	}
}

func TestRender_TransactionFormErrorsAndHidden(t *testing.T) {
	renderer := newRenderer(t)
	form := inventoryForm()
	form.Binding = dependent.TransactionBinding()
	form.ProductOptions = nil
	form.TransactionTypes = inventory.TransactionTypes()
	form.Help = `<p>Record <b>deliveries</b></p><script>alert(1)</script>`

	out, err := renderer.Render(context.Background(), form, render.RenderOptions{
		Values: map[string]string{
			inventory.FieldProductType:     "injera",
			inventory.FieldTransactionType: "out",
		},
		Errors: map[string][]string{
			inventory.FieldProductChoice: {"Please select a product."},
			inventory.FormKey:            {"Not enough stock of Teff Injera in Bole. Available: 2, requested: 5."},
		},
		Hidden: map[string]string{"form": "stocktransaction"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := parse(t, out)

	if got := strings.TrimSpace(doc.Find("label[for='id_quantity']").Text()); got != "Quantity" {
		t.Fatalf("transaction form keeps the fixed label, got %q", got)
	}
	if got := doc.Find("form").AttrOr("data-quantity-field", "missing"); got != "" {
		t.Fatalf("expected no quantity binding, got %q", got)
	}
	if diff := cmp.Diff([]string{""}, optionValues(doc.Find("select#id_product_choice"))); diff != "" {
		t.Fatalf("expected placeholder only (-want +got):\n%s", diff)
	}
	if got := doc.Find("p.bakery-error[data-field='product_choice']").Text(); got != "Please select a product." {
		t.Fatalf("unexpected field error %q", got)
	}
	if got := doc.Find("ul.bakery-form-errors li").Text(); !strings.Contains(got, "Not enough stock") {
		t.Fatalf("missing form error, got %q", got)
	}
	if got := doc.Find("input[type='hidden'][name='form']").AttrOr("value", ""); got != "stocktransaction" {
		t.Fatalf("unexpected hidden value %q", got)
	}
	if got := doc.Find("select#id_transaction_type option[selected]").AttrOr("value", ""); got != "out" {
		t.Fatalf("unexpected transaction type %q", got)
	}
	if got := doc.Find("input#id_quantity").AttrOr("min", ""); got != "1" {
		t.Fatalf("expected movement minimum 1, got %q", got)
	}

	help := doc.Find(".bakery-help")
	if help.Find("b").Text() != "deliveries" {
		t.Fatalf("expected safe markup preserved")
	}
	if help.Find("script").Length() != 0 || strings.Contains(string(out), "alert(1)") {
		t.Fatalf("expected script stripped")
	}
}

func TestRenderInventory(t *testing.T) {
	renderer := newRenderer(t, html.WithBasePath("/admin/"))
	updated := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	out, err := renderer.RenderInventory(context.Background(), []inventory.Row{
		{
			Record: inventory.Record{BranchID: 1, ProductType: catalog.ProductTypeFlour, ProductName: "Teff Flour", Quantity: 2.5, LastUpdated: updated},
			Branch: inventory.Branch{ID: 1, Name: "Bole", City: "Addis Ababa"},
			Unit:   "kg",
		},
		{
			Record: inventory.Record{BranchID: 1, ProductType: catalog.ProductTypeBread, ProductName: "White Loaf", Quantity: 40},
			Branch: inventory.Branch{ID: 1, Name: "Bole", City: "Addis Ababa"},
			Unit:   "unit",
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := parse(t, out)

	var cells [][]string
	doc.Find("table#inventory tbody tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.TrimSpace(td.Text()))
		})
		cells = append(cells, row)
	})
	want := [][]string{
		{"Bole (Addis Ababa)", "Flour", "Teff Flour", "2.5", "kg", "2024-03-01 09:30"},
		{"Bole (Addis Ababa)", "Bread", "White Loaf", "40", "unit", ""},
	}
	if diff := cmp.Diff(want, cells); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Find("nav a").First().AttrOr("href", ""); got != "/admin/" {
		t.Fatalf("unexpected nav link %q", got)
	}
	if got := doc.Find("title").Text(); got != "Inventory | Bakery Admin" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestRenderTransactions_Empty(t *testing.T) {
	renderer := newRenderer(t)
	out, err := renderer.RenderTransactions(context.Background(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := parse(t, out)
	if doc.Find("p.bakery-empty").Length() != 1 {
		t.Fatalf("expected empty state")
	}
}

func TestRenderTransactions_Rows(t *testing.T) {
	renderer := newRenderer(t)
	out, err := renderer.RenderTransactions(context.Background(), []inventory.TransactionRow{{
		Transaction: inventory.Transaction{
			ID:          "tx-1",
			ProductType: catalog.ProductTypeInjera,
			ProductName: "Teff Injera",
			Quantity:    5,
			Type:        inventory.StockOut,
			CreatedAt:   time.Date(2024, 3, 2, 7, 0, 0, 0, time.UTC),
		},
		Branch: inventory.Branch{Name: "Piassa", City: "Addis Ababa"},
	}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := parse(t, out)
	row := doc.Find("tr[data-transaction-id='tx-1']")
	if row.AttrOr("data-transaction-type", "") != "out" {
		t.Fatalf("missing transaction row")
	}
	if got := strings.TrimSpace(row.Find("td").Eq(4).Text()); got != "Stock Out" {
		t.Fatalf("unexpected type label %q", got)
	}
}

func TestRenderer_Metadata(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != "html" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRender_FormLoadsRefreshScript(t *testing.T) {
	out, err := newRenderer(t, html.WithBasePath("/admin")).Render(context.Background(), inventoryForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := parse(t, out).Find("script").AttrOr("src", ""); got != "/admin/assets/"+html.DependentScript {
		t.Fatalf("unexpected script src %q", got)
	}

	out, err = newRenderer(t, html.WithAssetsPath("")).Render(context.Background(), inventoryForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n := parse(t, out).Find("script").Length(); n != 0 {
		t.Fatalf("expected no script without an assets path, got %d", n)
	}
}

func TestAssetsFS_ContainsRefreshScript(t *testing.T) {
	data, err := fs.ReadFile(html.AssetsFS(), html.DependentScript)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	for _, want := range []string{"X-Bakery-Quantity-Label", "data-bakery-form", "product_type"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("script does not mention %q", want)
		}
	}
}
