// Package html renders the bakery admin pages: the dependent product forms,
// the inventory and transaction lists and the finance ledger.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/dependent"
	"github.com/goliatone/go-bakery/pkg/finance"
	"github.com/goliatone/go-bakery/pkg/inventory"
	"github.com/goliatone/go-bakery/pkg/render"
	rendertemplate "github.com/goliatone/go-bakery/pkg/render/template"
	"github.com/goliatone/go-bakery/pkg/render/template/gotemplate"
)

const timeLayout = "2006-01-02 15:04"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	policy           *bluemonday.Policy
	siteTitle        string
	basePath         string
	stylesheet       string
	assetsPath       string
	assetsSet        bool
	theme            *theme.RendererConfig
	location         *time.Location
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithPolicy overrides the sanitiser applied to operator-provided markup.
// Defaults to bluemonday's UGC policy.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithSiteTitle sets the title suffix of every page.
func WithSiteTitle(title string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			cfg.siteTitle = trimmed
		}
	}
}

// WithBasePath prefixes navigation links.
func WithBasePath(path string) Option {
	return func(cfg *config) {
		cfg.basePath = strings.TrimRight(strings.TrimSpace(path), "/")
	}
}

// WithStylesheet links a stylesheet from every page.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = strings.TrimSpace(href)
	}
}

// WithTheme applies a resolved go-theme configuration: its tokens become CSS
// variables on every page and its stylesheet asset is linked unless
// WithStylesheet names one.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithAssetsPath sets the URL prefix AssetsFS is mounted under. Form pages
// load the product refresh script from it; an empty path leaves the script
// out. Defaults to "/assets" below the base path.
func WithAssetsPath(path string) Option {
	return func(cfg *config) {
		cfg.assetsPath = strings.TrimRight(strings.TrimSpace(path), "/")
		cfg.assetsSet = true
	}
}

// WithLocation sets the zone timestamps are displayed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(cfg *config) {
		if loc != nil {
			cfg.location = loc
		}
	}
}

// Renderer renders admin pages through a template engine.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	policy    *bluemonday.Policy
	location  *time.Location
	globals   map[string]any
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		siteTitle:  "Bakery Admin",
		location:   time.UTC,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.UGCPolicy()
	}

	if !cfg.assetsSet {
		cfg.assetsPath = cfg.basePath + "/assets"
	}
	themeName, themeVariant, themeCSS := "", "", ""
	if cfg.theme != nil {
		themeName, themeVariant = cfg.theme.Theme, cfg.theme.Variant
		themeCSS = cssVarsStyle(cfg.theme.CSSVars)
		if cfg.stylesheet == "" && cfg.theme.AssetURL != nil {
			cfg.stylesheet = cfg.theme.AssetURL(StylesheetAsset)
		}
	}
	scriptURL := ""
	if cfg.assetsPath != "" {
		scriptURL = cfg.assetsPath + "/" + DependentScript
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates: renderer,
		policy:    cfg.policy,
		location:  cfg.location,
		globals: map[string]any{
			"site_title":    cfg.siteTitle,
			"base_path":     cfg.basePath,
			"stylesheet":    cfg.stylesheet,
			"script_url":    scriptURL,
			"theme_name":    themeName,
			"theme_variant": themeVariant,
			"theme_css":     themeCSS,
		},
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders a dependent product form page.
func (r *Renderer) Render(_ context.Context, form render.Form, options render.RenderOptions) ([]byte, error) {
	view := r.formView(form, options)
	return r.page("form", view.Title, map[string]any{"form": view})
}

// RenderInventory renders the stock level list.
func (r *Renderer) RenderInventory(_ context.Context, rows []inventory.Row) ([]byte, error) {
	views := make([]inventoryRowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, inventoryRowView{
			Branch:      row.Branch.String(),
			ProductType: string(row.ProductType),
			TypeLabel:   row.ProductType.Label(),
			Product:     row.ProductName,
			Quantity:    row.Quantity,
			Unit:        row.Unit,
			Updated:     r.timestamp(row.LastUpdated),
		})
	}
	return r.page("inventory", "Inventory", map[string]any{"rows": views})
}

// RenderTransactions renders the stock movement list.
func (r *Renderer) RenderTransactions(_ context.Context, rows []inventory.TransactionRow) ([]byte, error) {
	views := make([]transactionRowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, transactionRowView{
			ID:        row.ID,
			Created:   r.timestamp(row.CreatedAt),
			Branch:    row.Branch.String(),
			TypeLabel: row.ProductType.Label(),
			Product:   row.ProductName,
			Type:      string(row.Type),
			TypeName:  row.Type.Label(),
			Quantity:  row.Quantity,
		})
	}
	return r.page("transactions", "Stock Transactions", map[string]any{"rows": views})
}

// FinanceQuery echoes the ledger filter back into the filter form.
type FinanceQuery struct {
	BranchID uint64
	Since    string
	Until    string
}

// RenderFinance renders ledger entries with their revenue, expense and net
// totals. branches resolves entry branch ids and fills the branch filter.
func (r *Renderer) RenderFinance(_ context.Context, entries []finance.Entry, branches []inventory.Branch, summary finance.Summary, query FinanceQuery) ([]byte, error) {
	names := make(map[uint64]string, len(branches))
	options := make([]financeBranchView, 0, len(branches))
	for _, b := range branches {
		names[b.ID] = b.String()
		options = append(options, financeBranchView{
			ID:       strconv.FormatUint(b.ID, 10),
			Name:     b.String(),
			Selected: b.ID == query.BranchID,
		})
	}

	views := make([]financeRowView, 0, len(entries))
	for _, e := range entries {
		views = append(views, financeRowView{
			ID:        e.ID,
			Created:   r.timestamp(e.CreatedAt),
			Branch:    names[e.BranchID],
			TypeLabel: e.ProductType.Label(),
			Product:   e.ProductName,
			Quantity:  e.Quantity,
			Unit:      catalog.Unit(e.ProductType),
			UnitPrice: finance.Money(e.UnitPrice),
			Total:     finance.Money(e.Total),
			Type:      string(e.Type),
			TypeName:  e.Type.Label(),
			Source:    e.TransactionID,
		})
	}
	return r.page("finance", "Finance", map[string]any{
		"rows":     views,
		"branches": options,
		"since":    query.Since,
		"until":    query.Until,
		"summary": map[string]any{
			"revenue": finance.Money(summary.Revenue),
			"expense": finance.Money(summary.Expense),
			"net":     finance.Money(summary.Net),
		},
	})
}

func (r *Renderer) page(name, title string, data map[string]any) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	ctx := make(map[string]any, len(data)+len(r.globals)+1)
	for key, value := range r.globals {
		ctx[key] = value
	}
	for key, value := range data {
		ctx[key] = value
	}
	ctx["page_title"] = title

	result, err := r.templates.RenderTemplate(name, ctx)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s: %w", name, err)
	}
	return []byte(result), nil
}

func (r *Renderer) timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(r.location).Format(timeLayout)
}

type optionView struct {
	Value    string
	Text     string
	Selected bool
}

type fieldView struct {
	ID      string
	Name    string
	Label   string
	Value   string
	Errors  []string
	Options []optionView
}

type formView struct {
	Name          string
	Title         string
	Action        string
	SubmitLabel   string
	LookupURL     string
	ChoicesURL    string
	TypeField     string
	ChoiceField   string
	QuantityField string
	LoadingText   string
	ErrorText     string
	Help          string
	Errors        []string
	Hidden        []render.HiddenField
	Selects       []fieldView
	Quantity      fieldView
	QuantityStep  string
	QuantityMin   string
	After         *fieldView
}

type inventoryRowView struct {
	Branch      string
	ProductType string
	TypeLabel   string
	Product     string
	Quantity    float64
	Unit        string
	Updated     string
}

type transactionRowView struct {
	ID        string
	Created   string
	Branch    string
	TypeLabel string
	Product   string
	Type      string
	TypeName  string
	Quantity  int
}

type financeRowView struct {
	ID        string
	Created   string
	Branch    string
	TypeLabel string
	Product   string
	Quantity  int
	Unit      string
	UnitPrice string
	Total     string
	Type      string
	TypeName  string
	Source    string
}

type financeBranchView struct {
	ID       string
	Name     string
	Selected bool
}

func (r *Renderer) formView(form render.Form, options render.RenderOptions) formView {
	binding := form.Binding.Normalize()
	transaction := len(form.TransactionTypes) > 0

	fields := []string{inventory.FieldBranch, inventory.FieldProductType, inventory.FieldProductChoice, inventory.FieldQuantity}
	if transaction {
		fields = append(fields, inventory.FieldTransactionType)
	}
	mapped := render.MapErrors(fields, options.Errors)

	typeValue := options.Value(inventory.FieldProductType)
	quantityID := binding.QuantityField
	if quantityID == "" {
		quantityID = dependent.DefaultQuantityField
	}

	view := formView{
		Name:          binding.Name,
		Title:         orDefault(form.Title, "Product form"),
		Action:        form.Action,
		SubmitLabel:   orDefault(form.SubmitLabel, "Save"),
		LookupURL:     form.LookupURL,
		ChoicesURL:    form.ChoicesURL,
		TypeField:     binding.TypeField,
		ChoiceField:   binding.ChoiceField,
		QuantityField: binding.QuantityField,
		LoadingText:   binding.Placeholders.Loading,
		ErrorText:     binding.Placeholders.Error,
		Help:          r.policy.Sanitize(form.Help),
		Errors:        mapped.Form,
		Hidden:        render.SortedHiddenFields(options.Hidden),
		QuantityStep:  "any",
		QuantityMin:   "0",
	}
	if transaction {
		view.QuantityStep = "1"
		view.QuantityMin = "1"
	}

	view.Selects = []fieldView{
		{
			ID:      "id_" + inventory.FieldBranch,
			Name:    inventory.FieldBranch,
			Label:   "Branch",
			Value:   options.Value(inventory.FieldBranch),
			Errors:  mapped.Fields[inventory.FieldBranch],
			Options: branchOptions(binding, form.Branches, options.Value(inventory.FieldBranch)),
		},
		{
			ID:      binding.TypeField,
			Name:    inventory.FieldProductType,
			Label:   "Product type",
			Value:   typeValue,
			Errors:  mapped.Fields[inventory.FieldProductType],
			Options: typeOptions(binding, typeValue),
		},
		{
			ID:      binding.ChoiceField,
			Name:    inventory.FieldProductChoice,
			Label:   "Product",
			Value:   options.Value(inventory.FieldProductChoice),
			Errors:  mapped.Fields[inventory.FieldProductChoice],
			Options: choiceOptions(binding, form.ProductOptions, options.Value(inventory.FieldProductChoice)),
		},
	}
	view.Quantity = fieldView{
		ID:     quantityID,
		Name:   inventory.FieldQuantity,
		Label:  binding.Labels.For(typeValue),
		Value:  options.Value(inventory.FieldQuantity),
		Errors: mapped.Fields[inventory.FieldQuantity],
	}

	if transaction {
		value := options.Value(inventory.FieldTransactionType)
		view.After = &fieldView{
			ID:      "id_" + inventory.FieldTransactionType,
			Name:    inventory.FieldTransactionType,
			Label:   "Transaction type",
			Value:   value,
			Errors:  mapped.Fields[inventory.FieldTransactionType],
			Options: transactionOptions(binding, form.TransactionTypes, value),
		}
	}
	return view
}

func branchOptions(binding dependent.Binding, branches []inventory.Branch, selected string) []optionView {
	options := []optionView{{Value: "", Text: binding.Placeholders.Empty, Selected: selected == ""}}
	for _, branch := range branches {
		value := strconv.FormatUint(branch.ID, 10)
		options = append(options, optionView{Value: value, Text: branch.String(), Selected: value == selected})
	}
	return options
}

func typeOptions(binding dependent.Binding, selected string) []optionView {
	options := []optionView{{Value: "", Text: binding.Placeholders.Empty, Selected: selected == ""}}
	for _, choice := range catalog.ProductTypes() {
		value := string(choice.Type)
		options = append(options, optionView{Value: value, Text: choice.Label, Selected: value == selected})
	}
	return options
}

// choiceOptions marks selected in the pre-populated product list. Without a
// list only the placeholder is offered.
func choiceOptions(binding dependent.Binding, products []dependent.Option, selected string) []optionView {
	if len(products) == 0 {
		products = []dependent.Option{binding.PlaceholderOption()}
	}
	options := make([]optionView, 0, len(products))
	matched := false
	for _, product := range products {
		isSelected := !matched && selected != "" && product.Value == selected
		if isSelected {
			matched = true
		}
		options = append(options, optionView{Value: product.Value, Text: product.Text, Selected: isSelected})
	}
	return options
}

func transactionOptions(binding dependent.Binding, types []inventory.TransactionType, selected string) []optionView {
	options := []optionView{{Value: "", Text: binding.Placeholders.Empty, Selected: selected == ""}}
	for _, t := range types {
		options = append(options, optionView{Value: string(t), Text: t.Label(), Selected: string(t) == selected})
	}
	return options
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
