// Package admin serves the bakery inventory admin: list pages, the inventory
// and stock transaction forms, the finance ledger, the product lookup
// endpoint and the server-side product choice refresh.
package admin

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/goliatone/go-bakery/components/products"
	"github.com/goliatone/go-bakery/internal/metrics"
	"github.com/goliatone/go-bakery/internal/middleware"
	"github.com/goliatone/go-bakery/internal/store"
	"github.com/goliatone/go-bakery/pkg/dependent"
	"github.com/goliatone/go-bakery/pkg/finance"
	"github.com/goliatone/go-bakery/pkg/inventory"
	"github.com/goliatone/go-bakery/pkg/renderers/html"
)

const (
	FormInventory   = "inventory"
	FormTransaction = "stocktransaction"

	ChoicesPath = "/bakery/product-choices/"
)

// Server holds the admin dependencies.
type Server struct {
	store    store.Store
	service  *inventory.Service
	ledger   *finance.Ledger
	renderer *html.Renderer
	forms    map[string]dependent.Binding
	logger   zerolog.Logger

	siteTitle  string
	renderOps  []html.Option
	lookupPath string
	serviceOps []inventory.Option
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Request handlers use the logger the
// logging middleware attaches to the request context.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRenderer replaces the HTML renderer.
func WithRenderer(renderer *html.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithForms overrides form bindings by name. Bindings for forms the admin
// does not serve are ignored.
func WithForms(forms map[string]dependent.Binding) Option {
	return func(s *Server) {
		for name, binding := range forms {
			if _, ok := s.forms[name]; ok {
				binding.Name = name
				s.forms[name] = binding
			}
		}
	}
}

// WithSiteTitle sets the title used by the default renderer.
func WithSiteTitle(title string) Option {
	return func(s *Server) {
		if strings.TrimSpace(title) != "" {
			s.siteTitle = title
		}
	}
}

// WithRendererOptions passes options to the default HTML renderer. Ignored
// when WithRenderer supplies one.
func WithRendererOptions(opts ...html.Option) Option {
	return func(s *Server) {
		s.renderOps = append(s.renderOps, opts...)
	}
}

// WithServiceOptions passes options to the inventory service.
func WithServiceOptions(opts ...inventory.Option) Option {
	return func(s *Server) {
		s.serviceOps = append(s.serviceOps, opts...)
	}
}

// New wires a server over st.
func New(st store.Store, opts ...Option) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("admin: store is required")
	}
	s := &Server{
		store:  st,
		logger: log.Logger,
		forms: map[string]dependent.Binding{
			FormInventory:   dependent.InventoryBinding(),
			FormTransaction: dependent.TransactionBinding(),
		},
		lookupPath: products.MountPath("/"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.renderer == nil {
		var renderOpts []html.Option
		if s.siteTitle != "" {
			renderOpts = append(renderOpts, html.WithSiteTitle(s.siteTitle))
		}
		renderOpts = append(renderOpts, s.renderOps...)
		renderer, err := html.New(renderOpts...)
		if err != nil {
			return nil, fmt.Errorf("admin: html renderer: %w", err)
		}
		s.renderer = renderer
	}

	s.ledger = finance.NewLedger(st, st, finance.WithLogger(s.logger))
	serviceOpts := []inventory.Option{
		inventory.WithLogger(s.logger),
		inventory.WithTransactionObserver(metrics.ObserveTransaction),
		inventory.WithTransactionHook(s.ledger.Post),
	}
	serviceOpts = append(serviceOpts, s.serviceOps...)
	s.service = inventory.NewService(st, st, st, st, serviceOpts...)
	return s, nil
}

// Service returns the inventory service used by the handlers.
func (s *Server) Service() *inventory.Service {
	return s.service
}

// Ledger returns the finance ledger fed by recorded transactions.
func (s *Server) Ledger() *finance.Ledger {
	return s.ledger
}

// Handler builds the routed handler wrapped in the logging middleware.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	cop := http.NewCrossOriginProtection()

	mux.HandleFunc("GET /{$}", s.handleInventoryList)
	mux.HandleFunc("GET /transactions", s.handleTransactionList)
	mux.HandleFunc("GET /inventory/new", s.handleInventoryForm)
	mux.Handle("POST /inventory/new", cop.Handler(http.HandlerFunc(s.handleInventorySubmit)))
	mux.HandleFunc("GET /transactions/new", s.handleTransactionForm)
	mux.Handle("POST /transactions/new", cop.Handler(http.HandlerFunc(s.handleTransactionSubmit)))
	mux.HandleFunc("GET /finance", s.handleFinance)
	mux.HandleFunc("GET "+ChoicesPath, s.handleProductChoices)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	component := products.New(products.WithSource(s.store))
	if _, err := component.RegisterRoutes(mux, "/"); err != nil {
		return nil, fmt.Errorf("admin: register products: %w", err)
	}

	return middleware.Logging(s.logger)(mux), nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
