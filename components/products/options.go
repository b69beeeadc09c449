package products

import (
	"context"
	"net/http"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

const (
	DefaultRoutePath = "/bakery/get-products/"
	DefaultTypeParam = "product_type"
)

// Source resolves the products of a type. Store backends satisfy it.
type Source interface {
	ProductsByType(ctx context.Context, productType catalog.ProductType) ([]catalog.Product, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, productType catalog.ProductType) ([]catalog.Product, error)

// ProductsByType calls fn.
func (fn SourceFunc) ProductsByType(ctx context.Context, productType catalog.ProductType) ([]catalog.Product, error) {
	return fn(ctx, productType)
}

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath string
	TypeParam string
	Guard     GuardFunc
	// StrictTypes drops requests for types outside the catalog before the
	// source is consulted.
	StrictTypes bool

	Source Source
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:   DefaultRoutePath,
		TypeParam:   DefaultTypeParam,
		StrictTypes: true,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = DefaultRoutePath
	}
	if opts.TypeParam == "" {
		opts.TypeParam = DefaultTypeParam
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithTypeParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TypeParam = name
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithStrictTypes(strict bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.StrictTypes = strict
	}
}

func WithSource(source Source) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Source = source
	}
}

// WithProducts serves a fixed product list.
func WithProducts(list []catalog.Product) OptionFn {
	return WithSource(StaticSource(list))
}

// StaticSource filters an in-memory product list by type, keeping order.
func StaticSource(list []catalog.Product) Source {
	list = append([]catalog.Product(nil), list...)
	return SourceFunc(func(_ context.Context, productType catalog.ProductType) ([]catalog.Product, error) {
		var out []catalog.Product
		for _, product := range list {
			if product.Type == productType {
				out = append(out, product)
			}
		}
		return out, nil
	})
}
