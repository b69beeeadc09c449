// Package lookupwiring builds lookup clients that match a products component
// configuration.
package lookupwiring

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-bakery/components/products"
	"github.com/goliatone/go-bakery/pkg/lookup"
)

// EndpointURL joins the server origin with the component mount path under
// basePath.
func EndpointURL(origin, basePath string, fns ...products.OptionFn) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/") + products.MountPath(basePath, fns...)
}

// NewClient returns a lookup client pointed at the component mounted under
// basePath on origin. The query parameter and response mapping follow the
// component options; extra client options are applied last.
func NewClient(origin, basePath string, fns []products.OptionFn, extra ...lookup.Option) (*lookup.Client, error) {
	if strings.TrimSpace(origin) == "" {
		return nil, fmt.Errorf("lookupwiring: origin required")
	}
	opts := products.NewOptions(fns...)

	clientOpts := []lookup.Option{
		lookup.WithParam(opts.TypeParam),
		lookup.WithResultsPath("products"),
		lookup.WithValueField("id"),
		lookup.WithLabelField("name"),
	}
	clientOpts = append(clientOpts, extra...)
	return lookup.New(EndpointURL(origin, basePath, fns...), clientOpts...)
}
