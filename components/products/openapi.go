package products

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

// OperationID identifies the lookup operation in the generated document.
const OperationID = "getProductsByType"

// OpenAPI describes the lookup route mounted under basePath.
func OpenAPI(basePath string, opts Options) (*openapi3.T, error) {
	opts = NewOptions(func(o *Options) { *o = opts })

	typeSchema := openapi3.NewStringSchema()
	for _, choice := range catalog.ProductTypes() {
		typeSchema.Enum = append(typeSchema.Enum, string(choice.Type))
	}
	param := openapi3.NewQueryParameter(opts.TypeParam).
		WithDescription("Product type whose products are listed.").
		WithSchema(typeSchema)

	item := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("name", openapi3.NewStringSchema())
	item.Required = []string{"id", "name"}
	body := openapi3.NewObjectSchema().
		WithProperty("products", openapi3.NewArraySchema().WithItems(item))
	body.Required = []string{"products"}

	ok := openapi3.NewResponse().
		WithDescription("Products of the requested type; empty for unknown types.").
		WithJSONSchema(body)

	op := &openapi3.Operation{
		OperationID: OperationID,
		Summary:     "List products by type",
		Parameters:  openapi3.Parameters{&openapi3.ParameterRef{Value: param}},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: ok}),
			openapi3.WithStatus(http.StatusMethodNotAllowed, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Only GET and HEAD are allowed."),
			}),
		),
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Bakery product lookup",
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(mountPath(basePath, opts.RoutePath), &openapi3.PathItem{
			Get: op,
		})),
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("products: invalid openapi document: %w", err)
	}
	return doc, nil
}

// OpenAPIHandler serves the lookup route description as JSON.
func OpenAPIHandler(basePath string, opts Options) (http.Handler, error) {
	doc, err := OpenAPI(basePath, opts)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("products: encode openapi document: %w", err)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(payload)
	}), nil
}
