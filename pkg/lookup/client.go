// Package lookup fetches the products of a product type from the admin's
// lookup endpoint.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/dependent"
)

// Outcome classifies a finished request.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeError Outcome = "error"
)

// Client issues GET <endpoint>?product_type=<type> requests and maps the
// response into catalog options.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	param       string
	params      map[string]string
	resultsPath string
	valueField  string
	labelField  string
	observers   []func(string, Outcome)
}

var _ dependent.Lookup = (*Client)(nil)

// New builds a client for endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("lookup: endpoint required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("lookup: parse endpoint: %w", err)
	}

	c := &Client{
		endpoint:    endpoint,
		httpClient:  http.DefaultClient,
		param:       DefaultParam,
		params:      make(map[string]string),
		resultsPath: DefaultResultsPath,
		valueField:  DefaultValueField,
		labelField:  DefaultLabelField,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Products implements dependent.Lookup.
func (c *Client) Products(ctx context.Context, productType string) ([]catalog.Option, error) {
	opts, err := c.fetch(ctx, productType)
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	for _, fn := range c.observers {
		fn(productType, outcome)
	}
	return opts, err
}

func (c *Client) fetch(ctx context.Context, productType string) ([]catalog.Option, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("lookup: parse url: %w", err)
	}
	q := reqURL.Query()
	for k, v := range c.params {
		q.Set(k, v)
	}
	q.Set(c.param, productType)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("lookup: request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload any
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	items, err := extractResults(payload, c.resultsPath)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Option, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T, not an object", ErrMalformedResponse, i, item)
		}
		id := pickValue(obj, c.valueField)
		if id == "" {
			return nil, fmt.Errorf("%w: item %d has no %q", ErrMalformedResponse, i, c.valueField)
		}
		name := pickValue(obj, c.labelField)
		if name == "" {
			name = id
		}
		out = append(out, catalog.Option{ID: id, Name: name})
	}
	return out, nil
}

// extractResults walks path to the result list. A missing node means no
// results; a node of any other shape is malformed.
func extractResults(payload any, path string) ([]any, error) {
	cur := payload
	if path != "" {
		for _, segment := range strings.Split(path, ".") {
			node, ok := cur.(map[string]any)
			if !ok {
				if cur == nil {
					return nil, nil
				}
				return nil, fmt.Errorf("%w: %q is not an object", ErrMalformedResponse, segment)
			}
			cur = node[segment]
		}
	}
	switch list := cur.(type) {
	case nil:
		return nil, nil
	case []any:
		return list, nil
	default:
		return nil, fmt.Errorf("%w: results at %q are %T, not a list", ErrMalformedResponse, path, cur)
	}
}

func pickValue(m map[string]any, path string) string {
	if path == "" {
		return ""
	}
	cur := any(m)
	for _, segment := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = node[segment]
	}
	switch v := cur.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
