package lookup

import "net/http"

const (
	// DefaultParam is the query parameter carrying the product type.
	DefaultParam = "product_type"
	// DefaultResultsPath locates the product list in the response body.
	DefaultResultsPath = "products"
	// DefaultValueField is the product field used as option value.
	DefaultValueField = "id"
	// DefaultLabelField is the product field used as option text.
	DefaultLabelField = "name"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithParam renames the query parameter carrying the product type.
func WithParam(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.param = name
		}
	}
}

// WithParams adds fixed query parameters sent with every request.
func WithParams(params map[string]string) Option {
	return func(c *Client) {
		for k, v := range params {
			if k == "" {
				continue
			}
			c.params[k] = v
		}
	}
}

// WithResultsPath sets the dotted path of the product list in the response.
// An empty path means the body itself is the list.
func WithResultsPath(path string) Option {
	return func(c *Client) {
		c.resultsPath = path
	}
}

// WithValueField sets the dotted path of the option value in each item.
func WithValueField(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.valueField = path
		}
	}
}

// WithLabelField sets the dotted path of the option text in each item.
func WithLabelField(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.labelField = path
		}
	}
}

// WithObserver registers a callback invoked after every request with the
// product type and its outcome.
func WithObserver(fn func(productType string, outcome Outcome)) Option {
	return func(c *Client) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}
