package lookupwiring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-bakery/components/products"
	"github.com/goliatone/go-bakery/pkg/catalog"
)

func TestEndpointURL(t *testing.T) {
	if got := EndpointURL("http://localhost:8383/", ""); got != "http://localhost:8383/bakery/get-products/" {
		t.Fatalf("unexpected url %q", got)
	}
	got := EndpointURL("http://localhost:8383", "/admin", products.WithRoutePath("lookup"))
	if got != "http://localhost:8383/admin/lookup" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestNewClient_RoundTripsAgainstComponent(t *testing.T) {
	fns := []products.OptionFn{products.WithTypeParam("kind")}
	mux := http.NewServeMux()
	if _, err := products.RegisterRoutes(mux, "/admin", fns...); err != nil {
		t.Fatalf("register: %v", err)
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(srv.URL, "/admin", fns)
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	got, err := client.Products(context.Background(), "injera")
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	want := []catalog.Option{
		{ID: "1", Name: "Teff Injera"},
		{ID: "2", Name: "Mixed Injera"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestNewClient_RequiresOrigin(t *testing.T) {
	if _, err := NewClient("", "", nil); err == nil {
		t.Fatalf("expected error")
	}
}
