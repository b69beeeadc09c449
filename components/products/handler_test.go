package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var payload Response
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestNewHandler_ListsProductsOfType(t *testing.T) {
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/bakery/get-products/?product_type=bread", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := strings.TrimSpace(res.Header.Get("Content-Type")); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}

	want := []Item{
		{ID: 1, Name: "White Loaf"},
		{ID: 2, Name: "Whole Wheat Loaf"},
		{ID: 3, Name: "Dabo Roll"},
	}
	if diff := cmp.Diff(want, decodeResponse(t, rec).Products); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
}

func TestNewHandler_IDsAreJSONNumbers(t *testing.T) {
	h := NewHandler(WithProducts([]catalog.Product{{ID: 7, Type: catalog.ProductTypeYeast, Name: "Fresh Yeast"}}))

	req := httptest.NewRequest(http.MethodGet, "/?product_type=yeast", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if body := strings.TrimSpace(rec.Body.String()); body != `{"products":[{"id":7,"name":"Fresh Yeast"}]}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestNewHandler_UnknownOrEmptyTypeReturnsEmptyList(t *testing.T) {
	called := false
	h := NewHandler(WithSource(SourceFunc(func(context.Context, catalog.ProductType) ([]catalog.Product, error) {
		called = true
		return nil, nil
	})))

	for _, target := range []string{"/", "/?product_type=", "/?product_type=cake"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", target, rec.Code)
		}
		payload := decodeResponse(t, rec)
		if payload.Products == nil || len(payload.Products) != 0 {
			t.Fatalf("%s: expected empty products array, got %#v", target, payload.Products)
		}
	}
	if called {
		t.Fatalf("source should not be consulted for unknown types")
	}
}

func TestNewHandler_LenientTypesReachSource(t *testing.T) {
	var got catalog.ProductType
	h := NewHandler(
		WithStrictTypes(false),
		WithSource(SourceFunc(func(_ context.Context, productType catalog.ProductType) ([]catalog.Product, error) {
			got = productType
			return nil, nil
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/?product_type=cake", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || got != "cake" {
		t.Fatalf("expected source to receive cake, got %q (status %d)", got, rec.Code)
	}
}

func TestNewHandler_CustomTypeParam(t *testing.T) {
	h := NewHandler(WithTypeParam("kind"))

	req := httptest.NewRequest(http.MethodGet, "/?kind=enhancer&product_type=bread", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	want := []Item{{ID: 1, Name: "Bread Improver"}}
	if diff := cmp.Diff(want, decodeResponse(t, rec).Products); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
}

func TestNewHandler_SourceErrorIs500(t *testing.T) {
	h := NewHandler(WithSource(SourceFunc(func(context.Context, catalog.ProductType) ([]catalog.Product, error) {
		return nil, errors.New("disk on fire")
	})))

	req := httptest.NewRequest(http.MethodGet, "/?product_type=flour", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "disk on fire") {
		t.Fatalf("internal error leaked to client: %q", rec.Body.String())
	}
}

func TestNewHandler_GuardRejects(t *testing.T) {
	h := NewHandler(WithGuard(func(r *http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))

	req := httptest.NewRequest(http.MethodGet, "/?product_type=bread", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestNewHandler_GuardPlainErrorIsForbidden(t *testing.T) {
	h := NewHandler(WithGuard(func(r *http.Request) error {
		return errors.New("nope")
	}))

	req := httptest.NewRequest(http.MethodGet, "/?product_type=bread", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestNewHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler()

	req := httptest.NewRequest(http.MethodPost, "/?product_type=bread", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestNewHandler_HeadHasNoBody(t *testing.T) {
	h := NewHandler()

	req := httptest.NewRequest(http.MethodHead, "/?product_type=bread", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200, got %d with %q", rec.Code, rec.Body.String())
	}
}
