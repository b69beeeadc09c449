package gotemplate_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-bakery/pkg/render/template/gotemplate"
)

var templatesFS = fstest.MapFS{
	"greeting.html": {Data: []byte(`Hello {{ name }} from {{ bakery }}!`)},
	"stock.html":    {Data: []byte(`{% for row in rows %}{{ row.product }}={{ row.quantity|quantity }};{% endfor %}`)},
	"shout.html":    {Data: []byte(`{{ name|bakery_shout }}`)},
}

func newEngine(t *testing.T, opts ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()
	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(templatesFS)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplateWithGlobals(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{"bakery": "Piassa"}))

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("greeting", map[string]any{"name": "Abebe"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Hello Abebe from Piassa!"
	if got != want {
		t.Fatalf("result mismatch\nwant: %q\n got: %q", want, got)
	}
	if buf.String() != want {
		t.Fatalf("writer mismatch\nwant: %q\n got: %q", want, buf.String())
	}
}

func TestEngine_RenderDispatchesInlineContent(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.Render("{{ a }}-{{ b }}", map[string]any{"a": 1, "b": "two"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "1-two" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_QuantityFilterAndStructData(t *testing.T) {
	engine := newEngine(t)

	type row struct {
		Product  string  `json:"product"`
		Quantity float64 `json:"quantity"`
	}
	data := struct {
		Rows []row `json:"rows"`
	}{Rows: []row{{"White Loaf", 12}, {"Teff Flour", 2.5}}}

	got, err := engine.RenderTemplate("stock.html", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff("White Loaf=12;Teff Flour=2.5;", got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)

	err := engine.RegisterFilter("bakery_shout", func(input any, _ any) (any, error) {
		return strings.ToUpper(fmt.Sprint(input)) + "!", nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("bakery_shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}

	got, err := engine.RenderTemplate("shout", map[string]any{"name": "injera"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "INJERA!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_Errors(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without a template source")
	}

	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
	if _, err := engine.RenderString("{% if %}", nil); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := engine.RenderTemplate("greeting", []string{"not", "an", "object"}); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}
