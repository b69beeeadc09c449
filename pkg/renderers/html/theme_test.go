package html_test

import (
	"context"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-bakery/pkg/renderers/html"
)

func crustManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "crust",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#8b5a2b", "paper": "#fffaf0"},
		Assets: theme.Assets{
			Prefix: "/static/themes/crust/",
			Files:  map[string]string{html.StylesheetAsset: "crust.css"},
		},
		Variants: map[string]theme.Variant{
			"night": {
				Tokens: map[string]string{"paper": "#1d1a16"},
				Assets: theme.Assets{Files: map[string]string{html.StylesheetAsset: "crust-night.css"}},
			},
		},
	}
}

func TestThemeConfig_ResolvesVariant(t *testing.T) {
	cfg, err := html.ThemeConfig(crustManifest(), "night")
	if err != nil {
		t.Fatalf("theme config: %v", err)
	}
	if cfg.Theme != "crust" || cfg.Variant != "night" {
		t.Fatalf("unexpected selection %q/%q", cfg.Theme, cfg.Variant)
	}
	if cfg.CSSVars["--paper"] != "#1d1a16" || cfg.CSSVars["--brand"] != "#8b5a2b" {
		t.Fatalf("unexpected css vars %v", cfg.CSSVars)
	}
	if got := cfg.AssetURL(html.StylesheetAsset); got != "/static/themes/crust/crust-night.css" {
		t.Fatalf("unexpected stylesheet url %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %q", got)
	}
}

func TestThemeConfig_Errors(t *testing.T) {
	if _, err := html.ThemeConfig(nil, ""); err == nil {
		t.Fatalf("expected error for nil manifest")
	}
	if _, err := html.ThemeConfig(crustManifest(), "sepia"); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func TestRender_ThemedLayout(t *testing.T) {
	cfg, err := html.ThemeConfig(crustManifest(), "")
	if err != nil {
		t.Fatalf("theme config: %v", err)
	}
	out, err := newRenderer(t, html.WithTheme(cfg)).RenderInventory(context.Background(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := parse(t, out)

	if got := doc.Find("html").AttrOr("data-theme", ""); got != "crust" {
		t.Fatalf("unexpected data-theme %q", got)
	}
	if got := doc.Find("link[rel=stylesheet]").AttrOr("href", ""); got != "/static/themes/crust/crust.css" {
		t.Fatalf("unexpected stylesheet %q", got)
	}
	if got := doc.Find("style").Text(); got != ":root { --brand: #8b5a2b; --paper: #fffaf0; }" {
		t.Fatalf("unexpected theme style %q", got)
	}

	out, err = newRenderer(t, html.WithTheme(cfg), html.WithStylesheet("/custom.css")).RenderInventory(context.Background(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := parse(t, out).Find("link[rel=stylesheet]").AttrOr("href", ""); got != "/custom.css" {
		t.Fatalf("explicit stylesheet not kept, got %q", got)
	}
}
