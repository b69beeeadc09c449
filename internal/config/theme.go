package config

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeConfig describes the admin theme. An empty Name leaves pages
// unthemed.
type ThemeConfig struct {
	Name         string                        `yaml:"name"`
	Version      string                        `yaml:"version"`
	Variant      string                        `yaml:"variant"`
	AssetsPrefix string                        `yaml:"assets_prefix"`
	Stylesheet   string                        `yaml:"stylesheet"`
	Tokens       map[string]string             `yaml:"tokens"`
	Variants     map[string]ThemeVariantConfig `yaml:"variants"`
}

// ThemeVariantConfig overrides tokens and the stylesheet of a theme.
type ThemeVariantConfig struct {
	Stylesheet string            `yaml:"stylesheet"`
	Tokens     map[string]string `yaml:"tokens"`
}

// Enabled reports whether a theme is configured.
func (t ThemeConfig) Enabled() bool {
	return strings.TrimSpace(t.Name) != ""
}

// Manifest converts the configuration into a go-theme manifest whose
// stylesheet is stored under assetKey.
func (t ThemeConfig) Manifest(assetKey string) *theme.Manifest {
	version := strings.TrimSpace(t.Version)
	if version == "" {
		version = "1.0.0"
	}
	manifest := &theme.Manifest{
		Name:    strings.TrimSpace(t.Name),
		Version: version,
		Tokens:  t.Tokens,
		Assets: theme.Assets{
			Prefix: t.AssetsPrefix,
			Files:  map[string]string{},
		},
	}
	if t.Stylesheet != "" {
		manifest.Assets.Files[assetKey] = t.Stylesheet
	}
	if len(t.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(t.Variants))
		for name, v := range t.Variants {
			variant := theme.Variant{Tokens: v.Tokens}
			if v.Stylesheet != "" {
				variant.Assets = theme.Assets{Files: map[string]string{assetKey: v.Stylesheet}}
			}
			manifest.Variants[name] = variant
		}
	}
	return manifest
}
