// Package config loads the admin configuration from an optional .env file, a
// YAML file and environment overrides, in that order.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-bakery/internal/logging"
	"github.com/goliatone/go-bakery/internal/store"
	"github.com/goliatone/go-bakery/internal/tracing"
	"github.com/goliatone/go-bakery/pkg/dependent"
)

const (
	DefaultPath   = "bakery.yaml"
	DefaultAddr   = ":8383"
	DefaultLookup = "http://127.0.0.1:8383/bakery/get-products/"
)

//go:embed forms.yaml
var defaultForms []byte

// LookupConfig points the terminal form at a product lookup endpoint.
type LookupConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the full admin configuration.
type Config struct {
	Addr          string        `yaml:"addr"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
	SiteTitle     string        `yaml:"site_title"`
	// Seed loads the default catalog on start when the store is empty.
	Seed    bool                         `yaml:"seed"`
	Store   store.Config                 `yaml:"store"`
	Log     logging.Config               `yaml:"log"`
	Lookup  LookupConfig                 `yaml:"lookup"`
	Tracing tracing.Config               `yaml:"tracing"`
	Theme   ThemeConfig                  `yaml:"theme"`
	Forms   map[string]dependent.Binding `yaml:"forms"`
}

// Default returns the built-in configuration, including the embedded form
// bindings.
func Default() Config {
	cfg := Config{
		Addr:          DefaultAddr,
		ShutdownGrace: 5 * time.Second,
		SiteTitle:     "Bakery Admin",
		Seed:          true,
		Store:         store.Config{Driver: store.DriverBolt, Path: "bakery.db", Timeout: time.Second},
		Log:           logging.DefaultConfig(),
		Lookup:        LookupConfig{URL: DefaultLookup, Timeout: 10 * time.Second},
		Tracing:       tracing.Config{ServiceName: tracing.DefaultServiceName},
	}
	var embedded struct {
		Forms map[string]dependent.Binding `yaml:"forms"`
	}
	if err := yaml.Unmarshal(defaultForms, &embedded); err != nil {
		panic(fmt.Sprintf("config: embedded forms: %v", err))
	}
	cfg.Forms = embedded.Forms
	return cfg
}

// Load builds the configuration. A missing file at path is only an error when
// path was given explicitly (differs from DefaultPath).
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// decode overlays YAML on cfg. Form bindings merge by name so a file can
// override one form without restating the others.
func (c *Config) decode(data []byte) error {
	base := c.Forms
	c.Forms = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	merged := make(map[string]dependent.Binding, len(base)+len(c.Forms))
	for name, binding := range base {
		merged[name] = binding
	}
	for name, binding := range c.Forms {
		if current, ok := merged[name]; ok {
			binding = mergeBinding(current, binding)
		}
		merged[name] = binding
	}
	c.Forms = merged
	return nil
}

func mergeBinding(base, override dependent.Binding) dependent.Binding {
	if override.TypeField != "" {
		base.TypeField = override.TypeField
	}
	if override.ChoiceField != "" {
		base.ChoiceField = override.ChoiceField
	}
	if override.QuantityField != "" {
		base.QuantityField = override.QuantityField
	}
	base.Labels = base.Labels.Merge(override.Labels)
	if override.Placeholders.Empty != "" {
		base.Placeholders.Empty = override.Placeholders.Empty
	}
	if override.Placeholders.Loading != "" {
		base.Placeholders.Loading = override.Placeholders.Loading
	}
	if override.Placeholders.Error != "" {
		base.Placeholders.Error = override.Placeholders.Error
	}
	return base
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}
	str("BAKERY_ADDR", &c.Addr)
	str("BAKERY_STORE_DRIVER", &c.Store.Driver)
	str("BAKERY_STORE_PATH", &c.Store.Path)
	str("BAKERY_LOOKUP_URL", &c.Lookup.URL)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Tracing.Endpoint)
	str("BAKERY_THEME", &c.Theme.Name)
	str("BAKERY_THEME_VARIANT", &c.Theme.Variant)

	for key, dst := range map[string]*bool{"BAKERY_TRACING": &c.Tracing.Enabled, "BAKERY_SEED": &c.Seed} {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = parsed
	}
	return nil
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: addr is required")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for name, binding := range c.Forms {
		if strings.TrimSpace(binding.TypeField) == "" {
			return fmt.Errorf("config: form %q: typeField is required", name)
		}
	}
	return nil
}

// Binding returns the normalised binding of the named form.
func (c Config) Binding(name string) (dependent.Binding, bool) {
	binding, ok := c.Forms[name]
	if !ok {
		return dependent.Binding{}, false
	}
	if binding.Name == "" {
		binding.Name = name
	}
	return binding.Normalize(), true
}

// FormNames lists the configured forms in sorted order.
func (c Config) FormNames() []string {
	names := make([]string, 0, len(c.Forms))
	for name := range c.Forms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
