package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-bakery/internal/admin"
	"github.com/goliatone/go-bakery/internal/store"
	"github.com/goliatone/go-bakery/pkg/export"
	"github.com/goliatone/go-bakery/pkg/inventory"
	"github.com/goliatone/go-bakery/pkg/renderers/tui"
)

type scriptedDriver struct {
	selects []int
	inputs  []string
	confirm bool
	infos   []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return next, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return d.confirm, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	next := d.selects[0]
	d.selects = d.selects[1:]
	return next, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func writeConfig(t *testing.T, dir, lookupURL string) string {
	t.Helper()
	path := filepath.Join(dir, "bakery.yaml")
	body := "store:\n  driver: sqlite\n  path: " + filepath.Join(dir, "bakery.sqlite") + "\n" +
		"log:\n  level: error\n  format: json\n"
	if lookupURL != "" {
		body += "lookup:\n  url: " + lookupURL + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, a *app, args ...string) error {
	t.Helper()
	if a.out == nil {
		a.out = &bytes.Buffer{}
	}
	if a.errOut == nil {
		a.errOut = &bytes.Buffer{}
	}
	root := newRootCommand(a)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestSeedThenExport(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")

	var out bytes.Buffer
	require.NoError(t, run(t, &app{out: &out}, "--config", cfg, "seed"))
	assert.Equal(t, "seeded 9 products and 3 branches\n", out.String())

	book := filepath.Join(dir, "inventory.xlsx")
	require.NoError(t, run(t, &app{}, "--config", cfg, "export", book))

	f, err := excelize.OpenFile(book)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.InventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Branch", rows[0][0])
}

func TestFill_UnknownFormAndFormat(t *testing.T) {
	cfg := writeConfig(t, t.TempDir(), "http://127.0.0.1:1/bakery/get-products/")

	err := run(t, &app{driver: &scriptedDriver{}}, "--config", cfg, "fill", "payroll")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory, stocktransaction")

	err = run(t, &app{driver: &scriptedDriver{}}, "--config", cfg, "fill", "inventory", "--output", "xml")
	require.Error(t, err)
}

func TestFill_SubmitsToAdmin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, &app{}, "--config", writeConfig(t, dir, ""), "seed"))

	st, err := store.Open(context.Background(), store.Config{Driver: store.DriverSQLite, Path: filepath.Join(dir, "bakery.sqlite")})
	require.NoError(t, err)
	defer st.Close()
	srv, err := admin.New(st, admin.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	handler, err := srv.Handler()
	require.NoError(t, err)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	cfg := writeConfig(t, dir, ts.URL+"/bakery/get-products/")
	driver := &scriptedDriver{
		// Bole, Flour, Teff Flour
		selects: []int{0, 2, 1},
		inputs:  []string{"7"},
		confirm: true,
	}
	var out bytes.Buffer
	err = run(t, &app{out: &out, driver: driver}, "--config", cfg, "fill", "inventory", "--output", "form", "--branches", "--submit")
	require.NoError(t, err)
	assert.Equal(t, "branch=1&product_choice=2&product_type=flour&quantity=7", strings.TrimSpace(out.String()))
	assert.Contains(t, driver.infos, "Saved.")

	rows, err := inventory.NewService(st, st, st, st).Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Teff Flour", rows[0].ProductName)
	assert.Equal(t, 7.0, rows[0].Quantity)
}

func TestFill_ReportsRejectedSubmission(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, &app{}, "--config", writeConfig(t, dir, ""), "seed"))

	st, err := store.Open(context.Background(), store.Config{Driver: store.DriverSQLite, Path: filepath.Join(dir, "bakery.sqlite")})
	require.NoError(t, err)
	defer st.Close()
	srv, err := admin.New(st, admin.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	handler, err := srv.Handler()
	require.NoError(t, err)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	cfg := writeConfig(t, dir, "")
	driver := &scriptedDriver{selects: []int{0, 0}, inputs: []string{"3"}, confirm: true}
	err = run(t, &app{driver: driver}, "--config", cfg, "fill", "inventory", "--server", ts.URL, "--submit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch: This field is required.")
}

func TestSubmitTarget(t *testing.T) {
	got, err := submitTarget(admin.FormTransaction, "", "http://localhost:8383/bakery/get-products/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8383/transactions/new", got)

	got, err = submitTarget(admin.FormInventory, "https://admin.example/", "")
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example/inventory/new", got)
}

func TestAdminOptions_Theme(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	f, err := os.OpenFile(cfg, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("theme:\n  name: crust\n  assets_prefix: /static\n  stylesheet: crust.css\n  tokens:\n    brand: \"#8b5a2b\"\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	a := &app{}
	require.NoError(t, run(t, a, "--config", cfg, "seed"))
	opts, err := a.adminOptions()
	require.NoError(t, err)

	st, err := a.openStore(context.Background())
	require.NoError(t, err)
	defer st.Close()
	srv, err := admin.New(st, opts...)
	require.NoError(t, err)
	handler, err := srv.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `data-theme="crust"`)
	assert.Contains(t, body, `href="/static/crust.css"`)

	a.cfg.Theme.Variant = "night"
	_, err = a.adminOptions()
	require.Error(t, err)
}
