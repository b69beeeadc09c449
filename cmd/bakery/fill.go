package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-bakery/components/products/lookupwiring"
	"github.com/goliatone/go-bakery/internal/admin"
	"github.com/goliatone/go-bakery/internal/tracing"
	"github.com/goliatone/go-bakery/pkg/inventory"
	"github.com/goliatone/go-bakery/pkg/lookup"
	"github.com/goliatone/go-bakery/pkg/render"
	"github.com/goliatone/go-bakery/pkg/renderers/tui"
)

type fillFlags struct {
	output       string
	lookupURL    string
	serverURL    string
	withBranches bool
	submit       bool
}

func fillCommand(a *app) *cobra.Command {
	var flags fillFlags
	cmd := &cobra.Command{
		Use:   "fill <form>",
		Short: "Fill a form interactively, loading product choices from the lookup endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFill(cmd.Context(), a, args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", string(tui.OutputFormatJSON), "output format (json, form, pretty)")
	cmd.Flags().StringVar(&flags.lookupURL, "lookup-url", "", "product lookup endpoint (overrides config)")
	cmd.Flags().StringVar(&flags.serverURL, "server", "", "admin origin for --submit and, without --lookup-url, the product lookup")
	cmd.Flags().BoolVar(&flags.withBranches, "branches", false, "prompt for a branch listed in the local store")
	cmd.Flags().BoolVar(&flags.submit, "submit", false, "post the collected values to the admin")
	return cmd
}

func runFill(ctx context.Context, a *app, name string, flags fillFlags) error {
	binding, ok := a.cfg.Binding(name)
	if !ok {
		return fmt.Errorf("unknown form %q (available: %s)", name, formNames(a))
	}
	format, ok := tui.ParseOutputFormat(flags.output)
	if !ok {
		return fmt.Errorf("unknown output format %q", flags.output)
	}
	if flags.lookupURL != "" {
		a.cfg.Lookup.URL = flags.lookupURL
	}

	if a.cfg.Tracing.Enabled {
		tp, err := tracing.Init(ctx, a.cfg.Tracing, a.logger)
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}
	transport := http.DefaultTransport
	if a.cfg.Tracing.Enabled {
		transport = tracing.Transport(transport)
	}
	httpClient := &http.Client{Timeout: a.cfg.Lookup.Timeout, Transport: transport}

	clientOpts := []lookup.Option{
		lookup.WithHTTPClient(httpClient),
		lookup.WithObserver(func(productType string, outcome lookup.Outcome) {
			a.logger.Debug().Str("product_type", productType).Str("outcome", string(outcome)).Msg("product lookup")
		}),
	}
	// An explicit admin origin without a lookup URL targets the products
	// component mounted on that admin.
	var (
		client *lookup.Client
		err    error
	)
	if flags.serverURL != "" && flags.lookupURL == "" {
		client, err = lookupwiring.NewClient(flags.serverURL, "/", nil, clientOpts...)
	} else {
		client, err = lookup.New(a.cfg.Lookup.URL, clientOpts...)
	}
	if err != nil {
		return err
	}

	form := render.Form{Binding: binding}
	if name == admin.FormTransaction {
		form.TransactionTypes = inventory.TransactionTypes()
	}
	if flags.withBranches {
		if form.Branches, err = a.localBranches(ctx); err != nil {
			return err
		}
	}

	driver := a.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(a.errOut)
	}
	var submitted map[string]any
	renderer, err := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithLookup(client),
		tui.WithOutputFormat(format),
		tui.WithLogger(a.logger),
		tui.WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
			submitted = values
			return values, nil
		}),
	)
	if err != nil {
		return err
	}

	out, err := renderer.Render(ctx, form, render.RenderOptions{})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, strings.TrimRight(string(out), "\n"))
	if !flags.submit {
		return nil
	}

	target, err := submitTarget(name, flags.serverURL, a.cfg.Lookup.URL)
	if err != nil {
		return err
	}
	confirmed, err := driver.Confirm(ctx, tui.ConfirmConfig{Message: "Submit to " + target + "?", Default: true})
	if err != nil || !confirmed {
		return err
	}
	if err := postForm(ctx, httpClient, target, submitted); err != nil {
		return err
	}
	return driver.Info(ctx, "Saved.")
}

func (a *app) localBranches(ctx context.Context) ([]inventory.Branch, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return inventory.NewService(st, st, st, st).Branches(ctx)
}

// submitTarget resolves the action URL of the named form on the admin at
// server, or at the origin of the lookup endpoint when server is empty.
func submitTarget(name, server, lookupURL string) (string, error) {
	action, ok := admin.FormAction(name)
	if !ok {
		return "", fmt.Errorf("form %q cannot be submitted", name)
	}
	if server == "" {
		u, err := url.Parse(lookupURL)
		if err != nil {
			return "", fmt.Errorf("parse lookup url: %w", err)
		}
		server = u.Scheme + "://" + u.Host
	}
	return strings.TrimRight(server, "/") + action, nil
}

// postForm submits values and reports the messages of a rejected form.
func postForm(ctx context.Context, client *http.Client, target string, values map[string]any) error {
	form := url.Values{}
	for key, value := range values {
		form.Set(key, fmt.Sprint(value))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	noRedirect := *client
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := noRedirect.Do(req)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusSeeOther, http.StatusFound, http.StatusOK:
		return nil
	case http.StatusUnprocessableEntity:
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("submit: read rejection: %w", err)
		}
		var messages []string
		doc.Find("ul.bakery-form-errors li").Each(func(_ int, li *goquery.Selection) {
			messages = append(messages, strings.TrimSpace(li.Text()))
		})
		doc.Find("p.bakery-error").Each(func(_ int, p *goquery.Selection) {
			messages = append(messages, p.AttrOr("data-field", "")+": "+strings.TrimSpace(p.Text()))
		})
		return errors.New("submit rejected: " + strings.Join(messages, "; "))
	default:
		return fmt.Errorf("submit: unexpected status %d", resp.StatusCode)
	}
}
