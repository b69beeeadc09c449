package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-bakery/internal/admin"
	"github.com/goliatone/go-bakery/internal/tracing"
	"github.com/goliatone/go-bakery/pkg/renderers/html"
)

func serveCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if a.cfg.Seed {
		if err := a.seedIfEmpty(ctx, st); err != nil {
			return err
		}
	}

	if a.cfg.Tracing.Enabled {
		tp, err := tracing.Init(ctx, a.cfg.Tracing, a.logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGrace)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn().Err(err).Msg("tracer shutdown")
			}
		}()
	}

	adminOpts, err := a.adminOptions()
	if err != nil {
		return err
	}
	srv, err := admin.New(st, adminOpts...)
	if err != nil {
		return err
	}
	handler, err := srv.Handler()
	if err != nil {
		return err
	}
	if a.cfg.Tracing.Enabled {
		handler = tracing.Handler(handler, "bakery")
	}

	httpSrv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info().
			Str("address", a.cfg.Addr).
			Str("store", a.cfg.Store.Driver).
			Bool("tracing", a.cfg.Tracing.Enabled).
			Msg("Starting HTTP server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGrace)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *app) adminOptions() ([]admin.Option, error) {
	opts := []admin.Option{
		admin.WithLogger(a.logger),
		admin.WithForms(a.cfg.Forms),
		admin.WithSiteTitle(a.cfg.SiteTitle),
	}
	if !a.cfg.Theme.Enabled() {
		return opts, nil
	}
	themeCfg, err := html.ThemeConfig(a.cfg.Theme.Manifest(html.StylesheetAsset), a.cfg.Theme.Variant)
	if err != nil {
		return nil, err
	}
	a.logger.Info().Str("theme", themeCfg.Theme).Str("variant", themeCfg.Variant).Msg("theme selected")
	return append(opts, admin.WithRendererOptions(html.WithTheme(themeCfg))), nil
}
