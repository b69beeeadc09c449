// Command bakery runs the bakery inventory admin and its terminal tools.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-bakery/internal/config"
	"github.com/goliatone/go-bakery/internal/logging"
	"github.com/goliatone/go-bakery/internal/store"
	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/renderers/tui"
)

func main() {
	a := &app{out: os.Stdout, errOut: os.Stderr}
	if err := newRootCommand(a).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by the subcommands.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger zerolog.Logger

	// driver replaces the interactive prompts of fill when set.
	driver tui.PromptDriver
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "bakery",
		Short:        "Bakery inventory admin",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath, "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(
		serveCommand(a),
		fillCommand(a),
		seedCommand(a),
		exportCommand(a),
	)
	return root
}

// setup loads the configuration and installs the logger. Logs go to the
// error stream so command output stays machine readable.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	logger, err := logging.Setup(cfg.Log, a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, a.cfg.Store)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("driver", a.cfg.Store.Driver).Str("path", a.cfg.Store.Path).Msg("store opened")
	return st, nil
}

func seedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the default catalog and branches into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			products := catalog.DefaultProducts()
			branches := store.DefaultBranches()
			if err := store.Seed(cmd.Context(), st, products, branches); err != nil {
				return err
			}
			a.logger.Info().Int("products", len(products)).Int("branches", len(branches)).Msg("store seeded")
			fmt.Fprintf(a.out, "seeded %d products and %d branches\n", len(products), len(branches))
			return nil
		},
	}
}

// seedIfEmpty loads the default catalog when the store has no products.
func (a *app) seedIfEmpty(ctx context.Context, st store.Store) error {
	existing, err := st.Products(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	a.logger.Info().Msg("empty catalog, loading defaults")
	return store.Seed(ctx, st, catalog.DefaultProducts(), store.DefaultBranches())
}

func formNames(a *app) string {
	return strings.Join(a.cfg.FormNames(), ", ")
}
