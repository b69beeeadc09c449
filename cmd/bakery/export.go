package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-bakery/pkg/export"
	"github.com/goliatone/go-bakery/pkg/finance"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

func exportCommand(a *app) *cobra.Command {
	var inventoryOnly bool
	cmd := &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the inventory, transactions and finance ledger to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			service := inventory.NewService(st, st, st, st, inventory.WithLogger(a.logger))
			rows, err := service.Inventory(ctx)
			if err != nil {
				return err
			}
			report := export.Report{Inventory: rows}
			if !inventoryOnly {
				if report.Transactions, err = service.Transactions(ctx); err != nil {
					return err
				}
				ledger := finance.NewLedger(st, st, finance.WithLogger(a.logger))
				if report.Ledger, err = ledger.List(ctx, finance.Filter{}); err != nil {
					return err
				}
				branches, err := service.Branches(ctx)
				if err != nil {
					return err
				}
				report.Branches = make(map[uint64]inventory.Branch, len(branches))
				for _, b := range branches {
					report.Branches[b.ID] = b
				}
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if inventoryOnly {
				err = export.WriteInventory(f, rows)
			} else {
				err = export.WriteReport(f, report)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			a.logger.Info().Str("file", args[0]).Int("records", len(rows)).Int("transactions", len(report.Transactions)).Int("ledger_entries", len(report.Ledger)).Msg("workbook written")
			return nil
		},
	}
	cmd.Flags().BoolVar(&inventoryOnly, "inventory-only", false, "skip the transactions and finance sheets")
	return cmd
}
