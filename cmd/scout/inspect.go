package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fd1az/arbitrage-scout/business/market"
	marketDI "github.com/fd1az/arbitrage-scout/business/market/di"
	"github.com/fd1az/arbitrage-scout/business/scout"
	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/infra/sqlitejournal"
	"github.com/fd1az/arbitrage-scout/internal/config"
	"github.com/fd1az/arbitrage-scout/internal/logger"
	"github.com/fd1az/arbitrage-scout/internal/monolith"
)

func newPairsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "List the pairs both configured markets trade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := logger.New(io.Discard, logger.LevelError, cfg.App.Name, nil)

			mono := monolith.New(cfg, log)
			defer mono.Close()

			if err := mono.RegisterModules(&market.Module{}); err != nil {
				return err
			}
			markets := marketDI.GetMarketService(mono.Services())
			mono.OnClose(markets.Close)

			scanner, err := scout.NewScanner(ctx, cfg, markets, nil, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, domain.Header(scanner.Config().Market1, scanner.Config().Market2))
			for _, pair := range scanner.Pairs() {
				fmt.Fprintln(out, pair)
			}
			fmt.Fprintf(out, "%d pairs\n", len(scanner.Pairs()))
			return nil
		},
	}
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent notifications from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			journal, err := sqlitejournal.Open(ctx, cfg.Notify.SQLite.Path)
			if err != nil {
				return err
			}
			defer journal.Close()

			notifications, err := journal.List(ctx, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tPAIR\tBUY\tSELL\tRATIO")
			for _, n := range notifications {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					n.Timestamp.Format("2006-01-02 15:04:05"),
					n.Pair, n.BuyMarket, n.SellMarket, domain.FormatRatio(n.Ratio))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of notifications to show")
	return cmd
}
