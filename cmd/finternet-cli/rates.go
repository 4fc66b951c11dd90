package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/finternet/finternet-backend/services/currency"
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Print the USD rates the payment service would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if name, _ := cmd.Flags().GetString("provider"); name != "" {
				c.RatesProviderName = name
			}

			l := logrus.New()
			l.SetOutput(cmd.ErrOrStderr())
			l.SetLevel(logrus.WarnLevel)
			logger := logging.Wrap(l)

			provider, err := currency.NewRateProviderFromConfig(c, logger)
			if err != nil {
				return err
			}

			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			rates, err := currency.NewCurrencyService(provider, 0, logger).Rates(ctx)
			if err != nil {
				return err
			}

			codes := make([]string, 0, len(rates))
			for code := range rates {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tUSD")
			for _, code := range codes {
				fmt.Fprintf(w, "%s\t%v\n", code, rates[code])
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("provider", "", "Override RATES_PROVIDER_NAME (static, coingecko)")
	cmd.Flags().Duration("timeout", 10*time.Second, "Timeout for live providers")

	return cmd
}
