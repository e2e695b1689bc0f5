// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/toeirei/guardian/internal/i18n"
)

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the confirmation settings stored in the vault",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.vault()
			if err != nil {
				return err
			}
			set := s.Settings()
			rows := [][]string{
				{"periodic_checking", strconv.FormatBool(set.PeriodicChecking)},
				{"periodic_checking_interval", strconv.Itoa(set.PeriodicCheckingInterval)},
				{"periodic_checking_checkall", strconv.FormatBool(set.CheckAllAccounts)},
				{"auto_confirm_trades", strconv.FormatBool(set.AutoConfirmTrades)},
				{"auto_confirm_market_transactions", strconv.FormatBool(set.AutoConfirmMarketTransactions)},
				{"encrypted", strconv.FormatBool(s.Encrypted())},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"setting", "value"}, rows))
			return nil
		},
	}

	var (
		periodic, checkAll, autoTrades, autoMarket bool
		interval                                   int
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings; only the flags given are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.vault()
			if err != nil {
				return err
			}
			next := s.Settings()
			f := cmd.Flags()
			if f.Changed("periodic") {
				next.PeriodicChecking = periodic
			}
			if f.Changed("interval") {
				next.PeriodicCheckingInterval = interval
			}
			if f.Changed("check-all") {
				next.CheckAllAccounts = checkAll
			}
			if f.Changed("auto-trades") {
				next.AutoConfirmTrades = autoTrades
			}
			if f.Changed("auto-market") {
				next.AutoConfirmMarketTransactions = autoMarket
			}
			if err := s.UpdateSettings(next); err != nil {
				return err
			}
			if err := s.MarkFirstRunDone(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("settings.saved"))
			return nil
		},
	}
	set.Flags().BoolVar(&periodic, "periodic", false, "check for confirmations periodically")
	set.Flags().IntVar(&interval, "interval", 0, "seconds between checks (at least 1)")
	set.Flags().BoolVar(&checkAll, "check-all", false, "check every account instead of the selected one")
	set.Flags().BoolVar(&autoTrades, "auto-trades", false, "accept trade confirmations automatically")
	set.Flags().BoolVar(&autoMarket, "auto-market", false, "accept market listings automatically")

	cmd.AddCommand(show, set)
	return cmd
}
