// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/toeirei/guardian/internal/i18n"
	"github.com/toeirei/guardian/internal/manifest"
	"github.com/toeirei/guardian/internal/model"
)

func (a *app) accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "List, inspect, reorder and remove vault accounts",
	}
	cmd.AddCommand(a.accountListCmd(), a.accountShowCmd(), a.accountRemoveCmd(), a.accountMoveCmd())
	return cmd
}

func (a *app) accountListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts in vault order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.vault()
			if err != nil {
				return err
			}
			passkey, err := a.unlock(cmd, s)
			if err != nil {
				return err
			}
			accounts, err := s.Accounts(passkey)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("account.none"))
				return nil
			}

			positions := make(map[uint64]int, len(accounts))
			for i, acc := range accounts {
				positions[acc.SteamID] = i + 1
			}
			rows := [][]string{}
			for _, acc := range model.FilterAccounts(accounts, search) {
				rows = append(rows, []string{
					strconv.Itoa(positions[acc.SteamID]),
					strconv.FormatUint(acc.SteamID, 10),
					acc.AccountName,
				})
			}
			headers := []string{i18n.T("account.header_pos"), i18n.T("account.header_id"), i18n.T("account.header_name")}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show accounts whose name or Steam ID matches")
	return cmd
}

func (a *app) accountShowCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <steamid>",
		Short: "Show one account",
		Long: `Prints the account summary. With --raw the full decrypted document is
written to stdout, secrets included.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := a.loadAccount(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if raw {
				_, err := out.Write(append(acc.Data(), '\n'))
				return err
			}
			fmt.Fprintf(out, "%s: %d\n", i18n.T("account.header_id"), acc.SteamID)
			fmt.Fprintf(out, "%s: %s\n", i18n.T("account.header_name"), acc.AccountName)
			fmt.Fprintf(out, "shared_secret: %t\n", acc.SharedSecret != "")
			fmt.Fprintf(out, "identity_secret: %t\n", acc.IdentitySecret != "")
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the full account document")
	return cmd
}

func (a *app) accountRemoveCmd() *cobra.Command {
	var keepFile bool
	cmd := &cobra.Command{
		Use:   "remove <steamid>",
		Short: "Remove an account from the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSteamID(args[0])
			if err != nil {
				return err
			}
			s, err := a.vault()
			if err != nil {
				return err
			}
			if !hasEntry(s, id) {
				return fmt.Errorf("%w: %s", manifest.ErrInvalidArgument, i18n.T("account.not_found", id))
			}
			if err := s.RemoveAccount(model.Account{SteamID: id}, !keepFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("account.removed", strconv.FormatUint(id, 10)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepFile, "keep-file", false, "keep the account file on disk")
	return cmd
}

func (a *app) accountMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <steamid> <position>",
		Short: "Move an account to a 1-based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSteamID(args[0])
			if err != nil {
				return err
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: position %q", manifest.ErrInvalidArgument, args[1])
			}
			s, err := a.vault()
			if err != nil {
				return err
			}
			entries := s.Entries()
			from := -1
			for i, e := range entries {
				if e.SteamID == id {
					from = i
				}
			}
			if from < 0 {
				return fmt.Errorf("%w: %s", manifest.ErrInvalidArgument, i18n.T("account.not_found", id))
			}
			if to < 1 || to > len(entries) {
				return fmt.Errorf("%w: position must be between 1 and %d", manifest.ErrInvalidArgument, len(entries))
			}
			if err := s.MoveEntry(from, to-1); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("account.moved", strconv.FormatUint(id, 10), to))
			return nil
		},
	}
}

// loadAccount resolves a Steam ID argument to a decrypted account.
func (a *app) loadAccount(cmd *cobra.Command, arg string) (model.Account, error) {
	id, err := parseSteamID(arg)
	if err != nil {
		return model.Account{}, err
	}
	s, err := a.vault()
	if err != nil {
		return model.Account{}, err
	}
	passkey, err := a.unlock(cmd, s)
	if err != nil {
		return model.Account{}, err
	}
	return s.Account(id, passkey)
}

func parseSteamID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid Steam ID %q", manifest.ErrInvalidArgument, arg)
	}
	return id, nil
}

func hasEntry(s *manifest.Store, id uint64) bool {
	for _, e := range s.Entries() {
		if e.SteamID == id {
			return true
		}
	}
	return false
}
