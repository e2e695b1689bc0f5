// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/guardian/internal/i18n"
	"github.com/toeirei/guardian/internal/manifest"
	"github.com/toeirei/guardian/internal/model"
	"github.com/toeirei/guardian/internal/poller"
	"github.com/toeirei/guardian/internal/steam"
)

func (a *app) codeCmd() *cobra.Command {
	var copyCode bool
	cmd := &cobra.Command{
		Use:   "code [steamid]",
		Short: "Print the current Steam Guard code",
		Long: `Prints the login code for the given account, or for the selected account
(poll.selected in the config, else the first account) when none is given.
Codes are only generated from Steam-aligned time; builds without a time
source refuse rather than fall back to the local clock.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.Aligner == nil {
				return steam.ErrUnavailable
			}
			acc, err := a.codeAccount(cmd, args)
			if err != nil {
				return err
			}
			now, err := a.opts.Aligner.AlignedTime(cmd.Context())
			if err != nil {
				return fmt.Errorf("align time: %w", err)
			}
			code, err := steam.GenerateCode(acc.SharedSecret, now)
			if err != nil {
				return fmt.Errorf("%s: %w", acc.String(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("code.line", acc.String(), code, steam.SecondsRemaining(now)))
			if copyCode {
				if err := a.opts.Clipboard(code); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("code.copied"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&copyCode, "copy", "c", false, "copy the code to the clipboard")
	return cmd
}

func (a *app) codeAccount(cmd *cobra.Command, args []string) (model.Account, error) {
	if len(args) == 1 {
		return a.loadAccount(cmd, args[0])
	}
	s, err := a.vault()
	if err != nil {
		return model.Account{}, err
	}
	passkey, err := a.unlock(cmd, s)
	if err != nil {
		return model.Account{}, err
	}
	accounts, err := s.Accounts(passkey)
	if err != nil {
		return model.Account{}, err
	}
	scoped := poller.Policy{Selected: a.cfg.Poll.Selected}.Scope(accounts)
	if len(scoped) == 0 {
		return model.Account{}, fmt.Errorf("%w: %s", manifest.ErrInvalidArgument, i18n.T("account.none"))
	}
	return scoped[0], nil
}
