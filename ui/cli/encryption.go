// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/guardian/internal/i18n"
	"github.com/toeirei/guardian/internal/logging"
	"github.com/toeirei/guardian/internal/manifest"
)

func (a *app) encryptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encryption",
		Short: "Encrypt the vault, change its passkey or remove encryption",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set",
			Short: "Encrypt an unencrypted vault with a new passkey",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.vault()
				if err != nil {
					return err
				}
				if s.Encrypted() {
					return fmt.Errorf("%w: vault is already encrypted, use 'encryption change'", manifest.ErrConflict)
				}
				newKey, err := a.newPasskey(cmd)
				if err != nil {
					return err
				}
				return a.rotate(cmd, s, "", newKey, "encryption.enabled")
			},
		},
		&cobra.Command{
			Use:   "change",
			Short: "Re-encrypt every account under a new passkey",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.vault()
				if err != nil {
					return err
				}
				oldKey, err := a.unlock(cmd, s)
				if err != nil {
					return err
				}
				newKey, err := a.newPasskey(cmd)
				if err != nil {
					return err
				}
				return a.rotate(cmd, s, oldKey, newKey, "encryption.changed")
			},
		},
		&cobra.Command{
			Use:   "remove",
			Short: "Decrypt every account and store the vault in plaintext",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.vault()
				if err != nil {
					return err
				}
				oldKey, err := a.unlock(cmd, s)
				if err != nil {
					return err
				}
				return a.rotate(cmd, s, oldKey, "", "encryption.removed")
			},
		},
		&cobra.Command{
			Use:   "verify",
			Short: "Check a passkey against the vault",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.vault()
				if err != nil {
					return err
				}
				if _, err := a.unlock(cmd, s); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("encryption.verify_ok"))
				return nil
			},
		},
	)
	return cmd
}

// rotate drops the cached passkey whatever the outcome: after a partial
// rotation the vault may hold files under either key.
func (a *app) rotate(cmd *cobra.Command, s *manifest.Store, oldKey, newKey, doneMsg string) error {
	defer a.cache.Clear()
	if err := s.ChangeEncryptionKey(oldKey, newKey); err != nil {
		if errors.Is(err, manifest.ErrPartial) {
			logging.Errorf("%s", i18n.T("encryption.partial"))
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), i18n.T(doneMsg))
	return nil
}
