// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/guardian/internal/backup"
	"github.com/toeirei/guardian/internal/i18n"
	"github.com/toeirei/guardian/internal/manifest"
)

func (a *app) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file>",
		Short: "Write a compressed (zstd) snapshot of the vault",
		Long: `Writes the manifest and every account file into a single zstd-compressed
JSON document. Encrypted accounts stay encrypted in the backup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.vault()
			if err != nil {
				return err
			}
			snap, err := backup.Create(s, a.opts.Clock.Now())
			if err != nil {
				return err
			}
			if err := backup.WriteFile(a.opts.Fs, args[0], snap); err != nil {
				return err
			}
			a.logAction("BACKUP_VAULT", fmt.Sprintf("file: %s, files: %d", args[0], len(snap.Files)))
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("backup.written", args[0], len(snap.Files)))
			return nil
		},
	}
}

func (a *app) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore a backup into an empty vault directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := backup.ReadFile(a.opts.Fs, args[0])
			if err != nil {
				return err
			}
			dir := a.cfg.Vault.Dir
			if err := backup.Restore(a.opts.Fs, dir, snap); err != nil {
				return err
			}
			a.logAction("RESTORE_VAULT", fmt.Sprintf("file: %s, files: %d", args[0], len(snap.Files)))
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("restore.done", dir))
			return nil
		},
	}
}

func (a *app) regenerateCmd() *cobra.Command {
	var noScan bool
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Rebuild manifest.json from the account files in the vault",
		Long: `Replaces the manifest with a fresh one. By default every plaintext .maFile
in the vault directory is indexed; encrypted files cannot be indexed and make
the command fail without touching the existing manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := manifest.Regenerate(a.cfg.Vault.Dir, !noScan, a.storeOptions()...)
			if err != nil {
				return err
			}
			a.store = s
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("regenerate.done", len(s.Entries())))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noScan, "empty", false, "write an empty manifest instead of scanning")
	return cmd
}
