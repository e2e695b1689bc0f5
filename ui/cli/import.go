// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/toeirei/guardian/internal/i18n"
	"github.com/toeirei/guardian/internal/importer"
)

// importKeyEnv supplies the passkey of an encrypted export.
const importKeyEnv = "GUARDIAN_IMPORT_KEY"

func (a *app) importCmd() *cobra.Command {
	var (
		key          string
		fromManifest bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an account file or a whole exported vault",
		Long: `Imports a single .maFile into the vault. With --manifest the argument is
the manifest.json of an exported vault and every account it lists is
imported. Encrypted exports need the passkey they were written with, given
with --key or GUARDIAN_IMPORT_KEY.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.vault()
			if err != nil {
				return err
			}
			passkey, err := a.unlock(cmd, s)
			if err != nil {
				return err
			}
			if key == "" {
				key = os.Getenv(importKeyEnv)
			}
			im := importer.New(s, importer.WithFs(a.opts.Fs), importer.WithCipher(a.cipher()))
			out := cmd.OutOrStdout()

			if !fromManifest {
				if _, err := im.ImportFile(args[0], key, passkey); err != nil {
					return err
				}
				fmt.Fprintln(out, i18n.T("import.done", 1))
				return nil
			}

			rep, err := im.ImportManifest(args[0], key, passkey)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(rep.Failed))
			for name := range rep.Failed {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("import.failed", name, rep.Failed[name]))
			}
			fmt.Fprintln(out, i18n.T("import.done", len(rep.Imported)))
			if len(rep.Imported) == 0 && len(rep.Failed) > 0 {
				return fmt.Errorf("no accounts imported")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "passkey of an encrypted export")
	cmd.Flags().BoolVar(&fromManifest, "manifest", false, "treat the argument as an exported manifest.json")
	return cmd
}
