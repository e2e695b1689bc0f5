// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/guardian/buildvars"
	"github.com/toeirei/guardian/internal/config"
	"github.com/toeirei/guardian/internal/crypto/filecrypt"
	"github.com/toeirei/guardian/internal/db"
	"github.com/toeirei/guardian/internal/i18n"
	"github.com/toeirei/guardian/internal/logging"
	"github.com/toeirei/guardian/internal/manifest"
	"github.com/toeirei/guardian/internal/state"
	"github.com/toeirei/guardian/internal/steam"
)

// Options carries the collaborators a build links in. The zero value gives a
// fully working offline vault; commands that need the network return
// steam.ErrUnavailable.
type Options struct {
	Client    steam.ConfirmationClient
	Refresher steam.SessionRefresher
	Relogin   steam.Relogin
	Aligner   steam.ClockAligner
	// Passkeys is asked when neither --passkey nor GUARDIAN_PASSKEY is
	// set. Nil means a hidden terminal prompt.
	Passkeys PasskeyProvider

	Fs        afero.Fs
	Clock     clockwork.Clock
	Clipboard func(string) error
}

// app is the state shared by all commands of one invocation.
type app struct {
	opts Options
	cfg  config.Config

	verbose     bool
	passkeyFlag string

	cache *state.PasskeyCache
	in    *bufio.Reader

	store    *manifest.Store
	auditLog *db.Store
	auditErr error
}

// Execute runs the CLI with the offline defaults.
func Execute() error { return ExecuteWith(Options{}) }

// ExecuteWith runs the CLI with the given collaborators. Errors are printed
// in a user-facing form before being returned.
func ExecuteWith(opts Options) error {
	cmd := NewRootCmd(opts)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), describeError(err))
		return err
	}
	return nil
}

// ExitCode maps an error returned by Execute to a process exit status. Vault
// errors that need manual repair get their own code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case !manifest.IsRecoverable(err):
		return 2
	default:
		return 1
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, manifest.ErrParse):
		return i18n.T("error.parse")
	case errors.Is(err, manifest.ErrEncryptedFiles):
		return i18n.T("error.encrypted_files")
	case errors.Is(err, steam.ErrUnavailable):
		return i18n.T("poll.unavailable")
	case errors.Is(err, manifest.ErrAuth):
		return i18n.T("passkey.wrong")
	default:
		return i18n.T("error.generic", err)
	}
}

// NewRootCmd builds a fresh command tree. Tests call it once per case.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	a := &app{opts: opts, cache: state.NewPasskeyCache()}

	cmd := &cobra.Command{
		Use:   "guardian",
		Short: "Guardian keeps Steam Guard authenticators in a local vault.",
		Long: `Guardian stores Steam Guard authenticator files in a directory vault,
optionally encrypted with a passkey, generates login codes and answers
pending trade and market confirmations.`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	cmd.Version = buildvars.Resolve(nil).String()

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.String("config", "", "config file")
	flags.String("vault", "", "vault directory")
	flags.StringVar(&a.passkeyFlag, "passkey", "", "vault passkey (prefer GUARDIAN_PASSKEY or the prompt)")
	flags.String("language", "", `output language ("en", "de")`)
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("db-type", "", "audit database type (sqlite, postgres, mysql)")
	flags.String("db-dsn", "", "audit database DSN")

	cmd.AddCommand(
		a.accountCmd(),
		a.encryptionCmd(),
		a.importCmd(),
		a.codeCmd(),
		a.settingsCmd(),
		a.pollCmd(),
		a.backupCmd(),
		a.restoreCmd(),
		a.regenerateCmd(),
		a.auditCmd(),
		versionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}
	a.cfg, err = config.LoadConfig[config.Config](cmd, config.Defaults(), path)
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		// First run: persist the defaults so the user has a file to edit.
		if writeErr := config.WriteConfigFile(&a.cfg, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		}
	case err != nil:
		return fmt.Errorf("error loading config: %w", err)
	}

	if err := logging.SetLevel(a.cfg.Log.Level); err != nil {
		logging.Warnf("%v", err)
	}
	if a.verbose {
		_ = logging.SetLevel("debug")
		db.SetDebug(true)
	}
	i18n.Init(a.cfg.Language)
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	a.cache.Clear()
	if a.auditLog != nil {
		err := a.auditLog.Close()
		a.auditLog = nil
		return err
	}
	return nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

func (a *app) cipher() *filecrypt.Cipher {
	return filecrypt.New(filecrypt.Params{
		Time:      a.cfg.Crypto.Time,
		MemoryKiB: a.cfg.Crypto.MemoryKiB,
		Threads:   a.cfg.Crypto.Threads,
	})
}

// auditor opens the audit database on first use. A database that cannot be
// opened disables auditing for vault commands instead of failing them.
func (a *app) auditor() manifest.Auditor {
	if a.auditLog == nil && a.auditErr == nil {
		a.auditLog, a.auditErr = db.Open(a.cfg.Database.Type, a.cfg.Database.Dsn)
		if a.auditErr != nil {
			logging.Warnf("audit log unavailable: %v", a.auditErr)
		}
	}
	if a.auditLog == nil {
		return nil
	}
	return a.auditLog
}

func (a *app) storeOptions() []manifest.Option {
	opts := []manifest.Option{manifest.WithFs(a.opts.Fs), manifest.WithCipher(a.cipher())}
	if aud := a.auditor(); aud != nil {
		opts = append(opts, manifest.WithAuditor(aud))
	}
	return opts
}

// vault loads the manifest once per invocation.
func (a *app) vault() (*manifest.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := manifest.Load(a.cfg.Vault.Dir, a.storeOptions()...)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

func (a *app) logAction(action, details string) {
	if aud := a.auditor(); aud != nil {
		if err := aud.LogAction(action, details); err != nil {
			logging.Warnf("audit %s failed: %v", action, err)
		}
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			info := buildvars.Resolve(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", info.Version)
			fmt.Fprintf(out, "commit: %s\n", info.Commit)
			if info.Date != "" {
				fmt.Fprintf(out, "built: %s\n", info.Date)
			}
		},
	}
}
