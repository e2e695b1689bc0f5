// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/guardian/internal/i18n"
	"github.com/toeirei/guardian/internal/logging"
	"github.com/toeirei/guardian/internal/manifest"
	"github.com/toeirei/guardian/internal/security"
	"golang.org/x/term"
)

// passkeyEnv names the environment variable consulted before prompting.
const passkeyEnv = "GUARDIAN_PASSKEY"

var errPasskeyMismatch = errors.New("passkeys do not match")

// PasskeyProvider asks the operator for the vault passkey. ok is false when
// the operator cancelled or entered nothing.
type PasskeyProvider interface {
	ProvidePasskey() (passkey string, ok bool)
}

// promptProvider reads the passkey from the command's stdin.
type promptProvider struct {
	app *app
	cmd *cobra.Command
}

func (p promptProvider) ProvidePasskey() (string, bool) {
	s, err := p.app.readSecret(p.cmd, i18n.T("passkey.prompt"))
	if err != nil {
		logging.Warnf("passkey prompt: %v", err)
		return "", false
	}
	return s, s != ""
}

func (a *app) passkeys(cmd *cobra.Command) PasskeyProvider {
	if a.opts.Passkeys != nil {
		return a.opts.Passkeys
	}
	return promptProvider{app: a, cmd: cmd}
}

// unlock returns the passkey that opens s. Unencrypted vaults need none.
// The passkey comes from the cache, the --passkey flag, GUARDIAN_PASSKEY or
// the PasskeyProvider, in that order, and is verified before it is cached.
func (a *app) unlock(cmd *cobra.Command, s *manifest.Store) (string, error) {
	if !s.Encrypted() {
		return "", nil
	}
	if cached, ok := a.cache.Get(); ok {
		return cached.Reveal(), nil
	}

	candidate := a.passkeyFlag
	if candidate == "" {
		candidate = os.Getenv(passkeyEnv)
	}
	if candidate == "" {
		candidate, _ = a.passkeys(cmd).ProvidePasskey()
	}
	if candidate == "" {
		return "", fmt.Errorf("%w: %s", manifest.ErrAuth, i18n.T("passkey.required"))
	}
	if !s.VerifyPasskey(candidate) {
		return "", manifest.ErrAuth
	}
	a.cache.Set(security.FromString(candidate))
	return candidate, nil
}

// newPasskey asks for a new passkey twice.
func (a *app) newPasskey(cmd *cobra.Command) (string, error) {
	first, err := a.readSecret(cmd, i18n.T("passkey.prompt_new"))
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", fmt.Errorf("%w: empty passkey", manifest.ErrInvalidArgument)
	}
	second, err := a.readSecret(cmd, i18n.T("passkey.prompt_confirm"))
	if err != nil {
		return "", err
	}
	if !security.FromString(first).Equal(security.FromString(second)) {
		return "", fmt.Errorf("%w: %s", errPasskeyMismatch, i18n.T("passkey.mismatch"))
	}
	return first, nil
}

// readSecret reads one line without echo when stdin is a terminal, and as a
// plain line otherwise.
func (a *app) readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read passkey: %w", err)
		}
		return string(b), nil
	}

	if a.in == nil {
		a.in = bufio.NewReader(in)
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read passkey: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
