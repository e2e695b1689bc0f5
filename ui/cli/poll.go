// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/guardian/internal/i18n"
	"github.com/toeirei/guardian/internal/manifest"
	"github.com/toeirei/guardian/internal/model"
	"github.com/toeirei/guardian/internal/poller"
	"github.com/toeirei/guardian/internal/steam"
)

func (a *app) pollCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Check for pending confirmations and accept the allowed kinds",
		Long: `Runs the confirmation engine. Trade and market confirmations are accepted
automatically when the vault settings allow it; everything else is listed
for a manual decision. Without --once the check repeats every
periodic_checking_interval seconds until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.Client == nil {
				return steam.ErrUnavailable
			}
			s, err := a.vault()
			if err != nil {
				return err
			}
			passkey, err := a.unlock(cmd, s)
			if err != nil {
				return err
			}
			p, err := a.newPoller(cmd, s, passkey)
			if err != nil {
				return err
			}

			if once {
				report, err := p.Tick(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("poll.cycle", report.ID, len(report.Checked), report.Accepted, report.Manual))
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return p.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")
	return cmd
}

// newPoller decrypts the vault once. Every cycle then works on that list, so
// the store lock is not held per tick and renewed sessions are not replaced
// by the copies on disk.
func (a *app) newPoller(cmd *cobra.Command, s *manifest.Store, passkey string) (*poller.Poller, error) {
	accounts, err := s.Accounts(passkey)
	if err != nil {
		return nil, err
	}
	opts := poller.Options{
		Client:    a.opts.Client,
		Refresher: a.opts.Refresher,
		Relogin:   a.opts.Relogin,
		Presenter: &textPresenter{out: cmd.OutOrStdout()},
		Accounts: poller.AccountSourceFunc(func(context.Context) ([]model.Account, error) {
			return slices.Clone(accounts), nil
		}),
		Policy: func() poller.Policy {
			return poller.PolicyFromSettings(s.Settings(), a.cfg.Poll.Selected)
		},
		Clock:       a.opts.Clock,
		Interval:    time.Duration(s.Settings().PeriodicCheckingInterval) * time.Second,
		Concurrency: a.cfg.Poll.Concurrency,
	}
	if opts.Relogin == nil {
		opts.Relogin = &noticeRelogin{out: cmd.ErrOrStderr()}
	}
	if aud := a.auditor(); aud != nil {
		opts.Auditor = aud
	}
	return poller.New(opts)
}

// textPresenter prints the manual batch whenever it changes.
type textPresenter struct {
	mu   sync.Mutex
	out  io.Writer
	last int
}

func (t *textPresenter) ShowConfirmations(_ context.Context, batch []poller.Pending) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(batch) == 0 {
		if t.last != 0 {
			fmt.Fprintln(t.out, i18n.T("poll.none"))
		}
		t.last = 0
		return
	}
	t.last = len(batch)
	for _, p := range batch {
		line := i18n.T("poll.pending", p.Account.String(), p.Confirmation.Headline, p.Confirmation.Type)
		fmt.Fprintln(t.out, pendingStyle.Render(line))
	}
}

// noticeRelogin is used when the build has no interactive login. It tells
// the operator and leaves the session expired.
type noticeRelogin struct {
	out io.Writer
}

func (n *noticeRelogin) Relogin(_ context.Context, acc model.Account) (model.Account, error) {
	fmt.Fprintln(n.out, i18n.T("poll.relogin", acc.String()))
	return acc, steam.ErrReloginCancelled
}
