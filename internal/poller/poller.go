// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package poller periodically fetches pending confirmations for one or all
// accounts, auto-accepts the kinds the policy allows and hands the rest to a
// Presenter.
//
// At most one cycle runs at a time. A tick that finds a cycle in progress is
// dropped without doing any I/O. An account whose long-lived session has
// expired is escalated to Relogin and aborts the rest of the cycle so the
// operator never gets more than one login prompt per tick.
//
// Sessions renewed by a refresh or a relogin are kept in memory and replace
// the source's copy of the account on later cycles.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/toeirei/guardian/internal/logging"
	"github.com/toeirei/guardian/internal/model"
	"github.com/toeirei/guardian/internal/steam"
	"golang.org/x/sync/errgroup"
)

// ErrBusy is returned by Tick when another cycle holds the guard.
var ErrBusy = errors.New("poll cycle already running")

// ErrPanic wraps a panic recovered inside a cycle.
var ErrPanic = errors.New("poll cycle panicked")

const (
	DefaultInterval    = 5 * time.Second
	DefaultConcurrency = 4
)

// Pending is a confirmation waiting for a manual decision.
type Pending struct {
	Account      model.Account
	Confirmation model.Confirmation
}

// Presenter receives the manual batch after every cycle. Each call replaces
// the previously presented batch; an empty batch clears it.
type Presenter interface {
	ShowConfirmations(ctx context.Context, batch []Pending)
}

// AccountSource lists the accounts the poller may check, in display order.
type AccountSource interface {
	Accounts(ctx context.Context) ([]model.Account, error)
}

// AccountSourceFunc adapts a function to AccountSource.
type AccountSourceFunc func(ctx context.Context) ([]model.Account, error)

func (f AccountSourceFunc) Accounts(ctx context.Context) ([]model.Account, error) { return f(ctx) }

// Auditor records auto-accept dispatches.
type Auditor interface {
	LogAction(action, details string) error
}

// Options wires a Poller. Client, Accounts and Presenter are required.
type Options struct {
	Client    steam.ConfirmationClient
	Refresher steam.SessionRefresher
	Relogin   steam.Relogin
	Presenter Presenter
	Accounts  AccountSource
	// Policy is read at the start of every cycle so settings changes apply
	// without restarting the poller.
	Policy      func() Policy
	Auditor     Auditor
	Clock       clockwork.Clock
	Interval    time.Duration
	Concurrency int
}

// CycleReport summarizes one completed cycle.
type CycleReport struct {
	ID        string
	Checked   []uint64
	Refreshed []uint64
	Skipped   []uint64
	// Escalated is the account handed to Relogin, zero when none.
	Escalated uint64
	Aborted   bool
	Manual    int
	Accepted  int
	// AcceptFailures counts accounts whose bulk accept call failed.
	AcceptFailures int
}

// Poller is the confirmation engine.
type Poller struct {
	opts  Options
	guard sync.Mutex
	wg    sync.WaitGroup
	// sessions is only touched while guard is held.
	sessions map[uint64]model.Account
}

// New validates opts and fills defaults.
func New(opts Options) (*Poller, error) {
	if opts.Client == nil || opts.Accounts == nil || opts.Presenter == nil {
		return nil, fmt.Errorf("poller: client, account source and presenter are required")
	}
	if opts.Policy == nil {
		opts.Policy = func() Policy { return Policy{} }
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Poller{opts: opts, sessions: map[uint64]model.Account{}}, nil
}

// Run ticks every Interval until ctx is cancelled. Each tick runs in its own
// goroutine; Run waits for in-flight cycles before returning.
func (p *Poller) Run(ctx context.Context) error {
	ticker := p.opts.Clock.NewTicker(p.opts.Interval)
	defer ticker.Stop()
	defer p.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				report, err := p.Tick(ctx)
				switch {
				case errors.Is(err, ErrBusy):
					logging.Debugf("tick dropped: previous cycle still running")
				case err != nil:
					logging.Warnf("poll cycle %s failed: %v", report.ID, err)
				}
			}()
		}
	}
}

// Tick runs one cycle, or returns ErrBusy immediately when a cycle is
// already in progress.
func (p *Poller) Tick(ctx context.Context) (report CycleReport, err error) {
	if !p.guard.TryLock() {
		return CycleReport{}, ErrBusy
	}
	defer p.guard.Unlock()

	report.ID = uuid.NewString()
	log := logging.With("cycle", report.ID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from panic", "panic", r)
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	policy := p.opts.Policy()
	all, err := p.opts.Accounts.Accounts(ctx)
	if err != nil {
		return report, fmt.Errorf("list accounts: %w", err)
	}
	targets := policy.Scope(p.withSessions(all))
	if len(targets) == 0 {
		log.Debug("no accounts in scope")
		return report, nil
	}

	outcomes := p.fetchAll(ctx, targets)

	var (
		manual []Pending
		auto   = make([][]model.Confirmation, len(targets))
	)
	for i, o := range outcomes {
		id := targets[i].SteamID
		switch o.status {
		case statusOK:
			report.Checked = append(report.Checked, id)
			for _, c := range o.confs {
				if policy.AutoAccept(c) {
					auto[i] = append(auto[i], c)
				} else {
					manual = append(manual, Pending{Account: targets[i], Confirmation: c})
				}
			}
		case statusRefreshed:
			report.Refreshed = append(report.Refreshed, id)
			p.sessions[id] = o.account
		case statusSkipped:
			report.Skipped = append(report.Skipped, id)
			log.Debug("account skipped", "steam_id", id, "err", o.err)
		case statusExpired:
			if report.Escalated == 0 {
				report.Escalated = id
				report.Aborted = true
			}
		}
	}

	if report.Escalated != 0 {
		acc := targets[indexOf(targets, report.Escalated)]
		log.Warn("session expired, asking for login", "account", acc.String())
		if p.opts.Relogin == nil {
			log.Warn("no relogin handler configured", "steam_id", acc.SteamID)
		} else if renewed, rerr := p.opts.Relogin.Relogin(ctx, acc); rerr != nil {
			log.Warn("relogin did not complete", "steam_id", acc.SteamID, "err", rerr)
		} else {
			p.sessions[acc.SteamID] = renewed
		}
	}

	report.Manual = len(manual)
	p.opts.Presenter.ShowConfirmations(ctx, manual)

	for i, confs := range auto {
		if len(confs) == 0 {
			continue
		}
		acc := targets[i]
		if aerr := p.opts.Client.AcceptMultiple(ctx, acc, confs); aerr != nil {
			report.AcceptFailures++
			log.Warn("auto-accept failed", "steam_id", acc.SteamID, "count", len(confs), "err", aerr)
			continue
		}
		report.Accepted += len(confs)
		p.audit("AUTO_ACCEPT", fmt.Sprintf("steam_id: %d, count: %d, cycle: %s", acc.SteamID, len(confs), report.ID))
	}

	log.Debug("cycle complete", "checked", len(report.Checked), "manual", report.Manual, "accepted", report.Accepted)
	return report, nil
}

type status int

const (
	statusCancelled status = iota
	statusOK
	statusRefreshed
	statusSkipped
	statusExpired
)

type outcome struct {
	status status
	confs  []model.Confirmation
	// account is the renewed account of a statusRefreshed outcome.
	account model.Account
	err     error
}

var errAbort = errors.New("abort cycle")

// fetchAll fetches every target concurrently. The first expired session
// cancels the group; accounts that had not started or that fail because of
// the cancellation end up statusCancelled and contribute nothing. Fetches
// that completed still count.
func (p *Poller) fetchAll(ctx context.Context, targets []model.Account) []outcome {
	outcomes := make([]outcome, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, acc := range targets {
		i, acc := i, acc
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logging.Errorf("fetch for %d panicked: %v", acc.SteamID, r)
					outcomes[i] = outcome{status: statusSkipped, err: fmt.Errorf("%w: %v", ErrPanic, r)}
				}
			}()
			o := p.fetchOne(gctx, acc)
			outcomes[i] = o
			if o.status == statusExpired {
				return errAbort
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (p *Poller) fetchOne(ctx context.Context, acc model.Account) outcome {
	if ctx.Err() != nil {
		return outcome{status: statusCancelled}
	}
	confs, err := p.opts.Client.FetchConfirmations(ctx, acc)
	switch {
	case err == nil:
		return outcome{status: statusOK, confs: confs}
	case errors.Is(err, steam.ErrSessionExpired):
		return outcome{status: statusExpired, err: err}
	case errors.Is(err, steam.ErrSessionInvalid):
		return p.refresh(ctx, acc)
	case ctx.Err() != nil:
		return outcome{status: statusCancelled}
	default:
		return outcome{status: statusSkipped, err: err}
	}
}

// refresh renews the session in memory only. The account is not fetched
// again until the next cycle.
func (p *Poller) refresh(ctx context.Context, acc model.Account) outcome {
	if p.opts.Refresher == nil {
		return outcome{status: statusSkipped, err: steam.ErrSessionInvalid}
	}
	renewed, ok, err := p.opts.Refresher.Refresh(ctx, acc)
	switch {
	case errors.Is(err, steam.ErrSessionExpired):
		return outcome{status: statusExpired, err: err}
	case err != nil:
		return outcome{status: statusSkipped, err: err}
	case !ok:
		return outcome{status: statusSkipped, err: steam.ErrSessionInvalid}
	}
	return outcome{status: statusRefreshed, account: renewed}
}

// withSessions replaces accounts whose session was renewed in an earlier
// cycle with the renewed copy.
func (p *Poller) withSessions(accs []model.Account) []model.Account {
	if len(p.sessions) == 0 {
		return accs
	}
	out := make([]model.Account, len(accs))
	for i, a := range accs {
		if renewed, ok := p.sessions[a.SteamID]; ok {
			a = renewed
		}
		out[i] = a
	}
	return out
}

func (p *Poller) audit(action, details string) {
	if p.opts.Auditor == nil {
		return
	}
	if err := p.opts.Auditor.LogAction(action, details); err != nil {
		logging.Warnf("audit %s failed: %v", action, err)
	}
}

func indexOf(accs []model.Account, steamID uint64) int {
	for i, a := range accs {
		if a.SteamID == steamID {
			return i
		}
	}
	return -1
}
