// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package steam declares the remote capabilities the confirmation engine
// consumes. The network protocol lives outside this repository; this package
// only carries the contracts, the Steam Guard code algorithm, an offline
// clock aligner and a mock for tests.
package steam

import (
	"context"
	"errors"

	"github.com/toeirei/guardian/internal/model"
)

var (
	// ErrSessionInvalid is transient: the session can be renewed with a
	// SessionRefresher.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrSessionExpired means only an interactive login can recover the
	// account.
	ErrSessionExpired = errors.New("session expired")
	// ErrNetwork covers transport failures. The engine skips the account.
	ErrNetwork = errors.New("network error")
	// ErrReloginCancelled is returned by a Relogin the operator dismissed.
	ErrReloginCancelled = errors.New("relogin cancelled")
	// ErrUnavailable is returned when no network client is wired in.
	ErrUnavailable = errors.New("steam client not available")
)

// ConfirmationClient fetches and answers pending confirmations.
type ConfirmationClient interface {
	FetchConfirmations(ctx context.Context, acc model.Account) ([]model.Confirmation, error)
	AcceptMultiple(ctx context.Context, acc model.Account, confs []model.Confirmation) error
}

// SessionRefresher renews an account's session in memory. It returns the
// renewed account and true when the session was renewed, false when nothing
// was done, and ErrSessionExpired when a full login is needed.
type SessionRefresher interface {
	Refresh(ctx context.Context, acc model.Account) (model.Account, bool, error)
}

// ClockAligner returns the server-synchronized time in Unix seconds.
type ClockAligner interface {
	AlignedTime(ctx context.Context) (int64, error)
}

// Relogin asks the operator to log an account in again and returns the
// account carrying the new session.
type Relogin interface {
	Relogin(ctx context.Context, acc model.Account) (model.Account, error)
}
