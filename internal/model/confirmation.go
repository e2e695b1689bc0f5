// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "time"

// ConfirmationType classifies a pending mobile confirmation.
type ConfirmationType int

const (
	ConfirmationOther ConfirmationType = iota
	ConfirmationTrade
	ConfirmationMarketSell
)

func (t ConfirmationType) String() string {
	switch t {
	case ConfirmationTrade:
		return "trade"
	case ConfirmationMarketSell:
		return "market"
	default:
		return "other"
	}
}

// Confirmation is a pending trade or market action fetched from the remote
// service. It is never persisted.
type Confirmation struct {
	ID       uint64
	Nonce    uint64
	Type     ConfirmationType
	Creator  uint64
	Headline string
	Summary  []string
	Time     time.Time
}
