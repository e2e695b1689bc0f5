// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package poller

import (
	"github.com/toeirei/guardian/internal/manifest"
	"github.com/toeirei/guardian/internal/model"
)

// Policy decides which accounts a cycle checks and which confirmations it
// accepts without asking.
type Policy struct {
	CheckAll   bool
	AutoTrades bool
	AutoMarket bool
	// Selected is the account checked when CheckAll is off. Zero means the
	// first account.
	Selected uint64
}

// PolicyFromSettings builds a Policy from the persisted manifest settings.
func PolicyFromSettings(s manifest.Settings, selected uint64) Policy {
	return Policy{
		CheckAll:   s.CheckAllAccounts,
		AutoTrades: s.AutoConfirmTrades,
		AutoMarket: s.AutoConfirmMarketTransactions,
		Selected:   selected,
	}
}

// AutoAccept reports whether c is accepted without operator input.
func (p Policy) AutoAccept(c model.Confirmation) bool {
	switch c.Type {
	case model.ConfirmationTrade:
		return p.AutoTrades
	case model.ConfirmationMarketSell:
		return p.AutoMarket
	default:
		return false
	}
}

// Scope narrows accs to the accounts a cycle should check.
func (p Policy) Scope(accs []model.Account) []model.Account {
	if p.CheckAll || len(accs) == 0 {
		return accs
	}
	if p.Selected == 0 {
		return accs[:1]
	}
	if i := indexOf(accs, p.Selected); i >= 0 {
		return accs[i : i+1]
	}
	return nil
}
