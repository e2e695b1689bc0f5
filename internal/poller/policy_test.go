// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package poller

import (
	"testing"

	"github.com/toeirei/guardian/internal/manifest"
	"github.com/toeirei/guardian/internal/model"
)

func TestPolicyScope(t *testing.T) {
	accs := []model.Account{alice, bob, carol}
	tests := []struct {
		name   string
		policy Policy
		want   []uint64
	}{
		{"check all", Policy{CheckAll: true, Selected: 2}, []uint64{1, 2, 3}},
		{"default selection", Policy{}, []uint64{1}},
		{"selected", Policy{Selected: 3}, []uint64{3}},
		{"unknown selection", Policy{Selected: 42}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []uint64
			for _, a := range tt.policy.Scope(accs) {
				got = append(got, a.SteamID)
			}
			if !equalIDs(got, tt.want) {
				t.Fatalf("Scope = %v, want %v", got, tt.want)
			}
		})
	}
	if got := (Policy{}).Scope(nil); len(got) != 0 {
		t.Fatalf("empty input should stay empty")
	}
}

func TestPolicyFromSettings(t *testing.T) {
	s := manifest.Settings{CheckAllAccounts: true, AutoConfirmMarketTransactions: true}
	p := PolicyFromSettings(s, 7)
	if !p.CheckAll || p.AutoTrades || !p.AutoMarket || p.Selected != 7 {
		t.Fatalf("unexpected policy %+v", p)
	}
	if p.AutoAccept(model.Confirmation{Type: model.ConfirmationTrade}) {
		t.Fatalf("trade accepted without AutoTrades")
	}
	if !p.AutoAccept(model.Confirmation{Type: model.ConfirmationMarketSell}) {
		t.Fatalf("market sell not accepted")
	}
	if p.AutoAccept(model.Confirmation{Type: model.ConfirmationOther}) {
		t.Fatalf("other confirmations are never automatic")
	}
}
