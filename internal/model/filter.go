// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// TokenizeQuery splits a search query into case-folded tokens. It returns nil
// for a blank query.
func TokenizeQuery(q string) []string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return nil
	}
	fold := cases.Fold()
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, fold.String(f))
	}
	return out
}

// FilterAccounts keeps the accounts whose name or Steam ID contains every
// token of query. Order is preserved. A blank query returns accounts as is.
func FilterAccounts(accounts []Account, query string) []Account {
	tokens := TokenizeQuery(query)
	if tokens == nil {
		return accounts
	}
	fold := cases.Fold()
	out := make([]Account, 0, len(accounts))
	for _, acc := range accounts {
		hay := fold.String(acc.AccountName) + " " + strconv.FormatUint(acc.SteamID, 10)
		if matchesAll(hay, tokens) {
			out = append(out, acc)
		}
	}
	return out
}

func matchesAll(hay string, tokens []string) bool {
	for _, t := range tokens {
		if !strings.Contains(hay, t) {
			return false
		}
	}
	return true
}
