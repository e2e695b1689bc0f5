// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// rawRunner is satisfied by *bun.DB and bun.Tx.
type rawRunner interface {
	NewRaw(query string, args ...interface{}) *bun.RawQuery
}

// ExecRaw executes a statement bun has no builder for (VACUUM, PRAGMA).
func ExecRaw(ctx context.Context, r rawRunner, query string, args ...interface{}) (sql.Result, error) {
	return r.NewRaw(query, args...).Exec(ctx)
}

// QueryRawInto runs query and scans every row into dest.
func QueryRawInto(ctx context.Context, r rawRunner, dest interface{}, query string, args ...interface{}) error {
	return r.NewRaw(query, args...).Scan(ctx, dest)
}

// ActionCount is one row of the per-action summary.
type ActionCount struct {
	Action string `bun:"action"`
	Count  int    `bun:"count"`
}

// Summary counts audit rows per action, ordered by action name.
func (s *Store) Summary(ctx context.Context) ([]ActionCount, error) {
	var out []ActionCount
	err := QueryRawInto(ctx, s.bun, &out,
		"SELECT action, COUNT(*) AS count FROM audit_log GROUP BY action ORDER BY action")
	if err != nil {
		return nil, err
	}
	return out, nil
}
