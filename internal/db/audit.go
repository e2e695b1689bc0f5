// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"time"

	"github.com/toeirei/guardian/internal/model"
)

// Query narrows an audit listing.
type Query struct {
	// Action keeps only rows with exactly this action when set.
	Action string
	// Since keeps rows at or after this time when non-zero.
	Since time.Time
	// Limit caps the number of rows; zero means no limit.
	Limit int
}

// LogAction records an action performed by the current OS user.
func (s *Store) LogAction(action, details string) error {
	row := &AuditLogModel{
		Timestamp: s.clock.Now().UTC(),
		Username:  s.username,
		Action:    action,
		Details:   details,
	}
	_, err := s.bun.NewInsert().Model(row).Exec(context.Background())
	return MapDBError(err)
}

// Entries returns audit rows, newest first.
func (s *Store) Entries(ctx context.Context, q Query) ([]model.AuditLogEntry, error) {
	var rows []AuditLogModel
	sel := s.bun.NewSelect().Model(&rows).OrderExpr("timestamp DESC").OrderExpr("id DESC")
	if q.Action != "" {
		sel = sel.Where("action = ?", q.Action)
	}
	if !q.Since.IsZero() {
		sel = sel.Where("timestamp >= ?", q.Since.UTC())
	}
	if q.Limit > 0 {
		sel = sel.Limit(q.Limit)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.AuditLogEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.AuditLogEntry{
			ID:        r.ID,
			Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
			Username:  r.Username,
			Action:    r.Action,
			Details:   r.Details,
		})
	}
	return out, nil
}

// Prune deletes rows older than before and reports how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.bun.NewDelete().Model((*AuditLogModel)(nil)).Where("timestamp < ?", before.UTC()).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
