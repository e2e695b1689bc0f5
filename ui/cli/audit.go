// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/guardian/internal/db"
	"github.com/toeirei/guardian/internal/i18n"
)

// auditStore opens the audit database and fails when it is unavailable.
func (a *app) auditStore() (*db.Store, error) {
	a.auditor()
	if a.auditLog == nil {
		return nil, fmt.Errorf("audit log: %w", a.auditErr)
	}
	return a.auditLog, nil
}

func (a *app) auditCmd() *cobra.Command {
	var (
		action string
		since  time.Duration
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail of vault and confirmation actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.auditStore()
			if err != nil {
				return err
			}
			q := db.Query{Action: action, Limit: limit}
			if since > 0 {
				q.Since = a.opts.Clock.Now().Add(-since)
			}
			entries, err := st.Entries(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("audit.none"))
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{strconv.Itoa(e.ID), e.Timestamp, e.Username, e.Action, e.Details})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"id", "time", "user", "action", "details"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "only show this action (e.g. AUTO_ACCEPT)")
	cmd.Flags().DurationVar(&since, "since", 0, "only show entries newer than this (e.g. 24h)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries (0 for all)")

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete audit entries older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.auditStore()
			if err != nil {
				return err
			}
			n, err := st.Prune(cmd.Context(), a.opts.Clock.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("audit.pruned", n))
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "age of the oldest entry to keep")

	var timeout time.Duration
	maintain := &cobra.Command{
		Use:   "maintain",
		Short: "Run database maintenance (VACUUM, OPTIMIZE)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.auditStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			if err := st.Maintain(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("audit.maintained"))
			return nil
		},
	}
	maintain.Flags().DurationVar(&timeout, "timeout", 0, "abort maintenance after this long (0 means no timeout)")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count audit entries per action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.auditStore()
			if err != nil {
				return err
			}
			counts, err := st.Summary(cmd.Context())
			if err != nil {
				return err
			}
			if len(counts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("audit.none"))
				return nil
			}
			rows := make([][]string, 0, len(counts))
			for _, c := range counts {
				rows = append(rows, []string{c.Action, strconv.Itoa(c.Count)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"action", "count"}, rows))
			return nil
		},
	}

	cmd.AddCommand(prune, maintain, stats)
	return cmd
}
