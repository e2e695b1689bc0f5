// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db stores Guardian's audit trail. It supports SQLite (default),
// PostgreSQL and MySQL through a single Bun-based implementation.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	// SQL drivers for the non-default backends.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// AuditLogModel maps the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int       `bun:"id,pk,autoincrement"`
	Timestamp     time.Time `bun:"timestamp,notnull"`
	Username      string    `bun:"username"`
	Action        string    `bun:"action,notnull"`
	Details       string    `bun:"details,type:text"`
}

// Store is the audit log. It satisfies the Auditor interfaces of the
// manifest and poller packages.
type Store struct {
	bun      *bun.DB
	dbType   string
	clock    clockwork.Clock
	username string
}

// Open connects to the database, creates the schema when missing and
// returns a ready Store.
func Open(dbType, dsn string) (*Store, error) {
	driverName := dbType
	// The pgx stdlib registers driver name "pgx"; map "postgres" to that driver.
	switch dbType {
	case "sqlite", "mysql":
	case "postgres":
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, dbType)
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	configurePool(sqlDB, dbType, dsn)
	dbLogf("db: opened %s driver in %s", driverName, time.Since(start))

	s := &Store{
		bun:      createBunDB(sqlDB, dbType),
		dbType:   dbType,
		clock:    clockwork.NewRealClock(),
		username: currentUsername(),
	}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// configurePool applies conservative pool defaults, overridable through
// GUARDIAN_DB_* environment variables.
func configurePool(sqlDB *sql.DB, dbType, dsn string) {
	const (
		defaultMaxOpenConns    = 4
		defaultConnMaxLifetime = 5 * time.Minute
	)
	maxOpen := envInt("GUARDIAN_DB_MAX_OPEN_CONNS", defaultMaxOpenConns)
	// In-memory SQLite databases are per connection; keep a single one so the
	// schema stays visible.
	if dbType == "sqlite" && strings.Contains(dsn, ":memory:") {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(envInt("GUARDIAN_DB_CONN_MAX_LIFETIME_SECONDS", int(defaultConnMaxLifetime/time.Second))) * time.Second)
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// createBunDB picks the bun dialect for dbType. Open has already rejected
// unknown types, so anything else is treated as sqlite.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	}
	return bun.NewDB(sqlDB, sqlitedialect.New())
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.bun.NewCreateTable().Model((*AuditLogModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func currentUsername() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	if parts := strings.Split(u.Username, `\`); len(parts) > 1 {
		return parts[1]
	}
	return u.Username
}

// BunDB exposes the underlying connection, mainly for tests.
func (s *Store) BunDB() *bun.DB { return s.bun }

// Close releases the connection pool.
func (s *Store) Close() error { return s.bun.Close() }

// Maintain runs engine-specific housekeeping: VACUUM for SQLite and
// VACUUM ANALYZE for PostgreSQL, OPTIMIZE TABLE for MySQL.
func (s *Store) Maintain(ctx context.Context) error {
	var stmt string
	switch s.dbType {
	case "sqlite":
		// PRAGMA optimize is advisory; ignore failures.
		if _, err := ExecRaw(ctx, s.bun, "PRAGMA optimize;"); err != nil {
			dbLogf("db: sqlite optimize failed (ignored): %v", err)
		}
		stmt = "VACUUM;"
	case "postgres":
		stmt = "VACUUM ANALYZE audit_log;"
	case "mysql":
		stmt = "OPTIMIZE TABLE audit_log;"
	default:
		return fmt.Errorf("%w: %q", ErrUnsupported, s.dbType)
	}
	if _, err := ExecRaw(ctx, s.bun, stmt); err != nil {
		return fmt.Errorf("%s maintenance failed: %w", s.dbType, err)
	}
	return nil
}
