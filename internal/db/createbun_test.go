// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"bytes"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/toeirei/guardian/internal/logging"
	"github.com/uptrace/bun/dialect"
)

func TestCreateBunDB_Dialects(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	want := map[string]dialect.Name{
		"sqlite":   dialect.SQLite,
		"postgres": dialect.PG,
		"mysql":    dialect.MySQL,
		"":         dialect.SQLite,
	}
	for dbType, name := range want {
		if got := createBunDB(sqlDB, dbType).Dialect().Name(); got != name {
			t.Fatalf("%q: expected dialect %v, got %v", dbType, name, got)
		}
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	_ = logging.SetLevel("debug")
	t.Cleanup(func() {
		SetDebug(false)
		logging.SetOutput(os.Stderr)
		_ = logging.SetLevel("info")
	})

	dbLogf("quiet %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("debug output without SetDebug: %q", buf.String())
	}
	SetDebug(true)
	dbLogf("traced %d", 2)
	if out := buf.String(); !strings.Contains(out, "traced 2") || !strings.Contains(out, "component=db") {
		t.Fatalf("unexpected trace output: %q", out)
	}
}
