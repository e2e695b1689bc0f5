// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"strings"
	"testing"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), ErrLocked},
		{"mysql lock wait", errors.New("Error 1205: Lock wait timeout exceeded"), ErrLocked},
		{"postgres lock", errors.New("could not obtain lock (SQLSTATE 55P03)"), ErrLocked},
		{"sqlite readonly", errors.New("attempt to write a readonly database (8)"), ErrReadOnly},
		{"postgres read only", errors.New("cannot execute INSERT in a read-only transaction (SQLSTATE 25006)"), ErrReadOnly},
		{"mysql read only", errors.New("Error 1290: The MySQL server is running with the --read-only option"), ErrReadOnly},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapDBError(tc.in)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if !strings.Contains(got.Error(), tc.in.Error()) {
				t.Fatalf("driver message lost: %v", got)
			}
		})
	}
}

func TestMapDBError_Passthrough(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	in := errors.New("connection reset by peer")
	if got := MapDBError(in); got != in {
		t.Fatalf("unrecognised errors must be returned as-is, got %v", got)
	}
}
