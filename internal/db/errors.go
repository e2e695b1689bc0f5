// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupported is returned for database types other than sqlite,
	// postgres and mysql.
	ErrUnsupported = errors.New("unsupported database type")
	// ErrLocked means another writer holds the database; retrying later may succeed.
	ErrLocked = errors.New("audit database is locked")
	// ErrReadOnly means the database refuses writes.
	ErrReadOnly = errors.New("audit database is read-only")
)

// driverMarkers maps lower-cased driver message fragments to sentinels.
// Matching on text keeps this file independent of the three drivers.
var driverMarkers = []struct {
	fragments []string
	sentinel  error
}{
	// sqlite SQLITE_BUSY, mysql 1205 lock wait timeout, postgres 55P03.
	{[]string{"database is locked", "sqlite_busy", "lock wait timeout", "55p03"}, ErrLocked},
	// sqlite SQLITE_READONLY, postgres 25006, mysql --read-only (1290, 1836).
	{[]string{"readonly database", "read-only", "25006", "error 1290", "error 1836"}, ErrReadOnly},
}

// MapDBError classifies driver errors into ErrLocked and ErrReadOnly. The
// driver message is kept in the wrapped error; anything unrecognised is
// returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, m := range driverMarkers {
		for _, f := range m.fragments {
			if strings.Contains(msg, f) {
				return fmt.Errorf("%w: %v", m.sentinel, err)
			}
		}
	}
	return err
}
