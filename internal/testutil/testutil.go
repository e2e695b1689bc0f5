// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds fakes shared by package tests.
package testutil

import (
	"sync"

	"github.com/toeirei/guardian/internal/crypto/filecrypt"
)

// FastParams keeps key derivation cheap in tests.
var FastParams = filecrypt.Params{Time: 1, MemoryKiB: 64, Threads: 1}

// FastCipher returns a real cipher tuned for test speed.
func FastCipher() *filecrypt.Cipher { return filecrypt.New(FastParams) }

// AuditRecord is one recorded LogAction call.
type AuditRecord struct {
	Action  string
	Details string
}

// Auditor records LogAction calls. Err, when set, is returned from every call
// after recording it.
type Auditor struct {
	mu      sync.Mutex
	records []AuditRecord
	Err     error
}

func (a *Auditor) LogAction(action, details string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, AuditRecord{Action: action, Details: details})
	return a.Err
}

// Actions returns the recorded action names in call order.
func (a *Auditor) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.records))
	for i, r := range a.records {
		out[i] = r.Action
	}
	return out
}

// Records returns a copy of everything recorded so far.
func (a *Auditor) Records() []AuditRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditRecord(nil), a.records...)
}
