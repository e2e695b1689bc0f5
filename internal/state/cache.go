// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package state holds transient in-memory process state that several commands
// share, such as the vault passkey once the operator has entered it.
package state

import (
	"sync"

	"github.com/toeirei/guardian/internal/security"
)

// PasskeyCache is a concurrency-safe mailbox for the vault passkey. The value
// lives only in memory and is never written anywhere.
type PasskeyCache struct {
	mu    sync.RWMutex
	value security.Secret
}

// NewPasskeyCache returns an empty cache.
func NewPasskeyCache() *PasskeyCache { return &PasskeyCache{} }

// Set stores a copy of pass, replacing (and wiping) any previous value.
func (p *PasskeyCache) Set(pass security.Secret) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value.Zero()
	if pass == nil {
		p.value = nil
		return
	}
	p.value = make(security.Secret, len(pass))
	copy(p.value, pass)
}

// Get returns a copy of the cached passkey and whether one is set.
func (p *PasskeyCache) Get() (security.Secret, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.value == nil {
		return nil, false
	}
	out := make(security.Secret, len(p.value))
	copy(out, p.value)
	return out, true
}

// Clear wipes the cached passkey.
func (p *PasskeyCache) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value.Zero()
	p.value = nil
}
