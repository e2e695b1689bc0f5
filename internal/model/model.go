// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model holds the records shared between the vault, the confirmation
// poller and the CLI.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidAccount is returned when serialized account data cannot be
// decoded or carries no Steam ID.
var ErrInvalidAccount = errors.New("invalid account data")

// Account is an authenticator record as stored in a .maFile. The vault treats
// the serialized form as opaque: only the fields below are read, and the raw
// JSON document is written back unchanged so unknown fields survive a
// save/load cycle.
type Account struct {
	SteamID        uint64
	AccountName    string
	SharedSecret   string
	IdentitySecret string

	raw []byte
}

// accountHeader is the subset of the .maFile document the application reads.
type accountHeader struct {
	AccountName    string `json:"account_name"`
	SharedSecret   string `json:"shared_secret"`
	IdentitySecret string `json:"identity_secret"`
	Session        *struct {
		SteamID json.Number `json:"SteamID"`
	} `json:"Session"`
}

// ParseAccount decodes a .maFile document.
func ParseAccount(data []byte) (Account, error) {
	var h accountHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	if h.Session == nil || h.Session.SteamID == "" {
		return Account{}, fmt.Errorf("%w: missing Session.SteamID", ErrInvalidAccount)
	}
	id, err := strconv.ParseUint(h.Session.SteamID.String(), 10, 64)
	if err != nil || id == 0 {
		return Account{}, fmt.Errorf("%w: bad steam id %q", ErrInvalidAccount, h.Session.SteamID)
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return Account{
		SteamID:        id,
		AccountName:    h.AccountName,
		SharedSecret:   h.SharedSecret,
		IdentitySecret: h.IdentitySecret,
		raw:            raw,
	}, nil
}

// NewAccount builds a minimal account document. It is used by tests and by
// tooling that creates records from scratch.
func NewAccount(steamID uint64, name, sharedSecret, identitySecret string) Account {
	doc := map[string]any{
		"account_name":    name,
		"shared_secret":   sharedSecret,
		"identity_secret": identitySecret,
		"Session": map[string]any{
			"SteamID": steamID,
		},
	}
	raw, _ := json.Marshal(doc)
	return Account{
		SteamID:        steamID,
		AccountName:    name,
		SharedSecret:   sharedSecret,
		IdentitySecret: identitySecret,
		raw:            raw,
	}
}

// Data returns a copy of the serialized document.
func (a Account) Data() []byte {
	out := make([]byte, len(a.raw))
	copy(out, a.raw)
	return out
}

// MarshalJSON emits the stored document verbatim.
func (a Account) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return nil, fmt.Errorf("%w: account %d has no serialized form", ErrInvalidAccount, a.SteamID)
	}
	return a.Data(), nil
}

// UnmarshalJSON implements json.Unmarshaler via ParseAccount.
func (a *Account) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAccount(data)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// String returns a display label that never includes secrets.
func (a Account) String() string {
	if a.AccountName == "" {
		return strconv.FormatUint(a.SteamID, 10)
	}
	return fmt.Sprintf("%s (%d)", a.AccountName, a.SteamID)
}

// AuditLogEntry is one row of the audit trail.
type AuditLogEntry struct {
	ID        int
	Timestamp string
	Username  string
	Action    string
	Details   string
}
