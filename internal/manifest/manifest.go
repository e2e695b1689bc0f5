// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/toeirei/guardian/internal/crypto/filecrypt"
)

const (
	// FileName is the registry document inside the vault directory.
	FileName = "manifest.json"
	// AccountFileExt is the extension of per-account files.
	AccountFileExt = ".maFile"
	// DefaultCheckInterval is the default poll period in seconds.
	DefaultCheckInterval = 5
)

// Settings are the confirmation engine options persisted in the manifest.
type Settings struct {
	PeriodicChecking              bool `json:"periodic_checking"`
	PeriodicCheckingInterval      int  `json:"periodic_checking_interval"`
	CheckAllAccounts              bool `json:"periodic_checking_checkall"`
	AutoConfirmMarketTransactions bool `json:"auto_confirm_market_transactions"`
	AutoConfirmTrades             bool `json:"auto_confirm_trades"`
}

// DefaultSettings returns the settings of a fresh manifest.
func DefaultSettings() Settings {
	return Settings{PeriodicCheckingInterval: DefaultCheckInterval}
}

// Entry links a Steam account to its file and encryption parameters. Salt
// and IV are both set or both nil. KDF holds the key derivation work factors
// the file was sealed with; entries without it open with the configured
// cipher.
type Entry struct {
	IV       *string           `json:"encryption_iv"`
	Salt     *string           `json:"encryption_salt"`
	KDF      *filecrypt.Params `json:"kdf,omitempty"`
	Filename string            `json:"filename"`
	SteamID  uint64            `json:"steamid"`
}

// Encrypted reports whether the entry carries encryption parameters.
func (e Entry) Encrypted() bool { return e.Salt != nil && e.IV != nil }

// Manifest is the on-disk registry document.
type Manifest struct {
	Encrypted bool    `json:"encrypted"`
	FirstRun  bool    `json:"first_run"`
	Entries   []Entry `json:"entries"`
	Settings
}

func newManifest() Manifest {
	return Manifest{
		FirstRun: true,
		Entries:  []Entry{},
		Settings: DefaultSettings(),
	}
}

// FilenameFor returns the deterministic account file name for a Steam ID.
func FilenameFor(steamID uint64) string {
	return strconv.FormatUint(steamID, 10) + AccountFileExt
}

// Decode parses a manifest document. Fields absent from data keep their
// defaults. Any decoding problem is reported as ErrParse.
func Decode(data []byte) (Manifest, error) {
	m := newManifest()
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if m.Entries == nil {
		m.Entries = []Entry{}
	}
	seen := make(map[uint64]bool, len(m.Entries))
	for _, e := range m.Entries {
		if (e.Salt == nil) != (e.IV == nil) {
			return Manifest{}, fmt.Errorf("%w: entry %d has only one of salt and iv", ErrParse, e.SteamID)
		}
		if e.KDF != nil && e.Salt == nil {
			return Manifest{}, fmt.Errorf("%w: entry %d has kdf params but no salt", ErrParse, e.SteamID)
		}
		if e.Filename == "" {
			return Manifest{}, fmt.Errorf("%w: entry %d has no filename", ErrParse, e.SteamID)
		}
		if e.Filename != filepath.Base(e.Filename) || e.Filename == "." || e.Filename == ".." {
			return Manifest{}, fmt.Errorf("%w: entry %d filename %q is not a plain file name", ErrParse, e.SteamID, e.Filename)
		}
		if seen[e.SteamID] {
			return Manifest{}, fmt.Errorf("%w: duplicate entry for %d", ErrParse, e.SteamID)
		}
		seen[e.SteamID] = true
	}
	return m, nil
}

// Encode serializes m in the registry format.
func Encode(m Manifest) ([]byte, error) {
	if m.Entries == nil {
		m.Entries = []Entry{}
	}
	return json.Marshal(m)
}
