// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package manifest

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"slices"
	"sync"

	"github.com/spf13/afero"
	"github.com/toeirei/guardian/internal/crypto/filecrypt"
	"github.com/toeirei/guardian/internal/logging"
	"github.com/toeirei/guardian/internal/model"
)

// Cipher is the account file encryption contract. *filecrypt.Cipher is the
// production implementation. Every failure is reported as false.
type Cipher interface {
	Params() filecrypt.Params
	RandomSalt() string
	RandomIV() string
	Encrypt(passkey, salt, iv, plaintext string) (string, bool)
	Decrypt(passkey, salt, iv, ciphertext string) (string, bool)
}

// Auditor receives a record of every committed mutation. Audit failures are
// logged and never fail the operation.
type Auditor interface {
	LogAction(action, details string) error
}

// Option configures a Store.
type Option func(*Store)

// WithCipher overrides the default argon2id/AES-GCM cipher.
func WithCipher(c Cipher) Option { return func(s *Store) { s.cipher = c } }

// WithFs sets the filesystem the vault lives on. Defaults to the OS
// filesystem.
func WithFs(fs afero.Fs) Option { return func(s *Store) { s.fs = fs } }

// WithAuditor records mutations to a.
func WithAuditor(a Auditor) Option { return func(s *Store) { s.auditor = a } }

// Store is the loaded vault. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	dir     string
	fs      afero.Fs
	cipher  Cipher
	auditor Auditor
	m       Manifest
}

func newStore(dir string, opts ...Option) *Store {
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.cipher == nil {
		s.cipher = filecrypt.New(filecrypt.DefaultParams)
	}
	return s
}

// Load opens the vault in dir.
//
// A missing directory yields a fresh, unencrypted manifest which is written
// immediately. An existing directory without a readable manifest fails with
// ErrParse. Entries whose account file is gone are dropped (in memory only)
// and an encrypted manifest with no entries is reset to unencrypted.
func Load(dir string, opts ...Option) (*Store, error) {
	s := newStore(dir, opts...)

	exists, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrParse, dir, err)
	}
	if !exists {
		s.m = newManifest()
		if err := s.persist(); err != nil {
			return nil, err
		}
		logging.Infof("created new vault in %s", dir)
		return s, nil
	}

	data, err := afero.ReadFile(s.fs, s.manifestPath())
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrParse, s.manifestPath(), err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s.m = m

	if s.m.Encrypted && len(s.m.Entries) == 0 {
		s.m.Encrypted = false
		if err := s.persist(); err != nil {
			logging.Warnf("could not clear encryption flag on empty vault: %v", err)
		}
	}

	kept := s.m.Entries[:0:0]
	for _, e := range s.m.Entries {
		ok, err := afero.Exists(s.fs, s.path(e.Filename))
		if err != nil || !ok {
			logging.Warnf("dropping manifest entry %d: %s is missing", e.SteamID, e.Filename)
			continue
		}
		kept = append(kept, e)
	}
	s.m.Entries = kept
	if len(kept) == 0 {
		s.m.Encrypted = false
	}
	return s, nil
}

// Dir returns the vault directory.
func (s *Store) Dir() string { return s.dir }

// Fs returns the filesystem backing the vault.
func (s *Store) Fs() afero.Fs { return s.fs }

// Encrypted reports whether account files are encrypted.
func (s *Store) Encrypted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Encrypted
}

// FirstRun reports whether the vault was never used interactively.
func (s *Store) FirstRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.FirstRun
}

// Entries returns a copy of the ordered entry list.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.m.Entries)
}

// Settings returns the persisted engine settings.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Settings
}

// Snapshot returns a copy of the whole manifest.
func (s *Store) Snapshot() Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.m
	m.Entries = slices.Clone(s.m.Entries)
	return m
}

// Accounts decrypts (if needed) and parses every account in manifest order.
// Files that no longer parse are skipped with a warning. A passkey that does
// not decrypt an entry yields ErrAuth.
func (s *Store) Accounts(passkey string) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAccounts(passkey, 0, 0)
}

// Account returns the single account with steamID.
func (s *Store) Account(steamID uint64, passkey string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accs, err := s.readAccounts(passkey, steamID, 1)
	if err != nil {
		return model.Account{}, err
	}
	if len(accs) == 0 {
		return model.Account{}, fmt.Errorf("%w: no account %d", ErrInvalidArgument, steamID)
	}
	return accs[0], nil
}

// VerifyPasskey reports whether passkey opens the vault by decrypting
// exactly one entry. An unencrypted or empty vault accepts any passkey.
func (s *Store) VerifyPasskey(passkey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifyLocked(passkey)
}

func (s *Store) verifyLocked(passkey string) bool {
	if !s.m.Encrypted || len(s.m.Entries) == 0 {
		return true
	}
	accs, err := s.readAccounts(passkey, 0, 1)
	return err == nil && len(accs) == 1
}

// SaveAccount inserts or replaces the entry for acc and writes its file.
//
// The manifest is written first; on failure the in-memory entry list and
// encryption flag are restored and ErrPersistence is returned. A failure
// writing the account file afterwards returns ErrPartial.
func (s *Store) SaveAccount(acc model.Account, encrypt bool, passkey string) error {
	if encrypt && passkey == "" {
		return fmt.Errorf("%w: encryption requested without a passkey", ErrInvalidArgument)
	}
	contents := string(acc.Data())
	if acc.SteamID == 0 || contents == "" {
		return fmt.Errorf("%w: account has no steam id or data", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !encrypt && s.m.Encrypted {
		return fmt.Errorf("%w: vault is encrypted, refusing to store %d in plaintext", ErrConflict, acc.SteamID)
	}
	if encrypt && !s.m.Encrypted {
		for _, e := range s.m.Entries {
			if e.SteamID != acc.SteamID {
				return fmt.Errorf("%w: vault holds plaintext accounts, set a passkey for the whole vault instead", ErrConflict)
			}
		}
	}

	entry := Entry{SteamID: acc.SteamID, Filename: FilenameFor(acc.SteamID)}
	if encrypt {
		salt, iv := s.cipher.RandomSalt(), s.cipher.RandomIV()
		ct, ok := s.cipher.Encrypt(passkey, salt, iv, contents)
		if !ok {
			return fmt.Errorf("%w: could not encrypt account %d", ErrPersistence, acc.SteamID)
		}
		contents = ct
		kdf := s.cipher.Params()
		entry.Salt, entry.IV, entry.KDF = &salt, &iv, &kdf
	}

	prevEntries, prevEncrypted := slices.Clone(s.m.Entries), s.m.Encrypted
	if i := s.indexOf(acc.SteamID); i >= 0 {
		s.m.Entries[i] = entry
	} else {
		s.m.Entries = append(s.m.Entries, entry)
	}
	s.m.Encrypted = s.m.Encrypted || encrypt

	if err := s.persist(); err != nil {
		s.m.Entries, s.m.Encrypted = prevEntries, prevEncrypted
		return err
	}
	if err := writeFileAtomic(s.fs, s.path(entry.Filename), []byte(contents)); err != nil {
		return fmt.Errorf("%w: manifest updated but %s was not written: %v", ErrPartial, entry.Filename, err)
	}
	s.audit("SAVE_ACCOUNT", fmt.Sprintf("steam_id: %d, encrypted: %t", acc.SteamID, encrypt))
	return nil
}

// RemoveAccount drops the entry for acc, optionally deleting its file. It is
// a no-op when the account is not registered. Removing the last entry resets
// the vault to unencrypted.
func (s *Store) RemoveAccount(acc model.Account, deleteFile bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(acc.SteamID)
	if i < 0 {
		return nil
	}
	entry := s.m.Entries[i]
	prevEntries, prevEncrypted := slices.Clone(s.m.Entries), s.m.Encrypted

	s.m.Entries = slices.Delete(s.m.Entries, i, i+1)
	if len(s.m.Entries) == 0 {
		s.m.Encrypted = false
	}
	if err := s.persist(); err != nil {
		s.m.Entries, s.m.Encrypted = prevEntries, prevEncrypted
		return err
	}
	if deleteFile {
		if err := s.fs.Remove(s.path(entry.Filename)); err != nil && !isNotExist(err) {
			return fmt.Errorf("%w: manifest updated but %s was not deleted: %v", ErrPartial, entry.Filename, err)
		}
	}
	s.audit("REMOVE_ACCOUNT", fmt.Sprintf("steam_id: %d, file_deleted: %t", acc.SteamID, deleteFile))
	return nil
}

// ChangeEncryptionKey re-encrypts every account under newKey. An empty
// newKey decrypts the vault. On an encrypted vault oldKey must verify first.
//
// Entries whose file is missing are skipped. Any other per-file failure
// aborts with ErrPartial; files already rewritten are not restored.
func (s *Store) ChangeEncryptionKey(oldKey, newKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.m.Encrypted && !s.verifyLocked(oldKey) {
		return ErrAuth
	}

	encrypt := newKey != ""
	for i := range s.m.Entries {
		e := &s.m.Entries[i]
		path := s.path(e.Filename)
		data, err := afero.ReadFile(s.fs, path)
		if err != nil {
			if isNotExist(err) {
				continue
			}
			return fmt.Errorf("%w: rotation stopped at %s: %v", ErrPartial, e.Filename, err)
		}
		contents := string(data)
		if e.Encrypted() {
			plain, ok := CipherFor(s.cipher, *e).Decrypt(oldKey, *e.Salt, *e.IV, contents)
			if !ok {
				return fmt.Errorf("%w: rotation stopped at %s: cannot decrypt", ErrPartial, e.Filename)
			}
			contents = plain
		}

		var salt, iv *string
		var kdf *filecrypt.Params
		if encrypt {
			ns, ni := s.cipher.RandomSalt(), s.cipher.RandomIV()
			ct, ok := s.cipher.Encrypt(newKey, ns, ni, contents)
			if !ok {
				return fmt.Errorf("%w: rotation stopped at %s: cannot encrypt", ErrPartial, e.Filename)
			}
			contents = ct
			p := s.cipher.Params()
			salt, iv, kdf = &ns, &ni, &p
		}
		if err := writeFileAtomic(s.fs, path, []byte(contents)); err != nil {
			return fmt.Errorf("%w: rotation stopped at %s: %v", ErrPartial, e.Filename, err)
		}
		e.Salt, e.IV, e.KDF = salt, iv, kdf
	}

	s.m.Encrypted = encrypt && len(s.m.Entries) > 0
	if err := s.persist(); err != nil {
		return err
	}
	s.audit("CHANGE_ENCRYPTION_KEY", fmt.Sprintf("encrypted: %t, entries: %d", s.m.Encrypted, len(s.m.Entries)))
	return nil
}

// MoveEntry moves the entry at index from to index to. Out of range indices
// are ignored.
func (s *Store) MoveEntry(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.m.Entries)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return nil
	}
	prev := slices.Clone(s.m.Entries)
	e := s.m.Entries[from]
	s.m.Entries = slices.Delete(s.m.Entries, from, from+1)
	s.m.Entries = slices.Insert(s.m.Entries, to, e)
	if err := s.persist(); err != nil {
		s.m.Entries = prev
		return err
	}
	return nil
}

// UpdateSettings replaces the engine settings.
func (s *Store) UpdateSettings(set Settings) error {
	if set.PeriodicCheckingInterval < 1 {
		return fmt.Errorf("%w: check interval must be at least one second", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.m.Settings
	s.m.Settings = set
	if err := s.persist(); err != nil {
		s.m.Settings = prev
		return err
	}
	s.audit("UPDATE_SETTINGS", fmt.Sprintf("%+v", set))
	return nil
}

// MarkFirstRunDone clears the first-run flag.
func (s *Store) MarkFirstRunDone() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.m.FirstRun {
		return nil
	}
	s.m.FirstRun = false
	if err := s.persist(); err != nil {
		s.m.FirstRun = true
		return err
	}
	return nil
}

// readAccounts must be called with mu held. A non-zero only restricts the
// scan to that Steam ID; limit > 0 stops after that many accounts.
func (s *Store) readAccounts(passkey string, only uint64, limit int) ([]model.Account, error) {
	if s.m.Encrypted && passkey == "" {
		return nil, fmt.Errorf("%w: vault is encrypted", ErrAuth)
	}
	var out []model.Account
	for _, e := range s.m.Entries {
		if only != 0 && e.SteamID != only {
			continue
		}
		data, err := afero.ReadFile(s.fs, s.path(e.Filename))
		if err != nil {
			if isNotExist(err) {
				logging.Warnf("skipping %d: %s is missing", e.SteamID, e.Filename)
				continue
			}
			return nil, fmt.Errorf("read %s: %w", e.Filename, err)
		}
		text := string(data)
		if e.Encrypted() {
			plain, ok := CipherFor(s.cipher, e).Decrypt(passkey, *e.Salt, *e.IV, text)
			if !ok {
				return nil, fmt.Errorf("%w: cannot decrypt %s", ErrAuth, e.Filename)
			}
			text = plain
		}
		acc, err := model.ParseAccount([]byte(text))
		if err != nil {
			logging.Warnf("skipping %s: %v", e.Filename, err)
			continue
		}
		out = append(out, acc)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// CipherFor returns the cipher that opens e. Entries sealed under work
// factors other than c's get a cipher built from their recorded params.
func CipherFor(c Cipher, e Entry) Cipher {
	if e.KDF == nil || *e.KDF == c.Params() {
		return c
	}
	return filecrypt.New(*e.KDF)
}

func (s *Store) indexOf(steamID uint64) int {
	return slices.IndexFunc(s.m.Entries, func(e Entry) bool { return e.SteamID == steamID })
}

func (s *Store) persist() error {
	data, err := Encode(s.m)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrPersistence, s.dir, err)
	}
	if err := writeFileAtomic(s.fs, s.manifestPath(), data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *Store) audit(action, details string) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogAction(action, details); err != nil {
		logging.Warnf("audit %s failed: %v", action, err)
	}
}

func isNotExist(err error) bool { return errors.Is(err, iofs.ErrNotExist) }

func (s *Store) manifestPath() string { return s.path(FileName) }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// writeFileAtomic writes through a sibling temp file and a rename so readers
// never observe a truncated file.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o600); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}
