// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package importer brings externally produced .maFile documents into the
// vault, decrypting them with the exporter's key and re-encrypting them under
// the vault's own passkey.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/toeirei/guardian/internal/crypto/filecrypt"
	"github.com/toeirei/guardian/internal/logging"
	"github.com/toeirei/guardian/internal/manifest"
	"github.com/toeirei/guardian/internal/model"
)

var (
	ErrManifestMissing = errors.New("manifest.json is missing next to the account file")
	ErrManifestInvalid = errors.New("manifest.json is not valid")
	ErrNotListed       = errors.New("account not found in manifest.json")
	ErrNotEncrypted    = errors.New("manifest.json holds no encryption data for the account")
	ErrDecrypt         = errors.New("decryption failed")
	ErrInvalidFile     = errors.New("not a valid maFile")
)

// Target receives imported accounts. *manifest.Store satisfies it.
type Target interface {
	SaveAccount(acc model.Account, encrypt bool, passkey string) error
}

type Option func(*Importer)

func WithFs(fs afero.Fs) Option { return func(im *Importer) { im.fs = fs } }

func WithCipher(c manifest.Cipher) Option { return func(im *Importer) { im.cipher = c } }

// Importer reads foreign account files.
type Importer struct {
	fs     afero.Fs
	cipher manifest.Cipher
	target Target
}

func New(target Target, opts ...Option) *Importer {
	im := &Importer{target: target}
	for _, o := range opts {
		o(im)
	}
	if im.fs == nil {
		im.fs = afero.NewOsFs()
	}
	if im.cipher == nil {
		im.cipher = filecrypt.New(filecrypt.DefaultParams)
	}
	return im
}

// Report lists the outcome of a bulk import.
type Report struct {
	Imported []uint64
	Failed   map[string]error
}

// exportManifest is decoded leniently; entries are checked one by one so a
// single broken entry does not fail a bulk import.
type exportManifest struct {
	Encrypted bool             `json:"encrypted"`
	Entries   []manifest.Entry `json:"entries"`
}

// ImportFile imports a single account file. With an empty key the file must
// be plaintext. Otherwise its salt and IV are looked up in the manifest.json
// sitting in the same directory. The account is stored encrypted when
// passkey, the vault's current passkey, is non-empty.
func (im *Importer) ImportFile(path, key, passkey string) (model.Account, error) {
	data, err := afero.ReadFile(im.fs, path)
	if err != nil {
		return model.Account{}, fmt.Errorf("read %s: %w", path, err)
	}

	if key == "" {
		acc, err := parse(data)
		if err != nil {
			return model.Account{}, err
		}
		return acc, im.save(acc, passkey)
	}

	m, err := im.readManifest(filepath.Join(filepath.Dir(path), manifest.FileName))
	if err != nil {
		return model.Account{}, err
	}
	name := filepath.Base(path)
	var found *manifest.Entry
	for i := range m.Entries {
		if m.Entries[i].Filename == name {
			found = &m.Entries[i]
		}
	}
	if found == nil {
		return model.Account{}, fmt.Errorf("%w: %s", ErrNotListed, name)
	}
	switch {
	case found.Salt == nil && found.IV == nil:
		return model.Account{}, fmt.Errorf("%w: %s may be unencrypted", ErrNotEncrypted, name)
	case found.IV == nil:
		return model.Account{}, fmt.Errorf("%w: %s has no encryption_iv", ErrNotEncrypted, name)
	case found.Salt == nil:
		return model.Account{}, fmt.Errorf("%w: %s has no encryption_salt", ErrNotEncrypted, name)
	}

	acc, err := im.decrypt(key, *found, data)
	if err != nil {
		return model.Account{}, err
	}
	return acc, im.save(acc, passkey)
}

// ImportManifest imports every account listed in an exported manifest.json.
// Failures are collected per file and do not stop the import.
func (im *Importer) ImportManifest(manifestPath, key, passkey string) (Report, error) {
	m, err := im.readManifest(manifestPath)
	if err != nil {
		return Report{}, err
	}
	dir := filepath.Dir(manifestPath)
	rep := Report{Failed: map[string]error{}}

	for _, e := range m.Entries {
		data, err := afero.ReadFile(im.fs, filepath.Join(dir, e.Filename))
		if err != nil {
			rep.Failed[e.Filename] = fmt.Errorf("read: %w", err)
			continue
		}
		var acc model.Account
		switch {
		case e.Salt != nil && e.IV != nil:
			acc, err = im.decrypt(key, e, data)
		case e.Salt != nil || e.IV != nil:
			err = fmt.Errorf("%w: incomplete encryption data", ErrNotEncrypted)
		default:
			acc, err = parse(data)
		}
		if err == nil {
			err = im.save(acc, passkey)
		}
		if err != nil {
			logging.Warnf("import of %s failed: %v", e.Filename, err)
			rep.Failed[e.Filename] = err
			continue
		}
		rep.Imported = append(rep.Imported, acc.SteamID)
	}
	return rep, nil
}

func (im *Importer) readManifest(path string) (exportManifest, error) {
	data, err := afero.ReadFile(im.fs, path)
	if err != nil {
		return exportManifest{}, fmt.Errorf("%w: %v", ErrManifestMissing, err)
	}
	var m exportManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return exportManifest{}, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}
	return m, nil
}

func (im *Importer) decrypt(key string, e manifest.Entry, data []byte) (model.Account, error) {
	if key == "" {
		return model.Account{}, fmt.Errorf("%w: no key given", ErrDecrypt)
	}
	plain, ok := manifest.CipherFor(im.cipher, e).Decrypt(key, *e.Salt, *e.IV, string(data))
	if !ok || plain == "" {
		return model.Account{}, ErrDecrypt
	}
	return parse([]byte(plain))
}

func (im *Importer) save(acc model.Account, passkey string) error {
	if err := im.target.SaveAccount(acc, passkey != "", passkey); err != nil {
		return fmt.Errorf("save %s: %w", acc, err)
	}
	return nil
}

func parse(data []byte) (model.Account, error) {
	acc, err := model.ParseAccount(data)
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return acc, nil
}
