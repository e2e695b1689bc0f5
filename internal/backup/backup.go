// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup writes and restores zstd-compressed JSON snapshots of a
// vault. Account files are copied byte for byte, so an encrypted vault stays
// encrypted inside the snapshot.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/toeirei/guardian/internal/manifest"
)

// SchemaVersion identifies the snapshot layout.
const SchemaVersion = 1

var (
	ErrVaultNotEmpty   = errors.New("target vault directory is not empty")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// File is one account file inside a snapshot.
type File struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// Snapshot is the backup document.
type Snapshot struct {
	SchemaVersion int             `json:"schema_version"`
	CreatedAt     time.Time       `json:"created_at"`
	Manifest      json.RawMessage `json:"manifest"`
	Files         []File          `json:"files"`
}

// Create captures the store's manifest and every account file it lists.
// Entries whose file vanished since the store was loaded are left out of the
// manifest copy as well.
func Create(store *manifest.Store, now time.Time) (*Snapshot, error) {
	m := store.Snapshot()
	fs := store.Fs()

	kept := m.Entries[:0:0]
	snap := &Snapshot{SchemaVersion: SchemaVersion, CreatedAt: now.UTC()}
	for _, e := range m.Entries {
		data, err := afero.ReadFile(fs, filepath.Join(store.Dir(), e.Filename))
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", e.Filename, err)
		}
		kept = append(kept, e)
		snap.Files = append(snap.Files, File{Name: e.Filename, Data: data})
	}
	m.Entries = kept
	if len(kept) == 0 {
		m.Encrypted = false
	}
	raw, err := manifest.Encode(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	snap.Manifest = raw
	return snap, nil
}

// Write streams snap as zstd-compressed JSON.
func Write(w io.Writer, snap *Snapshot) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	return zw.Close()
}

// Read decodes a snapshot written by Write and validates it.
func Read(r io.Reader) (*Snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var snap Snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	if err := snap.validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// WriteFile writes snap to path on fs.
func WriteFile(fs afero.Fs, path string, snap *Snapshot) error {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := Write(f, snap); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a snapshot from path on fs.
func ReadFile(fs afero.Fs, path string) (*Snapshot, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Restore writes snap into dir. The directory must be missing or empty. The
// manifest is written last so an interrupted restore fails to load instead of
// exposing a half-populated vault.
func Restore(fs afero.Fs, dir string, snap *Snapshot) error {
	if err := snap.validate(); err != nil {
		return err
	}
	if exists, _ := afero.DirExists(fs, dir); exists {
		empty, err := afero.IsEmpty(fs, dir)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", dir, err)
		}
		if !empty {
			return fmt.Errorf("%w: %s", ErrVaultNotEmpty, dir)
		}
	}
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, f := range snap.Files {
		if err := afero.WriteFile(fs, filepath.Join(dir, f.Name), f.Data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, manifest.FileName), snap.Manifest, 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func (s *Snapshot) validate() error {
	if s.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: unsupported schema version %d", ErrInvalidSnapshot, s.SchemaVersion)
	}
	m, err := manifest.Decode(s.Manifest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	names := make(map[string]bool, len(s.Files))
	for _, f := range s.Files {
		if f.Name == "" || f.Name != filepath.Base(f.Name) || f.Name == ".." || f.Name == manifest.FileName {
			return fmt.Errorf("%w: bad file name %q", ErrInvalidSnapshot, f.Name)
		}
		names[f.Name] = true
	}
	for _, e := range m.Entries {
		if !names[e.Filename] {
			return fmt.Errorf("%w: %s listed but not included", ErrInvalidSnapshot, e.Filename)
		}
	}
	return nil
}
