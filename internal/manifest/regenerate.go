// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/toeirei/guardian/internal/logging"
	"github.com/toeirei/guardian/internal/model"
)

// Regenerate replaces the manifest in dir with a fresh one. When scan is set,
// every plaintext *.maFile in dir is indexed in file name order. Encrypted
// files cannot be read without their salt and IV, so encountering one fails
// with ErrEncryptedFiles and leaves the existing manifest untouched.
func Regenerate(dir string, scan bool, opts ...Option) (*Store, error) {
	s := newStore(dir, opts...)
	s.m = newManifest()

	if scan {
		infos, err := afero.ReadDir(s.fs, dir)
		if err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		seen := map[uint64]bool{}
		for _, fi := range infos {
			if fi.IsDir() || filepath.Ext(fi.Name()) != AccountFileExt {
				continue
			}
			data, err := afero.ReadFile(s.fs, s.path(fi.Name()))
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", fi.Name(), err)
			}
			acc, err := model.ParseAccount(data)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrEncryptedFiles, fi.Name())
			}
			if seen[acc.SteamID] {
				logging.Warnf("ignoring %s: steam id %d already indexed", fi.Name(), acc.SteamID)
				continue
			}
			seen[acc.SteamID] = true
			s.m.Entries = append(s.m.Entries, Entry{Filename: fi.Name(), SteamID: acc.SteamID})
		}
	}

	if err := s.persist(); err != nil {
		return nil, err
	}
	s.audit("REGENERATE_MANIFEST", fmt.Sprintf("scanned: %t, entries: %d", scan, len(s.m.Entries)))
	return s, nil
}
