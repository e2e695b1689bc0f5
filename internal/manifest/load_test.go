// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestLoad_MissingDirCreatesFreshManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openStore(t, fs)

	if s.Encrypted() || !s.FirstRun() || len(s.Entries()) != 0 {
		t.Fatalf("unexpected fresh state: %+v", s.Snapshot())
	}
	if got := s.Settings().PeriodicCheckingInterval; got != DefaultCheckInterval {
		t.Fatalf("interval = %d, want %d", got, DefaultCheckInterval)
	}
	m := diskManifest(t, fs)
	if m.Encrypted || !m.FirstRun {
		t.Fatalf("fresh manifest not persisted as expected: %+v", m)
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing manifest": "",
		"malformed":        "{not json",
		"half encrypted":   `{"entries":[{"steamid":1,"filename":"1.maFile","encryption_salt":"c2FsdA=="}]}`,
		"duplicate":        `{"entries":[{"steamid":1,"filename":"a"},{"steamid":1,"filename":"b"}]}`,
		"parent path":      `{"entries":[{"steamid":1,"filename":"../1.maFile"}]}`,
		"nested path":      `{"entries":[{"steamid":1,"filename":"sub/1.maFile"}]}`,
		"dot dot":          `{"entries":[{"steamid":1,"filename":".."}]}`,
		"kdf without salt": `{"entries":[{"steamid":1,"filename":"1.maFile","kdf":{"time":1,"memory_kib":64,"threads":1}}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if doc == "" {
				_ = fs.MkdirAll(vaultDir, 0o700)
			} else {
				writeFile(t, fs, FileName, doc)
			}
			_, err := Load(vaultDir, WithFs(fs), WithCipher(testCipher))
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if IsRecoverable(err) {
				t.Fatalf("parse error reported as recoverable")
			}
		})
	}
}

func TestLoad_EncryptedWithoutEntriesIsReset(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, FileName, `{"encrypted":true,"first_run":false,"entries":[]}`)

	s := openStore(t, fs)
	if s.Encrypted() {
		t.Fatalf("expected unencrypted vault")
	}
	if diskManifest(t, fs).Encrypted {
		t.Fatalf("reset was not persisted")
	}
	if s.FirstRun() {
		t.Fatalf("first_run should keep its stored value")
	}
}

func TestLoad_DropsEntriesWithoutFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, FileName, `{"entries":[{"steamid":1,"filename":"1.maFile"},{"steamid":2,"filename":"2.maFile"}]}`)
	writeFile(t, fs, "2.maFile", `{"Session":{"SteamID":2}}`)

	s := openStore(t, fs)
	entries := s.Entries()
	if len(entries) != 1 || entries[0].SteamID != 2 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLoad_DroppingAllEntriesClearsEncryption(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, FileName, `{"encrypted":true,"entries":[{"steamid":1,"filename":"1.maFile","encryption_salt":"cw==","encryption_iv":"aQ=="}]}`)

	s := openStore(t, fs)
	if s.Encrypted() || len(s.Entries()) != 0 {
		t.Fatalf("expected empty unencrypted vault, got %+v", s.Snapshot())
	}
}

func TestDecode_KeepsDefaultsForMissingFields(t *testing.T) {
	m, err := Decode([]byte(`{"encrypted":false}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !m.FirstRun || m.PeriodicCheckingInterval != DefaultCheckInterval || m.Entries == nil {
		t.Fatalf("defaults lost: %+v", m)
	}
}

func TestEncode_UsesRegistryFieldNames(t *testing.T) {
	salt, iv := "c2FsdA==", "aXY="
	m := newManifest()
	m.Entries = []Entry{{SteamID: 7, Filename: "7.maFile", Salt: &salt, IV: &iv}}
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, key := range []string{`"steamid":7`, `"encryption_salt"`, `"encryption_iv"`, `"periodic_checking_interval":5`, `"auto_confirm_trades"`, `"periodic_checking_checkall"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("encoded manifest lacks %s: %s", key, data)
		}
	}
}
