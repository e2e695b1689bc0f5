// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package manifest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/toeirei/guardian/internal/model"
)

func seedPlain(t *testing.T, s *Store, ids ...uint64) map[uint64][]byte {
	t.Helper()
	want := map[uint64][]byte{}
	for _, id := range ids {
		acc := model.NewAccount(id, "user", "c2VjcmV0", "aWQ=")
		if err := s.SaveAccount(acc, false, ""); err != nil {
			t.Fatalf("SaveAccount: %v", err)
		}
		want[id] = acc.Data()
	}
	return want
}

func assertContents(t *testing.T, s *Store, passkey string, want map[uint64][]byte) {
	t.Helper()
	got := accountsByID(t, s, passkey)
	if len(got) != len(want) {
		t.Fatalf("got %d accounts, want %d", len(got), len(want))
	}
	for id, data := range want {
		if !bytes.Equal(got[id], data) {
			t.Fatalf("account %d changed: %s", id, got[id])
		}
	}
}

func TestChangeEncryptionKey_PreservesContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openStore(t, fs)
	want := seedPlain(t, s, 1, 2, 3)

	if err := s.ChangeEncryptionKey("", "a"); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	saltsA := map[uint64]string{}
	for _, e := range s.Entries() {
		if !e.Encrypted() {
			t.Fatalf("entry %d left plaintext", e.SteamID)
		}
		saltsA[e.SteamID] = *e.Salt
	}
	assertContents(t, openStore(t, fs), "a", want)

	if err := s.ChangeEncryptionKey("a", "b"); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	for _, e := range s.Entries() {
		if *e.Salt == saltsA[e.SteamID] {
			t.Fatalf("salt reused for %d", e.SteamID)
		}
	}
	reloaded := openStore(t, fs)
	assertContents(t, reloaded, "b", want)
	if reloaded.VerifyPasskey("a") || !reloaded.VerifyPasskey("b") {
		t.Fatalf("VerifyPasskey disagrees with rotation")
	}

	if err := s.ChangeEncryptionKey("b", ""); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	m := diskManifest(t, fs)
	if m.Encrypted {
		t.Fatalf("vault still marked encrypted")
	}
	for _, e := range m.Entries {
		if e.Salt != nil || e.IV != nil || e.KDF != nil {
			t.Fatalf("entry %d kept encryption params", e.SteamID)
		}
	}
	assertContents(t, openStore(t, fs), "", want)
}

func TestChangeEncryptionKey_WrongOldKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openStore(t, fs)
	seedPlain(t, s, 1)
	if err := s.ChangeEncryptionKey("", "a"); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	before := readFile(t, fs, "1.maFile")

	if err := s.ChangeEncryptionKey("nope", "b"); !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if readFile(t, fs, "1.maFile") != before {
		t.Fatalf("file changed after failed verification")
	}
}

func TestChangeEncryptionKey_EmptyVaultStaysUnencrypted(t *testing.T) {
	s := openStore(t, afero.NewMemMapFs())
	if err := s.ChangeEncryptionKey("", "a"); err != nil {
		t.Fatalf("ChangeEncryptionKey: %v", err)
	}
	if s.Encrypted() {
		t.Fatalf("empty vault marked encrypted")
	}
}

func TestChangeEncryptionKey_SkipsMissingFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openStore(t, fs)
	want := seedPlain(t, s, 1, 2)
	if err := fs.Remove(vaultDir + "/1.maFile"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	delete(want, 1)

	if err := s.ChangeEncryptionKey("", "a"); err != nil {
		t.Fatalf("ChangeEncryptionKey: %v", err)
	}
	assertContents(t, openStore(t, fs), "a", want)
}

func TestChangeEncryptionKey_WriteFailureStopsWithPartial(t *testing.T) {
	mem := afero.NewMemMapFs()
	s := openStore(t, mem)
	seedPlain(t, s, 1, 2)

	s.fs = &faultyFs{Fs: mem, failWrite: func(name string) bool {
		return strings.Contains(name, "/2"+AccountFileExt)
	}}
	err := s.ChangeEncryptionKey("", "a")
	if !errors.Is(err, ErrPartial) {
		t.Fatalf("expected ErrPartial, got %v", err)
	}
	// The first file is already converted and stays that way; the manifest
	// on disk was not rewritten.
	if readFile(t, mem, "1.maFile") == string(model.NewAccount(1, "user", "c2VjcmV0", "aWQ=").Data()) {
		t.Fatalf("first file should have been converted")
	}
	if diskManifest(t, mem).Encrypted {
		t.Fatalf("manifest should not be rewritten after a partial rotation")
	}
}

func TestVerifyPasskey(t *testing.T) {
	s := openStore(t, afero.NewMemMapFs())
	if !s.VerifyPasskey("anything") {
		t.Fatalf("empty vault must accept any passkey")
	}
	seedPlain(t, s, 1)
	if !s.VerifyPasskey("") {
		t.Fatalf("plaintext vault must accept any passkey")
	}
	if err := s.ChangeEncryptionKey("", "k"); err != nil {
		t.Fatalf("ChangeEncryptionKey: %v", err)
	}
	if !s.VerifyPasskey("k") || s.VerifyPasskey("x") || s.VerifyPasskey("") {
		t.Fatalf("VerifyPasskey wrong for encrypted vault")
	}
}

func TestRegenerate(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "b.maFile", `{"account_name":"b","Session":{"SteamID":20}}`)
	writeFile(t, fs, "a.maFile", `{"account_name":"a","Session":{"SteamID":10}}`)
	writeFile(t, fs, "notes.txt", "ignored")

	s, err := Regenerate(vaultDir, true, WithFs(fs), WithCipher(testCipher))
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	entries := s.Entries()
	if len(entries) != 2 || entries[0].Filename != "a.maFile" || entries[1].SteamID != 20 {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if len(diskManifest(t, fs).Entries) != 2 {
		t.Fatalf("regenerated manifest not persisted")
	}

	empty, err := Regenerate(vaultDir, false, WithFs(fs), WithCipher(testCipher))
	if err != nil || len(empty.Entries()) != 0 {
		t.Fatalf("non-scanning regenerate: %v %+v", err, empty.Entries())
	}
}

func TestRegenerate_EncryptedFilesFail(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, FileName, `{"entries":[]}`)
	writeFile(t, fs, "x.maFile", "bm90IGpzb24=")

	_, err := Regenerate(vaultDir, true, WithFs(fs), WithCipher(testCipher))
	if !errors.Is(err, ErrEncryptedFiles) {
		t.Fatalf("expected ErrEncryptedFiles, got %v", err)
	}
	if readFile(t, fs, FileName) != `{"entries":[]}` {
		t.Fatalf("existing manifest overwritten")
	}
}
