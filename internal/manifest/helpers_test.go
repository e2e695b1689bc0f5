// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/toeirei/guardian/internal/testutil"
)

const vaultDir = "/vault"

var errInjected = errors.New("injected failure")

var testCipher = testutil.FastCipher()

// faultyFs fails writes or removals for paths matched by its predicates.
type faultyFs struct {
	afero.Fs
	failWrite  func(name string) bool
	failRemove func(name string) bool
}

func (f *faultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 && f.failWrite != nil && f.failWrite(name) {
		return nil, &os.PathError{Op: "open", Path: name, Err: errInjected}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *faultyFs) Remove(name string) error {
	if f.failRemove != nil && f.failRemove(name) {
		return &os.PathError{Op: "remove", Path: name, Err: errInjected}
	}
	return f.Fs.Remove(name)
}

func isManifestFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), FileName)
}

func isAccountFile(name string) bool {
	return strings.Contains(filepath.Base(name), AccountFileExt)
}

func openStore(t *testing.T, fs afero.Fs, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithFs(fs), WithCipher(testCipher)}, opts...)
	s, err := Load(vaultDir, opts...)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func writeFile(t *testing.T, fs afero.Fs, name, content string) {
	t.Helper()
	if err := fs.MkdirAll(vaultDir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(vaultDir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func readFile(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()
	b, err := afero.ReadFile(fs, filepath.Join(vaultDir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(b)
}

func diskManifest(t *testing.T, fs afero.Fs) Manifest {
	t.Helper()
	m, err := Decode([]byte(readFile(t, fs, FileName)))
	if err != nil {
		t.Fatalf("decode on-disk manifest: %v", err)
	}
	return m
}
