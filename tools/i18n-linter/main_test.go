// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFlattenYAML(t *testing.T) {
	keys := map[string]struct{}{}
	flattenYAML("", map[string]any{
		"top":   map[string]any{"sub": "value"},
		"other": "v",
	}, keys)
	for _, want := range []string{"top.sub", "other"} {
		if _, ok := keys[want]; !ok {
			t.Fatalf("expected %s in %v", want, keys)
		}
	}
}

func TestLint(t *testing.T) {
	root := t.TempDir()
	locales := filepath.Join(root, "locales")
	write(t, filepath.Join(locales, primaryLocale), "poll.none: \"x\"\npoll.cycle: \"y\"\npoll.unused: \"z\"\npoll.later: \"w\"\n")
	write(t, filepath.Join(locales, "active.de.yaml"), "poll.none: \"x\"\npoll.unused: \"z\"\npoll.later: \"w\"\n")
	write(t, filepath.Join(root, "cmd", "a.go"), `package cmd
var _ = i18n.T("poll.none")
var _ = i18n.T("poll.cycle")
var _ = i18n.T("poll.typo")
var _ = "manifest.json"
var _ = "poll.selected"
var _ = translateLater("poll.later")
`)
	write(t, filepath.Join(root, "_skip", "b.go"), `var _ = i18n.T("poll.hidden")`)

	rep, err := lint(root, locales)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(rep.Undefined) != 1 || rep.Undefined[0] != "poll.typo" {
		t.Fatalf("undefined = %v", rep.Undefined)
	}
	if len(rep.Orphaned) != 1 || rep.Orphaned[0] != "poll.unused" {
		t.Fatalf("orphaned = %v", rep.Orphaned)
	}
	if m := rep.Missing["active.de.yaml"]; len(m) != 1 || m[0] != "poll.cycle" {
		t.Fatalf("missing = %v", rep.Missing)
	}
	if !rep.Failed() {
		t.Fatalf("report with undefined keys must fail")
	}
}
