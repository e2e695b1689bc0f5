// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the embedded locales against the message IDs used in
// Go sources. It fails when a secondary locale lacks a key of the primary
// locale or when code references a key no locale defines. Keys defined but
// never referenced are reported as warnings.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "active.en.yaml"
)

var (
	// callLiteral matches the ID of a direct i18n.T("id") call.
	callLiteral = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	// bareLiteral matches "section.name" strings handed to code that
	// translates them later.
	bareLiteral = regexp.MustCompile(`"([a-z]+\.[a-z_]+)"`)
)

// Report is the outcome of one lint run.
type Report struct {
	Undefined []string
	Orphaned  []string
	Missing   map[string][]string
}

// Failed reports whether the run found errors.
func (r Report) Failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, keys := range r.Missing {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

func main() {
	rep, err := lint(".", localesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(1)
	}
	for _, k := range rep.Undefined {
		fmt.Printf("undefined: %s\n", k)
	}
	files := make([]string, 0, len(rep.Missing))
	for f := range rep.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		for _, k := range rep.Missing[f] {
			fmt.Printf("missing in %s: %s\n", f, k)
		}
	}
	for _, k := range rep.Orphaned {
		fmt.Printf("orphaned: %s\n", k)
	}
	if rep.Failed() {
		os.Exit(1)
	}
	fmt.Println("locales are consistent")
}

func lint(root, locales string) (Report, error) {
	called, mentioned, err := findUsedKeys(root)
	if err != nil {
		return Report{}, err
	}
	primary, err := loadKeysFromLocale(filepath.Join(locales, primaryLocale))
	if err != nil {
		return Report{}, err
	}
	rep := Report{Missing: map[string][]string{}}

	for k := range called {
		if _, ok := primary[k]; !ok {
			rep.Undefined = append(rep.Undefined, k)
		}
	}
	for k := range primary {
		_, c := called[k]
		_, m := mentioned[k]
		if !c && !m {
			rep.Orphaned = append(rep.Orphaned, k)
		}
	}

	others, err := filepath.Glob(filepath.Join(locales, "*.yaml"))
	if err != nil {
		return Report{}, err
	}
	for _, f := range others {
		name := filepath.Base(f)
		if name == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(f)
		if err != nil {
			return Report{}, err
		}
		for k := range primary {
			if _, ok := keys[k]; !ok {
				rep.Missing[name] = append(rep.Missing[name], k)
			}
		}
		sort.Strings(rep.Missing[name])
	}
	sort.Strings(rep.Undefined)
	sort.Strings(rep.Orphaned)
	return rep, nil
}

// findUsedKeys scans non-test Go files under root, skipping tools and any
// directory starting with "_" or ".". It returns the IDs passed to i18n.T and
// every other dotted literal.
func findUsedKeys(root string) (called, mentioned map[string]struct{}, err error) {
	called, mentioned = map[string]struct{}{}, map[string]struct{}{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range callLiteral.FindAllSubmatch(content, -1) {
			called[string(m[1])] = struct{}{}
		}
		for _, m := range bareLiteral.FindAllSubmatch(content, -1) {
			mentioned[string(m[1])] = struct{}{}
		}
		return nil
	})
	return called, mentioned, err
}

func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	keys := map[string]struct{}{}
	flattenYAML("", doc, keys)
	return keys, nil
}

// flattenYAML records leaf paths of nested maps using dot notation.
func flattenYAML(prefix string, node map[string]any, keys map[string]struct{}) {
	for k, v := range node {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flattenYAML(full, child, keys)
			continue
		}
		keys[full] = struct{}{}
	}
}
