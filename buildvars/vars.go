// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars holds the build identity of the guardian binary.
//
// Release builds inject the values with
//
//	-ldflags "-X github.com/toeirei/guardian/buildvars.Version=v1.0.0
//	          -X github.com/toeirei/guardian/buildvars.Commit=abc123
//	          -X github.com/toeirei/guardian/buildvars.Date=2026-01-01T00:00:00Z"
//
// Development builds fall back to the module and VCS data embedded by the
// Go toolchain.
package buildvars

import "runtime/debug"

const devel = "dev"

var (
	Version string
	Commit  string
	Date    string
)

// Info is the resolved build identity.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// String renders "version (commit) built: date", omitting unknown parts.
func (i Info) String() string {
	out := i.Version
	if i.Commit != "" && i.Commit != devel {
		out += " (" + i.Commit + ")"
	}
	if i.Date != "" {
		out += " built: " + i.Date
	}
	return out
}

// VersionOrDefault returns Version if set, otherwise def.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}

// Resolve merges the link-time values with bi. A nil bi reads the build
// info of the running binary. Link-time values win over VCS stamps for the
// version; VCS stamps win for commit and date.
func Resolve(bi *debug.BuildInfo) Info {
	info := Info{Version: VersionOrDefault(devel), Commit: Commit, Date: Date}
	if info.Commit == "" {
		info.Commit = devel
	}
	if bi == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			bi = local
		}
	}
	if bi != nil {
		if info.Version == devel && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			if s.Value == "" {
				continue
			}
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
			case "vcs.time":
				info.Date = s.Value
			}
		}
	}
	// Last resort: a bare commit stamped by ldflags.
	if info.Version == devel && Commit != "" {
		info.Version = Commit
	}
	return info
}
