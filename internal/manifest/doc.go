// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package manifest owns the vault directory: a manifest.json registry plus
// one .maFile per account, optionally encrypted with a passkey.
//
// A Store is constructed once with Load (or Regenerate) and passed to every
// consumer; there is no package-level instance. All mutating operations are
// serialized by the Store's mutex. Serializing writers in different
// processes is the caller's responsibility.
//
// Commit order for every mutation is "manifest first, then files". A failed
// manifest write rolls back the in-memory change and returns ErrPersistence.
// A failed file operation after the manifest write returns ErrPartial and is
// not rolled back; Load drops entries whose file is missing.
//
// ChangeEncryptionKey rewrites files one by one and writes the manifest only
// after the loop. If a file write fails mid-loop the files converted so far
// stay converted and the manifest on disk still describes the old key for
// them. There is no recovery for that state beyond restoring a backup.
package manifest
