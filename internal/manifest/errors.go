// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package manifest

import "errors"

var (
	// ErrParse means manifest.json is missing from an existing vault
	// directory or cannot be decoded. It is fatal: the caller must regenerate
	// the manifest or abort.
	ErrParse = errors.New("manifest unreadable")
	// ErrAuth means the supplied passkey does not decrypt the vault.
	ErrAuth = errors.New("incorrect passkey")
	// ErrConflict means the request disagrees with the vault's encryption
	// state, e.g. a plaintext save into an encrypted vault.
	ErrConflict = errors.New("encryption state conflict")
	// ErrInvalidArgument means the request is malformed, e.g. encryption
	// without a passkey.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPersistence means writing the manifest failed. In-memory state was
	// rolled back before returning.
	ErrPersistence = errors.New("manifest write failed")
	// ErrPartial means the manifest change was committed but a follow-up file
	// operation failed. Nothing is rolled back; the next Load self-heals
	// entries that point at missing files.
	ErrPartial = errors.New("partially applied")
	// ErrEncryptedFiles is returned by Regenerate when the directory holds
	// account files that are not plaintext and cannot be indexed.
	ErrEncryptedFiles = errors.New("account files are encrypted")
)

// IsRecoverable reports whether err describes a condition the operator can
// fix by retrying (typically with the right passkey). ErrParse is the only
// kind that requires resetting the manifest.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrParse) && !errors.Is(err, ErrEncryptedFiles)
}
