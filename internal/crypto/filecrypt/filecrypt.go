// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package filecrypt encrypts and decrypts the serialized account files kept in
// the vault directory.
//
// A 256-bit key is derived from the operator's passkey and a per-file salt
// with argon2id, then the plaintext is sealed with AES-GCM using the per-file
// IV as nonce. The GCM tag makes a wrong passkey or a tampered file fail to
// open; callers rely on that as the only passkey verification mechanism.
// Salts, IVs and ciphertexts travel as standard base64 strings, matching the
// registry format.
package filecrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize is the length in bytes of a freshly generated salt.
	SaltSize = 16
	// IVSize is the length in bytes of a freshly generated IV (GCM nonce).
	IVSize = 16

	keySize = 32
)

// Params tunes the argon2id work factor. Vault entries record the params
// they were sealed with so a later change does not lock them out.
type Params struct {
	Time      uint32 `json:"time"`
	MemoryKiB uint32 `json:"memory_kib"`
	Threads   uint8  `json:"threads"`
}

// DefaultParams are the work factors used for real vaults.
var DefaultParams = Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}

// Cipher implements the account file encryption contract. The zero value is
// not usable; construct it with New.
type Cipher struct {
	params Params
}

// New returns a Cipher using p, falling back to DefaultParams for zero fields.
func New(p Params) *Cipher {
	if p.Time == 0 {
		p.Time = DefaultParams.Time
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = DefaultParams.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = DefaultParams.Threads
	}
	// argon2 needs at least 8 KiB per lane.
	if floor := 8 * uint32(p.Threads); p.MemoryKiB < floor {
		p.MemoryKiB = floor
	}
	return &Cipher{params: p}
}

// Params returns the effective work factors.
func (c *Cipher) Params() Params { return c.params }

// RandomSalt returns a new base64 encoded random salt. Callers must request a
// new one for every encryption.
func (c *Cipher) RandomSalt() string { return randomBase64(SaltSize) }

// RandomIV returns a new base64 encoded random IV. Never reuse one.
func (c *Cipher) RandomIV() string { return randomBase64(IVSize) }

func randomBase64(n int) string {
	b := make([]byte, n)
	// crypto/rand.Read never returns an error.
	_, _ = rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

// Encrypt seals plaintext under a key derived from passkey and salt. It
// reports false on any internal failure (bad salt or IV encoding, empty
// passkey) instead of returning an error.
func (c *Cipher) Encrypt(passkey, salt, iv, plaintext string) (string, bool) {
	aead, nonce, ok := c.aead(passkey, salt, iv)
	if !ok {
		return "", false
	}
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), true
}

// Decrypt reverses Encrypt. It reports false when the passkey is wrong or the
// ciphertext was modified; it never returns partially decrypted data.
func (c *Cipher) Decrypt(passkey, salt, iv, ciphertext string) (string, bool) {
	aead, nonce, ok := c.aead(passkey, salt, iv)
	if !ok {
		return "", false
	}
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(sealed) < aead.Overhead() {
		return "", false
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", false
	}
	return string(plain), true
}

func (c *Cipher) aead(passkey, salt, iv string) (cipher.AEAD, []byte, bool) {
	if passkey == "" {
		return nil, nil, false
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil || len(saltBytes) == 0 {
		return nil, nil, false
	}
	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(nonce) != IVSize {
		return nil, nil, false
	}
	key := argon2.IDKey([]byte(passkey), saltBytes, c.params.Time, c.params.MemoryKiB, c.params.Threads, keySize)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, false
	}
	aead, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, nil, false
	}
	return aead, nonce, true
}
