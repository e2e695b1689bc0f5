// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package steam

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

const (
	// CodePeriod is the lifetime of a Steam Guard code in seconds.
	CodePeriod = 30
	codeLength = 5
	codeChars  = "23456789BCDFGHJKMNPQRTVWXY"
)

// GenerateCode derives the Steam Guard code valid at unixTime from an
// account's base64 shared secret.
func GenerateCode(sharedSecret string, unixTime int64) (string, error) {
	key, err := base64.StdEncoding.DecodeString(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("decode shared secret: %w", err)
	}
	if len(key) == 0 {
		return "", fmt.Errorf("empty shared secret")
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(unixTime/CodePeriod))
	mac := hmac.New(sha1.New, key)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	off := sum[len(sum)-1] & 0x0f
	full := binary.BigEndian.Uint32(sum[off:off+4]) & 0x7fffffff

	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeChars[full%uint32(len(codeChars))]
		full /= uint32(len(codeChars))
	}
	return string(code), nil
}

// SecondsRemaining returns how long the code for unixTime stays valid.
func SecondsRemaining(unixTime int64) int {
	return CodePeriod - int(unixTime%CodePeriod)
}
