// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package testutil

import (
	"errors"
	"testing"
)

func TestAuditorRecordsInOrder(t *testing.T) {
	a := &Auditor{}
	_ = a.LogAction("A", "one")
	_ = a.LogAction("B", "two")
	if got := a.Actions(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("unexpected actions %v", got)
	}
	if r := a.Records(); r[1].Details != "two" {
		t.Fatalf("details not kept: %+v", r)
	}

	a.Err = errors.New("down")
	if err := a.LogAction("C", ""); err == nil {
		t.Fatalf("expected configured error")
	}
	if len(a.Actions()) != 3 {
		t.Fatalf("failing call should still be recorded")
	}
}

func TestFastCipherRoundTrip(t *testing.T) {
	c := FastCipher()
	salt, iv := c.RandomSalt(), c.RandomIV()
	ct, ok := c.Encrypt("k", salt, iv, "hello")
	if !ok {
		t.Fatalf("encrypt failed")
	}
	if pt, ok := c.Decrypt("k", salt, iv, ct); !ok || pt != "hello" {
		t.Fatalf("decrypt: %q %v", pt, ok)
	}
}
