// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.
package security

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestSecretRedaction(t *testing.T) {
	s := FromString("hunter2")
	for _, verb := range []string{"%v", "%s", "%#v", "%q", "%x"} {
		if got := fmt.Sprintf(verb, s); got != "[SECRET]" {
			t.Fatalf("%s leaked: %q", verb, got)
		}
	}
	b, err := json.Marshal(struct{ P Secret }{s})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if string(b) != `{"P":"[SECRET]"}` {
		t.Fatalf("unexpected json: %s", b)
	}
	if s.Reveal() != "hunter2" {
		t.Fatalf("Reveal returned %q", s.Reveal())
	}
}

func TestSecretEqualAndZero(t *testing.T) {
	a, b := FromString("abc"), FromString("abc")
	if !a.Equal(b) || a.Equal(FromString("abd")) {
		t.Fatalf("Equal mismatch")
	}
	a.Zero()
	for i, v := range a {
		if v != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
	var nilSecret *Secret
	nilSecret.Zero()
	if !Secret(nil).Empty() || FromString("x").Empty() {
		t.Fatalf("Empty mismatch")
	}
}
