// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseAccount_PreservesUnknownFields(t *testing.T) {
	doc := []byte(`{"account_name":"alice","shared_secret":"c2VjcmV0","revocation_code":"R12345","Session":{"SteamID":76561198000000001,"SessionID":"abc"}}`)
	acc, err := ParseAccount(doc)
	if err != nil {
		t.Fatalf("ParseAccount: %v", err)
	}
	if acc.SteamID != 76561198000000001 {
		t.Fatalf("unexpected steam id %d", acc.SteamID)
	}
	if acc.AccountName != "alice" {
		t.Fatalf("unexpected name %q", acc.AccountName)
	}
	if !bytes.Equal(acc.Data(), doc) {
		t.Fatalf("raw document not preserved: %s", acc.Data())
	}
	out, err := json.Marshal(acc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "revocation_code") {
		t.Fatalf("unknown field dropped: %s", out)
	}
}

func TestParseAccount_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":   `{{`,
		"no session": `{"account_name":"x"}`,
		"zero id":    `{"Session":{"SteamID":0}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseAccount([]byte(doc)); !errors.Is(err, ErrInvalidAccount) {
				t.Fatalf("expected ErrInvalidAccount, got %v", err)
			}
		})
	}
}

func TestNewAccount_RoundTrip(t *testing.T) {
	acc := NewAccount(123, "bob", "c2hhcmVk", "aWQ=")
	parsed, err := ParseAccount(acc.Data())
	if err != nil {
		t.Fatalf("ParseAccount: %v", err)
	}
	if parsed.SteamID != 123 || parsed.AccountName != "bob" || parsed.SharedSecret != "c2hhcmVk" {
		t.Fatalf("unexpected parsed account: %+v", parsed)
	}
}

func TestAccountString_NoSecrets(t *testing.T) {
	acc := NewAccount(5, "carol", "topsecret", "alsosecret")
	s := acc.String()
	if strings.Contains(s, "topsecret") || strings.Contains(s, "alsosecret") {
		t.Fatalf("String leaked a secret: %q", s)
	}
	if s != "carol (5)" {
		t.Fatalf("unexpected String: %q", s)
	}
}
