// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package steam

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/toeirei/guardian/internal/model"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdefghij"))

func TestGenerateCode_Shape(t *testing.T) {
	code, err := GenerateCode(testSecret, 1_700_000_000)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if len(code) != 5 {
		t.Fatalf("code %q has wrong length", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeChars, r) {
			t.Fatalf("code %q contains %q outside the alphabet", code, r)
		}
	}
}

func TestGenerateCode_StableWithinPeriod(t *testing.T) {
	base := int64(1_700_000_010) // start of a 30s window
	first, _ := GenerateCode(testSecret, base)
	for dt := int64(1); dt < CodePeriod; dt++ {
		if c, _ := GenerateCode(testSecret, base+dt); c != first {
			t.Fatalf("code changed inside the window at +%ds: %s vs %s", dt, c, first)
		}
	}
	if next, _ := GenerateCode(testSecret, base+CodePeriod); next == first {
		t.Fatalf("code did not change across windows")
	}
	other := base64.StdEncoding.EncodeToString([]byte("another-secret-value"))
	if c, _ := GenerateCode(other, base); c == first {
		t.Fatalf("different secrets produced the same code")
	}
}

func TestGenerateCode_BadSecret(t *testing.T) {
	for _, s := range []string{"", "***"} {
		if _, err := GenerateCode(s, 0); err == nil {
			t.Fatalf("expected error for secret %q", s)
		}
	}
}

func TestSecondsRemaining(t *testing.T) {
	if got := SecondsRemaining(1_700_000_010); got != 30 {
		t.Fatalf("got %d at window start", got)
	}
	if got := SecondsRemaining(1_700_000_039); got != 1 {
		t.Fatalf("got %d at window end", got)
	}
}

func TestOffsetClock(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	fc := clockwork.NewFakeClockAt(start)
	c := &OffsetClock{Clock: fc, Offset: 7 * time.Second}

	got, err := c.AlignedTime(context.Background())
	if err != nil || got != start.Unix()+7 {
		t.Fatalf("AlignedTime = %d, %v", got, err)
	}
	fc.Advance(time.Minute)
	if got, _ := c.AlignedTime(context.Background()); got != start.Unix()+67 {
		t.Fatalf("AlignedTime after advance = %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.AlignedTime(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestMockClient_DelegatesToBase(t *testing.T) {
	base := NewMockClient(nil, MockClientOverwrites{
		Refresh: func(_ context.Context, acc model.Account) (model.Account, bool, error) { return acc, true, nil },
	})
	m := NewMockClient(base, MockClientOverwrites{
		Relogin: func(_ context.Context, acc model.Account) (model.Account, error) { return acc, ErrReloginCancelled },
	})
	if _, ok, err := m.Refresh(context.Background(), model.Account{}); !ok || err != nil {
		t.Fatalf("Refresh not delegated: %v %v", ok, err)
	}
	if _, err := m.Relogin(context.Background(), model.Account{}); !errors.Is(err, ErrReloginCancelled) {
		t.Fatalf("Relogin overwrite ignored: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unimplemented method")
		}
	}()
	_, _ = m.AlignedTime(context.Background())
}
