// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package steam

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// OffsetClock is a ClockAligner that applies a fixed, previously measured
// offset to a local clock. It never talks to the network.
type OffsetClock struct {
	Clock  clockwork.Clock
	Offset time.Duration
}

// NewOffsetClock returns an OffsetClock over the real clock.
func NewOffsetClock(offset time.Duration) *OffsetClock {
	return &OffsetClock{Clock: clockwork.NewRealClock(), Offset: offset}
}

// AlignedTime implements ClockAligner.
func (c *OffsetClock) AlignedTime(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	clk := c.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return clk.Now().Add(c.Offset).Unix(), nil
}
