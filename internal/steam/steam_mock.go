// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.
package steam

import (
	"context"

	"github.com/toeirei/guardian/internal/model"
)

// MockClient implements every consumed capability by delegating to the
// matching overwrite, or to Base when the overwrite is nil.
type MockClient struct {
	Base       *MockClient
	Overwrites MockClientOverwrites
}

type MockClientOverwrites struct {
	FetchConfirmations func(ctx context.Context, acc model.Account) ([]model.Confirmation, error)
	AcceptMultiple     func(ctx context.Context, acc model.Account, confs []model.Confirmation) error
	Refresh            func(ctx context.Context, acc model.Account) (model.Account, bool, error)
	AlignedTime        func(ctx context.Context) (int64, error)
	Relogin            func(ctx context.Context, acc model.Account) (model.Account, error)
}

var (
	_ ConfirmationClient = (*MockClient)(nil)
	_ SessionRefresher   = (*MockClient)(nil)
	_ ClockAligner       = (*MockClient)(nil)
	_ Relogin            = (*MockClient)(nil)
)

// mock := NewMockClient(nil, MockClientOverwrites{ /* overwrite methods here... */ })
func NewMockClient(base *MockClient, overwrites MockClientOverwrites) *MockClient {
	return &MockClient{Base: base, Overwrites: overwrites}
}

func (m *MockClient) FetchConfirmations(ctx context.Context, acc model.Account) ([]model.Confirmation, error) {
	if m.Overwrites.FetchConfirmations != nil {
		return m.Overwrites.FetchConfirmations(ctx, acc)
	} else if m.Base != nil {
		return m.Base.FetchConfirmations(ctx, acc)
	}
	panic("MockClient.FetchConfirmations not implemented")
}

func (m *MockClient) AcceptMultiple(ctx context.Context, acc model.Account, confs []model.Confirmation) error {
	if m.Overwrites.AcceptMultiple != nil {
		return m.Overwrites.AcceptMultiple(ctx, acc, confs)
	} else if m.Base != nil {
		return m.Base.AcceptMultiple(ctx, acc, confs)
	}
	panic("MockClient.AcceptMultiple not implemented")
}

func (m *MockClient) Refresh(ctx context.Context, acc model.Account) (model.Account, bool, error) {
	if m.Overwrites.Refresh != nil {
		return m.Overwrites.Refresh(ctx, acc)
	} else if m.Base != nil {
		return m.Base.Refresh(ctx, acc)
	}
	panic("MockClient.Refresh not implemented")
}

func (m *MockClient) AlignedTime(ctx context.Context) (int64, error) {
	if m.Overwrites.AlignedTime != nil {
		return m.Overwrites.AlignedTime(ctx)
	} else if m.Base != nil {
		return m.Base.AlignedTime(ctx)
	}
	panic("MockClient.AlignedTime not implemented")
}

func (m *MockClient) Relogin(ctx context.Context, acc model.Account) (model.Account, error) {
	if m.Overwrites.Relogin != nil {
		return m.Overwrites.Relogin(ctx, acc)
	} else if m.Base != nil {
		return m.Base.Relogin(ctx, acc)
	}
	panic("MockClient.Relogin not implemented")
}
