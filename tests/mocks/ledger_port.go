package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/joefazee/toto/app/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockLedgerPort is a testify mock for the ledger port consumed by the
// settlement side of the system.
type MockLedgerPort struct {
	mock.Mock
}

func (m *MockLedgerPort) WithTx(_ *gorm.DB) ledger.Port {
	return m
}

func (m *MockLedgerPort) Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, meta ledger.EntryMeta) error {
	args := m.Called(ctx, accountID, amount, meta)
	return args.Error(0)
}

func (m *MockLedgerPort) Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, meta ledger.EntryMeta) error {
	args := m.Called(ctx, accountID, amount, meta)
	return args.Error(0)
}

func (m *MockLedgerPort) BalanceOf(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerPort) ReserveBalance(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockLedgerPort) DebitReserve(ctx context.Context, amount decimal.Decimal, meta ledger.EntryMeta) error {
	args := m.Called(ctx, amount, meta)
	return args.Error(0)
}

func (m *MockLedgerPort) CreditReserve(ctx context.Context, amount decimal.Decimal, meta ledger.EntryMeta) error {
	args := m.Called(ctx, amount, meta)
	return args.Error(0)
}

func (m *MockLedgerPort) LockReserve(ctx context.Context, amount decimal.Decimal) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

func (m *MockLedgerPort) UnlockReserve(ctx context.Context, amount decimal.Decimal) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

func (m *MockLedgerPort) DebitReserveLocked(ctx context.Context, amount decimal.Decimal, meta ledger.EntryMeta) error {
	args := m.Called(ctx, amount, meta)
	return args.Error(0)
}
