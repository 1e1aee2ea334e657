package mocks

import (
	"context"
	"time"

	"github.com/joefazee/toto/app/pools"
	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockPoolsService is a mock implementation of pools.Service
type MockPoolsService struct {
	mock.Mock
}

func (m *MockPoolsService) WithTx(_ *gorm.DB) pools.Service {
	return m
}

func (m *MockPoolsService) SeedRound(ctx context.Context, roundID int64, commitHash []byte) error {
	args := m.Called(ctx, roundID, commitHash)
	return args.Error(0)
}

func (m *MockPoolsService) AddStake(ctx context.Context, roundID int64, matchIndex int, outcome models.Outcome, amount decimal.Decimal, at time.Time) (*models.MatchPool, error) {
	args := m.Called(ctx, roundID, matchIndex, outcome, amount, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchPool), args.Error(1)
}

func (m *MockPoolsService) ReverseStake(ctx context.Context, roundID int64, matchIndex int, outcome models.Outcome, amount decimal.Decimal) (*models.MatchPool, error) {
	args := m.Called(ctx, roundID, matchIndex, outcome, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchPool), args.Error(1)
}

func (m *MockPoolsService) FinalizeMatch(ctx context.Context, roundID int64, matchIndex int, winner models.Outcome) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, roundID, matchIndex, winner)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockPoolsService) ReserveLiability(ctx context.Context, roundID int64, stake, maxPayout decimal.Decimal) error {
	args := m.Called(ctx, roundID, stake, maxPayout)
	return args.Error(0)
}

func (m *MockPoolsService) ReleaseLiability(ctx context.Context, roundID int64, stake, maxPayout decimal.Decimal) error {
	args := m.Called(ctx, roundID, stake, maxPayout)
	return args.Error(0)
}

func (m *MockPoolsService) SetReservedForWinners(ctx context.Context, roundID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, roundID, amount)
	return args.Error(0)
}

func (m *MockPoolsService) RecordClaim(ctx context.Context, roundID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, roundID, amount)
	return args.Error(0)
}

func (m *MockPoolsService) SweepAccounting(ctx context.Context, roundID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, roundID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPoolsService) WinnerShare() decimal.Decimal {
	args := m.Called()
	return args.Get(0).(decimal.Decimal)
}

func (m *MockPoolsService) SeedPerMatch() decimal.Decimal {
	args := m.Called()
	return args.Get(0).(decimal.Decimal)
}

func (m *MockPoolsService) GetLockedOdds(ctx context.Context, roundID int64, matchIndex int) (*pools.LockedOddsResponse, error) {
	args := m.Called(ctx, roundID, matchIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pools.LockedOddsResponse), args.Error(1)
}

func (m *MockPoolsService) GetRoundPools(ctx context.Context, roundID int64) ([]pools.PoolResponse, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pools.PoolResponse), args.Error(1)
}

func (m *MockPoolsService) GetRoundAccounting(ctx context.Context, roundID int64) (*models.RoundAccounting, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoundAccounting), args.Error(1)
}
