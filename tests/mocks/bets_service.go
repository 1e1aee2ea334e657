package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/joefazee/toto/app/bets"
	"github.com/joefazee/toto/models"
)

// MockBetsService is a testify mock for the bets service used by packages
// that settle or sweep bets without importing the bets test internals.
type MockBetsService struct {
	mock.Mock
}

func (m *MockBetsService) WithTx(_ *gorm.DB) bets.Service {
	return m
}

func (m *MockBetsService) PlaceBet(ctx context.Context, ownerID uuid.UUID, req *bets.PlaceBetRequest) (*bets.BetResponse, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bets.BetResponse), args.Error(1)
}

func (m *MockBetsService) CancelBet(ctx context.Context, ownerID uuid.UUID, betID int64) (*bets.BetResponse, error) {
	args := m.Called(ctx, ownerID, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bets.BetResponse), args.Error(1)
}

func (m *MockBetsService) SettleLostBets(ctx context.Context, roundID int64, winners map[int]models.Outcome, at time.Time) (int, error) {
	args := m.Called(ctx, roundID, winners, at)
	return args.Int(0), args.Error(1)
}

func (m *MockBetsService) ExpireUnclaimedBets(ctx context.Context, roundID int64, at time.Time) (int, error) {
	args := m.Called(ctx, roundID, at)
	return args.Int(0), args.Error(1)
}

func (m *MockBetsService) GetBet(ctx context.Context, betID int64) (*bets.BetResponse, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bets.BetResponse), args.Error(1)
}

func (m *MockBetsService) GetBetsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]bets.BetResponse, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bets.BetResponse), args.Error(1)
}
