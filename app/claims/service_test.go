package claims

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/joefazee/toto/internal/logger"
	"github.com/joefazee/toto/models"
	"github.com/joefazee/toto/tests/mocks"
)

type mockClaimRepository struct {
	mock.Mock
}

func (m *mockClaimRepository) WithTx(_ *gorm.DB) Repository {
	return m
}

func (m *mockClaimRepository) GetRound(ctx context.Context, roundID int64) (*models.Round, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *mockClaimRepository) GetBetByID(ctx context.Context, betID int64) (*models.Bet, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *mockClaimRepository) GetBetForUpdate(ctx context.Context, betID int64) (*models.Bet, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *mockClaimRepository) UpdateBet(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *mockClaimRepository) GetMatchPools(ctx context.Context, roundID int64) ([]models.MatchPool, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MatchPool), args.Error(1)
}

func (m *mockClaimRepository) GetReservationForUpdate(ctx context.Context, betID int64) (*models.ParlayReservation, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParlayReservation), args.Error(1)
}

func (m *mockClaimRepository) UpdateReservation(ctx context.Context, reservation *models.ParlayReservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

type claimServiceFixture struct {
	service    Service
	repo       *mockClaimRepository
	pools      *mocks.MockPoolsService
	ledgerPort *mocks.MockLedgerPort
	sqlMock    sqlmock.Sqlmock
	config     *Config
}

func newClaimServiceFixture(t *testing.T) *claimServiceFixture {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	config := GetDefaultConfig()
	repo := new(mockClaimRepository)
	poolsService := new(mocks.MockPoolsService)
	ledgerPort := new(mocks.MockLedgerPort)
	srv := NewService(gormDB, repo, poolsService, ledgerPort, logger.NewNullLogger(), config)

	return &claimServiceFixture{
		service:    srv,
		repo:       repo,
		pools:      poolsService,
		ledgerPort: ledgerPort,
		sqlMock:    sqlMock,
		config:     config,
	}
}

// settledClaimRound settles a round at the given instant.
func settledClaimRound(id int64, matchCount int, settledAt time.Time) *models.Round {
	return &models.Round{
		ID:         id,
		Status:     models.RoundStatusSettled,
		MatchCount: matchCount,
		OpensAt:    settledAt.Add(-48 * time.Hour),
		CutoffAt:   settledAt.Add(-time.Hour),
		Seeded:     true,
		SettledAt:  &settledAt,
	}
}

// finalizedPool builds a finalized match pool with 2.0x locked odds on every
// outcome and the given winner.
func finalizedPool(roundID int64, matchIndex int, winner models.Outcome) models.MatchPool {
	now := time.Now().UTC()
	two := models.OddsFromInt(2)
	return models.MatchPool{
		RoundID:        roundID,
		MatchIndex:     matchIndex,
		LockedHome:     two,
		LockedAway:     two,
		LockedDraw:     two,
		OddsLockedAt:   &now,
		Finalized:      true,
		WinningOutcome: &winner,
	}
}

func activeBet(id int64, owner uuid.UUID, roundID int64, multiplier models.Odds, legs []models.BetLeg) *models.Bet {
	amount := decimal.Zero
	for i := range legs {
		amount = amount.Add(legs[i].Amount)
	}
	return &models.Bet{
		ID:         id,
		OwnerID:    owner,
		RoundID:    roundID,
		Amount:     amount,
		Multiplier: multiplier,
		MaxPayout:  amount.Mul(decimal.NewFromInt(4)),
		Status:     models.BetStatusActive,
		PlacedAt:   time.Now().Add(-24 * time.Hour),
		Legs:       legs,
	}
}

func TestClaimService_Claim(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("Owner Claims Winning Single Leg Bet", func(t *testing.T) {
		f := newClaimServiceFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		round := settledClaimRound(1, 3, time.Now().UTC().Add(-time.Hour))
		bet := activeBet(5, owner, 1, models.UnitOdds(), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(100)},
		})

		f.repo.On("GetBetForUpdate", mock.Anything, int64(5)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)
		f.repo.On("GetMatchPools", mock.Anything, int64(1)).Return([]models.MatchPool{
			finalizedPool(1, 0, models.OutcomeHome),
		}, nil)
		f.repo.On("GetReservationForUpdate", mock.Anything, int64(5)).Return(nil, gorm.ErrRecordNotFound)

		// 100 at locked 2.0x, unit multiplier: pool-funded 200, no bonus.
		f.pools.On("RecordClaim", mock.Anything, int64(1), decimal.NewFromInt(200)).Return(nil)
		f.pools.On("ReleaseLiability", mock.Anything, int64(1), decimal.Zero, bet.MaxPayout).Return(nil)
		f.ledgerPort.On("Credit", mock.Anything, owner, decimal.NewFromInt(200), mock.Anything).Return(nil)
		f.repo.On("UpdateBet", mock.Anything, bet).Return(nil)

		claim, err := f.service.Claim(ctx, owner, 5)
		require.NoError(t, err)
		assert.Equal(t, models.BetStatusClaimed, claim.Status)
		assert.True(t, claim.TotalPayout.Equal(decimal.NewFromInt(200)))
		assert.True(t, claim.BountyPaid.IsZero())
		assert.True(t, claim.OwnerPayout.Equal(decimal.NewFromInt(200)))
		f.pools.AssertExpectations(t)
		f.ledgerPort.AssertExpectations(t)
	})

	t.Run("Parlay Bonus Paid From Locked Reserve", func(t *testing.T) {
		f := newClaimServiceFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		round := settledClaimRound(1, 3, time.Now().UTC().Add(-time.Hour))
		bet := activeBet(7, owner, 1, models.OddsFromFloat(1.5), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(100)},
			{MatchIndex: 1, Predicted: models.OutcomeAway, Amount: decimal.NewFromInt(100)},
		})
		reservation := &models.ParlayReservation{
			ID:     3,
			BetID:  7,
			Amount: decimal.NewFromInt(250),
		}

		f.repo.On("GetBetForUpdate", mock.Anything, int64(7)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)
		f.repo.On("GetMatchPools", mock.Anything, int64(1)).Return([]models.MatchPool{
			finalizedPool(1, 0, models.OutcomeHome),
			finalizedPool(1, 1, models.OutcomeAway),
		}, nil)
		f.repo.On("GetReservationForUpdate", mock.Anything, int64(7)).Return(reservation, nil)

		// Base 400, multiplier 1.5x: total 600, bonus 200 of the 250 locked.
		f.ledgerPort.On("DebitReserveLocked", mock.Anything, decimal.NewFromInt(200), mock.Anything).Return(nil)
		f.ledgerPort.On("UnlockReserve", mock.Anything, decimal.NewFromInt(50)).Return(nil)
		f.repo.On("UpdateReservation", mock.Anything, reservation).Return(nil)
		f.pools.On("RecordClaim", mock.Anything, int64(1), decimal.NewFromInt(400)).Return(nil)
		f.pools.On("ReleaseLiability", mock.Anything, int64(1), decimal.Zero, bet.MaxPayout).Return(nil)
		f.ledgerPort.On("Credit", mock.Anything, owner, decimal.NewFromInt(600), mock.Anything).Return(nil)
		f.repo.On("UpdateBet", mock.Anything, bet).Return(nil)

		claim, err := f.service.Claim(ctx, owner, 7)
		require.NoError(t, err)
		assert.True(t, claim.BasePayout.Equal(decimal.NewFromInt(400)))
		assert.True(t, claim.TotalPayout.Equal(decimal.NewFromInt(600)))
		assert.True(t, reservation.Released)
		assert.True(t, reservation.ActualBonusPaid.Equal(decimal.NewFromInt(200)))
		f.ledgerPort.AssertExpectations(t)
	})

	t.Run("Third Party Bounty Claim After Deadline", func(t *testing.T) {
		f := newClaimServiceFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		claimant := uuid.New()
		settledAt := time.Now().UTC().Add(-f.config.ClaimWindow - time.Hour)
		round := settledClaimRound(1, 3, settledAt)
		bet := activeBet(5, owner, 1, models.UnitOdds(), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(100)},
		})

		f.repo.On("GetBetForUpdate", mock.Anything, int64(5)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)
		f.repo.On("GetMatchPools", mock.Anything, int64(1)).Return([]models.MatchPool{
			finalizedPool(1, 0, models.OutcomeHome),
		}, nil)
		f.repo.On("GetReservationForUpdate", mock.Anything, int64(5)).Return(nil, gorm.ErrRecordNotFound)

		f.pools.On("RecordClaim", mock.Anything, int64(1), decimal.NewFromInt(200)).Return(nil)
		f.pools.On("ReleaseLiability", mock.Anything, int64(1), decimal.Zero, bet.MaxPayout).Return(nil)
		// 10% bounty to the claimant, remainder to the owner.
		f.ledgerPort.On("Credit", mock.Anything, owner, decimal.NewFromInt(180), mock.Anything).Return(nil)
		f.ledgerPort.On("Credit", mock.Anything, claimant, decimal.NewFromInt(20), mock.Anything).Return(nil)
		f.repo.On("UpdateBet", mock.Anything, bet).Return(nil)

		claim, err := f.service.Claim(ctx, claimant, 5)
		require.NoError(t, err)
		assert.True(t, claim.BountyPaid.Equal(decimal.NewFromInt(20)))
		assert.True(t, claim.OwnerPayout.Equal(decimal.NewFromInt(180)))
		f.ledgerPort.AssertExpectations(t)
	})

	t.Run("Third Party Rejected Inside The Window", func(t *testing.T) {
		f := newClaimServiceFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		round := settledClaimRound(1, 3, time.Now().UTC().Add(-time.Hour))
		bet := activeBet(5, owner, 1, models.UnitOdds(), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(100)},
		})

		f.repo.On("GetBetForUpdate", mock.Anything, int64(5)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)

		_, err := f.service.Claim(ctx, uuid.New(), 5)
		assert.ErrorIs(t, err, models.ErrClaimWindowOpen)
		f.ledgerPort.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Bounty Claim Below Minimum Payout", func(t *testing.T) {
		f := newClaimServiceFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		settledAt := time.Now().UTC().Add(-f.config.ClaimWindow - time.Hour)
		round := settledClaimRound(1, 3, settledAt)
		// 25 at 2.0x pays 50, under the 100 bounty minimum.
		bet := activeBet(5, owner, 1, models.UnitOdds(), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(25)},
		})

		f.repo.On("GetBetForUpdate", mock.Anything, int64(5)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)
		f.repo.On("GetMatchPools", mock.Anything, int64(1)).Return([]models.MatchPool{
			finalizedPool(1, 0, models.OutcomeHome),
		}, nil)

		_, err := f.service.Claim(ctx, uuid.New(), 5)
		assert.ErrorIs(t, err, models.ErrPayoutBelowBountyMin)
	})

	t.Run("Owner May Still Claim After The Deadline", func(t *testing.T) {
		f := newClaimServiceFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		settledAt := time.Now().UTC().Add(-f.config.ClaimWindow - time.Hour)
		round := settledClaimRound(1, 3, settledAt)
		bet := activeBet(5, owner, 1, models.UnitOdds(), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(100)},
		})

		f.repo.On("GetBetForUpdate", mock.Anything, int64(5)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)
		f.repo.On("GetMatchPools", mock.Anything, int64(1)).Return([]models.MatchPool{
			finalizedPool(1, 0, models.OutcomeHome),
		}, nil)
		f.repo.On("GetReservationForUpdate", mock.Anything, int64(5)).Return(nil, gorm.ErrRecordNotFound)
		f.pools.On("RecordClaim", mock.Anything, int64(1), decimal.NewFromInt(200)).Return(nil)
		f.pools.On("ReleaseLiability", mock.Anything, int64(1), decimal.Zero, bet.MaxPayout).Return(nil)
		f.ledgerPort.On("Credit", mock.Anything, owner, decimal.NewFromInt(200), mock.Anything).Return(nil)
		f.repo.On("UpdateBet", mock.Anything, bet).Return(nil)

		claim, err := f.service.Claim(ctx, owner, 5)
		require.NoError(t, err)
		assert.True(t, claim.BountyPaid.IsZero())
	})

	t.Run("Losing Bet Is Marked Lost On Claim", func(t *testing.T) {
		f := newClaimServiceFixture(t)
		// The lost transition commits; only the claim itself is refused.
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		round := settledClaimRound(1, 3, time.Now().UTC().Add(-time.Hour))
		bet := activeBet(5, owner, 1, models.UnitOdds(), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeAway, Amount: decimal.NewFromInt(100)},
		})

		f.repo.On("GetBetForUpdate", mock.Anything, int64(5)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)
		f.repo.On("GetMatchPools", mock.Anything, int64(1)).Return([]models.MatchPool{
			finalizedPool(1, 0, models.OutcomeHome),
		}, nil)
		f.repo.On("UpdateBet", mock.Anything, mock.MatchedBy(func(b *models.Bet) bool {
			return b.Status == models.BetStatusLost
		})).Return(nil)
		f.repo.On("GetReservationForUpdate", mock.Anything, int64(5)).Return(nil, gorm.ErrRecordNotFound)
		f.pools.On("ReleaseLiability", mock.Anything, int64(1), decimal.Zero, bet.MaxPayout).Return(nil)

		_, err := f.service.Claim(ctx, owner, 5)
		assert.ErrorIs(t, err, models.ErrBetLost)
		f.ledgerPort.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Claimed Bet Cannot Pay Twice", func(t *testing.T) {
		f := newClaimServiceFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		bet := activeBet(5, owner, 1, models.UnitOdds(), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(100)},
		})
		bet.Status = models.BetStatusClaimed

		f.repo.On("GetBetForUpdate", mock.Anything, int64(5)).Return(bet, nil)

		_, err := f.service.Claim(ctx, owner, 5)
		assert.ErrorIs(t, err, models.ErrBetAlreadyClaimed)
	})

	t.Run("Unsettled Round Cannot Pay", func(t *testing.T) {
		f := newClaimServiceFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		round := settledClaimRound(1, 3, time.Now().UTC())
		round.Status = models.RoundStatusResolving
		round.SettledAt = nil
		bet := activeBet(5, owner, 1, models.UnitOdds(), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(100)},
		})

		f.repo.On("GetBetForUpdate", mock.Anything, int64(5)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)

		_, err := f.service.Claim(ctx, owner, 5)
		assert.ErrorIs(t, err, models.ErrRoundNotSettled)
	})
}

func TestClaimService_PreviewPayout(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("Winning Preview Moves No Funds", func(t *testing.T) {
		f := newClaimServiceFixture(t)

		round := settledClaimRound(1, 3, time.Now().UTC().Add(-time.Hour))
		bet := activeBet(5, owner, 1, models.OddsFromFloat(1.5), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(100)},
			{MatchIndex: 1, Predicted: models.OutcomeDraw, Amount: decimal.NewFromInt(100)},
		})

		f.repo.On("GetBetByID", mock.Anything, int64(5)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)
		f.repo.On("GetMatchPools", mock.Anything, int64(1)).Return([]models.MatchPool{
			finalizedPool(1, 0, models.OutcomeHome),
			finalizedPool(1, 1, models.OutcomeDraw),
		}, nil)

		preview, err := f.service.PreviewPayout(ctx, 5)
		require.NoError(t, err)
		assert.True(t, preview.Winning)
		assert.True(t, preview.BasePayout.Equal(decimal.NewFromInt(400)))
		assert.True(t, preview.TotalPayout.Equal(decimal.NewFromInt(600)))
		assert.NotNil(t, preview.ClaimDeadline)
		f.ledgerPort.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Pending Round Previews Nothing", func(t *testing.T) {
		f := newClaimServiceFixture(t)

		round := settledClaimRound(1, 3, time.Now().UTC())
		round.Status = models.RoundStatusOpen
		round.SettledAt = nil
		bet := activeBet(5, owner, 1, models.UnitOdds(), []models.BetLeg{
			{MatchIndex: 0, Predicted: models.OutcomeHome, Amount: decimal.NewFromInt(100)},
		})

		f.repo.On("GetBetByID", mock.Anything, int64(5)).Return(bet, nil)
		f.repo.On("GetRound", mock.Anything, int64(1)).Return(round, nil)

		preview, err := f.service.PreviewPayout(ctx, 5)
		require.NoError(t, err)
		assert.False(t, preview.Winning)
		assert.True(t, preview.TotalPayout.IsZero())
	})
}

func TestClaimsConfig_Validate(t *testing.T) {
	t.Run("Defaults Are Valid", func(t *testing.T) {
		assert.NoError(t, GetDefaultConfig().Validate())
	})

	t.Run("Zero Claim Window", func(t *testing.T) {
		config := GetDefaultConfig()
		config.ClaimWindow = 0
		assert.ErrorIs(t, config.Validate(), models.ErrInvalidClaimWindow)
	})

	t.Run("Bounty Fraction Must Be A Proper Fraction", func(t *testing.T) {
		config := GetDefaultConfig()
		config.BountyFraction = decimal.NewFromInt(1)
		assert.ErrorIs(t, config.Validate(), models.ErrInvalidBountyFraction)
	})

	t.Run("Negative Bounty Minimum", func(t *testing.T) {
		config := GetDefaultConfig()
		config.MinBountyPayout = decimal.NewFromInt(-1)
		assert.ErrorIs(t, config.Validate(), models.ErrInvalidBountyFraction)
	})
}
