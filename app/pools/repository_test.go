package pools

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/joefazee/toto/models"
	"github.com/joefazee/toto/tests/suites"
)

type PoolRepositoryTestSuite struct {
	suites.RepositoryTestSuite
	repo Repository
}

func (suite *PoolRepositoryTestSuite) SetupSuite() {
	if testing.Short() {
		suite.T().Skip("Skipping database integration test")
	}

	suite.AutoMigrate = true

	suite.RepositoryTestSuite.SetupSuite()

	suite.repo = NewRepository(suite.DB)
}

func TestPoolRepository(t *testing.T) {
	suite.Run(t, new(PoolRepositoryTestSuite))
}

func (suite *PoolRepositoryTestSuite) createOpenRound(matchCount int) *models.Round {
	now := time.Now().UTC()
	round := &models.Round{
		Status:     models.RoundStatusOpen,
		MatchCount: matchCount,
		OpensAt:    now.Add(-time.Hour),
		CutoffAt:   now.Add(time.Hour),
	}
	suite.AssertNoDBError(suite.DB.Create(round).Error)
	return round
}

func (suite *PoolRepositoryTestSuite) TestGetRoundPools_OrderedByIndex() {
	ctx := context.Background()
	round := suite.createOpenRound(3)

	for _, idx := range []int{2, 0, 1} {
		suite.AssertNoDBError(suite.repo.CreateMatchPool(ctx, &models.MatchPool{
			RoundID:    round.ID,
			MatchIndex: idx,
			HomePool:   decimal.NewFromInt(100),
			AwayPool:   decimal.NewFromInt(100),
			DrawPool:   decimal.NewFromInt(100),
			TotalPool:  decimal.NewFromInt(300),
		}))
	}

	matchPools, err := suite.repo.GetRoundPools(ctx, round.ID)
	suite.Require().NoError(err)
	suite.Require().Len(matchPools, 3)
	for i := range matchPools {
		suite.Equal(i, matchPools[i].MatchIndex)
	}
}

func (suite *PoolRepositoryTestSuite) TestLockedOdds_SurviveStorage() {
	ctx := context.Background()
	round := suite.createOpenRound(1)

	pool := &models.MatchPool{
		RoundID:    round.ID,
		MatchIndex: 0,
		HomePool:   decimal.NewFromInt(120),
		AwayPool:   decimal.NewFromInt(80),
		DrawPool:   decimal.NewFromInt(100),
		TotalPool:  decimal.NewFromInt(300),
	}
	suite.AssertNoDBError(suite.repo.CreateMatchPool(ctx, pool))

	lockedAt := time.Now().UTC()
	pool.LockedHome = models.OddsFromFloat(2.05)
	pool.LockedAway = models.OddsFromFloat(3.1)
	pool.LockedDraw = models.OddsFromFloat(2.75)
	pool.OddsLockedAt = &lockedAt
	suite.AssertNoDBError(suite.repo.UpdateMatchPool(ctx, pool))

	reloaded, err := suite.repo.GetMatchPool(ctx, round.ID, 0)
	suite.Require().NoError(err)
	suite.True(reloaded.LockedHome.Equal(models.OddsFromFloat(2.05)))
	suite.True(reloaded.LockedAway.Equal(models.OddsFromFloat(3.1)))
	suite.True(reloaded.LockedDraw.Equal(models.OddsFromFloat(2.75)))
	suite.NotNil(reloaded.OddsLockedAt)
}

func (suite *PoolRepositoryTestSuite) TestGetMatchPoolForUpdate_LocksInsideTransaction() {
	ctx := context.Background()
	round := suite.createOpenRound(1)

	suite.AssertNoDBError(suite.repo.CreateMatchPool(ctx, &models.MatchPool{
		RoundID:    round.ID,
		MatchIndex: 0,
		TotalPool:  decimal.Zero,
	}))

	err := suite.WithTransaction(func(tx *gorm.DB) error {
		pool, err := suite.repo.WithTx(tx).GetMatchPoolForUpdate(ctx, round.ID, 0)
		if err != nil {
			return err
		}
		suite.Equal(round.ID, pool.RoundID)
		return nil
	})
	suite.NoError(err)
}

func (suite *PoolRepositoryTestSuite) TestRoundAccounting_Roundtrip() {
	ctx := context.Background()
	round := suite.createOpenRound(2)

	suite.AssertNoDBError(suite.repo.CreateRoundAccounting(ctx, &models.RoundAccounting{
		RoundID:     round.ID,
		SeedAmount:  decimal.NewFromInt(600),
		TotalVolume: decimal.NewFromInt(600),
	}))

	accounting, err := suite.repo.GetRoundAccountingForUpdate(ctx, round.ID)
	suite.Require().NoError(err)

	accounting.TotalVolume = decimal.NewFromInt(1600)
	accounting.ReservedForWinners = decimal.NewFromInt(900)
	suite.AssertNoDBError(suite.repo.UpdateRoundAccounting(ctx, accounting))

	reloaded, err := suite.repo.GetRoundAccounting(ctx, round.ID)
	suite.Require().NoError(err)
	suite.True(reloaded.TotalVolume.Equal(decimal.NewFromInt(1600)))
	suite.True(reloaded.ReservedForWinners.Equal(decimal.NewFromInt(900)))
}

func (suite *PoolRepositoryTestSuite) TestGetRoundAccounting_Missing() {
	_, err := suite.repo.GetRoundAccounting(context.Background(), 424242)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}
