package rounds

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/joefazee/toto/models"
	"github.com/joefazee/toto/tests/suites"
)

type RoundRepositoryTestSuite struct {
	suites.RepositoryTestSuite
	repo Repository
}

func (suite *RoundRepositoryTestSuite) SetupSuite() {
	if testing.Short() {
		suite.T().Skip("Skipping database integration test")
	}

	suite.AutoMigrate = true

	suite.RepositoryTestSuite.SetupSuite()

	suite.repo = NewRepository(suite.DB)
}

func TestRoundRepository(t *testing.T) {
	suite.Run(t, new(RoundRepositoryTestSuite))
}

func (suite *RoundRepositoryTestSuite) createRound(status models.RoundStatus, cutoffAt time.Time) *models.Round {
	round := &models.Round{
		Status:     status,
		MatchCount: 3,
		OpensAt:    cutoffAt.Add(-24 * time.Hour),
		CutoffAt:   cutoffAt,
	}
	suite.AssertNoDBError(suite.repo.CreateRound(context.Background(), round))
	return round
}

func (suite *RoundRepositoryTestSuite) TestCreateRound_FirstIDIsOne() {
	round := suite.createRound(models.RoundStatusOpen, time.Now().Add(time.Hour))

	// Ids start at one so a zero id can always mean "no such round".
	suite.Assert().GreaterOrEqual(round.ID, int64(1))
}

func (suite *RoundRepositoryTestSuite) TestGetRound() {
	ctx := context.Background()
	created := suite.createRound(models.RoundStatusOpen, time.Now().Add(time.Hour))

	found, err := suite.repo.GetRound(ctx, created.ID)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(created.ID, found.ID)
	suite.Assert().Equal(models.RoundStatusOpen, found.Status)

	_, err = suite.repo.GetRound(ctx, created.ID+1000)
	suite.Assert().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *RoundRepositoryTestSuite) TestUpdateRound_PersistsLifecycleFields() {
	ctx := context.Background()
	round := suite.createRound(models.RoundStatusOpen, time.Now().Add(time.Hour))

	requestID := uuid.New()
	now := time.Now().UTC()
	round.Status = models.RoundStatusResolving
	round.Seeded = true
	round.EntropyNonce = []byte("0123456789abcdef0123456789abcdef")
	round.CommitHash = []byte("commitment-bytes")
	round.RandomnessRequestID = &requestID
	round.ResolutionRequestedAt = &now
	suite.AssertNoDBError(suite.repo.UpdateRound(ctx, round))

	found, err := suite.repo.GetRoundByRequestID(ctx, requestID)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(round.ID, found.ID)
	suite.Assert().Equal(round.EntropyNonce, found.EntropyNonce)
	suite.Assert().Equal(round.CommitHash, found.CommitHash)
}

func (suite *RoundRepositoryTestSuite) TestGetRoundsPastCutoff() {
	ctx := context.Background()
	past := suite.createRound(models.RoundStatusOpen, time.Now().Add(-time.Minute))
	suite.createRound(models.RoundStatusOpen, time.Now().Add(time.Hour))
	closed := suite.createRound(models.RoundStatusClosed, time.Now().Add(-time.Minute))

	due, err := suite.repo.GetRoundsPastCutoff(ctx, time.Now())
	suite.AssertNoDBError(err)

	ids := make([]int64, 0, len(due))
	for i := range due {
		ids = append(ids, due[i].ID)
	}
	suite.Assert().Contains(ids, past.ID)
	suite.Assert().NotContains(ids, closed.ID)
}

func (suite *RoundRepositoryTestSuite) TestGetSweepableRounds() {
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC().Add(-time.Minute)

	sweepable := suite.createRound(models.RoundStatusSettled, old.Add(-time.Hour))
	sweepable.SettledAt = &old
	suite.AssertNoDBError(suite.repo.UpdateRound(ctx, sweepable))

	fresh := suite.createRound(models.RoundStatusSettled, recent.Add(-time.Hour))
	fresh.SettledAt = &recent
	suite.AssertNoDBError(suite.repo.UpdateRound(ctx, fresh))

	due, err := suite.repo.GetSweepableRounds(ctx, time.Now().UTC().Add(-24*time.Hour))
	suite.AssertNoDBError(err)

	ids := make([]int64, 0, len(due))
	for i := range due {
		ids = append(ids, due[i].ID)
	}
	suite.Assert().Contains(ids, sweepable.ID)
	suite.Assert().NotContains(ids, fresh.ID)
}

func (suite *RoundRepositoryTestSuite) TestListRounds_FiltersByStatus() {
	ctx := context.Background()
	suite.createRound(models.RoundStatusOpen, time.Now().Add(time.Hour))
	suite.createRound(models.RoundStatusClosed, time.Now().Add(-time.Minute))

	status := models.RoundStatusClosed
	rounds, err := suite.repo.ListRounds(ctx, &status, 50, 0)
	suite.AssertNoDBError(err)
	for i := range rounds {
		suite.Assert().Equal(models.RoundStatusClosed, rounds[i].Status)
	}
}
