package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/joefazee/toto/models"
	"github.com/joefazee/toto/tests/suites"
)

type LedgerRepositoryTestSuite struct {
	suites.RepositoryTestSuite
	repo Repository
}

func (suite *LedgerRepositoryTestSuite) SetupSuite() {
	if testing.Short() {
		suite.T().Skip("Skipping database integration test")
	}

	suite.AutoMigrate = true

	suite.RepositoryTestSuite.SetupSuite()

	suite.repo = NewRepository(suite.DB)
}

func TestLedgerRepository(t *testing.T) {
	suite.Run(t, new(LedgerRepositoryTestSuite))
}

func (suite *LedgerRepositoryTestSuite) createTestAccount(kind models.AccountKind, balance int64) *models.Account {
	account := &models.Account{
		Kind:          kind,
		Balance:       decimal.NewFromInt(balance),
		LockedBalance: decimal.Zero,
	}
	err := suite.repo.CreateAccount(context.Background(), account)
	suite.AssertNoDBError(err)
	return account
}

func (suite *LedgerRepositoryTestSuite) TestCreateAccount() {
	account := suite.createTestAccount(models.AccountKindUser, 100)
	suite.Assert().NotEqual(uuid.Nil, account.ID)
}

func (suite *LedgerRepositoryTestSuite) TestGetAccountByID() {
	created := suite.createTestAccount(models.AccountKindUser, 250)

	account, err := suite.repo.GetAccountByID(context.Background(), created.ID)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(created.ID, account.ID)
	suite.Assert().True(account.Balance.Equal(decimal.NewFromInt(250)))
}

func (suite *LedgerRepositoryTestSuite) TestGetAccountByID_NotFound() {
	account, err := suite.repo.GetAccountByID(context.Background(), uuid.New())
	suite.AssertDBError(err)
	suite.Assert().Nil(account)
	suite.Assert().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *LedgerRepositoryTestSuite) TestGetReserveAccount() {
	suite.createTestAccount(models.AccountKindUser, 100)
	reserve := suite.createTestAccount(models.AccountKindReserve, 5000)

	found, err := suite.repo.GetReserveAccount(context.Background())
	suite.AssertNoDBError(err)
	suite.Assert().Equal(reserve.ID, found.ID)
	suite.Assert().Equal(models.AccountKindReserve, found.Kind)
}

func (suite *LedgerRepositoryTestSuite) TestUpdateAccount() {
	ctx := context.Background()
	account := suite.createTestAccount(models.AccountKindUser, 100)

	suite.AssertNoDBError(account.Credit(decimal.NewFromInt(50)))
	suite.AssertNoDBError(suite.repo.UpdateAccount(ctx, account))

	reloaded, err := suite.repo.GetAccountByID(ctx, account.ID)
	suite.AssertNoDBError(err)
	suite.Assert().True(reloaded.Balance.Equal(decimal.NewFromInt(150)))
}

func (suite *LedgerRepositoryTestSuite) TestCreateEntryAndList() {
	ctx := context.Background()
	account := suite.createTestAccount(models.AccountKindUser, 100)

	suite.AssertNoDBError(account.Debit(decimal.NewFromInt(40)))
	entry := models.NewEntry(account, models.EntryTypeStake, decimal.NewFromInt(-40), nil, nil, "stake on round")
	suite.AssertNoDBError(suite.repo.CreateEntry(ctx, entry))

	entries, err := suite.repo.GetAccountEntries(ctx, account.ID, 10, 0)
	suite.AssertNoDBError(err)
	suite.Assert().Len(entries, 1)
	suite.Assert().Equal(models.EntryTypeStake, entries[0].EntryType)
	suite.Assert().True(entries[0].BalanceAfter.Equal(decimal.NewFromInt(60)))
}

func (suite *LedgerRepositoryTestSuite) TestCreateEntry_RejectsInconsistent() {
	ctx := context.Background()
	account := suite.createTestAccount(models.AccountKindUser, 100)

	entry := &models.Transaction{
		AccountID:     account.ID,
		EntryType:     models.EntryTypeStake,
		Amount:        decimal.NewFromInt(-40),
		BalanceBefore: decimal.NewFromInt(100),
		BalanceAfter:  decimal.NewFromInt(90),
	}
	err := suite.repo.CreateEntry(ctx, entry)
	suite.AssertDBError(err)
}

func (suite *LedgerRepositoryTestSuite) TestGetAccountForUpdate_InsideTx() {
	ctx := context.Background()
	account := suite.createTestAccount(models.AccountKindUser, 100)

	err := suite.WithTransaction(func(tx *gorm.DB) error {
		locked, err := suite.repo.WithTx(tx).GetAccountForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}
		suite.Assert().Equal(account.ID, locked.ID)
		return nil
	})
	suite.AssertNoDBError(err)
}
