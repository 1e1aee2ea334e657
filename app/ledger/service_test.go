package ledger

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/joefazee/toto/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) WithTx(_ *gorm.DB) Repository {
	return m
}

func (m *mockRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockRepository) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockRepository) GetReserveAccountForUpdate(ctx context.Context) (*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockRepository) GetReserveAccount(ctx context.Context) (*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockRepository) UpdateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockRepository) CreateEntry(ctx context.Context, entry *models.Transaction) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockRepository) GetAccountEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func newTestService(t *testing.T) (Service, *mockRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	mockRepo := new(mockRepository)
	return NewService(gormDB, mockRepo), mockRepo, sqlMock
}

func expectTx(sqlMock sqlmock.Sqlmock, commit bool) {
	sqlMock.ExpectBegin()
	if commit {
		sqlMock.ExpectCommit()
	} else {
		sqlMock.ExpectRollback()
	}
}

func TestService_Debit(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		srv, mockRepo, sqlMock := newTestService(t)
		expectTx(sqlMock, true)

		account := &models.Account{
			ID:      accountID,
			Kind:    models.AccountKindUser,
			Balance: decimal.NewFromInt(500),
		}
		mockRepo.On("GetAccountForUpdate", mock.Anything, accountID).Return(account, nil)
		mockRepo.On("UpdateAccount", mock.Anything, account).Return(nil)
		mockRepo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(entry *models.Transaction) bool {
			return entry.Amount.Equal(decimal.NewFromInt(-100)) &&
				entry.EntryType == models.EntryTypeStake &&
				entry.IsBalanceConsistent()
		})).Return(nil)

		err := srv.Debit(ctx, accountID, decimal.NewFromInt(100), EntryMeta{Type: models.EntryTypeStake})

		assert.NoError(t, err)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(400)))
		mockRepo.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		srv, mockRepo, sqlMock := newTestService(t)
		expectTx(sqlMock, false)

		account := &models.Account{
			ID:      accountID,
			Kind:    models.AccountKindUser,
			Balance: decimal.NewFromInt(50),
		}
		mockRepo.On("GetAccountForUpdate", mock.Anything, accountID).Return(account, nil)

		err := srv.Debit(ctx, accountID, decimal.NewFromInt(100), EntryMeta{Type: models.EntryTypeStake})

		assert.ErrorIs(t, err, models.ErrInsufficientBalance)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(50)))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Rejects Non-Positive Amount", func(t *testing.T) {
		srv, _, _ := newTestService(t)

		err := srv.Debit(ctx, accountID, decimal.Zero, EntryMeta{Type: models.EntryTypeStake})
		assert.ErrorIs(t, err, models.ErrInvalidEntryAmount)
	})

	t.Run("Account Not Found", func(t *testing.T) {
		srv, mockRepo, sqlMock := newTestService(t)
		expectTx(sqlMock, false)

		mockRepo.On("GetAccountForUpdate", mock.Anything, accountID).Return(nil, gorm.ErrRecordNotFound)

		err := srv.Debit(ctx, accountID, decimal.NewFromInt(100), EntryMeta{Type: models.EntryTypeStake})
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})
}

func TestService_Credit(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		srv, mockRepo, sqlMock := newTestService(t)
		expectTx(sqlMock, true)

		account := &models.Account{
			ID:      accountID,
			Kind:    models.AccountKindUser,
			Balance: decimal.NewFromInt(10),
		}
		mockRepo.On("GetAccountForUpdate", mock.Anything, accountID).Return(account, nil)
		mockRepo.On("UpdateAccount", mock.Anything, account).Return(nil)
		mockRepo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(entry *models.Transaction) bool {
			return entry.Amount.Equal(decimal.NewFromInt(90)) && entry.IsBalanceConsistent()
		})).Return(nil)

		err := srv.Credit(ctx, accountID, decimal.NewFromInt(90), EntryMeta{Type: models.EntryTypePayout})

		assert.NoError(t, err)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
		mockRepo.AssertExpectations(t)
	})
}

func TestService_ReserveOperations(t *testing.T) {
	ctx := context.Background()

	newReserve := func(balance, locked int64) *models.Account {
		return &models.Account{
			ID:            uuid.New(),
			Kind:          models.AccountKindReserve,
			Balance:       decimal.NewFromInt(balance),
			LockedBalance: decimal.NewFromInt(locked),
		}
	}

	t.Run("LockReserve Success", func(t *testing.T) {
		srv, mockRepo, sqlMock := newTestService(t)
		expectTx(sqlMock, true)

		reserve := newReserve(1000, 0)
		mockRepo.On("GetReserveAccountForUpdate", mock.Anything).Return(reserve, nil)
		mockRepo.On("UpdateAccount", mock.Anything, reserve).Return(nil)

		err := srv.LockReserve(ctx, decimal.NewFromInt(300))

		assert.NoError(t, err)
		assert.True(t, reserve.LockedBalance.Equal(decimal.NewFromInt(300)))
		assert.True(t, reserve.Available().Equal(decimal.NewFromInt(700)))
		// A pure lock moves nothing in or out, so no entry is written.
		mockRepo.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
	})

	t.Run("LockReserve Insufficient", func(t *testing.T) {
		srv, mockRepo, sqlMock := newTestService(t)
		expectTx(sqlMock, false)

		reserve := newReserve(1000, 900)
		mockRepo.On("GetReserveAccountForUpdate", mock.Anything).Return(reserve, nil)

		err := srv.LockReserve(ctx, decimal.NewFromInt(200))

		assert.ErrorIs(t, err, models.ErrInsufficientReserve)
		assert.True(t, reserve.LockedBalance.Equal(decimal.NewFromInt(900)))
	})

	t.Run("UnlockReserve Beyond Locked", func(t *testing.T) {
		srv, mockRepo, sqlMock := newTestService(t)
		expectTx(sqlMock, false)

		reserve := newReserve(1000, 100)
		mockRepo.On("GetReserveAccountForUpdate", mock.Anything).Return(reserve, nil)

		err := srv.UnlockReserve(ctx, decimal.NewFromInt(200))

		assert.ErrorIs(t, err, models.ErrInvariantViolation)
	})

	t.Run("DebitReserveLocked Writes Entry", func(t *testing.T) {
		srv, mockRepo, sqlMock := newTestService(t)
		expectTx(sqlMock, true)

		reserve := newReserve(1000, 400)
		mockRepo.On("GetReserveAccountForUpdate", mock.Anything).Return(reserve, nil)
		mockRepo.On("UpdateAccount", mock.Anything, reserve).Return(nil)
		mockRepo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(entry *models.Transaction) bool {
			return entry.Amount.Equal(decimal.NewFromInt(-150)) &&
				entry.EntryType == models.EntryTypeBonusRelease
		})).Return(nil)

		err := srv.DebitReserveLocked(ctx, decimal.NewFromInt(150), EntryMeta{Type: models.EntryTypeBonusRelease})

		assert.NoError(t, err)
		assert.True(t, reserve.Balance.Equal(decimal.NewFromInt(850)))
		assert.True(t, reserve.LockedBalance.Equal(decimal.NewFromInt(250)))
		mockRepo.AssertExpectations(t)
	})

	t.Run("DebitReserve Insufficient Available", func(t *testing.T) {
		srv, mockRepo, sqlMock := newTestService(t)
		expectTx(sqlMock, false)

		reserve := newReserve(500, 450)
		mockRepo.On("GetReserveAccountForUpdate", mock.Anything).Return(reserve, nil)

		err := srv.DebitReserve(ctx, decimal.NewFromInt(100), EntryMeta{Type: models.EntryTypeSeed})

		assert.ErrorIs(t, err, models.ErrInsufficientReserve)
	})
}

func TestService_EnsureReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates When Missing", func(t *testing.T) {
		srv, mockRepo, _ := newTestService(t)

		mockRepo.On("GetReserveAccount", mock.Anything).Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("CreateAccount", mock.Anything, mock.MatchedBy(func(account *models.Account) bool {
			return account.Kind == models.AccountKindReserve &&
				account.Balance.Equal(decimal.NewFromInt(5000))
		})).Return(nil)

		reserve, err := srv.EnsureReserve(ctx, decimal.NewFromInt(5000))

		assert.NoError(t, err)
		assert.Equal(t, models.AccountKindReserve, reserve.Kind)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Returns Existing", func(t *testing.T) {
		srv, mockRepo, _ := newTestService(t)

		existing := &models.Account{ID: uuid.New(), Kind: models.AccountKindReserve, Balance: decimal.NewFromInt(42)}
		mockRepo.On("GetReserveAccount", mock.Anything).Return(existing, nil)

		reserve, err := srv.EnsureReserve(ctx, decimal.NewFromInt(5000))

		assert.NoError(t, err)
		assert.Equal(t, existing.ID, reserve.ID)
		mockRepo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})
}

func TestService_GetAccountEntries_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	srv, mockRepo, _ := newTestService(t)
	mockRepo.On("GetAccountEntries", mock.Anything, accountID, 20, 0).
		Return([]models.Transaction{}, nil)

	_, err := srv.GetAccountEntries(ctx, accountID, -5, 0)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
