package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type service struct {
	db   *gorm.DB
	repo Repository
}

// NewService creates a new ledger service
func NewService(db *gorm.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) WithTx(tx *gorm.DB) Port {
	return &service{db: tx, repo: s.repo.WithTx(tx)}
}

// inTx runs fn inside the service's transaction if one is already bound, or
// opens a fresh one otherwise. Bound transactions let callers compose ledger
// movements with their own state changes atomically.
func (s *service) inTx(ctx context.Context, fn func(repo Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.repo.WithTx(tx))
	})
}

func (s *service) Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, meta EntryMeta) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return models.ErrInvalidEntryAmount
	}
	return s.inTx(ctx, func(repo Repository) error {
		account, err := repo.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("get account for debit: %w", err)
		}
		if err := account.Debit(amount); err != nil {
			return err
		}
		if err := repo.UpdateAccount(ctx, account); err != nil {
			return fmt.Errorf("update account after debit: %w", err)
		}
		entry := models.NewEntry(account, meta.Type, amount.Neg(), meta.RoundID, meta.BetID, meta.Description)
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("record debit entry: %w", err)
		}
		return nil
	})
}

func (s *service) Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, meta EntryMeta) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return models.ErrInvalidEntryAmount
	}
	return s.inTx(ctx, func(repo Repository) error {
		account, err := repo.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("get account for credit: %w", err)
		}
		if err := account.Credit(amount); err != nil {
			return err
		}
		if err := repo.UpdateAccount(ctx, account); err != nil {
			return fmt.Errorf("update account after credit: %w", err)
		}
		entry := models.NewEntry(account, meta.Type, amount, meta.RoundID, meta.BetID, meta.Description)
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("record credit entry: %w", err)
		}
		return nil
	})
}

func (s *service) BalanceOf(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, models.ErrRecordNotFound
		}
		return decimal.Zero, fmt.Errorf("get account balance: %w", err)
	}
	return account.Balance, nil
}

func (s *service) ReserveBalance(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	reserve, err := s.repo.GetReserveAccount(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, decimal.Zero, models.ErrRecordNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("get reserve account: %w", err)
	}
	return reserve.Available(), reserve.LockedBalance, nil
}

// mutateReserve applies fn to the row-locked reserve account and records an
// optional ledger entry with the signed amount.
func (s *service) mutateReserve(ctx context.Context, fn func(reserve *models.Account) error, meta *EntryMeta, signedAmount decimal.Decimal) error {
	return s.inTx(ctx, func(repo Repository) error {
		reserve, err := repo.GetReserveAccountForUpdate(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("lock reserve account: %w", err)
		}
		if err := fn(reserve); err != nil {
			return err
		}
		if err := repo.UpdateAccount(ctx, reserve); err != nil {
			return fmt.Errorf("update reserve account: %w", err)
		}
		if meta != nil {
			entry := models.NewEntry(reserve, meta.Type, signedAmount, meta.RoundID, meta.BetID, meta.Description)
			if err := repo.CreateEntry(ctx, entry); err != nil {
				return fmt.Errorf("record reserve entry: %w", err)
			}
		}
		return nil
	})
}

func (s *service) DebitReserve(ctx context.Context, amount decimal.Decimal, meta EntryMeta) error {
	return s.mutateReserve(ctx, func(reserve *models.Account) error {
		if !reserve.CanDebit(amount) {
			return models.ErrInsufficientReserve
		}
		return reserve.Debit(amount)
	}, &meta, amount.Neg())
}

func (s *service) CreditReserve(ctx context.Context, amount decimal.Decimal, meta EntryMeta) error {
	return s.mutateReserve(ctx, func(reserve *models.Account) error {
		return reserve.Credit(amount)
	}, &meta, amount)
}

func (s *service) LockReserve(ctx context.Context, amount decimal.Decimal) error {
	return s.mutateReserve(ctx, func(reserve *models.Account) error {
		return reserve.LockFunds(amount)
	}, nil, decimal.Zero)
}

func (s *service) UnlockReserve(ctx context.Context, amount decimal.Decimal) error {
	return s.mutateReserve(ctx, func(reserve *models.Account) error {
		return reserve.UnlockFunds(amount)
	}, nil, decimal.Zero)
}

func (s *service) DebitReserveLocked(ctx context.Context, amount decimal.Decimal, meta EntryMeta) error {
	return s.mutateReserve(ctx, func(reserve *models.Account) error {
		return reserve.DebitLocked(amount)
	}, &meta, amount.Neg())
}

func (s *service) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*AccountResponse, error) {
	account := &models.Account{
		Kind:          models.AccountKindUser,
		Balance:       req.InitialBalance,
		LockedBalance: decimal.Zero,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return ToAccountResponse(account), nil
}

func (s *service) GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return ToAccountResponse(account), nil
}

func (s *service) GetAccountEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]EntryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	entries, err := s.repo.GetAccountEntries(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get account entries: %w", err)
	}
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = *ToEntryResponse(&entries[i])
	}
	return responses, nil
}

// EnsureReserve returns the reserve account, creating it with the given
// balance if it does not exist yet.
func (s *service) EnsureReserve(ctx context.Context, initialBalance decimal.Decimal) (*models.Account, error) {
	reserve, err := s.repo.GetReserveAccount(ctx)
	if err == nil {
		return reserve, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check reserve account: %w", err)
	}
	reserve = &models.Account{
		Kind:          models.AccountKindReserve,
		Balance:       initialBalance,
		LockedBalance: decimal.Zero,
	}
	if err := s.repo.CreateAccount(ctx, reserve); err != nil {
		return nil, fmt.Errorf("create reserve account: %w", err)
	}
	return reserve, nil
}
