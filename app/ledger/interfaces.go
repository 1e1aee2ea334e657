package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryMeta carries the bookkeeping attached to a ledger movement.
type EntryMeta struct {
	Type        models.EntryType
	RoundID     *int64
	BetID       *int64
	Description string
}

// Port is the token-custody capability the settlement engine consumes. The
// engine never assumes a token standard, decimal precision, or transfer
// mechanism; everything is expressed as debits, credits, and balances against
// abstract accounts, with the protocol reserve as one distinguished account.
type Port interface {
	// WithTx returns a Port scoped to an existing database transaction so
	// ledger movements commit atomically with the caller's state changes.
	WithTx(tx *gorm.DB) Port

	Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, meta EntryMeta) error
	Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, meta EntryMeta) error
	BalanceOf(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)

	// Reserve operations. Each acquires a row lock on the reserve account so
	// the balance check and the mutation commit atomically; callers must
	// never act on a reserve balance cached across an operation boundary.
	ReserveBalance(ctx context.Context) (available, locked decimal.Decimal, err error)
	DebitReserve(ctx context.Context, amount decimal.Decimal, meta EntryMeta) error
	CreditReserve(ctx context.Context, amount decimal.Decimal, meta EntryMeta) error
	LockReserve(ctx context.Context, amount decimal.Decimal) error
	UnlockReserve(ctx context.Context, amount decimal.Decimal) error
	DebitReserveLocked(ctx context.Context, amount decimal.Decimal, meta EntryMeta) error
}

// Repository defines the interface for ledger data access
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetReserveAccountForUpdate(ctx context.Context) (*models.Account, error)
	GetReserveAccount(ctx context.Context) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error

	CreateEntry(ctx context.Context, entry *models.Transaction) error
	GetAccountEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Transaction, error)
}

// Service is the ledger business surface exposed over HTTP plus the Port.
type Service interface {
	Port

	CreateAccount(ctx context.Context, req *CreateAccountRequest) (*AccountResponse, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error)
	GetAccountEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]EntryResponse, error)
	EnsureReserve(ctx context.Context, initialBalance decimal.Decimal) (*models.Account, error)
}
