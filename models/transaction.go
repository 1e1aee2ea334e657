package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryType represents the kind of ledger movement a transaction records.
type EntryType string

const (
	EntryTypeSeed            EntryType = "seed"
	EntryTypeStake           EntryType = "stake"
	EntryTypeStakeRefund     EntryType = "stake_refund"
	EntryTypeCancellationFee EntryType = "cancellation_fee"
	EntryTypePayout          EntryType = "payout"
	EntryTypeBounty          EntryType = "bounty"
	EntryTypeBonusReserve    EntryType = "bonus_reserve"
	EntryTypeBonusRelease    EntryType = "bonus_release"
	EntryTypeSweep           EntryType = "sweep"
)

// IsValid reports whether t is a known entry type.
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeSeed, EntryTypeStake, EntryTypeStakeRefund,
		EntryTypeCancellationFee, EntryTypePayout, EntryTypeBounty,
		EntryTypeBonusReserve, EntryTypeBonusRelease, EntryTypeSweep:
		return true
	}
	return false
}

// Transaction is one immutable ledger entry. Amount is signed: positive for
// credits to the account, negative for debits.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_account" json:"account_id"`
	EntryType     EntryType       `gorm:"type:varchar(20);not null" json:"entry_type"`
	Amount        decimal.Decimal `gorm:"type:decimal(30,0);not null" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(30,0);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(30,0);not null" json:"balance_after"`
	RoundID       *int64          `gorm:"index:idx_transactions_round" json:"round_id,omitempty"`
	BetID         *int64          `gorm:"index:idx_transactions_bet" json:"bet_id,omitempty"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index:idx_transactions_created_at" json:"created_at"`

	Account *Account `gorm:"foreignKey:AccountID" json:"-"`
}

// TableName specifies the table name for Transaction model
func (*Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate sets up the model before creation
func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsCredit checks if this is a credit entry.
func (t *Transaction) IsCredit() bool {
	return t.Amount.GreaterThan(decimal.Zero)
}

// IsBalanceConsistent checks the before/after arithmetic.
func (t *Transaction) IsBalanceConsistent() bool {
	return t.BalanceBefore.Add(t.Amount).Equal(t.BalanceAfter)
}

// Validate performs validation on the transaction model
func (t *Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return ErrInvalidAccountID
	}
	if !t.EntryType.IsValid() {
		return ErrInvalidEntryType
	}
	if t.Amount.IsZero() {
		return ErrInvalidEntryAmount
	}
	if !t.IsBalanceConsistent() {
		return ErrInvalidEntryAmount
	}
	return nil
}

// NewEntry builds a balance-consistent ledger entry for an account after an
// in-memory balance mutation has already been applied.
func NewEntry(account *Account, entryType EntryType, amount decimal.Decimal, roundID, betID *int64, description string) *Transaction {
	return &Transaction{
		AccountID:     account.ID,
		EntryType:     entryType,
		Amount:        amount,
		BalanceBefore: account.Balance.Sub(amount),
		BalanceAfter:  account.Balance,
		RoundID:       roundID,
		BetID:         betID,
		Description:   description,
	}
}
