package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountKind distinguishes user accounts from the single protocol reserve.
type AccountKind string

const (
	AccountKindUser    AccountKind = "user"
	AccountKindReserve AccountKind = "reserve"
)

// Account is a ledger account holding fungible token balance. The protocol
// reserve is one account of kind reserve; its LockedBalance carries the sum
// of all live parlay reservations, so available + reservations == balance at
// all times.
type Account struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Kind          AccountKind     `gorm:"type:varchar(10);not null;default:'user';index" json:"kind"`
	Balance       decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0;check:balance >= 0" json:"balance"`
	LockedBalance decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0;check:locked_balance >= 0" json:"locked_balance"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Entries []Transaction `gorm:"foreignKey:AccountID" json:"-"`
}

// TableName specifies the table name for Account model
func (*Account) TableName() string {
	return "accounts"
}

// BeforeCreate sets up the model before creation
func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Available returns the spendable balance (total minus locked).
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.LockedBalance)
}

// CanDebit checks whether the account covers a debit from available funds.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Available().GreaterThanOrEqual(amount)
}

// Debit removes funds from the available balance.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidEntryAmount
	}
	if !a.CanDebit(amount) {
		return ErrInsufficientBalance
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds funds to the account.
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidEntryAmount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// LockFunds moves available funds into the locked portion. This is the
// atomic check half of reservation bookkeeping; callers hold a row lock.
func (a *Account) LockFunds(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidEntryAmount
	}
	if !a.CanDebit(amount) {
		return ErrInsufficientReserve
	}
	a.LockedBalance = a.LockedBalance.Add(amount)
	return nil
}

// UnlockFunds returns locked funds to the available portion.
func (a *Account) UnlockFunds(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidEntryAmount
	}
	if a.LockedBalance.LessThan(amount) {
		return ErrInvariantViolation
	}
	a.LockedBalance = a.LockedBalance.Sub(amount)
	return nil
}

// DebitLocked spends funds that were previously locked, shrinking both the
// locked portion and the total balance.
func (a *Account) DebitLocked(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidEntryAmount
	}
	if a.LockedBalance.LessThan(amount) || a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	a.LockedBalance = a.LockedBalance.Sub(amount)
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Validate performs validation on the account model
func (a *Account) Validate() error {
	if a.Kind != AccountKindUser && a.Kind != AccountKindReserve {
		return ErrInvalidAccountKind
	}
	if a.Balance.IsNegative() || a.LockedBalance.IsNegative() {
		return ErrNegativeBalance
	}
	if a.LockedBalance.GreaterThan(a.Balance) {
		return ErrInvariantViolation
	}
	return nil
}
