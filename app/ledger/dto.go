package ledger

import (
	"time"

	"github.com/joefazee/toto/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents the request to create an account
type CreateAccountRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID               uuid.UUID          `json:"id"`
	Kind             models.AccountKind `json:"kind"`
	Balance          decimal.Decimal    `json:"balance"`
	LockedBalance    decimal.Decimal    `json:"locked_balance"`
	AvailableBalance decimal.Decimal    `json:"available_balance"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID            uuid.UUID        `json:"id"`
	AccountID     uuid.UUID        `json:"account_id"`
	EntryType     models.EntryType `json:"entry_type"`
	Amount        decimal.Decimal  `json:"amount"`
	BalanceBefore decimal.Decimal  `json:"balance_before"`
	BalanceAfter  decimal.Decimal  `json:"balance_after"`
	RoundID       *int64           `json:"round_id,omitempty"`
	BetID         *int64           `json:"bet_id,omitempty"`
	Description   string           `json:"description,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ReserveResponse represents the reserve position in API responses
type ReserveResponse struct {
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
	Total     decimal.Decimal `json:"total"`
}

// ToAccountResponse converts an account model to an API response
func ToAccountResponse(account *models.Account) *AccountResponse {
	return &AccountResponse{
		ID:               account.ID,
		Kind:             account.Kind,
		Balance:          account.Balance,
		LockedBalance:    account.LockedBalance,
		AvailableBalance: account.Available(),
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
	}
}

// ToEntryResponse converts a ledger entry model to an API response
func ToEntryResponse(entry *models.Transaction) *EntryResponse {
	return &EntryResponse{
		ID:            entry.ID,
		AccountID:     entry.AccountID,
		EntryType:     entry.EntryType,
		Amount:        entry.Amount,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		RoundID:       entry.RoundID,
		BetID:         entry.BetID,
		Description:   entry.Description,
		CreatedAt:     entry.CreatedAt,
	}
}
