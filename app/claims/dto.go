package claims

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joefazee/toto/models"
)

// ClaimResponse reports a paid claim.
type ClaimResponse struct {
	BetID       int64            `json:"bet_id"`
	Status      models.BetStatus `json:"status"`
	BasePayout  decimal.Decimal  `json:"base_payout"`
	Multiplier  models.Odds      `json:"multiplier"`
	TotalPayout decimal.Decimal  `json:"total_payout"`
	BountyPaid  decimal.Decimal  `json:"bounty_paid"`
	OwnerPayout decimal.Decimal  `json:"owner_payout"`
	ClaimedAt   time.Time        `json:"claimed_at"`
}

// PayoutPreview is the dry-run view of a claim.
type PayoutPreview struct {
	BetID         int64            `json:"bet_id"`
	Status        models.BetStatus `json:"status"`
	Winning       bool             `json:"winning"`
	BasePayout    decimal.Decimal  `json:"base_payout"`
	Multiplier    models.Odds      `json:"multiplier"`
	TotalPayout   decimal.Decimal  `json:"total_payout"`
	ClaimDeadline *time.Time       `json:"claim_deadline,omitempty"`
}
