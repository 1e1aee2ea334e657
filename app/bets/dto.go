package bets

import (
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
)

// PlaceBetLeg is one match prediction in a placement request.
type PlaceBetLeg struct {
	MatchIndex int            `json:"match_index"`
	Predicted  models.Outcome `json:"predicted" binding:"required"`
}

// PlaceBetRequest represents the request to place a bet
type PlaceBetRequest struct {
	RoundID int64           `json:"round_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Legs    []PlaceBetLeg   `json:"legs" binding:"required"`
}

// BetLegResponse represents one leg of a bet in API responses
type BetLegResponse struct {
	MatchIndex int             `json:"match_index"`
	Predicted  models.Outcome  `json:"predicted"`
	Amount     decimal.Decimal `json:"amount"`
}

// BetResponse represents a bet in API responses
type BetResponse struct {
	ID           int64            `json:"id"`
	OwnerID      uuid.UUID        `json:"owner_id"`
	RoundID      int64            `json:"round_id"`
	Amount       decimal.Decimal  `json:"amount"`
	Multiplier   models.Odds      `json:"multiplier"`
	MaxPayout    decimal.Decimal  `json:"max_payout"`
	Status       models.BetStatus `json:"status"`
	PlacedAt     time.Time        `json:"placed_at"`
	SettledAt    *time.Time       `json:"settled_at,omitempty"`
	PayoutAmount *decimal.Decimal `json:"payout_amount,omitempty"`
	Legs         []BetLegResponse `json:"legs"`
}

// ToBetResponse converts a bet model to its API representation
func ToBetResponse(bet *models.Bet) *BetResponse {
	legs := make([]BetLegResponse, len(bet.Legs))
	for i := range bet.Legs {
		legs[i] = BetLegResponse{
			MatchIndex: bet.Legs[i].MatchIndex,
			Predicted:  bet.Legs[i].Predicted,
			Amount:     bet.Legs[i].Amount,
		}
	}
	return &BetResponse{
		ID:           bet.ID,
		OwnerID:      bet.OwnerID,
		RoundID:      bet.RoundID,
		Amount:       bet.Amount,
		Multiplier:   bet.Multiplier,
		MaxPayout:    bet.MaxPayout,
		Status:       bet.Status,
		PlacedAt:     bet.PlacedAt,
		SettledAt:    bet.SettledAt,
		PayoutAmount: bet.PayoutAmount,
		Legs:         legs,
	}
}
