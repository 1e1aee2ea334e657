package rounds

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joefazee/toto/models"
)

// OpenRoundRequest creates a new round. Zero MatchCount and nil CutoffAt
// fall back to the configured defaults.
type OpenRoundRequest struct {
	MatchCount int        `json:"match_count" binding:"omitempty,min=1,max=20"`
	CutoffAt   *time.Time `json:"cutoff_at"`
}

// RoundResponse is the public view of a round.
type RoundResponse struct {
	ID         int64              `json:"id"`
	Status     models.RoundStatus `json:"status"`
	MatchCount int                `json:"match_count"`
	Seeded     bool               `json:"seeded"`
	CommitHash []byte             `json:"commit_hash,omitempty"`
	OpensAt    time.Time          `json:"opens_at"`
	CutoffAt   time.Time          `json:"cutoff_at"`
	SettledAt  *time.Time         `json:"settled_at,omitempty"`
}

// SweepResponse reports the outcome of sweeping a settled round.
type SweepResponse struct {
	RoundID     int64           `json:"round_id"`
	SweptAmount decimal.Decimal `json:"swept_amount"`
	ExpiredBets int             `json:"expired_bets"`
}

func ToRoundResponse(round *models.Round) *RoundResponse {
	return &RoundResponse{
		ID:         round.ID,
		Status:     round.Status,
		MatchCount: round.MatchCount,
		Seeded:     round.Seeded,
		CommitHash: round.CommitHash,
		OpensAt:    round.OpensAt,
		CutoffAt:   round.CutoffAt,
		SettledAt:  round.SettledAt,
	}
}
