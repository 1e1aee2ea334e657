package pools

import (
	"time"

	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
)

// LockedOddsResponse represents a locked odds snapshot in API responses
type LockedOddsResponse struct {
	RoundID    int64       `json:"round_id"`
	MatchIndex int         `json:"match_index"`
	Home       models.Odds `json:"home"`
	Away       models.Odds `json:"away"`
	Draw       models.Odds `json:"draw"`
	Locked     bool        `json:"locked"`
	LockedAt   *time.Time  `json:"locked_at,omitempty"`
}

// PoolResponse represents a match pool in API responses
type PoolResponse struct {
	RoundID           int64           `json:"round_id"`
	MatchIndex        int             `json:"match_index"`
	HomePool          decimal.Decimal `json:"home_pool"`
	AwayPool          decimal.Decimal `json:"away_pool"`
	DrawPool          decimal.Decimal `json:"draw_pool"`
	TotalPool         decimal.Decimal `json:"total_pool"`
	Finalized         bool            `json:"finalized"`
	WinningOutcome    *models.Outcome `json:"winning_outcome,omitempty"`
	WinningPoolAmount decimal.Decimal `json:"winning_pool_amount"`
	LosingPoolAmount  decimal.Decimal `json:"losing_pool_amount"`
}

// AccountingResponse represents round accounting in API responses
type AccountingResponse struct {
	RoundID            int64           `json:"round_id"`
	SeedAmount         decimal.Decimal `json:"seed_amount"`
	TotalVolume        decimal.Decimal `json:"total_volume"`
	ReservedForWinners decimal.Decimal `json:"reserved_for_winners"`
	TotalClaimed       decimal.Decimal `json:"total_claimed"`
	RevenueDistributed bool            `json:"revenue_distributed"`
}

// ToLockedOddsResponse converts a match pool to a locked odds response
func ToLockedOddsResponse(pool *models.MatchPool) *LockedOddsResponse {
	return &LockedOddsResponse{
		RoundID:    pool.RoundID,
		MatchIndex: pool.MatchIndex,
		Home:       pool.LockedHome,
		Away:       pool.LockedAway,
		Draw:       pool.LockedDraw,
		Locked:     pool.OddsLocked(),
		LockedAt:   pool.OddsLockedAt,
	}
}

// ToPoolResponse converts a match pool model to an API response
func ToPoolResponse(pool *models.MatchPool) *PoolResponse {
	return &PoolResponse{
		RoundID:           pool.RoundID,
		MatchIndex:        pool.MatchIndex,
		HomePool:          pool.HomePool,
		AwayPool:          pool.AwayPool,
		DrawPool:          pool.DrawPool,
		TotalPool:         pool.TotalPool,
		Finalized:         pool.Finalized,
		WinningOutcome:    pool.WinningOutcome,
		WinningPoolAmount: pool.WinningPoolAmount,
		LosingPoolAmount:  pool.LosingPoolAmount,
	}
}

// ToAccountingResponse converts round accounting to an API response
func ToAccountingResponse(accounting *models.RoundAccounting) *AccountingResponse {
	return &AccountingResponse{
		RoundID:            accounting.RoundID,
		SeedAmount:         accounting.SeedAmount,
		TotalVolume:        accounting.TotalVolume,
		ReservedForWinners: accounting.ReservedForWinners,
		TotalClaimed:       accounting.TotalClaimed,
		RevenueDistributed: accounting.RevenueDistributed,
	}
}
