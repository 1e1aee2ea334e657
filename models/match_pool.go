package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchPool holds the three-way parimutuel pool for one match in one round,
// plus the odds snapshot locked at seed time and the winning/losing split
// produced at settlement.
type MatchPool struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RoundID    int64 `gorm:"not null;uniqueIndex:idx_match_pools_round_match" json:"round_id"`
	MatchIndex int   `gorm:"not null;uniqueIndex:idx_match_pools_round_match;check:match_index >= 0" json:"match_index"`

	HomePool  decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"home_pool"`
	AwayPool  decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"away_pool"`
	DrawPool  decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"draw_pool"`
	TotalPool decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"total_pool"`

	// Odds snapshot, immutable once OddsLockedAt is set.
	LockedHome   Odds       `gorm:"type:decimal(38,18)" json:"locked_home"`
	LockedAway   Odds       `gorm:"type:decimal(38,18)" json:"locked_away"`
	LockedDraw   Odds       `gorm:"type:decimal(38,18)" json:"locked_draw"`
	OddsLockedAt *time.Time `gorm:"type:timestamptz" json:"odds_locked_at,omitempty"`

	Finalized         bool            `gorm:"not null;default:false" json:"finalized"`
	WinningOutcome    *Outcome        `gorm:"type:varchar(10)" json:"winning_outcome,omitempty"`
	WinningPoolAmount decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"winning_pool_amount"`
	LosingPoolAmount  decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"losing_pool_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for MatchPool model
func (*MatchPool) TableName() string {
	return "match_pools"
}

// PoolFor returns the pool total for one outcome.
func (p *MatchPool) PoolFor(o Outcome) decimal.Decimal {
	switch o {
	case OutcomeHome:
		return p.HomePool
	case OutcomeAway:
		return p.AwayPool
	case OutcomeDraw:
		return p.DrawPool
	}
	return decimal.Zero
}

func (p *MatchPool) setPool(o Outcome, amount decimal.Decimal) {
	switch o {
	case OutcomeHome:
		p.HomePool = amount
	case OutcomeAway:
		p.AwayPool = amount
	case OutcomeDraw:
		p.DrawPool = amount
	}
}

// CheckConsistency verifies the pool-sum invariant. A mismatch is an engine
// defect, not a caller condition.
func (p *MatchPool) CheckConsistency() error {
	sum := p.HomePool.Add(p.AwayPool).Add(p.DrawPool)
	if !sum.Equal(p.TotalPool) {
		return ErrPoolSumMismatch
	}
	return nil
}

// ApplyStake grows one outcome's pool additively.
func (p *MatchPool) ApplyStake(o Outcome, amount decimal.Decimal) error {
	if !o.IsValid() {
		return ErrInvalidOutcome
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidStakeAmount
	}
	if p.Finalized {
		return ErrMatchAlreadyFinalized
	}
	p.setPool(o, p.PoolFor(o).Add(amount))
	p.TotalPool = p.TotalPool.Add(amount)
	return p.CheckConsistency()
}

// ReverseStake removes a prior contribution, used only by bet cancellation.
func (p *MatchPool) ReverseStake(o Outcome, amount decimal.Decimal) error {
	if !o.IsValid() {
		return ErrInvalidOutcome
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidStakeAmount
	}
	if p.Finalized {
		return ErrMatchAlreadyFinalized
	}
	if p.PoolFor(o).LessThan(amount) {
		return ErrInvariantViolation
	}
	p.setPool(o, p.PoolFor(o).Sub(amount))
	p.TotalPool = p.TotalPool.Sub(amount)
	return p.CheckConsistency()
}

// OddsLocked reports whether the odds snapshot has been taken.
func (p *MatchPool) OddsLocked() bool {
	return p.OddsLockedAt != nil
}

// LockOdds stores the odds snapshot exactly once.
func (p *MatchPool) LockOdds(home, away, draw Odds, at time.Time) error {
	if p.OddsLocked() {
		return ErrOddsAlreadyLocked
	}
	if !home.IsPositive() || !away.IsPositive() || !draw.IsPositive() {
		return ErrInvalidOddsValue
	}
	p.LockedHome = home
	p.LockedAway = away
	p.LockedDraw = draw
	p.OddsLockedAt = &at
	return nil
}

// LockedFor returns the locked odds for one outcome.
func (p *MatchPool) LockedFor(o Outcome) (Odds, error) {
	if !p.OddsLocked() {
		return Odds{}, ErrOddsNotLocked
	}
	switch o {
	case OutcomeHome:
		return p.LockedHome, nil
	case OutcomeAway:
		return p.LockedAway, nil
	case OutcomeDraw:
		return p.LockedDraw, nil
	}
	return Odds{}, ErrInvalidOutcome
}

// Finalize splits the pool into winning and losing components exactly once.
func (p *MatchPool) Finalize(winner Outcome) (winning, losing decimal.Decimal, err error) {
	if !winner.IsValid() {
		return decimal.Zero, decimal.Zero, ErrInvalidOutcome
	}
	if p.Finalized {
		return decimal.Zero, decimal.Zero, ErrMatchAlreadyFinalized
	}
	if err := p.CheckConsistency(); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	winning = p.PoolFor(winner)
	losing = p.TotalPool.Sub(winning)
	p.Finalized = true
	p.WinningOutcome = &winner
	p.WinningPoolAmount = winning
	p.LosingPoolAmount = losing
	return winning, losing, nil
}

// Validate performs validation on the match pool model
func (p *MatchPool) Validate() error {
	if p.RoundID <= 0 {
		return ErrInvalidRoundID
	}
	if p.MatchIndex < 0 {
		return ErrInvalidMatchIndex
	}
	if p.HomePool.IsNegative() || p.AwayPool.IsNegative() || p.DrawPool.IsNegative() {
		return ErrInvalidStakeAmount
	}
	return p.CheckConsistency()
}
