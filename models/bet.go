package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetStatus represents the lifecycle state of a bet.
type BetStatus string

const (
	BetStatusActive    BetStatus = "active"
	BetStatusClaimed   BetStatus = "claimed"
	BetStatusLost      BetStatus = "lost"
	BetStatusCancelled BetStatus = "cancelled"
)

// BetLeg is one match prediction inside a bet. Leg amounts are the even split
// of the stake with the remainder allocated to the first leg.
type BetLeg struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	BetID      int64           `gorm:"not null;index:idx_bet_legs_bet" json:"bet_id"`
	MatchIndex int             `gorm:"not null;check:match_index >= 0" json:"match_index"`
	Predicted  Outcome         `gorm:"type:varchar(10);not null" json:"predicted"`
	Amount     decimal.Decimal `gorm:"type:decimal(30,0);not null;check:amount > 0" json:"amount"`
}

// TableName specifies the table name for BetLeg model
func (*BetLeg) TableName() string {
	return "bet_legs"
}

// Bet represents one wager, possibly spanning multiple match legs. The bets
// table is append-only: records are never deleted, only status transitions.
// Bet ids are monotonic starting at 1; id 0 always means "no such bet".
type Bet struct {
	ID      int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index:idx_bets_owner" json:"owner_id"`
	RoundID int64     `gorm:"not null;index:idx_bets_round" json:"round_id"`

	Amount decimal.Decimal `gorm:"type:decimal(30,0);not null;check:amount > 0" json:"amount"`

	// Multiplier is locked at placement and never recomputed.
	Multiplier Odds            `gorm:"type:decimal(38,18);not null" json:"multiplier"`
	MaxPayout  decimal.Decimal `gorm:"type:decimal(30,0);not null" json:"max_payout"`

	Status       BetStatus        `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	PlacedAt     time.Time        `gorm:"type:timestamptz;not null" json:"placed_at"`
	SettledAt    *time.Time       `gorm:"type:timestamptz" json:"settled_at,omitempty"`
	PayoutAmount *decimal.Decimal `gorm:"type:decimal(30,0)" json:"payout_amount,omitempty"`
	BountyPaid   *decimal.Decimal `gorm:"type:decimal(30,0)" json:"bounty_paid,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Legs        []BetLeg           `gorm:"foreignKey:BetID" json:"legs"`
	Reservation *ParlayReservation `gorm:"foreignKey:BetID" json:"-"`
}

// TableName specifies the table name for Bet model
func (*Bet) TableName() string {
	return "bets"
}

// IsActive checks if the bet is still active
func (b *Bet) IsActive() bool {
	return b.Status == BetStatusActive
}

// IsParlay reports whether the bet spans more than one match.
func (b *Bet) IsParlay() bool {
	return len(b.Legs) > 1
}

// HasDuplicateLegs reports whether two legs target the same match. Duplicate
// legs inflate parlay-bonus eligibility without independent risk and must be
// rejected before any pool mutation.
func (b *Bet) HasDuplicateLegs() bool {
	seen := make(map[int]struct{}, len(b.Legs))
	for i := range b.Legs {
		if _, ok := seen[b.Legs[i].MatchIndex]; ok {
			return true
		}
		seen[b.Legs[i].MatchIndex] = struct{}{}
	}
	return false
}

// MarkClaimed settles the bet as a paid winner exactly once.
func (b *Bet) MarkClaimed(payout decimal.Decimal, bounty decimal.Decimal, at time.Time) error {
	if b.Status == BetStatusClaimed {
		return ErrBetAlreadyClaimed
	}
	if !b.IsActive() {
		return ErrBetNotActive
	}
	b.Status = BetStatusClaimed
	b.SettledAt = &at
	b.PayoutAmount = &payout
	if bounty.IsPositive() {
		b.BountyPaid = &bounty
	}
	return nil
}

// MarkLost records a losing bet exactly once.
func (b *Bet) MarkLost(at time.Time) error {
	if !b.IsActive() {
		return ErrBetNotActive
	}
	zero := decimal.Zero
	b.Status = BetStatusLost
	b.SettledAt = &at
	b.PayoutAmount = &zero
	return nil
}

// Cancel voids the bet before settlement, recording the refunded amount.
func (b *Bet) Cancel(refund decimal.Decimal, at time.Time) error {
	if !b.IsActive() {
		return ErrBetNotActive
	}
	b.Status = BetStatusCancelled
	b.SettledAt = &at
	b.PayoutAmount = &refund
	return nil
}

// Validate performs validation on the bet model
func (b *Bet) Validate() error {
	if b.OwnerID == uuid.Nil {
		return ErrInvalidOwnerID
	}
	if b.RoundID <= 0 {
		return ErrInvalidRoundID
	}
	if b.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidStakeAmount
	}
	if len(b.Legs) == 0 {
		return ErrNoBetLegs
	}
	if b.HasDuplicateLegs() {
		return ErrDuplicateBetLeg
	}
	legSum := decimal.Zero
	for i := range b.Legs {
		if !b.Legs[i].Predicted.IsValid() {
			return ErrInvalidOutcome
		}
		if b.Legs[i].Amount.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidStakeAmount
		}
		legSum = legSum.Add(b.Legs[i].Amount)
	}
	if !legSum.Equal(b.Amount) {
		return ErrLegAmountMismatch
	}
	if !b.Multiplier.IsPositive() {
		return ErrInvalidOddsValue
	}
	return nil
}

// SplitStake divides a stake evenly across n legs. Integer division truncates
// toward zero; the remainder is allocated to the first leg so no unit is ever
// silently dropped.
func SplitStake(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	parts := make([]decimal.Decimal, n)
	per := amount.Div(decimal.NewFromInt(int64(n))).Floor()
	total := per.Mul(decimal.NewFromInt(int64(n)))
	remainder := amount.Sub(total)
	for i := range parts {
		parts[i] = per
	}
	parts[0] = parts[0].Add(remainder)
	return parts
}
