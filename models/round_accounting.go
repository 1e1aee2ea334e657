package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundAccounting aggregates money flow over one round. ReservedForWinners is
// computed structurally from the resolved winning/losing pool split of every
// match — never from amounts claimed so far — and must be final before any
// net-revenue figure is derived or surplus released to the reserve.
type RoundAccounting struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RoundID int64 `gorm:"not null;uniqueIndex:idx_round_accounting_round" json:"round_id"`

	SeedAmount         decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"seed_amount"`
	TotalVolume        decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"total_volume"`
	ReservedForWinners decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"reserved_for_winners"`
	TotalClaimed       decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"total_claimed"`

	// PotentialLiability is the running sum of pessimistic max payouts of all
	// active bets, used by the placement-time solvency check.
	PotentialLiability decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"potential_liability"`

	RevenueDistributed bool      `gorm:"not null;default:false" json:"revenue_distributed"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for RoundAccounting model
func (*RoundAccounting) TableName() string {
	return "round_accounting"
}

// AddVolume records accepted stake.
func (ra *RoundAccounting) AddVolume(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidStakeAmount
	}
	ra.TotalVolume = ra.TotalVolume.Add(amount)
	return nil
}

// RemoveVolume reverses a cancelled bet's stake.
func (ra *RoundAccounting) RemoveVolume(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidStakeAmount
	}
	if ra.TotalVolume.LessThan(amount) {
		return ErrInvariantViolation
	}
	ra.TotalVolume = ra.TotalVolume.Sub(amount)
	return nil
}

// AddPotentialLiability grows the running worst-case payout figure.
func (ra *RoundAccounting) AddPotentialLiability(amount decimal.Decimal) {
	ra.PotentialLiability = ra.PotentialLiability.Add(amount)
}

// RemovePotentialLiability releases a retired bet's worst-case figure.
func (ra *RoundAccounting) RemovePotentialLiability(amount decimal.Decimal) error {
	if ra.PotentialLiability.LessThan(amount) {
		return ErrInvariantViolation
	}
	ra.PotentialLiability = ra.PotentialLiability.Sub(amount)
	return nil
}

// SetReservedForWinners records the structural pool-split liability. Written
// once, at settlement, before any revenue computation.
func (ra *RoundAccounting) SetReservedForWinners(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidEntryAmount
	}
	if ra.RevenueDistributed {
		return ErrRevenueDistributed
	}
	ra.ReservedForWinners = amount
	return nil
}

// AddClaimed records a paid claim.
func (ra *RoundAccounting) AddClaimed(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidEntryAmount
	}
	ra.TotalClaimed = ra.TotalClaimed.Add(amount)
	return nil
}

// NetRevenue is total collected value minus total owed to all winners,
// independent of how much has actually been claimed. This is the figure from
// which surplus may be released — "collected minus claimed" is explicitly not
// usable because slow claimants would be left unfunded.
func (ra *RoundAccounting) NetRevenue() decimal.Decimal {
	collected := ra.SeedAmount.Add(ra.TotalVolume)
	return collected.Sub(ra.ReservedForWinners)
}

// DistributeRevenue flips the revenue flag exactly once.
func (ra *RoundAccounting) DistributeRevenue() error {
	if ra.RevenueDistributed {
		return ErrRevenueDistributed
	}
	ra.RevenueDistributed = true
	return nil
}

// Validate performs validation on the round accounting model
func (ra *RoundAccounting) Validate() error {
	if ra.RoundID <= 0 {
		return ErrInvalidRoundID
	}
	if ra.SeedAmount.IsNegative() || ra.TotalVolume.IsNegative() ||
		ra.ReservedForWinners.IsNegative() || ra.TotalClaimed.IsNegative() {
		return ErrInvalidEntryAmount
	}
	return nil
}
