package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParlayReservation is the pessimistic upper bound of protocol-reserve funds
// locked for one bet's parlay bonus at placement time. It is released exactly
// once, at claim or at loss, returning the unused portion to the reserve.
type ParlayReservation struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	BetID           int64           `gorm:"not null;uniqueIndex:idx_parlay_reservations_bet" json:"bet_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(30,0);not null;check:amount >= 0" json:"amount"`
	Released        bool            `gorm:"not null;default:false" json:"released"`
	ActualBonusPaid decimal.Decimal `gorm:"type:decimal(30,0);not null;default:0" json:"actual_bonus_paid"`
	ReleasedAt      *time.Time      `gorm:"type:timestamptz" json:"released_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for ParlayReservation model
func (*ParlayReservation) TableName() string {
	return "parlay_reservations"
}

// IsLive reports whether the reservation still holds reserve funds.
func (pr *ParlayReservation) IsLive() bool {
	return !pr.Released && pr.Amount.IsPositive()
}

// Release settles the reservation exactly once, returning the unused portion
// to hand back to the reserve. actualPaid above the reservation is an engine
// defect: the reservation was computed from a worst-case payout bound.
func (pr *ParlayReservation) Release(actualPaid decimal.Decimal, at time.Time) (refund decimal.Decimal, err error) {
	if pr.Released {
		return decimal.Zero, ErrReservationReleased
	}
	if actualPaid.IsNegative() {
		return decimal.Zero, ErrInvalidEntryAmount
	}
	if actualPaid.GreaterThan(pr.Amount) {
		return decimal.Zero, ErrReservationOverpaid
	}
	pr.Released = true
	pr.ActualBonusPaid = actualPaid
	pr.ReleasedAt = &at
	return pr.Amount.Sub(actualPaid), nil
}

// Validate performs validation on the reservation model
func (pr *ParlayReservation) Validate() error {
	if pr.BetID <= 0 {
		return ErrInvalidRoundID
	}
	if pr.Amount.IsNegative() {
		return ErrInvalidEntryAmount
	}
	if pr.ActualBonusPaid.GreaterThan(pr.Amount) {
		return ErrReservationOverpaid
	}
	return nil
}
