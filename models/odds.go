package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// OddsScale is the single canonical fixed-point precision for every odds and
// multiplier value in the system. Conversion to and from this scale happens
// only inside Value and Scan; no other call site may rescale.
const OddsScale = 18

// Odds is a payout multiplier ("payout per unit staked") carried at the
// canonical fixed-point scale. Using a dedicated type keeps a value stored at
// one precision from ever being consumed at another.
type Odds struct {
	d decimal.Decimal
}

// OddsFromDecimal builds an Odds value from a decimal, truncating to the
// canonical scale.
func OddsFromDecimal(d decimal.Decimal) Odds {
	return Odds{d: d.Truncate(OddsScale)}
}

// OddsFromInt builds an Odds value from a whole multiplier.
func OddsFromInt(n int64) Odds {
	return Odds{d: decimal.NewFromInt(n)}
}

// OddsFromFloat builds an Odds value from a float multiplier.
func OddsFromFloat(f float64) Odds {
	return OddsFromDecimal(decimal.NewFromFloat(f))
}

// OddsFromRatio builds an Odds value from num/den. A zero denominator is the
// caller's error; engines substitute their configured ceiling before calling.
func OddsFromRatio(num, den decimal.Decimal) (Odds, error) {
	if den.IsZero() {
		return Odds{}, ErrInvalidOddsValue
	}
	return OddsFromDecimal(num.Div(den)), nil
}

// UnitOdds is the 1.0x multiplier.
func UnitOdds() Odds {
	return OddsFromInt(1)
}

// Decimal returns the multiplier as a decimal at the canonical scale.
func (o Odds) Decimal() decimal.Decimal {
	return o.d
}

// MulAmount applies the multiplier to a staked amount.
func (o Odds) MulAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(o.d)
}

// Mul composes two multipliers.
func (o Odds) Mul(other Odds) Odds {
	return OddsFromDecimal(o.d.Mul(other.d))
}

// Sub returns the difference of two multipliers.
func (o Odds) Sub(other Odds) Odds {
	return OddsFromDecimal(o.d.Sub(other.d))
}

// Add returns the sum of two multipliers.
func (o Odds) Add(other Odds) Odds {
	return OddsFromDecimal(o.d.Add(other.d))
}

func (o Odds) Equal(other Odds) bool {
	return o.d.Equal(other.d)
}

func (o Odds) LessThan(other Odds) bool {
	return o.d.LessThan(other.d)
}

func (o Odds) GreaterThan(other Odds) bool {
	return o.d.GreaterThan(other.d)
}

func (o Odds) IsZero() bool {
	return o.d.IsZero()
}

func (o Odds) IsPositive() bool {
	return o.d.IsPositive()
}

func (o Odds) String() string {
	return o.d.String()
}

// Value implements driver.Valuer. This is the storage boundary: the value is
// serialized at exactly OddsScale decimal places.
func (o Odds) Value() (driver.Value, error) {
	return o.d.StringFixed(OddsScale), nil
}

// Scan implements sql.Scanner, the read side of the storage boundary.
func (o *Odds) Scan(value interface{}) error {
	if value == nil {
		o.d = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("scan odds: %w", err)
	}
	o.d = d.Truncate(OddsScale)
	return nil
}

// MarshalJSON renders the multiplier as a JSON number string.
func (o Odds) MarshalJSON() ([]byte, error) {
	return o.d.MarshalJSON()
}

// UnmarshalJSON parses a JSON number or string multiplier.
func (o *Odds) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	o.d = d.Truncate(OddsScale)
	return nil
}
