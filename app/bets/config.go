package bets

import (
	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
)

// Config represents the configuration for the bets module
type Config struct {
	MinBetAmount decimal.Decimal `env:"BET_MIN_AMOUNT"`
	MaxBetAmount decimal.Decimal `env:"BET_MAX_AMOUNT"`
	MaxLegs      int             `env:"BET_MAX_LEGS"`

	// MaxOddsCeiling is the worst-case per-leg payout multiplier used for
	// the pessimistic max-payout reservation at placement. It must not be
	// below the odds compression ceiling or the reservation could undershoot
	// the real liability.
	MaxOddsCeiling decimal.Decimal `env:"BET_MAX_ODDS_CEILING"`

	// CancellationFeeRate is the fraction of the stake kept by the reserve
	// when a bet is cancelled.
	CancellationFeeRate decimal.Decimal `env:"BET_CANCELLATION_FEE_RATE"`

	// Parlay multiplier table: 1 leg pays no bonus; from MinLegsForBonus
	// legs the multiplier ramps linearly from MultiplierStart up to
	// MultiplierCap, reached at LegsForMaxMultiplier legs.
	MultiplierStart      decimal.Decimal `env:"BET_MULTIPLIER_START"`
	MultiplierCap        decimal.Decimal `env:"BET_MULTIPLIER_CAP"`
	LegsForMaxMultiplier int             `env:"BET_LEGS_FOR_MAX_MULTIPLIER"`

	// Imbalance gate: with the touched pools near-balanced a fixed parlay
	// bonus is a pure drain on the reserve, so below ImbalanceThreshold the
	// multiplier clamps to MultiplierFloor, scaling linearly to the full
	// table value at ImbalanceSaturation.
	MultiplierFloor      decimal.Decimal `env:"BET_MULTIPLIER_FLOOR"`
	ImbalanceThreshold   decimal.Decimal `env:"BET_IMBALANCE_THRESHOLD"`
	ImbalanceSaturation  decimal.Decimal `env:"BET_IMBALANCE_SATURATION"`
}

// Validate validates the bets configuration
func (c *Config) Validate() error {
	one := decimal.NewFromInt(1)

	if c.MinBetAmount.LessThanOrEqual(decimal.Zero) || c.MaxBetAmount.LessThanOrEqual(c.MinBetAmount) {
		return models.ErrInvalidBetBounds
	}
	if c.MaxLegs < 1 {
		return models.ErrInvalidBetBounds
	}
	if c.MaxOddsCeiling.LessThanOrEqual(one) {
		return models.ErrInvalidOddsRange
	}
	if c.CancellationFeeRate.LessThan(decimal.Zero) || c.CancellationFeeRate.GreaterThanOrEqual(one) {
		return models.ErrInvalidCancellationFee
	}
	if c.MultiplierStart.LessThan(one) || c.MultiplierCap.LessThan(c.MultiplierStart) {
		return models.ErrInvalidMultiplierTable
	}
	if c.LegsForMaxMultiplier < 2 || c.LegsForMaxMultiplier > c.MaxLegs {
		return models.ErrInvalidMultiplierTable
	}
	if c.MultiplierFloor.LessThan(one) || c.MultiplierFloor.GreaterThan(c.MultiplierCap) {
		return models.ErrInvalidMultiplierTable
	}
	if c.ImbalanceThreshold.LessThanOrEqual(decimal.Zero) ||
		c.ImbalanceSaturation.LessThanOrEqual(c.ImbalanceThreshold) ||
		c.ImbalanceSaturation.GreaterThan(one) {
		return models.ErrInvalidImbalanceThreshold
	}
	return nil
}

// GetDefaultConfig returns the default bets configuration
func GetDefaultConfig() *Config {
	return &Config{
		MinBetAmount:         decimal.NewFromInt(10),
		MaxBetAmount:         decimal.NewFromInt(50000),
		MaxLegs:              10,
		MaxOddsCeiling:       decimal.NewFromFloat(2.05),
		CancellationFeeRate:  decimal.NewFromFloat(0.02),
		MultiplierStart:      decimal.NewFromFloat(1.15),
		MultiplierCap:        decimal.NewFromFloat(1.5),
		LegsForMaxMultiplier: 10,
		MultiplierFloor:      decimal.NewFromFloat(1.1),
		ImbalanceThreshold:   decimal.NewFromFloat(0.1),
		ImbalanceSaturation:  decimal.NewFromFloat(0.4),
	}
}
