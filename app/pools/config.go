package pools

import (
	"time"

	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
)

// Config represents the configuration for the pools module
type Config struct {
	// SeedPerMatch is the amount the protocol reserve puts into every match
	// pool at seeding, split across the three outcomes.
	SeedPerMatch decimal.Decimal `env:"POOL_SEED_PER_MATCH"`

	// SeedWeightHome, SeedWeightAway and SeedWeightDraw shape how the
	// per-match seed splits across the outcomes. Any remainder from the
	// integer split goes to the home pool.
	SeedWeightHome decimal.Decimal `env:"POOL_SEED_WEIGHT_HOME"`
	SeedWeightAway decimal.Decimal `env:"POOL_SEED_WEIGHT_AWAY"`
	SeedWeightDraw decimal.Decimal `env:"POOL_SEED_WEIGHT_DRAW"`

	// VirtualLiquidity is added to the pool totals before odds are computed
	// so a single large bet cannot swing the implied odds. It must stay
	// large relative to SeedPerMatch for the damping bound to hold.
	VirtualLiquidity decimal.Decimal `env:"POOL_VIRTUAL_LIQUIDITY"`

	// RawOddsCeiling substitutes for a division by a zero pool.
	RawOddsCeiling decimal.Decimal `env:"POOL_RAW_ODDS_CEILING"`

	// RawOddsMin and RawOddsMax bound the raw-odds domain compressed into
	// [MinMultiplier, MaxMultiplier]. Inputs outside the domain clamp.
	RawOddsMin    decimal.Decimal `env:"POOL_RAW_ODDS_MIN"`
	RawOddsMax    decimal.Decimal `env:"POOL_RAW_ODDS_MAX"`
	MinMultiplier decimal.Decimal `env:"POOL_MIN_MULTIPLIER"`
	MaxMultiplier decimal.Decimal `env:"POOL_MAX_MULTIPLIER"`

	// WinnerShare is the fraction of the losing pool owed to winners after a
	// match is finalized.
	WinnerShare decimal.Decimal `env:"POOL_WINNER_SHARE"`

	// OddsCacheTTL bounds staleness of the locked-odds read path. Locked
	// odds never change, so this only limits memory held for dead rounds.
	OddsCacheTTL time.Duration `env:"POOL_ODDS_CACHE_TTL"`
}

// Validate validates the pools configuration
func (c *Config) Validate() error {
	if c.SeedPerMatch.LessThanOrEqual(decimal.Zero) {
		return models.ErrInvalidSeedAmount
	}
	if c.SeedWeightHome.LessThanOrEqual(decimal.Zero) ||
		c.SeedWeightAway.LessThanOrEqual(decimal.Zero) ||
		c.SeedWeightDraw.LessThanOrEqual(decimal.Zero) {
		return models.ErrInvalidSeedAmount
	}
	if c.VirtualLiquidity.LessThan(c.SeedPerMatch) {
		return models.ErrInvalidVirtualLiquidity
	}
	if c.RawOddsCeiling.LessThanOrEqual(decimal.NewFromInt(1)) {
		return models.ErrInvalidOddsRange
	}
	if c.RawOddsMin.LessThan(decimal.NewFromInt(1)) || c.RawOddsMax.LessThanOrEqual(c.RawOddsMin) {
		return models.ErrInvalidOddsRange
	}
	if c.MinMultiplier.LessThanOrEqual(decimal.NewFromInt(1)) || c.MaxMultiplier.LessThanOrEqual(c.MinMultiplier) {
		return models.ErrInvalidOddsRange
	}
	// The payout range must nest inside the raw domain so compressing an
	// already-compressed value cannot jump through a clamp.
	if c.MinMultiplier.LessThan(c.RawOddsMin) || c.MaxMultiplier.GreaterThan(c.RawOddsMax) {
		return models.ErrInvalidOddsRange
	}
	if c.WinnerShare.LessThanOrEqual(decimal.Zero) || c.WinnerShare.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return models.ErrInvalidWinnerShare
	}
	if c.OddsCacheTTL < 0 {
		return models.ErrInvalidOddsRange
	}
	return nil
}

// GetDefaultConfig returns the default pools configuration
func GetDefaultConfig() *Config {
	return &Config{
		SeedPerMatch:     decimal.NewFromInt(300),
		SeedWeightHome:   decimal.NewFromInt(6),
		SeedWeightAway:   decimal.NewFromInt(4),
		SeedWeightDraw:   decimal.NewFromInt(5),
		VirtualLiquidity: decimal.NewFromInt(18000), // 60x the per-match seed
		RawOddsCeiling:   decimal.NewFromInt(10),
		RawOddsMin:       decimal.NewFromInt(1),
		RawOddsMax:       decimal.NewFromInt(10),
		MinMultiplier:    decimal.NewFromFloat(1.25),
		MaxMultiplier:    decimal.NewFromFloat(2.05),
		WinnerShare:      decimal.NewFromFloat(0.55),
		OddsCacheTTL:     10 * time.Minute,
	}
}
