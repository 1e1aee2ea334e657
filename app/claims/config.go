package claims

import (
	"time"

	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
)

// Config represents the configuration for the claims module
type Config struct {
	// ClaimWindow is how long after settlement only the bet owner may
	// claim. Shared with the rounds module so sweeps and claims agree on
	// the deadline. The deadline instant itself is still claimable.
	ClaimWindow time.Duration `env:"CLAIM_WINDOW"`

	// BountyFraction is the cut of the payout awarded to a third party who
	// claims on the owner's behalf after the window closes.
	BountyFraction decimal.Decimal `env:"CLAIM_BOUNTY_FRACTION"`

	// MinBountyPayout keeps third-party claims off dust payouts where the
	// bounty would not cover the claimant's transaction cost.
	MinBountyPayout decimal.Decimal `env:"CLAIM_MIN_BOUNTY_PAYOUT"`
}

// Validate validates the claims configuration
func (c *Config) Validate() error {
	if c.ClaimWindow <= 0 {
		return models.ErrInvalidClaimWindow
	}
	one := decimal.NewFromInt(1)
	if c.BountyFraction.LessThanOrEqual(decimal.Zero) || c.BountyFraction.GreaterThanOrEqual(one) {
		return models.ErrInvalidBountyFraction
	}
	if c.MinBountyPayout.IsNegative() {
		return models.ErrInvalidBountyFraction
	}
	return nil
}

// GetDefaultConfig returns the default claims configuration
func GetDefaultConfig() *Config {
	return &Config{
		ClaimWindow:     24 * time.Hour,
		BountyFraction:  decimal.NewFromFloat(0.10),
		MinBountyPayout: decimal.NewFromInt(100),
	}
}
