package rounds

import (
	"time"

	"github.com/joefazee/toto/models"
)

// Config represents the configuration for the rounds module
type Config struct {
	DefaultMatchCount int           `env:"ROUND_DEFAULT_MATCH_COUNT"`
	RoundDuration     time.Duration `env:"ROUND_DURATION"`

	// ResolutionTimeout bounds how long a round waits on the randomness
	// source before the fallback entropy path settles it.
	ResolutionTimeout time.Duration `env:"ROUND_RESOLUTION_TIMEOUT"`

	// ClaimWindow is how long after settlement only the bet owner may
	// claim. The deadline instant itself is still inside the window.
	ClaimWindow time.Duration `env:"CLAIM_WINDOW"`

	// GracePeriod separates the end of the claim window from the sweep so
	// a claim and a sweep racing at the boundary cannot both pay.
	GracePeriod time.Duration `env:"ROUND_SWEEP_GRACE_PERIOD"`

	// SchedulerSpec is the cron spec driving close, resolve, and sweep.
	SchedulerSpec string `env:"ROUND_SCHEDULER_SPEC"`
}

// Validate validates the rounds configuration
func (c *Config) Validate() error {
	if c.DefaultMatchCount <= 0 {
		return models.ErrInvalidMatchCount
	}
	if c.RoundDuration <= 0 {
		return models.ErrInvalidRoundDuration
	}
	if c.ResolutionTimeout <= 0 {
		return models.ErrInvalidResolutionTimeout
	}
	if c.ClaimWindow <= 0 {
		return models.ErrInvalidClaimWindow
	}
	if c.GracePeriod < 0 {
		return models.ErrInvalidGracePeriod
	}
	return nil
}

// GetDefaultConfig returns the default rounds configuration
func GetDefaultConfig() *Config {
	return &Config{
		DefaultMatchCount: 3,
		RoundDuration:     24 * time.Hour,
		ResolutionTimeout: 10 * time.Minute,
		ClaimWindow:       24 * time.Hour,
		GracePeriod:       time.Hour,
		SchedulerSpec:     "* * * * *",
	}
}
