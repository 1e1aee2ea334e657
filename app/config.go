package app

import (
	"time"

	"github.com/joefazee/toto/app/bets"
	"github.com/joefazee/toto/app/claims"
	"github.com/joefazee/toto/app/database"
	"github.com/joefazee/toto/app/pools"
	"github.com/joefazee/toto/app/rounds"
	"github.com/joefazee/toto/internal/nexus"
	"github.com/shopspring/decimal"
)

type Config struct {
	DB database.Config

	AppHost string `env:"APP_HOST" default:"localhost"`
	AppPort string `env:"APP_PORT" default:"8080"`
	Env     string `env:"APP_ENV" default:"development"`

	// TokenSymmetricKey encrypts and verifies API tokens. Must be exactly
	// 32 bytes.
	TokenSymmetricKey string        `env:"TOKEN_SYMMETRIC_KEY"`
	TokenDuration     time.Duration `env:"TOKEN_DURATION"`

	// OperatorAccounts is a comma-separated list of account ids granted
	// the round lifecycle permission.
	OperatorAccounts []string `env:"OPERATOR_ACCOUNTS"`

	// ReserveInitialBalance funds the protocol reserve account when it is
	// first created.
	ReserveInitialBalance decimal.Decimal `env:"RESERVE_INITIAL_BALANCE"`

	Pools  pools.Config
	Bets   bets.Config
	Rounds rounds.Config
	Claims claims.Config
}

// LoadConfig loads the application configuration from environment variables or a config file.
func LoadConfig() (*Config, error) {
	c := &Config{
		TokenDuration:         24 * time.Hour,
		ReserveInitialBalance: decimal.NewFromInt(1_000_000),
		Pools:                 *pools.GetDefaultConfig(),
		Bets:                  *bets.GetDefaultConfig(),
		Rounds:                *rounds.GetDefaultConfig(),
		Claims:                *claims.GetDefaultConfig(),
	}
	err := nexus.NewLoader().Load(c)
	return c, err
}
