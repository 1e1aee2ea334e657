package pools

import (
	"context"
	"time"

	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OddsTriple holds one payout multiplier per outcome.
type OddsTriple struct {
	Home models.Odds
	Away models.Odds
	Draw models.Odds
}

// For returns the odds for a single outcome.
func (t OddsTriple) For(o models.Outcome) models.Odds {
	switch o {
	case models.OutcomeHome:
		return t.Home
	case models.OutcomeAway:
		return t.Away
	default:
		return t.Draw
	}
}

// OddsEngine converts pool state into bounded payout multipliers. All
// methods are pure functions of the pool snapshot and the configuration.
type OddsEngine interface {
	// RawOdds computes totalPool/pool[o] per outcome. A zero pool yields
	// the configured ceiling instead of a division fault.
	RawOdds(pool *models.MatchPool) OddsTriple

	// DampedOdds is RawOdds with the virtual liquidity amount split evenly
	// across the outcomes, bounding per-bet price impact.
	DampedOdds(pool *models.MatchPool) OddsTriple

	// Compress maps raw odds monotonically onto the bounded payout range,
	// clamping inputs outside the configured domain. Re-applying it to a
	// compressed value keeps the value inside the payout range and never
	// reorders two inputs.
	Compress(raw models.Odds) models.Odds

	// LockableOdds is the damped+compressed snapshot stored at seed time.
	LockableOdds(pool *models.MatchPool) OddsTriple
}

// Repository defines the interface for pool data access
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetRound(ctx context.Context, roundID int64) (*models.Round, error)
	GetRoundForUpdate(ctx context.Context, roundID int64) (*models.Round, error)
	UpdateRound(ctx context.Context, round *models.Round) error

	CreateMatchPool(ctx context.Context, pool *models.MatchPool) error
	GetMatchPool(ctx context.Context, roundID int64, matchIndex int) (*models.MatchPool, error)
	GetMatchPoolForUpdate(ctx context.Context, roundID int64, matchIndex int) (*models.MatchPool, error)
	GetRoundPools(ctx context.Context, roundID int64) ([]models.MatchPool, error)
	UpdateMatchPool(ctx context.Context, pool *models.MatchPool) error

	CreateRoundAccounting(ctx context.Context, accounting *models.RoundAccounting) error
	GetRoundAccounting(ctx context.Context, roundID int64) (*models.RoundAccounting, error)
	GetRoundAccountingForUpdate(ctx context.Context, roundID int64) (*models.RoundAccounting, error)
	UpdateRoundAccounting(ctx context.Context, accounting *models.RoundAccounting) error
}

// Service owns pool state and its controlled growth and splitting.
type Service interface {
	// WithTx returns a Service scoped to an existing transaction so pool
	// growth composes atomically with bet placement.
	WithTx(tx *gorm.DB) Service

	// SeedRound seeds every match pool from the protocol reserve, locks
	// the odds snapshots, and flips the round's seeded flag. All or
	// nothing; a second call is rejected.
	SeedRound(ctx context.Context, roundID int64, commitHash []byte) error

	// AddStake grows one outcome pool under a row lock and returns the
	// updated pool.
	AddStake(ctx context.Context, roundID int64, matchIndex int, outcome models.Outcome, amount decimal.Decimal, at time.Time) (*models.MatchPool, error)

	// ReverseStake removes a cancelled bet leg's contribution.
	ReverseStake(ctx context.Context, roundID int64, matchIndex int, outcome models.Outcome, amount decimal.Decimal) (*models.MatchPool, error)

	// FinalizeMatch splits a match's total pool into winning and losing
	// amounts. Once per match.
	FinalizeMatch(ctx context.Context, roundID int64, matchIndex int, winner models.Outcome) (winning, losing decimal.Decimal, err error)

	// ReserveLiability admits a bet's stake and pessimistic max payout into
	// the round accounting under a row lock, rejecting placements whose
	// worst-case payout could not be covered by the available reserve plus
	// the round's pool value.
	ReserveLiability(ctx context.Context, roundID int64, stake, maxPayout decimal.Decimal) error

	// ReleaseLiability reverses a retired bet's accounting contribution.
	// A zero stake releases only the potential-liability figure, used when
	// a bet settles without refunding its stake.
	ReleaseLiability(ctx context.Context, roundID int64, stake, maxPayout decimal.Decimal) error

	// SetReservedForWinners writes the structural pool-split liability for
	// a settled round, exactly once and before any revenue is derived.
	SetReservedForWinners(ctx context.Context, roundID int64, amount decimal.Decimal) error

	// RecordClaim adds a paid claim's pool-funded portion to the round
	// accounting.
	RecordClaim(ctx context.Context, roundID int64, amount decimal.Decimal) error

	// SweepAccounting moves a settled round's remaining value to the
	// reserve and flips the revenue flag, exactly once. Returns the swept
	// amount.
	SweepAccounting(ctx context.Context, roundID int64) (decimal.Decimal, error)

	// WinnerShare is the configured fraction of the losing pool owed to
	// winners, exposed for settlement accounting.
	WinnerShare() decimal.Decimal

	// SeedPerMatch is the configured per-match seed amount, exposed so the
	// seed commitment can bind the layout it promises.
	SeedPerMatch() decimal.Decimal

	GetLockedOdds(ctx context.Context, roundID int64, matchIndex int) (*LockedOddsResponse, error)
	GetRoundPools(ctx context.Context, roundID int64) ([]PoolResponse, error)
	GetRoundAccounting(ctx context.Context, roundID int64) (*models.RoundAccounting, error)
}
