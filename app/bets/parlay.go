package bets

import (
	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
)

// MultiplierPolicy computes the parlay bonus multiplier locked into a bet at
// placement. All methods are pure functions of the inputs and the
// configuration; reserving and releasing the implied bonus is the service's
// job.
type MultiplierPolicy interface {
	// Multiplier returns the payout multiplier for a bet with the given leg
	// count, gated by the observed pool imbalance signal.
	Multiplier(legCount int, imbalance decimal.Decimal) models.Odds

	// ImbalanceSignal condenses the touched pools into a value in [0, 1].
	// Zero means every pool is perfectly balanced, one means each pool is
	// concentrated on a single outcome.
	ImbalanceSignal(pools []*models.MatchPool) decimal.Decimal

	// BonusAmount is the reserve exposure implied by a multiplier above
	// 1.0x applied to the pessimistic base payout bound.
	BonusAmount(maxBasePayout decimal.Decimal, multiplier models.Odds) decimal.Decimal
}

type multiplierPolicy struct {
	config *Config
}

// NewMultiplierPolicy creates the leg-count step policy from the bets
// configuration.
func NewMultiplierPolicy(config *Config) MultiplierPolicy {
	return &multiplierPolicy{config: config}
}

// tableValue is the ungated multiplier for a leg count: 1.0x for a single
// leg, then a linear ramp from MultiplierStart at two legs to MultiplierCap
// at LegsForMaxMultiplier legs.
func (p *multiplierPolicy) tableValue(legCount int) decimal.Decimal {
	if legCount <= 1 {
		return decimal.NewFromInt(1)
	}
	if legCount >= p.config.LegsForMaxMultiplier {
		return p.config.MultiplierCap
	}
	span := p.config.MultiplierCap.Sub(p.config.MultiplierStart)
	steps := decimal.NewFromInt(int64(p.config.LegsForMaxMultiplier - 2))
	if steps.IsZero() {
		return p.config.MultiplierCap
	}
	progress := decimal.NewFromInt(int64(legCount - 2))
	return p.config.MultiplierStart.Add(span.Mul(progress).Div(steps))
}

// Multiplier gates the table value on the imbalance signal. Near-balanced
// pools would make a fixed bonus a pure reserve drain, so below the threshold
// the multiplier clamps to the floor and only scales back up to the full
// table value as the signal approaches saturation.
func (p *multiplierPolicy) Multiplier(legCount int, imbalance decimal.Decimal) models.Odds {
	table := p.tableValue(legCount)
	one := decimal.NewFromInt(1)
	if table.LessThanOrEqual(one) {
		return models.UnitOdds()
	}

	floor := p.config.MultiplierFloor
	if floor.GreaterThan(table) {
		floor = table
	}
	if imbalance.LessThanOrEqual(p.config.ImbalanceThreshold) {
		return models.OddsFromDecimal(floor)
	}
	if imbalance.GreaterThanOrEqual(p.config.ImbalanceSaturation) {
		return models.OddsFromDecimal(table)
	}

	span := p.config.ImbalanceSaturation.Sub(p.config.ImbalanceThreshold)
	progress := imbalance.Sub(p.config.ImbalanceThreshold).Div(span)
	gated := floor.Add(table.Sub(floor).Mul(progress))
	return models.OddsFromDecimal(gated)
}

// ImbalanceSignal averages the per-pool spread between the largest and
// smallest outcome pool, normalized by the pool total. Empty input or empty
// pools read as balanced.
func (p *multiplierPolicy) ImbalanceSignal(pools []*models.MatchPool) decimal.Decimal {
	if len(pools) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	counted := 0
	for _, pool := range pools {
		if pool == nil || !pool.TotalPool.IsPositive() {
			continue
		}
		lo, hi := pool.HomePool, pool.HomePool
		for _, v := range []decimal.Decimal{pool.AwayPool, pool.DrawPool} {
			if v.LessThan(lo) {
				lo = v
			}
			if v.GreaterThan(hi) {
				hi = v
			}
		}
		sum = sum.Add(hi.Sub(lo).Div(pool.TotalPool))
		counted++
	}
	if counted == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(counted)))
}

// BonusAmount is maxBasePayout x (multiplier - 1), floored to whole units and
// never negative.
func (p *multiplierPolicy) BonusAmount(maxBasePayout decimal.Decimal, multiplier models.Odds) decimal.Decimal {
	excess := multiplier.Decimal().Sub(decimal.NewFromInt(1))
	if !excess.IsPositive() {
		return decimal.Zero
	}
	return maxBasePayout.Mul(excess).Ceil()
}
