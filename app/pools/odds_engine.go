package pools

import (
	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
)

// oddsEngine implements the OddsEngine interface
type oddsEngine struct {
	config *Config
}

// NewOddsEngine creates a new odds engine
func NewOddsEngine(config *Config) OddsEngine {
	return &oddsEngine{config: config}
}

func (e *oddsEngine) RawOdds(pool *models.MatchPool) OddsTriple {
	return e.oddsFrom(pool, decimal.Zero)
}

func (e *oddsEngine) DampedOdds(pool *models.MatchPool) OddsTriple {
	return e.oddsFrom(pool, e.config.VirtualLiquidity)
}

// oddsFrom computes totalPool/pool[o] with virtual liquidity split evenly
// across the outcomes and added to both sides of the division.
func (e *oddsEngine) oddsFrom(pool *models.MatchPool, virtual decimal.Decimal) OddsTriple {
	perOutcome := virtual.Div(decimal.NewFromInt(models.OutcomeCount))
	total := pool.TotalPool.Add(virtual)

	var triple OddsTriple
	for _, o := range models.AllOutcomes() {
		outcomePool := pool.PoolFor(o).Add(perOutcome)
		var odds models.Odds
		if outcomePool.IsZero() {
			odds = models.OddsFromDecimal(e.config.RawOddsCeiling)
		} else {
			ratio := total.Div(outcomePool)
			if ratio.GreaterThan(e.config.RawOddsCeiling) {
				ratio = e.config.RawOddsCeiling
			}
			odds = models.OddsFromDecimal(ratio)
		}
		switch o {
		case models.OutcomeHome:
			triple.Home = odds
		case models.OutcomeAway:
			triple.Away = odds
		case models.OutcomeDraw:
			triple.Draw = odds
		}
	}
	return triple
}

// Compress maps [RawOddsMin, RawOddsMax] linearly onto
// [MinMultiplier, MaxMultiplier], clamping inputs outside the domain. One
// monotone segment covers the whole domain; higher raw odds never produce a
// lower compressed value. Config validation nests the payout range inside the
// raw domain, so a re-compressed value is still in-domain and re-compression
// stays inside the payout range without disturbing the ordering.
func (e *oddsEngine) Compress(raw models.Odds) models.Odds {
	value := raw.Decimal()

	if value.LessThanOrEqual(e.config.RawOddsMin) {
		return models.OddsFromDecimal(e.config.MinMultiplier)
	}
	if value.GreaterThanOrEqual(e.config.RawOddsMax) {
		return models.OddsFromDecimal(e.config.MaxMultiplier)
	}

	rawSpan := e.config.RawOddsMax.Sub(e.config.RawOddsMin)
	payoutSpan := e.config.MaxMultiplier.Sub(e.config.MinMultiplier)
	position := value.Sub(e.config.RawOddsMin).Div(rawSpan)
	return models.OddsFromDecimal(e.config.MinMultiplier.Add(position.Mul(payoutSpan)))
}

func (e *oddsEngine) LockableOdds(pool *models.MatchPool) OddsTriple {
	damped := e.DampedOdds(pool)
	return OddsTriple{
		Home: e.Compress(damped.Home),
		Away: e.Compress(damped.Away),
		Draw: e.Compress(damped.Draw),
	}
}
