package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool() *MatchPool {
	return &MatchPool{
		RoundID:    1,
		MatchIndex: 0,
		HomePool:   decimal.NewFromInt(120),
		AwayPool:   decimal.NewFromInt(80),
		DrawPool:   decimal.NewFromInt(100),
		TotalPool:  decimal.NewFromInt(300),
	}
}

func TestMatchPool_ApplyStake(t *testing.T) {
	p := newTestPool()

	require.NoError(t, p.ApplyStake(OutcomeHome, decimal.NewFromInt(50)))
	assert.True(t, p.HomePool.Equal(decimal.NewFromInt(170)))
	assert.True(t, p.TotalPool.Equal(decimal.NewFromInt(350)))
	assert.NoError(t, p.CheckConsistency())

	t.Run("invalid outcome", func(t *testing.T) {
		err := p.ApplyStake(Outcome("banana"), decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrInvalidOutcome)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		err := p.ApplyStake(OutcomeAway, decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidStakeAmount)
	})

	t.Run("finalized pool rejects stake", func(t *testing.T) {
		fp := newTestPool()
		_, _, err := fp.Finalize(OutcomeHome)
		require.NoError(t, err)
		assert.ErrorIs(t, fp.ApplyStake(OutcomeHome, decimal.NewFromInt(1)), ErrMatchAlreadyFinalized)
	})
}

func TestMatchPool_ReverseStake(t *testing.T) {
	p := newTestPool()

	require.NoError(t, p.ReverseStake(OutcomeAway, decimal.NewFromInt(30)))
	assert.True(t, p.AwayPool.Equal(decimal.NewFromInt(50)))
	assert.True(t, p.TotalPool.Equal(decimal.NewFromInt(270)))

	t.Run("reversal beyond pool is an invariant violation", func(t *testing.T) {
		err := p.ReverseStake(OutcomeAway, decimal.NewFromInt(1000))
		assert.ErrorIs(t, err, ErrInvariantViolation)
	})
}

func TestMatchPool_CheckConsistency(t *testing.T) {
	p := newTestPool()
	assert.NoError(t, p.CheckConsistency())

	p.TotalPool = decimal.NewFromInt(299)
	err := p.CheckConsistency()
	assert.ErrorIs(t, err, ErrPoolSumMismatch)
	assert.True(t, IsInvariantViolation(err))
}

func TestMatchPool_LockOdds(t *testing.T) {
	p := newTestPool()
	now := time.Now()

	require.NoError(t, p.LockOdds(OddsFromFloat(1.55), OddsFromFloat(1.95), OddsFromFloat(1.75), now))
	assert.True(t, p.OddsLocked())

	t.Run("locking twice rejected", func(t *testing.T) {
		err := p.LockOdds(OddsFromFloat(2.0), OddsFromFloat(2.0), OddsFromFloat(2.0), now)
		assert.ErrorIs(t, err, ErrOddsAlreadyLocked)
	})

	t.Run("locked values readable per outcome", func(t *testing.T) {
		o, err := p.LockedFor(OutcomeAway)
		require.NoError(t, err)
		assert.True(t, o.Equal(OddsFromFloat(1.95)))
	})

	t.Run("non-positive odds rejected", func(t *testing.T) {
		fresh := newTestPool()
		err := fresh.LockOdds(Odds{}, OddsFromFloat(1.5), OddsFromFloat(1.5), now)
		assert.ErrorIs(t, err, ErrInvalidOddsValue)
	})
}

func TestMatchPool_LockedFor_NotLocked(t *testing.T) {
	p := newTestPool()
	_, err := p.LockedFor(OutcomeHome)
	assert.ErrorIs(t, err, ErrOddsNotLocked)
}

func TestMatchPool_Finalize(t *testing.T) {
	p := newTestPool()

	winning, losing, err := p.Finalize(OutcomeDraw)
	require.NoError(t, err)
	assert.True(t, winning.Equal(decimal.NewFromInt(100)))
	assert.True(t, losing.Equal(decimal.NewFromInt(200)))
	assert.True(t, p.Finalized)
	require.NotNil(t, p.WinningOutcome)
	assert.Equal(t, OutcomeDraw, *p.WinningOutcome)

	t.Run("refinalization rejected", func(t *testing.T) {
		_, _, err := p.Finalize(OutcomeHome)
		assert.ErrorIs(t, err, ErrMatchAlreadyFinalized)
	})
}

func TestMatchPool_Validate(t *testing.T) {
	p := newTestPool()
	assert.NoError(t, p.Validate())

	p.RoundID = 0
	assert.ErrorIs(t, p.Validate(), ErrInvalidRoundID)
}
