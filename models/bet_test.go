package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBet() *Bet {
	return &Bet{
		ID:         1,
		OwnerID:    uuid.New(),
		RoundID:    1,
		Amount:     decimal.NewFromInt(90),
		Multiplier: OddsFromFloat(1.5),
		MaxPayout:  decimal.NewFromInt(277),
		Status:     BetStatusActive,
		PlacedAt:   time.Now(),
		Legs: []BetLeg{
			{MatchIndex: 0, Predicted: OutcomeHome, Amount: decimal.NewFromInt(30)},
			{MatchIndex: 1, Predicted: OutcomeAway, Amount: decimal.NewFromInt(30)},
			{MatchIndex: 2, Predicted: OutcomeDraw, Amount: decimal.NewFromInt(30)},
		},
	}
}

func TestBet_Validate(t *testing.T) {
	t.Run("valid parlay", func(t *testing.T) {
		assert.NoError(t, newTestBet().Validate())
	})

	t.Run("duplicate match index rejected", func(t *testing.T) {
		b := newTestBet()
		b.Legs[2].MatchIndex = 0
		assert.ErrorIs(t, b.Validate(), ErrDuplicateBetLeg)
	})

	t.Run("no legs", func(t *testing.T) {
		b := newTestBet()
		b.Legs = nil
		assert.ErrorIs(t, b.Validate(), ErrNoBetLegs)
	})

	t.Run("leg sum mismatch", func(t *testing.T) {
		b := newTestBet()
		b.Legs[0].Amount = decimal.NewFromInt(31)
		assert.ErrorIs(t, b.Validate(), ErrLegAmountMismatch)
	})

	t.Run("invalid outcome", func(t *testing.T) {
		b := newTestBet()
		b.Legs[1].Predicted = Outcome("maybe")
		assert.ErrorIs(t, b.Validate(), ErrInvalidOutcome)
	})

	t.Run("nil owner", func(t *testing.T) {
		b := newTestBet()
		b.OwnerID = uuid.Nil
		assert.ErrorIs(t, b.Validate(), ErrInvalidOwnerID)
	})

	t.Run("non-positive multiplier", func(t *testing.T) {
		b := newTestBet()
		b.Multiplier = Odds{}
		assert.ErrorIs(t, b.Validate(), ErrInvalidOddsValue)
	})
}

func TestBet_HasDuplicateLegs(t *testing.T) {
	b := newTestBet()
	assert.False(t, b.HasDuplicateLegs())

	b.Legs = append(b.Legs, BetLeg{MatchIndex: 1, Predicted: OutcomeHome, Amount: decimal.NewFromInt(1)})
	assert.True(t, b.HasDuplicateLegs())
}

func TestBet_MarkClaimed(t *testing.T) {
	b := newTestBet()
	now := time.Now()

	require.NoError(t, b.MarkClaimed(decimal.NewFromInt(200), decimal.NewFromInt(20), now))
	assert.Equal(t, BetStatusClaimed, b.Status)
	require.NotNil(t, b.PayoutAmount)
	assert.True(t, b.PayoutAmount.Equal(decimal.NewFromInt(200)))
	require.NotNil(t, b.BountyPaid)
	assert.True(t, b.BountyPaid.Equal(decimal.NewFromInt(20)))

	t.Run("double claim rejected", func(t *testing.T) {
		err := b.MarkClaimed(decimal.NewFromInt(200), decimal.Zero, now)
		assert.ErrorIs(t, err, ErrBetAlreadyClaimed)
	})
}

func TestBet_MarkLost(t *testing.T) {
	b := newTestBet()
	require.NoError(t, b.MarkLost(time.Now()))
	assert.Equal(t, BetStatusLost, b.Status)
	require.NotNil(t, b.PayoutAmount)
	assert.True(t, b.PayoutAmount.IsZero())

	assert.ErrorIs(t, b.MarkLost(time.Now()), ErrBetNotActive)
}

func TestBet_Cancel(t *testing.T) {
	b := newTestBet()
	require.NoError(t, b.Cancel(decimal.NewFromInt(85), time.Now()))
	assert.Equal(t, BetStatusCancelled, b.Status)

	assert.ErrorIs(t, b.Cancel(decimal.Zero, time.Now()), ErrBetNotActive)
}

func TestSplitStake(t *testing.T) {
	t.Run("even split", func(t *testing.T) {
		parts := SplitStake(decimal.NewFromInt(90), 3)
		require.Len(t, parts, 3)
		for _, p := range parts {
			assert.True(t, p.Equal(decimal.NewFromInt(30)))
		}
	})

	t.Run("remainder goes to first leg", func(t *testing.T) {
		parts := SplitStake(decimal.NewFromInt(100), 3)
		require.Len(t, parts, 3)
		assert.True(t, parts[0].Equal(decimal.NewFromInt(34)))
		assert.True(t, parts[1].Equal(decimal.NewFromInt(33)))
		assert.True(t, parts[2].Equal(decimal.NewFromInt(33)))

		sum := decimal.Zero
		for _, p := range parts {
			sum = sum.Add(p)
		}
		assert.True(t, sum.Equal(decimal.NewFromInt(100)), "no unit silently dropped")
	})

	t.Run("single leg", func(t *testing.T) {
		parts := SplitStake(decimal.NewFromInt(100), 1)
		require.Len(t, parts, 1)
		assert.True(t, parts[0].Equal(decimal.NewFromInt(100)))
	})

	t.Run("zero legs", func(t *testing.T) {
		assert.Nil(t, SplitStake(decimal.NewFromInt(100), 0))
	})
}
