package pools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joefazee/toto/app/ledger"
	"github.com/joefazee/toto/internal/cache"
	"github.com/joefazee/toto/internal/logger"
	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type service struct {
	db     *gorm.DB
	repo   Repository
	engine OddsEngine
	ledger ledger.Port
	cache  cache.Cache[LockedOddsResponse]
	logger logger.Logger
	config *Config
}

// NewService creates a new pools service
func NewService(db *gorm.DB, repo Repository, engine OddsEngine, ledgerPort ledger.Port,
	oddsCache cache.Cache[LockedOddsResponse], log logger.Logger, config *Config) Service {
	return &service{
		db:     db,
		repo:   repo,
		engine: engine,
		ledger: ledgerPort,
		cache:  oddsCache,
		logger: log,
		config: config,
	}
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{
		db:     tx,
		repo:   s.repo.WithTx(tx),
		engine: s.engine,
		ledger: s.ledger.WithTx(tx),
		cache:  s.cache,
		logger: s.logger,
		config: s.config,
	}
}

func (s *service) WinnerShare() decimal.Decimal {
	return s.config.WinnerShare
}

func (s *service) SeedPerMatch() decimal.Decimal {
	return s.config.SeedPerMatch
}

// seedSplit distributes the per-match seed across the outcomes by the
// configured weights. Integer split, remainder to the home pool.
func (s *service) seedSplit() (home, away, draw decimal.Decimal) {
	weightSum := s.config.SeedWeightHome.Add(s.config.SeedWeightAway).Add(s.config.SeedWeightDraw)
	away = s.config.SeedPerMatch.Mul(s.config.SeedWeightAway).Div(weightSum).Floor()
	draw = s.config.SeedPerMatch.Mul(s.config.SeedWeightDraw).Div(weightSum).Floor()
	home = s.config.SeedPerMatch.Sub(away).Sub(draw)
	return home, away, draw
}

func (s *service) SeedRound(ctx context.Context, roundID int64, commitHash []byte) error {
	if roundID <= 0 {
		return models.ErrInvalidRoundID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		round, err := repo.GetRoundForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("get round for seeding: %w", err)
		}
		if round.Seeded {
			return models.ErrRoundAlreadySeeded
		}
		if round.Status != models.RoundStatusOpen {
			return models.ErrRoundNotOpen
		}

		totalSeed := s.config.SeedPerMatch.Mul(decimal.NewFromInt(int64(round.MatchCount)))
		err = ledgerTx.DebitReserve(ctx, totalSeed, ledger.EntryMeta{
			Type:        models.EntryTypeSeed,
			RoundID:     &round.ID,
			Description: fmt.Sprintf("seed %d match pools", round.MatchCount),
		})
		if err != nil {
			return fmt.Errorf("debit reserve for seed: %w", err)
		}

		now := time.Now()
		home, away, draw := s.seedSplit()
		for idx := 0; idx < round.MatchCount; idx++ {
			pool := &models.MatchPool{
				RoundID:    round.ID,
				MatchIndex: idx,
				HomePool:   home,
				AwayPool:   away,
				DrawPool:   draw,
				TotalPool:  s.config.SeedPerMatch,
			}
			if err := pool.CheckConsistency(); err != nil {
				return err
			}

			locked := s.engine.LockableOdds(pool)
			if err := pool.LockOdds(locked.Home, locked.Away, locked.Draw, now); err != nil {
				return fmt.Errorf("lock odds for match %d: %w", idx, err)
			}
			if err := repo.CreateMatchPool(ctx, pool); err != nil {
				return fmt.Errorf("create pool for match %d: %w", idx, err)
			}
		}

		accounting := &models.RoundAccounting{
			RoundID:            round.ID,
			SeedAmount:         totalSeed,
			TotalVolume:        decimal.Zero,
			ReservedForWinners: decimal.Zero,
			TotalClaimed:       decimal.Zero,
			PotentialLiability: decimal.Zero,
		}
		if err := repo.CreateRoundAccounting(ctx, accounting); err != nil {
			return fmt.Errorf("create round accounting: %w", err)
		}

		if err := round.MarkSeeded(commitHash); err != nil {
			return err
		}
		if err := repo.UpdateRound(ctx, round); err != nil {
			return fmt.Errorf("mark round seeded: %w", err)
		}

		s.logger.Info("round seeded", map[string]interface{}{
			"round_id":    round.ID,
			"match_count": round.MatchCount,
			"total_seed":  totalSeed.String(),
		})
		return nil
	})
}

func (s *service) AddStake(ctx context.Context, roundID int64, matchIndex int, outcome models.Outcome, amount decimal.Decimal, at time.Time) (*models.MatchPool, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidStakeAmount
	}

	var updated *models.MatchPool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		round, err := repo.GetRound(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("get round for stake: %w", err)
		}
		if !round.IsOpenForBetting(at) {
			return models.ErrRoundClosed
		}

		pool, err := repo.GetMatchPoolForUpdate(ctx, roundID, matchIndex)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrInvalidMatchIndex
			}
			return fmt.Errorf("lock pool for stake: %w", err)
		}
		if err := pool.ApplyStake(outcome, amount); err != nil {
			if models.IsInvariantViolation(err) {
				s.logger.Error(err, map[string]interface{}{
					"invariant":   "pool-sum",
					"round_id":    roundID,
					"match_index": matchIndex,
				})
			}
			return err
		}
		if err := repo.UpdateMatchPool(ctx, pool); err != nil {
			return fmt.Errorf("update pool after stake: %w", err)
		}
		updated = pool
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ReverseStake(ctx context.Context, roundID int64, matchIndex int, outcome models.Outcome, amount decimal.Decimal) (*models.MatchPool, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidStakeAmount
	}

	var updated *models.MatchPool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		pool, err := repo.GetMatchPoolForUpdate(ctx, roundID, matchIndex)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrInvalidMatchIndex
			}
			return fmt.Errorf("lock pool for reversal: %w", err)
		}
		if err := pool.ReverseStake(outcome, amount); err != nil {
			return err
		}
		if err := repo.UpdateMatchPool(ctx, pool); err != nil {
			return fmt.Errorf("update pool after reversal: %w", err)
		}
		updated = pool
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) FinalizeMatch(ctx context.Context, roundID int64, matchIndex int, winner models.Outcome) (winning, losing decimal.Decimal, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		pool, err := repo.GetMatchPoolForUpdate(ctx, roundID, matchIndex)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrInvalidMatchIndex
			}
			return fmt.Errorf("lock pool for finalization: %w", err)
		}
		winning, losing, err = pool.Finalize(winner)
		if err != nil {
			return err
		}
		if err := repo.UpdateMatchPool(ctx, pool); err != nil {
			return fmt.Errorf("update pool after finalization: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return winning, losing, nil
}

func (s *service) ReserveLiability(ctx context.Context, roundID int64, stake, maxPayout decimal.Decimal) error {
	if stake.LessThanOrEqual(decimal.Zero) || maxPayout.LessThan(stake) {
		return models.ErrInvalidStakeAmount
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		accounting, err := repo.GetRoundAccountingForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRoundNotSeeded
			}
			return fmt.Errorf("lock accounting for liability: %w", err)
		}

		available, _, err := ledgerTx.ReserveBalance(ctx)
		if err != nil {
			return fmt.Errorf("read reserve for liability check: %w", err)
		}
		poolValue := accounting.SeedAmount.Add(accounting.TotalVolume).Add(stake)
		coverage := available.Add(poolValue)
		if accounting.PotentialLiability.Add(maxPayout).GreaterThan(coverage) {
			s.logger.Info("bet rejected for liquidity", map[string]interface{}{
				"round_id":   roundID,
				"max_payout": maxPayout.String(),
				"liability":  accounting.PotentialLiability.String(),
				"coverage":   coverage.String(),
			})
			return models.ErrInsufficientLiquidity
		}

		if err := accounting.AddVolume(stake); err != nil {
			return err
		}
		accounting.AddPotentialLiability(maxPayout)
		return repo.UpdateRoundAccounting(ctx, accounting)
	})
}

func (s *service) ReleaseLiability(ctx context.Context, roundID int64, stake, maxPayout decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		accounting, err := repo.GetRoundAccountingForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRoundNotSeeded
			}
			return fmt.Errorf("lock accounting for release: %w", err)
		}
		if stake.IsPositive() {
			if err := accounting.RemoveVolume(stake); err != nil {
				return err
			}
		}
		if err := accounting.RemovePotentialLiability(maxPayout); err != nil {
			if models.IsInvariantViolation(err) {
				s.logger.Error(err, map[string]interface{}{
					"invariant": "potential-liability",
					"round_id":  roundID,
				})
			}
			return err
		}
		return repo.UpdateRoundAccounting(ctx, accounting)
	})
}

func (s *service) SetReservedForWinners(ctx context.Context, roundID int64, amount decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		accounting, err := repo.GetRoundAccountingForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRoundNotSeeded
			}
			return fmt.Errorf("lock accounting for winner reserve: %w", err)
		}
		if err := accounting.SetReservedForWinners(amount); err != nil {
			return err
		}
		return repo.UpdateRoundAccounting(ctx, accounting)
	})
}

func (s *service) RecordClaim(ctx context.Context, roundID int64, amount decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		accounting, err := repo.GetRoundAccountingForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRoundNotSeeded
			}
			return fmt.Errorf("lock accounting for claim: %w", err)
		}
		if err := accounting.AddClaimed(amount); err != nil {
			return err
		}
		return repo.UpdateRoundAccounting(ctx, accounting)
	})
}

// SweepAccounting returns seed plus volume minus the pool-funded portion of
// paid claims to the reserve. TotalClaimed tracks only pool-funded payout
// portions, so the figure is exactly the value still sitting in the round.
func (s *service) SweepAccounting(ctx context.Context, roundID int64) (decimal.Decimal, error) {
	var swept decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		accounting, err := repo.GetRoundAccountingForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRoundNotSeeded
			}
			return fmt.Errorf("lock accounting for sweep: %w", err)
		}
		if err := accounting.DistributeRevenue(); err != nil {
			return err
		}

		swept = accounting.SeedAmount.Add(accounting.TotalVolume).Sub(accounting.TotalClaimed)
		if swept.IsNegative() {
			s.logger.Error(models.ErrInvariantViolation, map[string]interface{}{
				"invariant": "sweep-amount",
				"round_id":  roundID,
				"amount":    swept.String(),
			})
			return models.ErrInvariantViolation
		}
		if swept.IsPositive() {
			err = ledgerTx.CreditReserve(ctx, swept, ledger.EntryMeta{
				Type:        models.EntryTypeSweep,
				RoundID:     &roundID,
				Description: fmt.Sprintf("sweep round %d", roundID),
			})
			if err != nil {
				return err
			}
		}
		if err := repo.UpdateRoundAccounting(ctx, accounting); err != nil {
			return fmt.Errorf("update accounting after sweep: %w", err)
		}

		s.logger.Info("round swept", map[string]interface{}{
			"round_id":    roundID,
			"swept":       swept.String(),
			"net_revenue": accounting.NetRevenue().String(),
		})
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return swept, nil
}

func oddsCacheKey(roundID int64, matchIndex int) string {
	return fmt.Sprintf("locked_odds:%d:%d", roundID, matchIndex)
}

// GetLockedOdds serves the odds snapshot, cached since locked odds never
// change for the life of a round.
func (s *service) GetLockedOdds(ctx context.Context, roundID int64, matchIndex int) (*LockedOddsResponse, error) {
	key := oddsCacheKey(roundID, matchIndex)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		return &cached, nil
	}

	pool, err := s.repo.GetMatchPool(ctx, roundID, matchIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get pool for odds: %w", err)
	}

	resp := ToLockedOddsResponse(pool)
	if resp.Locked {
		if err := s.cache.Set(ctx, key, *resp, s.config.OddsCacheTTL); err != nil {
			s.logger.Debug("odds cache set failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return resp, nil
}

func (s *service) GetRoundPools(ctx context.Context, roundID int64) ([]PoolResponse, error) {
	matchPools, err := s.repo.GetRoundPools(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("get round pools: %w", err)
	}
	responses := make([]PoolResponse, len(matchPools))
	for i := range matchPools {
		responses[i] = *ToPoolResponse(&matchPools[i])
	}
	return responses, nil
}

func (s *service) GetRoundAccounting(ctx context.Context, roundID int64) (*models.RoundAccounting, error) {
	accounting, err := s.repo.GetRoundAccounting(ctx, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get round accounting: %w", err)
	}
	return accounting, nil
}
