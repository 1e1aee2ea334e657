package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/joefazee/toto/app/ledger"
	"github.com/joefazee/toto/app/pools"
	"github.com/joefazee/toto/internal/logger"
	"github.com/joefazee/toto/models"
)

type service struct {
	db     *gorm.DB
	repo   Repository
	pools  pools.Service
	ledger ledger.Port
	logger logger.Logger
	config *Config
}

// NewService creates a new claims service
func NewService(db *gorm.DB, repo Repository, poolsService pools.Service, ledgerPort ledger.Port,
	log logger.Logger, config *Config) Service {
	return &service{
		db:     db,
		repo:   repo,
		pools:  poolsService,
		ledger: ledgerPort,
		logger: log,
		config: config,
	}
}

func (s *service) Claim(ctx context.Context, claimantID uuid.UUID, betID int64) (*ClaimResponse, error) {
	now := time.Now().UTC()
	var resp *ClaimResponse
	var retiredLost bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		poolsTx := s.pools.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		bet, err := repo.GetBetForUpdate(ctx, betID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("lock bet for claim: %w", err)
		}
		if bet.Status == models.BetStatusClaimed {
			return models.ErrBetAlreadyClaimed
		}
		if !bet.IsActive() {
			return models.ErrBetNotActive
		}

		round, err := repo.GetRound(ctx, bet.RoundID)
		if err != nil {
			return fmt.Errorf("get round for claim: %w", err)
		}
		if !round.IsSettled() {
			return models.ErrRoundNotSettled
		}

		deadline, err := round.ClaimDeadline(s.config.ClaimWindow)
		if err != nil {
			return err
		}
		isOwner := claimantID == bet.OwnerID
		if !isOwner && !now.After(deadline) {
			return models.ErrClaimWindowOpen
		}

		base, winning, err := s.evaluate(ctx, repo, bet, round)
		if err != nil {
			return err
		}
		if !winning {
			// The losing state was only implicit until someone looked.
			// Commit the transition, surface the loss after the tx.
			if err := s.retireLost(ctx, repo, poolsTx, ledgerTx, bet, now); err != nil {
				return err
			}
			retiredLost = true
			return nil
		}

		final := bet.Multiplier.MulAmount(base).Floor()
		bonus := final.Sub(base)

		bounty := decimal.Zero
		if !isOwner {
			if final.LessThan(s.config.MinBountyPayout) {
				return models.ErrPayoutBelowBountyMin
			}
			bounty = final.Mul(s.config.BountyFraction).Floor()
		}
		ownerShare := final.Sub(bounty)

		if err := s.releaseReservation(ctx, repo, ledgerTx, bet, bonus, now); err != nil {
			return err
		}

		// The base portion is pool money; only the bonus draws down the
		// locked reserve.
		if base.IsPositive() {
			if err := poolsTx.RecordClaim(ctx, round.ID, base); err != nil {
				return err
			}
		}
		if err := poolsTx.ReleaseLiability(ctx, round.ID, decimal.Zero, bet.MaxPayout); err != nil {
			return err
		}

		if ownerShare.IsPositive() {
			err = ledgerTx.Credit(ctx, bet.OwnerID, ownerShare, ledger.EntryMeta{
				Type:        models.EntryTypePayout,
				RoundID:     &round.ID,
				BetID:       &bet.ID,
				Description: "winning bet payout",
			})
			if err != nil {
				return err
			}
		}
		if bounty.IsPositive() {
			err = ledgerTx.Credit(ctx, claimantID, bounty, ledger.EntryMeta{
				Type:        models.EntryTypeBounty,
				RoundID:     &round.ID,
				BetID:       &bet.ID,
				Description: "third-party claim bounty",
			})
			if err != nil {
				return err
			}
		}

		if err := bet.MarkClaimed(final, bounty, now); err != nil {
			return err
		}
		if err := repo.UpdateBet(ctx, bet); err != nil {
			return fmt.Errorf("update claimed bet: %w", err)
		}

		s.logger.Info("bet claimed", map[string]interface{}{
			"bet_id":       bet.ID,
			"round_id":     round.ID,
			"claimant_id":  claimantID,
			"base_payout":  base.String(),
			"total_payout": final.String(),
			"bounty":       bounty.String(),
		})

		resp = &ClaimResponse{
			BetID:       bet.ID,
			Status:      bet.Status,
			BasePayout:  base,
			Multiplier:  bet.Multiplier,
			TotalPayout: final,
			BountyPaid:  bounty,
			OwnerPayout: ownerShare,
			ClaimedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if retiredLost {
		return nil, models.ErrBetLost
	}
	return resp, nil
}

// evaluate walks the bet's legs against the finalized pools, returning the
// pool-funded base payout and whether every leg won. Per-leg payouts floor so
// a claim can never round up into reserve money.
func (s *service) evaluate(ctx context.Context, repo Repository, bet *models.Bet, round *models.Round) (decimal.Decimal, bool, error) {
	matchPools, err := repo.GetMatchPools(ctx, round.ID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("load match pools: %w", err)
	}
	byIndex := make(map[int]*models.MatchPool, len(matchPools))
	for i := range matchPools {
		byIndex[matchPools[i].MatchIndex] = &matchPools[i]
	}

	base := decimal.Zero
	for i := range bet.Legs {
		leg := &bet.Legs[i]
		pool, ok := byIndex[leg.MatchIndex]
		if !ok || !pool.Finalized || pool.WinningOutcome == nil {
			return decimal.Zero, false, models.ErrMatchNotFinalized
		}
		if leg.Predicted != *pool.WinningOutcome {
			return decimal.Zero, false, nil
		}
		odds, err := pool.LockedFor(leg.Predicted)
		if err != nil {
			return decimal.Zero, false, err
		}
		base = base.Add(odds.MulAmount(leg.Amount).Floor())
	}
	return base, true, nil
}

// retireLost flips a losing bet to Lost the first time anyone tries to claim
// it, then rejects the claim.
func (s *service) retireLost(ctx context.Context, repo Repository, poolsTx pools.Service,
	ledgerTx ledger.Port, bet *models.Bet, now time.Time) error {
	if err := bet.MarkLost(now); err != nil {
		return err
	}
	if err := repo.UpdateBet(ctx, bet); err != nil {
		return fmt.Errorf("update lost bet: %w", err)
	}
	if err := s.releaseReservation(ctx, repo, ledgerTx, bet, decimal.Zero, now); err != nil {
		return err
	}
	return poolsTx.ReleaseLiability(ctx, bet.RoundID, decimal.Zero, bet.MaxPayout)
}

// releaseReservation settles the bet's parlay reservation exactly once,
// paying actualBonus from the locked reserve and unlocking the remainder.
// Single-leg bets have no reservation row; that is only an error when a
// bonus is actually owed.
func (s *service) releaseReservation(ctx context.Context, repo Repository, ledgerTx ledger.Port,
	bet *models.Bet, actualBonus decimal.Decimal, now time.Time) error {
	reservation, err := repo.GetReservationForUpdate(ctx, bet.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if actualBonus.IsPositive() {
				return fmt.Errorf("bonus owed with no reservation for bet %d: %w", bet.ID, models.ErrInvariantViolation)
			}
			return nil
		}
		return fmt.Errorf("lock reservation: %w", err)
	}

	refund, err := reservation.Release(actualBonus, now)
	if err != nil {
		return err
	}
	if actualBonus.IsPositive() {
		err = ledgerTx.DebitReserveLocked(ctx, actualBonus, ledger.EntryMeta{
			Type:        models.EntryTypeBonusRelease,
			RoundID:     &bet.RoundID,
			BetID:       &bet.ID,
			Description: "parlay bonus payout",
		})
		if err != nil {
			return err
		}
	}
	if refund.IsPositive() {
		if err := ledgerTx.UnlockReserve(ctx, refund); err != nil {
			return err
		}
	}
	return repo.UpdateReservation(ctx, reservation)
}

func (s *service) PreviewPayout(ctx context.Context, betID int64) (*PayoutPreview, error) {
	bet, err := s.repo.GetBetByID(ctx, betID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get bet: %w", err)
	}

	preview := &PayoutPreview{
		BetID:      bet.ID,
		Status:     bet.Status,
		Multiplier: bet.Multiplier,
	}
	if !bet.IsActive() {
		if bet.PayoutAmount != nil {
			preview.TotalPayout = *bet.PayoutAmount
		}
		return preview, nil
	}

	round, err := s.repo.GetRound(ctx, bet.RoundID)
	if err != nil {
		return nil, fmt.Errorf("get round: %w", err)
	}
	if !round.IsSettled() {
		return preview, nil
	}

	if deadline, err := round.ClaimDeadline(s.config.ClaimWindow); err == nil {
		preview.ClaimDeadline = &deadline
	}

	base, winning, err := s.evaluate(ctx, s.repo, bet, round)
	if err != nil {
		return nil, err
	}
	preview.Winning = winning
	if winning {
		preview.BasePayout = base
		preview.TotalPayout = bet.Multiplier.MulAmount(base).Floor()
	}
	return preview, nil
}
