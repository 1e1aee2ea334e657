package bets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/toto/app/ledger"
	"github.com/joefazee/toto/app/pools"
	"github.com/joefazee/toto/internal/logger"
	"github.com/joefazee/toto/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type service struct {
	db     *gorm.DB
	repo   Repository
	pools  pools.Service
	ledger ledger.Port
	policy MultiplierPolicy
	logger logger.Logger
	config *Config
}

// NewService creates a new bets service
func NewService(db *gorm.DB, repo Repository, poolsService pools.Service, ledgerPort ledger.Port,
	policy MultiplierPolicy, log logger.Logger, config *Config) Service {
	return &service{
		db:     db,
		repo:   repo,
		pools:  poolsService,
		ledger: ledgerPort,
		policy: policy,
		logger: log,
		config: config,
	}
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{
		db:     tx,
		repo:   s.repo.WithTx(tx),
		pools:  s.pools.WithTx(tx),
		ledger: s.ledger.WithTx(tx),
		policy: s.policy,
		logger: s.logger,
		config: s.config,
	}
}

// validatePlacement runs the placement checks in their fixed order against a
// loaded round. Nothing is mutated until every check passes.
func (s *service) validatePlacement(round *models.Round, req *PlaceBetRequest, at time.Time) error {
	if !round.Seeded {
		return models.ErrRoundNotSeeded
	}
	if round.IsSettled() || !round.IsOpenForBetting(at) {
		return models.ErrRoundClosed
	}
	for i := range req.Legs {
		if !round.ValidMatchIndex(req.Legs[i].MatchIndex) {
			return models.ErrInvalidMatchIndex
		}
	}
	for i := range req.Legs {
		if !req.Legs[i].Predicted.IsValid() {
			return models.ErrInvalidOutcome
		}
	}
	seen := make(map[int]struct{}, len(req.Legs))
	for i := range req.Legs {
		if _, ok := seen[req.Legs[i].MatchIndex]; ok {
			return models.ErrDuplicateBetLeg
		}
		seen[req.Legs[i].MatchIndex] = struct{}{}
	}
	if req.Amount.LessThan(s.config.MinBetAmount) {
		return models.ErrStakeTooSmall
	}
	if req.Amount.GreaterThan(s.config.MaxBetAmount) {
		return models.ErrStakeTooLarge
	}
	return nil
}

func (s *service) PlaceBet(ctx context.Context, ownerID uuid.UUID, req *PlaceBetRequest) (*BetResponse, error) {
	if ownerID == uuid.Nil {
		return nil, models.ErrInvalidOwnerID
	}
	if len(req.Legs) == 0 {
		return nil, models.ErrNoBetLegs
	}
	if len(req.Legs) > s.config.MaxLegs {
		return nil, models.ErrTooManyBetLegs
	}

	now := time.Now().UTC()
	var resp *BetResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		poolsTx := s.pools.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		round, err := repo.GetRound(ctx, req.RoundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("get round for placement: %w", err)
		}
		if err := s.validatePlacement(round, req, now); err != nil {
			return err
		}

		split := models.SplitStake(req.Amount, len(req.Legs))
		legs := make([]models.BetLeg, len(req.Legs))
		touched := make([]*models.MatchPool, len(req.Legs))

		// Pool rows lock in ascending match order so two concurrent parlays
		// naming the same matches in different orders cannot deadlock. The
		// stored legs and the stake split keep the caller's order.
		lockOrder := make([]int, len(req.Legs))
		for i := range lockOrder {
			lockOrder[i] = i
		}
		sort.Slice(lockOrder, func(a, b int) bool {
			return req.Legs[lockOrder[a]].MatchIndex < req.Legs[lockOrder[b]].MatchIndex
		})
		for _, i := range lockOrder {
			pool, err := poolsTx.AddStake(ctx, round.ID, req.Legs[i].MatchIndex, req.Legs[i].Predicted, split[i], now)
			if err != nil {
				return err
			}
			touched[i] = pool
			legs[i] = models.BetLeg{
				MatchIndex: req.Legs[i].MatchIndex,
				Predicted:  req.Legs[i].Predicted,
				Amount:     split[i],
			}
		}

		multiplier := s.policy.Multiplier(len(legs), s.policy.ImbalanceSignal(touched))
		maxBasePayout := req.Amount.Mul(s.config.MaxOddsCeiling).Ceil()
		maxPayout := multiplier.MulAmount(maxBasePayout).Ceil()

		if err := poolsTx.ReserveLiability(ctx, round.ID, req.Amount, maxPayout); err != nil {
			return err
		}

		bet := &models.Bet{
			OwnerID:    ownerID,
			RoundID:    round.ID,
			Amount:     req.Amount,
			Multiplier: multiplier,
			MaxPayout:  maxPayout,
			Status:     models.BetStatusActive,
			PlacedAt:   now,
			Legs:       legs,
		}
		if err := repo.CreateBet(ctx, bet); err != nil {
			return fmt.Errorf("create bet: %w", err)
		}

		bonus := s.policy.BonusAmount(maxBasePayout, multiplier)
		if bonus.IsPositive() {
			if err := ledgerTx.LockReserve(ctx, bonus); err != nil {
				return err
			}
			reservation := &models.ParlayReservation{
				BetID:  bet.ID,
				Amount: bonus,
			}
			if err := repo.CreateReservation(ctx, reservation); err != nil {
				return fmt.Errorf("create parlay reservation: %w", err)
			}
		}

		err = ledgerTx.Debit(ctx, ownerID, req.Amount, ledger.EntryMeta{
			Type:        models.EntryTypeStake,
			RoundID:     &round.ID,
			BetID:       &bet.ID,
			Description: fmt.Sprintf("stake for bet %d", bet.ID),
		})
		if err != nil {
			return err
		}

		s.logger.Info("bet placed", map[string]interface{}{
			"bet_id":     bet.ID,
			"round_id":   round.ID,
			"owner_id":   ownerID.String(),
			"legs":       len(legs),
			"amount":     req.Amount.String(),
			"multiplier": multiplier.String(),
			"max_payout": maxPayout.String(),
		})
		resp = ToBetResponse(bet)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *service) CancelBet(ctx context.Context, ownerID uuid.UUID, betID int64) (*BetResponse, error) {
	now := time.Now().UTC()
	var resp *BetResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		poolsTx := s.pools.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		bet, err := repo.GetBetForUpdate(ctx, betID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("lock bet for cancellation: %w", err)
		}
		if bet.OwnerID != ownerID {
			return models.ErrNotBetOwner
		}
		if !bet.IsActive() {
			return models.ErrBetNotActive
		}

		round, err := repo.GetRound(ctx, bet.RoundID)
		if err != nil {
			return fmt.Errorf("get round for cancellation: %w", err)
		}
		if round.IsSettled() {
			return models.ErrBetNotCancellable
		}

		// Same ascending lock order as placement.
		reversal := make([]models.BetLeg, len(bet.Legs))
		copy(reversal, bet.Legs)
		sort.Slice(reversal, func(a, b int) bool {
			return reversal[a].MatchIndex < reversal[b].MatchIndex
		})
		for i := range reversal {
			if _, err := poolsTx.ReverseStake(ctx, bet.RoundID, reversal[i].MatchIndex,
				reversal[i].Predicted, reversal[i].Amount); err != nil {
				return err
			}
		}
		if err := poolsTx.ReleaseLiability(ctx, bet.RoundID, bet.Amount, bet.MaxPayout); err != nil {
			return err
		}

		if err := s.releaseReservation(ctx, repo, ledgerTx, bet.ID, now); err != nil {
			return err
		}

		fee := bet.Amount.Mul(s.config.CancellationFeeRate).Floor()
		refund := bet.Amount.Sub(fee)

		if err := bet.Cancel(refund, now); err != nil {
			return err
		}
		if err := repo.UpdateBet(ctx, bet); err != nil {
			return fmt.Errorf("update cancelled bet: %w", err)
		}

		err = ledgerTx.Credit(ctx, ownerID, refund, ledger.EntryMeta{
			Type:        models.EntryTypeStakeRefund,
			RoundID:     &bet.RoundID,
			BetID:       &bet.ID,
			Description: fmt.Sprintf("refund for cancelled bet %d", bet.ID),
		})
		if err != nil {
			return err
		}
		if fee.IsPositive() {
			err = ledgerTx.CreditReserve(ctx, fee, ledger.EntryMeta{
				Type:        models.EntryTypeCancellationFee,
				RoundID:     &bet.RoundID,
				BetID:       &bet.ID,
				Description: fmt.Sprintf("cancellation fee for bet %d", bet.ID),
			})
			if err != nil {
				return err
			}
		}

		s.logger.Info("bet cancelled", map[string]interface{}{
			"bet_id":   bet.ID,
			"round_id": bet.RoundID,
			"refund":   refund.String(),
			"fee":      fee.String(),
		})
		resp = ToBetResponse(bet)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *service) SettleLostBets(ctx context.Context, roundID int64, winners map[int]models.Outcome, at time.Time) (int, error) {
	settled := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		poolsTx := s.pools.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		active, err := repo.GetActiveBetsByRound(ctx, roundID)
		if err != nil {
			return fmt.Errorf("get active bets for settlement: %w", err)
		}
		for i := range active {
			bet := &active[i]
			if betWins(bet, winners) {
				continue
			}
			if err := s.retireBet(ctx, repo, poolsTx, ledgerTx, bet, at); err != nil {
				return err
			}
			settled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return settled, nil
}

func (s *service) ExpireUnclaimedBets(ctx context.Context, roundID int64, at time.Time) (int, error) {
	expired := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		poolsTx := s.pools.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		active, err := repo.GetActiveBetsByRound(ctx, roundID)
		if err != nil {
			return fmt.Errorf("get active bets for expiry: %w", err)
		}
		for i := range active {
			if err := s.retireBet(ctx, repo, poolsTx, ledgerTx, &active[i], at); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

// betWins reports whether every leg predicted its match's winning outcome.
func betWins(bet *models.Bet, winners map[int]models.Outcome) bool {
	for i := range bet.Legs {
		winner, ok := winners[bet.Legs[i].MatchIndex]
		if !ok || winner != bet.Legs[i].Predicted {
			return false
		}
	}
	return true
}

// retireBet marks a bet lost with no payout and hands back its reservation
// and worst-case liability. The stake stays in the pools.
func (s *service) retireBet(ctx context.Context, repo Repository, poolsTx pools.Service,
	ledgerTx ledger.Port, bet *models.Bet, at time.Time) error {
	if err := bet.MarkLost(at); err != nil {
		return err
	}
	if err := repo.UpdateBet(ctx, bet); err != nil {
		return fmt.Errorf("update lost bet %d: %w", bet.ID, err)
	}
	if err := s.releaseReservation(ctx, repo, ledgerTx, bet.ID, at); err != nil {
		return err
	}
	return poolsTx.ReleaseLiability(ctx, bet.RoundID, decimal.Zero, bet.MaxPayout)
}

// releaseReservation returns a bet's unused parlay bonus lock to the reserve.
// Single-leg bets carry no reservation row; that absence is not an error.
func (s *service) releaseReservation(ctx context.Context, repo Repository, ledgerTx ledger.Port, betID int64, at time.Time) error {
	reservation, err := repo.GetReservationForUpdate(ctx, betID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("lock reservation for release: %w", err)
	}
	unused, err := reservation.Release(decimal.Zero, at)
	if err != nil {
		return err
	}
	if unused.IsPositive() {
		if err := ledgerTx.UnlockReserve(ctx, unused); err != nil {
			return err
		}
	}
	return repo.UpdateReservation(ctx, reservation)
}

func (s *service) GetBet(ctx context.Context, betID int64) (*BetResponse, error) {
	bet, err := s.repo.GetBetByID(ctx, betID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get bet: %w", err)
	}
	return ToBetResponse(bet), nil
}

func (s *service) GetBetsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]BetResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	ownerBets, err := s.repo.GetBetsByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get bets by owner: %w", err)
	}
	responses := make([]BetResponse, len(ownerBets))
	for i := range ownerBets {
		responses[i] = *ToBetResponse(&ownerBets[i])
	}
	return responses, nil
}
