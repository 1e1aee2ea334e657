package rounds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/toto/app/bets"
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
	bets   bets.Service
	source RandomnessSource
	logger logger.Logger
	config *Config
}

// NewService creates a new rounds service
func NewService(db *gorm.DB, repo Repository, poolsService pools.Service, betsService bets.Service,
	source RandomnessSource, log logger.Logger, config *Config) Service {
	return &service{
		db:     db,
		repo:   repo,
		pools:  poolsService,
		bets:   betsService,
		source: source,
		logger: log,
		config: config,
	}
}

func (s *service) OpenRound(ctx context.Context, req *OpenRoundRequest) (*RoundResponse, error) {
	matchCount := req.MatchCount
	if matchCount == 0 {
		matchCount = s.config.DefaultMatchCount
	}

	now := time.Now().UTC()
	cutoff := now.Add(s.config.RoundDuration)
	if req.CutoffAt != nil {
		cutoff = req.CutoffAt.UTC()
	}

	round := &models.Round{
		Status:     models.RoundStatusOpen,
		MatchCount: matchCount,
		OpensAt:    now,
		CutoffAt:   cutoff,
	}
	if err := s.repo.CreateRound(ctx, round); err != nil {
		return nil, err
	}

	s.logger.Info("round opened", map[string]interface{}{
		"round_id":    round.ID,
		"match_count": round.MatchCount,
		"cutoff_at":   round.CutoffAt,
	})
	return ToRoundResponse(round), nil
}

// SeedRound draws the entropy nonce, persists it alongside the round, and
// seeds the pools with the commitment published in the same transaction. The
// nonce is stored before seeding so the published hash always has a reveal.
func (s *service) SeedRound(ctx context.Context, roundID int64) error {
	nonce, err := NewEntropyNonce()
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		poolsTx := s.pools.WithTx(tx)

		round, err := repo.GetRoundForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("lock round for seeding: %w", err)
		}
		if round.Seeded {
			return models.ErrRoundAlreadySeeded
		}

		round.EntropyNonce = nonce
		if err := repo.UpdateRound(ctx, round); err != nil {
			return fmt.Errorf("store entropy nonce: %w", err)
		}

		commit := Commitment(round.ID, round.MatchCount, poolsTx.SeedPerMatch(), nonce)
		return poolsTx.SeedRound(ctx, roundID, commit)
	})
}

func (s *service) CloseRound(ctx context.Context, roundID int64) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		round, err := repo.GetRoundForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("lock round for close: %w", err)
		}
		if err := round.Close(now); err != nil {
			return err
		}
		if err := repo.UpdateRound(ctx, round); err != nil {
			return fmt.Errorf("update closed round: %w", err)
		}

		s.logger.Info("round closed", map[string]interface{}{"round_id": round.ID})
		return nil
	})
}

// RequestResolution issues one randomness request per round. A second call
// while a request is pending is a successful no-op so retrying triggers
// cannot double-request.
func (s *service) RequestResolution(ctx context.Context, roundID int64) error {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrRecordNotFound
		}
		return fmt.Errorf("get round for resolution: %w", err)
	}
	if round.Status == models.RoundStatusResolving {
		return nil
	}
	if round.Status != models.RoundStatusClosed {
		return models.ErrRoundNotClosed
	}

	requestID, err := s.source.Request(ctx, round.MatchCount)
	if err != nil {
		return fmt.Errorf("request randomness: %w", err)
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		locked, err := repo.GetRoundForUpdate(ctx, roundID)
		if err != nil {
			return fmt.Errorf("lock round for resolution: %w", err)
		}
		if err := locked.MarkResolving(requestID, now); err != nil {
			return err
		}
		return repo.UpdateRound(ctx, locked)
	})
	if errors.Is(err, models.ErrRoundAlreadyResolving) {
		// A concurrent trigger won the race; the orphaned request's rolls
		// will be dropped when no round matches its id.
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("resolution requested", map[string]interface{}{
		"round_id":   roundID,
		"request_id": requestID.String(),
	})
	return nil
}

func (s *service) OnRollsReceived(requestID uuid.UUID, rolls []uint64) {
	ctx := context.Background()
	if err := s.resolveWithRolls(ctx, requestID, rolls); err != nil {
		s.logger.Error(err, map[string]interface{}{
			"request_id": requestID.String(),
		})
	}
}

func (s *service) resolveWithRolls(ctx context.Context, requestID uuid.UUID, rolls []uint64) error {
	found, err := s.repo.GetRoundByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("request %s: %w", requestID, models.ErrUnknownRequestID)
		}
		return fmt.Errorf("find round for request: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		round, err := repo.GetRoundForUpdate(ctx, found.ID)
		if err != nil {
			return fmt.Errorf("lock round for settlement: %w", err)
		}
		if round.Status != models.RoundStatusResolving ||
			round.RandomnessRequestID == nil || *round.RandomnessRequestID != requestID {
			return fmt.Errorf("round %d: %w", round.ID, models.ErrUnknownRequestID)
		}
		return s.settle(ctx, tx, round, rolls, false)
	})
}

// ResolveWithFallback settles a round whose randomness request exceeded the
// timeout, deriving rolls from the revealed entropy nonce. The degraded path
// is logged loudly; it should be rare.
func (s *service) ResolveWithFallback(ctx context.Context, roundID int64) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		poolsTx := s.pools.WithTx(tx)

		round, err := repo.GetRoundForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("lock round for fallback: %w", err)
		}
		if round.Status != models.RoundStatusResolving {
			return models.ErrRoundNotResolving
		}
		if !round.ResolutionTimedOut(now, s.config.ResolutionTimeout) {
			return models.ErrResolutionNotTimedOut
		}

		accounting, err := poolsTx.GetRoundAccounting(ctx, round.ID)
		if err != nil {
			return err
		}

		// Entropy mixes the instant the request expired, not the call time,
		// so whoever triggers the fallback cannot pick a favorable second.
		expiredAt := round.ResolutionRequestedAt.Add(s.config.ResolutionTimeout)
		rolls := FallbackRolls(round.EntropyNonce, round.CommitHash, expiredAt, accounting.TotalVolume, round.MatchCount)
		s.logger.Error(models.ErrResolutionTimeout, map[string]interface{}{
			"round_id":   round.ID,
			"request_id": round.RandomnessRequestID,
			"fallback":   true,
		})
		return s.settle(ctx, tx, round, rolls, true)
	})
}

// settle finalizes every match, records the structural winner liability, and
// retires the losing bets. Runs inside the caller's transaction with the
// round row already locked.
func (s *service) settle(ctx context.Context, tx *gorm.DB, round *models.Round, rolls []uint64, degraded bool) error {
	if len(rolls) != round.MatchCount {
		return fmt.Errorf("got %d rolls for %d matches: %w", len(rolls), round.MatchCount, models.ErrInvalidMatchCount)
	}

	repo := s.repo.WithTx(tx)
	poolsTx := s.pools.WithTx(tx)
	betsTx := s.bets.WithTx(tx)
	now := time.Now().UTC()

	winners := make(map[int]models.Outcome, len(rolls))
	share := poolsTx.WinnerShare()
	reserved := decimal.Zero
	for idx, roll := range rolls {
		winner := models.OutcomeFromRoll(roll)
		winning, losing, err := poolsTx.FinalizeMatch(ctx, round.ID, idx, winner)
		if err != nil {
			return fmt.Errorf("finalize match %d: %w", idx, err)
		}
		winners[idx] = winner
		reserved = reserved.Add(winning).Add(losing.Mul(share).Floor())
	}

	// The winner liability is structural, from the pool split alone. It has
	// to be final before anything downstream derives a revenue figure.
	if err := poolsTx.SetReservedForWinners(ctx, round.ID, reserved); err != nil {
		return err
	}

	lost, err := betsTx.SettleLostBets(ctx, round.ID, winners, now)
	if err != nil {
		return err
	}

	if err := round.MarkSettled(now); err != nil {
		return err
	}
	if err := repo.UpdateRound(ctx, round); err != nil {
		return fmt.Errorf("update settled round: %w", err)
	}

	s.logger.Info("round settled", map[string]interface{}{
		"round_id":             round.ID,
		"reserved_for_winners": reserved.String(),
		"lost_bets":            lost,
		"degraded":             degraded,
	})
	return nil
}

func (s *service) SweepRound(ctx context.Context, roundID int64) (*SweepResponse, error) {
	now := time.Now().UTC()
	var resp *SweepResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		poolsTx := s.pools.WithTx(tx)
		betsTx := s.bets.WithTx(tx)

		round, err := repo.GetRoundForUpdate(ctx, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("lock round for sweep: %w", err)
		}
		if round.Status != models.RoundStatusSettled {
			if round.Status == models.RoundStatusSwept {
				return models.ErrRoundAlreadySwept
			}
			return models.ErrRoundNotSettled
		}
		if !round.CanSweep(now, s.config.ClaimWindow, s.config.GracePeriod) {
			return models.ErrClaimWindowOpen
		}

		expired, err := betsTx.ExpireUnclaimedBets(ctx, round.ID, now)
		if err != nil {
			return err
		}
		swept, err := poolsTx.SweepAccounting(ctx, round.ID)
		if err != nil {
			return err
		}

		if err := round.MarkSwept(now); err != nil {
			return err
		}
		if err := repo.UpdateRound(ctx, round); err != nil {
			return fmt.Errorf("update swept round: %w", err)
		}

		resp = &SweepResponse{RoundID: round.ID, SweptAmount: swept, ExpiredBets: expired}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *service) GetRound(ctx context.Context, roundID int64) (*RoundResponse, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get round: %w", err)
	}
	return ToRoundResponse(round), nil
}

func (s *service) ListRounds(ctx context.Context, status *models.RoundStatus, limit, offset int) ([]RoundResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rounds, err := s.repo.ListRounds(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	responses := make([]RoundResponse, len(rounds))
	for i := range rounds {
		responses[i] = *ToRoundResponse(&rounds[i])
	}
	return responses, nil
}

func (s *service) CloseDueRounds(ctx context.Context) int {
	due, err := s.repo.GetRoundsPastCutoff(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error(err, map[string]interface{}{"job": "close_due_rounds"})
		return 0
	}
	closed := 0
	for i := range due {
		if err := s.CloseRound(ctx, due[i].ID); err != nil {
			s.logger.Error(err, map[string]interface{}{"job": "close_due_rounds", "round_id": due[i].ID})
			continue
		}
		closed++
	}
	return closed
}

func (s *service) RequestDueResolutions(ctx context.Context) int {
	due, err := s.repo.GetClosedRounds(ctx)
	if err != nil {
		s.logger.Error(err, map[string]interface{}{"job": "request_due_resolutions"})
		return 0
	}
	requested := 0
	for i := range due {
		if err := s.RequestResolution(ctx, due[i].ID); err != nil {
			s.logger.Error(err, map[string]interface{}{"job": "request_due_resolutions", "round_id": due[i].ID})
			continue
		}
		requested++
	}
	return requested
}

func (s *service) ResolveTimedOutRounds(ctx context.Context) int {
	now := time.Now().UTC()
	resolving, err := s.repo.GetResolvingRounds(ctx)
	if err != nil {
		s.logger.Error(err, map[string]interface{}{"job": "resolve_timed_out_rounds"})
		return 0
	}
	resolved := 0
	for i := range resolving {
		if !resolving[i].ResolutionTimedOut(now, s.config.ResolutionTimeout) {
			continue
		}
		if err := s.ResolveWithFallback(ctx, resolving[i].ID); err != nil {
			s.logger.Error(err, map[string]interface{}{"job": "resolve_timed_out_rounds", "round_id": resolving[i].ID})
			continue
		}
		resolved++
	}
	return resolved
}

func (s *service) SweepDueRounds(ctx context.Context) int {
	cutoff := time.Now().UTC().Add(-s.config.ClaimWindow).Add(-s.config.GracePeriod)
	due, err := s.repo.GetSweepableRounds(ctx, cutoff)
	if err != nil {
		s.logger.Error(err, map[string]interface{}{"job": "sweep_due_rounds"})
		return 0
	}
	swept := 0
	for i := range due {
		if _, err := s.SweepRound(ctx, due[i].ID); err != nil {
			s.logger.Error(err, map[string]interface{}{"job": "sweep_due_rounds", "round_id": due[i].ID})
			continue
		}
		swept++
	}
	return swept
}
