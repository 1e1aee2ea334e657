package rounds

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/toto/models"
	"gorm.io/gorm"
)

// Repository defines the interface for round data access
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateRound(ctx context.Context, round *models.Round) error
	GetRound(ctx context.Context, roundID int64) (*models.Round, error)
	GetRoundForUpdate(ctx context.Context, roundID int64) (*models.Round, error)
	GetRoundByRequestID(ctx context.Context, requestID uuid.UUID) (*models.Round, error)
	UpdateRound(ctx context.Context, round *models.Round) error

	ListRounds(ctx context.Context, status *models.RoundStatus, limit, offset int) ([]models.Round, error)
	GetRoundsPastCutoff(ctx context.Context, at time.Time) ([]models.Round, error)
	GetClosedRounds(ctx context.Context) ([]models.Round, error)
	GetResolvingRounds(ctx context.Context) ([]models.Round, error)
	GetSweepableRounds(ctx context.Context, settledBefore time.Time) ([]models.Round, error)
}

// Service drives the round lifecycle from open through seed, close,
// resolution, settlement, and the final sweep. Multiple rounds may be in
// flight at once; every transition is keyed by an explicit round id.
type Service interface {
	OpenRound(ctx context.Context, req *OpenRoundRequest) (*RoundResponse, error)

	// SeedRound draws the entropy nonce, publishes its commitment, and
	// seeds every match pool from the reserve.
	SeedRound(ctx context.Context, roundID int64) error

	// CloseRound transitions a round past its betting cutoff.
	CloseRound(ctx context.Context, roundID int64) error

	// RequestResolution asks the randomness source for one roll per match.
	// Calling it again while a request is pending is a no-op.
	RequestResolution(ctx context.Context, roundID int64) error

	// OnRollsReceived is the randomness source callback.
	OnRollsReceived(requestID uuid.UUID, rolls []uint64)

	// ResolveWithFallback settles a round whose randomness request has
	// timed out, deriving rolls from the commit-reveal entropy.
	ResolveWithFallback(ctx context.Context, roundID int64) error

	// SweepRound retires a settled round after the claim window and grace
	// period, expiring unclaimed bets and moving leftover value to the
	// reserve.
	SweepRound(ctx context.Context, roundID int64) (*SweepResponse, error)

	GetRound(ctx context.Context, roundID int64) (*RoundResponse, error)
	ListRounds(ctx context.Context, status *models.RoundStatus, limit, offset int) ([]RoundResponse, error)

	// Scheduler entry points. Each walks the due rounds and applies the
	// matching transition, logging and skipping per-round failures.
	CloseDueRounds(ctx context.Context) int
	RequestDueResolutions(ctx context.Context) int
	ResolveTimedOutRounds(ctx context.Context) int
	SweepDueRounds(ctx context.Context) int
}
