package claims

import (
	"context"

	"github.com/google/uuid"
	"github.com/joefazee/toto/models"
	"gorm.io/gorm"
)

// Repository defines the interface for claim data access
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetRound(ctx context.Context, roundID int64) (*models.Round, error)
	GetBetByID(ctx context.Context, betID int64) (*models.Bet, error)
	GetBetForUpdate(ctx context.Context, betID int64) (*models.Bet, error)
	UpdateBet(ctx context.Context, bet *models.Bet) error

	GetMatchPools(ctx context.Context, roundID int64) ([]models.MatchPool, error)

	GetReservationForUpdate(ctx context.Context, betID int64) (*models.ParlayReservation, error)
	UpdateReservation(ctx context.Context, reservation *models.ParlayReservation) error
}

// Service settles winning bets. A claim is the only path that moves pool
// value to a bettor: every leg must have won, the payout uses odds and the
// multiplier locked at placement, and each bet pays exactly once.
type Service interface {
	// Claim pays out a winning bet. Within the claim window only the
	// owner may call it; afterwards anyone may, and a non-owner claimant
	// earns the bounty cut while the rest still goes to the owner. A
	// losing bet is marked lost on the spot and the claim is rejected.
	Claim(ctx context.Context, claimantID uuid.UUID, betID int64) (*ClaimResponse, error)

	// PreviewPayout computes what a claim would pay without moving funds.
	PreviewPayout(ctx context.Context, betID int64) (*PayoutPreview, error)
}
