package bets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/toto/models"
	"gorm.io/gorm"
)

// Repository defines the interface for bet data access
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetRound(ctx context.Context, roundID int64) (*models.Round, error)

	CreateBet(ctx context.Context, bet *models.Bet) error
	GetBetByID(ctx context.Context, id int64) (*models.Bet, error)
	GetBetForUpdate(ctx context.Context, id int64) (*models.Bet, error)
	GetBetsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.Bet, error)
	GetBetsByRound(ctx context.Context, roundID int64) ([]models.Bet, error)
	GetActiveBetsByRound(ctx context.Context, roundID int64) ([]models.Bet, error)
	UpdateBet(ctx context.Context, bet *models.Bet) error

	CreateReservation(ctx context.Context, reservation *models.ParlayReservation) error
	GetReservationForUpdate(ctx context.Context, betID int64) (*models.ParlayReservation, error)
	UpdateReservation(ctx context.Context, reservation *models.ParlayReservation) error
}

// Service owns bet placement and cancellation. All multi-row flows run inside
// a single database transaction spanning the bet, its legs, the touched
// pools, the reservation, and the ledger movements.
type Service interface {
	// WithTx returns a Service scoped to an existing transaction.
	WithTx(tx *gorm.DB) Service

	PlaceBet(ctx context.Context, ownerID uuid.UUID, req *PlaceBetRequest) (*BetResponse, error)
	CancelBet(ctx context.Context, ownerID uuid.UUID, betID int64) (*BetResponse, error)

	// SettleLostBets marks every active round bet with a losing leg as
	// lost, releasing its bonus reservation and its worst-case liability.
	// Returns the number of bets settled.
	SettleLostBets(ctx context.Context, roundID int64, winners map[int]models.Outcome, at time.Time) (int, error)

	// ExpireUnclaimedBets retires every bet still active when the sweep
	// runs, releasing reservations and liability. Winners who never
	// claimed inside the window forfeit to the reserve.
	ExpireUnclaimedBets(ctx context.Context, roundID int64, at time.Time) (int, error)

	GetBet(ctx context.Context, betID int64) (*BetResponse, error)
	GetBetsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]BetResponse, error)
}
