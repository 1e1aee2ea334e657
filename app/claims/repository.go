package claims

import (
	"context"

	"github.com/joefazee/toto/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new claim repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetRound(ctx context.Context, roundID int64) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).First(&round, "id = ?", roundID).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *repository) GetBetByID(ctx context.Context, betID int64) (*models.Bet, error) {
	var bet models.Bet
	err := r.db.WithContext(ctx).
		Preload("Legs").
		First(&bet, "id = ?", betID).Error
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *repository) GetBetForUpdate(ctx context.Context, betID int64) (*models.Bet, error) {
	var bet models.Bet
	err := r.db.WithContext(ctx).
		Preload("Legs").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&bet, "id = ?", betID).Error
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *repository) UpdateBet(ctx context.Context, bet *models.Bet) error {
	return r.db.WithContext(ctx).Save(bet).Error
}

func (r *repository) GetMatchPools(ctx context.Context, roundID int64) ([]models.MatchPool, error) {
	var pools []models.MatchPool
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("match_index asc").
		Find(&pools).Error
	return pools, err
}

func (r *repository) GetReservationForUpdate(ctx context.Context, betID int64) (*models.ParlayReservation, error) {
	var reservation models.ParlayReservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&reservation, "bet_id = ?", betID).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) UpdateReservation(ctx context.Context, reservation *models.ParlayReservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}
