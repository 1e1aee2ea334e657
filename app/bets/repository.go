package bets

import (
	"context"

	"github.com/google/uuid"
	"github.com/joefazee/toto/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new bet repository
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

func (r *repository) CreateBet(ctx context.Context, bet *models.Bet) error {
	if err := bet.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(bet).Error
}

func (r *repository) GetBetByID(ctx context.Context, id int64) (*models.Bet, error) {
	var bet models.Bet
	err := r.db.WithContext(ctx).
		Preload("Legs").
		First(&bet, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *repository) GetBetForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	var bet models.Bet
	err := r.db.WithContext(ctx).
		Preload("Legs").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&bet, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *repository) GetBetsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.Bet, error) {
	var bets []models.Bet
	err := r.db.WithContext(ctx).
		Preload("Legs").
		Where("owner_id = ?", ownerID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&bets).Error
	return bets, err
}

func (r *repository) GetBetsByRound(ctx context.Context, roundID int64) ([]models.Bet, error) {
	var bets []models.Bet
	err := r.db.WithContext(ctx).
		Preload("Legs").
		Where("round_id = ?", roundID).
		Order("id asc").
		Find(&bets).Error
	return bets, err
}

func (r *repository) GetActiveBetsByRound(ctx context.Context, roundID int64) ([]models.Bet, error) {
	var bets []models.Bet
	err := r.db.WithContext(ctx).
		Preload("Legs").
		Where("round_id = ? AND status = ?", roundID, models.BetStatusActive).
		Order("id asc").
		Find(&bets).Error
	return bets, err
}

func (r *repository) UpdateBet(ctx context.Context, bet *models.Bet) error {
	return r.db.WithContext(ctx).Save(bet).Error
}

func (r *repository) CreateReservation(ctx context.Context, reservation *models.ParlayReservation) error {
	if err := reservation.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(reservation).Error
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
