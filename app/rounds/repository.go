package rounds

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/toto/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new round repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateRound(ctx context.Context, round *models.Round) error {
	if err := round.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(round).Error
}

func (r *repository) GetRound(ctx context.Context, roundID int64) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).First(&round, "id = ?", roundID).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *repository) GetRoundForUpdate(ctx context.Context, roundID int64) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&round, "id = ?", roundID).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *repository) GetRoundByRequestID(ctx context.Context, requestID uuid.UUID) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).
		First(&round, "randomness_request_id = ?", requestID).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *repository) UpdateRound(ctx context.Context, round *models.Round) error {
	return r.db.WithContext(ctx).Save(round).Error
}

func (r *repository) ListRounds(ctx context.Context, status *models.RoundStatus, limit, offset int) ([]models.Round, error) {
	query := r.db.WithContext(ctx).Order("id desc").Limit(limit).Offset(offset)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rounds []models.Round
	err := query.Find(&rounds).Error
	return rounds, err
}

func (r *repository) GetRoundsPastCutoff(ctx context.Context, at time.Time) ([]models.Round, error) {
	var rounds []models.Round
	err := r.db.WithContext(ctx).
		Where("status = ? AND cutoff_at <= ?", models.RoundStatusOpen, at).
		Order("id asc").
		Find(&rounds).Error
	return rounds, err
}

func (r *repository) GetClosedRounds(ctx context.Context) ([]models.Round, error) {
	var rounds []models.Round
	err := r.db.WithContext(ctx).
		Where("status = ?", models.RoundStatusClosed).
		Order("id asc").
		Find(&rounds).Error
	return rounds, err
}

func (r *repository) GetResolvingRounds(ctx context.Context) ([]models.Round, error) {
	var rounds []models.Round
	err := r.db.WithContext(ctx).
		Where("status = ?", models.RoundStatusResolving).
		Order("id asc").
		Find(&rounds).Error
	return rounds, err
}

func (r *repository) GetSweepableRounds(ctx context.Context, settledBefore time.Time) ([]models.Round, error) {
	var rounds []models.Round
	err := r.db.WithContext(ctx).
		Where("status = ? AND settled_at <= ?", models.RoundStatusSettled, settledBefore).
		Order("id asc").
		Find(&rounds).Error
	return rounds, err
}
